package db

import "slices"

// HasID reports whether id is a member of s.
func HasID(s IDSet, id string) bool {
	return slices.Contains(s, id)
}

// AddID appends id unless already present. The bool reports a change.
func AddID(s IDSet, id string) (IDSet, bool) {
	if HasID(s, id) {
		return s, false
	}
	return append(s, id), true
}

// RemoveID drops every occurrence of id. The bool reports a change.
func RemoveID(s IDSet, id string) (IDSet, bool) {
	if !HasID(s, id) {
		return s, false
	}
	out := make(IDSet, 0, len(s)-1)
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out, true
}

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// event is the wire payload published on the bus.
type event struct {
	Collection string     `json:"collection"`
	ID         string     `json:"id"`
	Kind       ChangeKind `json:"kind"`
	Version    int64      `json:"version,omitempty"`
}

// Change is delivered to subscribers. Doc is nil for deletions.
type Change[T any] struct {
	Kind ChangeKind
	ID   string
	Doc  *T
}

// Subscription is a live listener; Close stops it.
type Subscription struct {
	once    sync.Once
	closeFn func() error
	done    chan struct{}
}

func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() { err = s.closeFn() })
	return err
}

// Done is closed once the listener goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

var errNoBus = errors.New("docstore: subscriptions need a change bus")

func (c *Collection[T, P]) publish(ctx context.Context, kind ChangeKind, id string, version int64) {
	if c.store.bus == nil {
		return
	}
	payload, _ := json.Marshal(event{Collection: c.name, ID: id, Kind: kind, Version: version})
	if err := c.store.bus.Publish(context.WithoutCancel(ctx), c.name, payload); err != nil {
		c.store.log.Warn("failed to publish change", "collection", c.name, "id", id, "err", err)
	}
}

// Subscribe delivers every change in the collection for which match returns
// true (nil matches everything). The current document is re-read for
// creations and updates, so onChange always sees the latest state.
// The subscription ends when ctx is cancelled or Close is called.
func (c *Collection[T, P]) Subscribe(
	ctx context.Context,
	match func(Change[T]) bool,
	onChange func(Change[T]),
) (*Subscription, error) {
	return c.subscribe(ctx, nil, match, onChange)
}

// SubscribeDoc is Subscribe narrowed to one document. Events for other ids
// are dropped before the document is read.
func (c *Collection[T, P]) SubscribeDoc(ctx context.Context, id string, onChange func(Change[T])) (*Subscription, error) {
	return c.subscribe(ctx, func(ev event) bool { return ev.ID == id }, nil, onChange)
}

// subscribe runs want on the raw event, before any read, and match on the
// loaded change.
func (c *Collection[T, P]) subscribe(
	ctx context.Context,
	want func(event) bool,
	match func(Change[T]) bool,
	onChange func(Change[T]),
) (*Subscription, error) {
	if c.store.bus == nil {
		return nil, errNoBus
	}
	msgs, closeFn, err := c.store.bus.Subscribe(ctx, c.name)
	if err != nil {
		return nil, c.wrap("subscribe", "", err)
	}

	sub := &Subscription{closeFn: closeFn, done: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()

	go func() {
		defer close(sub.done)
		for payload := range msgs {
			var ev event
			if err := json.Unmarshal(payload, &ev); err != nil {
				c.store.log.Warn("dropping malformed change event", "collection", c.name, "err", err)
				continue
			}
			if want != nil && !want(ev) {
				continue
			}
			change := Change[T]{Kind: ev.Kind, ID: ev.ID}
			if ev.Kind != ChangeDeleted {
				doc, err := c.Get(ctx, ev.ID)
				if err != nil {
					// deleted in the meantime, the delete event follows
					continue
				}
				change.Doc = doc
			}
			if match != nil && !match(change) {
				continue
			}
			onChange(change)
		}
	}()

	return sub, nil
}

package docstore

import (
	"fmt"

	"gorm.io/gorm"
)

type Op string

const (
	OpEq       Op = "eq"
	OpIn       Op = "in"
	OpContains Op = "contains"
	OpExpr     Op = "expr"
)

// Filter is one predicate of a query. Filters are ANDed.
type Filter struct {
	Field string
	Op    Op
	Value any
	Args  []any
}

func Eq(field string, v any) Filter { return Filter{Field: field, Op: OpEq, Value: v} }

func In(field string, values any) Filter { return Filter{Field: field, Op: OpIn, Value: values} }

// Contains matches documents whose JSON array field holds id.
func Contains(field, id string) Filter { return Filter{Field: field, Op: OpContains, Value: id} }

// Expr is a raw SQL condition with positional args.
func Expr(sql string, args ...any) Filter { return Filter{Field: sql, Op: OpExpr, Args: args} }

type Order struct {
	Field string
	Desc  bool
}

type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
}

func (q Query) apply(tx *gorm.DB, dialect string) *gorm.DB {
	tx = applyFilters(tx, dialect, q.Filters)
	for _, o := range q.OrderBy {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		tx = tx.Order(o.Field + " " + dir)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx
}

func applyFilters(tx *gorm.DB, dialect string, filters []Filter) *gorm.DB {
	for _, f := range filters {
		switch f.Op {
		case OpEq:
			tx = tx.Where(fmt.Sprintf("%s = ?", f.Field), f.Value)
		case OpIn:
			tx = tx.Where(fmt.Sprintf("%s IN ?", f.Field), f.Value)
		case OpContains:
			tx = tx.Where(containsClause(dialect, f.Field), f.Value)
		case OpExpr:
			tx = tx.Where(f.Field, f.Args...)
		}
	}
	return tx
}

// containsClause renders JSON array membership for each supported dialect.
func containsClause(dialect, field string) string {
	switch dialect {
	case "mysql":
		return fmt.Sprintf("JSON_CONTAINS(%s, JSON_QUOTE(?))", field)
	case "postgres":
		return fmt.Sprintf("%s @> jsonb_build_array(?::text)", field)
	default:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value = ?)", field)
	}
}

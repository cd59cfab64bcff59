// Package query builds typed, parameterized WHERE clauses for list endpoints.
// Column names always come from code; user input only ever travels as bound arguments.
package query

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// Filter accumulates predicates that are AND-ed together.
type Filter struct {
	conds squirrel.And
}

func New() *Filter {
	return &Filter{}
}

// Eq adds column = value
func (f *Filter) Eq(column string, value any) *Filter {
	f.conds = append(f.conds, squirrel.Eq{column: value})
	return f
}

// EqIfSet adds column = value unless value is blank
func (f *Filter) EqIfSet(column, value string) *Filter {
	if strings.TrimSpace(value) == "" {
		return f
	}
	return f.Eq(column, value)
}

func (f *Filter) Gte(column string, value any) *Filter {
	f.conds = append(f.conds, squirrel.GtOrEq{column: value})
	return f
}

func (f *Filter) Lte(column string, value any) *Filter {
	f.conds = append(f.conds, squirrel.LtOrEq{column: value})
	return f
}

// NotNull adds column IS NOT NULL
func (f *Filter) NotNull(column string) *Filter {
	f.conds = append(f.conds, squirrel.NotEq{column: nil})
	return f
}

// Expr adds a raw predicate with ? placeholders, e.g. "quantity <= reorder_level"
func (f *Filter) Expr(sql string, args ...any) *Filter {
	f.conds = append(f.conds, squirrel.Expr(sql, args...))
	return f
}

// Search adds a case-insensitive substring match OR-ed over columns.
// LOWER + LIKE works on both postgres and sqlite, unlike ILIKE.
func (f *Filter) Search(term string, columns ...string) *Filter {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return f
	}

	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	or := make(squirrel.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, squirrel.Expr("LOWER(COALESCE("+col+", '')) LIKE ? ESCAPE '\\'", pattern))
	}
	f.conds = append(f.conds, or)
	return f
}

func (f *Filter) Empty() bool {
	return len(f.conds) == 0
}

// ToSql renders the predicate. An empty filter renders as "".
func (f *Filter) ToSql() (string, []any, error) {
	if f.Empty() {
		return "", nil, nil
	}
	return f.conds.ToSql()
}

// Apply adds the predicate to a gorm query
func (f *Filter) Apply(db *gorm.DB) (*gorm.DB, error) {
	sql, args, err := f.ToSql()
	if err != nil {
		return nil, err
	}
	if sql == "" {
		return db, nil
	}
	return db.Where(sql, args...), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

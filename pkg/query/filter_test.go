package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Empty(t *testing.T) {
	f := New().EqIfSet("status", "  ").Search("", "name")

	sql, args, err := f.ToSql()
	require.NoError(t, err)
	assert.True(t, f.Empty())
	assert.Empty(t, sql)
	assert.Empty(t, args)
}

func TestFilter_ComposesParameterizedSQL(t *testing.T) {
	f := New().
		EqIfSet("status", "active").
		Search("Para", "name", "sku").
		Expr("quantity <= reorder_level")

	sql, args, err := f.ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		`(status = ? AND (LOWER(COALESCE(name, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(sku, '')) LIKE ? ESCAPE '\') AND quantity <= reorder_level)`,
		sql)
	assert.Equal(t, []any{"active", "%para%", "%para%"}, args)
}

func TestFilter_SearchDoesNotInterpolateInput(t *testing.T) {
	f := New().Search("x'; DROP TABLE inventory; --", "name")

	sql, args, err := f.ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "DROP")
	require.Len(t, args, 1)
	assert.Equal(t, "%x'; drop table inventory; --%", args[0])
}

func TestFilter_EscapesWildcards(t *testing.T) {
	_, args, err := New().Search("100%_off", "name").ToSql()
	require.NoError(t, err)
	assert.Equal(t, []any{`%100\%\_off%`}, args)
}

func TestFilter_Ranges(t *testing.T) {
	sql, args, err := New().
		Gte("invoice_date", "2024-01-01").
		Lte("invoice_date", "2024-01-31").
		NotNull("due_date").
		ToSql()
	require.NoError(t, err)

	assert.Equal(t, "(invoice_date >= ? AND invoice_date <= ? AND due_date IS NOT NULL)", sql)
	assert.Equal(t, []any{"2024-01-01", "2024-01-31"}, args)
}

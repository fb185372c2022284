package gotds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceRowSourceYieldsInOrderThenEnds(t *testing.T) {
	src := NewSliceRowSource([][]any{{1, "a"}, {2, "b"}})
	ctx := context.Background()

	row, ok, err := src.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{1, "a"}, row.Tuple)

	row, ok, err = src.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{2, "b"}, row.Tuple)

	_, ok, err = src.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNormalizeRowProjectsKeyedRowByColumnName(t *testing.T) {
	intType, _ := LookupTypeByName("Int")
	cols := []ColumnDef{{Name: "a", Type: intType}, {Name: "b", Type: intType}}

	row := Row{Values: map[string]any{"b": 2, "a": 1}}
	values, err := normalizeRow(row, cols)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, values)
}

func TestNormalizeRowRejectsArityMismatch(t *testing.T) {
	intType, _ := LookupTypeByName("Int")
	cols := []ColumnDef{{Name: "a", Type: intType}, {Name: "b", Type: intType}}

	_, err := normalizeRow(Row{Tuple: []any{1}}, cols)
	assert.Error(t, err)
}

func TestChanRowSourceRelaysRowsThenEnds(t *testing.T) {
	rows := make(chan Row, 2)
	errCh := make(chan error, 1)
	rows <- Row{Tuple: []any{1}}
	rows <- Row{Tuple: []any{2}}
	close(rows)

	src := ChanRowSource{Rows: rows, ErrCh: errCh}
	ctx := context.Background()

	_, ok, err := src.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = src.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = src.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

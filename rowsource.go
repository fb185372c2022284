package gotds

import "context"

// Row is one row from a row source: either an ordered tuple aligned with
// the bulk load's column order, or a mapping keyed by column name.
type Row struct {
	Values map[string]any
	Tuple  []any
}

func (r Row) isKeyed() bool { return r.Values != nil }

// RowSource unifies the heterogeneous shapes a caller can hand the bulk
// engine — a finite slice, a sync iterator, an async iterator — behind one
// "pull one row, possibly suspending" method, so the engine never branches
// on shape. Next returns (row, true, nil) while rows remain, (zero, false, nil) at
// end of stream, or (zero, false, err) on producer failure. ChanRowSource
// honors ctx while it waits for a row; SliceRowSource and FuncRowSource
// check ctx only before each pull.
type RowSource interface {
	Next(ctx context.Context) (Row, bool, error)
}

// SliceRowSource adapts a finite, already-materialized list of rows.
type SliceRowSource struct {
	rows []Row
	pos  int
}

// NewSliceRowSource wraps tuples, each aligned positionally with the bulk
// load's column order.
func NewSliceRowSource(tuples [][]any) *SliceRowSource {
	rows := make([]Row, len(tuples))
	for i, t := range tuples {
		rows[i] = Row{Tuple: t}
	}
	return &SliceRowSource{rows: rows}
}

// NewKeyedSliceRowSource wraps rows given as column-name-keyed maps.
func NewKeyedSliceRowSource(maps []map[string]any) *SliceRowSource {
	rows := make([]Row, len(maps))
	for i, m := range maps {
		rows[i] = Row{Values: m}
	}
	return &SliceRowSource{rows: rows}
}

func (s *SliceRowSource) Next(ctx context.Context) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, false, err
	}
	if s.pos >= len(s.rows) {
		return Row{}, false, nil
	}
	r := s.rows[s.pos]
	s.pos++
	return r, true, nil
}

// FuncRowSource adapts a synchronous pull function — the shape a hand-
// rolled iterator or a generator-backed source naturally takes.
type FuncRowSource struct {
	Pull func() (Row, bool, error)
}

func (s FuncRowSource) Next(ctx context.Context) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, false, err
	}
	return s.Pull()
}

// ChanRowSource adapts an asynchronous producer that feeds rows over a
// channel, such as a goroutine decoding a file or relaying another query's
// results. The channel must be closed when the producer is done; a
// producer error is delivered once on errCh before the channel closes.
type ChanRowSource struct {
	Rows  <-chan Row
	ErrCh <-chan error
}

func (s ChanRowSource) Next(ctx context.Context) (Row, bool, error) {
	select {
	case <-ctx.Done():
		return Row{}, false, ctx.Err()
	case err := <-s.ErrCh:
		if err != nil {
			return Row{}, false, err
		}
	case row, ok := <-s.Rows:
		if !ok {
			return Row{}, false, nil
		}
		return row, true, nil
	}
	row, ok := <-s.Rows
	if !ok {
		return Row{}, false, nil
	}
	return row, true, nil
}

// normalizeRow projects a row into column order, by name for a keyed row or
// positionally for a tuple.
func normalizeRow(row Row, cols []ColumnDef) ([]any, error) {
	if row.isKeyed() {
		out := make([]any, len(cols))
		for i, col := range cols {
			v, ok := row.Values[col.Name]
			if !ok {
				return nil, &ProtocolError{Msg: "row missing value for column " + col.Name}
			}
			out[i] = v
		}
		return out, nil
	}
	if len(row.Tuple) != len(cols) {
		return nil, &ProtocolError{Msg: "row tuple arity does not match column count"}
	}
	return row.Tuple, nil
}

package gotds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// bulkPhase is the BulkLoad lifecycle state.
type bulkPhase uint8

const (
	phaseConfiguring bulkPhase = iota
	phaseExecuting
	phaseCancelled
	phaseCompleted
	phaseErrored
)

// SortDirection is the per-column hint in BulkOptions.Order.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// BulkOptions is the recognised bulk option surface. Unrecognised
// fields simply don't exist on this struct, which is how Go naturally
// "ignores unrecognised keys": there's nowhere to put them.
type BulkOptions struct {
	CheckConstraints bool
	FireTriggers     bool
	KeepNulls        bool
	Order            map[string]SortDirection
}

func validateBulkOptions(opts BulkOptions, cols []ColumnDef) error {
	for key, dir := range opts.Order {
		if dir != Ascending && dir != Descending {
			return fmt.Errorf(`The value of the %q key in the "options.order" object must be either "ASC" or "DESC".`, key)
		}
		found := false
		for _, c := range cols {
			if c.Name == key {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("order column %q is not a configured bulk-load column", key)
		}
	}
	return nil
}

// ColumnSpec is the per-column detail addColumn accepts beyond name and
// type.
type ColumnSpec struct {
	Nullable  bool
	Length    int
	Precision uint8
	Scale     uint8
	ObjName   string
	Collation Collation
}

const errColumnsAfterExecution = "Columns cannot be added to bulk insert after execution has started."

// BulkLoadResult is what the completion callback receives exactly once.
type BulkLoadResult struct {
	Err      error
	RowCount uint64
}

// BulkLoad is the C6 engine: the centre of gravity of the driver core. It
// builds a COLMETADATA header for an insert, consumes a caller-supplied
// row producer, encodes each row as a ROW token, drives the connection,
// and reconciles the server's DONE/ERROR stream into one completion.
type BulkLoad struct {
	tableName string
	options   BulkOptions
	columns   []ColumnDef
	cb        func(BulkLoadResult)

	mu    sync.Mutex
	phase bulkPhase

	cancelRequested bool
	timeoutFired    bool
	cancelFunc      context.CancelFunc
	timeout         time.Duration
	timer           *time.Timer

	settled bool
}

// NewBulkLoad returns a handle in phase configuring. It does not validate
// opts: Exec checks them before any I/O and reports a violation through the
// completion callback.
func NewBulkLoad(tableName string, opts BulkOptions, completionCb func(BulkLoadResult)) *BulkLoad {
	return &BulkLoad{
		tableName: tableName,
		options:   opts,
		cb:        completionCb,
		phase:     phaseConfiguring,
	}
}

// AddColumn appends a column; valid only while configuring.
func (b *BulkLoad) AddColumn(name string, typ *DataType, spec ColumnSpec) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.phase != phaseConfiguring {
		return errors.New(errColumnsAfterExecution)
	}
	b.columns = append(b.columns, ColumnDef{
		Name: name, Type: typ, Nullable: spec.Nullable, Length: spec.Length,
		Precision: spec.Precision, Scale: spec.Scale, ObjName: spec.ObjName,
		Collation: spec.Collation,
	})
	return nil
}

// GetTableCreationSQL synthesizes DDL from the configured columns.
func (b *BulkLoad) GetTableCreationSQL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return getTableCreationSQL(b.tableName, b.columns)
}

// Cancel requests cancellation, covering three cases: before execution,
// during execution, and after completion (a no-op).
func (b *BulkLoad) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settled {
		return
	}
	b.cancelRequested = true
	if b.cancelFunc != nil {
		b.cancelFunc()
	}
}

// SetTimeout records a one-shot deadline that Exec arms when execution
// starts. If it fires before the load completes, the load is cancelled as
// by Cancel and reports a TimeoutError.
func (b *BulkLoad) SetTimeout(d time.Duration) {
	b.mu.Lock()
	b.timeout = d
	b.mu.Unlock()
}

func (b *BulkLoad) finish(result BulkLoadResult) {
	b.mu.Lock()
	if b.settled {
		b.mu.Unlock()
		return
	}
	b.settled = true
	if b.timer != nil {
		b.timer.Stop()
	}
	cb := b.cb
	b.mu.Unlock()
	if cb != nil {
		cb(result)
	}
}

// Exec runs the execution protocol against conn, pulling rows
// from source.
func (b *BulkLoad) Exec(ctx context.Context, conn *Connection, source RowSource) {
	b.mu.Lock()
	if b.cancelRequested {
		b.mu.Unlock()
		b.finish(BulkLoadResult{Err: &CancellationError{}, RowCount: 0})
		return
	}
	if err := validateBulkOptions(b.options, b.columns); err != nil {
		b.mu.Unlock()
		b.finish(BulkLoadResult{Err: err, RowCount: 0})
		return
	}
	b.phase = phaseExecuting
	execCtx, cancel := context.WithCancel(ctx)
	b.cancelFunc = cancel
	if b.timeout > 0 {
		b.timer = time.AfterFunc(b.timeout, func() {
			b.mu.Lock()
			b.timeoutFired = true
			b.mu.Unlock()
			cancel()
		})
	}
	b.mu.Unlock()
	defer cancel()

	g, gctx := errgroup.WithContext(execCtx)
	sem := semaphore.NewWeighted(int64(2 << 16))

	var rowCount uint64
	var execErr error

	g.Go(func() error {
		n, err := b.stream(gctx, conn, source, sem)
		rowCount = n
		execErr = err
		return err
	})

	_ = g.Wait()

	timedOut := b.wasTimeoutFired()
	canceledByCaller := b.wasCancelRequested()

	switch {
	case execErr != nil:
		b.setPhase(phaseErrored)
		b.finish(BulkLoadResult{Err: execErr, RowCount: rowCount})
	case execCtx.Err() != nil && timedOut:
		b.setPhase(phaseErrored)
		b.finish(BulkLoadResult{
			Err:      &TimeoutError{Millis: b.configuredTimeout().Milliseconds()},
			RowCount: 0,
		})
	case execCtx.Err() != nil && canceledByCaller:
		b.setPhase(phaseCancelled)
		b.finish(BulkLoadResult{Err: &CancellationError{}, RowCount: 0})
	default:
		b.setPhase(phaseCompleted)
		b.finish(BulkLoadResult{RowCount: rowCount})
	}
}

func (b *BulkLoad) setPhase(p bulkPhase) {
	b.mu.Lock()
	b.phase = p
	b.mu.Unlock()
}

func (b *BulkLoad) wasCancelRequested() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancelRequested
}

func (b *BulkLoad) wasTimeoutFired() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timeoutFired
}

func (b *BulkLoad) configuredTimeout() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timeout
}

// stream sends the INSERT BULK prelude and reconciles its acknowledgement,
// then writes the COLMETADATA header and every row from source as one
// bulk-load message, and reconciles the server's response stream.
func (b *BulkLoad) stream(ctx context.Context, conn *Connection, source RowSource, sem *semaphore.Weighted) (uint64, error) {
	insertBulk, err := encodeUCS2(b.buildInsertBulkStatement())
	if err != nil {
		return 0, err
	}
	if err := conn.write(ctx, packetSQLBatch, insertBulk); err != nil {
		return 0, err
	}
	if _, err := b.reconcile(ctx, conn); err != nil {
		return 0, err
	}

	header := NewTrackingBuffer(512)
	if err := b.writeColMetadata(header); err != nil {
		return 0, err
	}
	conn.setState(stateSentClientRequest)
	conn.framer.BeginMessage(packetBulkLoad)
	if _, err := conn.framer.Write(header.Bytes()); err != nil {
		return 0, err
	}

	for {
		if ctx.Err() != nil {
			return b.cancelAndDrain(ctx, conn)
		}
		row, ok, err := source.Next(ctx)
		if err != nil {
			if cancelErr := conn.cancel(ctx); cancelErr != nil {
				return 0, cancelErr
			}
			_, _ = b.drainAfterCancel(conn)
			return 0, err
		}
		if !ok {
			break
		}
		values, err := normalizeRow(row, b.columns)
		if err != nil {
			if cancelErr := conn.cancel(ctx); cancelErr != nil {
				return 0, cancelErr
			}
			_, _ = b.drainAfterCancel(conn)
			return 0, err
		}
		rowBuf := NewTrackingBuffer(256)
		if err := b.encodeRow(values, rowBuf); err != nil {
			if cancelErr := conn.cancel(ctx); cancelErr != nil {
				return 0, cancelErr
			}
			_, _ = b.drainAfterCancel(conn)
			return 0, err
		}
		if err := sem.Acquire(ctx, int64(rowBuf.Len())); err != nil {
			return b.cancelAndDrain(ctx, conn)
		}
		_, writeErr := conn.framer.Write(rowBuf.Bytes())
		sem.Release(int64(rowBuf.Len()))
		if writeErr != nil {
			return 0, writeErr
		}
	}

	if err := conn.framer.EndMessage(ctx); err != nil {
		return 0, err
	}

	return b.reconcile(ctx, conn)
}

// cancelAndDrain sends ATTENTION and drains the response stream after a
// context-driven cancellation (caller Cancel() or timeout). Errors from the
// send/drain itself are intentionally dropped: once ctx is done, Exec
// derives the reported error kind (Cancellation vs Timeout) from
// execCtx.Err() and the timeoutFired/cancelRequested flags, not from
// whatever the best-effort cleanup happened to return.
func (b *BulkLoad) cancelAndDrain(ctx context.Context, conn *Connection) (uint64, error) {
	_ = conn.cancel(ctx)
	_, _ = b.drainAfterCancel(conn)
	return 0, nil
}

// drainAfterCancel continues reading tokens until the server emits a DONE
// carrying the cancelled/attention flag, then clears the parser's
// cancellation flag so the connection can serve the next request.
func (b *BulkLoad) drainAfterCancel(conn *Connection) (uint64, error) {
	drainCtx := context.Background()
	if err := conn.framer.BeginRead(drainCtx); err != nil {
		return 0, err
	}
	for {
		tok, err := conn.parser.NextToken()
		if err != nil {
			return 0, err
		}
		if done, ok := tok.(*doneToken); ok && done.isAttn() {
			conn.parser.cancelled = false
			conn.setState(stateLoggedIn)
			return 0, nil
		}
	}
}

// reconcile reads the server's response stream after a full row batch has
// been sent and turns it into (rowCount, err).
func (b *BulkLoad) reconcile(ctx context.Context, conn *Connection) (uint64, error) {
	if err := conn.framer.BeginRead(ctx); err != nil {
		return 0, err
	}
	var serverErrs []*ServerError
	var rowCount uint64
	for {
		tok, err := conn.parser.NextToken()
		if err != nil {
			return rowCount, err
		}
		switch t := tok.(type) {
		case *ServerError:
			if !t.IsInfo {
				serverErrs = append(serverErrs, t)
			}
		case *doneToken:
			if t.hasRowCount() {
				rowCount = t.RowCount
			}
			if !t.hasMore() {
				conn.setState(stateLoggedIn)
				if t.isError() || len(serverErrs) > 0 {
					return rowCount, joinErrors(serverErrs)
				}
				return rowCount, nil
			}
		}
	}
}

// writeColMetadata composes the COLMETADATA header the bulk insert prelude
// needs, mirroring the decoder's format.
func (b *BulkLoad) writeColMetadata(buf *TrackingBuffer) error {
	buf.WriteByte(byte(tokenColMetadata))
	buf.WriteUint16LE(uint16(len(b.columns)))
	for _, col := range b.columns {
		buf.WriteUint32LE(0) // userType
		var flags uint16
		if col.Nullable {
			flags |= 0x01
		}
		buf.WriteUint16LE(flags)
		buf.WriteByte(byte(col.Type.ID))
		if err := col.Type.EmitTypeInfo(col, buf); err != nil {
			return err
		}
		if err := buf.WriteBVarChar(col.Name); err != nil {
			return err
		}
	}
	return nil
}

// encodeRow encodes one already-column-ordered row as a ROW token,
// validating each cell first.
func (b *BulkLoad) encodeRow(values []any, buf *TrackingBuffer) error {
	buf.WriteByte(byte(tokenRow))
	for i, col := range b.columns {
		raw := values[i]
		if raw == nil {
			if err := b.writeNull(col, buf); err != nil {
				return err
			}
			continue
		}
		normalized, err := col.Type.Validate(col, raw)
		if err != nil {
			return err
		}
		if normalized == nil {
			if err := b.writeNull(col, buf); err != nil {
				return err
			}
			continue
		}
		if err := col.Type.EmitLengthPrefix(col, normalized, buf); err != nil {
			return err
		}
		if err := col.Type.EmitValueData(col, normalized, buf); err != nil {
			return err
		}
	}
	return nil
}

func (b *BulkLoad) writeNull(col ColumnDef, buf *TrackingBuffer) error {
	switch col.Type.ID {
	case idBigVarChar, idBigChar, idNVarChar, idNChar, idBigVarBinary, idBigBinary:
		buf.WriteUint16LE(0xFFFF)
	case idText, idNText, idImage, idVariant:
		buf.WriteUint32LE(0xFFFFFFFF)
	default:
		buf.WriteByte(0)
	}
	return nil
}

// buildOrderClause renders the ORDER(...) prelude fragment for the
// BULK-INSERT options list.
func buildOrderClause(order map[string]SortDirection) string {
	if len(order) == 0 {
		return ""
	}
	parts := make([]string, 0, len(order))
	for col, dir := range order {
		parts = append(parts, fmt.Sprintf("%s %s", col, dir))
	}
	return fmt.Sprintf("ORDER(%s)", strings.Join(parts, ", "))
}

// buildInsertBulkStatement renders the INSERT BULK statement that opens a
// bulk-load request: target table, column list, and the WITH(...) options
// fragment.
func (b *BulkLoad) buildInsertBulkStatement() string {
	cols := make([]string, len(b.columns))
	for i, col := range b.columns {
		cols[i] = fmt.Sprintf("[%s] %s", col.Name, col.Type.Declaration(col))
	}
	stmt := fmt.Sprintf("INSERT BULK [%s] (%s)", b.tableName, strings.Join(cols, ", "))
	if opts := b.buildBulkInsertOptions(); opts != "" {
		stmt += fmt.Sprintf(" WITH (%s)", opts)
	}
	return stmt
}

// buildBulkInsertOptions renders the CHECK_CONSTRAINTS/FIRE_TRIGGERS/
// KEEP_NULLS/ORDER fragment of the BULK INSERT prelude.
func (b *BulkLoad) buildBulkInsertOptions() string {
	var opts []string
	if b.options.CheckConstraints {
		opts = append(opts, "CHECK_CONSTRAINTS")
	}
	if b.options.FireTriggers {
		opts = append(opts, "FIRE_TRIGGERS")
	}
	if b.options.KeepNulls {
		opts = append(opts, "KEEP_NULLS")
	}
	if clause := buildOrderClause(b.options.Order); clause != "" {
		opts = append(opts, clause)
	}
	return strings.Join(opts, ", ")
}

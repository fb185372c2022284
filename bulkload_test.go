package gotds

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddColumnAfterExecutionFails(t *testing.T) {
	intType, _ := LookupTypeByName("Int")
	bl := NewBulkLoad("t", BulkOptions{}, nil)
	bl.phase = phaseExecuting

	err := bl.AddColumn("id", intType, ColumnSpec{})
	require.Error(t, err)
	assert.Equal(t, errColumnsAfterExecution, err.Error())
}

func TestBulkOptionsOrderValidation(t *testing.T) {
	intType, _ := LookupTypeByName("Int")
	cols := []ColumnDef{{Name: "id", Type: intType}}

	err := validateBulkOptions(BulkOptions{Order: map[string]SortDirection{"id": "sideways"}}, cols)
	assert.Error(t, err)

	err = validateBulkOptions(BulkOptions{Order: map[string]SortDirection{"id": Ascending}}, cols)
	assert.NoError(t, err)

	err = validateBulkOptions(BulkOptions{Order: map[string]SortDirection{"missing": Ascending}}, cols)
	assert.Error(t, err)
}

func TestCancelBeforeExecutionFinishesImmediately(t *testing.T) {
	intType, _ := LookupTypeByName("Int")
	var result BulkLoadResult
	done := make(chan struct{})
	bl := NewBulkLoad("t", BulkOptions{}, func(r BulkLoadResult) { result = r; close(done) })
	require.NoError(t, bl.AddColumn("id", intType, ColumnSpec{}))

	bl.Cancel()

	transport := &fakeTransport{}
	framer := NewPacketFramer(transport, 4096, nil)
	parser := NewStreamParser(framer)
	conn := NewConnection(framer, parser, nil)

	bl.Exec(context.Background(), conn, NewSliceRowSource(nil))
	<-done

	var cancelErr *CancellationError
	assert.ErrorAs(t, result.Err, &cancelErr)
	assert.EqualValues(t, 0, result.RowCount)
}

func TestCancelAfterCompletionIsNoop(t *testing.T) {
	bl := NewBulkLoad("t", BulkOptions{}, func(BulkLoadResult) {
		t.Fatal("completion callback must fire exactly once")
	})
	bl.settled = true

	assert.NotPanics(t, func() { bl.Cancel() })
}

func TestBulkLoadExecSuccess(t *testing.T) {
	intType, _ := LookupTypeByName("Int")
	strType, _ := LookupTypeByName("NVarChar")

	var result BulkLoadResult
	done := make(chan struct{})
	bl := NewBulkLoad("people", BulkOptions{}, func(r BulkLoadResult) { result = r; close(done) })
	require.NoError(t, bl.AddColumn("id", intType, ColumnSpec{}))
	require.NoError(t, bl.AddColumn("name", strType, ColumnSpec{Length: 50, Nullable: true}))

	transport := &fakeTransport{}
	// ack for the INSERT BULK statement, then the final DONE after rows.
	transport.FromServer.Write(packetize(packetReply, doneTokenBytes(doneFinal, 0)))
	transport.FromServer.Write(packetize(packetReply, doneTokenBytes(doneCount, 2)))

	framer := NewPacketFramer(transport, 4096, nil)
	parser := NewStreamParser(framer)
	conn := NewConnection(framer, parser, nil)

	source := NewSliceRowSource([][]any{{1, "alice"}, {2, "bob"}})

	bl.Exec(context.Background(), conn, source)
	<-done

	assert.NoError(t, result.Err)
	assert.EqualValues(t, 2, result.RowCount)
}

// blockingRowSource serves one row immediately, then blocks its second call
// until the test releases it, so a cancellation can land while the engine
// is mid-stream waiting on the row producer.
type blockingRowSource struct {
	calls    int
	blocking chan struct{}
	unblock  chan struct{}
}

func (s *blockingRowSource) Next(ctx context.Context) (Row, bool, error) {
	s.calls++
	if s.calls == 1 {
		return Row{Tuple: []any{1}}, true, nil
	}
	close(s.blocking)
	<-s.unblock
	return Row{Tuple: []any{2}}, true, nil
}

func TestCancelDuringStreamingDrainsAttentionResponse(t *testing.T) {
	intType, _ := LookupTypeByName("Int")

	var result BulkLoadResult
	done := make(chan struct{})
	bl := NewBulkLoad("t", BulkOptions{}, func(r BulkLoadResult) { result = r; close(done) })
	require.NoError(t, bl.AddColumn("id", intType, ColumnSpec{}))

	transport := &fakeTransport{}
	// ack for the INSERT BULK statement, then the server's response to our
	// ATTENTION: a DONE carrying the cancelled/attention flag.
	transport.FromServer.Write(packetize(packetReply, doneTokenBytes(doneFinal, 0)))
	transport.FromServer.Write(packetize(packetReply, doneTokenBytes(doneFinal|doneAttn, 0)))

	framer := NewPacketFramer(transport, 4096, nil)
	parser := NewStreamParser(framer)
	conn := NewConnection(framer, parser, nil)

	source := &blockingRowSource{blocking: make(chan struct{}), unblock: make(chan struct{})}

	go bl.Exec(context.Background(), conn, source)

	<-source.blocking
	bl.Cancel()
	close(source.unblock)

	<-done

	var cancelErr *CancellationError
	assert.ErrorAs(t, result.Err, &cancelErr)
	assert.EqualValues(t, 0, result.RowCount)
}

func TestBulkLoadExecTimeout(t *testing.T) {
	intType, _ := LookupTypeByName("Int")

	var result BulkLoadResult
	done := make(chan struct{})
	bl := NewBulkLoad("t", BulkOptions{}, func(r BulkLoadResult) { result = r; close(done) })
	require.NoError(t, bl.AddColumn("id", intType, ColumnSpec{}))
	bl.SetTimeout(10 * time.Millisecond)

	transport := &fakeTransport{}
	// ack for the INSERT BULK statement only; the row source below sleeps
	// 50ms per row, so the 10ms timeout fires while the engine waits on it.
	transport.FromServer.Write(packetize(packetReply, doneTokenBytes(doneFinal, 0)))

	framer := NewPacketFramer(transport, 4096, nil)
	parser := NewStreamParser(framer)
	conn := NewConnection(framer, parser, nil)

	stalling := FuncRowSource{Pull: func() (Row, bool, error) {
		time.Sleep(50 * time.Millisecond)
		return Row{Tuple: []any{1}}, true, nil
	}}

	bl.Exec(context.Background(), conn, stalling)
	<-done

	var timeoutErr *TimeoutError
	assert.ErrorAs(t, result.Err, &timeoutErr)
	assert.EqualValues(t, 0, result.RowCount)
}

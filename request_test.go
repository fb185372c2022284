package gotds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionWriteTransitionsState(t *testing.T) {
	transport := &fakeTransport{}
	framer := NewPacketFramer(transport, 4096, nil)
	parser := NewStreamParser(framer)
	conn := NewConnection(framer, parser, nil)

	assert.Equal(t, "LoggedIn", conn.currentStateName())

	require.NoError(t, conn.write(context.Background(), packetSQLBatch, []byte("hello")))
	assert.Equal(t, "SentClientRequest", conn.currentStateName())
}

func TestConnectionRunRequestSettlesOnFinalDone(t *testing.T) {
	transport := &fakeTransport{}
	transport.FromServer.Write(packetize(packetReply, doneTokenBytes(doneFinal, 3)))

	framer := NewPacketFramer(transport, 4096, nil)
	parser := NewStreamParser(framer)
	conn := NewConnection(framer, parser, nil)

	var tokens []any
	var endErr error
	done := make(chan struct{})
	conn.onToken(func(tok any) { tokens = append(tokens, tok) })
	conn.onEnd(func(err error) { endErr = err; close(done) })

	conn.runRequest(context.Background())
	<-done

	require.Len(t, tokens, 1)
	dt, ok := tokens[0].(*doneToken)
	require.True(t, ok)
	assert.EqualValues(t, 3, dt.RowCount)
	assert.NoError(t, endErr)
	assert.Equal(t, "LoggedIn", conn.currentStateName())
}

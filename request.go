package gotds

import (
	"context"
	"sync"
)

// connState enumerates the states the bulk-load engine observes on its
// connection collaborator.
type connState uint8

const (
	stateConnecting connState = iota
	stateLoggedIn
	stateSentClientRequest
	stateSentAttention
	stateFinal
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "Connecting"
	case stateLoggedIn:
		return "LoggedIn"
	case stateSentClientRequest:
		return "SentClientRequest"
	case stateSentAttention:
		return "SentAttention"
	case stateFinal:
		return "Final"
	default:
		return "Unknown"
	}
}

// Connection is the C7 collaborator surface the bulk-load engine depends
// on: write a message, send an out-of-band attention, subscribe to tokens
// and end-of-request, and read the current state name. It owns exactly one
// request at a time.
type Connection struct {
	framer *PacketFramer
	parser *StreamParser
	logger ContextLogger

	mu    sync.Mutex
	state connState

	tokenCb func(any)
	endCb   func(error)
}

// NewConnection wraps a framer/parser pair that a caller has already
// brought to the LoggedIn state; login negotiation is out of scope here.
func NewConnection(framer *PacketFramer, parser *StreamParser, logger ContextLogger) *Connection {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Connection{framer: framer, parser: parser, logger: logger, state: stateLoggedIn}
}

func (c *Connection) currentStateName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.String()
}

func (c *Connection) setState(s connState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// write sends message bytes to the server as one complete message of the
// given packet type, transitioning to SentClientRequest.
func (c *Connection) write(ctx context.Context, pt packetType, message []byte) error {
	c.setState(stateSentClientRequest)
	c.framer.BeginMessage(pt)
	if _, err := c.framer.Write(message); err != nil {
		return err
	}
	return c.framer.EndMessage(ctx)
}

// sendAttention emits the TDS out-of-band cancellation signal: an
// empty-payload packet of the cancel packet type.
func (c *Connection) sendAttention(ctx context.Context) error {
	c.setState(stateSentAttention)
	c.framer.BeginMessage(packetCancel)
	return c.framer.EndMessage(ctx)
}

// onToken registers the callback invoked for every token the connection's
// active request receives.
func (c *Connection) onToken(cb func(any)) { c.tokenCb = cb }

// onEnd registers the callback invoked exactly once when the active
// request settles (final DONE, fatal error, or post-cancel attention ack).
func (c *Connection) onEnd(cb func(error)) { c.endCb = cb }

// runRequest drives the parser's token stream for the request just
// written, dispatching every token to tokenCb and settling via endCb the
// first time a terminal condition is observed, exactly once.
func (c *Connection) runRequest(ctx context.Context) {
	c.setState(stateSentClientRequest)
	if err := c.framer.BeginRead(ctx); err != nil {
		c.settle(err)
		return
	}
	stream := c.parser.TokenStream(ctx)
	for res := range stream {
		if res.Err != nil {
			c.settle(res.Err)
			return
		}
		if c.tokenCb != nil {
			c.tokenCb(res.Token)
		}
		if done, ok := res.Token.(*doneToken); ok && !done.hasMore() {
			c.setState(stateLoggedIn)
			c.settle(nil)
			return
		}
	}
}

func (c *Connection) settle(err error) {
	c.setState(stateLoggedIn)
	if c.endCb != nil {
		cb := c.endCb
		c.endCb = nil
		cb(err)
	}
}

// cancel marks the parser cancelled and sends ATTENTION, the
// during-execution cancellation path.
func (c *Connection) cancel(ctx context.Context) error {
	c.parser.Cancel()
	return c.sendAttention(ctx)
}

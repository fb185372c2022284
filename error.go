package gotds

import (
	"errors"
	"fmt"
)

// ProtocolError indicates the byte stream violated the TDS wire format: a
// token tag nothing recognizes, a length prefix that runs past the packet
// boundary, a collation byte count that isn't 5. It is never produced by the
// server; it means the client and server have fallen out of sync.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return "tds protocol error: " + e.Msg }

// ServerError wraps a TDS ERROR or INFO token. Number/State/Class
// mirror the fields the server actually sent; Number 0 distinguishes a
// synthetic error from one that genuinely arrived over the wire. IsInfo
// records which tag decoded it: an INFO token (a PRINT, a non-fatal notice)
// carries the same fields as ERROR but must never by itself fail a request.
type ServerError struct {
	Number     int32
	State      uint8
	Class      uint8
	Message    string
	ServerName string
	ProcName   string
	LineNumber int32
	IsInfo     bool
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("mssql: %s (%d)", e.Message, e.Number)
}

// ValidationError indicates a caller-supplied value could not be validated
// against a data type's declaration: a string too long for its declared
// length, an integer outside the type's range, a value of the wrong kind.
// Decimal values are not checked against the column's precision.
type ValidationError struct {
	Column string
	Msg    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tds: invalid value for column %q: %s", e.Column, e.Msg)
}

// CancellationError marks a bulk-load or request aborted by a caller-issued
// cancellation (ATTENTION), as opposed to ctx.Err() from a timeout.
type CancellationError struct{}

func (e *CancellationError) Error() string { return "Canceled." }

// TimeoutError marks a bulk-load or request aborted because its deadline
// elapsed before the server acknowledged completion.
type TimeoutError struct {
	Millis int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout: Request failed to complete in %dms", e.Millis)
}

func (e *TimeoutError) Timeout() bool { return true }

// TransportError wraps an underlying connection failure (a short read, a
// reset connection) so callers can distinguish it from a protocol-level
// decode failure using errors.As.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "tds: transport error: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// joinErrors folds the ERROR tokens a single server response carried before
// its DONE into one returned error. The bulk-load reconcile loop leaves INFO
// tokens out of the slice it passes in.
func joinErrors(errs []*ServerError) error {
	if len(errs) == 0 {
		return nil
	}
	wrapped := make([]error, len(errs))
	for i, e := range errs {
		wrapped[i] = e
	}
	return errors.Join(wrapped...)
}

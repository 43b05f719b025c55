package ports

import "errors"

// ErrReadTimeout is returned by LineSource.ReadLine when no complete line
// arrived within the source's read timeout. It is the controller's cue to
// check for a stop signal and poll again; it never indicates a transport
// fault.
var ErrReadTimeout = errors.New("line source: read timeout")

// LineSource yields raw text lines from a byte-oriented transport. Open
// may fail when the underlying device is absent or busy; any ReadLine
// error other than ErrReadTimeout is fatal for the session.
type LineSource interface {
	Open() error
	ReadLine() (string, error)
	Close() error
}

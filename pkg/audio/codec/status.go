// ABOUTME: Codec status codes
// ABOUTME: Negative result codes with readable descriptions
package codec

import (
	"errors"
	"fmt"
)

// Status is a negative codec result code. It implements error so status
// codes can be returned, wrapped and matched with errors.Is.
type Status int

const (
	StatusAgain           Status = -1
	StatusEOF             Status = -2
	StatusInvalidArgument Status = -3
	StatusUnsupported     Status = -4
	StatusBackend         Status = -5
	StatusClosed          Status = -6
)

var statusText = map[Status]string{
	StatusAgain:           "resource temporarily unavailable",
	StatusEOF:             "end of stream",
	StatusInvalidArgument: "invalid argument",
	StatusUnsupported:     "not supported by codec",
	StatusBackend:         "codec library error",
	StatusClosed:          "session closed",
}

func (s Status) Error() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return fmt.Sprintf("codec status %d", int(s))
}

var (
	// ErrAgain means the session needs another frame before it can emit
	ErrAgain error = StatusAgain

	// ErrEOF means a flushed session has no more packets
	ErrEOF error = StatusEOF

	ErrInvalidArgument error = StatusInvalidArgument
	ErrUnsupported     error = StatusUnsupported
	ErrBackend         error = StatusBackend
	ErrClosed          error = StatusClosed
)

// StatusOf extracts the status code from err, or 0 when err carries none
func StatusOf(err error) Status {
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return 0
}

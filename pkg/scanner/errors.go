package scanner

import (
	"errors"
	"fmt"
)

// ErrNotRegular reports an input path that is neither a regular file nor
// a directory.
var ErrNotRegular = errors.New("not a regular file")

// Kind classifies an input failure.
type Kind int

const (
	KindRead    Kind = iota + 1 // file or directory could not be read
	KindCapture                 // capture stream malformed or truncated
	KindArchive                 // archive or document could not be unpacked
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindCapture:
		return "capture"
	case KindArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// InputError is a failure tied to one input path. By default it ends the
// scan; with Options.KeepGoing it is recorded and the scan moves on.
type InputError struct {
	Path string
	Kind Kind
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s error on %s: %v", e.Kind, e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

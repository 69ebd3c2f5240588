package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Handler receives the decoded payload of one block.
type Handler func(text string) error

// Stream walks every block of a capture stream and hands each non-empty
// payload to fn as text. An incomplete block triggers a refill; any other
// parse failure aborts the stream.
func Stream(ctx context.Context, r io.Reader, fn Handler) error {
	cr, err := NewReader(r)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, block, err := cr.Next()
		switch {
		case err == nil:
			if len(block.Data) > 0 {
				if err := fn(Decode(block.Data)); err != nil {
					return err
				}
			}
			cr.Consume(n)
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ErrIncomplete):
			if err := cr.Refill(); err != nil {
				return fmt.Errorf("refilling %s buffer: %w", cr.Format(), err)
			}
		default:
			return fmt.Errorf("reading %s: %w", cr.Format(), err)
		}
	}
}

// Decode converts payload bytes to text. Every byte that does not start a
// valid UTF-8 sequence becomes one U+FFFD, so a run of bad bytes keeps its
// length in runes.
func Decode(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	var b strings.Builder
	b.Grow(len(data) + 8)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(data[:size])
		}
		data = data[size:]
	}
	return b.String()
}

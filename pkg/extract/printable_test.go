package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintable(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []string
	}{
		{name: "run between control bytes", input: []byte("\x01abcd\x02"), expected: []string{"abcd"}},
		{name: "short interior run dropped", input: []byte("\x01ab\x02"), expected: nil},
		{name: "short trailing run kept", input: []byte("\x01ab"), expected: []string{"ab"}},
		{name: "whole buffer", input: []byte("abc"), expected: []string{"abc"}},
		{name: "whitespace splits runs", input: []byte("abcd efgh\tijkl"), expected: []string{"abcd", "efgh", "ijkl"}},
		{name: "high bytes split runs", input: []byte("abcd\xffxy\xc3\xa9wxyz"), expected: []string{"abcd", "wxyz"}},
		{name: "empty", input: nil, expected: nil},
		{name: "only control bytes", input: []byte{0, 1, 2, 3}, expected: nil},
		{name: "exactly minimum", input: []byte("\x00abcd\x00abc\x00"), expected: []string{"abcd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Printable(tt.input))
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "hello\nworld", Text([]byte("\x00hello\x00\x01world")))
	assert.Equal(t, "", Text([]byte{0, 0}))
}

// Package extract turns raw bytes into text the matcher can scan.
package extract

import "strings"

// MinRunLength is the shortest interior run of graphic bytes kept by
// Printable.
const MinRunLength = 4

// Printable splits data into runs of ASCII graphic bytes (0x21..0x7E). A run
// ends at any other byte and is kept when it is at least MinRunLength long.
// The run still open at the end of data is kept whatever its length.
func Printable(data []byte) []string {
	var spans []string
	start := -1

	for i, b := range data {
		if isGraphic(b) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= MinRunLength {
			spans = append(spans, string(data[start:i]))
		}
		start = -1
	}

	if start >= 0 {
		spans = append(spans, string(data[start:]))
	}
	return spans
}

// Text joins the printable spans of data with newlines.
func Text(data []byte) string {
	return strings.Join(Printable(data), "\n")
}

func isGraphic(b byte) bool {
	return b > ' ' && b < 0x7f
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/what-go/what/pkg/filter"
)

func main() {
	if err := Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError reports a fatal error. Unknown filter tags get their own
// message so the user sees which tags to fix.
func printError(w io.Writer, err error) {
	var tagsErr *filter.UnknownTagsError
	if errors.As(err, &tagsErr) {
		fmt.Fprintf(w, "Invalid tags: %s\n", joinTags(tagsErr.Tags))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

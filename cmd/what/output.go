package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/what-go/what/pkg/types"
)

const (
	formatDefault = "default"
	formatJSON    = "json"
	formatPretty  = "pretty"
)

var formats = []string{formatDefault, formatJSON, formatPretty}

// styles holds the color formatters for the default layout.
type styles struct {
	label   *color.Color
	matched *color.Color
	name    *color.Color
	link    *color.Color
}

func newStyles(enabled bool) *styles {
	s := &styles{
		label:   color.New(color.Bold),
		matched: color.New(color.FgYellow),
		name:    color.New(color.Bold, color.FgHiBlue),
		link:    color.New(color.Underline, color.FgHiGreen),
	}
	for _, c := range []*color.Color{s.label, s.matched, s.name, s.link} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// colorEnabled resolves the --color mode for w.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func render(w io.Writer, matches []types.Match, format string, colored bool) error {
	switch format {
	case formatJSON:
		return renderJSON(w, matches)
	case formatPretty:
		return renderPretty(w, matches, colored)
	default:
		return renderDefault(w, matches, colored)
	}
}

// renderDefault writes one block per match. The link line is the pattern's
// reference URL with the matched text appended, spaces removed.
func renderDefault(w io.Writer, matches []types.Match, colored bool) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "Nothing found.")
		return err
	}

	s := newStyles(colored)
	var b strings.Builder
	for _, m := range matches {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s\n", s.label.Sprint("Matched on:"), s.matched.Sprint(m.MatchedOn))
		fmt.Fprintf(&b, "%s %s\n", s.label.Sprint("Name:"), s.name.Sprint(m.Name))
		if m.Description != "" {
			fmt.Fprintf(&b, "%s %s\n", s.label.Sprint("Description:"), m.Description)
		}
		if m.Link != "" {
			fmt.Fprintf(&b, "%s %s\n", s.label.Sprint("Link:"), s.link.Sprint(matchLink(m)))
		}
		if m.Exploit != "" {
			fmt.Fprintf(&b, "%s %s\n", s.label.Sprint("Exploit:"), m.Exploit)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// renderJSON writes matches as one JSON array. An empty result is [].
func renderJSON(w io.Writer, matches []types.Match) error {
	if matches == nil {
		matches = []types.Match{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(matches)
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderPretty writes a bordered table of matched text, name and
// description. Matches without a description point at their link.
func renderPretty(w io.Writer, matches []types.Match, colored bool) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "Nothing found.")
		return err
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{m.MatchedOn, m.Name, tableDescription(m)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Matched Text", "Identified as", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow && colored {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	if colored {
		t = t.BorderStyle(tableBorderStyle)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func tableDescription(m types.Match) string {
	switch {
	case m.Description != "":
		return m.Description
	case m.Link != "":
		return "Click here to analyse in the browser\n" + matchLink(m)
	default:
		return "None"
	}
}

func matchLink(m types.Match) string {
	return m.Link + strings.ReplaceAll(m.MatchedOn, " ", "")
}

// writeTags lists the tag vocabulary, one tag per line.
func writeTags(w io.Writer, tags []string) error {
	var b strings.Builder
	b.WriteString("Available Tags:\n")
	for _, t := range tags {
		fmt.Fprintf(&b, "  %s\n", t)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

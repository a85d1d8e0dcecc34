// Package scripts parses the StringScripts text format: `#Marker#` lines
// introducing either a block terminated by `##` (Message, StringPicture,
// Choice) or exactly one content line, plus the compact multi-record
// database form with `*****EntryN*****` section separators.
package scripts

import (
	"regexp"
	"strconv"
	"strings"

	"vxscripts/internal/textutil"
)

// Block markers whose content spans lines until a bare `##`.
const (
	MarkerMessage       = "Message"
	MarkerStringPicture = "StringPicture"
	MarkerChoice        = "Choice"
)

// Entry is one parsed marker with its content. Choices is non-nil only for
// Choice entries; every other marker carries Text.
type Entry struct {
	Marker  string
	Text    string
	Choices []string
}

var (
	markerRe    = regexp.MustCompile(`^#(.+)#$`)
	separatorRe = regexp.MustCompile(`(?i)^\*{5,}Entry(\d+)\*{5,}$`)
)

// IsBlockMarker reports whether a marker's content runs until a `##` line.
func IsBlockMarker(marker string) bool {
	return marker == MarkerMessage || marker == MarkerStringPicture || marker == MarkerChoice
}

// Parse scans text into its ordered entry sequence. Lines that are not part
// of any marker construct (page heads, face directives, blanks) are skipped.
func Parse(text string) []Entry {
	lines := strings.Split(textutil.NormalizeNewlines(text), "\n")
	var entries []Entry

	i := 0
	for i < len(lines) {
		m := markerRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			i++
			continue
		}
		marker := m[1]
		i++

		switch marker {
		case MarkerMessage, MarkerStringPicture:
			var buf []string
			for i < len(lines) && strings.TrimSpace(lines[i]) != "##" {
				buf = append(buf, lines[i])
				i++
			}
			if i < len(lines) {
				i++ // consume ##
			}
			entries = append(entries, Entry{
				Marker: marker,
				Text:   strings.TrimRight(strings.Join(buf, "\n"), "\n"),
			})

		case MarkerChoice:
			choices := []string{}
			for i < len(lines) && strings.TrimSpace(lines[i]) != "##" {
				choices = append(choices, strings.TrimSpace(lines[i]))
				i++
			}
			if i < len(lines) {
				i++
			}
			entries = append(entries, Entry{Marker: marker, Choices: choices})

		default:
			if i < len(lines) {
				entries = append(entries, Entry{Marker: marker, Text: lines[i]})
				i++
			} else {
				entries = append(entries, Entry{Marker: marker})
			}
		}
	}
	return entries
}

// ParseFlat parses a single-record file into marker→content form. Later
// duplicates win, matching how the original consumed these files.
func ParseFlat(text string) map[string]string {
	fields := make(map[string]string)
	for _, e := range Parse(text) {
		if e.Choices != nil {
			continue
		}
		fields[e.Marker] = e.Text
	}
	return fields
}

// ParseCompact parses a multi-record database file: each `*****EntryN*****`
// section is itself a flat marker file keyed by record id.
func ParseCompact(text string) map[int]map[string]string {
	lines := strings.Split(textutil.NormalizeNewlines(text), "\n")
	result := make(map[int]map[string]string)

	currentID := -1
	var buf []string
	flush := func() {
		if currentID < 0 {
			return
		}
		fields := ParseFlat(strings.Join(buf, "\n"))
		if len(fields) > 0 {
			result[currentID] = fields
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		if m := separatorRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			id, err := strconv.Atoi(m[1])
			if err != nil {
				currentID = -1
				continue
			}
			currentID = id
			continue
		}
		if currentID < 0 {
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return result
}

// Package translation derives original→translated text mappings by diffing
// a frozen Origin parse against the current working-tree parse of the same
// file. Pairing is positional: the i-th Origin entry maps to the i-th
// working entry, same marker only. Inserting or deleting a block in the
// working file shifts every later pairing; that hazard is surfaced as a
// warning, not repaired.
package translation

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"vxscripts/internal/scripts"
	"vxscripts/internal/textutil"
)

// BuildMap builds the translation map for one file pair. name is used only
// for diagnostics.
func BuildMap(name, originText, currentText string) map[string]string {
	origin := scripts.Parse(originText)
	current := scripts.Parse(currentText)

	if len(origin) != len(current) {
		log.Warn().
			Str("file", name).
			Int("origin_entries", len(origin)).
			Int("current_entries", len(current)).
			Msg("Entry count mismatch, tail beyond the shorter sequence is ignored")
	}

	mapping := make(map[string]string)
	n := min(len(origin), len(current))
	for i := 0; i < n; i++ {
		o, c := origin[i], current[i]
		if o.Marker != c.Marker {
			continue
		}
		if o.Marker == scripts.MarkerChoice {
			for j := 0; j < min(len(o.Choices), len(c.Choices)); j++ {
				mapping[o.Choices[j]] = c.Choices[j]
			}
			continue
		}
		mapping[o.Text] = c.Text
		if o.Text != c.Text {
			log.Debug().
				Str("file", name).
				Str("source", textutil.Truncate(o.Text, 48)).
				Msg("Translated entry")
		}
	}
	return mapping
}

// Verify reports the positional-pairing hazards between an Origin parse and
// the working parse without building a map. Each finding is one
// human-readable line.
func Verify(originText, currentText string) []string {
	origin := scripts.Parse(originText)
	current := scripts.Parse(currentText)

	var findings []string
	if len(origin) != len(current) {
		findings = append(findings, fmt.Sprintf(
			"entry count differs: origin has %d, working copy has %d", len(origin), len(current)))
	}
	n := min(len(origin), len(current))
	for i := 0; i < n; i++ {
		if origin[i].Marker != current[i].Marker {
			findings = append(findings, fmt.Sprintf(
				"entry %d: marker %q in origin but %q in working copy", i+1, origin[i].Marker, current[i].Marker))
			continue
		}
		if origin[i].Marker == scripts.MarkerChoice && len(origin[i].Choices) != len(current[i].Choices) {
			findings = append(findings, fmt.Sprintf(
				"entry %d: choice count differs: origin has %d, working copy has %d",
				i+1, len(origin[i].Choices), len(current[i].Choices)))
		}
	}
	return findings
}

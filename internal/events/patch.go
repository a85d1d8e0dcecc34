package events

import (
	"strings"

	"vxscripts/internal/marker"
	"vxscripts/internal/rvdata"
	"vxscripts/internal/textutil"
)

func messageMarkerAt(cmd rvdata.Value) (string, bool) {
	code, _, params := rvdata.CommandFields(cmd)
	if code != rvdata.CodeComment || len(params) == 0 {
		return "", false
	}
	return marker.DecodeMessage(rvdata.AsString(params[0]))
}

func choiceMarkerAt(cmd rvdata.Value) ([]string, bool) {
	code, _, params := rvdata.CommandFields(cmd)
	if code != rvdata.CodeComment || len(params) == 0 {
		return nil, false
	}
	return marker.DecodeChoices(rvdata.AsString(params[0]))
}

func splice(cmds []rvdata.Value, start, length int, repl []rvdata.Value) []rvdata.Value {
	out := make([]rvdata.Value, 0, len(cmds)-length+len(repl))
	out = append(out, cmds[:start]...)
	out = append(out, repl...)
	out = append(out, cmds[start+length:]...)
	return out
}

// Patch applies a translation map to one command list in place and reports
// whether anything changed. The walk is strictly backward: every splice
// rewrites a window at or after the cursor, so not-yet-visited indices stay
// valid.
//
// Message units are replaced wholesale: marker (inserted when absent, kept
// when present) + optional face setup + one 401 per translated line. A unit
// whose marker exists but whose translation is gone is rolled back to the
// original lines and loses its marker, restoring the pre-translation state
// byte for byte. Choice units are rewritten at single-command granularity.
func Patch(list *rvdata.Array, tm map[string]string) bool {
	if list == nil {
		return false
	}
	cmds := list.Elems
	modified := false

	i := len(cmds) - 1
	for i >= 0 {
		cmd := cmds[i]
		code, indent, params := rvdata.CommandFields(cmd)

		switch code {
		case rvdata.CodeTextLine:
			// Extend to the first 401 of the run.
			first := i
			for first > 0 {
				if c, _, _ := rvdata.CommandFields(cmds[first-1]); c != rvdata.CodeTextLine {
					break
				}
				first--
			}

			blockStart := first
			hasFace := false
			if first > 0 {
				if c, _, _ := rvdata.CommandFields(cmds[first-1]); c == rvdata.CodeShowText {
					blockStart = first - 1
					hasFace = true
				}
			}

			markerIdx := blockStart - 1
			hasMarker := false
			original := ""
			if markerIdx >= 0 {
				if decoded, ok := messageMarkerAt(cmds[markerIdx]); ok {
					hasMarker = true
					original = decoded
				}
			}
			if !hasMarker {
				var buf []string
				for k := first; k <= i; k++ {
					_, _, p := rvdata.CommandFields(cmds[k])
					line := ""
					if len(p) > 0 {
						line = rvdata.AsString(p[0])
					}
					buf = append(buf, textutil.NormalizeNewlines(line))
				}
				original = strings.Join(buf, "\n")
			}
			original = textutil.NormalizeNewlines(original)

			translated, hasTranslation := tm[original]
			if hasTranslation {
				translated = textutil.NormalizeNewlines(translated)
			}

			var tmpl rvdata.Value
			if len(params) > 0 {
				tmpl = params[0]
			}

			if hasTranslation && strings.TrimSpace(translated) != "" && translated != original {
				var repl []rvdata.Value
				if !hasMarker {
					tok := marker.EncodeMessage(original)
					repl = append(repl, rvdata.NewEventCommand(rvdata.CodeComment, indent,
						[]rvdata.Value{rvdata.StrLike(tok, tmpl)}))
				}
				if hasFace {
					repl = append(repl, cmds[blockStart])
				}
				for _, line := range strings.Split(translated, "\n") {
					repl = append(repl, rvdata.NewEventCommand(rvdata.CodeTextLine, indent,
						[]rvdata.Value{rvdata.StrLike(line, tmpl)}))
				}
				cmds = splice(cmds, blockStart, i-blockStart+1, repl)
				modified = true
				if hasMarker {
					i = markerIdx - 1
				} else {
					i = blockStart - 1
				}
				continue
			}

			if hasMarker {
				// Translation removed or identical to the original: rollback.
				var repl []rvdata.Value
				if hasFace {
					repl = append(repl, cmds[blockStart])
				}
				for _, line := range strings.Split(original, "\n") {
					repl = append(repl, rvdata.NewEventCommand(rvdata.CodeTextLine, indent,
						[]rvdata.Value{rvdata.StrLike(line, tmpl)}))
				}
				cmds = splice(cmds, markerIdx, i-markerIdx+1, repl)
				modified = true
				i = markerIdx - 1
				continue
			}

			i = blockStart - 1

		case rvdata.CodeShowChoice:
			markerIdx := i - 1
			hasMarker := false
			var originalChoices []string
			if markerIdx >= 0 {
				if decoded, ok := choiceMarkerAt(cmds[markerIdx]); ok {
					hasMarker = true
					originalChoices = decoded
				}
			}

			var currentRaw []rvdata.Value
			if len(params) > 0 {
				if arr, ok := params[0].(*rvdata.Array); ok && arr != nil {
					currentRaw = arr.Elems
				}
			}
			if !hasMarker {
				originalChoices = nil
				for _, v := range currentRaw {
					originalChoices = append(originalChoices, textutil.NormalizeNewlines(rvdata.AsString(v)))
				}
			}

			newChoices := make([]string, 0, len(originalChoices))
			changed := false
			for _, ch := range originalChoices {
				mapped, ok := tm[ch]
				if ok {
					mapped = textutil.NormalizeNewlines(mapped)
				}
				if ok && strings.TrimSpace(mapped) != "" && mapped != ch {
					newChoices = append(newChoices, mapped)
					changed = true
				} else {
					newChoices = append(newChoices, ch)
				}
			}

			asParams := func(texts []string) rvdata.Value {
				elems := make([]rvdata.Value, len(texts))
				for idx, text := range texts {
					var tmpl rvdata.Value
					if idx < len(currentRaw) {
						tmpl = currentRaw[idx]
					}
					elems[idx] = rvdata.StrLike(text, tmpl)
				}
				return &rvdata.Array{Elems: elems}
			}

			setChoices := func(texts []string) {
				newParams := make([]rvdata.Value, len(params))
				copy(newParams, params)
				if len(newParams) == 0 {
					newParams = []rvdata.Value{nil}
				}
				newParams[0] = asParams(texts)
				rvdata.SetAttr(cmd, "parameters", &rvdata.Array{Elems: newParams})
			}

			if changed {
				if !hasMarker {
					tok := marker.EncodeChoices(originalChoices)
					mk := rvdata.NewEventCommand(rvdata.CodeComment, indent,
						[]rvdata.Value{rvdata.NewStr(tok)})
					cmds = splice(cmds, i, 0, []rvdata.Value{mk})
					i++ // the 102 shifted right
				}
				setChoices(newChoices)
				modified = true
				if hasMarker {
					i = markerIdx - 1
				} else {
					i--
				}
				continue
			}

			if hasMarker {
				// No live translation left: drop the marker, restore originals.
				cmds = splice(cmds, markerIdx, 1, nil)
				setChoices(originalChoices)
				modified = true
				i = markerIdx - 1
				continue
			}

			i--

		default:
			i--
		}
	}

	list.Elems = cmds
	return modified
}

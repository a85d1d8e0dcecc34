// Package events scans ordered event command lists for the three constructs
// that carry translatable text: message blocks (a run of 401 lines with an
// optional 101 setup), choice blocks (102) and original-text markers smuggled
// in 108 comments. Export mode emits StringScripts lines; patch mode splices
// translations back in.
package events

import (
	"fmt"
	"strings"

	"vxscripts/internal/marker"
	"vxscripts/internal/rvdata"
	"vxscripts/internal/textutil"
)

// FaceLine renders a 101 command as its one-line face/position directive.
func FaceLine(faceName string, faceIndex int) string {
	faceName = strings.TrimSpace(textutil.NormalizeNewlines(faceName))
	if faceName == "" {
		return "{{ Select Face Graphic: Erase }}"
	}
	return fmt.Sprintf("{{ Select Face Graphic: %s, %d }}", faceName, faceIndex)
}

func appendMessageBlock(lines []string, text string) []string {
	text = textutil.NormalizeNewlines(text)
	if text == "" {
		return lines
	}
	lines = append(lines, "#Message#")
	lines = append(lines, strings.Split(text, "\n")...)
	return append(lines, "##")
}

// ExportLines walks one command list forward and emits its StringScripts
// lines (no trailing newlines). When a message or choice is preceded by a
// decodable marker, the marker payload is exported instead of the live text,
// so the original survives even after a prior import overwrote the lines.
func ExportLines(cmds []rvdata.Value) []string {
	var lines []string
	var textBuf []string
	var pendingMessage *string
	var pendingChoices []string
	havePendingChoices := false
	skippingTranslated := false

	flushMessage := func() {
		if len(textBuf) == 0 {
			return
		}
		lines = appendMessageBlock(lines, strings.Join(textBuf, "\n"))
		textBuf = textBuf[:0]
	}

	for _, cmd := range cmds {
		code, _, params := rvdata.CommandFields(cmd)

		// A skipped (already translated) 401 run ends at the first other code.
		if skippingTranslated && code != rvdata.CodeTextLine {
			skippingTranslated = false
		}

		if code == rvdata.CodeComment && len(params) > 0 {
			comment := rvdata.AsString(params[0])
			if decoded, ok := marker.DecodeMessage(comment); ok {
				pendingMessage = &decoded
				continue
			}
			if decoded, ok := marker.DecodeChoices(comment); ok {
				pendingChoices = decoded
				havePendingChoices = true
				continue
			}
		}

		switch code {
		case rvdata.CodeShowText:
			flushMessage()
			faceName := ""
			if len(params) > 0 {
				faceName = rvdata.AsString(params[0])
			}
			faceIndex := 0
			if len(params) > 1 {
				faceIndex = rvdata.AsInt(params[1], 0)
			}
			lines = append(lines, FaceLine(faceName, faceIndex))

		case rvdata.CodeTextLine:
			if skippingTranslated {
				continue
			}
			if pendingMessage != nil {
				// The marker holds the original; the live 401 lines are a
				// previous translation and are skipped.
				lines = appendMessageBlock(lines, *pendingMessage)
				pendingMessage = nil
				skippingTranslated = true
				continue
			}
			text := ""
			if len(params) > 0 {
				text = rvdata.AsString(params[0])
			}
			textBuf = append(textBuf, textutil.NormalizeNewlines(text))

		case rvdata.CodeShowChoice:
			flushMessage()
			var raw []string
			if havePendingChoices {
				raw = pendingChoices
			} else if len(params) > 0 {
				if arr, ok := params[0].(*rvdata.Array); ok && arr != nil {
					for _, v := range arr.Elems {
						raw = append(raw, rvdata.AsString(v))
					}
				}
			}
			havePendingChoices = false
			var choices []string
			for _, ch := range raw {
				if ch = textutil.NormalizeNewlines(ch); ch != "" {
					choices = append(choices, ch)
				}
			}
			if len(choices) > 0 {
				lines = append(lines, "#Choice#")
				lines = append(lines, choices...)
				lines = append(lines, "##")
			}

		default:
			flushMessage()
		}
	}

	flushMessage()
	if pendingMessage != nil && !skippingTranslated {
		lines = appendMessageBlock(lines, *pendingMessage)
	}
	return lines
}

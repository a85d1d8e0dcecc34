package marker

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Markers are injected as code-108 comment commands next to translated
// content. The framing is chosen to be implausible as hand-authored comment
// text; anything that does not match exactly decodes as "no marker".
const (
	messagePrefix = "<ORIGINAL_TEXT:"
	messageSuffix = ">"
	choicePrefix  = "<ORIGINAL_CHOICE:"
	choiceSuffix  = ">"
)

// EncodeMessage wraps the original message text in a marker token.
func EncodeMessage(original string) string {
	return messagePrefix + base64.StdEncoding.EncodeToString([]byte(original)) + messageSuffix
}

// DecodeMessage extracts the original message text from a marker token.
// Malformed input of any kind returns ok=false, never an error.
func DecodeMessage(token string) (string, bool) {
	payload, ok := unwrap(token, messagePrefix, messageSuffix)
	if !ok {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// EncodeChoices wraps an ordered choice list in a marker token. The payload
// is a compact JSON string array.
func EncodeChoices(choices []string) string {
	if choices == nil {
		choices = []string{}
	}
	raw, _ := json.Marshal(choices)
	return choicePrefix + base64.StdEncoding.EncodeToString(raw) + choiceSuffix
}

// DecodeChoices extracts the original choice list from a marker token.
func DecodeChoices(token string) ([]string, bool) {
	payload, ok := unwrap(token, choicePrefix, choiceSuffix)
	if !ok {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || !utf8.Valid(raw) {
		return nil, false
	}
	var choices []string
	if err := json.Unmarshal(raw, &choices); err != nil {
		return nil, false
	}
	if choices == nil {
		choices = []string{}
	}
	return choices, true
}

func unwrap(token, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(token, prefix) || !strings.HasSuffix(token, suffix) {
		return "", false
	}
	return token[len(prefix) : len(token)-len(suffix)], true
}

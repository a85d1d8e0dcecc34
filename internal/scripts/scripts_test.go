package scripts

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseMessageBlock(t *testing.T) {
	text := strings.Join([]string{
		"-----Page1-----",
		"{{ Select Face Graphic: Actor1, 0 }}",
		"#Message#",
		"Hello",
		"World",
		"##",
		"",
	}, "\n")

	entries := Parse(text)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Marker != MarkerMessage || e.Text != "Hello\nWorld" {
		t.Errorf("entry = %+v", e)
	}
	if e.Choices != nil {
		t.Errorf("Choices = %v, want nil", e.Choices)
	}
}

func TestParseChoiceBlock(t *testing.T) {
	text := strings.Join([]string{
		"#Choice#",
		"  Yes  ",
		"No",
		"##",
	}, "\n")

	entries := Parse(text)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if !reflect.DeepEqual(entries[0].Choices, []string{"Yes", "No"}) {
		t.Errorf("Choices = %v", entries[0].Choices)
	}
}

func TestParseEmptyChoiceBlock(t *testing.T) {
	entries := Parse("#Choice#\n##\n")
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Choices == nil || len(entries[0].Choices) != 0 {
		t.Errorf("Choices = %#v, want empty non-nil", entries[0].Choices)
	}
}

func TestParseSingleLineMarkers(t *testing.T) {
	text := strings.Join([]string{
		"#Name#",
		"Alice",
		"#Description#",
		"A quiet swordswoman.\\nShe rarely speaks.",
	}, "\n")

	entries := Parse(text)
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Marker != "Name" || entries[0].Text != "Alice" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Marker != "Description" || entries[1].Text != `A quiet swordswoman.\nShe rarely speaks.` {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestParseUnterminatedBlock(t *testing.T) {
	entries := Parse("#Message#\nlast line")
	if len(entries) != 1 || entries[0].Text != "last line" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseMarkerAtEOF(t *testing.T) {
	entries := Parse("#Name#")
	if len(entries) != 1 || entries[0].Marker != "Name" || entries[0].Text != "" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseOrderPreserved(t *testing.T) {
	text := strings.Join([]string{
		"#Message#",
		"one",
		"##",
		"#Choice#",
		"a",
		"##",
		"#Message#",
		"two",
		"##",
	}, "\n")

	entries := Parse(text)
	want := []string{MarkerMessage, MarkerChoice, MarkerMessage}
	if len(entries) != len(want) {
		t.Fatalf("len(entries) = %d, want %d", len(entries), len(want))
	}
	for i, m := range want {
		if entries[i].Marker != m {
			t.Errorf("entries[%d].Marker = %q, want %q", i, entries[i].Marker, m)
		}
	}
}

func TestParseFlat(t *testing.T) {
	text := strings.Join([]string{
		"#Name#",
		"Slime",
		"#Name#",
		"King Slime", // later duplicate wins
		"#Note#",
		"weak to fire",
	}, "\n")

	got := ParseFlat(text)
	want := map[string]string{"Name": "King Slime", "Note": "weak to fire"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseFlat = %v, want %v", got, want)
	}
}

func TestParseCompact(t *testing.T) {
	text := strings.Join([]string{
		"preamble is ignored",
		"*****Entry1*****",
		"#Name#",
		"Alice",
		"#Nickname#",
		"",
		"*****Entry3*****",
		"#Name#",
		"Carol",
		"*****Entry4*****",
		"",
	}, "\n")

	got := ParseCompact(text)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (empty entry 4 dropped): %v", len(got), got)
	}
	if got[1]["Name"] != "Alice" || got[1]["Nickname"] != "" {
		t.Errorf("entry 1 = %v", got[1])
	}
	if got[3]["Name"] != "Carol" {
		t.Errorf("entry 3 = %v", got[3])
	}
}

func TestParseCompactSeparatorVariants(t *testing.T) {
	// Longer runs of asterisks and mixed case both separate entries.
	text := strings.Join([]string{
		"**********entry2**********",
		"#Name#",
		"Bob",
	}, "\n")

	got := ParseCompact(text)
	if got[2]["Name"] != "Bob" {
		t.Errorf("ParseCompact = %v", got)
	}
}

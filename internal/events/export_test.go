package events

import (
	"reflect"
	"testing"

	"vxscripts/internal/marker"
	"vxscripts/internal/rvdata"
)

func cmd(code, indent int, params ...rvdata.Value) rvdata.Value {
	return rvdata.NewEventCommand(code, indent, params)
}

func choiceParams(choices ...string) *rvdata.Array {
	elems := make([]rvdata.Value, len(choices))
	for i, c := range choices {
		elems[i] = rvdata.NewStr(c)
	}
	return &rvdata.Array{Elems: elems}
}

func TestFaceLine(t *testing.T) {
	if got := FaceLine("Actor1", 3); got != "{{ Select Face Graphic: Actor1, 3 }}" {
		t.Errorf("FaceLine = %q", got)
	}
	if got := FaceLine("", 0); got != "{{ Select Face Graphic: Erase }}" {
		t.Errorf("FaceLine empty = %q", got)
	}
	if got := FaceLine("  \n ", 2); got != "{{ Select Face Graphic: Erase }}" {
		t.Errorf("FaceLine whitespace = %q", got)
	}
}

func TestExportLiveMessage(t *testing.T) {
	cmds := []rvdata.Value{
		cmd(rvdata.CodeShowText, 0, rvdata.NewStr("Actor1"), rvdata.Int(0), rvdata.Int(2)),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("Hello")),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("World")),
		cmd(0, 0),
	}

	got := ExportLines(cmds)
	want := []string{
		"{{ Select Face Graphic: Actor1, 0 }}",
		"#Message#",
		"Hello",
		"World",
		"##",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExportLines = %q, want %q", got, want)
	}
}

func TestExportMarkerOverridesLiveText(t *testing.T) {
	// A marked block exports the marker payload; the live 401 lines hold a
	// previous translation and must not leak into the output.
	cmds := []rvdata.Value{
		cmd(rvdata.CodeComment, 0, rvdata.NewStr(marker.EncodeMessage("Hello\nWorld"))),
		cmd(rvdata.CodeShowText, 0, rvdata.NewStr("Actor1"), rvdata.Int(0), rvdata.Int(2)),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("こんにちは")),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("世界")),
	}

	got := ExportLines(cmds)
	want := []string{
		"{{ Select Face Graphic: Actor1, 0 }}",
		"#Message#",
		"Hello",
		"World",
		"##",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExportLines = %q, want %q", got, want)
	}
}

func TestExportTwoMessageBlocks(t *testing.T) {
	cmds := []rvdata.Value{
		cmd(rvdata.CodeShowText, 0, rvdata.NewStr("")),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("one")),
		cmd(rvdata.CodeShowText, 0, rvdata.NewStr("")),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("two")),
	}

	got := ExportLines(cmds)
	want := []string{
		"{{ Select Face Graphic: Erase }}",
		"#Message#", "one", "##",
		"{{ Select Face Graphic: Erase }}",
		"#Message#", "two", "##",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExportLines = %q, want %q", got, want)
	}
}

func TestExportChoices(t *testing.T) {
	cmds := []rvdata.Value{
		cmd(rvdata.CodeShowChoice, 0, choiceParams("Yes", "No"), rvdata.Int(1)),
	}

	got := ExportLines(cmds)
	want := []string{"#Choice#", "Yes", "No", "##"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExportLines = %q, want %q", got, want)
	}
}

func TestExportChoiceMarkerOverridesLive(t *testing.T) {
	cmds := []rvdata.Value{
		cmd(rvdata.CodeComment, 0, rvdata.NewStr(marker.EncodeChoices([]string{"Yes", "No"}))),
		cmd(rvdata.CodeShowChoice, 0, choiceParams("Sí", "No"), rvdata.Int(1)),
	}

	got := ExportLines(cmds)
	want := []string{"#Choice#", "Yes", "No", "##"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExportLines = %q, want %q", got, want)
	}
}

func TestExportEmptyChoicesDropped(t *testing.T) {
	cmds := []rvdata.Value{
		cmd(rvdata.CodeShowChoice, 0, choiceParams("", "")),
	}
	if got := ExportLines(cmds); len(got) != 0 {
		t.Errorf("ExportLines = %q, want empty", got)
	}
}

func TestExportPlainCommentIgnored(t *testing.T) {
	cmds := []rvdata.Value{
		cmd(rvdata.CodeComment, 0, rvdata.NewStr("dev note, not a marker")),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("text")),
	}

	got := ExportLines(cmds)
	want := []string{"#Message#", "text", "##"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExportLines = %q, want %q", got, want)
	}
}

func TestExportTrailingMarkerFlushed(t *testing.T) {
	// A message marker with its 401 run truncated away still exports.
	cmds := []rvdata.Value{
		cmd(rvdata.CodeComment, 0, rvdata.NewStr(marker.EncodeMessage("orphan"))),
	}

	got := ExportLines(cmds)
	want := []string{"#Message#", "orphan", "##"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExportLines = %q, want %q", got, want)
	}
}

func TestExportEmptyList(t *testing.T) {
	if got := ExportLines(nil); len(got) != 0 {
		t.Errorf("ExportLines(nil) = %q", got)
	}
}

package events

import (
	"bytes"
	"reflect"
	"testing"

	"vxscripts/internal/marshal"
	"vxscripts/internal/rvdata"
)

func messageList() *rvdata.Array {
	return &rvdata.Array{Elems: []rvdata.Value{
		cmd(rvdata.CodeShowText, 0, rvdata.NewStr("Actor1"), rvdata.Int(0), rvdata.Int(2)),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("Hello")),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("World")),
	}}
}

func codesOf(list *rvdata.Array) []int {
	codes := make([]int, len(list.Elems))
	for i, c := range list.Elems {
		codes[i], _, _ = rvdata.CommandFields(c)
	}
	return codes
}

func textLineAt(t *testing.T, list *rvdata.Array, idx int) string {
	t.Helper()
	_, _, params := rvdata.CommandFields(list.Elems[idx])
	if len(params) == 0 {
		t.Fatalf("command %d has no parameters", idx)
	}
	return rvdata.AsString(params[0])
}

func TestPatchTranslatesMessage(t *testing.T) {
	list := messageList()
	tm := map[string]string{"Hello\nWorld": "Hallo\nWelt"}

	if !Patch(list, tm) {
		t.Fatal("Patch reported no change")
	}
	want := []int{rvdata.CodeComment, rvdata.CodeShowText, rvdata.CodeTextLine, rvdata.CodeTextLine}
	if got := codesOf(list); !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	original, ok := messageMarkerAt(list.Elems[0])
	if !ok || original != "Hello\nWorld" {
		t.Errorf("marker = %q, %v", original, ok)
	}
	if got := textLineAt(t, list, 2); got != "Hallo" {
		t.Errorf("line 1 = %q", got)
	}
	if got := textLineAt(t, list, 3); got != "Welt" {
		t.Errorf("line 2 = %q", got)
	}
}

func TestPatchNoTranslationLeavesListAlone(t *testing.T) {
	list := messageList()
	before, err := marshal.Encode(list)
	if err != nil {
		t.Fatal(err)
	}

	if Patch(list, map[string]string{"unrelated": "text"}) {
		t.Error("Patch reported a change")
	}
	after, err := marshal.Encode(list)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("command list changed without a matching translation")
	}
}

func TestPatchRollbackRestoresBytes(t *testing.T) {
	pristine, err := marshal.Encode(messageList())
	if err != nil {
		t.Fatal(err)
	}

	list := messageList()
	if !Patch(list, map[string]string{"Hello\nWorld": "Hallo\nWelt"}) {
		t.Fatal("translate pass reported no change")
	}

	// Identity mapping means the translation was reverted upstream.
	if !Patch(list, map[string]string{"Hello\nWorld": "Hello\nWorld"}) {
		t.Fatal("rollback pass reported no change")
	}
	restored, err := marshal.Encode(list)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, pristine) {
		t.Error("rollback did not restore the original byte stream")
	}
}

func TestPatchMissingTranslationRollsBack(t *testing.T) {
	list := messageList()
	Patch(list, map[string]string{"Hello\nWorld": "Hallo\nWelt"})

	if !Patch(list, map[string]string{}) {
		t.Fatal("rollback pass reported no change")
	}
	want := []int{rvdata.CodeShowText, rvdata.CodeTextLine, rvdata.CodeTextLine}
	if got := codesOf(list); !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if got := textLineAt(t, list, 1); got != "Hello" {
		t.Errorf("line 1 = %q", got)
	}
}

func TestPatchEmptyTranslationRollsBack(t *testing.T) {
	list := messageList()
	Patch(list, map[string]string{"Hello\nWorld": "Hallo\nWelt"})

	if !Patch(list, map[string]string{"Hello\nWorld": "   "}) {
		t.Fatal("rollback pass reported no change")
	}
	want := []int{rvdata.CodeShowText, rvdata.CodeTextLine, rvdata.CodeTextLine}
	if got := codesOf(list); !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
}

func TestPatchRetranslateKeepsMarker(t *testing.T) {
	list := messageList()
	Patch(list, map[string]string{"Hello\nWorld": "Hallo\nWelt"})

	if !Patch(list, map[string]string{"Hello\nWorld": "Bonjour\nMonde"}) {
		t.Fatal("second translate pass reported no change")
	}
	markers := 0
	for _, c := range list.Elems {
		if _, ok := messageMarkerAt(c); ok {
			markers++
		}
	}
	if markers != 1 {
		t.Fatalf("marker count = %d, want 1", markers)
	}
	original, _ := messageMarkerAt(list.Elems[0])
	if original != "Hello\nWorld" {
		t.Errorf("marker payload = %q, want the original text", original)
	}
	if got := textLineAt(t, list, 2); got != "Bonjour" {
		t.Errorf("line 1 = %q", got)
	}
}

func TestPatchTranslationWithDifferentLineCount(t *testing.T) {
	list := messageList()
	if !Patch(list, map[string]string{"Hello\nWorld": "one line"}) {
		t.Fatal("Patch reported no change")
	}
	want := []int{rvdata.CodeComment, rvdata.CodeShowText, rvdata.CodeTextLine}
	if got := codesOf(list); !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if got := textLineAt(t, list, 2); got != "one line" {
		t.Errorf("line = %q", got)
	}
}

func choiceList() *rvdata.Array {
	return &rvdata.Array{Elems: []rvdata.Value{
		cmd(rvdata.CodeShowChoice, 0, choiceParams("Yes", "No"), rvdata.Int(1)),
	}}
}

func choicesOf(t *testing.T, v rvdata.Value) []string {
	t.Helper()
	_, _, params := rvdata.CommandFields(v)
	arr, ok := params[0].(*rvdata.Array)
	if !ok {
		t.Fatalf("parameters[0] is %T, not array", params[0])
	}
	out := make([]string, len(arr.Elems))
	for i, e := range arr.Elems {
		out[i] = rvdata.AsString(e)
	}
	return out
}

func TestPatchTranslatesChoices(t *testing.T) {
	list := choiceList()
	if !Patch(list, map[string]string{"Yes": "Sí"}) {
		t.Fatal("Patch reported no change")
	}
	want := []int{rvdata.CodeComment, rvdata.CodeShowChoice}
	if got := codesOf(list); !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	original, ok := choiceMarkerAt(list.Elems[0])
	if !ok || !reflect.DeepEqual(original, []string{"Yes", "No"}) {
		t.Errorf("marker = %v, %v", original, ok)
	}
	if got := choicesOf(t, list.Elems[1]); !reflect.DeepEqual(got, []string{"Sí", "No"}) {
		t.Errorf("choices = %v", got)
	}
	// The cancel-index parameter survives the rewrite.
	_, _, params := rvdata.CommandFields(list.Elems[1])
	if len(params) != 2 || params[1] != rvdata.Int(1) {
		t.Errorf("params tail = %v", params)
	}
}

func TestPatchRetranslateChoicesKeepsMarker(t *testing.T) {
	list := choiceList()
	Patch(list, map[string]string{"Yes": "Sí"})

	if !Patch(list, map[string]string{"Yes": "Oui", "No": "Non"}) {
		t.Fatal("second pass reported no change")
	}
	if got := codesOf(list); !reflect.DeepEqual(got, []int{rvdata.CodeComment, rvdata.CodeShowChoice}) {
		t.Fatalf("codes = %v", got)
	}
	if got := choicesOf(t, list.Elems[1]); !reflect.DeepEqual(got, []string{"Oui", "Non"}) {
		t.Errorf("choices = %v", got)
	}
}

func TestPatchChoiceRollback(t *testing.T) {
	list := choiceList()
	Patch(list, map[string]string{"Yes": "Sí"})

	if !Patch(list, map[string]string{}) {
		t.Fatal("rollback pass reported no change")
	}
	if got := codesOf(list); !reflect.DeepEqual(got, []int{rvdata.CodeShowChoice}) {
		t.Fatalf("codes = %v", got)
	}
	if got := choicesOf(t, list.Elems[0]); !reflect.DeepEqual(got, []string{"Yes", "No"}) {
		t.Errorf("choices = %v", got)
	}
}

func TestPatchMixedUnitsInOneList(t *testing.T) {
	list := &rvdata.Array{Elems: []rvdata.Value{
		cmd(rvdata.CodeShowText, 0, rvdata.NewStr("")),
		cmd(rvdata.CodeTextLine, 0, rvdata.NewStr("greeting")),
		cmd(rvdata.CodeShowChoice, 0, choiceParams("Yes", "No"), rvdata.Int(2)),
		cmd(0, 0),
	}}
	tm := map[string]string{"greeting": "saludo", "No": "No quiero"}

	if !Patch(list, tm) {
		t.Fatal("Patch reported no change")
	}
	want := []int{
		rvdata.CodeComment, rvdata.CodeShowText, rvdata.CodeTextLine,
		rvdata.CodeComment, rvdata.CodeShowChoice,
		0,
	}
	if got := codesOf(list); !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if got := textLineAt(t, list, 2); got != "saludo" {
		t.Errorf("message line = %q", got)
	}
	if got := choicesOf(t, list.Elems[4]); !reflect.DeepEqual(got, []string{"Yes", "No quiero"}) {
		t.Errorf("choices = %v", got)
	}
}

func TestPatchNilAndEmpty(t *testing.T) {
	if Patch(nil, map[string]string{"a": "b"}) {
		t.Error("Patch(nil) reported a change")
	}
	empty := &rvdata.Array{}
	if Patch(empty, map[string]string{"a": "b"}) {
		t.Error("Patch(empty) reported a change")
	}
}

func TestPatchMarkerSurvivesExportCycle(t *testing.T) {
	// Translate, then export: the emitted block must carry the original.
	list := messageList()
	Patch(list, map[string]string{"Hello\nWorld": "Hallo\nWelt"})

	got := ExportLines(list.Elems)
	want := []string{
		"{{ Select Face Graphic: Actor1, 0 }}",
		"#Message#",
		"Hello",
		"World",
		"##",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExportLines after Patch = %q, want %q", got, want)
	}
}

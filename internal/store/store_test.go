package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKey(t *testing.T) {
	if got := Key("Actors.rvdata2", 3, "name"); got != "Actors.rvdata2:3:name" {
		t.Errorf("Key = %q", got)
	}
}

func TestOriginalFreezesFirstValue(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "OriginalTexts.json"))
	if s.Dirty() {
		t.Error("fresh store is dirty")
	}

	k := Key("Actors.rvdata2", 1, "name")
	if got := s.Original(k, "Alice"); got != "Alice" {
		t.Errorf("first Original = %q", got)
	}
	if !s.Dirty() || s.Len() != 1 {
		t.Errorf("Dirty = %v, Len = %d", s.Dirty(), s.Len())
	}

	// Later values never displace the frozen one.
	if got := s.Original(k, "Alicia"); got != "Alice" {
		t.Errorf("second Original = %q, want frozen Alice", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "OriginalTexts.json")

	s := Load(path)
	s.Original(Key("Items.rvdata2", 2, "description"), "A potion.\nRestores 50 HP.")
	s.Original(Key("System.rvdata2", 0, "game_title"), "勇者の旅")
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.Dirty() {
		t.Error("store still dirty after Save")
	}

	re := Load(path)
	if re.Len() != 2 {
		t.Fatalf("reloaded Len = %d, want 2", re.Len())
	}
	if got := re.Original(Key("Items.rvdata2", 2, "description"), "changed"); got != "A potion.\nRestores 50 HP." {
		t.Errorf("reloaded value = %q", got)
	}
	if re.Dirty() {
		t.Error("lookup of an existing key marked the store dirty")
	}
}

func TestSaveSkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "OriginalTexts.json")
	s := Load(path)
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("clean store wrote a file")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "OriginalTexts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	// The store still works after starting over.
	s.Original(Key("Weapons.rvdata2", 1, "name"), "Sword")
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := Load(path).Len(); got != 1 {
		t.Errorf("reloaded Len = %d, want 1", got)
	}
}

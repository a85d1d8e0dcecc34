// Package gamefs knows the fixed on-disk layout of a VX Ace game and the
// StringScripts mirror tree, and provides the write discipline every output
// file uses: write-temp-then-atomic-rename, UTF-8 BOM text files, and
// BOM-tolerant reads.
package gamefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	DataDirName    = "Data"
	ScriptsDirName = "StringScripts"
	OriginDirName  = "StringScripts_Origin"
	StoreFileName  = "OriginalTexts.json"

	DatabaseDirName = "Database"
	MapInfosName    = "MapInfos"
	SystemName      = "System"
	VocabTxtName    = "Vocab.txt"
	CommonTxtName   = "CommonEvents.txt"

	MapInfosFile = "MapInfos.rvdata2"
	CommonFile   = "CommonEvents.rvdata2"
	SystemFile   = "System.rvdata2"
)

var mapTxtRe = regexp.MustCompile(`(?i)^Map(\d{3})\.txt$`)

// MapFileName returns the Data file name for a map id (Map003.rvdata2).
func MapFileName(id int) string {
	return fmt.Sprintf("Map%03d.rvdata2", id)
}

// MapTxtName returns the StringScripts file name for a map id (Map003.txt).
func MapTxtName(id int) string {
	return fmt.Sprintf("Map%03d.txt", id)
}

// MapIDFromTxt extracts the map id from a Map###.txt file name.
func MapIDFromTxt(name string) (int, bool) {
	m := mapTxtRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// WriteFileAtomic writes data to path via a temp file and atomic rename, so
// a half-written file is never observed in place.
func WriteFileAtomic(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteTextFile writes lines as a UTF-8 file with a BOM and LF endings,
// matching the files the editor tooling expects.
func WriteTextFile(path string, lines []string) error {
	var sb strings.Builder
	sb.WriteString("\uFEFF")
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return WriteFileAtomic(path, []byte(sb.String()))
}

// ReadTextFile reads a text file, stripping any leading BOM.
func ReadTextFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := unicode.UTF8BOM.NewDecoder()
	data, err := io.ReadAll(transform.NewReader(f, dec))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// CopyTree deep-copies the directory src to dst. dst must not exist.
func CopyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return EnsureDir(target)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		return WriteFileAtomic(target, data)
	})
}

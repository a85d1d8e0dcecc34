// Package export builds the StringScripts tree from a game's Data files:
// map and common-event dialogue via the command-list scanner, database
// tables through the original-text store, and finally the frozen
// StringScripts_Origin snapshot that every later import diffs against.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"vxscripts/internal/events"
	"vxscripts/internal/gamefs"
	"vxscripts/internal/rvdata"
	"vxscripts/internal/store"
)

// Exporter runs one export pass over a game directory.
type Exporter struct {
	Codec     rvdata.Codec
	Root      string
	DataDir   string
	StoreFile string
}

// Result summarizes what an export pass produced.
type Result struct {
	MapFiles      int
	CommonEvents  bool
	DatabaseFiles int
	StoreEntries  int
}

func NewExporter(codec rvdata.Codec, root string) *Exporter {
	return &Exporter{
		Codec:     codec,
		Root:      root,
		DataDir:   gamefs.DataDirName,
		StoreFile: gamefs.StoreFileName,
	}
}

// Run exports the whole game. It is destructive to previous StringScripts
// output (a fresh export is an explicit reset) but never touches Data files.
func (e *Exporter) Run() (*Result, error) {
	dataDir := filepath.Join(e.Root, e.DataDir)
	mapInfosPath := filepath.Join(dataDir, gamefs.MapInfosFile)
	if _, err := os.Stat(mapInfosPath); err != nil {
		return nil, fmt.Errorf("no VX Ace data found: %s: %w", mapInfosPath, err)
	}

	scriptsDir := filepath.Join(e.Root, gamefs.ScriptsDirName)
	originDir := filepath.Join(e.Root, gamefs.OriginDirName)
	if err := os.RemoveAll(scriptsDir); err != nil {
		return nil, fmt.Errorf("clear old StringScripts: %w", err)
	}
	if err := os.RemoveAll(originDir); err != nil {
		return nil, fmt.Errorf("clear old StringScripts_Origin: %w", err)
	}
	if err := gamefs.EnsureDir(scriptsDir); err != nil {
		return nil, err
	}

	mapInfosVal, err := e.load(mapInfosPath)
	if err != nil {
		return nil, err
	}
	mapInfos, ok := mapInfosVal.(*rvdata.Hash)
	if !ok {
		return nil, fmt.Errorf("unexpected MapInfos shape: want Hash(MapID=>MapInfo)")
	}

	st := store.Load(filepath.Join(e.Root, e.StoreFile))
	res := &Result{}

	if err := e.exportMaps(dataDir, scriptsDir, mapInfos, res); err != nil {
		return nil, err
	}
	if err := e.exportCommonEvents(dataDir, scriptsDir, res); err != nil {
		return nil, err
	}
	if err := e.exportDatabase(dataDir, scriptsDir, mapInfos, st, res); err != nil {
		return nil, err
	}

	res.StoreEntries = st.Len()
	if st.Dirty() {
		if err := st.Save(); err != nil {
			return nil, err
		}
	}

	// The Origin copy is the immutable diff baseline for every later import.
	if err := gamefs.CopyTree(scriptsDir, originDir); err != nil {
		return nil, fmt.Errorf("snapshot StringScripts_Origin: %w", err)
	}

	log.Info().
		Int("maps", res.MapFiles).
		Bool("common_events", res.CommonEvents).
		Int("database_files", res.DatabaseFiles).
		Int("frozen_fields", res.StoreEntries).
		Msg("Export complete")
	return res, nil
}

func (e *Exporter) load(path string) (rvdata.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := e.Codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}

func hasMarkerLine(lines []string) bool {
	for _, line := range lines {
		if len(line) > 0 && line[0] == '#' {
			return true
		}
	}
	return false
}

func (e *Exporter) exportMaps(dataDir, scriptsDir string, mapInfos *rvdata.Hash, res *Result) error {
	for _, id := range mapInfos.SortedIntKeys() {
		mapPath := filepath.Join(dataDir, gamefs.MapFileName(id))
		if _, err := os.Stat(mapPath); err != nil {
			continue
		}
		mapObj, err := e.load(mapPath)
		if err != nil {
			log.Warn().Err(err).Str("file", gamefs.MapFileName(id)).Msg("Skipping unreadable map")
			continue
		}

		evHash, ok := rvdata.GetAttr(mapObj, "events", nil).(*rvdata.Hash)
		if !ok || evHash == nil || len(evHash.Pairs) == 0 {
			continue
		}

		var out []string
		for _, evID := range evHash.SortedIntKeys() {
			ev, _ := evHash.Get(rvdata.Int(evID))
			pages, ok := rvdata.GetAttr(ev, "pages", nil).(*rvdata.Array)
			if !ok || pages == nil || len(pages.Elems) == 0 {
				continue
			}

			entry := []string{fmt.Sprintf("*****Entry%d*****", evID)}
			for pi, page := range pages.Elems {
				entry = append(entry, fmt.Sprintf("-----Page%d-----", pi+1))
				if list, ok := rvdata.GetAttr(page, "list", nil).(*rvdata.Array); ok && list != nil {
					entry = append(entry, events.ExportLines(list.Elems)...)
				}
			}
			if hasMarkerLine(entry) {
				out = append(out, entry...)
			}
		}

		if !hasMarkerLine(out) {
			continue
		}
		if err := gamefs.WriteTextFile(filepath.Join(scriptsDir, gamefs.MapTxtName(id)), out); err != nil {
			return err
		}
		res.MapFiles++
	}
	log.Info().Int("files", res.MapFiles).Msg("Map dialogue exported")
	return nil
}

func (e *Exporter) exportCommonEvents(dataDir, scriptsDir string, res *Result) error {
	commonPath := filepath.Join(dataDir, gamefs.CommonFile)
	if _, err := os.Stat(commonPath); err != nil {
		return nil
	}
	commonVal, err := e.load(commonPath)
	if err != nil {
		log.Warn().Err(err).Msg("Skipping unreadable common events")
		return nil
	}
	arr, ok := commonVal.(*rvdata.Array)
	if !ok {
		return nil
	}

	var out []string
	for idx, ce := range arr.Elems {
		if _, isNil := ce.(rvdata.Nil); isNil || ce == nil {
			continue
		}
		list, ok := rvdata.GetAttr(ce, "list", nil).(*rvdata.Array)
		if !ok || list == nil {
			continue
		}
		entry := []string{fmt.Sprintf("*****Entry%d*****", idx), "-----Page1-----"}
		entry = append(entry, events.ExportLines(list.Elems)...)
		if hasMarkerLine(entry) {
			out = append(out, entry...)
		}
	}

	if !hasMarkerLine(out) {
		return nil
	}
	if err := gamefs.WriteTextFile(filepath.Join(scriptsDir, gamefs.CommonTxtName), out); err != nil {
		return err
	}
	res.CommonEvents = true
	log.Info().Msg("Common event dialogue exported")
	return nil
}

// Package importer applies an edited StringScripts tree back onto the live
// game data. Translation maps are re-derived per file from the immutable
// StringScripts_Origin snapshot, command lists are patched in a backward
// pass, and only files that actually changed are re-encoded and replaced.
package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"vxscripts/internal/events"
	"vxscripts/internal/gamefs"
	"vxscripts/internal/rvdata"
	"vxscripts/internal/translation"
)

// Importer runs one import pass over a game directory.
type Importer struct {
	Codec   rvdata.Codec
	Root    string
	DataDir string
}

func NewImporter(codec rvdata.Codec, root string) *Importer {
	return &Importer{Codec: codec, Root: root, DataDir: gamefs.DataDirName}
}

// Run imports every translated file and returns the number of Data files
// rewritten. A working tree byte-identical to Origin rewrites nothing.
func (im *Importer) Run() (int, error) {
	dataDir := filepath.Join(im.Root, im.DataDir)
	if _, err := os.Stat(filepath.Join(dataDir, gamefs.MapInfosFile)); err != nil {
		return 0, fmt.Errorf("no VX Ace data found: %w", err)
	}

	scriptsDir := filepath.Join(im.Root, gamefs.ScriptsDirName)
	originDir := filepath.Join(im.Root, gamefs.OriginDirName)
	for _, dir := range []string{scriptsDir, originDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return 0, fmt.Errorf("missing %s: run export first", dir)
		}
	}

	modified := 0

	n, err := im.importMaps(dataDir, scriptsDir, originDir)
	if err != nil {
		return modified, err
	}
	modified += n

	n, err = im.importCommonEvents(dataDir, scriptsDir, originDir)
	if err != nil {
		return modified, err
	}
	modified += n

	n, err = im.importDatabase(dataDir, scriptsDir)
	if err != nil {
		return modified, err
	}
	modified += n

	im.warnStrayFiles(scriptsDir, originDir)

	log.Info().Int("files", modified).Msg("Import complete")
	return modified, nil
}

func (im *Importer) load(path string) (rvdata.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := im.Codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}

func (im *Importer) save(path string, v rvdata.Value) error {
	data, err := im.Codec.Encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return gamefs.WriteFileAtomic(path, data)
}

// buildMap loads the Origin/working pair for name and derives its
// translation map. ok is false when the pair is incomplete.
func buildMap(name, scriptsDir, originDir string) (map[string]string, bool) {
	originText, err := gamefs.ReadTextFile(filepath.Join(originDir, name))
	if err != nil {
		return nil, false
	}
	currentText, err := gamefs.ReadTextFile(filepath.Join(scriptsDir, name))
	if err != nil {
		log.Debug().Str("file", name).Msg("No working copy, skipping")
		return nil, false
	}
	return translation.BuildMap(name, originText, currentText), true
}

func (im *Importer) importMaps(dataDir, scriptsDir, originDir string) (int, error) {
	entries, err := os.ReadDir(originDir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", originDir, err)
	}

	modified := 0
	for _, entry := range entries {
		mapID, ok := gamefs.MapIDFromTxt(entry.Name())
		if !ok {
			continue
		}
		tm, ok := buildMap(entry.Name(), scriptsDir, originDir)
		if !ok || len(tm) == 0 {
			continue
		}

		mapPath := filepath.Join(dataDir, gamefs.MapFileName(mapID))
		if _, err := os.Stat(mapPath); err != nil {
			continue
		}
		mapObj, err := im.load(mapPath)
		if err != nil {
			log.Warn().Err(err).Str("file", gamefs.MapFileName(mapID)).Msg("Skipping unreadable map")
			continue
		}

		evHash, ok := rvdata.GetAttr(mapObj, "events", nil).(*rvdata.Hash)
		if !ok || evHash == nil {
			continue
		}

		touched := false
		for _, p := range evHash.Pairs {
			pages, ok := rvdata.GetAttr(p.Val, "pages", nil).(*rvdata.Array)
			if !ok || pages == nil {
				continue
			}
			for _, page := range pages.Elems {
				if list, ok := rvdata.GetAttr(page, "list", nil).(*rvdata.Array); ok && list != nil {
					if events.Patch(list, tm) {
						touched = true
					}
				}
			}
		}

		if touched {
			if err := im.save(mapPath, mapObj); err != nil {
				return modified, err
			}
			modified++
			log.Info().Str("file", gamefs.MapFileName(mapID)).Msg("Map updated")
		}
	}
	return modified, nil
}

func (im *Importer) importCommonEvents(dataDir, scriptsDir, originDir string) (int, error) {
	tm, ok := buildMap(gamefs.CommonTxtName, scriptsDir, originDir)
	if !ok || len(tm) == 0 {
		return 0, nil
	}

	commonPath := filepath.Join(dataDir, gamefs.CommonFile)
	if _, err := os.Stat(commonPath); err != nil {
		return 0, nil
	}
	commonVal, err := im.load(commonPath)
	if err != nil {
		log.Warn().Err(err).Msg("Skipping unreadable common events")
		return 0, nil
	}
	arr, ok := commonVal.(*rvdata.Array)
	if !ok {
		return 0, nil
	}

	touched := false
	for _, ce := range arr.Elems {
		if list, ok := rvdata.GetAttr(ce, "list", nil).(*rvdata.Array); ok && list != nil {
			if events.Patch(list, tm) {
				touched = true
			}
		}
	}
	if !touched {
		return 0, nil
	}
	if err := im.save(commonPath, commonVal); err != nil {
		return 0, err
	}
	log.Info().Msg("Common events updated")
	return 1, nil
}

// warnStrayFiles flags working-tree files that have no Origin counterpart:
// they cannot be paired and are ignored by the import.
func (im *Importer) warnStrayFiles(scriptsDir, originDir string) {
	_ = filepath.Walk(scriptsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".txt" {
			return nil
		}
		rel, err := filepath.Rel(scriptsDir, path)
		if err != nil {
			return nil
		}
		if _, err := os.Stat(filepath.Join(originDir, rel)); os.IsNotExist(err) {
			log.Warn().Str("file", rel).Msg("No Origin counterpart, file skipped")
		}
		return nil
	})
}

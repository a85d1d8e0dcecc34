package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"vxscripts/internal/gamefs"
	"vxscripts/internal/rvdata"
	"vxscripts/internal/schema"
	"vxscripts/internal/store"
	"vxscripts/internal/textutil"
)

// exportDatabase writes the compact database files. Every field goes through
// the original-text store: the first export freezes the current value, every
// later export reoffers the frozen one no matter what the live field holds.
func (e *Exporter) exportDatabase(dataDir, scriptsDir string, mapInfos *rvdata.Hash, st *store.Store, res *Result) error {
	dbRoot := filepath.Join(scriptsDir, gamefs.DatabaseDirName)
	if err := gamefs.EnsureDir(dbRoot); err != nil {
		return err
	}

	for _, tbl := range schema.Tables {
		n, err := e.exportTable(dataDir, dbRoot, tbl, st)
		if err != nil {
			return err
		}
		res.DatabaseFiles += n
	}

	n, err := e.exportMapInfos(dbRoot, mapInfos, st)
	if err != nil {
		return err
	}
	res.DatabaseFiles += n

	n, err = e.exportSystem(dataDir, scriptsDir, dbRoot, st)
	if err != nil {
		return err
	}
	res.DatabaseFiles += n

	log.Info().Int("files", res.DatabaseFiles).Msg("Database exported")
	return nil
}

func (e *Exporter) exportTable(dataDir, dbRoot string, tbl schema.Table, st *store.Store) (int, error) {
	path := filepath.Join(dataDir, tbl.File)
	if _, err := os.Stat(path); err != nil {
		return 0, nil
	}
	val, err := e.load(path)
	if err != nil {
		log.Warn().Err(err).Str("file", tbl.File).Msg("Skipping unreadable database table")
		return 0, nil
	}
	arr, ok := val.(*rvdata.Array)
	if !ok {
		return 0, nil
	}

	var out []string
	for idx, obj := range arr.Elems {
		if idx == 0 {
			continue // slot 0 is unused by the engine
		}
		if _, isNil := obj.(rvdata.Nil); isNil || obj == nil {
			continue
		}
		entry := []string{fmt.Sprintf("*****Entry%d*****", idx)}
		for _, f := range tbl.Fields {
			current := textutil.NormalizeNewlines(rvdata.AsString(rvdata.GetAttr(obj, f.Attr, nil)))
			original := textutil.NormalizeNewlines(st.Original(store.Key(tbl.File, idx, f.Attr), current))
			if f.Multiline {
				if original != "" {
					entry = append(entry, "#"+f.Marker+"#", textutil.EscapeInline(original))
				}
			} else {
				entry = append(entry, "#"+f.Marker+"#", original)
			}
		}
		if hasMarkerLine(entry) {
			out = append(out, entry...)
			out = append(out, "")
		}
	}

	if !hasMarkerLine(out) {
		return 0, nil
	}
	outFile := filepath.Join(dbRoot, tbl.Name, tbl.Name+".txt")
	if err := gamefs.WriteTextFile(outFile, out); err != nil {
		return 0, err
	}
	return 1, nil
}

func (e *Exporter) exportMapInfos(dbRoot string, mapInfos *rvdata.Hash, st *store.Store) (int, error) {
	var out []string
	for _, id := range mapInfos.SortedIntKeys() {
		info, _ := mapInfos.Get(rvdata.Int(id))
		if _, isNil := info.(rvdata.Nil); isNil || info == nil {
			continue
		}
		name := textutil.NormalizeNewlines(rvdata.AsString(rvdata.GetAttr(info, "name", nil)))
		original := st.Original(store.Key(gamefs.MapInfosFile, id, "name"), name)
		out = append(out,
			fmt.Sprintf("*****Entry%d*****", id),
			"#Name#",
			textutil.NormalizeNewlines(original),
			"")
	}
	if !hasMarkerLine(out) {
		return 0, nil
	}
	outFile := filepath.Join(dbRoot, gamefs.MapInfosName, gamefs.MapInfosName+".txt")
	if err := gamefs.WriteTextFile(outFile, out); err != nil {
		return 0, err
	}
	return 1, nil
}

func (e *Exporter) exportSystem(dataDir, scriptsDir, dbRoot string, st *store.Store) (int, error) {
	systemPath := filepath.Join(dataDir, gamefs.SystemFile)
	if _, err := os.Stat(systemPath); err != nil {
		return 0, nil
	}
	systemObj, err := e.load(systemPath)
	if err != nil {
		log.Warn().Err(err).Str("file", gamefs.SystemFile).Msg("Skipping unreadable System data")
		return 0, nil
	}

	written := 0

	title := textutil.NormalizeNewlines(rvdata.AsString(rvdata.GetAttr(systemObj, "game_title", nil)))
	original := st.Original(store.Key(gamefs.SystemFile, 0, "game_title"), title)
	systemLines := []string{"#Name#", textutil.EscapeInline(textutil.NormalizeNewlines(original)), ""}
	if hasMarkerLine(systemLines) {
		outFile := filepath.Join(dbRoot, gamefs.SystemName, gamefs.SystemName+".txt")
		if err := gamefs.WriteTextFile(outFile, systemLines); err != nil {
			return written, err
		}
		written++
	}

	var vocabLines []string
	usedMarkers := make(map[string]bool)
	addVocab := func(markerName, key, value string) {
		if usedMarkers[markerName] {
			log.Warn().Str("marker", markerName).Msg("Duplicate vocab marker, skipped")
			return
		}
		usedMarkers[markerName] = true
		orig := textutil.NormalizeNewlines(st.Original(key, value))
		if orig == "" {
			return
		}
		vocabLines = append(vocabLines, "#"+markerName+"#", textutil.EscapeInline(orig), "")
	}

	// CurrencyUnit lives on System but belongs with the vocabulary terms.
	currency := textutil.NormalizeNewlines(rvdata.AsString(rvdata.GetAttr(systemObj, "currency_unit", nil)))
	addVocab("CurrencyUnit", store.Key(gamefs.SystemFile, 0, "currency_unit"), currency)

	terms := rvdata.GetAttr(systemObj, "terms", nil)
	if terms != nil {
		for _, group := range schema.VocabGroups {
			arr, ok := rvdata.GetAttr(terms, group.Attr, nil).(*rvdata.Array)
			if !ok || arr == nil || len(arr.Elems) == 0 {
				continue
			}
			for _, idx := range group.SortedIndices() {
				if idx < 0 || idx >= len(arr.Elems) {
					continue
				}
				term := textutil.NormalizeNewlines(rvdata.AsString(arr.Elems[idx]))
				if term == "" {
					continue
				}
				key := fmt.Sprintf("%s:terms.%s:%d", gamefs.SystemFile, group.Attr, idx)
				addVocab(group.Markers[idx], key, term)
			}
		}
	}

	if hasMarkerLine(vocabLines) {
		if err := gamefs.WriteTextFile(filepath.Join(scriptsDir, gamefs.VocabTxtName), vocabLines); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

package importer

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"vxscripts/internal/gamefs"
	"vxscripts/internal/rvdata"
	"vxscripts/internal/schema"
	"vxscripts/internal/scripts"
	"vxscripts/internal/textutil"
)

// setField overwrites an object attribute with translated text, preserving
// the old value's string metadata. Reports whether the value changed; equal
// values are left alone so an unchanged file is never rewritten.
func setField(obj rvdata.Value, attr, text string) bool {
	old := rvdata.GetAttr(obj, attr, nil)
	if s, ok := old.(*rvdata.Str); ok && s != nil && s.Text == text {
		return false
	}
	return rvdata.SetAttr(obj, attr, rvdata.StrLike(text, old))
}

func (im *Importer) importDatabase(dataDir, scriptsDir string) (int, error) {
	dbDir := filepath.Join(scriptsDir, gamefs.DatabaseDirName)
	modified := 0

	for _, tbl := range schema.Tables {
		n, err := im.importTable(dataDir, dbDir, tbl)
		if err != nil {
			return modified, err
		}
		modified += n
	}

	n, err := im.importMapInfos(dataDir, dbDir)
	if err != nil {
		return modified, err
	}
	modified += n

	n, err = im.importSystem(dataDir, scriptsDir, dbDir)
	if err != nil {
		return modified, err
	}
	modified += n

	return modified, nil
}

func (im *Importer) importTable(dataDir, dbDir string, tbl schema.Table) (int, error) {
	compactPath := filepath.Join(dbDir, tbl.Name, tbl.Name+".txt")
	text, err := gamefs.ReadTextFile(compactPath)
	if err != nil {
		return 0, nil
	}
	dataPath := filepath.Join(dataDir, tbl.File)
	if _, err := os.Stat(dataPath); err != nil {
		return 0, nil
	}
	val, err := im.load(dataPath)
	if err != nil {
		log.Warn().Err(err).Str("file", tbl.File).Msg("Skipping unreadable database table")
		return 0, nil
	}
	arr, ok := val.(*rvdata.Array)
	if !ok {
		return 0, nil
	}

	touched := false
	for idx, fields := range scripts.ParseCompact(text) {
		if idx <= 0 || idx >= len(arr.Elems) {
			continue
		}
		obj := arr.Elems[idx]
		if _, isNil := obj.(rvdata.Nil); isNil || obj == nil {
			continue
		}
		for _, f := range tbl.Fields {
			v, ok := fields[f.Marker]
			if !ok {
				continue
			}
			if f.Multiline {
				v = textutil.UnescapeInline(v)
			}
			if setField(obj, f.Attr, v) {
				touched = true
			}
		}
	}

	if !touched {
		return 0, nil
	}
	if err := im.save(dataPath, val); err != nil {
		return 0, err
	}
	log.Info().Str("file", tbl.File).Msg("Database table updated")
	return 1, nil
}

func (im *Importer) importMapInfos(dataDir, dbDir string) (int, error) {
	compactPath := filepath.Join(dbDir, gamefs.MapInfosName, gamefs.MapInfosName+".txt")
	text, err := gamefs.ReadTextFile(compactPath)
	if err != nil {
		return 0, nil
	}
	dataPath := filepath.Join(dataDir, gamefs.MapInfosFile)
	mapInfosVal, err := im.load(dataPath)
	if err != nil {
		return 0, nil
	}
	mapInfos, ok := mapInfosVal.(*rvdata.Hash)
	if !ok {
		return 0, nil
	}

	touched := false
	for id, fields := range scripts.ParseCompact(text) {
		name, ok := fields["Name"]
		if !ok {
			continue
		}
		info, ok := mapInfos.Get(rvdata.Int(id))
		if !ok {
			continue
		}
		if setField(info, "name", name) {
			touched = true
		}
	}

	if !touched {
		return 0, nil
	}
	if err := im.save(dataPath, mapInfosVal); err != nil {
		return 0, err
	}
	log.Info().Msg("MapInfos updated")
	return 1, nil
}

func (im *Importer) importSystem(dataDir, scriptsDir, dbDir string) (int, error) {
	dataPath := filepath.Join(dataDir, gamefs.SystemFile)
	if _, err := os.Stat(dataPath); err != nil {
		return 0, nil
	}
	systemObj, err := im.load(dataPath)
	if err != nil {
		log.Warn().Err(err).Str("file", gamefs.SystemFile).Msg("Skipping unreadable System data")
		return 0, nil
	}

	touched := false

	systemPath := filepath.Join(dbDir, gamefs.SystemName, gamefs.SystemName+".txt")
	if text, err := gamefs.ReadTextFile(systemPath); err == nil {
		if name, ok := scripts.ParseFlat(text)["Name"]; ok {
			if setField(systemObj, "game_title", textutil.UnescapeInline(name)) {
				touched = true
			}
		}
	}

	vocabPath := filepath.Join(scriptsDir, gamefs.VocabTxtName)
	if text, err := gamefs.ReadTextFile(vocabPath); err == nil {
		vocab := scripts.ParseFlat(text)

		if unit, ok := vocab["CurrencyUnit"]; ok {
			if setField(systemObj, "currency_unit", textutil.UnescapeInline(unit)) {
				touched = true
			}
		}

		terms := rvdata.GetAttr(systemObj, "terms", nil)
		if terms != nil {
			for _, group := range schema.VocabGroups {
				arr, ok := rvdata.GetAttr(terms, group.Attr, nil).(*rvdata.Array)
				if !ok || arr == nil {
					continue
				}
				for _, idx := range group.SortedIndices() {
					if idx < 0 || idx >= len(arr.Elems) {
						continue
					}
					v, ok := vocab[group.Markers[idx]]
					if !ok {
						continue
					}
					v = textutil.UnescapeInline(v)
					if rvdata.AsString(arr.Elems[idx]) == v {
						continue
					}
					arr.Elems[idx] = rvdata.StrLike(v, arr.Elems[idx])
					touched = true
				}
			}
		}
	}

	if !touched {
		return 0, nil
	}
	if err := im.save(dataPath, systemObj); err != nil {
		return 0, err
	}
	log.Info().Msg("System data updated")
	return 1, nil
}

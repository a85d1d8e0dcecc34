// Package cli wires the cobra command tree: export, import and verify, each
// taking a game root directory.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vxscripts/internal/config"
	"vxscripts/internal/export"
	"vxscripts/internal/gamefs"
	"vxscripts/internal/importer"
	"vxscripts/internal/marshal"
	"vxscripts/internal/translation"
)

// Execute runs the CLI application.
func Execute() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg.NoColor})

	rootCmd := &cobra.Command{
		Use:   "vxscripts",
		Short: "StringScripts converter for RPG Maker VX Ace games",
		Long: "Exports translatable text from .rvdata2 game data into an editable\n" +
			"StringScripts tree and imports edited text back, preserving originals\n" +
			"for lossless rollback.",
	}

	rootCmd.AddCommand(exportCmd(cfg))
	rootCmd.AddCommand(importCmd(cfg))
	rootCmd.AddCommand(verifyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exportCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "export <game-root>",
		Short: "Build StringScripts, StringScripts_Origin and the original-text store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := export.NewExporter(marshal.New(), args[0])
			e.DataDir = cfg.DataDir
			e.StoreFile = cfg.StoreFile
			_, err := e.Run()
			return err
		},
	}
}

func importCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "import <game-root>",
		Short: "Apply edited StringScripts back onto the game data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im := importer.NewImporter(marshal.New(), args[0])
			im.DataDir = cfg.DataDir
			_, err := im.Run()
			return err
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <game-root>",
		Short: "Report pairing hazards between StringScripts and its Origin snapshot",
		Long: "Entries are paired by position during import; an inserted or deleted\n" +
			"block silently shifts every later pairing in that file. verify surfaces\n" +
			"those hazards without touching anything.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args[0])
		},
	}
}

func runVerify(root string) error {
	scriptsDir := filepath.Join(root, gamefs.ScriptsDirName)
	originDir := filepath.Join(root, gamefs.OriginDirName)
	for _, dir := range []string{scriptsDir, originDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("missing %s: run export first", dir)
		}
	}

	checked, flagged := 0, 0
	err := filepath.Walk(originDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".txt" {
			return nil
		}
		rel, err := filepath.Rel(originDir, path)
		if err != nil {
			return nil
		}
		originText, err := gamefs.ReadTextFile(path)
		if err != nil {
			return nil
		}
		currentText, err := gamefs.ReadTextFile(filepath.Join(scriptsDir, rel))
		if err != nil {
			log.Warn().Str("file", rel).Msg("No working copy")
			flagged++
			return nil
		}
		checked++
		for _, finding := range translation.Verify(originText, currentText) {
			log.Warn().Str("file", rel).Msg(finding)
			flagged++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", originDir, err)
	}

	log.Info().Int("files", checked).Int("findings", flagged).Msg("Verify complete")
	return nil
}

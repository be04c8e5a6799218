package main

import (
	"github.com/spf13/cobra"

	"github.com/hoanglong/serica/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "serica",
	Short: "Webnovel translation pipeline with glossary-consistent entity names",
	Long: `Serica translates serialized webnovels chapter by chapter while keeping
character, place, and term names consistent across the whole series.

The pipeline for each chapter:
  - Extract named entities and a summary from the source text
  - Register new entities in the work's glossary
  - Translate with the established glossary enforced in the prompt
  - Verify every new entity came back with a translation before any write

Translations for a work and language run in chapter order, so later
chapters always see the terminology earlier chapters established.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.serica/config.yaml)",
	)

	rootCmd.AddCommand(versionCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the export-pdfannots CLI. It exports
// the annotations of PDF files into a Logseq graph, pushes them to a Notion
// database or SQLite table, or dumps them in one of several formats.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/export-pdfannots/internal/annotation"
	"github.com/pdiddy/export-pdfannots/internal/pdfread"
	"github.com/pdiddy/export-pdfannots/internal/secrets"
	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "export-pdfannots/0.1"

// Configuration keys. Each can be set in export-pdfannots.yaml, by a flag,
// or through EXPORT_PDFANNOTS_<KEY> with dots replaced by underscores.
const (
	keyGraph         = "logseq.graph"
	keyAssetFolder   = "logseq.asset_folder"
	keyPagesFolder   = "logseq.pages_folder"
	keySymlink       = "logseq.symlink"
	keyLogseqColor   = "logseq.color"
	keyDatabase      = "table.database"
	keyNotionVersion = "table.notion_version"
	keyTimeout       = "table.timeout"
	keyMarkdownLevel = "extract.markdown_level"
	keyExtractColor  = "extract.color"
)

// notionAPIKey is resolved once at startup from NOTION_API_KEY (possibly
// set by .env) or .secrets/notion-api-key.
var notionAPIKey string

// rootCmd is the base command for the export-pdfannots CLI.
var rootCmd = &cobra.Command{
	Use:   "export-pdfannots",
	Short: "Export PDF annotations to Logseq, Notion or SQLite",
	Long: `export-pdfannots reads the annotations of PDF files and exports them.

The logseq command places each PDF in a Logseq graph together with a
highlights file and an annotation page. The push command appends one row
per annotation to a Notion database or SQLite table, skipping annotations
whose text is already stored. The dump command prints the annotations of a
single PDF.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).Warn("could not load .env")
		}
		key, err := secrets.Resolve(".secrets/", secrets.NotionAPIKey, secrets.NotionAPIKeyEnv)
		if err != nil {
			return err
		}
		notionAPIKey = key
		logrus.WithField("notion_api_key", notionAPIKey != "").Debug("resolved secrets")
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./export-pdfannots.yaml or ~/.config/export-pdfannots/export-pdfannots.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log diagnostics to stderr")
}

func initConfig() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("export-pdfannots")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "export-pdfannots"))
		}
	}

	viper.SetDefault(keyAssetFolder, types.DefaultAssetsFolder)
	viper.SetDefault(keyPagesFolder, types.DefaultPagesFolder)
	viper.SetDefault(keyLogseqColor, types.DefaultColor)
	viper.SetDefault(keyNotionVersion, types.DefaultNotionVersion)
	viper.SetDefault(keyTimeout, "60s")
	viper.SetDefault(keyMarkdownLevel, types.DefaultMarkdownLevel)
	viper.SetDefault(keyExtractColor, types.DefaultColor)

	viper.SetEnvPrefix("EXPORT_PDFANNOTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else if cfgFile != "" {
		logrus.WithError(err).Warn("could not read config file")
	}
}

// newReader returns the PDF reader used by every command.
func newReader() annotation.Reader {
	return &pdfread.Reader{Logger: logrus.StandardLogger()}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

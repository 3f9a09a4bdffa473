package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/export-pdfannots/internal/annotation"
)

// Dump formats.
const (
	formatEDN      = "edn"
	formatNote     = "note"
	formatMarkdown = "markdown"
	formatYAML     = "yaml"
	formatJSON     = "json"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <pdf>",
	Short: "Print the annotations of a PDF",
	Long: `Dump extracts the annotations of one PDF and prints them to stdout:

  edn       Logseq highlights file ({:highlights [...]}, Highlight annotations only)
  note      Logseq page blocks, one per annotation
  markdown  notes grouped under the preceding outline heading
  yaml      annotation rows as YAML
  json      annotation rows as JSON`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringP("format", "f", formatNote, "output format: edn, note, markdown, yaml, json")
	dumpCmd.Flags().Int("level", 0, "heading level for markdown output (default 2)")
	dumpCmd.Flags().String("color", "", "highlight color for edn output (default yellow)")

	viper.BindPFlag(keyMarkdownLevel, dumpCmd.Flags().Lookup("level"))
	viper.BindPFlag(keyExtractColor, dumpCmd.Flags().Lookup("color"))

	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	doc, err := annotation.New(args[0], newReader())
	if err != nil {
		return fmt.Errorf("extracting %s: %w", args[0], err)
	}
	return writeDump(cmd.OutOrStdout(), doc, format, viper.GetInt(keyMarkdownLevel), viper.GetString(keyExtractColor))
}

// writeDump renders doc in the given format.
func writeDump(w io.Writer, doc *annotation.Document, format string, level int, color string) error {
	switch format {
	case formatEDN:
		s, err := doc.ExportEDN(color)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
	case formatNote:
		fmt.Fprint(w, doc.ExportNote())
	case formatMarkdown:
		fmt.Fprintln(w, doc.ExportMarkdown(level))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc.Rows()); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc.Rows()); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want edn, note, markdown, yaml or json)", format)
	}
	return nil
}

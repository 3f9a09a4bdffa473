package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/export-pdfannots/internal/annotation"
	"github.com/pdiddy/export-pdfannots/internal/remote"
	"github.com/pdiddy/export-pdfannots/pkg/types"
)

var pushCmd = &cobra.Command{
	Use:   "push [pdfs...]",
	Short: "Append PDF annotations to a Notion database or SQLite table",
	Long: `Push appends one row per annotation (text, page, type, start_xy,
prior_outline, created, book) to the table named by --database:

  https://www.notion.so/<workspace>/<title>-<id>   a Notion database
  <id>                                             a Notion database id
  sqlite://<path>#<table>                          a local SQLite table

Rows whose text is already stored are skipped, so pushing the same PDF
twice appends nothing the second time. Notion requires NOTION_API_KEY, set
in the environment, in .env or in .secrets/notion-api-key.`,
	RunE: runPush,
}

func init() {
	pushCmd.Flags().String("database", "", "table locator (Notion URL or id, or sqlite://<path>#<table>)")
	pushCmd.Flags().String("notion-version", "", "Notion-Version header (default "+types.DefaultNotionVersion+")")
	pushCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	viper.BindPFlag(keyDatabase, pushCmd.Flags().Lookup("database"))
	viper.BindPFlag(keyNotionVersion, pushCmd.Flags().Lookup("notion-version"))
	viper.BindPFlag(keyTimeout, pushCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(pushCmd)
}

// tableConfig reads the table settings from viper.
func tableConfig() types.TableConfig {
	return types.TableConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration(keyTimeout),
			UserAgent: defaultUserAgent,
		},
		Database:      viper.GetString(keyDatabase),
		APIKey:        notionAPIKey,
		NotionVersion: viper.GetString(keyNotionVersion),
	}
}

func runPush(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files")
	}
	cfg := tableConfig()
	if cfg.Database == "" {
		return fmt.Errorf("no table configured (use --database or %s)", keyDatabase)
	}

	table, err := remote.OpenConfig(cfg)
	if err != nil {
		return err
	}
	defer table.Close()

	w := cmd.OutOrStdout()
	exporter := &remote.Exporter{Table: table, Logger: logrus.StandardLogger()}
	reader := newReader()

	var total remote.Summary
	failed := 0
	for _, path := range args {
		doc, err := annotation.New(path, reader)
		if err == nil {
			var s remote.Summary
			s, err = exporter.AddAnnotations(cmd.Context(), doc, w)
			total.Extracted += s.Extracted
			total.Duplicates += s.Duplicates
			total.Appended += s.Appended
		}
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
			failed++
		}
	}

	fmt.Fprintf(w, "\nPush summary: %d new, %d already stored, %d failed (total: %d PDFs)\n",
		total.Appended, total.Duplicates, failed, len(args))
	if failed > 0 {
		return fmt.Errorf("%d PDF(s) failed to push", failed)
	}
	return nil
}

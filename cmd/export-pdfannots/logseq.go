package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/export-pdfannots/internal/logseq"
	"github.com/pdiddy/export-pdfannots/pkg/types"
)

var logseqCmd = &cobra.Command{
	Use:   "logseq [pdfs...]",
	Short: "Export PDF annotations into a Logseq graph",
	Long: `Logseq places each PDF in the graph's asset folder (copied, or linked with
--symlink), writes its highlights to assets/<name>.edn for the Logseq PDF
viewer and writes pages/hls__<name>.md listing every annotation. A PDF
already present in the asset folder is not replaced; the page is always
rewritten.`,
	RunE: runLogseq,
}

func init() {
	logseqCmd.Flags().String("graph", "", "root folder of the Logseq graph")
	logseqCmd.Flags().String("asset-folder", "", "folder under the graph receiving the PDF (default assets)")
	logseqCmd.Flags().String("pages-folder", "", "folder under the graph receiving the page (default pages)")
	logseqCmd.Flags().Bool("symlink", false, "link the PDF instead of copying it")
	logseqCmd.Flags().String("color", "", "highlight color written to the .edn file (default yellow)")

	viper.BindPFlag(keyGraph, logseqCmd.Flags().Lookup("graph"))
	viper.BindPFlag(keyAssetFolder, logseqCmd.Flags().Lookup("asset-folder"))
	viper.BindPFlag(keyPagesFolder, logseqCmd.Flags().Lookup("pages-folder"))
	viper.BindPFlag(keySymlink, logseqCmd.Flags().Lookup("symlink"))
	viper.BindPFlag(keyLogseqColor, logseqCmd.Flags().Lookup("color"))

	rootCmd.AddCommand(logseqCmd)
}

// logseqConfig reads the logseq settings from viper.
func logseqConfig() types.LogseqConfig {
	return types.LogseqConfig{
		Graph:       viper.GetString(keyGraph),
		AssetFolder: viper.GetString(keyAssetFolder),
		PagesFolder: viper.GetString(keyPagesFolder),
		Symlink:     viper.GetBool(keySymlink),
		Color:       viper.GetString(keyLogseqColor),
	}.WithDefaults()
}

func runLogseq(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files")
	}
	cfg := logseqConfig()
	if cfg.Graph == "" {
		return fmt.Errorf("no Logseq graph configured (use --graph or %s)", keyGraph)
	}

	folder, err := logseq.NewFolder(cfg.Graph, newReader())
	if err != nil {
		return err
	}
	result := folder.AddBatch(args, cfg, cmd.OutOrStdout())
	if result.HasFailures() {
		return fmt.Errorf("%d PDF(s) failed to export", result.Failed)
	}
	return nil
}

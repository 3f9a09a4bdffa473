// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logseq exports PDF annotations into a Logseq graph folder: the
// PDF goes into an assets folder, its highlights into an .edn file next to
// it, and a generated hls__ page lists every annotation.
package logseq

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/export-pdfannots/internal/annotation"
	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// pagePrefix is prepended to the PDF stem to name the generated page.
const pagePrefix = "hls__"

const pageTemplate = "file:: [%s](file://%s)\nfile-path:: file://%s\n\n%s\n"

// Folder is a Logseq graph folder.
type Folder struct {
	// Root is the absolute path of the graph.
	Root string

	// Reader extracts annotations when AddPDF is not given a Document.
	Reader annotation.Reader
}

// NewFolder returns a Folder rooted at the absolute form of root.
func NewFolder(root string, r annotation.Reader) (*Folder, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving graph folder %s: %w", root, err)
	}
	return &Folder{Root: abs, Reader: r}, nil
}

// BatchResult holds the outcome of a batch export run.
type BatchResult struct {
	Added  int
	Failed int
}

// Total returns the number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Added + r.Failed
}

// HasFailures reports whether any PDF failed to export.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// AddPDF places the PDF in the asset folder, writes its highlights to
// assets/<stem>.edn and writes pages/hls__<stem>.md.
//
// A file already present under the PDF's name in the asset folder is left
// untouched. The .edn file always goes to the default assets folder, even
// when cfg names another asset folder; the page is always rewritten. When
// doc is nil the PDF is extracted with f.Reader.
func (f *Folder) AddPDF(pdfPath string, doc *annotation.Document, cfg types.LogseqConfig, w io.Writer) error {
	cfg = cfg.WithDefaults()

	defaultAssets := filepath.Join(f.Root, types.DefaultAssetsFolder)
	assetDir := filepath.Join(f.Root, cfg.AssetFolder)
	pagesDir := filepath.Join(f.Root, cfg.PagesFolder)
	for _, dir := range []string{defaultAssets, assetDir, pagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	name := filepath.Base(pdfPath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	target := filepath.Join(assetDir, name)

	placed, err := placePDF(pdfPath, target, cfg.Symlink)
	if err != nil {
		return err
	}
	if placed {
		fmt.Fprintf(w, "placed:  %s\n", target)
	} else {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", target)
	}

	if doc == nil {
		if f.Reader == nil {
			return fmt.Errorf("no annotations given and no reader configured for %s", pdfPath)
		}
		doc, err = annotation.New(pdfPath, f.Reader)
		if err != nil {
			return fmt.Errorf("extracting %s: %w", pdfPath, err)
		}
	}

	ednPath := filepath.Join(defaultAssets, stem+".edn")
	if err := doc.WriteEDN(ednPath, cfg.Color); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote:   %s\n", ednPath)

	pagePath := filepath.Join(pagesDir, pagePrefix+stem+".md")
	page := fmt.Sprintf(pageTemplate, name, target, target, doc.ExportNote())
	if err := os.WriteFile(pagePath, []byte(page), 0o644); err != nil {
		return fmt.Errorf("writing page %s: %w", pagePath, err)
	}
	fmt.Fprintf(w, "wrote:   %s\n", pagePath)
	return nil
}

// AddBatch exports each PDF in turn, printing per-file status to w and
// returning a summary. It continues after individual failures.
func (f *Folder) AddBatch(pdfPaths []string, cfg types.LogseqConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range pdfPaths {
		if err := f.AddPDF(p, nil, cfg, w); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", p, err)
			result.Failed++
			continue
		}
		result.Added++
	}
	fmt.Fprintf(w, "\nBatch summary: %d added, %d failed (total: %d)\n",
		result.Added, result.Failed, result.Total())
	return result
}

// placePDF copies or links src to target unless something already exists
// at target. It reports whether it placed the file.
func placePDF(src, target string, symlink bool) (bool, error) {
	if _, err := os.Lstat(target); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking %s: %w", target, err)
	}

	if symlink {
		abs, err := filepath.Abs(src)
		if err != nil {
			return false, fmt.Errorf("resolving %s: %w", src, err)
		}
		if err := os.Symlink(abs, target); err != nil {
			return false, fmt.Errorf("linking %s: %w", target, err)
		}
		return true, nil
	}

	if err := copyFile(src, target); err != nil {
		return false, err
	}
	return true, nil
}

// copyFile copies the contents, permission bits and modification time of
// src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(dst)
		return fmt.Errorf("copying to %s: %w", dst, copyErr)
	}
	if closeErr != nil {
		os.Remove(dst)
		return fmt.Errorf("closing %s: %w", dst, closeErr)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("setting times on %s: %w", dst, err)
	}
	return nil
}

package types

import "time"

// Defaults shared by the CLI and the exporters.
const (
	DefaultAssetsFolder  = "assets"
	DefaultPagesFolder   = "pages"
	DefaultColor         = "yellow"
	DefaultMarkdownLevel = 2
	DefaultNotionVersion = "2022-06-28"
)

// HTTPConfig holds shared HTTP settings used by exporters that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "export-pdfannots/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LogseqConfig holds settings for exporting into a Logseq graph folder.
type LogseqConfig struct {
	// Graph is the root folder of the Logseq graph.
	Graph string `json:"graph" yaml:"graph"`

	// AssetFolder is the folder under Graph that receives the PDF (default "assets").
	AssetFolder string `json:"asset_folder" yaml:"asset_folder"`

	// PagesFolder is the folder under Graph that receives the generated page (default "pages").
	PagesFolder string `json:"pages_folder" yaml:"pages_folder"`

	// Symlink links the PDF into AssetFolder instead of copying it.
	Symlink bool `json:"symlink" yaml:"symlink"`

	// Color is the highlight color tag written to the .edn file (default "yellow").
	Color string `json:"color" yaml:"color"`
}

// WithDefaults returns a copy of c with empty fields set to their defaults.
func (c LogseqConfig) WithDefaults() LogseqConfig {
	if c.AssetFolder == "" {
		c.AssetFolder = DefaultAssetsFolder
	}
	if c.PagesFolder == "" {
		c.PagesFolder = DefaultPagesFolder
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	return c
}

// TableConfig holds settings for pushing annotation rows to a remote table.
type TableConfig struct {
	HTTPConfig `yaml:",inline"`

	// Database locates the table: a Notion database URL or id, or
	// sqlite://<path>#<table> for a local SQLite table.
	Database string `json:"database" yaml:"database"`

	// APIKey authenticates against the Notion API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// NotionVersion is sent as the Notion-Version header (default "2022-06-28").
	NotionVersion string `json:"notion_version" yaml:"notion_version"`
}

// ExtractConfig holds settings for standalone annotation dumps.
type ExtractConfig struct {
	// MarkdownLevel is the heading level for grouped Markdown notes (default 2).
	MarkdownLevel int `json:"markdown_level" yaml:"markdown_level"`

	// Color is the highlight color tag for EDN dumps (default "yellow").
	Color string `json:"color" yaml:"color"`
}

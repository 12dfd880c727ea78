package types

import "time"

// ScraperConfig holds settings for the search-engine scraper stage.
type ScraperConfig struct {
	// BaseURL is the root of the search site (default "https://www.riss.kr").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// PageSize is the number of results requested per search page (default 20).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxPages is the hard ceiling on result pages visited per keyword
	// (default 10). The scraper terminates at this ceiling even when the
	// target count has not been reached.
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// FreeOnly restricts collection to records the open-access heuristics
	// accept (default true).
	FreeOnly bool `json:"free_only" yaml:"free_only"`

	// NavigationTimeout bounds each page navigation (default 30s).
	NavigationTimeout time.Duration `json:"navigation_timeout" yaml:"navigation_timeout"`

	// DetailDelay is the settle time after a detail page loads (default 2s).
	DetailDelay time.Duration `json:"detail_delay" yaml:"detail_delay"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-1.5-flash").
	// When empty each backend applies its own default.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// SummarizerBackend identifies the generative-text service.
type SummarizerBackend string

const (
	BackendGemini SummarizerBackend = "gemini"
	BackendOpenAI SummarizerBackend = "openai"
)

// SummarizerConfig holds settings for the summarizer stage.
type SummarizerConfig struct {
	AIConfig `yaml:",inline"`

	// Backend selects the generative-text service: gemini or openai.
	Backend SummarizerBackend `json:"backend" yaml:"backend"`

	// Timeout bounds a single generation call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// StorageConfig holds settings for the storage stage.
type StorageConfig struct {
	// OutputDir is the base directory for session directories (default "./results").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ExportConfig holds settings for the workbook exporter stage.
type ExportConfig struct {
	// OutputDir is the directory workbooks are written to (default "./results").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Scraper    ScraperConfig    `json:"scraper" yaml:"scraper"`
	Summarizer SummarizerConfig `json:"summarizer" yaml:"summarizer"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Export     ExportConfig     `json:"export" yaml:"export"`
}

// DefaultPipelineConfig returns a PipelineConfig with every default applied.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Scraper: ScraperConfig{
			BaseURL:           "https://www.riss.kr",
			PageSize:          20,
			MaxPages:          10,
			FreeOnly:          true,
			NavigationTimeout: 30 * time.Second,
			DetailDelay:       2 * time.Second,
		},
		Summarizer: SummarizerConfig{
			Backend: BackendGemini,
			Timeout: 60 * time.Second,
		},
		Storage: StorageConfig{OutputDir: "./results"},
		Export:  ExportConfig{OutputDir: "./results"},
	}
}

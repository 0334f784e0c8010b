// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment overrides, e.g. OUTLINE_AGENT_PIPELINE_WORKERS
	EnvPrefix = "OUTLINE_AGENT"
	// ConfigName is the base name of the config file searched for when no path is given
	ConfigName = "outline-agent"
)

// Config represents the CLI configuration loaded from YAML, the environment, and defaults.
type Config struct {
	Normalize   NormalizeConfig   `mapstructure:"normalize"`
	FontProfile FontProfileConfig `mapstructure:"font_profile"`
	Title       TitleConfig       `mapstructure:"title"`
	Heading     HeadingConfig     `mapstructure:"heading"`
	Persona     PersonaConfig     `mapstructure:"persona"`
	Selection   SelectionConfig   `mapstructure:"selection"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Analyze     AnalyzeConfig     `mapstructure:"analyze"`
	Store       StoreConfig       `mapstructure:"store"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Verbose     bool              `mapstructure:"verbose"`
}

// NormalizeConfig controls header/footer band removal
type NormalizeConfig struct {
	Margin float64 `mapstructure:"margin" validate:"gte=0"`
}

// FontProfileConfig controls body/heading size inference
type FontProfileConfig struct {
	Scope     string  `mapstructure:"scope" validate:"oneof=page document"`
	Epsilon   float64 `mapstructure:"epsilon" validate:"gte=0,lte=2"`
	MaxLevels int     `mapstructure:"max_levels" validate:"min=1,max=4"`
}

// TitleConfig controls title candidate filtering
type TitleConfig struct {
	MinWidth         float64 `mapstructure:"min_width" validate:"gte=0"`
	MinFontSize      float64 `mapstructure:"min_font_size" validate:"gte=0"`
	SizeTolerance    float64 `mapstructure:"size_tolerance" validate:"gte=0"`
	MetadataFallback bool    `mapstructure:"metadata_fallback"`
}

// HeadingConfig holds the structural rejection thresholds
type HeadingConfig struct {
	MinLength       int     `mapstructure:"min_length" validate:"gte=1"`
	MaxProseWords   int     `mapstructure:"max_prose_words" validate:"gte=1"`
	MaxSpansOnLine  int     `mapstructure:"max_spans_on_line" validate:"gte=1"`
	MinAvgSpanWidth float64 `mapstructure:"min_avg_span_width" validate:"gte=0"`
}

// PersonaConfig points at an optional persona family table override
type PersonaConfig struct {
	FamiliesFile string `mapstructure:"families_file"`
}

// SelectionConfig holds the diversity caps
type SelectionConfig struct {
	PerDocumentCap           int `mapstructure:"per_document_cap" validate:"gte=1"`
	MaxSections              int `mapstructure:"max_sections" validate:"gte=1"`
	SubsectionSourceCount    int `mapstructure:"subsection_source_count" validate:"gte=1"`
	SubsectionPerDocumentCap int `mapstructure:"subsection_per_document_cap" validate:"gte=1"`
	MaxSubsections           int `mapstructure:"max_subsections" validate:"gte=0"`
}

// PipelineConfig controls per-document concurrency
type PipelineConfig struct {
	Workers int `mapstructure:"workers" validate:"gte=1,lte=64"`
}

// AnalyzeConfig controls collection discovery
type AnalyzeConfig struct {
	InputName string `mapstructure:"input_name" validate:"required"`
	PDFDir    string `mapstructure:"pdf_dir" validate:"required"`
}

// StoreConfig points at the SQLite section index. An empty path disables it.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr           string `mapstructure:"addr" validate:"required"`
	MaxUploadMB    int    `mapstructure:"max_upload_mb" validate:"gte=1"`
	MaxConcurrent  int    `mapstructure:"max_concurrent" validate:"gte=1"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=1"`
	// CollectionsRoot is the only tree /v1/analyze may read collections from
	CollectionsRoot string `mapstructure:"collections_root" validate:"required"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Normalize:   NormalizeConfig{Margin: 50},
		FontProfile: FontProfileConfig{Scope: "page", Epsilon: 0.3, MaxLevels: 3},
		Title:       TitleConfig{MinWidth: 100, MinFontSize: 10, SizeTolerance: 1},
		Heading:     HeadingConfig{MinLength: 3, MaxProseWords: 10, MaxSpansOnLine: 6, MinAvgSpanWidth: 40},
		Selection: SelectionConfig{
			PerDocumentCap:           3,
			MaxSections:              25,
			SubsectionSourceCount:    15,
			SubsectionPerDocumentCap: 4,
			MaxSubsections:           20,
		},
		Pipeline: PipelineConfig{Workers: 4},
		Analyze:  AnalyzeConfig{InputName: "collection_input.json", PDFDir: "PDFs"},
		Server:   ServerConfig{Addr: ":8080", MaxUploadMB: 32, MaxConcurrent: 4, TimeoutSeconds: 120, CollectionsRoot: "."},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// setDefaults registers every default with viper so env overrides resolve for unset keys
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("normalize.margin", d.Normalize.Margin)
	v.SetDefault("font_profile.scope", d.FontProfile.Scope)
	v.SetDefault("font_profile.epsilon", d.FontProfile.Epsilon)
	v.SetDefault("font_profile.max_levels", d.FontProfile.MaxLevels)
	v.SetDefault("title.min_width", d.Title.MinWidth)
	v.SetDefault("title.min_font_size", d.Title.MinFontSize)
	v.SetDefault("title.size_tolerance", d.Title.SizeTolerance)
	v.SetDefault("title.metadata_fallback", d.Title.MetadataFallback)
	v.SetDefault("heading.min_length", d.Heading.MinLength)
	v.SetDefault("heading.max_prose_words", d.Heading.MaxProseWords)
	v.SetDefault("heading.max_spans_on_line", d.Heading.MaxSpansOnLine)
	v.SetDefault("heading.min_avg_span_width", d.Heading.MinAvgSpanWidth)
	v.SetDefault("persona.families_file", d.Persona.FamiliesFile)
	v.SetDefault("selection.per_document_cap", d.Selection.PerDocumentCap)
	v.SetDefault("selection.max_sections", d.Selection.MaxSections)
	v.SetDefault("selection.subsection_source_count", d.Selection.SubsectionSourceCount)
	v.SetDefault("selection.subsection_per_document_cap", d.Selection.SubsectionPerDocumentCap)
	v.SetDefault("selection.max_subsections", d.Selection.MaxSubsections)
	v.SetDefault("pipeline.workers", d.Pipeline.Workers)
	v.SetDefault("analyze.input_name", d.Analyze.InputName)
	v.SetDefault("analyze.pdf_dir", d.Analyze.PDFDir)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	v.SetDefault("server.max_concurrent", d.Server.MaxConcurrent)
	v.SetDefault("server.timeout_seconds", d.Server.TimeoutSeconds)
	v.SetDefault("server.collections_root", d.Server.CollectionsRoot)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("verbose", d.Verbose)
}

// LoadConfig loads configuration from a YAML file, OUTLINE_AGENT_* environment
// variables, and built-in defaults, in that order of precedence (env wins).
// With an empty path it searches ./outline-agent.yaml and ~/.config/outline-agent/;
// a missing file is not an error in that case. An explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.Persona.FamiliesFile != "" {
		if _, err := os.Stat(c.Persona.FamiliesFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: persona families file not found: %s", c.Persona.FamiliesFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// Bool fields are left alone since unset cannot be told apart from false.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Normalize.Margin == 0 {
		result.Normalize.Margin = defaults.Normalize.Margin
	}
	if result.FontProfile.Scope == "" {
		result.FontProfile.Scope = defaults.FontProfile.Scope
	}
	if result.FontProfile.Epsilon == 0 {
		result.FontProfile.Epsilon = defaults.FontProfile.Epsilon
	}
	if result.FontProfile.MaxLevels == 0 {
		result.FontProfile.MaxLevels = defaults.FontProfile.MaxLevels
	}
	if result.Title.MinWidth == 0 {
		result.Title.MinWidth = defaults.Title.MinWidth
	}
	if result.Title.MinFontSize == 0 {
		result.Title.MinFontSize = defaults.Title.MinFontSize
	}
	if result.Title.SizeTolerance == 0 {
		result.Title.SizeTolerance = defaults.Title.SizeTolerance
	}
	if result.Heading.MinLength == 0 {
		result.Heading.MinLength = defaults.Heading.MinLength
	}
	if result.Heading.MaxProseWords == 0 {
		result.Heading.MaxProseWords = defaults.Heading.MaxProseWords
	}
	if result.Heading.MaxSpansOnLine == 0 {
		result.Heading.MaxSpansOnLine = defaults.Heading.MaxSpansOnLine
	}
	if result.Heading.MinAvgSpanWidth == 0 {
		result.Heading.MinAvgSpanWidth = defaults.Heading.MinAvgSpanWidth
	}
	if result.Persona.FamiliesFile == "" {
		result.Persona.FamiliesFile = defaults.Persona.FamiliesFile
	}
	if result.Selection.PerDocumentCap == 0 {
		result.Selection.PerDocumentCap = defaults.Selection.PerDocumentCap
	}
	if result.Selection.MaxSections == 0 {
		result.Selection.MaxSections = defaults.Selection.MaxSections
	}
	if result.Selection.SubsectionSourceCount == 0 {
		result.Selection.SubsectionSourceCount = defaults.Selection.SubsectionSourceCount
	}
	if result.Selection.SubsectionPerDocumentCap == 0 {
		result.Selection.SubsectionPerDocumentCap = defaults.Selection.SubsectionPerDocumentCap
	}
	if result.Selection.MaxSubsections == 0 {
		result.Selection.MaxSubsections = defaults.Selection.MaxSubsections
	}
	if result.Pipeline.Workers == 0 {
		result.Pipeline.Workers = defaults.Pipeline.Workers
	}
	if result.Analyze.InputName == "" {
		result.Analyze.InputName = defaults.Analyze.InputName
	}
	if result.Analyze.PDFDir == "" {
		result.Analyze.PDFDir = defaults.Analyze.PDFDir
	}
	if result.Store.Path == "" {
		result.Store.Path = defaults.Store.Path
	}
	if result.Server.Addr == "" {
		result.Server.Addr = defaults.Server.Addr
	}
	if result.Server.MaxUploadMB == 0 {
		result.Server.MaxUploadMB = defaults.Server.MaxUploadMB
	}
	if result.Server.MaxConcurrent == 0 {
		result.Server.MaxConcurrent = defaults.Server.MaxConcurrent
	}
	if result.Server.TimeoutSeconds == 0 {
		result.Server.TimeoutSeconds = defaults.Server.TimeoutSeconds
	}
	if result.Server.CollectionsRoot == "" {
		result.Server.CollectionsRoot = defaults.Server.CollectionsRoot
	}
	if result.Log.Level == "" {
		result.Log.Level = defaults.Log.Level
	}
	if result.Log.Format == "" {
		result.Log.Format = defaults.Log.Format
	}

	return result
}

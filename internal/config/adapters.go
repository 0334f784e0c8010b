package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/outline-ranker/internal/fontprofile"
	"github.com/jonathan/outline-ranker/internal/heading"
	"github.com/jonathan/outline-ranker/internal/normalize"
	"github.com/jonathan/outline-ranker/internal/observability"
	"github.com/jonathan/outline-ranker/internal/persona"
	"github.com/jonathan/outline-ranker/internal/pipeline"
	"github.com/jonathan/outline-ranker/internal/selection"
	"github.com/jonathan/outline-ranker/internal/server"
	"github.com/jonathan/outline-ranker/internal/title"
)

// Families loads the persona family table, falling back to the built-in one
func (c *Config) Families() (*persona.Table, error) {
	if c.Persona.FamiliesFile == "" {
		return persona.DefaultTable(), nil
	}
	table, err := persona.LoadTable(c.Persona.FamiliesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load persona families: %w", err)
	}
	return table, nil
}

// PipelineOptions converts the configuration into pipeline options
func (c *Config) PipelineOptions(logger *slog.Logger) (pipeline.Options, error) {
	families, err := c.Families()
	if err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		Normalize: normalize.Config{Margin: c.Normalize.Margin},
		FontProfile: fontprofile.Config{
			Scope:     fontprofile.Scope(c.FontProfile.Scope),
			Epsilon:   c.FontProfile.Epsilon,
			MaxLevels: c.FontProfile.MaxLevels,
		},
		Title: title.Config{
			MinWidth:      c.Title.MinWidth,
			MinFontSize:   c.Title.MinFontSize,
			SizeTolerance: c.Title.SizeTolerance,
		},
		MetadataTitleFallback: c.Title.MetadataFallback,
		Heading: heading.Config{
			MinLength:       c.Heading.MinLength,
			MaxProseWords:   c.Heading.MaxProseWords,
			MaxSpansOnLine:  c.Heading.MaxSpansOnLine,
			MinAvgSpanWidth: c.Heading.MinAvgSpanWidth,
		},
		Selection: selection.Config{
			PerDocumentCap:           c.Selection.PerDocumentCap,
			MaxSections:              c.Selection.MaxSections,
			SubsectionSourceCount:    c.Selection.SubsectionSourceCount,
			SubsectionPerDocumentCap: c.Selection.SubsectionPerDocumentCap,
			MaxSubsections:           c.Selection.MaxSubsections,
		},
		Families: families,
		Workers:  c.Pipeline.Workers,
		Logger:   logger,
	}, nil
}

// LogOptions converts the log section for observability.NewLogger
func (c *Config) LogOptions() observability.LogConfig {
	return observability.LogConfig{Level: c.Log.Level, Format: c.Log.Format}
}

// ServerOptions converts the server section into server settings
func (c *Config) ServerOptions() server.Config {
	return server.Config{
		Addr:          c.Server.Addr,
		MaxUploadMB:   c.Server.MaxUploadMB,
		MaxConcurrent: c.Server.MaxConcurrent,
		Timeout:       time.Duration(c.Server.TimeoutSeconds) * time.Second,
		InputName:     c.Analyze.InputName,
		PDFDir:        c.Analyze.PDFDir,

		CollectionsRoot: c.Server.CollectionsRoot,
	}
}

// Package fontprofile infers body and heading font sizes from span statistics.
package fontprofile

import (
	"math"
	"sort"

	"github.com/jonathan/outline-ranker/internal/types"
)

// Scope selects which spans feed a profile
type Scope string

const (
	// ScopePage builds one profile per page
	ScopePage Scope = "page"
	// ScopeDocument builds one profile for the whole document
	ScopeDocument Scope = "document"
)

// Config holds profile settings
type Config struct {
	Scope     Scope
	Epsilon   float64
	MaxLevels int
}

// DefaultConfig returns page scope, ε = 0.3, and three heading tiers
func DefaultConfig() Config {
	return Config{Scope: ScopePage, Epsilon: 0.3, MaxLevels: 3}
}

// RoundSize keys font sizes at 0.01 resolution
func RoundSize(size float64) float64 {
	return math.Round(size*100) / 100
}

// Build computes the profile of a span set. The body size is the mode; ties go to
// the size encountered first. Heading tiers are the distinct sizes strictly above
// body+ε, descending, truncated to MaxLevels.
func Build(spans []types.Span, cfg Config) types.FontProfile {
	if len(spans) == 0 {
		return types.FontProfile{}
	}

	counts := make(map[float64]int)
	var order []float64
	for _, s := range spans {
		size := RoundSize(s.FontSize)
		if _, seen := counts[size]; !seen {
			order = append(order, size)
		}
		counts[size]++
	}

	body := order[0]
	for _, size := range order[1:] {
		if counts[size] > counts[body] {
			body = size
		}
	}

	var larger []float64
	for _, size := range order {
		if size > body+cfg.Epsilon {
			larger = append(larger, size)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(larger)))

	maxLevels := cfg.MaxLevels
	if maxLevels <= 0 || maxLevels > len(types.OutlineLevels) {
		maxLevels = 3
	}

	profile := types.FontProfile{BodyFontSize: body}
	for i, size := range larger {
		if i >= maxLevels {
			break
		}
		profile.Levels = append(profile.Levels, types.LevelSize{Level: types.OutlineLevels[i], FontSize: size})
	}
	return profile
}

// LevelFor looks up a font size in the profile's tiers
func LevelFor(p types.FontProfile, size float64) types.HeadingLevel {
	key := RoundSize(size)
	for _, ls := range p.Levels {
		if ls.FontSize == key {
			return ls.Level
		}
	}
	return types.LevelNone
}

// Profiles resolves the profile applicable to each page under the configured scope.
// The returned slice is parallel to pages.
func Profiles(pages [][]types.Span, cfg Config) []types.FontProfile {
	out := make([]types.FontProfile, len(pages))
	if cfg.Scope == ScopeDocument {
		var all []types.Span
		for _, p := range pages {
			all = append(all, p...)
		}
		docProfile := Build(all, cfg)
		for i := range out {
			out[i] = docProfile
		}
		return out
	}

	for i, p := range pages {
		out[i] = Build(p, cfg)
	}
	return out
}

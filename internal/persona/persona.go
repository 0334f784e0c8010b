// Package persona turns a free-text role and task into a weighted keyword profile.
package persona

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/jonathan/outline-ranker/internal/types"
)

//go:embed families.yaml
var defaultFamilies []byte

// minTaskWordLen is the shortest task word kept as a medium keyword
const minTaskWordLen = 3

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Family is one persona family entry
type Family struct {
	Name         string             `yaml:"name"`
	Match        []string           `yaml:"match"`
	MatchWords   []string           `yaml:"match_words"`
	High         []string           `yaml:"high"`
	TermBonuses  map[string]float64 `yaml:"term_bonuses"`
	HeadingTerms []string           `yaml:"heading_terms"`
}

// Matches reports whether a lower-cased role selects this family.
// Match entries are substrings; MatchWords must appear as whole words.
func (f Family) Matches(role string, roleWords map[string]bool) bool {
	for _, m := range f.Match {
		if m != "" && strings.Contains(role, m) {
			return true
		}
	}
	for _, w := range f.MatchWords {
		if roleWords[w] {
			return true
		}
	}
	return false
}

// Table is the ordered family dispatch table
type Table struct {
	Families      []Family `yaml:"families"`
	GroupWords    []string `yaml:"group_words"`
	GroupSynonyms []string `yaml:"group_synonyms"`
}

// ParseTable decodes a YAML family table
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, &Error{Message: "failed to parse persona families", Cause: err}
	}
	for i, f := range t.Families {
		if f.Name == "" {
			return nil, &Error{Message: fmt.Sprintf("family %d has no name", i)}
		}
		if len(f.Match) == 0 && len(f.MatchWords) == 0 {
			return nil, &Error{Message: fmt.Sprintf("family %q has no match rules", f.Name)}
		}
	}
	return &t, nil
}

// DefaultTable returns the built-in family table
func DefaultTable() *Table {
	t, err := ParseTable(defaultFamilies)
	if err != nil {
		panic(fmt.Sprintf("embedded persona families are invalid: %v", err))
	}
	return t
}

// LoadTable reads a family table from path, or returns the built-in table for an empty path
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read persona families %s", path), Cause: err}
	}
	return ParseTable(data)
}

// Lookup returns the first family matching the role, or nil
func (t *Table) Lookup(role string) *Family {
	role = strings.ToLower(role)
	roleWords := make(map[string]bool)
	for _, w := range Tokenize(role) {
		roleWords[w] = true
	}
	for i := range t.Families {
		if t.Families[i].Matches(role, roleWords) {
			return &t.Families[i]
		}
	}
	return nil
}

// Build derives the keyword profile for a role and task. The result is never
// mutated afterwards and can be shared across workers.
func (t *Table) Build(role, task string) *types.PersonaProfile {
	profile := &types.PersonaProfile{Role: role, Task: task}

	if family := t.Lookup(role); family != nil {
		profile.Family = family.Name
		profile.High = dedupe(lowerAll(family.High))
		profile.HeadingTerms = dedupe(lowerAll(family.HeadingTerms))
		if len(family.TermBonuses) > 0 {
			profile.TermBonuses = make(map[string]float64, len(family.TermBonuses))
			for term, bonus := range family.TermBonuses {
				profile.TermBonuses[strings.ToLower(term)] = bonus
			}
		}
	}

	var medium []string
	taskWords := Tokenize(strings.ToLower(task))
	for _, w := range taskWords {
		if utf8.RuneCountInString(w) >= minTaskWordLen {
			medium = append(medium, w)
		}
	}
	if containsAny(taskWords, t.GroupWords) {
		medium = append(medium, lowerAll(t.GroupSynonyms)...)
	}
	profile.Medium = dedupe(medium)

	return profile
}

// Tokenize splits text into letter/digit runs
func Tokenize(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

func containsAny(words, targets []string) bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	for _, t := range targets {
		if set[t] {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

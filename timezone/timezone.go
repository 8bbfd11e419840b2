// Package timezone resolves free-text locations ("Tokyo", "new york", "JST") to IANA zones.
package timezone

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/xrash/smetrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var aliasesYAML []byte

const (
	maxSuggestions = 5
	// Jaro-Winkler score below which an alias is not offered as a suggestion
	similarityCutoff = 0.7
)

// ErrNotFound is returned when neither the alias table nor the zone list matches
var ErrNotFound = errors.New("timezone not found")

// Table holds the alias map and the searchable zone list
type Table struct {
	aliases map[string]string
	keys    []string
	zones   []string
}

type tableFile struct {
	Aliases map[string]string `yaml:"aliases"`
	Zones   []string          `yaml:"zones"`
}

// Match is a resolved location
type Match struct {
	Input    string
	Zone     string
	Location *time.Location
}

// NotFoundError carries the suggestions computed for an unresolved input
type NotFoundError struct {
	Input       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("timezone %q not found", e.Input)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Default returns the table compiled into the binary
func Default() *Table {
	t, err := Parse(aliasesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded timezone table is invalid: %v", err))
	}
	return t
}

// Parse builds a table from YAML with an aliases map and a zones list
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse timezone table: %w", err)
	}

	t := &Table{
		aliases: make(map[string]string, len(f.Aliases)),
		zones:   append([]string(nil), f.Zones...),
	}
	for k, v := range f.Aliases {
		t.aliases[normalize(k)] = v
	}
	for k := range t.aliases {
		t.keys = append(t.keys, k)
	}
	sort.Strings(t.keys)
	sort.Strings(t.zones)
	return t, nil
}

// Lookup resolves input through the alias table first and then by substring over zone identifiers.
// On failure it returns a *NotFoundError with up to five suggestions.
func (t *Table) Lookup(input string) (*Match, error) {
	q := normalize(input)
	if q == "" {
		return nil, &NotFoundError{Input: input}
	}

	zone, ok := t.aliases[q]
	if !ok {
		zone = t.searchZones(q)
	}
	if zone == "" {
		return nil, &NotFoundError{Input: input, Suggestions: t.Suggest(q)}
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone %s: %w", zone, err)
	}
	return &Match{Input: input, Zone: zone, Location: loc}, nil
}

func (t *Table) searchZones(q string) string {
	for _, z := range t.zones {
		if strings.Contains(strings.ToLower(z), q) {
			return z
		}
	}
	return ""
}

type scored struct {
	key   string
	score float64
}

// Suggest returns alias keys that resemble input, title-cased and best first.
// Keys containing the input (or contained in it) rank ahead of similarity matches.
func (t *Table) Suggest(input string) []string {
	q := normalize(input)
	if q == "" {
		return nil
	}

	var substring []string
	var similar []scored
	for _, k := range t.keys {
		if strings.Contains(k, q) || strings.Contains(q, k) {
			substring = append(substring, k)
			continue
		}
		if s := smetrics.JaroWinkler(q, k, 0.7, 4); s >= similarityCutoff {
			similar = append(similar, scored{key: k, score: s})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].score > similar[j].score
	})

	caser := cases.Title(language.English)
	out := make([]string, 0, maxSuggestions)
	for _, k := range substring {
		if len(out) == maxSuggestions {
			return out
		}
		out = append(out, caser.String(k))
	}
	for _, s := range similar {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, caser.String(s.key))
	}
	return out
}

// FormatOffset renders the zone offset of t as UTC+hh:mm
func FormatOffset(t time.Time) string {
	return "UTC" + t.Format("-07:00")
}

// DisplayName title-cases a location for headings
func DisplayName(input string) string {
	return cases.Title(language.English).String(strings.TrimSpace(input))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

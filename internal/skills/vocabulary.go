// Package skills provides the canonical skill vocabulary used to normalize
// free-text skill mentions.
package skills

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed vocabulary.json
var defaultVocabulary []byte

//go:embed vocabulary.schema.json
var vocabularySchema []byte

// Entry is one canonical skill with its category and aliases.
type Entry struct {
	Name     string              `json:"name"`
	Category types.SkillCategory `json:"category"`
	Aliases  []string            `json:"aliases"`
}

type vocabularyFile struct {
	Version int     `json:"version"`
	Skills  []Entry `json:"skills"`
}

// VocabularyError reports a vocabulary document that failed to load.
type VocabularyError struct {
	Message string
	Details []string
	Cause   error
}

func (e *VocabularyError) Error() string {
	msg := "invalid skill vocabulary: " + e.Message
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *VocabularyError) Unwrap() error {
	return e.Cause
}

// Vocabulary maps aliases to canonical skill names and canonical names to
// categories. It is read-only after Load and safe for concurrent use.
type Vocabulary struct {
	aliases    map[string]string
	compact    map[string]string
	categories map[string]types.SkillCategory
	canonical  []string
	// patterns holds every alias, longest first. Ties keep declaration order.
	patterns []string
}

// Load parses and validates a vocabulary document. When an alias is declared
// under more than one skill, the later declaration wins.
func Load(data []byte) (*Vocabulary, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(vocabularySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, &VocabularyError{Message: "could not validate document", Cause: err}
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return nil, &VocabularyError{Message: "schema violation", Details: details}
	}

	var file vocabularyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &VocabularyError{Message: "could not decode document", Cause: err}
	}

	v := &Vocabulary{
		aliases:    make(map[string]string),
		compact:    make(map[string]string),
		categories: make(map[string]types.SkillCategory),
	}
	seen := make(map[string]bool)
	for _, entry := range file.Skills {
		if _, dup := v.categories[entry.Name]; dup {
			return nil, &VocabularyError{Message: fmt.Sprintf("duplicate skill %q", entry.Name)}
		}
		v.categories[entry.Name] = entry.Category
		v.canonical = append(v.canonical, entry.Name)
		for _, alias := range entry.Aliases {
			key := normalizeKey(alias)
			v.aliases[key] = entry.Name
			v.compact[CompareKey(alias)] = entry.Name
			if !seen[key] {
				seen[key] = true
				v.patterns = append(v.patterns, key)
			}
		}
	}

	sort.SliceStable(v.patterns, func(i, j int) bool {
		return len(v.patterns[i]) > len(v.patterns[j])
	})

	return v, nil
}

var (
	defaultOnce sync.Once
	defaultVoc  *Vocabulary
	defaultErr  error
)

// Default returns the built-in vocabulary, loading it on first use.
func Default() (*Vocabulary, error) {
	defaultOnce.Do(func() {
		defaultVoc, defaultErr = Load(defaultVocabulary)
	})
	return defaultVoc, defaultErr
}

// MustDefault is like Default but panics if the built-in vocabulary is invalid.
func MustDefault() *Vocabulary {
	v, err := Default()
	if err != nil {
		panic(err)
	}
	return v
}

// Normalize maps a raw skill mention to its canonical name. Lookup is exact
// and case-insensitive, falling back to a punctuation-insensitive comparison
// so "Node JS" and "node.js" resolve alike. There is no fuzzy matching.
func (v *Vocabulary) Normalize(raw string) (string, bool) {
	if canonical, ok := v.aliases[normalizeKey(raw)]; ok {
		return canonical, true
	}
	key := CompareKey(raw)
	if key == "" {
		return "", false
	}
	canonical, ok := v.compact[key]
	return canonical, ok
}

// CategoryOf returns the category of a canonical skill, or other if unknown.
func (v *Vocabulary) CategoryOf(canonical string) types.SkillCategory {
	if category, ok := v.categories[canonical]; ok {
		return category
	}
	return types.CategoryOther
}

// Patterns returns all aliases ordered longest first.
func (v *Vocabulary) Patterns() []string {
	out := make([]string, len(v.patterns))
	copy(out, v.patterns)
	return out
}

// Canonical returns the canonical skill names in declaration order.
func (v *Vocabulary) Canonical() []string {
	out := make([]string, len(v.canonical))
	copy(out, v.canonical)
	return out
}

// Size returns the number of canonical skills.
func (v *Vocabulary) Size() int {
	return len(v.canonical)
}

var compareStrip = regexp.MustCompile(`[.\-_/\s]+`)

// CompareKey lowercases s and strips dots, dashes, underscores, slashes and
// whitespace. Two skill names with the same key are the same skill.
func CompareKey(s string) string {
	return compareStrip.ReplaceAllString(strings.ToLower(s), "")
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

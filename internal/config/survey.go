package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/relevador/internal/model"
	"github.com/nao1215/relevador/internal/scanner"
)

// Settings are the run settings that can be set in a survey file.
// Pointer fields distinguish "not set" from an explicit zero or false.
type Settings struct {
	Timeout        time.Duration     `yaml:"timeout,omitempty"`
	RequestDelay   *time.Duration    `yaml:"request_delay,omitempty"`
	UserAgent      string            `yaml:"user_agent,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	MaxSubpages    *int              `yaml:"max_subpages,omitempty"`
	SnippetRadius  int               `yaml:"snippet_radius,omitempty"`
	MaxHitsPerPage *int              `yaml:"max_hits_per_page,omitempty"`
	MaxBodySize    int64             `yaml:"max_body_size,omitempty"`
	Concurrency    int               `yaml:"concurrency,omitempty"`
	RespectRobots  *bool             `yaml:"respect_robots,omitempty"`
	SameHostOnly   *bool             `yaml:"same_host_only,omitempty"`
}

// File is the structure of a survey file.
type File struct {
	// Settings override the built-in run defaults.
	Settings Settings `yaml:"settings,omitempty"`

	// Institutions are surveyed in this order.
	Institutions []model.Institution `yaml:"institutions"`

	// Keywords maps a category key to its keyword list.
	// A category that is absent uses the built-in list.
	Keywords map[string][]string `yaml:"keywords,omitempty"`

	// Hints are the sub-page hint keywords. Empty uses the built-in list.
	Hints []string `yaml:"hints,omitempty"`
}

// Survey builds the immutable survey definition from the file contents.
func (f *File) Survey() (*Survey, error) {
	keywords := DefaultKeywords()
	for key, list := range f.Keywords {
		c, err := model.ParseCategory(key)
		if err != nil {
			return nil, newError("keywords."+key, fmt.Errorf("%w: %q", ErrUnknownCategory, key))
		}
		keywords[c] = list
	}

	hints := f.Hints
	if len(hints) == 0 {
		hints = DefaultHints()
	}

	return NewSurvey(f.Institutions, keywords, hints)
}

// Survey is the validated, immutable definition of what to survey:
// the ordered institutions, one keyword list per category and the sub-page
// hints. Accessors return copies, so a Survey can be shared freely.
type Survey struct {
	institutions []model.Institution
	keywords     map[model.Category][]string
	hints        []string
}

// NewSurvey validates its input and returns a Survey.
// Institutions need a non-empty unique name and an absolute http(s) URL;
// every category needs at least one keyword. Keywords and hints are
// trimmed and deduplicated case-insensitively so a repeated term is not
// counted twice.
func NewSurvey(institutions []model.Institution, keywords map[model.Category][]string, hints []string) (*Survey, error) {
	if len(institutions) == 0 {
		return nil, newError("institutions", ErrNoInstitutions)
	}

	insts := make([]model.Institution, 0, len(institutions))
	names := make(map[string]int, len(institutions))
	for i, inst := range institutions {
		field := fmt.Sprintf("institutions[%d]", i)

		inst.Name = strings.TrimSpace(inst.Name)
		inst.URL = strings.TrimSpace(inst.URL)
		inst.Country = strings.TrimSpace(inst.Country)
		inst.Label = strings.TrimSpace(inst.Label)

		if inst.Name == "" {
			return nil, newError(field+".name", ErrEmptyName)
		}
		if inst.URL == "" {
			return nil, newError(field+".url", ErrEmptyURL)
		}
		if err := validateURL(inst.URL); err != nil {
			return nil, newError(field+".url", fmt.Errorf("%w: %q", err, inst.URL))
		}
		if prev, ok := names[inst.Name]; ok {
			return nil, newError(field+".name",
				fmt.Errorf("%w: %q (also institutions[%d])", ErrDuplicateName, inst.Name, prev))
		}
		names[inst.Name] = i
		insts = append(insts, inst)
	}

	kw := make(map[model.Category][]string, len(model.AllCategories()))
	for _, c := range model.AllCategories() {
		list := uniqueTerms(keywords[c])
		if len(list) == 0 {
			return nil, newError("keywords."+c.String(), ErrEmptyKeywords)
		}
		kw[c] = list
	}

	return &Survey{
		institutions: insts,
		keywords:     kw,
		hints:        uniqueTerms(hints),
	}, nil
}

// validateURL checks that raw is an absolute http(s) URL with a host.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// uniqueTerms trims terms, drops empty ones and removes duplicates under the
// scanner's matching rules, keeping the first spelling.
func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := scanner.Fold(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// Institutions returns the institutions in configuration order.
func (s *Survey) Institutions() []model.Institution {
	out := make([]model.Institution, len(s.institutions))
	copy(out, s.institutions)
	return out
}

// Keywords returns the keyword list of a category.
func (s *Survey) Keywords(c model.Category) []string {
	list := s.keywords[c]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Hints returns the sub-page hint keywords.
func (s *Survey) Hints() []string {
	out := make([]string, len(s.hints))
	copy(out, s.hints)
	return out
}

// KeywordCount returns the total number of keywords across categories.
func (s *Survey) KeywordCount() int {
	n := 0
	for _, list := range s.keywords {
		n += len(list)
	}
	return n
}

package scanner

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nao1215/relevador/internal/model"
)

func TestScan(t *testing.T) {
	t.Parallel()

	t.Run("finds every keyword in keyword order", func(t *testing.T) {
		t.Parallel()

		text := "We support open access and ciencia abierta initiatives"
		hits := New().Scan(text, "https://example.edu/", model.OpenScience, []string{"ciencia abierta", "open access", "open data"})
		if len(hits) != 2 {
			t.Fatalf("expected 2 hits, got %d: %+v", len(hits), hits)
		}
		if hits[0].Term != "ciencia abierta" || hits[1].Term != "open access" {
			t.Errorf("unexpected order: %q, %q", hits[0].Term, hits[1].Term)
		}
		for _, h := range hits {
			if h.Category != model.OpenScience {
				t.Errorf("expected category open_science, got %s", h.Category)
			}
			if h.SourceURL != "https://example.edu/" {
				t.Errorf("unexpected source URL %q", h.SourceURL)
			}
			if !strings.Contains(h.Snippet, h.Term) {
				t.Errorf("snippet %q does not contain %q", h.Snippet, h.Term)
			}
		}
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		t.Parallel()

		s := New()
		for _, text := range []string{"open access", "OPEN ACCESS", "Open Access", "oPeN aCcEsS"} {
			hits := s.Scan(text, "u", model.OpenScience, []string{"Open Access"})
			if len(hits) != 1 {
				t.Errorf("expected 1 hit for %q, got %d", text, len(hits))
				continue
			}
			if hits[0].Term != "Open Access" {
				t.Errorf("expected configured term, got %q", hits[0].Term)
			}
			if hits[0].Snippet != text {
				t.Errorf("expected snippet in original case %q, got %q", text, hits[0].Snippet)
			}
		}
	})

	t.Run("folds accents case and normalization form", func(t *testing.T) {
		t.Parallel()

		s := New()
		texts := []string{
			"La CIÈNCIA OBERTA a la UJI",
			"La Ciència Oberta a la UJI",
			"La cie\u0300ncia oberta a la UJI",
		}
		for _, text := range texts {
			hits := s.Scan(text, "u", model.OpenScience, []string{"ciència oberta"})
			if len(hits) != 1 {
				t.Errorf("expected 1 hit for %q, got %d", text, len(hits))
			}
		}

		hits := s.Scan("Hauptstraße", "u", model.OpenScience, []string{"STRASSE"})
		if len(hits) != 1 || hits[0].Snippet != "Hauptstraße" {
			t.Errorf("expected full case folding match, got %+v", hits)
		}
	})

	t.Run("each occurrence yields a distinct hit", func(t *testing.T) {
		t.Parallel()

		text := "Primera: ciencia abierta en docencia. Segunda: Ciencia Abierta en investigación. " +
			"Tercera: CIENCIA ABIERTA en transferencia."
		hits := New(WithSnippetRadius(20)).Scan(text, "u", model.OpenScience, []string{"ciencia abierta"})
		if len(hits) != 3 {
			t.Fatalf("expected 3 hits, got %d", len(hits))
		}
		seen := make(map[string]bool)
		for _, h := range hits {
			if seen[h.Snippet] {
				t.Errorf("duplicate snippet %q", h.Snippet)
			}
			seen[h.Snippet] = true
		}
		if !strings.Contains(hits[0].Snippet, "Primera") || !strings.Contains(hits[2].Snippet, "Tercera") {
			t.Errorf("hits are not in position order: %+v", hits)
		}
	})

	t.Run("overlapping occurrences are counted", func(t *testing.T) {
		t.Parallel()

		hits := New().Scan("aaaa", "u", model.OpenScience, []string{"aa"})
		if len(hits) != 3 {
			t.Errorf("expected 3 overlapping hits, got %d", len(hits))
		}
	})

	t.Run("snippet keeps radius runes and collapses whitespace", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("x", 100) + "  open\n\tdata  " + strings.Repeat("y", 100)
		hits := New(WithSnippetRadius(10)).Scan(text, "u", model.OpenScience, []string{"open\n\tdata"})
		if len(hits) != 1 {
			t.Fatalf("expected 1 hit, got %d", len(hits))
		}
		want := "xxxxxxxx open data yyyyyyyy"
		if hits[0].Snippet != want {
			t.Errorf("expected %q, got %q", want, hits[0].Snippet)
		}
	})

	t.Run("snippet is trimmed at text boundaries", func(t *testing.T) {
		t.Parallel()

		hits := New().Scan("open data", "u", model.OpenScience, []string{"open data"})
		if len(hits) != 1 || hits[0].Snippet != "open data" {
			t.Errorf("unexpected hits: %+v", hits)
		}
	})

	t.Run("snippet never exceeds the maximum length", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("ñ", 300)
		text := long + " open science " + long
		for _, radius := range []int{80, 150, 1000} {
			hits := New(WithSnippetRadius(radius)).Scan(text, "u", model.OpenScience, []string{"open science"})
			if len(hits) != 1 {
				t.Fatalf("expected 1 hit, got %d", len(hits))
			}
			if n := utf8.RuneCountInString(hits[0].Snippet); n > model.MaxSnippetLength {
				t.Errorf("radius %d: snippet has %d runes", radius, n)
			}
			if !strings.Contains(hits[0].Snippet, "open science") {
				t.Errorf("radius %d: snippet lost the match", radius)
			}
		}

		kw := strings.Repeat("z", 250)
		hits := New().Scan(kw, "u", model.OpenScience, []string{kw})
		if len(hits) != 1 || utf8.RuneCountInString(hits[0].Snippet) != model.MaxSnippetLength {
			t.Errorf("expected snippet truncated to %d runes", model.MaxSnippetLength)
		}
	})

	t.Run("hit cap bounds hits per call", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("open data ", 100)
		if got := len(New().Scan(text, "u", model.OpenScience, []string{"open data"})); got != DefaultMaxHitsPerPage {
			t.Errorf("expected %d hits with default cap, got %d", DefaultMaxHitsPerPage, got)
		}
		if got := len(New(WithMaxHitsPerPage(0)).Scan(text, "u", model.OpenScience, []string{"open data"})); got != 100 {
			t.Errorf("expected 100 hits without cap, got %d", got)
		}
	})

	t.Run("blank keywords and empty text produce no hits", func(t *testing.T) {
		t.Parallel()

		s := New()
		if hits := s.Scan("open data", "u", model.OpenScience, []string{"", "   "}); len(hits) != 0 {
			t.Errorf("expected no hits, got %+v", hits)
		}
		if hits := s.Scan("", "u", model.OpenScience, []string{"open data"}); len(hits) != 0 {
			t.Errorf("expected no hits, got %+v", hits)
		}
	})

	t.Run("scan is deterministic", func(t *testing.T) {
		t.Parallel()

		text := "Science diplomacy and global science meet science policy. Diplomacia científica."
		keywords := []string{"science diplomacy", "global science", "science policy", "diplomacia científica"}
		s := New()
		first := s.Scan(text, "u", model.ScienceDiplomacy, keywords)
		for range 5 {
			if again := s.Scan(text, "u", model.ScienceDiplomacy, keywords); !reflect.DeepEqual(first, again) {
				t.Fatalf("scan results differ: %+v vs %+v", first, again)
			}
		}
		if len(first) != 4 {
			t.Errorf("expected 4 hits, got %d", len(first))
		}
	})
}

func TestScanAll(t *testing.T) {
	t.Parallel()

	keywords := map[model.Category][]string{
		model.OpenScience:         {"open access"},
		model.PublicCommunication: {"science outreach"},
		model.ScienceDiplomacy:    {"science diplomacy"},
	}
	got := New().ScanAll("Our open access policy and science outreach programme", "u", keywords)

	if len(got) != len(model.AllCategories()) {
		t.Fatalf("expected all categories, got %d", len(got))
	}
	if len(got[model.OpenScience]) != 1 || len(got[model.PublicCommunication]) != 1 {
		t.Errorf("unexpected hits: %+v", got)
	}
	if len(got[model.ScienceDiplomacy]) != 0 {
		t.Errorf("expected no diplomacy hits, got %+v", got[model.ScienceDiplomacy])
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
	}{
		{"ascii case", "Open Access", "open access"},
		{"accented upper case", "CIÈNCIA OBERTA", "ciència oberta"},
		{"decomposed accent", "ciència oberta", "ciència oberta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if Fold(tt.a) != Fold(tt.b) {
				t.Errorf("expected %q and %q to share a key, got %q and %q", tt.a, tt.b, Fold(tt.a), Fold(tt.b))
			}
		})
	}

	if Fold("ciencia") == Fold("ciència") {
		t.Error("expected accents to stay significant")
	}
}

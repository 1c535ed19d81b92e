package model

import (
	"testing"
	"time"
)

func TestNewInstitutionRecord(t *testing.T) {
	t.Parallel()

	inst := Institution{Name: "Universitat Jaume I", URL: "https://www.uji.es", Country: "España"}
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	r := NewInstitutionRecord(inst, now)

	if r.Status != StatusReachable {
		t.Errorf("expected reachable status, got %q", r.Status)
	}
	for _, c := range AllCategories() {
		cov := r.CoverageFor(c)
		if cov.Covered || cov.Count != 0 {
			t.Errorf("expected empty coverage for %v, got %+v", c, cov)
		}
	}
	if r.AnyCovered() {
		t.Error("expected no coverage")
	}
	if r.TotalHits() != 0 {
		t.Errorf("expected 0 hits, got %d", r.TotalHits())
	}
}

func TestInstitutionRecordURLs(t *testing.T) {
	t.Parallel()

	r := NewInstitutionRecord(Institution{Name: "U", URL: "https://u.example"}, time.Now())
	r.Pages = append(r.Pages,
		PageFetchResult{URL: "https://u.example", Kind: PageKindHomepage, OK: true},
		PageFetchResult{URL: "https://u.example/research", Kind: PageKindSubpage, OK: false, FailureKind: FailureHTTPStatus},
		PageFetchResult{URL: "https://u.example/about", Kind: PageKindSubpage, OK: true},
	)

	attempted := r.AttemptedURLs()
	if len(attempted) != 3 {
		t.Errorf("expected 3 attempted URLs, got %d", len(attempted))
	}

	fetched := r.FetchedURLs()
	if len(fetched) != 2 {
		t.Fatalf("expected 2 fetched URLs, got %d", len(fetched))
	}
	if fetched[1] != "https://u.example/about" {
		t.Errorf("unexpected fetched URL %q", fetched[1])
	}
}

func TestCategoryCoverageTerms(t *testing.T) {
	t.Parallel()

	cov := NewCategoryCoverage([]TermHit{
		{Term: "open access", Category: OpenScience},
		{Term: "ciencia abierta", Category: OpenScience},
		{Term: "open access", Category: OpenScience},
	})

	if !cov.Covered || cov.Count != 3 {
		t.Errorf("unexpected coverage %+v", cov)
	}

	terms := cov.Terms()
	if len(terms) != 2 || terms[0] != "open access" || terms[1] != "ciencia abierta" {
		t.Errorf("unexpected terms %v", terms)
	}

	var nilCov *CategoryCoverage
	if nilCov.Terms() != nil {
		t.Error("expected nil terms for nil coverage")
	}
}

func TestSkippedRecord(t *testing.T) {
	t.Parallel()

	r := NewSkippedRecord(Institution{Name: "U"}, "survey cancelled")
	if r.Status != StatusSkipped {
		t.Errorf("expected skipped status, got %q", r.Status)
	}
	if r.Reachable() {
		t.Error("skipped record must not be reachable")
	}
	if r.FailureReason != "survey cancelled" {
		t.Errorf("unexpected reason %q", r.FailureReason)
	}
}

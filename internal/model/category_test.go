package model

import (
	"encoding/json"
	"testing"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr bool
	}{
		{name: "english key", input: "open_science", want: OpenScience},
		{name: "spanish key", input: "comunicacion_publica", want: PublicCommunication},
		{name: "mixed case and spaces", input: "  Science_Diplomacy ", want: ScienceDiplomacy},
		{name: "unknown", input: "astronomy", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCategoryNames(t *testing.T) {
	t.Parallel()

	t.Run("all categories in report order", func(t *testing.T) {
		t.Parallel()

		all := AllCategories()
		if len(all) != 3 {
			t.Fatalf("expected 3 categories, got %d", len(all))
		}
		if all[0] != OpenScience || all[1] != PublicCommunication || all[2] != ScienceDiplomacy {
			t.Errorf("unexpected order: %v", all)
		}
	})

	t.Run("labels are spanish", func(t *testing.T) {
		t.Parallel()

		if OpenScience.Label() != "Ciencia Abierta" {
			t.Errorf("unexpected label %q", OpenScience.Label())
		}
		if ScienceDiplomacy.Short() != "DC" {
			t.Errorf("unexpected short name %q", ScienceDiplomacy.Short())
		}
	})

	t.Run("invalid category string", func(t *testing.T) {
		t.Parallel()

		if Category(42).IsValid() {
			t.Error("expected category 42 to be invalid")
		}
		if Category(42).String() != "category(42)" {
			t.Errorf("unexpected string %q", Category(42).String())
		}
	})
}

func TestCategoryJSON(t *testing.T) {
	t.Parallel()

	cov := map[Category]int{OpenScience: 2, ScienceDiplomacy: 1}
	data, err := json.Marshal(cov)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[Category]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded[OpenScience] != 2 || decoded[ScienceDiplomacy] != 1 {
		t.Errorf("unexpected decoded map: %v", decoded)
	}
}

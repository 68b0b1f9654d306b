package nursery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/garden"
)

const validCatalog = `{
	"varieties": [
		{
			"name": "rhodo-small",
			"species": "RHODODENDRON",
			"radius": 1,
			"nutrient_coefficients": {"R": 2, "G": -0.5, "B": -0.5},
			"count": 3
		},
		{
			"name": "geranium-big",
			"species": "GERANIUM",
			"radius": 3,
			"nutrient_coefficients": {"R": -1, "G": 4, "B": -1}
		}
	]
}`

func TestParseCatalog(t *testing.T) {
	varieties, err := ParseCatalog([]byte(validCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// count: 3 expands the first entry, the second defaults to 1.
	if len(varieties) != 4 {
		t.Fatalf("expected 4 varieties, got %d", len(varieties))
	}
	if varieties[0].Name != "rhodo-small" || varieties[0].Radius != 1 {
		t.Errorf("unexpected first variety: %+v", varieties[0])
	}
	if varieties[3].Species != garden.SpeciesGeranium {
		t.Errorf("unexpected last variety species: %s", varieties[3].Species)
	}
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode errors.Code
	}{
		{"malformed json", `{`, errors.ErrCodeInvalidCatalog},
		{"empty catalog", `{"varieties": []}`, errors.ErrCodeInvalidCatalog},
		{
			"bad radius",
			`{"varieties": [{"name": "x", "species": "BEGONIA", "radius": 5,
				"nutrient_coefficients": {"R": -1, "G": -1, "B": 4}}]}`,
			errors.ErrCodeInvalidVariety,
		},
		{
			"wrong sign pattern",
			`{"varieties": [{"name": "x", "species": "BEGONIA", "radius": 2,
				"nutrient_coefficients": {"R": 1, "G": -1, "B": 4}}]}`,
			errors.ErrCodeInvalidVariety,
		},
		{
			"negative count",
			`{"varieties": [{"name": "x", "species": "BEGONIA", "radius": 2,
				"nutrient_coefficients": {"R": -1, "G": -1, "B": 4}, "count": -2}]}`,
			errors.ErrCodeInvalidCatalog,
		},
		{
			"bad name",
			`{"varieties": [{"name": "../x", "species": "BEGONIA", "radius": 2,
				"nutrient_coefficients": {"R": -1, "G": -1, "B": 4}}]}`,
			errors.ErrCodeInvalidVariety,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(validCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	varieties, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(varieties) != 4 {
		t.Errorf("expected 4 varieties, got %d", len(varieties))
	}

	_, err = LoadCatalog(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestLoadInventory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(validCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Total() != 4 {
		t.Errorf("expected 4 instances, got %d", inv.Total())
	}
	if got := len(inv.Remaining()); got != 2 {
		t.Errorf("expected 2 distinct templates, got %d", got)
	}
}

func TestGenerateRandom(t *testing.T) {
	varieties := GenerateRandom(42, 20)
	if len(varieties) != 20 {
		t.Fatalf("expected 20 varieties, got %d", len(varieties))
	}

	// Every generated variety must pass the placement rules.
	for _, v := range varieties {
		if err := v.Validate(); err != nil {
			t.Errorf("generated variety invalid: %v", err)
		}
	}

	// Same seed reproduces the catalog exactly.
	again := GenerateRandom(42, 20)
	for i := range varieties {
		if varieties[i].Signature() != again[i].Signature() {
			t.Fatalf("seed 42 not reproducible at index %d", i)
		}
	}

	// A different seed should differ somewhere.
	other := GenerateRandom(7, 20)
	same := true
	for i := range varieties {
		if varieties[i].Signature() != other[i].Signature() {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical catalogs")
	}
}

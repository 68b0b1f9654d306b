package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/layout"
)

func testLayout() *layout.Layout {
	return &layout.Layout{
		Width:  16,
		Height: 10,
		Plants: []layout.Placement{
			{
				Variety: garden.Variety{
					Name:    "rhodo",
					Species: garden.SpeciesRhododendron,
					Radius:  3,
					Coefficients: map[garden.Nutrient]float64{
						garden.NutrientR: 2,
						garden.NutrientG: -0.5,
						garden.NutrientB: -0.5,
					},
				},
				Position: garden.Position{X: 8, Y: 5},
			},
		},
		Turns:     100,
		Projected: 42.5,
		Elapsed:   1.2,
	}
}

func TestHealthz(t *testing.T) {
	srv := NewServer(nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
}

func TestLayoutNotFound(t *testing.T) {
	srv := NewServer(nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/layout")
	if err != nil {
		t.Fatalf("GET /api/layout: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	srv := NewServer(nil)
	srv.SetLayout(testLayout())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/layout")
	if err != nil {
		t.Fatalf("GET /api/layout: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got layout.Layout
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding layout: %v", err)
	}
	if got.Width != 16 || got.Height != 10 {
		t.Errorf("dimensions = %gx%g, want 16x10", got.Width, got.Height)
	}
	if len(got.Plants) != 1 {
		t.Fatalf("plants = %d, want 1", len(got.Plants))
	}
	if got.Plants[0].Variety.Name != "rhodo" {
		t.Errorf("plant name = %q, want rhodo", got.Plants[0].Variety.Name)
	}
}

func TestStatusReflectsLayout(t *testing.T) {
	srv := NewServer(nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	var st Status
	getStatus := func() Status {
		resp, err := http.Get(ts.URL + "/api/status")
		if err != nil {
			t.Fatalf("GET /api/status: %v", err)
		}
		defer resp.Body.Close()
		var s Status
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			t.Fatalf("decoding status: %v", err)
		}
		return s
	}

	st = getStatus()
	if st.State != StateIdle {
		t.Errorf("initial state = %q, want %q", st.State, StateIdle)
	}

	srv.SetLayout(testLayout())
	st = getStatus()
	if st.State != StateDone {
		t.Errorf("state = %q, want %q", st.State, StateDone)
	}
	if st.Placed != 1 {
		t.Errorf("placed = %d, want 1", st.Placed)
	}
	if st.Score != 42.5 {
		t.Errorf("score = %g, want 42.5", st.Score)
	}
}

func TestHooksTrackProgress(t *testing.T) {
	srv := NewServer(nil)
	hooks := srv.Hooks()
	ctx := context.Background()

	hooks.OnPhaseChange(ctx, "", "BUILD_STARTER")
	hooks.OnPlacement(ctx, "rhodo", 8, 5, 12.5)
	hooks.OnPlacement(ctx, "geranium", 11, 5, 18.0)
	hooks.OnPhaseChange(ctx, "BUILD_STARTER", "REPLICATE")

	srv.mu.RLock()
	st := srv.status
	srv.mu.RUnlock()

	if st.State != StatePlanning {
		t.Errorf("state = %q, want %q", st.State, StatePlanning)
	}
	if st.Phase != "REPLICATE" {
		t.Errorf("phase = %q, want REPLICATE", st.Phase)
	}
	if st.Placed != 2 {
		t.Errorf("placed = %d, want 2", st.Placed)
	}
	if st.Score != 18.0 {
		t.Errorf("score = %g, want 18.0", st.Score)
	}
}

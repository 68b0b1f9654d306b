package api

import (
	"context"
	"time"

	"github.com/verdantlabs/verdant/pkg/observability"
)

// Hooks returns search hooks that feed live planner progress into the
// server's status. Register the result with observability.SetSearchHooks
// before starting a run.
func (s *Server) Hooks() observability.SearchHooks {
	return &searchHooks{s: s}
}

type searchHooks struct {
	observability.NoopSearchHooks
	s *Server
}

func (h *searchHooks) OnPhaseChange(_ context.Context, _, to string) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.s.status.State != StatePlanning {
		h.s.status = Status{State: StatePlanning}
		h.s.start = time.Now()
	}
	h.s.status.Phase = to
}

func (h *searchHooks) OnPlacement(_ context.Context, _ string, _, _, score float64) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.status.Placed++
	h.s.status.Score = score
}

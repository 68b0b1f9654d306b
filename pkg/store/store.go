// Package store persists planning run results.
//
// A Run bundles the final layout with the metrics a tournament compares:
// score, plant count, elapsed time, and whether the governor had to stop
// the run. Two backends exist: MongoDB for shared tournament result
// collection and an in-memory store for tests and single runs.
package store

import (
	"context"
	"time"

	"github.com/verdantlabs/verdant/pkg/layout"
)

// Run is one completed planning run.
type Run struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	Catalog   string        `json:"catalog" bson:"catalog"`
	Layout    layout.Layout `json:"layout" bson:"layout"`
	Score     float64       `json:"score" bson:"score"`
	Placed    int           `json:"placed" bson:"placed"`
	Replicas  int           `json:"replicas" bson:"replicas"`
	Elapsed   float64       `json:"elapsed_seconds" bson:"elapsed_seconds"`
	Scaled    bool          `json:"scaled" bson:"scaled"`
	TimedOut  bool          `json:"timed_out" bson:"timed_out"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

// Store persists and retrieves runs.
type Store interface {
	// Save persists a run, assigning its ID and timestamp when unset.
	Save(ctx context.Context, run *Run) error

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int64) ([]Run, error)

	// Best returns the highest-scoring run.
	Best(ctx context.Context) (*Run, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

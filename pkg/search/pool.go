package search

import (
	"context"
	"math"
	"sync"

	"github.com/verdantlabs/verdant/pkg/garden"
)

// evaluation is one scored candidate coming back from a worker.
type evaluation struct {
	value    float64
	variety  garden.Variety
	position garden.Position
}

// evalJob is an immutable (snapshot, candidate) unit of work. Workers share
// nothing mutable and report only a score, so no locking is needed beyond
// the channels.
type evalJob struct {
	variety  garden.Variety
	position garden.Position
	turns    int
}

// evaluateBatch scores every candidate at the given horizon, fanning out
// across a worker pool when the batch is large enough to amortize dispatch
// overhead. Result order is unspecified; callers reduce by max.
func (p *Planner) evaluateBatch(ctx context.Context, g *garden.Garden, batch []Candidate, turns int) []evaluation {
	// No new batches once the hard-timeout flag is set; in-flight work is
	// allowed to finish, but the phase loops wind down from here.
	if p.gov != nil && p.gov.timedOut {
		return nil
	}
	if !p.opts.Parallel || len(batch) < p.opts.ParallelThreshold {
		return p.evaluateSerial(ctx, g, batch, turns)
	}

	jobs := make(chan evalJob, len(batch))
	results := make(chan evaluation, len(batch))
	currentScore := p.currentScore

	var wg sync.WaitGroup
	workers := p.opts.Workers
	if workers > len(batch) {
		workers = len(batch)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				value := evaluatePlacement(ctx, p.opts.Simulator, g, job.variety, job.position, job.turns, p.opts, currentScore)
				results <- evaluation{value: value, variety: job.variety, position: job.position}
			}
		}()
	}

	for _, cand := range batch {
		jobs <- evalJob{variety: cand.Variety, position: cand.Position, turns: turns}
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make([]evaluation, 0, len(batch))
	for ev := range results {
		out = append(out, ev)
	}
	return out
}

func (p *Planner) evaluateSerial(ctx context.Context, g *garden.Garden, batch []Candidate, turns int) []evaluation {
	out := make([]evaluation, 0, len(batch))
	for _, cand := range batch {
		value := evaluatePlacement(ctx, p.opts.Simulator, g, cand.Variety, cand.Position, turns, p.opts, p.currentScore)
		out = append(out, evaluation{value: value, variety: cand.Variety, position: cand.Position})
	}
	return out
}

// bestEvaluation reduces a batch of results by max value. Returns ok=false
// when every candidate failed.
func bestEvaluation(evals []evaluation) (evaluation, bool) {
	best := evaluation{value: math.Inf(-1)}
	for _, ev := range evals {
		if ev.value > best.value {
			best = ev
		}
	}
	return best, !math.IsInf(best.value, -1)
}

// Package search implements the plant placement engine: candidate
// generation, pattern-grouped two-tier scoring, a phased placement
// controller, and a time-budget governor that degrades search depth
// instead of overrunning the clock.
//
// The controller owns the authoritative garden. Trial placements always
// run on clones, so a failed or abandoned evaluation never leaks into the
// committed state.
package search

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/garden"
	"github.com/verdantlabs/verdant/pkg/observability"
)

// interactionRule is the neighbor requirement active for a placement.
type interactionRule int

const (
	ruleAny interactionRule = iota // first plant, no anchor yet
	ruleOne                        // second plant, one interacting species
	ruleTwo                        // steady state, two distinct species
)

// Planner drives the placement state machine over a garden and a variety
// inventory. A Planner is single-use: create one per run.
type Planner struct {
	opts  *Options
	g     *garden.Garden
	inv   *garden.Inventory
	gov   *governor
	cache *patternCache
	log   *log.Logger

	currentScore   float64
	totalVarieties int
	template       *starterTemplate
	phase          Phase
}

// New validates the configuration and variety set and prepares a planner
// for the given garden.
func New(g *garden.Garden, varieties []garden.Variety, opts Options) (*Planner, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "search options")
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "garden is required")
	}
	if err := errors.ValidateDimensions(g.Width, g.Height); err != nil {
		return nil, err
	}
	for _, v := range varieties {
		if err := v.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVariety, err, "planner input")
		}
	}

	return &Planner{
		opts:           &opts,
		g:              g,
		inv:            garden.NewInventory(varieties),
		cache:          newPatternCache(),
		log:            opts.Logger,
		totalVarieties: len(varieties),
		phase:          PhaseBuildStarter,
	}, nil
}

// Run executes all phases and returns the committed garden with its
// tuning report. A hard timeout is a controlled degradation, not an
// error: the result always contains every placement committed so far.
func (p *Planner) Run(ctx context.Context) (*Result, error) {
	p.gov = newGovernor(p.opts)

	p.setPhase(ctx, PhaseBuildStarter)
	starterSize := p.buildStarter(ctx)

	p.setPhase(ctx, PhaseReplicate)
	replicas := p.replicate(ctx)

	p.setPhase(ctx, PhaseFillRemaining)
	p.fillRemaining(ctx)

	p.setPhase(ctx, PhaseDone)
	score, err := simulateAndScore(ctx, p.opts.Simulator, p.g, p.opts.Turns, p.opts.ShortTermWeight, p.opts.LongTermWeight)
	if err != nil {
		score = p.currentScore
	}

	return &Result{
		Garden:      p.g,
		Score:       score,
		Placed:      len(p.g.Plants),
		StarterSize: starterSize,
		Replicas:    replicas,
		Tuning:      p.gov.Report(),
	}, nil
}

func (p *Planner) setPhase(ctx context.Context, next Phase) {
	if p.phase != next {
		observability.Search().OnPhaseChange(ctx, string(p.phase), string(next))
		p.log.Debug("phase transition", "from", p.phase, "to", next)
	}
	p.phase = next
}

// =============================================================================
// BUILD_STARTER
// =============================================================================

// buildStarter designs the template group: anchor at the garden center,
// then greedy additions under the two-species rule, pruned after each
// addition, with a final pass covering rollback stragglers. Returns the
// surviving starter size.
func (p *Planner) buildStarter(ctx context.Context) int {
	var members []*garden.Plant

	if len(p.g.Plants) == 0 && p.inv.Total() > 0 {
		anchor := p.placeAnchor(ctx)
		if anchor != nil {
			members = append(members, anchor)
		}
	}

	members = append(members, p.greedyLoop(ctx)...)

	p.pruneFrom(0)
	members = p.surviving(members)
	p.template = captureTemplate(members)
	p.log.Info("starter group complete", "size", len(members))
	return len(members)
}

// placeAnchor commits the largest-radius variety at the garden center.
func (p *Planner) placeAnchor(ctx context.Context) *garden.Plant {
	remaining := p.inv.Remaining()
	if len(remaining) == 0 {
		return nil
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		if remaining[i].Radius != remaining[j].Radius {
			return remaining[i].Radius > remaining[j].Radius
		}
		return remaining[i].Species > remaining[j].Species
	})

	v := remaining[0]
	center := garden.Position{X: p.g.Width / 2, Y: p.g.Height / 2}
	if !p.inv.Take(v) {
		return nil
	}
	plant := p.g.Place(v, center)
	if plant == nil {
		p.inv.Return(v)
		return nil
	}
	p.commitBookkeeping(ctx, plant, 0)
	return plant
}

// greedyLoop runs iterative generate→group→score→commit cycles until the
// improvement drops below epsilon, candidates run out, or time is up.
// After every commit with no relaxed placement outstanding it prunes, so a
// plant stranded by an earlier rollback never survives into the next
// iteration. At most one relaxed (single-species) placement may be
// outstanding; its immediate follow-up must restore two-species
// interaction or the relaxed plant is rolled back and the loop ends.
func (p *Planner) greedyLoop(ctx context.Context) []*garden.Plant {
	var placed []*garden.Plant
	var relaxedID string

	for p.inv.Total() > 0 {
		if p.gov.TimedOut(ctx) {
			break
		}
		iterStart := p.opts.Clock()

		best, usedRelax, ok := p.findBestPlacement(ctx, nil)
		if !ok {
			break
		}
		if best.value <= p.opts.Epsilon {
			p.log.Debug("improvement below threshold", "value", best.value, "epsilon", p.opts.Epsilon)
			break
		}

		// Two consecutive relaxed placements are not allowed: roll the
		// earlier one back and end the loop.
		if relaxedID != "" && usedRelax {
			p.rollbackPlant(relaxedID)
			relaxedID = ""
			break
		}

		plant := p.commit(ctx, best)
		if plant == nil {
			continue
		}
		placed = append(placed, plant)

		if relaxedID != "" && !usedRelax {
			// The follow-up either restores the relaxed plant's two-species
			// interaction or the relaxed branch is dead.
			if !p.followUpRestores(relaxedID, plant) {
				p.rollbackPlant(relaxedID)
				relaxedID = ""
				break
			}
			relaxedID = ""
		}
		if usedRelax {
			relaxedID = plant.ID
		}

		if relaxedID == "" {
			p.pruneFrom(0)
		}

		elapsed := p.opts.Clock().Sub(iterStart)
		observability.Search().OnIteration(ctx, string(p.phase), p.opts.MaxCandidates, elapsed)
		if p.gov.Observe(elapsed) {
			p.gov.Check(ctx, p.g.Coverage(500), p.inv.Total())
		}
	}

	// A relaxed plant may not end the group: without a follow-up that
	// restores two-species interaction it is a dead branch.
	if relaxedID != "" {
		p.rollbackPlant(relaxedID)
	}
	return placed
}

// =============================================================================
// FILL_REMAINING
// =============================================================================

// fillRemaining alternates between building new independent groups and
// greedy single placements until nothing fits or time runs out.
func (p *Planner) fillRemaining(ctx context.Context) {
	for p.inv.Total() >= 3 {
		if p.gov.TimedOut(ctx) {
			return
		}
		if !p.buildNewGroup(ctx) {
			break
		}
	}

	if p.inv.Total() > 0 && !p.gov.TimedOut(ctx) {
		p.greedyLoop(ctx)
	}

	if len(p.g.Plants) > 3 {
		p.pruneFrom(0)
	}
}

// buildNewGroup seeds a fresh group in open space and grows it under the
// same two-species rule, counting interactions only among the new members.
// Anything smaller than three plants is rolled back.
func (p *Planner) buildNewGroup(ctx context.Context) bool {
	start := len(p.g.Plants)

	anchorVariety, anchorPos, ok := p.openAnchor()
	if !ok {
		return false
	}
	if !p.inv.Take(anchorVariety) {
		return false
	}
	anchor := p.g.Place(anchorVariety, anchorPos)
	if anchor == nil {
		p.inv.Return(anchorVariety)
		return false
	}
	p.cache.Invalidate(anchor.Position, anchor.Variety.Radius)

	group := []*garden.Plant{anchor}
	for p.inv.Total() > 0 && !p.gov.TimedOut(ctx) {
		best, _, found := p.findBestPlacement(ctx, group)
		if !found || best.value <= p.opts.Epsilon {
			break
		}
		plant := p.commit(ctx, best)
		if plant == nil {
			break
		}
		group = append(group, plant)
	}

	if len(group) < 3 {
		for _, plant := range group {
			p.rollbackPlant(plant.ID)
		}
		return false
	}

	p.pruneFrom(start)
	p.log.Debug("built independent group", "size", len(p.g.Plants)-start)
	return len(p.g.Plants) > start
}

// openAnchor picks the largest remaining variety and the integer position
// with the most clearance from existing plants.
func (p *Planner) openAnchor() (garden.Variety, garden.Position, bool) {
	remaining := p.inv.Remaining()
	if len(remaining) == 0 {
		return garden.Variety{}, garden.Position{}, false
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Radius > remaining[j].Radius
	})
	v := remaining[0]

	var bestPos garden.Position
	bestClearance := -1.0
	for x := 0; x <= int(p.g.Width); x++ {
		for y := 0; y <= int(p.g.Height); y++ {
			pos := garden.Position{X: float64(x), Y: float64(y)}
			if !p.g.CanPlace(v, pos) {
				continue
			}
			clearance := p.g.Width + p.g.Height
			for _, plant := range p.g.Plants {
				if d := pos.Distance(plant.Position); d < clearance {
					clearance = d
				}
			}
			if clearance > bestClearance {
				bestClearance = clearance
				bestPos = pos
			}
		}
	}
	if bestClearance < 0 {
		return garden.Variety{}, garden.Position{}, false
	}
	return v, bestPos, true
}

// =============================================================================
// Scoring pipeline
// =============================================================================

// findBestPlacement runs one generate→group→score cycle. scope limits
// which plants count toward the interaction rule (nil means the whole
// garden); collision checks always use the whole garden. When the strict
// two-species rule yields nothing, the search retries once with the
// relaxed one-species rule and reports that it did.
func (p *Planner) findBestPlacement(ctx context.Context, scope []*garden.Plant) (evaluation, bool, bool) {
	if scope == nil {
		scope = p.g.Plants
	}
	rule := ruleTwo
	switch len(scope) {
	case 0:
		rule = ruleAny
	case 1:
		rule = ruleOne
	}

	varieties := p.prioritizeVarieties(scope)
	if len(varieties) == 0 {
		return evaluation{}, false, false
	}
	positions := generateCandidates(p.g, varieties, p.opts)

	if best, ok := p.scorePipeline(ctx, positions, varieties, scope, rule); ok {
		return best, false, true
	}
	if rule == ruleTwo {
		if best, ok := p.scorePipeline(ctx, positions, varieties, scope, ruleOne); ok {
			return best, true, true
		}
	}
	return evaluation{}, false, false
}

func (p *Planner) scorePipeline(ctx context.Context, positions []garden.Position, varieties []garden.Variety, scope []*garden.Plant, rule interactionRule) (evaluation, bool) {
	var cands []Candidate
	for _, pos := range positions {
		for _, v := range varieties {
			if !p.g.CanPlace(v, pos) {
				continue
			}
			if !p.satisfiesRule(v, pos, scope, rule) {
				continue
			}
			cands = append(cands, Candidate{Variety: v, Position: pos})
		}
	}
	if len(cands) == 0 {
		return evaluation{}, false
	}

	grouped := groupBySignature(p.g, cands, p.cache)

	// Tier 1: rank every pattern representative analytically.
	type ranked struct {
		cand  Candidate
		score float64
	}
	tier1 := make([]ranked, 0, len(grouped))
	for _, gc := range grouped {
		tier1 = append(tier1, ranked{
			cand:  gc.Candidate,
			score: heuristicScore(p.g, gc.Variety, gc.Position, p.opts.AreaPower),
		})
	}
	sort.SliceStable(tier1, func(i, j int) bool { return tier1[i].score > tier1[j].score })

	params := p.gov.Params()
	topK := params.HeuristicTopK
	if topK > len(tier1) {
		topK = len(tier1)
	}
	batch := make([]Candidate, 0, topK)
	for _, r := range tier1[:topK] {
		batch = append(batch, r.cand)
	}

	// Tier 2: simulation-backed scoring at the adaptive horizon.
	turns := adaptiveTurns(len(p.g.Plants), p.totalVarieties, params, p.opts.AdaptiveTurnsAlpha)
	evals := p.evaluateBatch(ctx, p.g, batch, turns)

	// Tier 3: deep re-evaluation of the leaders to break near-ties.
	sort.SliceStable(evals, func(i, j int) bool { return evals[i].value > evals[j].value })
	refineK := p.opts.RefineTopK
	if refineK > len(evals) {
		refineK = len(evals)
	}
	if refineK > 1 {
		refineBatch := make([]Candidate, 0, refineK)
		for _, ev := range evals[:refineK] {
			refineBatch = append(refineBatch, Candidate{Variety: ev.variety, Position: ev.position})
		}
		evals = p.evaluateBatch(ctx, p.g, refineBatch, params.RefineTurns)
	}

	return bestEvaluation(evals)
}

func (p *Planner) satisfiesRule(v garden.Variety, pos garden.Position, scope []*garden.Plant, rule interactionRule) bool {
	if rule == ruleAny {
		return true
	}
	species := make(map[garden.Species]bool)
	for _, plant := range scope {
		if plant.Variety.Species == v.Species {
			continue
		}
		if pos.Distance(plant.Position) < v.InteractionRange(plant.Variety) {
			species[plant.Variety.Species] = true
		}
	}
	if rule == ruleOne {
		return len(species) >= 1
	}
	return len(species) >= 2
}

// prioritizeVarieties orders the distinct remaining templates for the
// current group size: largest radius for the anchor and second plant,
// smallest for the third (it has to squeeze between two anchors), then a
// demand-driven priority for the steady state. The second and third
// plants must introduce a species the scope lacks.
func (p *Planner) prioritizeVarieties(scope []*garden.Plant) []garden.Variety {
	remaining := p.inv.Remaining()

	existing := make(map[garden.Species]bool)
	for _, plant := range scope {
		existing[plant.Variety.Species] = true
	}

	switch len(scope) {
	case 0:
		sort.SliceStable(remaining, func(i, j int) bool {
			if remaining[i].Radius != remaining[j].Radius {
				return remaining[i].Radius > remaining[j].Radius
			}
			return remaining[i].Species > remaining[j].Species
		})
		return remaining
	case 1, 2:
		var fresh []garden.Variety
		for _, v := range remaining {
			if !existing[v.Species] {
				fresh = append(fresh, v)
			}
		}
		ascending := len(scope) == 2
		sort.SliceStable(fresh, func(i, j int) bool {
			if fresh[i].Radius != fresh[j].Radius {
				if ascending {
					return fresh[i].Radius < fresh[j].Radius
				}
				return fresh[i].Radius > fresh[j].Radius
			}
			return fresh[i].Species > fresh[j].Species
		})
		return fresh
	}

	type scored struct {
		v garden.Variety
		s float64
	}
	totals := make(map[garden.Nutrient]float64)
	for _, plant := range p.g.Plants {
		for n, c := range plant.Variety.Coefficients {
			totals[n] += c
		}
	}
	maxTotal := totals[garden.Nutrients[0]]
	for _, n := range garden.Nutrients[1:] {
		if totals[n] > maxTotal {
			maxTotal = totals[n]
		}
	}

	list := make([]scored, 0, len(remaining))
	for _, v := range remaining {
		var s float64
		for n, c := range v.Coefficients {
			if c > 0 {
				s += c * (maxTotal - totals[n]) / (maxTotal + 1)
			}
		}
		if !existing[v.Species] || len(existing) > 1 {
			s += 10 // can interact with something already placed
		}
		s += float64(4-v.Radius) * 0.5 // smaller radii fill gaps more flexibly
		list = append(list, scored{v: v, s: s})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].s > list[j].s })

	out := make([]garden.Variety, 0, len(list))
	for _, e := range list {
		out = append(out, e.v)
	}
	return out
}

// =============================================================================
// Commit and rollback
// =============================================================================

// commit takes the winning variety from inventory and places it.
func (p *Planner) commit(ctx context.Context, best evaluation) *garden.Plant {
	if !p.inv.Take(best.variety) {
		return nil
	}
	plant := p.g.Place(best.variety, best.position)
	if plant == nil {
		p.inv.Return(best.variety)
		return nil
	}
	p.commitBookkeeping(ctx, plant, best.value)
	return plant
}

func (p *Planner) commitBookkeeping(ctx context.Context, plant *garden.Plant, value float64) {
	p.cache.Invalidate(plant.Position, plant.Variety.Radius)
	observability.Search().OnPlacement(ctx, plant.Variety.Name, plant.Position.X, plant.Position.Y, value)
	p.log.Debug("placed",
		"variety", plant.Variety.Name,
		"x", plant.Position.X, "y", plant.Position.Y,
		"value", value)
	p.refreshScore(ctx)
}

func (p *Planner) refreshScore(ctx context.Context) {
	turns := adaptiveTurns(len(p.g.Plants), p.totalVarieties, p.gov.Params(), p.opts.AdaptiveTurnsAlpha)
	score, err := simulateAndScore(ctx, p.opts.Simulator, p.g, turns, p.opts.ShortTermWeight, p.opts.LongTermWeight)
	if err == nil {
		p.currentScore = score
	}
}

func (p *Planner) rollbackPlant(id string) {
	for _, plant := range p.g.Plants {
		if plant.ID == id {
			p.g.Remove(id)
			p.inv.Return(plant.Variety)
			p.cache.Invalidate(plant.Position, plant.Variety.Radius)
			return
		}
	}
}

// pruneFrom iteratively removes plants (beyond the first two) that fail
// the two-species interaction requirement, returning their varieties to
// inventory. Removal cascades: losing a neighbor can strand another plant.
func (p *Planner) pruneFrom(start int) int {
	removed := 0
	for changed := true; changed; {
		changed = false
		for i := len(p.g.Plants) - 1; i >= start && i >= 2; i-- {
			plant := p.g.Plants[i]
			if p.twoSpecies(plant) {
				continue
			}
			p.rollbackPlant(plant.ID)
			removed++
			changed = true
			break
		}
	}
	if removed > 0 {
		p.log.Debug("pruned isolated plants", "count", removed)
	}
	return removed
}

func (p *Planner) twoSpecies(plant *garden.Plant) bool {
	species := make(map[garden.Species]bool)
	for _, other := range p.g.Interacting(plant) {
		species[other.Variety.Species] = true
	}
	return len(species) >= 2
}

// followUpRestores reports whether a committed follow-up has given both
// itself and the outstanding relaxed plant interactions with two distinct
// species. A geometrically valid follow-up can still fail this: one that
// anchors on other plants, or one of the species the relaxed plant
// already touches, leaves the relaxed branch dead.
func (p *Planner) followUpRestores(relaxedID string, follow *garden.Plant) bool {
	return p.twoSpecies(follow) && p.twoSpeciesByID(relaxedID)
}

func (p *Planner) twoSpeciesByID(id string) bool {
	for _, plant := range p.g.Plants {
		if plant.ID == id {
			return p.twoSpecies(plant)
		}
	}
	return false
}

// surviving filters members down to those still present in the garden.
func (p *Planner) surviving(members []*garden.Plant) []*garden.Plant {
	present := make(map[string]bool, len(p.g.Plants))
	for _, plant := range p.g.Plants {
		present[plant.ID] = true
	}
	var out []*garden.Plant
	for _, m := range members {
		if present[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

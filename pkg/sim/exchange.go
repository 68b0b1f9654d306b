package sim

import "github.com/verdantlabs/verdant/pkg/garden"

// offerFraction is the share of a plant's produced-nutrient inventory it
// puts on offer each evening, split evenly across its partners.
const offerFraction = 0.25

// exchange runs the evening trade round. Offers and pair eligibility are
// both computed from the pre-exchange inventories before any trade is
// applied, so trade order does not affect the outcome of a single round.
func exchange(g *garden.Garden) {
	offers := make(map[string]float64, len(g.Plants))
	for _, p := range g.Plants {
		partners := len(g.Interacting(p))
		if partners == 0 {
			continue
		}
		produced := p.Variety.Species.Produces()
		offers[p.ID] = p.Inventory[produced] * offerFraction / float64(partners)
	}

	var eligible [][2]*garden.Plant
	for _, pair := range g.InteractionPairs() {
		if mutualSurplus(pair[0], pair[1]) {
			eligible = append(eligible, pair)
		}
	}

	for _, pair := range eligible {
		p1, p2 := pair[0], pair[1]
		amount := offers[p1.ID]
		if o2 := offers[p2.ID]; o2 < amount {
			amount = o2
		}
		if amount <= 0 {
			continue
		}

		n1 := p1.Variety.Species.Produces()
		n2 := p2.Variety.Species.Produces()
		p1.Inventory[n1] -= amount
		p1.Inventory[n2] += amount
		p2.Inventory[n2] -= amount
		p2.Inventory[n1] += amount
	}
}

// mutualSurplus reports whether both plants hold more of their own produced
// nutrient than of the partner's. Trades happen only when both sides gain.
func mutualSurplus(p1, p2 *garden.Plant) bool {
	n1 := p1.Variety.Species.Produces()
	n2 := p2.Variety.Species.Produces()
	return p1.Inventory[n1] > p1.Inventory[n2] && p2.Inventory[n2] > p2.Inventory[n1]
}

package garden

// Inventory tracks how many instances of each variety template remain
// available for placement. Varieties are counted by signature, so identical
// templates pool together regardless of instance identity.
type Inventory struct {
	counts    map[string]int
	templates map[string]Variety
	order     []string
}

// NewInventory builds an inventory from a multiset of varieties.
func NewInventory(varieties []Variety) *Inventory {
	inv := &Inventory{
		counts:    make(map[string]int),
		templates: make(map[string]Variety),
	}
	for _, v := range varieties {
		sig := v.Signature()
		if _, seen := inv.counts[sig]; !seen {
			inv.templates[sig] = v
			inv.order = append(inv.order, sig)
		}
		inv.counts[sig]++
	}
	return inv
}

// Remaining returns the distinct variety templates that still have at least
// one instance available, in first-seen order.
func (inv *Inventory) Remaining() []Variety {
	var out []Variety
	for _, sig := range inv.order {
		if inv.counts[sig] > 0 {
			out = append(out, inv.templates[sig])
		}
	}
	return out
}

// Count returns the number of available instances of v's template.
func (inv *Inventory) Count(v Variety) int {
	return inv.counts[v.Signature()]
}

// Total returns the number of instances remaining across all templates.
func (inv *Inventory) Total() int {
	var total int
	for _, c := range inv.counts {
		total += c
	}
	return total
}

// Take consumes one instance of v's template, reporting whether one was
// available. Callers must never place a variety Take refused.
func (inv *Inventory) Take(v Variety) bool {
	sig := v.Signature()
	if inv.counts[sig] <= 0 {
		return false
	}
	inv.counts[sig]--
	return true
}

// Return puts one instance of v's template back, used when a trial
// placement is rolled back.
func (inv *Inventory) Return(v Variety) {
	sig := v.Signature()
	if _, seen := inv.counts[sig]; !seen {
		inv.templates[sig] = v
		inv.order = append(inv.order, sig)
	}
	inv.counts[sig]++
}

// Has reports whether every (variety, count) requirement can be satisfied.
func (inv *Inventory) Has(required map[string]int) bool {
	for sig, n := range required {
		if inv.counts[sig] < n {
			return false
		}
	}
	return true
}

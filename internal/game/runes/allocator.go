package runes

import (
	"fmt"
)

// Rune represents a single channeled resource card. Untapped runes
// contribute to the derived resource pool; tapped runes do not.
type Rune struct {
	ID     string
	Name   string
	Domain Domain
	Power  int
	Energy int
	Tapped bool
}

// Copy returns a copy of the rune.
func (r *Rune) Copy() *Rune {
	copied := *r
	return &copied
}

// PaymentPlan describes which runes satisfy a cost. Runes listed for
// energy only are tapped on commit; runes listed for power are spent and
// recycled back to the rune deck. A rune may appear in both lists when it
// doubles as energy and power, in which case the power treatment wins.
type PaymentPlan struct {
	EnergyRuneIDs []string
	PowerRuneIDs  []string
}

// PaymentResult is the outcome of a dry-run payment calculation.
type PaymentResult struct {
	Success bool
	Reason  string
	Plan    *PaymentPlan
}

// PoolSummary reports the derived resource pool of a set of channeled
// runes: total energy and per-domain power available from untapped runes.
func PoolSummary(channeled []*Rune) (int, map[Domain]int) {
	energy := 0
	power := make(map[Domain]int)
	for _, r := range channeled {
		if r.Tapped {
			continue
		}
		energy += r.Energy
		if r.Power > 0 {
			power[r.Domain] += r.Power
		}
	}
	return energy, power
}

// CanPay reports whether the channeled runes can satisfy the cost.
// No state is mutated.
func CanPay(cost *Cost, channeled []*Rune) bool {
	return CalculatePayment(cost, channeled).Success
}

// CalculatePayment computes a payment plan for the given cost against a
// player's channeled runes without mutating anything.
//
// Energy is reserved greedily, preferring runes whose domain matches an
// outstanding power demand (so they can double as power later), then
// domain-less runes, then any remaining rune. Each power demand is then
// satisfied first by reusing reserved energy runes of the matching domain,
// then reserved domain-less runes, then additional untapped runes of the
// matching domain, then additional domain-less runes. Power is consumed in
// whole-rune increments; a rune's power value may over-satisfy the
// remainder.
func CalculatePayment(cost *Cost, channeled []*Rune) *PaymentResult {
	if cost == nil || cost.IsFree() {
		return &PaymentResult{Success: true, Plan: &PaymentPlan{}}
	}

	untapped := make([]*Rune, 0, len(channeled))
	for _, r := range channeled {
		if !r.Tapped {
			untapped = append(untapped, r)
		}
	}

	demanded := func(d Domain) bool { return cost.Power[d] > 0 }

	// Reserve runes for the energy requirement in preference-tier order.
	reserved := make([]*Rune, 0, len(untapped))
	reservedSet := make(map[string]bool)
	energyNeed := cost.Energy

	for _, tier := range []func(*Rune) bool{
		func(r *Rune) bool { return r.Domain != DomainNone && demanded(r.Domain) },
		func(r *Rune) bool { return r.Domain == DomainNone },
		func(r *Rune) bool { return true },
	} {
		for _, r := range untapped {
			if energyNeed <= 0 {
				break
			}
			if reservedSet[r.ID] || r.Energy <= 0 || !tier(r) {
				continue
			}
			reserved = append(reserved, r)
			reservedSet[r.ID] = true
			energyNeed -= r.Energy
		}
	}

	if energyNeed > 0 {
		return &PaymentResult{
			Success: false,
			Reason:  fmt.Sprintf("insufficient energy: short by %d", energyNeed),
		}
	}

	// Satisfy each domain demand. Iterate AllDomains so the selection is
	// deterministic regardless of map order.
	spentForPower := make(map[string]bool)
	powerIDs := make([]string, 0)

	consume := func(need *int, pick func(*Rune) bool, pool []*Rune) {
		for _, r := range pool {
			if *need <= 0 {
				return
			}
			if spentForPower[r.ID] || r.Power <= 0 || !pick(r) {
				continue
			}
			spentForPower[r.ID] = true
			powerIDs = append(powerIDs, r.ID)
			*need -= r.Power
		}
	}

	for _, d := range AllDomains {
		need := cost.Power[d]
		if need <= 0 {
			continue
		}
		domain := d

		// Reserved energy runes first: matching domain, then domain-less.
		consume(&need, func(r *Rune) bool { return r.Domain == domain }, reserved)
		consume(&need, func(r *Rune) bool { return r.Domain == DomainNone }, reserved)

		// Additional untapped runes, even ones skipped for energy.
		additional := make([]*Rune, 0, len(untapped))
		for _, r := range untapped {
			if !reservedSet[r.ID] {
				additional = append(additional, r)
			}
		}
		consume(&need, func(r *Rune) bool { return r.Domain == domain }, additional)
		consume(&need, func(r *Rune) bool { return r.Domain == DomainNone }, additional)

		if need > 0 {
			return &PaymentResult{
				Success: false,
				Reason:  fmt.Sprintf("insufficient %s power: short by %d", domain, need),
			}
		}
	}

	plan := &PaymentPlan{PowerRuneIDs: powerIDs}
	for _, r := range reserved {
		plan.EnergyRuneIDs = append(plan.EnergyRuneIDs, r.ID)
	}
	return &PaymentResult{Success: true, Plan: plan}
}

// ExecutePayment commits a payment plan against the channeled runes.
// Energy-only selections are tapped in place; power selections are removed
// from play and returned as recycled so the caller can push them back onto
// the rune deck. The returned remaining slice preserves channeled order.
func ExecutePayment(plan *PaymentPlan, channeled []*Rune) ([]*Rune, []*Rune, error) {
	if plan == nil {
		return channeled, nil, fmt.Errorf("payment plan is nil")
	}

	byID := make(map[string]*Rune, len(channeled))
	for _, r := range channeled {
		byID[r.ID] = r
	}

	for _, id := range append(append([]string{}, plan.EnergyRuneIDs...), plan.PowerRuneIDs...) {
		r, ok := byID[id]
		if !ok {
			return channeled, nil, fmt.Errorf("payment references unknown rune %s", id)
		}
		if r.Tapped {
			return channeled, nil, fmt.Errorf("payment references tapped rune %s", id)
		}
	}

	spent := make(map[string]bool, len(plan.PowerRuneIDs))
	for _, id := range plan.PowerRuneIDs {
		spent[id] = true
	}

	// Tap energy-only selections. Runes spent for power are recycled
	// below instead.
	for _, id := range plan.EnergyRuneIDs {
		if !spent[id] {
			byID[id].Tapped = true
		}
	}

	remaining := make([]*Rune, 0, len(channeled))
	recycled := make([]*Rune, 0, len(plan.PowerRuneIDs))
	for _, r := range channeled {
		if spent[r.ID] {
			r.Tapped = false
			recycled = append(recycled, r)
			continue
		}
		remaining = append(remaining, r)
	}

	return remaining, recycled, nil
}

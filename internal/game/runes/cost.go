package runes

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Domain represents one of the six power domains a rune can belong to.
type Domain string

const (
	DomainFury  Domain = "FURY"
	DomainCalm  Domain = "CALM"
	DomainMind  Domain = "MIND"
	DomainBody  Domain = "BODY"
	DomainOrder Domain = "ORDER"
	DomainChaos Domain = "CHAOS"
	// DomainNone marks a domain-less rune. Domain-less runes can pay
	// power of any domain.
	DomainNone Domain = ""
)

// domainSymbols maps cost symbols to domains.
var domainSymbols = map[string]Domain{
	"F": DomainFury,
	"C": DomainCalm,
	"M": DomainMind,
	"B": DomainBody,
	"O": DomainOrder,
	"K": DomainChaos,
}

// symbolForDomain is the inverse of domainSymbols, used by String().
var symbolForDomain = map[Domain]string{
	DomainFury:  "F",
	DomainCalm:  "C",
	DomainMind:  "M",
	DomainBody:  "B",
	DomainOrder: "O",
	DomainChaos: "K",
}

// AllDomains lists every concrete domain in a stable order.
var AllDomains = []Domain{DomainFury, DomainCalm, DomainMind, DomainBody, DomainOrder, DomainChaos}

// Cost represents the price of playing a card: a fungible energy amount
// plus per-domain power requirements.
type Cost struct {
	Energy int
	Power  map[Domain]int
}

// NewCost creates an empty cost.
func NewCost() *Cost {
	return &Cost{Power: make(map[Domain]int)}
}

// ParseCost parses a cost string (e.g., "{2}{F}", "{1}{F}{F}", "{3}").
// Numeric symbols add to the energy requirement, letter symbols add one
// power of the matching domain.
func ParseCost(costStr string) (*Cost, error) {
	cost := NewCost()
	if costStr == "" {
		return cost, nil
	}

	pattern := regexp.MustCompile(`\{([^}]+)\}`)
	matches := pattern.FindAllStringSubmatch(costStr, -1)

	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(match[1]))

		if domain, ok := domainSymbols[symbol]; ok {
			cost.Power[domain]++
			continue
		}
		if num, err := strconv.Atoi(symbol); err == nil {
			cost.Energy += num
			continue
		}
		return nil, fmt.Errorf("unknown cost symbol: {%s}", symbol)
	}

	return cost, nil
}

// String returns the canonical cost string. Power symbols are emitted in
// a stable domain order so equal costs always render identically.
func (c *Cost) String() string {
	var parts []string

	if c.Energy > 0 {
		parts = append(parts, fmt.Sprintf("{%d}", c.Energy))
	}

	domains := make([]Domain, 0, len(c.Power))
	for d := range c.Power {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	for _, d := range domains {
		for i := 0; i < c.Power[d]; i++ {
			parts = append(parts, fmt.Sprintf("{%s}", symbolForDomain[d]))
		}
	}

	if len(parts) == 0 {
		return "{0}"
	}
	return strings.Join(parts, "")
}

// TotalPower returns the summed power requirement across all domains.
func (c *Cost) TotalPower() int {
	total := 0
	for _, n := range c.Power {
		total += n
	}
	return total
}

// IsFree reports whether the cost requires nothing at all.
func (c *Cost) IsFree() bool {
	return c.Energy == 0 && c.TotalPower() == 0
}

// Copy returns a deep copy of the cost.
func (c *Cost) Copy() *Cost {
	copied := &Cost{Energy: c.Energy, Power: make(map[Domain]int, len(c.Power))}
	for d, n := range c.Power {
		copied.Power[d] = n
	}
	return copied
}

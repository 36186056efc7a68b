package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Resource type codes. ResourceUnknown counts cards whose type the log does
// not reveal (resources seen only from another player's perspective).
const (
	ResourceClay    = 1
	ResourceOre     = 2
	ResourceSheep   = 3
	ResourceWheat   = 4
	ResourceWood    = 5
	ResourceUnknown = 6

	ResourceMin = ResourceClay
	ResourceMax = ResourceUnknown
)

var resourceNames = [ResourceMax + 1]string{"", "clay", "ore", "sheep", "wheat", "wood", "unknown"}

// ResourceName returns the lowercase name for a resource type code, or
// "res<n>" for codes outside the known range.
func ResourceName(resType int) string {
	if resType >= ResourceMin && resType <= ResourceMax {
		return resourceNames[resType]
	}
	return "res" + strconv.Itoa(resType)
}

// Knowledge classifies how completely a ResourceSet's contents are known.
type Knowledge int

const (
	// KnowledgeFull means every counted card has a known type.
	KnowledgeFull Knowledge = iota
	// KnowledgePartial means some cards are typed and some are not.
	KnowledgePartial
	// KnowledgeUnknown means only the total is known.
	KnowledgeUnknown
)

func (k Knowledge) String() string {
	switch k {
	case KnowledgeFull:
		return "full"
	case KnowledgePartial:
		return "partial"
	case KnowledgeUnknown:
		return "unknown"
	default:
		return "knowledge?"
	}
}

// ResourceSet is a multiset of resource cards. Untyped cards are tracked
// separately so callers must check Knowledge() before treating the typed
// counts as the whole picture.
type ResourceSet struct {
	amounts [ResourceMax + 1]int
}

// NewResourceSet builds a set from per-type counts in code order
// (clay, ore, sheep, wheat, wood, unknown). Missing trailing counts are zero.
func NewResourceSet(counts ...int) ResourceSet {
	var rs ResourceSet
	for i, n := range counts {
		if t := ResourceMin + i; t <= ResourceMax {
			rs.amounts[t] = n
		}
	}
	return rs
}

// Amount returns the count for one resource type code.
func (rs ResourceSet) Amount(resType int) int {
	if resType < ResourceMin || resType > ResourceMax {
		return 0
	}
	return rs.amounts[resType]
}

// Add adds amount cards of resType. Out-of-range types count as unknown.
func (rs *ResourceSet) Add(resType, amount int) {
	if resType < ResourceMin || resType > ResourceMax {
		resType = ResourceUnknown
	}
	rs.amounts[resType] += amount
}

// Total counts all cards, typed and untyped.
func (rs ResourceSet) Total() int {
	n := 0
	for _, v := range rs.amounts {
		n += v
	}
	return n
}

// KnownTotal counts only the typed cards.
func (rs ResourceSet) KnownTotal() int {
	return rs.Total() - rs.amounts[ResourceUnknown]
}

// UnknownCount returns the number of untyped cards.
func (rs ResourceSet) UnknownCount() int {
	return rs.amounts[ResourceUnknown]
}

// IsEmpty reports whether the set holds no cards at all.
func (rs ResourceSet) IsEmpty() bool {
	return rs.Total() == 0
}

// Knowledge reports whether the set's contents are fully typed, partially
// typed, or untyped. An empty set is fully known.
func (rs ResourceSet) Knowledge() Knowledge {
	unk := rs.amounts[ResourceUnknown]
	switch {
	case unk == 0:
		return KnowledgeFull
	case unk == rs.Total():
		return KnowledgeUnknown
	default:
		return KnowledgePartial
	}
}

// String renders the set as "clay=0;ore=1;sheep=0;wheat=2;wood=0;unknown=0".
func (rs ResourceSet) String() string {
	var b strings.Builder
	for t := ResourceMin; t <= ResourceMax; t++ {
		if t > ResourceMin {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%s=%d", resourceNames[t], rs.amounts[t])
	}
	return b.String()
}

// ParseResourceSet parses the String() encoding.
func ParseResourceSet(s string) (ResourceSet, error) {
	var rs ResourceSet
	if s == "" {
		return rs, nil
	}
	for _, part := range strings.Split(s, ";") {
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			return ResourceSet{}, fmt.Errorf("resource set: bad element %q", part)
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return ResourceSet{}, fmt.Errorf("resource set: bad count in %q: %w", part, err)
		}
		found := false
		for t := ResourceMin; t <= ResourceMax; t++ {
			if resourceNames[t] == name {
				rs.amounts[t] = n
				found = true
				break
			}
		}
		if !found {
			return ResourceSet{}, fmt.Errorf("resource set: unknown resource %q", name)
		}
	}
	return rs, nil
}

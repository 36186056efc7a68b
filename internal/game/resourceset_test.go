package game

import "testing"

func TestResourceSetCounts(t *testing.T) {
	rs := NewResourceSet(1, 0, 2)
	rs.Add(ResourceWheat, 3)
	rs.Add(99, 2) // out-of-range types land in unknown

	if got := rs.Amount(ResourceClay); got != 1 {
		t.Errorf("clay = %d, want 1", got)
	}
	if got := rs.Amount(ResourceWheat); got != 3 {
		t.Errorf("wheat = %d, want 3", got)
	}
	if got := rs.Amount(99); got != 0 {
		t.Errorf("Amount(99) = %d, want 0", got)
	}
	if rs.Total() != 8 || rs.KnownTotal() != 6 || rs.UnknownCount() != 2 {
		t.Errorf("totals = %d/%d/%d, want 8/6/2", rs.Total(), rs.KnownTotal(), rs.UnknownCount())
	}
	if rs.IsEmpty() {
		t.Error("IsEmpty on a non-empty set")
	}
	if !(ResourceSet{}).IsEmpty() {
		t.Error("zero set not empty")
	}
}

func TestResourceSetKnowledge(t *testing.T) {
	tests := []struct {
		rs   ResourceSet
		want Knowledge
	}{
		{NewResourceSet(), KnowledgeFull},
		{NewResourceSet(1, 2), KnowledgeFull},
		{NewResourceSet(1, 0, 0, 0, 0, 2), KnowledgePartial},
		{NewResourceSet(0, 0, 0, 0, 0, 3), KnowledgeUnknown},
	}
	for _, tt := range tests {
		if got := tt.rs.Knowledge(); got != tt.want {
			t.Errorf("%v.Knowledge() = %v, want %v", tt.rs, got, tt.want)
		}
	}
}

func TestResourceSetStringRoundTrip(t *testing.T) {
	rs := NewResourceSet(0, 1, 0, 2, 0, 1)
	s := rs.String()
	if s != "clay=0;ore=1;sheep=0;wheat=2;wood=0;unknown=1" {
		t.Errorf("String() = %q", s)
	}
	got, err := ParseResourceSet(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != rs {
		t.Errorf("round trip = %v, want %v", got, rs)
	}

	empty, err := ParseResourceSet("")
	if err != nil || !empty.IsEmpty() {
		t.Errorf("ParseResourceSet(\"\") = %v, %v", empty, err)
	}
}

func TestParseResourceSetErrors(t *testing.T) {
	for _, s := range []string{"clay", "clay=x", "gold=1"} {
		if _, err := ParseResourceSet(s); err == nil {
			t.Errorf("ParseResourceSet(%q) accepted bad input", s)
		}
	}
}

func TestResourceName(t *testing.T) {
	if got := ResourceName(ResourceSheep); got != "sheep" {
		t.Errorf("ResourceName(sheep) = %q", got)
	}
	if got := ResourceName(42); got != "res42" {
		t.Errorf("ResourceName(42) = %q", got)
	}
}

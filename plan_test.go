package fheregex

import (
	"testing"
)

func mustPlan(t *testing.T, pattern string, length int) *Plan {
	t.Helper()
	plan, err := MustCompile(pattern).Plan(length)
	if err != nil {
		t.Fatalf("Plan(%d) for %s failed: %v", length, pattern, err)
	}
	return plan
}

func variantKeys(p *Plan) []string {
	keys := make([]string, len(p.Variants))
	for i, v := range p.Variants {
		keys[i] = v.Key()
	}
	return keys
}

// TestPruningAnchoredPlus checks the central pruning property: with
// both anchors fixed, only repeat counts whose total length equals the
// content length survive. /^a+b$/ on length-3 content leaves exactly
// one variant, aab.
func TestPruningAnchoredPlus(t *testing.T) {
	plan := mustPlan(t, "/^a+b$/", 3)
	if len(plan.Variants) != 1 {
		t.Fatalf("variants = %d, want 1 (got %v)", len(plan.Variants), variantKeys(plan))
	}
	want := "eq(a)@0&eq(a)@1&eq(b)@2"
	if got := plan.Variants[0].Key(); got != want {
		t.Errorf("variant = %s, want %s", got, want)
	}
	if len(plan.Atoms) != 3 {
		t.Errorf("distinct atoms = %d, want 3", len(plan.Atoms))
	}
}

// TestPruningImpossibleLength checks that a fixed-width anchored
// pattern wider than the content leaves no variants at all.
func TestPruningImpossibleLength(t *testing.T) {
	plan := mustPlan(t, "/^abcde$/", 3)
	if len(plan.Variants) != 0 {
		t.Fatalf("variants = %d, want 0 (got %v)", len(plan.Variants), variantKeys(plan))
	}
	if len(plan.Atoms) != 0 {
		t.Errorf("distinct atoms = %d, want 0", len(plan.Atoms))
	}
	if plan.Pruned == 0 {
		t.Errorf("Pruned = 0, want > 0")
	}
}

// TestAtomDeduplication checks that structurally repeated comparisons
// collapse: /^a?ab/ compares position 0 against a in both variants,
// but the comparison appears once in the deduplicated set.
func TestAtomDeduplication(t *testing.T) {
	plan := mustPlan(t, "/^a?ab/", 3)

	wantVariants := []string{
		"eq(a)@0&eq(b)@1",
		"eq(a)@0&eq(a)@1&eq(b)@2",
	}
	got := variantKeys(plan)
	if len(got) != len(wantVariants) {
		t.Fatalf("variants = %v, want %v", got, wantVariants)
	}
	for i := range wantVariants {
		if got[i] != wantVariants[i] {
			t.Errorf("variant %d = %s, want %s", i, got[i], wantVariants[i])
		}
	}

	naive := 0
	for _, v := range plan.Variants {
		naive += len(v.Atoms)
	}
	if len(plan.Atoms) >= naive {
		t.Errorf("distinct atoms = %d, not less than naive count %d", len(plan.Atoms), naive)
	}
	if len(plan.Atoms) != 4 {
		t.Errorf("distinct atoms = %d, want 4", len(plan.Atoms))
	}
}

// TestContainsSemantics checks that an unanchored pattern is tried at
// every feasible start offset, in ascending order.
func TestContainsSemantics(t *testing.T) {
	plan := mustPlan(t, "/ab/", 3)
	want := []string{
		"eq(a)@0&eq(b)@1",
		"eq(a)@1&eq(b)@2",
	}
	got := variantKeys(plan)
	if len(got) != len(want) {
		t.Fatalf("variants = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("variant %d = %s, want %s", i, got[i], want[i])
		}
	}
}

// TestUnboundedQuantifierCap checks that * is capped at the remaining
// content length and that the zero-repeat variant is empty.
func TestUnboundedQuantifierCap(t *testing.T) {
	plan := mustPlan(t, "/a*/", 2)
	want := []string{
		"", // zero repeats: matches unconditionally
		"eq(a)@0",
		"eq(a)@0&eq(a)@1",
		"eq(a)@1",
	}
	got := variantKeys(plan)
	if len(got) != len(want) {
		t.Fatalf("variants = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("variant %d = %q, want %q", i, got[i], want[i])
		}
	}
	if !plan.HasEmptyVariant() {
		t.Errorf("HasEmptyVariant() = false, want true")
	}
}

// TestPlanDeterminism checks that re-planning yields the identical
// sequence.
func TestPlanDeterminism(t *testing.T) {
	patterns := []string{"/^a+b$/", "/a|b|c/", "/(ab)*c/", "/[a-d]{1,3}x?/i"}
	for _, pattern := range patterns {
		a := variantKeys(mustPlan(t, pattern, 5))
		b := variantKeys(mustPlan(t, pattern, 5))
		if len(a) != len(b) {
			t.Fatalf("%s: replanning changed variant count: %d vs %d", pattern, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s: variant %d differs: %s vs %s", pattern, i, a[i], b[i])
			}
		}
	}
}

// TestMisplacedAnchorsPrune checks that anchors in unsatisfiable
// positions prune everything.
func TestMisplacedAnchorsPrune(t *testing.T) {
	for _, pattern := range []string{"/a^b/", "/a$b/"} {
		plan := mustPlan(t, pattern, 4)
		if len(plan.Variants) != 0 {
			t.Errorf("%s: variants = %d, want 0", pattern, len(plan.Variants))
		}
	}
}

// TestDescriptorCanonicalization checks the cache-key rules: folding
// is dropped where it cannot matter, single-byte classes collapse to
// literal comparisons, and class ranges are sorted and merged.
func TestDescriptorCanonicalization(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"/a/i", "eq(a,i)"},
		{"/a/", "eq(a)"},
		{"/1/i", "eq(1)"},       // fold on a digit changes nothing
		{"/[a]/", "eq(a)"},      // singleton class is a literal circuit
		{"/[a]/i", "eq(a,i)"},   // and keeps the fold
		{"/[ab-c]/", "cls(a-c)"}, // adjacent ranges merge
		{"/[c-da-b]/", "cls(a-d)"},
		{"/[^a-c]/", "cls(a-c,neg)"},
		{"/[0-9]/i", "cls(0-9)"}, // fold dropped: no letters in ranges
		{"/[a-f]/i", "cls(a-f,i)"},
	}
	for _, tt := range tests {
		plan := mustPlan(t, tt.pattern, 1)
		if len(plan.Atoms) != 1 {
			t.Fatalf("%s: distinct atoms = %d, want 1", tt.pattern, len(plan.Atoms))
		}
		if got := plan.Atoms[0].Desc.Key(); got != tt.want {
			t.Errorf("%s: descriptor key = %s, want %s", tt.pattern, got, tt.want)
		}
	}
}

// TestAnyCharNeedsNoComparison checks that . consumes a position
// without requesting a comparison.
func TestAnyCharNeedsNoComparison(t *testing.T) {
	plan := mustPlan(t, "/^a.b$/", 3)
	if len(plan.Variants) != 1 {
		t.Fatalf("variants = %d, want 1", len(plan.Variants))
	}
	want := "eq(a)@0&eq(b)@2"
	if got := plan.Variants[0].Key(); got != want {
		t.Errorf("variant = %s, want %s", got, want)
	}
}

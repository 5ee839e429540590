package trial

import (
	"math/rand/v2"
	"testing"

	"github.com/peterachavez/focus-flicker-beta-f/internal/stimulus"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(3, 17))
}

func TestGenerateMatch_Properties(t *testing.T) {
	rng := testRNG()
	rules := []stimulus.Dimension{stimulus.DimColor, stimulus.DimShape, stimulus.DimCount}

	for i := 0; i < 1500; i++ {
		rule := rules[i%len(rules)]
		tr := GenerateMatch(rng, rule, 1)

		if len(tr.Options) != 3 {
			t.Fatalf("expected 3 options, got %d", len(tr.Options))
		}

		// Exactly one option matches the target on the ruled dimension.
		ruleMatches := 0
		for _, o := range tr.Options {
			if o.Matches(tr.Target, rule) {
				ruleMatches++
			}
		}
		if ruleMatches != 1 {
			t.Fatalf("expected exactly 1 rule match, got %d (target %v, options %v)", ruleMatches, tr.Target, tr.Options)
		}

		// The correct option shares exactly the ruled dimension.
		correct := tr.Options[tr.CorrectIndex]
		if !correct.Matches(tr.Target, rule) {
			t.Fatalf("correct option does not match rule %v: target %v, correct %v", rule, tr.Target, correct)
		}
		if correct.SharedDimensions(tr.Target) != 1 {
			t.Fatalf("correct option shares %d dimensions, want 1", correct.SharedDimensions(tr.Target))
		}

		// Distractors share zero dimensions with the target.
		for j, o := range tr.Options {
			if j == tr.CorrectIndex {
				continue
			}
			if o.SharedDimensions(tr.Target) != 0 {
				t.Fatalf("distractor shares dimensions with target: %v vs %v", o, tr.Target)
			}
		}
	}
}

func TestGenerateMatch_CorrectIndexVaries(t *testing.T) {
	rng := testRNG()
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		tr := GenerateMatch(rng, stimulus.DimColor, 1)
		seen[tr.CorrectIndex] = true
	}
	if len(seen) != 3 {
		t.Errorf("shuffle never placed the correct option at all positions: %v", seen)
	}
}

func TestGenerateFlicker_Change(t *testing.T) {
	rng := testRNG()
	for i := 0; i < 1000; i++ {
		tr := GenerateFlicker(rng, true, 1)
		if !tr.HasChange {
			t.Fatal("HasChange not set")
		}
		if tr.Base.SharedDimensions(tr.Altered) != 2 {
			t.Fatalf("expected exactly one dimension to differ: base %v, altered %v", tr.Base, tr.Altered)
		}
	}
}

func TestGenerateFlicker_NoChange(t *testing.T) {
	rng := testRNG()
	for i := 0; i < 1000; i++ {
		tr := GenerateFlicker(rng, false, 2)
		if tr.HasChange {
			t.Fatal("HasChange set on no-change trial")
		}
		if tr.Base != tr.Altered {
			t.Fatalf("stimuli differ on no-change trial: %v vs %v", tr.Base, tr.Altered)
		}
		if tr.Block() != 2 {
			t.Errorf("Block() = %d, want 2", tr.Block())
		}
	}
}

func TestShiftAll_NeverSharesDimension(t *testing.T) {
	// The fallback construction must be valid for every possible target.
	rng := testRNG()
	for i := 0; i < 500; i++ {
		target := stimulus.Random(rng)
		for _, offset := range []int{1, 2} {
			d := shiftAll(target, offset)
			if d.SharedDimensions(target) != 0 {
				t.Fatalf("fallback distractor shares a dimension: target %v, offset %d, got %v", target, offset, d)
			}
		}
	}
}

func TestShiftAll_DistinctOffsetsDistinctCards(t *testing.T) {
	target := stimulus.Stimulus{Color: stimulus.Red, Shape: stimulus.Circle, Count: 1}
	if shiftAll(target, 1) == shiftAll(target, 2) {
		t.Error("fallback offsets produced identical distractors")
	}
}

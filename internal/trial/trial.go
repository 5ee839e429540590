// Package trial generates trial specifications for both task variants.
//
// The match variant ("Flex Sort") presents a target card and three
// options, exactly one of which shares the ruled dimension with the
// target. The flicker variant ("Focus Flicker") presents a base card
// and an altered card that either matches it exactly or differs in
// exactly one dimension.
package trial

import (
	"github.com/peterachavez/focus-flicker-beta-f/internal/stimulus"
)

// maxDistractorAttempts caps rejection sampling before the
// deterministic fallback constructs a distractor from complement sets.
const maxDistractorAttempts = 60

// RNG extends the stimulus randomness source with shuffling, needed to
// randomize option order. math/rand/v2's *Rand satisfies it.
type RNG interface {
	stimulus.RNG
	Shuffle(n int, swap func(i, j int))
}

// Spec is implemented by both trial variants.
type Spec interface {
	// Block is the 1-based block index the trial belongs to.
	Block() int
}

// MatchTrial is one trial of the match variant. CorrectIndex is fixed
// at generation time and never recomputed.
type MatchTrial struct {
	Target       stimulus.Stimulus
	Options      []stimulus.Stimulus
	CorrectIndex int
	Rule         stimulus.Dimension
	BlockIndex   int
}

func (t MatchTrial) Block() int { return t.BlockIndex }

// FlickerTrial is one trial of the change-detection variant.
type FlickerTrial struct {
	Base       stimulus.Stimulus
	Altered    stimulus.Stimulus
	HasChange  bool
	BlockIndex int
}

func (t FlickerTrial) Block() int { return t.BlockIndex }

// GenerateMatch produces a match trial for the given rule: a random
// target, one option sharing exactly the ruled dimension with the
// target, and two distractors sharing no dimension with it. Options
// are shuffled after construction.
func GenerateMatch(rng RNG, rule stimulus.Dimension, block int) MatchTrial {
	target := stimulus.Random(rng)

	correct := matchOnly(rng, target, rule)
	d1 := distractor(rng, target, 1)
	d2 := distractor(rng, target, 2)

	options := []stimulus.Stimulus{correct, d1, d2}
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	// Relocate the correct option after the shuffle. Distractors share
	// zero dimensions with the target, so only the correct option can
	// match it on the ruled dimension.
	idx := 0
	for i, o := range options {
		if o == correct {
			idx = i
			break
		}
	}

	return MatchTrial{
		Target:       target,
		Options:      options,
		CorrectIndex: idx,
		Rule:         rule,
		BlockIndex:   block,
	}
}

// GenerateFlicker produces a change-detection trial. When hasChange is
// true the altered card differs from the base in exactly one dimension;
// otherwise the two are identical.
func GenerateFlicker(rng stimulus.RNG, hasChange bool, block int) FlickerTrial {
	base := stimulus.Random(rng)
	altered := base
	if hasChange {
		altered = stimulus.MutateOne(rng, base)
	}
	return FlickerTrial{
		Base:       base,
		Altered:    altered,
		HasChange:  hasChange,
		BlockIndex: block,
	}
}

// matchOnly builds an option sharing exactly the ruled dimension with
// the target: the ruled value is copied, the other two are mutated to
// different values.
func matchOnly(rng stimulus.RNG, target stimulus.Stimulus, rule stimulus.Dimension) stimulus.Stimulus {
	out := target
	for d := stimulus.DimColor; d <= stimulus.DimCount; d++ {
		if d == rule {
			continue
		}
		out = stimulus.MutateDimension(rng, out, d)
	}
	return out
}

// distractor builds an option sharing no dimension with the target.
// Rejection sampling runs up to maxDistractorAttempts; the fallback
// shifts every dimension by a fixed non-zero offset, which cannot
// collide with the target on any dimension. Distinct offsets keep the
// two fallback distractors from duplicating each other.
func distractor(rng stimulus.RNG, target stimulus.Stimulus, offset int) stimulus.Stimulus {
	return stimulus.GenerateConstrained(
		func() stimulus.Stimulus { return stimulus.Random(rng) },
		func(s stimulus.Stimulus) bool { return s.SharedDimensions(target) == 0 },
		maxDistractorAttempts,
		func() stimulus.Stimulus { return shiftAll(target, offset) },
	)
}

// shiftAll cycles each dimension forward by offset within its domain.
// With offset in 1..3 every dimension lands on a different value.
func shiftAll(s stimulus.Stimulus, offset int) stimulus.Stimulus {
	return stimulus.Stimulus{
		Color: stimulus.Color((int(s.Color) + offset) % 4),
		Shape: stimulus.Shape((int(s.Shape) + offset) % 4),
		Count: stimulus.MinCount + (s.Count-stimulus.MinCount+offset)%(stimulus.MaxCount-stimulus.MinCount+1),
	}
}

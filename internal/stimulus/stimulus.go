package stimulus

import "fmt"

// Color is one of the four card colors.
type Color int

const (
	Red Color = iota
	Blue
	Green
	Yellow

	numColors
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	default:
		return "unknown"
	}
}

// Shape is one of the four card shapes.
type Shape int

const (
	Circle Shape = iota
	Square
	Triangle
	Star

	numShapes
)

func (s Shape) String() string {
	switch s {
	case Circle:
		return "circle"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Star:
		return "star"
	default:
		return "unknown"
	}
}

// Count bounds for the number of symbols on a card.
const (
	MinCount = 1
	MaxCount = 4
)

// Dimension identifies one of the three stimulus dimensions.
type Dimension int

const (
	DimColor Dimension = iota
	DimShape
	DimCount

	numDimensions
)

func (d Dimension) String() string {
	switch d {
	case DimColor:
		return "color"
	case DimShape:
		return "shape"
	case DimCount:
		return "count"
	default:
		return "unknown"
	}
}

// ParseDimension converts a dimension name to a Dimension.
func ParseDimension(s string) (Dimension, error) {
	switch s {
	case "color":
		return DimColor, nil
	case "shape":
		return DimShape, nil
	case "count", "number":
		return DimCount, nil
	default:
		return 0, fmt.Errorf("unknown dimension %q", s)
	}
}

// Stimulus is an immutable card: a colored shape repeated 1-4 times.
// Two stimuli compare equal when all three dimensions match.
type Stimulus struct {
	Color Color
	Shape Shape
	Count int
}

func (s Stimulus) String() string {
	return fmt.Sprintf("%d %s %s", s.Count, s.Color, s.Shape)
}

// Matches reports whether a and b agree on dimension d.
func (s Stimulus) Matches(other Stimulus, d Dimension) bool {
	switch d {
	case DimColor:
		return s.Color == other.Color
	case DimShape:
		return s.Shape == other.Shape
	case DimCount:
		return s.Count == other.Count
	default:
		return false
	}
}

// SharedDimensions counts the dimensions on which s and other agree.
func (s Stimulus) SharedDimensions(other Stimulus) int {
	n := 0
	for d := Dimension(0); d < numDimensions; d++ {
		if s.Matches(other, d) {
			n++
		}
	}
	return n
}

// RNG is the randomness source used by generation. math/rand/v2's *Rand
// satisfies it; tests can seed deterministically.
type RNG interface {
	IntN(n int) int
}

// Random returns a uniformly random stimulus.
func Random(rng RNG) Stimulus {
	return Stimulus{
		Color: Color(rng.IntN(int(numColors))),
		Shape: Shape(rng.IntN(int(numShapes))),
		Count: MinCount + rng.IntN(MaxCount-MinCount+1),
	}
}

// MutateOne returns a copy of base differing in exactly one randomly
// chosen dimension. The new value is drawn uniformly from the remaining
// legal values for that dimension.
func MutateOne(rng RNG, base Stimulus) Stimulus {
	return MutateDimension(rng, base, Dimension(rng.IntN(int(numDimensions))))
}

// MutateDimension returns a copy of base with dimension d changed to a
// different value, drawn uniformly from the remaining legal values.
func MutateDimension(rng RNG, base Stimulus, d Dimension) Stimulus {
	out := base
	switch d {
	case DimColor:
		out.Color = otherColor(rng, base.Color)
	case DimShape:
		out.Shape = otherShape(rng, base.Shape)
	case DimCount:
		out.Count = otherCount(rng, base.Count)
	}
	return out
}

// otherColor draws a color different from c.
func otherColor(rng RNG, c Color) Color {
	n := Color(rng.IntN(int(numColors) - 1))
	if n >= c {
		n++
	}
	return n
}

// otherShape draws a shape different from s.
func otherShape(rng RNG, s Shape) Shape {
	n := Shape(rng.IntN(int(numShapes) - 1))
	if n >= s {
		n++
	}
	return n
}

// otherCount draws a count different from c.
func otherCount(rng RNG, c int) int {
	n := MinCount + rng.IntN(MaxCount-MinCount)
	if n >= c {
		n++
	}
	return n
}

// GenerateConstrained draws candidates from gen until valid accepts one,
// up to maxAttempts. After that it returns fallback(), which callers
// must guarantee satisfies the constraint by construction.
func GenerateConstrained(gen func() Stimulus, valid func(Stimulus) bool, maxAttempts int, fallback func() Stimulus) Stimulus {
	for i := 0; i < maxAttempts; i++ {
		if s := gen(); valid(s) {
			return s
		}
	}
	return fallback()
}

package popup

import (
	"math"
	"strings"
)

// MaxStars is the number of symbols every rating renders.
const MaxStars = 5

const (
	glyphFull  = "★"
	glyphHalf  = "⯨"
	glyphEmpty = "☆"
)

// Stars partitions a rating into full, half and empty symbols.
type Stars struct {
	Full  int `json:"full"`
	Half  int `json:"half"`
	Empty int `json:"empty"`
}

// Symbol is one rendered star.
type Symbol struct {
	Kind  string
	Glyph string
}

// StarsFor applies the floor/half rule: floor(r) full stars, one half star
// when the fractional part is at least 0.5, the rest empty. Ratings outside
// [0,5] are clamped and NaN counts as zero.
func StarsFor(rating float64) Stars {
	if math.IsNaN(rating) || rating < 0 {
		rating = 0
	}
	if rating > MaxStars {
		rating = MaxStars
	}

	whole := math.Floor(rating)
	full := int(whole)
	half := 0
	if rating-whole >= 0.5 {
		half = 1
	}
	return Stars{Full: full, Half: half, Empty: MaxStars - full - half}
}

// Symbols lists the stars in display order.
func (s Stars) Symbols() []Symbol {
	out := make([]Symbol, 0, MaxStars)
	for i := 0; i < s.Full; i++ {
		out = append(out, Symbol{Kind: "full", Glyph: glyphFull})
	}
	for i := 0; i < s.Half; i++ {
		out = append(out, Symbol{Kind: "half", Glyph: glyphHalf})
	}
	for i := 0; i < s.Empty; i++ {
		out = append(out, Symbol{Kind: "empty", Glyph: glyphEmpty})
	}
	return out
}

func (s Stars) String() string {
	return strings.Repeat(glyphFull, s.Full) +
		strings.Repeat(glyphHalf, s.Half) +
		strings.Repeat(glyphEmpty, s.Empty)
}

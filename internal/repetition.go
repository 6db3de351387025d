package internal

import (
	"fmt"
	"math"
	"strings"
)

// RepetitionResult describes the most frequent token of a transcript
type RepetitionResult struct {
	Repetitive bool
	Token      string
	// Share is the token's percentage of all tokens, rounded to two decimals
	Share  float64
	Tokens int
}

// CheckRepetition flags text whose most frequent whitespace token exceeds threshold (0..1) of all tokens.
// Whisper tends to loop on silence or music, which shows up as one token dominating the chunk.
func CheckRepetition(text string, threshold float64) (RepetitionResult, error) {
	if threshold < 0 || threshold > 1 || math.IsNaN(threshold) {
		return RepetitionResult{}, fmt.Errorf("%w: repetition threshold %v outside [0, 1]", ErrInvalidArgument, threshold)
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return RepetitionResult{}, nil
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	result := RepetitionResult{Tokens: len(tokens)}
	best := 0
	for _, tok := range tokens {
		// first occurrence wins ties
		if c := counts[tok]; c > best {
			best = c
			result.Token = tok
		}
	}

	result.Share = roundTo(100*float64(best)/float64(len(tokens)), 2)
	result.Repetitive = result.Share > threshold*100
	return result, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

package decoder

import (
	"fmt"
	"math"
)

// Greedy decodes by taking the highest-scoring token of every frame
// independently. It consumes the same row-major score buffer as beam search
// and produces a single uncollapsed per-step path.
func Greedy(data []float32, steps, tokens int) (Output, error) {
	if steps < 0 {
		return Output{}, fmt.Errorf("decoder: negative step count %d", steps)
	}
	if tokens <= 0 {
		return Output{}, fmt.Errorf("decoder: vocabulary size must be positive, got %d", tokens)
	}
	if len(data) < steps*tokens {
		return Output{}, fmt.Errorf("decoder: score buffer holds %d entries, need %d (%d steps x %d tokens)",
			len(data), steps*tokens, steps, tokens)
	}

	out := Output{Tokens: make([]int, steps)}
	for t := 0; t < steps; t++ {
		frame := data[t*tokens : (t+1)*tokens]
		best := argmax(frame)
		if best < 0 {
			return Output{}, ErrNaNScore
		}
		out.Tokens[t] = best
		out.Score += frame[best]
		out.AMScore += frame[best]
	}
	return out, nil
}

// argmax returns the index of the maximum value, or -1 when the slice
// contains a NaN (which has no defined ordering).
func argmax(v []float32) int {
	best := 0
	for i, x := range v {
		if math.IsNaN(float64(x)) {
			return -1
		}
		if x > v[best] {
			best = i
		}
	}
	return best
}

// Collapse reduces a per-step token path to its emitted sequence under CTC
// semantics: blanks are removed and repeats without an intervening blank
// merge into one emission.
func Collapse(path []int, blank int) []int {
	out := make([]int, 0, len(path))
	prev := -1
	for _, tok := range path {
		if tok == blank {
			prev = tok
			continue
		}
		if tok == prev {
			continue
		}
		out = append(out, tok)
		prev = tok
	}
	return out
}

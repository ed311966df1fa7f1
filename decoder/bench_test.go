package decoder

import (
	"math/rand"
	"testing"
)

func benchData(steps, tokens int) []float32 {
	rng := rand.New(rand.NewSource(42))
	data := make([]float32, steps*tokens)
	for i := range data {
		data[i] = rng.Float32()
	}
	return data
}

func BenchmarkBeamSearch(b *testing.B) {
	const (
		steps  = 100
		tokens = 64
	)
	data := benchData(steps, tokens)
	d := NewBeamSearch(Options{
		BeamSize:      25,
		BeamSizeToken: 32,
		BeamThreshold: 25,
	}, tokens-1, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Decode(data, steps, tokens); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBeamSearchWideVocab(b *testing.B) {
	const (
		steps  = 50
		tokens = 4000
	)
	data := benchData(steps, tokens)
	d := NewBeamSearch(Options{
		BeamSize:      10,
		BeamSizeToken: 100,
		BeamThreshold: 25,
	}, tokens-1, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Decode(data, steps, tokens); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGreedy(b *testing.B) {
	const (
		steps  = 100
		tokens = 64
	)
	data := benchData(steps, tokens)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Greedy(data, steps, tokens); err != nil {
			b.Fatal(err)
		}
	}
}

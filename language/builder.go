package language

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// Builder accumulates token sequences and writes an ARPA n-gram model with
// Witten-Bell smoothing.
type Builder struct {
	order    int
	unigrams map[string]int
	bigrams  map[[2]string]int
	trigrams map[[3]string]int
}

// NewBuilder creates a builder for models of the given order (2 or 3).
func NewBuilder(order int) *Builder {
	if order < 2 {
		order = 2
	}
	if order > 3 {
		order = 3
	}
	return &Builder{
		order:    order,
		unigrams: make(map[string]int),
		bigrams:  make(map[[2]string]int),
		trigrams: make(map[[3]string]int),
	}
}

// AddSequence counts the n-grams of one token sequence.
// <s> and </s> are added automatically.
func (b *Builder) AddSequence(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	seq := make([]string, 0, len(tokens)+2)
	seq = append(seq, BOS)
	seq = append(seq, tokens...)
	seq = append(seq, EOS)

	for i, tok := range seq {
		b.unigrams[tok]++
		if i >= 1 {
			b.bigrams[[2]string{seq[i-1], tok}]++
		}
		if b.order >= 3 && i >= 2 {
			b.trigrams[[3]string{seq[i-2], seq[i-1], tok}]++
		}
	}
}

// context aggregates Witten-Bell statistics for one history:
// total is N(h), the token count following h; types is T(h), the number of
// distinct tokens following h.
type context struct {
	total int
	types int
}

// wittenBell returns the discounted probability C / (N(h) + T(h)).
func (c context) wittenBell(count int) float64 {
	return float64(count) / float64(c.total+c.types)
}

// WriteARPA writes the accumulated model in ARPA format (log10 entries).
func (b *Builder) WriteARPA(w io.Writer) error {
	uniTotal := 0
	for _, c := range b.unigrams {
		uniTotal += c
	}
	if uniTotal == 0 {
		return fmt.Errorf("no sequences added")
	}
	uniProb := func(tok string) float64 {
		return float64(b.unigrams[tok]) / float64(uniTotal)
	}

	// Per-history statistics and successor lists.
	biCtx := make(map[string]context)
	biSucc := make(map[string][]string)
	for key, c := range b.bigrams {
		ctx := biCtx[key[0]]
		ctx.total += c
		ctx.types++
		biCtx[key[0]] = ctx
		biSucc[key[0]] = append(biSucc[key[0]], key[1])
	}
	triCtx := make(map[[2]string]context)
	triSucc := make(map[[2]string][]string)
	for key, c := range b.trigrams {
		h := [2]string{key[0], key[1]}
		ctx := triCtx[h]
		ctx.total += c
		ctx.types++
		triCtx[h] = ctx
		triSucc[h] = append(triSucc[h], key[2])
	}

	biProb := func(prev, tok string) float64 {
		if c, ok := b.bigrams[[2]string{prev, tok}]; ok {
			return biCtx[prev].wittenBell(c)
		}
		return uniProb(tok)
	}

	// Backoff weight: leftover discounted mass over leftover lower-order mass.
	backoff := func(sumHigher, sumLower float64) float64 {
		if sumLower >= 1.0 || sumHigher >= 1.0 {
			return 0
		}
		return math.Log10((1.0 - sumHigher) / (1.0 - sumLower))
	}

	type row struct {
		grams      []string
		logProb    float64
		logBackoff float64
	}

	var unis []row
	for tok, count := range b.unigrams {
		r := row{grams: []string{tok}, logProb: math.Log10(float64(count) / float64(uniTotal))}
		if ctx, ok := biCtx[tok]; ok {
			sumBi, sumUni := 0.0, 0.0
			for _, succ := range biSucc[tok] {
				sumBi += ctx.wittenBell(b.bigrams[[2]string{tok, succ}])
				sumUni += uniProb(succ)
			}
			r.logBackoff = backoff(sumBi, sumUni)
		}
		unis = append(unis, r)
	}

	var bis []row
	for key, count := range b.bigrams {
		r := row{
			grams:   []string{key[0], key[1]},
			logProb: math.Log10(biCtx[key[0]].wittenBell(count)),
		}
		if b.order >= 3 {
			if ctx, ok := triCtx[key]; ok {
				sumTri, sumBi := 0.0, 0.0
				for _, succ := range triSucc[key] {
					sumTri += ctx.wittenBell(b.trigrams[[3]string{key[0], key[1], succ}])
					sumBi += biProb(key[1], succ)
				}
				r.logBackoff = backoff(sumTri, sumBi)
			}
		}
		bis = append(bis, r)
	}

	var tris []row
	if b.order >= 3 {
		for key, count := range b.trigrams {
			tris = append(tris, row{
				grams:   []string{key[0], key[1], key[2]},
				logProb: math.Log10(triCtx[[2]string{key[0], key[1]}].wittenBell(count)),
			})
		}
	}

	byGrams := func(rows []row) {
		sort.Slice(rows, func(i, j int) bool {
			a, b := rows[i].grams, rows[j].grams
			for k := range a {
				if a[k] != b[k] {
					return a[k] < b[k]
				}
			}
			return false
		})
	}
	byGrams(unis)
	byGrams(bis)
	byGrams(tris)

	// Emit.
	fmt.Fprintln(w, `\data\`)
	fmt.Fprintf(w, "ngram 1=%d\n", len(unis))
	fmt.Fprintf(w, "ngram 2=%d\n", len(bis))
	if len(tris) > 0 {
		fmt.Fprintf(w, "ngram 3=%d\n", len(tris))
	}
	fmt.Fprintln(w)

	writeSection := func(order int, rows []row) {
		fmt.Fprintf(w, "\\%d-grams:\n", order)
		for _, r := range rows {
			grams := r.grams[0]
			for _, g := range r.grams[1:] {
				grams += " " + g
			}
			if r.logBackoff != 0 {
				fmt.Fprintf(w, "%.6f\t%s\t%.6f\n", r.logProb, grams, r.logBackoff)
			} else {
				fmt.Fprintf(w, "%.6f\t%s\n", r.logProb, grams)
			}
		}
		fmt.Fprintln(w)
	}
	writeSection(1, unis)
	writeSection(2, bis)
	if len(tris) > 0 {
		writeSection(3, tris)
	}

	_, err := fmt.Fprintln(w, `\end\`)
	return err
}

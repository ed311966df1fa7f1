// Package decoder implements CTC beam-search decoding over a per-time-step
// score matrix. The search keeps the top hypotheses per step, collapses
// CTC blank/repeat transitions, and reconstructs token sequences by walking
// parent links through the hypothesis trellis.
package decoder

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ieee0824/ctc-go/internal/mathutil"
	"github.com/ieee0824/ctc-go/internal/selection"
	"github.com/ieee0824/ctc-go/lm"
)

// Options holds beam search parameters.
type Options struct {
	BeamSize      int     // maximum hypotheses kept per time step
	BeamSizeToken int     // maximum distinct tokens considered per time step
	BeamThreshold float32 // hypotheses scoring this far below the step's best are dropped
	LMWeight      float32 // scale applied to language-model contributions
}

// DefaultOptions returns reasonable default parameters.
func DefaultOptions() Options {
	return Options{
		BeamSize:      25,
		BeamSizeToken: 1000,
		BeamThreshold: 25.0,
		LMWeight:      1.0,
	}
}

// Output is one terminal hypothesis. Tokens has one entry per time step;
// it is the raw per-step path, use Collapse to obtain the emitted sequence.
type Output struct {
	Score   float32
	AMScore float32
	LMScore float32
	Tokens  []int
}

// ErrNaNScore is returned when the score matrix contains a NaN, which would
// make the beam ordering undefined.
var ErrNaNScore = errors.New("decoder: NaN in score matrix")

// state is one beam element at one time step. States are owned by their
// trellis row; parent is an index into the previous row, -1 for the root.
type state struct {
	score     float32
	token     int
	prevBlank bool
	amScore   float32
	lmScore   float32
	parent    int
	lmState   *lm.State
}

// BeamSearch decodes score matrices with a fixed configuration. It reuses
// per-decode scratch buffers and is not safe for concurrent use.
type BeamSearch struct {
	opts  Options
	blank int
	model lm.LanguageModel

	candidates []state
	ptrs       []int
	bestScore  float32

	trellis [][]state
}

// NewBeamSearch creates a decoder. blank is the vocabulary index of the CTC
// blank symbol. A nil model falls back to lm.ZeroLM, which leaves scores
// purely acoustic.
func NewBeamSearch(opts Options, blank int, model lm.LanguageModel) *BeamSearch {
	if model == nil {
		model = lm.ZeroLM{}
	}
	return &BeamSearch{opts: opts, blank: blank, model: model}
}

// Decode runs beam search over a row-major score buffer of steps*tokens
// entries (row = time step, column = vocabulary index) and returns one
// Output per surviving final-beam hypothesis, in beam order.
func (d *BeamSearch) Decode(data []float32, steps, tokens int) ([]Output, error) {
	if err := d.validate(data, steps, tokens); err != nil {
		return nil, err
	}
	d.begin(steps)
	d.step(data, steps, tokens)
	d.end()
	return d.hypotheses(steps), nil
}

func (d *BeamSearch) validate(data []float32, steps, tokens int) error {
	if d.opts.BeamSize <= 0 {
		return fmt.Errorf("decoder: BeamSize must be positive, got %d", d.opts.BeamSize)
	}
	if d.opts.BeamSizeToken <= 0 {
		return fmt.Errorf("decoder: BeamSizeToken must be positive, got %d", d.opts.BeamSizeToken)
	}
	if steps < 0 {
		return fmt.Errorf("decoder: negative step count %d", steps)
	}
	if tokens <= 0 {
		return fmt.Errorf("decoder: vocabulary size must be positive, got %d", tokens)
	}
	if len(data) < steps*tokens {
		return fmt.Errorf("decoder: score buffer holds %d entries, need %d (%d steps x %d tokens)",
			len(data), steps*tokens, steps, tokens)
	}
	for _, v := range data[:steps*tokens] {
		if math.IsNaN(float64(v)) {
			return ErrNaNScore
		}
	}
	return nil
}

// begin resets the trellis to a single synthetic root.
func (d *BeamSearch) begin(steps int) {
	d.resetCandidates()
	if cap(d.trellis) < steps+1 {
		d.trellis = make([][]state, 0, steps+1)
	}
	d.trellis = append(d.trellis[:0], []state{{
		score:     0,
		token:     d.blank,
		prevBlank: false,
		parent:    -1,
		lmState:   d.model.Start(),
	}})
}

func (d *BeamSearch) resetCandidates() {
	d.candidates = d.candidates[:0]
	d.ptrs = d.ptrs[:0]
	d.bestScore = -math.MaxFloat32
}

// step expands, prunes and commits one trellis row per time step.
func (d *BeamSearch) step(data []float32, steps, tokens int) {
	targets := make([]int, tokens)
	for i := range targets {
		targets[i] = i
	}
	nTargets := tokens
	if nTargets > d.opts.BeamSizeToken {
		nTargets = d.opts.BeamSizeToken
	}

	for t := 0; t < steps; t++ {
		frame := data[t*tokens : (t+1)*tokens]
		if tokens > d.opts.BeamSizeToken {
			selection.TopK(targets, nTargets, func(a, b int) bool {
				return frame[a] > frame[b]
			})
		}

		d.resetCandidates()
		for pi := range d.trellis[t] {
			prev := &d.trellis[t][pi]
			for _, tok := range targets[:nTargets] {
				amScore := frame[tok]
				cand := state{
					score:   prev.score + amScore,
					token:   tok,
					amScore: prev.amScore + amScore,
					lmScore: prev.lmScore,
					parent:  pi,
					lmState: prev.lmState,
				}
				switch {
				case tok == d.blank:
					cand.prevBlank = true
				case tok == prev.token && !prev.prevBlank:
					// Repeat without a separating blank: the same emission
					// continued, not a new label.
				default:
					// New label; the language model contributes here.
					lmState, lmScore := d.model.Score(prev.lmState, tok, tokens)
					w := d.opts.LMWeight * lmScore
					cand.score += w
					cand.lmScore += w
					cand.lmState = lmState
				}
				d.addCandidate(cand)
			}
		}
		d.commit(t)
	}
}

// addCandidate applies the opportunistic running-max prune. The max only
// grows during generation, so commit re-applies the bound with the final max.
func (d *BeamSearch) addCandidate(c state) {
	if c.score > d.bestScore {
		d.bestScore = c.score
	}
	if c.score >= d.bestScore-d.opts.BeamThreshold {
		d.candidates = append(d.candidates, c)
	}
}

// commit finalizes the candidates of time step t into trellis row t+1:
// authoritative threshold prune, merge of score-equivalent hypotheses, and
// top-BeamSize selection.
func (d *BeamSearch) commit(t int) {
	floor := d.bestScore - d.opts.BeamThreshold
	for i := range d.candidates {
		if d.candidates[i].score >= floor {
			d.ptrs = append(d.ptrs, i)
		}
	}
	if len(d.ptrs) == 0 {
		// Everything pruned; subsequent steps have nothing to expand.
		d.trellis = append(d.trellis, nil)
		return
	}

	// Group candidates representing the same decoded suffix. Descending
	// score within a group, so the first member is the representative and
	// keeps its parent and LM state.
	sort.Slice(d.ptrs, func(x, y int) bool {
		a, b := &d.candidates[d.ptrs[x]], &d.candidates[d.ptrs[y]]
		if a.token != b.token {
			return a.token < b.token
		}
		if a.prevBlank != b.prevBlank {
			return b.prevBlank
		}
		return a.score > b.score
	})

	merged := d.ptrs[:1]
	rep := &d.candidates[d.ptrs[0]]
	for _, p := range d.ptrs[1:] {
		c := &d.candidates[p]
		if c.token == rep.token && c.prevBlank == rep.prevBlank {
			rep.score = mathutil.LogAdd32(rep.score, c.score)
			continue
		}
		merged = append(merged, p)
		rep = c
	}
	d.ptrs = merged

	if len(d.ptrs) > d.opts.BeamSize {
		selection.TopK(d.ptrs, d.opts.BeamSize, func(a, b int) bool {
			return d.candidates[a].score > d.candidates[b].score
		})
		d.ptrs = d.ptrs[:d.opts.BeamSize]
	}

	row := make([]state, len(d.ptrs))
	for i, p := range d.ptrs {
		row[i] = d.candidates[p]
	}
	d.trellis = append(d.trellis, row)
}

// end applies the language model's end-of-sequence contribution to the
// final row. With the zero LM this is a no-op.
func (d *BeamSearch) end() {
	row := d.trellis[len(d.trellis)-1]
	for i := range row {
		lmState, lmScore := d.model.Finish(row[i].lmState)
		w := d.opts.LMWeight * lmScore
		row[i].score += w
		row[i].lmScore += w
		row[i].lmState = lmState
	}
}

// hypotheses backtracks every final-row state into an Output.
func (d *BeamSearch) hypotheses(steps int) []Output {
	final := d.trellis[steps]
	outs := make([]Output, len(final))
	for i := range final {
		hyp := &final[i]
		out := Output{
			Score:   hyp.score,
			AMScore: hyp.amScore,
			LMScore: hyp.lmScore,
			Tokens:  make([]int, steps),
		}
		cur := hyp
		for t := steps - 1; t >= 0; t-- {
			out.Tokens[t] = cur.token
			if cur.parent < 0 {
				break
			}
			cur = &d.trellis[t][cur.parent]
		}
		outs[i] = out
	}
	return outs
}

// Package ctc turns per-time-step score matrices into text hypotheses via
// CTC beam-search decoding, with optional n-gram language-model rescoring.
package ctc

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ieee0824/ctc-go/decoder"
	"github.com/ieee0824/ctc-go/language"
	"github.com/ieee0824/ctc-go/lexicon"
	"github.com/ieee0824/ctc-go/lm"
)

// DefaultBlankToken is the dictionary symbol assumed to be the CTC blank
// unless overridden with WithBlankToken.
const DefaultBlankToken = "<blank>"

// Result is one decoded hypothesis.
type Result struct {
	Text    string // collapsed emission sequence mapped through the dictionary
	Tokens  []int  // raw per-step token path
	Score   float32
	AMScore float32
	LMScore float32
}

// Recognizer binds a dictionary, a language model and decoder options.
type Recognizer struct {
	Dict  *lexicon.Dict
	LM    lm.LanguageModel
	Opts  decoder.Options
	Blank string

	blankIndex   int
	arpaPending  string // set by WithARPALM, loaded during construction
	oovLog10Prob float64
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithDecoderOptions sets custom beam-search parameters.
func WithDecoderOptions(opts decoder.Options) Option {
	return func(r *Recognizer) {
		r.Opts = opts
	}
}

// WithBlankToken overrides the dictionary symbol treated as the CTC blank.
func WithBlankToken(token string) Option {
	return func(r *Recognizer) {
		r.Blank = token
	}
}

// WithLM attaches a language model for hypothesis rescoring.
func WithLM(model lm.LanguageModel) Option {
	return func(r *Recognizer) {
		r.LM = model
	}
}

// WithARPALM loads an ARPA n-gram model over the dictionary's tokens and
// attaches it for rescoring.
func WithARPALM(path string) Option {
	return func(r *Recognizer) {
		r.arpaPending = path
	}
}

// WithOOVLogProb sets the log10 probability assigned to out-of-vocabulary
// tokens by an ARPA model loaded via WithARPALM (e.g. -5.0, 0 = disable).
func WithOOVLogProb(log10prob float64) Option {
	return func(r *Recognizer) {
		r.oovLog10Prob = log10prob
	}
}

// NewRecognizer creates a Recognizer from a dictionary file.
func NewRecognizer(dictPath string, opts ...Option) (*Recognizer, error) {
	dict, err := lexicon.LoadFile(dictPath)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	return NewRecognizerFromDict(dict, opts...)
}

// NewRecognizerFromDict creates a Recognizer from a pre-loaded dictionary.
func NewRecognizerFromDict(dict *lexicon.Dict, opts ...Option) (*Recognizer, error) {
	r := &Recognizer{
		Dict:  dict,
		Opts:  decoder.DefaultOptions(),
		Blank: DefaultBlankToken,
	}
	for _, opt := range opts {
		opt(r)
	}

	blank, ok := dict.Index(r.Blank)
	if !ok {
		return nil, fmt.Errorf("blank token %q not in dictionary", r.Blank)
	}
	r.blankIndex = blank

	if r.arpaPending != "" {
		model, err := language.LoadARPAFile(r.arpaPending)
		if err != nil {
			return nil, fmt.Errorf("load language model: %w", err)
		}
		if r.oovLog10Prob != 0 {
			model.OOVLogProb = r.oovLog10Prob * math.Ln10 // convert log10 to natural log
		}
		r.LM = lm.NewNGramLM(model, dict)
	}
	return r, nil
}

// BlankIndex returns the dictionary index of the blank symbol.
func (r *Recognizer) BlankIndex() int {
	return r.blankIndex
}

// Decode runs beam search over a row-major score buffer of
// steps*Dict.Len() entries and returns hypotheses sorted best-first.
func (r *Recognizer) Decode(data []float32, steps int) ([]Result, error) {
	d := decoder.NewBeamSearch(r.Opts, r.blankIndex, r.LM)
	outputs, err := d.Decode(data, steps, r.Dict.Len())
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(outputs))
	for i, out := range outputs {
		results[i] = r.toResult(out)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// DecodeGreedy runs argmax decoding over the same score-buffer contract.
func (r *Recognizer) DecodeGreedy(data []float32, steps int) (Result, error) {
	out, err := decoder.Greedy(data, steps, r.Dict.Len())
	if err != nil {
		return Result{}, err
	}
	return r.toResult(out), nil
}

func (r *Recognizer) toResult(out decoder.Output) Result {
	var sb strings.Builder
	for _, tok := range decoder.Collapse(out.Tokens, r.blankIndex) {
		if s, ok := r.Dict.Token(tok); ok {
			sb.WriteString(s)
		}
	}
	return Result{
		Text:    sb.String(),
		Tokens:  out.Tokens,
		Score:   out.Score,
		AMScore: out.AMScore,
		LMScore: out.LMScore,
	}
}

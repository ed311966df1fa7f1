// Package lm defines the language-model capability consumed by the decoder.
// Concrete models (n-gram, no-op) are interchangeable implementations
// selected at configuration time; the decoder never sees their internals.
package lm

// State is an opaque LM context. States form a tree: each node caches its
// successor per token, so repeated expansions of the same history share one
// node and one payload.
type State struct {
	payload  any
	children map[int]*State
}

// NewState creates a root state carrying a model-specific payload.
func NewState(payload any) *State {
	return &State{payload: payload}
}

// Payload returns the model-specific payload attached to the state.
func (s *State) Payload() any {
	return s.payload
}

// Child returns the successor state for token, creating and caching it with
// payload() on first use.
func (s *State) Child(token int, payload func() any) *State {
	if next, ok := s.children[token]; ok {
		return next
	}
	if s.children == nil {
		s.children = make(map[int]*State)
	}
	next := &State{payload: payload()}
	s.children[token] = next
	return next
}

// LanguageModel scores candidate tokens during beam search. Contributions
// are natural-log scores; nVocab is the decoder's vocabulary size.
type LanguageModel interface {
	// Start produces the initial context.
	Start() *State
	// Score returns the successor context and the incremental log-score
	// contribution of emitting token.
	Score(s *State, token, nVocab int) (*State, float32)
	// Finish returns the end-of-sequence contribution for a context.
	Finish(s *State) (*State, float32)
}

// ZeroLM is the default no-op model: zero contribution, unchanged context.
type ZeroLM struct{}

func (ZeroLM) Start() *State { return NewState(nil) }

func (ZeroLM) Score(s *State, token, nVocab int) (*State, float32) { return s, 0 }

func (ZeroLM) Finish(s *State) (*State, float32) { return s, 0 }

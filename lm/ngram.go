package lm

import (
	"github.com/ieee0824/ctc-go/language"
	"github.com/ieee0824/ctc-go/lexicon"
)

// NGramLM rescores hypotheses with a token-level ARPA n-gram model.
// Decoder token indices are mapped to strings through the dictionary.
type NGramLM struct {
	model *language.Model
	dict  *lexicon.Dict
}

// NewNGramLM wraps an n-gram model and the dictionary used to resolve
// decoder token indices.
func NewNGramLM(model *language.Model, dict *lexicon.Dict) *NGramLM {
	return &NGramLM{model: model, dict: dict}
}

// history is the bounded token history carried as the state payload.
type history []string

func (m *NGramLM) Start() *State {
	return NewState(history{language.BOS})
}

func (m *NGramLM) Score(s *State, token, nVocab int) (*State, float32) {
	hist := s.Payload().(history)
	word, ok := m.dict.Token(token)
	if !ok {
		// Index outside the dictionary scores as OOV.
		word = ""
	}
	score := m.model.LogProb(hist, word)
	next := s.Child(token, func() any { return m.extend(hist, word) })
	return next, float32(score)
}

func (m *NGramLM) Finish(s *State) (*State, float32) {
	hist := s.Payload().(history)
	return s, float32(m.model.LogProb(hist, language.EOS))
}

// extend appends word to hist, trimming to the order-1 tokens the model
// actually conditions on.
func (m *NGramLM) extend(hist history, word string) history {
	keep := m.model.Order - 1
	if keep < 1 {
		keep = 1
	}
	next := make(history, 0, keep)
	if len(hist) >= keep {
		next = append(next, hist[len(hist)-keep+1:]...)
	} else {
		next = append(next, hist...)
	}
	return append(next, word)
}

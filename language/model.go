// Package language implements a token-level n-gram language model with
// backoff, used to rescore decoder hypotheses. Probabilities are stored as
// natural logs.
package language

import "github.com/ieee0824/ctc-go/internal/mathutil"

// Sentence boundary markers used in training data and ARPA files.
const (
	BOS = "<s>"
	EOS = "</s>"
)

// Entry holds the log probability and backoff weight of one n-gram.
type Entry struct {
	LogProb    float64
	LogBackoff float64
}

// Model represents an n-gram language model over string tokens.
type Model struct {
	Order    int // 1, 2 (bigram) or 3 (trigram)
	Unigrams map[string]Entry
	Bigrams  map[[2]string]Entry
	Trigrams map[[3]string]Entry

	// OOVLogProb, when non-zero, is returned for tokens missing from the
	// unigram table instead of LogZero.
	OOVLogProb float64
}

// NewModel creates an empty n-gram model of the given order.
func NewModel(order int) *Model {
	if order < 1 {
		order = 1
	}
	if order > 3 {
		order = 3
	}
	return &Model{
		Order:    order,
		Unigrams: make(map[string]Entry),
		Bigrams:  make(map[[2]string]Entry),
		Trigrams: make(map[[3]string]Entry),
	}
}

// LogProb returns the log probability of token given its history, backing
// off to lower orders when the exact n-gram is absent.
func (m *Model) LogProb(history []string, token string) float64 {
	if m.Order >= 3 && len(history) >= 2 {
		h1, h2 := history[len(history)-2], history[len(history)-1]
		if e, ok := m.Trigrams[[3]string{h1, h2, token}]; ok {
			return e.LogProb
		}
		if e, ok := m.Bigrams[[2]string{h1, h2}]; ok {
			return e.LogBackoff + m.bigramLogProb(h2, token)
		}
	}
	if m.Order >= 2 && len(history) >= 1 {
		return m.bigramLogProb(history[len(history)-1], token)
	}
	return m.unigramLogProb(token)
}

func (m *Model) bigramLogProb(prev, token string) float64 {
	if e, ok := m.Bigrams[[2]string{prev, token}]; ok {
		return e.LogProb
	}
	if e, ok := m.Unigrams[prev]; ok {
		return e.LogBackoff + m.unigramLogProb(token)
	}
	return m.unigramLogProb(token)
}

func (m *Model) unigramLogProb(token string) float64 {
	if e, ok := m.Unigrams[token]; ok {
		return e.LogProb
	}
	if m.OOVLogProb != 0 {
		return m.OOVLogProb
	}
	return mathutil.LogZero
}

// SequenceLogProb returns the total log probability of a token sequence,
// with <s> and </s> added automatically.
func (m *Model) SequenceLogProb(tokens []string) float64 {
	total := 0.0
	history := []string{BOS}
	for _, tok := range tokens {
		total += m.LogProb(history, tok)
		history = append(history, tok)
	}
	return total + m.LogProb(history, EOS)
}

// Vocab returns all tokens in the unigram table.
func (m *Model) Vocab() []string {
	tokens := make([]string, 0, len(m.Unigrams))
	for tok := range m.Unigrams {
		tokens = append(tokens, tok)
	}
	return tokens
}

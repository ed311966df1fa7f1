package lm

import (
	"math"
	"strings"
	"testing"

	"github.com/ieee0824/ctc-go/language"
	"github.com/ieee0824/ctc-go/lexicon"
)

func TestZeroLM(t *testing.T) {
	var m ZeroLM
	s := m.Start()
	if s == nil {
		t.Fatal("Start returned nil state")
	}

	next, score := m.Score(s, 3, 10)
	if score != 0 {
		t.Errorf("Score contribution = %f, want 0", score)
	}
	if next != s {
		t.Error("ZeroLM should leave the context unchanged")
	}

	fin, score := m.Finish(s)
	if score != 0 || fin != s {
		t.Errorf("Finish = (%v, %f), want unchanged state and 0", fin, score)
	}
}

func TestStateChildCaching(t *testing.T) {
	calls := 0
	s := NewState(nil)
	a := s.Child(1, func() any { calls++; return "x" })
	b := s.Child(1, func() any { calls++; return "y" })
	if a != b {
		t.Error("Child(1) should return the cached state")
	}
	if calls != 1 {
		t.Errorf("payload constructed %d times, want 1", calls)
	}
	if a.Payload() != "x" {
		t.Errorf("payload = %v, want x", a.Payload())
	}
	if c := s.Child(2, func() any { return "z" }); c == a {
		t.Error("distinct tokens should get distinct children")
	}
}

const ngramARPA = `\data\
ngram 1=4
ngram 2=4

\1-grams:
-1.0	</s>
-1.0	<s>	0.0
-0.5	a	0.0
-0.8	b	0.0

\2-grams:
-0.2	<s>	a
-0.9	<s>	b
-0.3	a	b
-0.4	b	</s>

\end\
`

func buildNGramLM(t *testing.T) (*NGramLM, *lexicon.Dict) {
	t.Helper()
	model, err := language.LoadARPA(strings.NewReader(ngramARPA))
	if err != nil {
		t.Fatal(err)
	}
	dict := lexicon.NewDict()
	dict.Add("a")
	dict.Add("b")
	return NewNGramLM(model, dict), dict
}

func TestNGramLMScore(t *testing.T) {
	m, _ := buildNGramLM(t)

	s := m.Start()
	next, score := m.Score(s, 0, 2) // "a" after <s>
	want := float32(-0.2 * math.Ln10)
	if math.Abs(float64(score-want)) > 1e-6 {
		t.Errorf("Score(<s>, a) = %f, want %f", score, want)
	}

	_, score = m.Score(next, 1, 2) // "b" after "a"
	want = float32(-0.3 * math.Ln10)
	if math.Abs(float64(score-want)) > 1e-6 {
		t.Errorf("Score(a, b) = %f, want %f", score, want)
	}
}

func TestNGramLMFinish(t *testing.T) {
	m, _ := buildNGramLM(t)

	s := m.Start()
	s, _ = m.Score(s, 0, 2) // a
	s, _ = m.Score(s, 1, 2) // b
	_, score := m.Finish(s)
	want := float32(-0.4 * math.Ln10) // P(</s> | b)
	if math.Abs(float64(score-want)) > 1e-6 {
		t.Errorf("Finish after b = %f, want %f", score, want)
	}
}

func TestNGramLMSharedHistory(t *testing.T) {
	m, _ := buildNGramLM(t)
	s := m.Start()
	a1, _ := m.Score(s, 0, 2)
	a2, _ := m.Score(s, 0, 2)
	if a1 != a2 {
		t.Error("scoring the same token twice should share the successor state")
	}
}

func TestNGramLMUnknownIndex(t *testing.T) {
	m, _ := buildNGramLM(t)
	s := m.Start()
	_, score := m.Score(s, 99, 2)
	if score > -1e28 {
		t.Errorf("unknown token index should score as OOV, got %f", score)
	}
}

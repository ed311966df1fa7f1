package mathutil

import (
	"math"
	"testing"
)

func TestLogAdd(t *testing.T) {
	// log(exp(log(2)) + exp(log(3))) = log(5)
	a := math.Log(2)
	b := math.Log(3)
	got := LogAdd(a, b)
	want := math.Log(5)
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("LogAdd(log(2), log(3)) = %f, want %f", got, want)
	}
}

func TestLogAddWithLogZero(t *testing.T) {
	a := math.Log(5)
	if got := LogAdd(LogZero, a); math.Abs(got-a) > 1e-10 {
		t.Errorf("LogAdd(LogZero, %f) = %f, want %f", a, got, a)
	}
	if got := LogAdd(a, LogZero); math.Abs(got-a) > 1e-10 {
		t.Errorf("LogAdd(%f, LogZero) = %f, want %f", a, got, a)
	}
}

func TestLogAddEqualScores(t *testing.T) {
	// log(exp(a) + exp(a)) = a + log(2); must not explode for large |a|.
	for _, a := range []float64{0, -10, -1000, 500} {
		got := LogAdd(a, a)
		want := a + math.Ln2
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("LogAdd(%f, %f) = %f, want %f", a, a, got, want)
		}
	}
}

func TestLogAdd32(t *testing.T) {
	got := LogAdd32(float32(math.Log(2)), float32(math.Log(3)))
	want := float32(math.Log(5))
	if math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("LogAdd32(log(2), log(3)) = %f, want %f", got, want)
	}
}

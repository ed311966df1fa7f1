package decoder

import (
	"math"
	"testing"
)

func TestGreedy(t *testing.T) {
	data := []float32{
		0.1, 0.9, 0.0,
		0.8, 0.1, 0.1,
		0.2, 0.2, 0.6,
	}
	out, err := Greedy(data, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 0, 2}
	for i, tok := range want {
		if out.Tokens[i] != tok {
			t.Fatalf("Tokens = %v, want %v", out.Tokens, want)
		}
	}
	wantScore := float32(0.9 + 0.8 + 0.6)
	if math.Abs(float64(out.Score-wantScore)) > 1e-6 {
		t.Errorf("Score = %f, want %f", out.Score, wantScore)
	}
	if out.AMScore != out.Score || out.LMScore != 0 {
		t.Errorf("decomposition: am=%f lm=%f score=%f", out.AMScore, out.LMScore, out.Score)
	}
}

func TestGreedyPreconditions(t *testing.T) {
	if _, err := Greedy([]float32{1}, 1, 0); err == nil {
		t.Error("tokens=0 should be rejected")
	}
	if _, err := Greedy([]float32{1}, 2, 2); err == nil {
		t.Error("short buffer should be rejected")
	}
	if _, err := Greedy([]float32{1, float32(math.NaN())}, 1, 2); err == nil {
		t.Error("NaN frame should be rejected")
	}
}

func TestCollapse(t *testing.T) {
	cases := []struct {
		name  string
		path  []int
		blank int
		want  []int
	}{
		{"repeats", []int{0, 0, 1, 1, 1, 2}, 4, []int{0, 1, 2}},
		{"blanks dropped", []int{4, 0, 4, 1, 4}, 4, []int{0, 1}},
		{"blank separates repeat", []int{0, 4, 0}, 4, []int{0, 0}},
		{"all blank", []int{4, 4, 4}, 4, []int{}},
		{"empty", []int{}, 4, []int{}},
	}
	for _, tc := range cases {
		got := Collapse(tc.path, tc.blank)
		if len(got) != len(tc.want) {
			t.Errorf("%s: Collapse = %v, want %v", tc.name, got, tc.want)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("%s: Collapse = %v, want %v", tc.name, got, tc.want)
				break
			}
		}
	}
}

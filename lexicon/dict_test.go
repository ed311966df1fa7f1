package lexicon

import (
	"strings"
	"testing"
)

func TestDictAddAndLookup(t *testing.T) {
	d := NewDict()
	a := d.Add("a")
	b := d.Add("b")
	if a != 0 || b != 1 {
		t.Fatalf("Add order: got a=%d b=%d, want 0 1", a, b)
	}
	if again := d.Add("a"); again != a {
		t.Errorf("re-adding a returned %d, want %d", again, a)
	}
	if d.Len() != 2 {
		t.Errorf("Len = %d, want 2", d.Len())
	}

	if i, ok := d.Index("b"); !ok || i != 1 {
		t.Errorf("Index(b) = %d, %v", i, ok)
	}
	if _, ok := d.Index("z"); ok {
		t.Error("Index(z) should not exist")
	}
	if tok, ok := d.Token(0); !ok || tok != "a" {
		t.Errorf("Token(0) = %q, %v", tok, ok)
	}
	if _, ok := d.Token(5); ok {
		t.Error("Token(5) should not exist")
	}
}

func TestLoad(t *testing.T) {
	input := `# vocabulary
a
b

<blank>
`
	d, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 3 {
		t.Fatalf("Len = %d, want 3", d.Len())
	}
	if i, _ := d.Index("<blank>"); i != 2 {
		t.Errorf("Index(<blank>) = %d, want 2", i)
	}
	want := []string{"a", "b", "<blank>"}
	for i, tok := range d.Tokens() {
		if tok != want[i] {
			t.Errorf("Tokens()[%d] = %q, want %q", i, tok, want[i])
		}
	}
}

func TestLoadRejectsWhitespace(t *testing.T) {
	if _, err := Load(strings.NewReader("a b\n")); err == nil {
		t.Error("expected error for token containing whitespace")
	}
}

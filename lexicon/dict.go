// Package lexicon maps human-readable tokens to the integer indices used by
// the decoder. Index i corresponds to column i of the score matrix.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Dict is a bidirectional token <-> index mapping.
type Dict struct {
	indexByToken map[string]int
	tokens       []string
}

// NewDict creates an empty dictionary.
func NewDict() *Dict {
	return &Dict{indexByToken: make(map[string]int)}
}

// Add registers a token and returns its index. Adding an existing token
// returns the index it already has.
func (d *Dict) Add(token string) int {
	if i, ok := d.indexByToken[token]; ok {
		return i
	}
	i := len(d.tokens)
	d.indexByToken[token] = i
	d.tokens = append(d.tokens, token)
	return i
}

// Index returns the index of a token.
func (d *Dict) Index(token string) (int, bool) {
	i, ok := d.indexByToken[token]
	return i, ok
}

// Token returns the token at index i.
func (d *Dict) Token(i int) (string, bool) {
	if i < 0 || i >= len(d.tokens) {
		return "", false
	}
	return d.tokens[i], true
}

// Len returns the vocabulary size.
func (d *Dict) Len() int {
	return len(d.tokens)
}

// Tokens returns all tokens in index order.
func (d *Dict) Tokens() []string {
	out := make([]string, len(d.tokens))
	copy(out, d.tokens)
	return out
}

// Load reads a dictionary with one token per line. Blank lines and lines
// starting with "#" are skipped; indices follow order of first appearance.
func Load(r io.Reader) (*Dict, error) {
	d := NewDict()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.ContainsAny(line, " \t") {
			return nil, fmt.Errorf("line %d: token %q contains whitespace", lineNum, line)
		}
		d.Add(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string) (*Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

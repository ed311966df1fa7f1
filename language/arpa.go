package language

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadARPA reads a language model in ARPA format. Log probabilities in ARPA
// files are base-10; they are converted to natural log on load.
func LoadARPA(r io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	model := NewModel(1)
	section := 0 // current n-gram order, 0 = outside any section

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || line == "\\data\\":
			continue
		case line == "\\end\\":
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return model, nil
		case strings.HasPrefix(line, "ngram "):
			// "ngram N=count" header; only the max order matters.
			spec := strings.SplitN(line[len("ngram "):], "=", 2)
			order, err := strconv.Atoi(strings.TrimSpace(spec[0]))
			if err == nil && order > model.Order {
				model.Order = order
			}
		case strings.HasPrefix(line, "\\") && strings.HasSuffix(line, "-grams:"):
			orderStr := strings.TrimSuffix(strings.TrimPrefix(line, "\\"), "-grams:")
			order, err := strconv.Atoi(orderStr)
			if err != nil {
				return nil, fmt.Errorf("bad section header %q", line)
			}
			section = order
		default:
			if section < 1 || section > 3 {
				continue
			}
			if err := parseEntry(model, section, line); err != nil {
				return nil, fmt.Errorf("parse %d-gram line %q: %w", section, line, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return model, nil
}

// LoadARPAFile is a convenience wrapper that opens a file path.
func LoadARPAFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadARPA(f)
}

func parseEntry(model *Model, order int, line string) error {
	fields := strings.Fields(line)
	if len(fields) < order+1 {
		return fmt.Errorf("want at least %d fields, got %d", order+1, len(fields))
	}

	logProb, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fmt.Errorf("parse log prob: %w", err)
	}

	var logBackoff float64
	if len(fields) > order+1 {
		logBackoff, err = strconv.ParseFloat(fields[order+1], 64)
		if err != nil {
			return fmt.Errorf("parse backoff: %w", err)
		}
	}

	entry := Entry{LogProb: logProb * math.Ln10, LogBackoff: logBackoff * math.Ln10}
	tokens := fields[1 : order+1]
	switch order {
	case 1:
		model.Unigrams[tokens[0]] = entry
	case 2:
		model.Bigrams[[2]string{tokens[0], tokens[1]}] = entry
	case 3:
		model.Trigrams[[3]string{tokens[0], tokens[1], tokens[2]}] = entry
	}
	return nil
}

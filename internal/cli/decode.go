package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	ctc "github.com/ieee0824/ctc-go"
	"github.com/ieee0824/ctc-go/decoder"
)

// decodeConfig mirrors the optional YAML configuration file. Explicit flags
// take precedence over file values.
type decodeConfig struct {
	BeamSize      int     `yaml:"beam_size"`
	BeamSizeToken int     `yaml:"beam_size_token"`
	BeamThreshold float32 `yaml:"beam_threshold"`
	LMWeight      float32 `yaml:"lm_weight"`
	Blank         string  `yaml:"blank"`
}

func (c *CLI) newDecodeCommand() *cobra.Command {
	var (
		dictPath   string
		lmPath     string
		configPath string
		oovProb    float64
		greedy     bool
		nBest      int
	)
	opts := decoder.DefaultOptions()
	blank := ctc.DefaultBlankToken

	cmd := &cobra.Command{
		Use:   "decode [scores-file]",
		Short: "Decode a score matrix into text hypotheses",
		Long: `Decode reads a row-major score matrix (one whitespace-separated row of
per-token scores per time step, columns matching the dictionary order) and
prints the best decoding. With no scores-file it reads from stdin.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  # Decode a score matrix with a 40-token dictionary
  ctcdecode decode --dict tokens.txt scores.txt

  # Rescore with an ARPA language model, print the 5 best hypotheses
  ctcdecode decode --dict tokens.txt --lm model.arpa --n-best 5 scores.txt

  # Pipe scores from another tool
  acoustic-model utterance.wav | ctcdecode decode --dict tokens.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fileCfg, err := loadDecodeConfig(configPath)
				if err != nil {
					return err
				}
				applyConfig(cmd, fileCfg, &opts, &blank)
			}

			recOpts := []ctc.Option{
				ctc.WithDecoderOptions(opts),
				ctc.WithBlankToken(blank),
			}
			if lmPath != "" {
				recOpts = append(recOpts, ctc.WithARPALM(lmPath), ctc.WithOOVLogProb(oovProb))
			}
			rec, err := ctc.NewRecognizer(dictPath, recOpts...)
			if err != nil {
				return err
			}

			in := io.Reader(os.Stdin)
			source := "stdin"
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
				source = args[0]
			}
			data, steps, err := readScores(in, rec.Dict.Len())
			if err != nil {
				return fmt.Errorf("read scores from %s: %w", source, err)
			}
			c.logger.Debugw("scores loaded",
				"source", source, "steps", steps, "tokens", rec.Dict.Len())

			if greedy {
				res, err := rec.DecodeGreedy(data, steps)
				if err != nil {
					return err
				}
				fmt.Println(res.Text)
				c.logger.Debugw("greedy decode finished", "score", res.Score)
				return nil
			}

			results, err := rec.Decode(data, steps)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("beam is empty: all hypotheses pruned (beam_threshold %.2f)", opts.BeamThreshold)
			}
			c.logger.Debugw("decode finished",
				"hypotheses", len(results),
				"best_score", results[0].Score,
				"am_score", results[0].AMScore,
				"lm_score", results[0].LMScore)

			if nBest <= 1 {
				fmt.Println(results[0].Text)
				return nil
			}
			for i, res := range results {
				if i >= nBest {
					break
				}
				fmt.Printf("%.4f\t%s\n", res.Score, res.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dictPath, "dict", "", "token dictionary file, one token per line (required)")
	cmd.Flags().StringVar(&lmPath, "lm", "", "ARPA language model for rescoring")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with decoder options")
	cmd.Flags().IntVar(&opts.BeamSize, "beam-size", opts.BeamSize, "maximum hypotheses kept per time step")
	cmd.Flags().IntVar(&opts.BeamSizeToken, "beam-size-token", opts.BeamSizeToken, "maximum tokens considered per time step")
	cmd.Flags().Float32Var(&opts.BeamThreshold, "beam-threshold", opts.BeamThreshold, "prune margin below the best score")
	cmd.Flags().Float32Var(&opts.LMWeight, "lm-weight", opts.LMWeight, "language model weight")
	cmd.Flags().StringVar(&blank, "blank", blank, "dictionary symbol of the CTC blank")
	cmd.Flags().Float64Var(&oovProb, "oov-prob", 0, "OOV log10 probability for the ARPA model (0=disable)")
	cmd.Flags().BoolVar(&greedy, "greedy", false, "use greedy (argmax) decoding instead of beam search")
	cmd.Flags().IntVar(&nBest, "n-best", 1, "number of hypotheses to print")
	_ = cmd.MarkFlagRequired("dict")

	return cmd
}

func loadDecodeConfig(path string) (decodeConfig, error) {
	var cfg decodeConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig overlays file values onto the defaults, keeping any value the
// user set explicitly on the command line.
func applyConfig(cmd *cobra.Command, cfg decodeConfig, opts *decoder.Options, blank *string) {
	if cfg.BeamSize != 0 && !cmd.Flags().Changed("beam-size") {
		opts.BeamSize = cfg.BeamSize
	}
	if cfg.BeamSizeToken != 0 && !cmd.Flags().Changed("beam-size-token") {
		opts.BeamSizeToken = cfg.BeamSizeToken
	}
	if cfg.BeamThreshold != 0 && !cmd.Flags().Changed("beam-threshold") {
		opts.BeamThreshold = cfg.BeamThreshold
	}
	if cfg.LMWeight != 0 && !cmd.Flags().Changed("lm-weight") {
		opts.LMWeight = cfg.LMWeight
	}
	if cfg.Blank != "" && !cmd.Flags().Changed("blank") {
		*blank = cfg.Blank
	}
}

// readScores parses a text score matrix: one row per time step, tokens
// columns of floats per row. Blank lines and "#" comments are skipped.
func readScores(r io.Reader, tokens int) ([]float32, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var data []float32
	steps := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != tokens {
			return nil, 0, fmt.Errorf("line %d: %d columns, dictionary has %d tokens", lineNum, len(fields), tokens)
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, 0, fmt.Errorf("line %d: parse %q: %w", lineNum, f, err)
			}
			data = append(data, float32(v))
		}
		steps++
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return data, steps, nil
}

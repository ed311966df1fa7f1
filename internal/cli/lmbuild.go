package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ieee0824/ctc-go/language"
)

func (c *CLI) newLMBuildCommand() *cobra.Command {
	var (
		order  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "lmbuild [input-files...]",
		Short: "Build an ARPA n-gram model from tokenized text",
		Long: `Lmbuild counts n-grams over tokenized text (one sequence per line, tokens
separated by spaces) and writes an ARPA model with Witten-Bell smoothing,
suitable for the decode command's --lm flag. With no input files it reads
from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := language.NewBuilder(order)

			total := 0
			if len(args) == 0 {
				n, err := addSequences(b, os.Stdin)
				if err != nil {
					return err
				}
				total = n
			} else {
				for _, path := range args {
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					n, err := addSequences(b, f)
					f.Close()
					if err != nil {
						return fmt.Errorf("read %s: %w", path, err)
					}
					total += n
				}
			}
			c.logger.Debugw("sequences counted", "sequences", total, "order", order)

			w := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := b.WriteARPA(w); err != nil {
				return fmt.Errorf("write ARPA: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&order, "order", 2, "n-gram order (2=bigram, 3=trigram)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func addSequences(b *language.Builder, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		b.AddSequence(tokens)
		n++
	}
	return n, scanner.Err()
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crawlserv-go/sentimentcore/crfmodel"
	"github.com/crawlserv-go/sentimentcore/crftag"
)

var (
	tagModelPath string
	tagMaxEnt    bool
	tagPosterior bool
	tagForce     bool
)

var tagCmd = &cobra.Command{
	Use:   "tag [input files...]",
	Short: "Load a CRF model and label each line's whitespace-separated tokens",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTag,
}

func init() {
	tagCmd.Flags().StringVar(&tagModelPath, "model", "", "path to the CRF model file (required)")
	tagCmd.Flags().BoolVar(&tagMaxEnt, "maxent", false, "treat the model as pure maximum-entropy (no bigram transitions)")
	tagCmd.Flags().BoolVar(&tagPosterior, "posterior", false, "decode with forward-backward posteriors instead of Viterbi")
	tagCmd.Flags().BoolVar(&tagForce, "force", false, "honor a gold label in each line's last column as a pinned decode")
	_ = tagCmd.MarkFlagRequired("model")
}

// splitForced separates a line's tokens from an optional trailing gold
// label when --force is set: "The cat sat VERB" becomes tokens
// ["The","cat","sat"] with forcedLabelOf(2) returning ("VERB", true).
func splitForced(fields []string) (tokens []string, forced func(i int) (string, bool)) {
	if !tagForce || len(fields) < 2 {
		return fields, nil
	}
	tokens = fields[:len(fields)-1]
	label := fields[len(fields)-1]
	last := len(tokens) - 1
	return tokens, func(i int) (string, bool) {
		if i == last {
			return label, true
		}
		return "", false
	}
}

func runTag(cmd *cobra.Command, args []string) error {
	f, err := os.Open(tagModelPath)
	if err != nil {
		return fmt.Errorf("open model: %w", err)
	}
	model, err := crfmodel.Load(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	opts := crfmodel.Options{MaxEnt: tagMaxEnt, Posterior: tagPosterior, Force: tagForce}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for _, path := range args {
		if err := tagFile(model, opts, path, w); err != nil {
			return fmt.Errorf("tag %s: %w", path, err)
		}
	}
	return nil
}

func tagFile(model *crfmodel.Model, opts crfmodel.Options, path string, w *bufio.Writer) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprintln(w)
			continue
		}
		fields := strings.Fields(line)
		tokens, forced := splitForced(fields)

		labeled, err := crftag.Tag(model, opts, tokens, forced)
		if err != nil {
			if logger != nil {
				logger.Warn("decode failed, skipping line", zapField("path", path), zapField("error", err.Error()))
			}
			continue
		}
		fmt.Fprintln(w, strings.Join(labeled, " "))
	}
	return scanner.Err()
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/crawlserv-go/sentimentcore/aggregate"
	"github.com/crawlserv-go/sentimentcore/config"
	"github.com/crawlserv-go/sentimentcore/corpus"
	"github.com/crawlserv-go/sentimentcore/jobrunner"
	"github.com/crawlserv-go/sentimentcore/lexicon"
	"github.com/crawlserv-go/sentimentcore/sink"
	"github.com/crawlserv-go/sentimentcore/tokenizer"
	"github.com/crawlserv-go/sentimentcore/vader"
)

var (
	analyzeConfigPath string
	analyzeSinkKind    string
	analyzeSinkPath    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input files...]",
	Short: "Run the Aggregator over one or more article text files and write the resulting rows to a sink",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "path to the Aggregator YAML config (required)")
	analyzeCmd.Flags().StringVar(&analyzeSinkKind, "sink", "stdout", "result sink: stdout, bolt, or parquet")
	analyzeCmd.Flags().StringVar(&analyzeSinkPath, "sink-path", "", "output path for the bolt/parquet sinks")
	_ = analyzeCmd.MarkFlagRequired("config")
}

// articleLabel derives a (date, articleID) pair from an input file's name:
// "<date>_<rest>.ext" splits on the first underscore, and a name with no
// underscore is treated as the date with the whole stem as the article id.
// This is a convenience convention for demos and fixtures, not a format
// the Aggregator itself knows about.
func articleLabel(path string) (date, article string) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.IndexByte(stem, '_'); i >= 0 {
		return stem[:i], stem
	}
	return stem, stem
}

func buildCorpora(paths []string) ([]corpus.Corpus, error) {
	corpora := make([]corpus.Corpus, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied CLI argument
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		date, article := articleLabel(path)
		c := tokenizer.BuildCorpus(string(data),
			func(int) string { return date },
			func(int) string { return article },
		)
		corpora = append(corpora, c)
	}
	return corpora, nil
}

func openSink() (sink.Sink, error) {
	switch analyzeSinkKind {
	case "stdout":
		return sink.NewStdout(os.Stdout), nil
	case "bolt":
		if analyzeSinkPath == "" {
			return nil, fmt.Errorf("--sink-path is required for the bolt sink")
		}
		return sink.OpenBolt(analyzeSinkPath)
	case "parquet":
		if analyzeSinkPath == "" {
			return nil, fmt.Errorf("--sink-path is required for the parquet sink")
		}
		return sink.NewParquet(analyzeSinkPath), nil
	default:
		return nil, fmt.Errorf("unknown sink %q (want stdout, bolt, or parquet)", analyzeSinkKind)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(analyzeConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if warnings, err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	} else {
		for _, w := range warnings {
			logger.Warn("config trimmed", zapField("warning", w))
		}
	}

	lex, err := lexicon.Default()
	if err != nil {
		return fmt.Errorf("load lexicon: %w", err)
	}
	analyzer := vader.New(lex)

	corpora, err := buildCorpora(args)
	if err != nil {
		return err
	}

	job := aggregate.NewJob(cfg, analyzer, corpora)
	job.RunID = uuid.New().String()
	logger.Info("starting analyze job", zapField("run_id", job.RunID), zapField("corpora", fmt.Sprint(len(corpora))))

	out, err := openSink()
	if err != nil {
		return err
	}
	defer out.Close()

	p := mpb.New(mpb.WithWidth(80))
	bars := make([]*mpb.Bar, len(corpora))
	for i, c := range corpora {
		bars[i] = p.AddBar(int64(len(c.Sentences)),
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("corpus %d: ", i)),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done!"),
			),
		)
	}

	driver := jobrunner.NewDriver(job)
	driver.OnWarning = func(err error) {
		logger.Warn("job warning", zapField("error", err.Error()))
	}

	for i := 0; ; i++ {
		if i < len(bars) {
			bar := bars[i]
			job.Progress = func(done, total uint64) { bar.SetCurrent(int64(done)) }
		}
		done, err := driver.Tick()
		if err != nil {
			return fmt.Errorf("tick: %w", err)
		}
		if i < len(bars) {
			bars[i].SetCurrent(bars[i].Current()) // no-op if Progress already reached total
			bars[i].SetCurrent(int64(len(corpora[i].Sentences)))
		}
		if done {
			break
		}
	}
	p.Wait()

	if err := out.Write(driver.Rows()); err != nil {
		return fmt.Errorf("write sink: %w", err)
	}
	logger.Info("analyze job finished", zapField("run_id", job.RunID), zapField("rows", fmt.Sprint(len(driver.Rows()))))
	return nil
}

// Package config loads the Aggregator's configuration from a YAML file,
// matching aggregate.Config's fields one to one (spec.md §4.6), with
// environment variable overrides for local development convenience.
package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/crawlserv-go/sentimentcore/aggregate"
	"github.com/crawlserv-go/sentimentcore/corpus"
)

// Category is one entry of the parallel category_labels/category_queries
// arrays, expressed as a single YAML mapping instead of two parallel lists.
type Category struct {
	Label string `yaml:"label"`
	Query string `yaml:"query"`
}

// File is the on-disk shape of the Aggregator's configuration file.
type File struct {
	Categories          []Category `yaml:"categories"`
	AddArticleSentiment bool       `yaml:"add_article_sentiment"`
	IgnoreEmptyDate     bool       `yaml:"ignore_empty_date"`
	Threshold           uint8      `yaml:"threshold"`
	UseThreshold        bool       `yaml:"use_threshold"`
	DateResolution      string     `yaml:"date_resolution"` // "year", "year_month", or "year_month_day"
}

// LoadEnv loads a local .env file, if present, so the SENTIMENTCORE_*
// environment variable overrides Load applies can be set there during
// development. A missing .env file is not an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, continuing without one")
	}
}

// Load reads and parses a YAML configuration file at path, applies
// environment variable overrides (SENTIMENTCORE_THRESHOLD,
// SENTIMENTCORE_USE_THRESHOLD), and compiles its category queries into an
// aggregate.Config. The returned Config has not yet been passed to
// Validate — callers should do that themselves so trimming warnings stay
// visible to them.
func Load(path string) (aggregate.Config, error) {
	var empty aggregate.Config

	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied, not user input
	if err != nil {
		return empty, &corpus.Error{Kind: corpus.ConfigInvalid, Op: "config.Load", Err: err}
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return empty, &corpus.Error{Kind: corpus.ConfigInvalid, Op: "config.Load", Err: err}
	}
	applyEnvOverrides(&f)

	return f.toAggregateConfig()
}

func applyEnvOverrides(f *File) {
	if v := os.Getenv("SENTIMENTCORE_THRESHOLD"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil {
			f.Threshold = uint8(n)
		}
	}
	if v := os.Getenv("SENTIMENTCORE_USE_THRESHOLD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.UseThreshold = b
		}
	}
}

func (f File) toAggregateConfig() (aggregate.Config, error) {
	labels := make([]string, len(f.Categories))
	queries := make([]*regexp.Regexp, len(f.Categories))
	for i, cat := range f.Categories {
		labels[i] = cat.Label
		if cat.Query == "" {
			continue
		}
		re, err := regexp.Compile(cat.Query)
		if err != nil {
			return aggregate.Config{}, &corpus.Error{
				Kind: corpus.ConfigInvalid,
				Op:   "config.Load",
				Err:  fmt.Errorf("category %q: %w", cat.Label, err),
			}
		}
		queries[i] = re
	}

	res, err := parseResolution(f.DateResolution)
	if err != nil {
		return aggregate.Config{}, err
	}

	return aggregate.Config{
		CategoryLabels:      labels,
		CategoryQueries:     queries,
		AddArticleSentiment: f.AddArticleSentiment,
		IgnoreEmptyDate:     f.IgnoreEmptyDate,
		Threshold:           f.Threshold,
		UseThreshold:        f.UseThreshold,
		DateResolution:      res,
	}, nil
}

func parseResolution(s string) (aggregate.DateResolution, error) {
	switch s {
	case "", "year":
		return aggregate.ResolutionYear, nil
	case "year_month":
		return aggregate.ResolutionYearMonth, nil
	case "year_month_day":
		return aggregate.ResolutionYearMonthDay, nil
	default:
		return 0, &corpus.Error{Kind: corpus.ConfigInvalid, Op: "config.Load", Err: fmt.Errorf("unknown date_resolution %q", s)}
	}
}

// Package sink implements the result sinks spec.md §2 leaves as an external
// interface: concrete destinations an Aggregator run's emitted rows can be
// written to. None of vader, pattern, quark, crfmodel, crftag, or aggregate
// import this package — a sink is host-side plumbing the CLI wires in.
package sink

import (
	"fmt"

	"github.com/crawlserv-go/sentimentcore/aggregate"
)

// Sink receives an Aggregator job's emitted rows in order and persists or
// displays them. Write is called at most once per job, with the full row
// set already sorted by bucket key.
type Sink interface {
	Write(rows []aggregate.Row) error
	Close() error
}

// flatten expands one Row's per-category results into independent
// (date, category) records, the shape the Parquet sink stores (Bolt stores
// each Row whole, as JSON) — a row's category count varies with
// configuration, so a record per (date, category) pair gives Parquet a
// fixed, config-independent schema instead of one column per category.
type record struct {
	Date           string
	Category       string
	Count          uint64
	Mean           float64
	ArticleCount   uint64
	ArticleMean    float64
	HasArticleData bool
}

func flatten(rows []aggregate.Row) []record {
	var out []record
	for _, row := range rows {
		for _, cat := range row.Categories {
			out = append(out, record{
				Date:           row.Date,
				Category:       cat.Label,
				Count:          cat.Count,
				Mean:           cat.Mean,
				ArticleCount:   cat.ArticleCount,
				ArticleMean:    cat.ArticleMean,
				HasArticleData: cat.HasArticleData,
			})
		}
	}
	return out
}

// errSinkClosed is returned by Write after Close has been called.
var errSinkClosed = fmt.Errorf("sink: already closed")

package sink

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/crawlserv-go/sentimentcore/aggregate"
)

// parquetRecord is the on-disk schema: one row per (date, category) pair
// rather than one row per date with a variable number of category columns,
// since the category count depends on run configuration and parquet-go's
// reflection-driven writer needs a fixed struct schema.
type parquetRecord struct {
	Date           string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category       string  `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8"`
	Count          int64   `parquet:"name=count, type=INT64"`
	Mean           float64 `parquet:"name=mean, type=DOUBLE"`
	ArticleCount   int64   `parquet:"name=article_count, type=INT64"`
	ArticleMean    float64 `parquet:"name=article_mean, type=DOUBLE"`
	HasArticleData bool    `parquet:"name=has_article_data, type=BOOLEAN"`
}

// parquetParallelism is the writer's concurrency level, matching the pack's
// own parquet-go usage (guiperry-HASHER's seed_writer.go).
const parquetParallelism = 4

// Parquet batches rows into a columnar .parquet file, for downstream
// analytics loads. Rows accumulate across Write calls and are flushed to
// disk on Close.
type Parquet struct {
	path    string
	records []parquetRecord
	closed  bool
}

// NewParquet returns a Parquet sink that will write to path on Close.
func NewParquet(path string) *Parquet {
	return &Parquet{path: path}
}

func (p *Parquet) Write(rows []aggregate.Row) error {
	if p.closed {
		return errSinkClosed
	}
	for _, r := range flatten(rows) {
		p.records = append(p.records, parquetRecord{
			Date:           r.Date,
			Category:       r.Category,
			Count:          int64(r.Count),
			Mean:           r.Mean,
			ArticleCount:   int64(r.ArticleCount),
			ArticleMean:    r.ArticleMean,
			HasArticleData: r.HasArticleData,
		})
	}
	return nil
}

func (p *Parquet) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	fw, err := local.NewLocalFileWriter(p.path)
	if err != nil {
		return fmt.Errorf("sink: create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(parquetRecord), parquetParallelism)
	if err != nil {
		return fmt.Errorf("sink: create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range p.records {
		if err := pw.Write(&p.records[i]); err != nil {
			return fmt.Errorf("sink: write parquet record %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("sink: stop parquet writer: %w", err)
	}
	return nil
}

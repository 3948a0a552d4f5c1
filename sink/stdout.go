package sink

import (
	"fmt"
	"io"
	"os"

	"github.com/crawlserv-go/sentimentcore/aggregate"
)

// Stdout writes rows as a human-readable table to an io.Writer (os.Stdout
// by default). It is the ambient default sink — always available, no
// external dependency.
type Stdout struct {
	w      io.Writer
	closed bool
}

// NewStdout returns a Stdout sink writing to w. A nil w defaults to
// os.Stdout.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{w: w}
}

func (s *Stdout) Write(rows []aggregate.Row) error {
	if s.closed {
		return errSinkClosed
	}
	for _, row := range rows {
		date := row.Date
		if date == "" {
			date = "(none)"
		}
		fmt.Fprintf(s.w, "%s\n", date)
		for _, cat := range row.Categories {
			fmt.Fprintf(s.w, "  %-20s count=%-8d mean=%8.4f", cat.Label, cat.Count, cat.Mean)
			if cat.HasArticleData {
				fmt.Fprintf(s.w, "  article_count=%-8d article_mean=%8.4f", cat.ArticleCount, cat.ArticleMean)
			}
			fmt.Fprintln(s.w)
		}
	}
	return nil
}

func (s *Stdout) Close() error {
	s.closed = true
	return nil
}

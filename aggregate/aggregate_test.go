package aggregate

import (
	"regexp"
	"testing"

	"github.com/crawlserv-go/sentimentcore/corpus"
	"github.com/crawlserv-go/sentimentcore/lexicon"
	"github.com/crawlserv-go/sentimentcore/vader"
	"github.com/stretchr/testify/require"
)

func testAnalyzer(t *testing.T) *vader.Analyzer {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	return vader.New(lex)
}

func TestReduceDate(t *testing.T) {
	require.Equal(t, "2020", ReduceDate("2020-01-17", ResolutionYear))
	require.Equal(t, "2020-01", ReduceDate("2020-01-17", ResolutionYearMonth))
	require.Equal(t, "2020-01-17", ReduceDate("2020-01-17", ResolutionYearMonthDay))
	require.Equal(t, "20", ReduceDate("20", ResolutionYearMonthDay))
}

func TestConfigValidateRejectsAllNilQueries(t *testing.T) {
	cfg := &Config{CategoryLabels: []string{"a"}, CategoryQueries: []*regexp.Regexp{nil}}
	_, err := cfg.Validate()
	require.Error(t, err)

	var cerr *corpus.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, corpus.ConfigInvalid, cerr.Kind)
}

func TestConfigValidateTrimsToCommonPrefixAndWarns(t *testing.T) {
	cfg := &Config{
		CategoryLabels:  []string{"a", "b", "c"},
		CategoryQueries: []*regexp.Regexp{regexp.MustCompile("a"), regexp.MustCompile("b")},
	}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	require.Equal(t, []string{"a", "b"}, cfg.CategoryLabels)
}

func TestConfigValidateRemovesIncompleteEntries(t *testing.T) {
	cfg := &Config{
		CategoryLabels:  []string{"a", "", "c"},
		CategoryQueries: []*regexp.Regexp{regexp.MustCompile("a"), regexp.MustCompile("b"), nil},
	}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	require.Equal(t, []string{"a"}, cfg.CategoryLabels)
	require.Len(t, cfg.CategoryQueries, 1)
}

func TestMeetsThreshold(t *testing.T) {
	require.True(t, MeetsThreshold(0.5, 50))
	require.False(t, MeetsThreshold(0.2, 50))
	require.True(t, MeetsThreshold(-0.9, 10))
}

func buildTestCorpus() corpus.Corpus {
	tokens := []corpus.Token{
		"I", "love", "this",
		"it", "is", "terrible",
		"mostly", "fine", "today",
	}
	return corpus.Corpus{
		Tokens: tokens,
		Sentences: []corpus.Sentence{
			{Begin: 0, Length: 3},
			{Begin: 3, Length: 3},
			{Begin: 6, Length: 3},
		},
		Dates: []corpus.TextMapEntry{
			{Begin: 0, Length: 6, Value: "2020-01-03"},
			{Begin: 6, Length: 3, Value: "2020-02-05"},
		},
		Articles: []corpus.TextMapEntry{
			{Begin: 0, Length: 9, Value: "article-1"},
		},
	}
}

func TestJobTickAccumulatesAndEmitsSortedBuckets(t *testing.T) {
	cfg := Config{
		CategoryLabels:  []string{"all"},
		CategoryQueries: []*regexp.Regexp{regexp.MustCompile(`.*`)},
		DateResolution:  ResolutionYearMonth,
	}
	_, err := cfg.Validate()
	require.NoError(t, err)

	job := NewJob(cfg, testAnalyzer(t), []corpus.Corpus{buildTestCorpus()})

	rows, done, err := job.Tick()
	require.NoError(t, err)
	require.False(t, done)
	require.Nil(t, rows)

	rows, done, err = job.Tick()
	require.NoError(t, err)
	require.True(t, done)
	require.Len(t, rows, 2)

	require.Equal(t, "2020-01", rows[0].Date)
	require.Equal(t, uint64(2), rows[0].Categories[0].Count)
	require.Equal(t, "2020-02", rows[1].Date)
	require.Equal(t, uint64(1), rows[1].Categories[0].Count)
}

func TestJobIgnoresEmptyDateWhenConfigured(t *testing.T) {
	cfg := Config{
		CategoryLabels:  []string{"all"},
		CategoryQueries: []*regexp.Regexp{regexp.MustCompile(`.*`)},
		IgnoreEmptyDate: true,
	}
	_, err := cfg.Validate()
	require.NoError(t, err)

	c := buildTestCorpus()
	// Only the first two sentences are covered by a date entry; the third
	// sentence (tokens 6-9) falls past its end and is treated as undated.
	c.Dates = []corpus.TextMapEntry{{Begin: 0, Length: 6, Value: "2020-01-03"}}

	job := NewJob(cfg, testAnalyzer(t), []corpus.Corpus{c})
	_, _, err = job.Tick()
	require.NoError(t, err)
	rows, _, err := job.Tick()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestJobArticleSentimentAveragesAcrossArticlesNotSentences(t *testing.T) {
	cfg := Config{
		CategoryLabels:      []string{"all"},
		CategoryQueries:     []*regexp.Regexp{regexp.MustCompile(`.*`)},
		AddArticleSentiment: true,
	}
	_, err := cfg.Validate()
	require.NoError(t, err)

	job := NewJob(cfg, testAnalyzer(t), []corpus.Corpus{buildTestCorpus()})
	_, _, err = job.Tick()
	require.NoError(t, err)
	rows, _, err := job.Tick()
	require.NoError(t, err)

	for _, row := range rows {
		require.True(t, row.Categories[0].HasArticleData)
	}
}

func TestJobCorpusIncompleteWhenNoDateMap(t *testing.T) {
	cfg := Config{
		CategoryLabels:  []string{"all"},
		CategoryQueries: []*regexp.Regexp{regexp.MustCompile(`.*`)},
	}
	c := buildTestCorpus()
	c.Dates = nil

	job := NewJob(cfg, testAnalyzer(t), []corpus.Corpus{c})
	_, _, err := job.Tick()
	require.Error(t, err)

	var cerr *corpus.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, corpus.CorpusIncomplete, cerr.Kind)
}

// TestJobSkipsIncompleteCorpusAndReachesDone guards against the tick loop
// getting stuck on a broken corpus forever: spec.md §7 says a
// CorpusIncomplete corpus is logged and skipped, not retried, so a job
// with one broken corpus followed by a good one must still advance past
// the broken one and reach done=true with rows from the good corpus.
func TestJobSkipsIncompleteCorpusAndReachesDone(t *testing.T) {
	cfg := Config{
		CategoryLabels:  []string{"all"},
		CategoryQueries: []*regexp.Regexp{regexp.MustCompile(`.*`)},
	}

	broken := buildTestCorpus()
	broken.Dates = nil

	good := buildTestCorpus()

	job := NewJob(cfg, testAnalyzer(t), []corpus.Corpus{broken, good})

	_, done, err := job.Tick()
	require.Error(t, err)
	require.False(t, done)
	var cerr *corpus.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, corpus.CorpusIncomplete, cerr.Kind)

	_, done, err = job.Tick()
	require.NoError(t, err)
	require.False(t, done)

	rows, done, err := job.Tick()
	require.NoError(t, err)
	require.True(t, done)
	require.NotEmpty(t, rows)
}

func TestMapCursorAdvancesPastGapsAndMarksDone(t *testing.T) {
	entries := []corpus.TextMapEntry{
		{Begin: 0, Length: 2, Value: "a"},
		{Begin: 5, Length: 2, Value: "b"},
	}
	c := newMapCursor(entries)
	require.Equal(t, "a", c.current())

	changed := c.advance(2) // gap between entries, no entry covers token 2-4
	require.True(t, changed)
	require.Equal(t, "b", c.current())

	changed = c.advance(10) // past the last entry
	require.True(t, changed)
	require.Equal(t, "", c.current())

	changed = c.advance(20)
	require.False(t, changed)
}

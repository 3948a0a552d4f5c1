// Package aggregate implements the Aggregator: the time-bucketed
// orchestration loop that walks one or more corpora, matches category
// queries against each sentence, scores matching sentences with the
// V-Analyzer once per sentence, and accumulates per-bucket and
// per-article sentiment statistics for emission to a result sink.
package aggregate

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/crawlserv-go/sentimentcore/corpus"
	"github.com/crawlserv-go/sentimentcore/vader"
)

// DateResolution controls how a raw date string is truncated to a bucket
// key.
type DateResolution int

const (
	ResolutionYear DateResolution = iota
	ResolutionYearMonth
	ResolutionYearMonthDay
)

// resolutionLength is the prefix length a date string is truncated to.
// Shorter strings are left as-is.
func (r DateResolution) resolutionLength() int {
	switch r {
	case ResolutionYear:
		return 4
	case ResolutionYearMonth:
		return 7
	default:
		return 10
	}
}

// ReduceDate truncates a raw "YYYY-MM-DD"-shaped date string to the
// configured resolution. Strings shorter than the target length are
// returned unmodified.
func ReduceDate(date string, res DateResolution) string {
	n := res.resolutionLength()
	if len(date) <= n {
		return date
	}
	return date[:n]
}

// Config is the Aggregator's configuration, matching spec.md §4.6 one to
// one. CategoryLabels and CategoryQueries are parallel arrays; category i
// matches a token iff CategoryQueries[i].MatchString(token) is true.
type Config struct {
	CategoryLabels      []string
	CategoryQueries     []*regexp.Regexp
	AddArticleSentiment bool
	IgnoreEmptyDate     bool
	Threshold           uint8
	UseThreshold        bool
	DateResolution      DateResolution
}

// Validate enforces spec.md §4.6's startup checks: at least one non-nil
// category query must be defined; the parallel arrays are trimmed to
// their common prefix; entries with an empty label or a nil query are
// removed. Non-fatal trimming is reported as warnings; a config with no
// usable category after trimming is ConfigInvalid.
func (c *Config) Validate() ([]string, error) {
	var warnings []string

	anyQuery := false
	for _, q := range c.CategoryQueries {
		if q != nil {
			anyQuery = true
			break
		}
	}
	if !anyQuery {
		return warnings, &corpus.Error{Kind: corpus.ConfigInvalid, Op: "aggregate.Config.Validate", Err: fmt.Errorf("no category defined")}
	}

	n := len(c.CategoryLabels)
	if len(c.CategoryQueries) < n {
		n = len(c.CategoryQueries)
	}
	if len(c.CategoryLabels) != n || len(c.CategoryQueries) != n {
		c.CategoryLabels = c.CategoryLabels[:n]
		c.CategoryQueries = c.CategoryQueries[:n]
		warnings = append(warnings, "'category_labels', 'category_queries' should have the same number of elements")
	}

	var labels []string
	var queries []*regexp.Regexp
	incomplete := false
	for i := 0; i < n; i++ {
		if c.CategoryLabels[i] == "" || c.CategoryQueries[i] == nil {
			incomplete = true
			continue
		}
		labels = append(labels, c.CategoryLabels[i])
		queries = append(queries, c.CategoryQueries[i])
	}
	c.CategoryLabels = labels
	c.CategoryQueries = queries
	if incomplete {
		warnings = append(warnings, "incomplete categories removed from configuration")
	}

	if len(c.CategoryQueries) == 0 {
		return warnings, &corpus.Error{Kind: corpus.ConfigInvalid, Op: "aggregate.Config.Validate", Err: fmt.Errorf("no category defined")}
	}
	return warnings, nil
}

// bucketData is the per-bucket-per-category accumulator of spec.md §3.
type bucketData struct {
	sentimentSum   float64
	sentimentCount uint64
	articles       map[string]struct{}
}

// Job runs one Aggregator pass over a set of corpora. It is single-threaded
// cooperative: Tick processes one corpus per call, and a final Tick
// computes and emits results. Job holds no goroutines of its own.
type Job struct {
	cfg      Config
	analyzer *vader.Analyzer

	corpora []corpus.Corpus
	cursor  int

	buckets     map[string][]bucketData // key: reduced date, value: per-category accumulator
	articleMean map[string]float64      // cache of already-computed per-article means

	// Progress reports (done, total) sentences processed within the
	// current corpus, once every progressEvery sentences; IsRunning is
	// polled cooperatively after every sentence.
	Progress  func(done, total uint64)
	IsRunning func() bool

	// RunID identifies this job in logs and host-side metadata. It plays
	// no role in the aggregation itself; callers that care about
	// distinguishing concurrent jobs over the same shared lexicon/model
	// set it after construction (e.g. to a github.com/google/uuid value).
	RunID string
}

// progressEvery mirrors spec.md §4.6's coarse progress granularity.
const progressEvery = 250000

// NewJob constructs a Job. cfg must already have passed Validate.
func NewJob(cfg Config, analyzer *vader.Analyzer, corpora []corpus.Corpus) *Job {
	return &Job{
		cfg:      cfg,
		analyzer: analyzer,
		corpora:     corpora,
		buckets:     make(map[string][]bucketData),
		articleMean: make(map[string]float64),
		IsRunning:   func() bool { return true },
	}
}

// Row is one emitted output line: a bucket key plus per-category stats in
// CategoryLabels order.
type Row struct {
	Date       string
	Categories []CategoryResult
}

// CategoryResult is one category's statistics within a Row.
type CategoryResult struct {
	Label          string
	Count          uint64
	Mean           float64
	ArticleCount   uint64
	ArticleMean    float64
	HasArticleData bool
}

// Tick processes exactly one corpus, or — once all corpora are consumed —
// computes and returns the final rows. done is true once rows have been
// produced (i.e. this was the final tick).
func (j *Job) Tick() (rows []Row, done bool, err error) {
	if j.cursor < len(j.corpora) {
		err := j.addCorpus(j.corpora[j.cursor])
		j.cursor++
		if err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	rows = j.emit()
	return rows, true, nil
}

// addCorpus walks one corpus's sentences in order, matching categories and
// accumulating bucket/article statistics. It returns CorpusIncomplete
// (non-fatal) if the corpus lacks a date or sentence map.
func (j *Job) addCorpus(c corpus.Corpus) error {
	if len(c.Dates) == 0 {
		return &corpus.Error{Kind: corpus.CorpusIncomplete, Op: "aggregate.Job.addCorpus", Err: fmt.Errorf("missing date map")}
	}
	if len(c.Sentences) == 0 {
		return &corpus.Error{Kind: corpus.CorpusIncomplete, Op: "aggregate.Job.addCorpus", Err: fmt.Errorf("missing sentence map")}
	}

	processArticles := j.cfg.AddArticleSentiment && len(c.Articles) > 0

	dateCursor := newMapCursor(c.Dates)
	articleCursor := newMapCursor(c.Articles)

	bucketKey := j.bucketFor(dateCursor.current())

	var processed uint64
	total := uint64(len(c.Sentences))

	for _, sentence := range c.Sentences {
		if dateCursor.advance(sentence.Begin) {
			bucketKey = j.bucketFor(dateCursor.current())
		}

		if j.cfg.IgnoreEmptyDate && bucketKey == "" {
			processed++
			continue
		}

		var article string
		if processArticles {
			articleCursor.advance(sentence.Begin)
			article = articleCursor.current()
		}

		j.processSentence(c.Tokens, sentence, bucketKey, article)

		processed++
		if j.Progress != nil && processed%progressEvery == 0 {
			j.Progress(processed, total)
		}
		if j.IsRunning != nil && !j.IsRunning() {
			return nil
		}
	}
	return nil
}

// bucketFor reduces a raw date value to the configured resolution; an
// empty value (no covering date entry) stays empty.
func (j *Job) bucketFor(date string) string {
	if date == "" {
		return ""
	}
	return ReduceDate(date, j.cfg.DateResolution)
}

// bucket returns (creating if necessary) the per-category accumulator
// slice for key.
func (j *Job) bucket(key string) []bucketData {
	b, ok := j.buckets[key]
	if !ok {
		b = make([]bucketData, len(j.cfg.CategoryLabels))
		j.buckets[key] = b
	}
	return b
}

// processSentence matches every category against the sentence's tokens,
// scores the sentence at most once (memoized across categories), and
// accumulates per-(bucket, category) statistics. Article ids are recorded
// unconditionally for any matching category — not gated by the threshold
// check, which only gates the sentiment sum/count (see DESIGN.md for why
// this departs from a literal reading of spec.md's prose and instead
// follows the original implementation's unambiguous behavior).
func (j *Job) processSentence(tokens []corpus.Token, sentence corpus.Sentence, bucketKey, article string) {
	end := sentence.End()
	if end > len(tokens) {
		end = len(tokens)
	}

	scored := false
	var sentiment float32
	meetsThreshold := false

	bucket := j.bucket(bucketKey)

	for category := range j.cfg.CategoryLabels {
		found := false
		for w := sentence.Begin; w < end; w++ {
			if j.cfg.CategoryQueries[category].MatchString(tokens[w]) {
				found = true
				break
			}
		}
		if !found {
			continue
		}

		if !scored {
			sentiment = j.analyzer.Analyze(tokens[sentence.Begin:end]).Compound
			if j.cfg.UseThreshold {
				meetsThreshold = MeetsThreshold(float64(sentiment), j.cfg.Threshold)
			}
			scored = true
		}

		data := &bucket[category]
		if !j.cfg.UseThreshold || meetsThreshold {
			data.sentimentSum += float64(sentiment)
			data.sentimentCount++
		}
		if article != "" {
			if data.articles == nil {
				data.articles = make(map[string]struct{})
			}
			data.articles[article] = struct{}{}
		}
	}
}

// MeetsThreshold reports whether a compound score passes the configured
// percent threshold: round(|compound| * 100) >= threshold.
func MeetsThreshold(compound float64, threshold uint8) bool {
	return uint8(math.Round(math.Abs(compound)*100)) >= threshold
}

// emit produces the final Row set in sorted bucket-key order, computing
// article means lazily (and cached across categories/buckets) by
// re-walking every corpus for each referenced article id.
func (j *Job) emit() []Row {
	keys := make([]string, 0, len(j.buckets))
	for k := range j.buckets {
		if k == "" && j.cfg.IgnoreEmptyDate {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		bucket := j.buckets[key]
		row := Row{Date: key, Categories: make([]CategoryResult, len(j.cfg.CategoryLabels))}

		for i, label := range j.cfg.CategoryLabels {
			data := bucket[i]
			var mean float64
			if data.sentimentCount > 0 {
				mean = data.sentimentSum / float64(data.sentimentCount)
			}
			result := CategoryResult{Label: label, Count: data.sentimentCount, Mean: mean}

			if j.cfg.AddArticleSentiment {
				mean, count := j.articleSentiment(data.articles)
				result.HasArticleData = true
				result.ArticleCount = count
				result.ArticleMean = mean
			}
			row.Categories[i] = result
		}
		rows = append(rows, row)
	}
	return rows
}

// articleSentiment averages the cached per-article mean of every article id
// in articles, matching spec.md §4.6's "divide the average of article
// means" rule: each article contributes its own mean with equal weight,
// regardless of how many sentences it contains.
func (j *Job) articleSentiment(articles map[string]struct{}) (mean float64, count uint64) {
	var sum float64
	for article := range articles {
		sum += j.articleScore(article)
		count++
	}
	if count > 0 {
		mean = sum / float64(count)
	}
	return mean, count
}

// articleScore returns the cached mean sentiment of article, computing it
// by scanning every corpus for the article's token range the first time it
// is requested.
func (j *Job) articleScore(article string) float64 {
	if mean, ok := j.articleMean[article]; ok {
		return mean
	}

	var sum float64
	var count uint64

	for _, c := range j.corpora {
		begin, length, ok := findArticle(c.Articles, article)
		if !ok {
			continue
		}
		articleEnd := begin + length

		for _, s := range c.Sentences {
			if s.Begin < begin || s.End() > articleEnd {
				continue
			}
			end := s.End()
			if end > len(c.Tokens) {
				end = len(c.Tokens)
			}
			sentiment := j.analyzer.Analyze(c.Tokens[s.Begin:end]).Compound
			if !j.cfg.UseThreshold || MeetsThreshold(float64(sentiment), j.cfg.Threshold) {
				sum += float64(sentiment)
				count++
			}
		}
	}

	mean := 0.0
	if count > 0 {
		mean = sum / float64(count)
	}
	j.articleMean[article] = mean
	return mean
}

func findArticle(entries []corpus.TextMapEntry, value string) (begin, length int, ok bool) {
	for _, e := range entries {
		if e.Value == value {
			return e.Begin, e.Length, true
		}
	}
	return 0, 0, false
}

// mapCursor walks a corpus.TextMapEntry slice with a sliding pointer,
// advancing whenever the current sentence begins at or after the end of
// the current entry. This mirrors the original's stateful date/article
// scan over a sentence stream sorted in token order.
type mapCursor struct {
	entries []corpus.TextMapEntry
	index   int // 0 means "before first entry"; index N means entries[N-1] is current
	done    bool
}

func newMapCursor(entries []corpus.TextMapEntry) *mapCursor {
	c := &mapCursor{entries: entries}
	if len(entries) > 0 && entries[0].Begin == 0 {
		c.index = 1
	}
	return c
}

// current returns the value of the entry currently selected, or "" if none.
func (c *mapCursor) current() string {
	if c.index == 0 || c.index > len(c.entries) {
		return ""
	}
	return c.entries[c.index-1].Value
}

// advance moves the cursor forward past any entries that end at or before
// sentenceBegin, returning whether the selected entry changed.
func (c *mapCursor) advance(sentenceBegin int) bool {
	if c.done {
		return false
	}

	changed := false
	currentEnd := 0
	if c.index > 0 {
		currentEnd = c.entries[c.index-1].Begin + c.entries[c.index-1].Length
	}

	for sentenceBegin >= currentEnd && len(c.entries) > c.index {
		c.index++
		changed = true
		currentEnd = c.entries[c.index-1].Begin + c.entries[c.index-1].Length
	}

	if sentenceBegin >= currentEnd && currentEnd > 0 {
		c.index = 0
		c.done = true
		changed = true
	}
	return changed
}

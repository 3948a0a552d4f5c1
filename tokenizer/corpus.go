package tokenizer

import "github.com/crawlserv-go/sentimentcore/corpus"

// BuildCorpus splits text into sentences and words, then threads the
// caller-supplied per-sentence date and article labels into corpus.Corpus's
// token, sentence, and text-map shape.
//
// dateOf and articleOf are each called once for every sentence that has at
// least one word, with that sentence's index in split order starting at
// zero, and return the label to attach to that sentence's tokens. Runs of
// consecutive sentences sharing the same label are merged into a single
// corpus.TextMapEntry, matching the non-overlapping run shape the
// Aggregator expects. An empty string means "no label for this sentence"
// and breaks the current run without starting a new one. Sentences that
// tokenize to zero words never appear in the result: their index is still
// counted, but dateOf/articleOf are not called for them and they do not
// break a run.
func BuildCorpus(text string, dateOf, articleOf func(sentenceIndex int) string) corpus.Corpus {
	sentTokens := SentenceTokens(text)

	var c corpus.Corpus
	var dates, articles textMapBuilder

	for i, st := range sentTokens {
		words := Words(st.Text)
		if len(words) == 0 {
			continue
		}

		begin := len(c.Tokens)
		c.Tokens = append(c.Tokens, words...)
		c.Sentences = append(c.Sentences, corpus.Sentence{Begin: begin, Length: len(words)})

		dates.add(dateOf(i), begin, len(words))
		articles.add(articleOf(i), begin, len(words))
	}
	dates.flush()
	articles.flush()
	c.Dates = dates.entries
	c.Articles = articles.entries

	return c
}

// textMapBuilder accumulates a run of consecutive token ranges sharing one
// label value, flushing into entries whenever the label changes, a gap
// opens, or the caller calls flush explicitly.
type textMapBuilder struct {
	entries []corpus.TextMapEntry
	open    bool
	cur     corpus.TextMapEntry
}

func (b *textMapBuilder) add(value string, begin, length int) {
	if value == "" {
		b.flush()
		return
	}
	if b.open && b.cur.Value == value && b.cur.End() == begin {
		b.cur.Length += length
		return
	}
	b.flush()
	b.cur = corpus.TextMapEntry{Begin: begin, Length: length, Value: value}
	b.open = true
}

func (b *textMapBuilder) flush() {
	if b.open {
		b.entries = append(b.entries, b.cur)
		b.open = false
	}
}

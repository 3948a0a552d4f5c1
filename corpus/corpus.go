// Package corpus holds the data model the sentiment pipeline is built on:
// a flat token stream annotated with non-overlapping sentence, date, and
// article ranges. It owns no analysis logic — it is the shape the
// Aggregator walks and the CRF-Tagger labels in place.
package corpus

import "fmt"

// Token is a single pre-tokenized word. Punctuation has already been
// stripped by an upstream tokenizer except where preserved inside a token.
type Token = string

// Sentence is a half-open range [Begin, Begin+Length) into a Corpus's
// Tokens slice.
type Sentence struct {
	Begin  int
	Length int
}

// End returns the exclusive end index of the sentence.
func (s Sentence) End() int {
	return s.Begin + s.Length
}

// TextMapEntry associates a half-open token range with a string value. It
// is used for both the date map (Value is a date string) and the article
// map (Value is an opaque article id). Entries in a map are ordered by
// Begin and non-overlapping; gaps mean "no entry covers this token".
type TextMapEntry struct {
	Begin  int
	Length int
	Value  string
}

// End returns the exclusive end index of the entry's range.
func (e TextMapEntry) End() int {
	return e.Begin + e.Length
}

// Corpus is one unit of input handed to the Aggregator: a token stream plus
// its sentence, date, and article segmentation.
type Corpus struct {
	Tokens   []Token
	Sentences []Sentence
	Dates    []TextMapEntry
	Articles []TextMapEntry
}

// Validate checks the structural invariants spec.md §3 requires of a
// Corpus: sentences are ordered and lie within the token array, and each
// text map is ordered and non-overlapping. It does not require dates or
// articles to cover every token — gaps are legal.
//
// The Aggregator does not call Validate. It reports CorpusIncomplete
// (spec.md §7) only for a corpus with no sentence map or no date map, the
// same condition IsComplete checks.
func (c Corpus) Validate() error {
	n := len(c.Tokens)
	prevEnd := 0
	for i, s := range c.Sentences {
		if s.Length <= 0 {
			return fmt.Errorf("corpus: sentence %d has non-positive length %d", i, s.Length)
		}
		if s.Begin < prevEnd {
			return fmt.Errorf("corpus: sentence %d begins at %d before previous sentence ends at %d", i, s.Begin, prevEnd)
		}
		if s.End() > n {
			return fmt.Errorf("corpus: sentence %d range [%d,%d) exceeds %d tokens", i, s.Begin, s.End(), n)
		}
		prevEnd = s.End()
	}
	if err := validateTextMap("date", c.Dates, n); err != nil {
		return err
	}
	if err := validateTextMap("article", c.Articles, n); err != nil {
		return err
	}
	return nil
}

func validateTextMap(name string, entries []TextMapEntry, n int) error {
	prevEnd := 0
	for i, e := range entries {
		if e.Length <= 0 {
			return fmt.Errorf("corpus: %s entry %d has non-positive length %d", name, i, e.Length)
		}
		if e.Begin < prevEnd {
			return fmt.Errorf("corpus: %s entry %d begins at %d before previous entry ends at %d", name, i, e.Begin, prevEnd)
		}
		if e.End() > n {
			return fmt.Errorf("corpus: %s entry %d range [%d,%d) exceeds %d tokens", name, i, e.Begin, e.End(), n)
		}
		prevEnd = e.End()
	}
	return nil
}

// IsComplete reports whether the corpus has the minimum shape the
// Aggregator needs to run a pass over it: at least one sentence and at
// least one date entry. Aggregator treats a false result as
// CorpusIncomplete and skips the corpus with a warning rather than failing
// the job.
func (c Corpus) IsComplete() bool {
	return len(c.Sentences) > 0 && len(c.Dates) > 0
}

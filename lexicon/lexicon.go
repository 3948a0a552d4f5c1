// Package lexicon loads the two flat files V-Analyzer scores against: the
// term-to-valence sentiment lexicon and the emoji-to-phrase map. Both are
// tab-separated text files (spec.md §4.1, §6); either can be loaded from an
// embedded default or from an arbitrary io.Reader for custom dictionaries.
package lexicon

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/crawlserv-go/sentimentcore/corpus"
	"github.com/crawlserv-go/sentimentcore/data"
)

// Lexicon is a loaded, read-only sentiment dictionary and emoji map. The
// zero value is not usable; construct with Load or Default.
type Lexicon struct {
	terms  map[string]float32
	emojis map[string]string
}

// Default loads the lexicon and emoji files embedded in the binary.
func Default() (*Lexicon, error) {
	return Load(strings.NewReader(data.SentimentLexicon), strings.NewReader(data.Emoji))
}

// Load reads a sentiment lexicon and an emoji map from the given readers.
// Either reader may be nil, in which case that map is left empty.
func Load(lexiconR, emojiR io.Reader) (*Lexicon, error) {
	lx := &Lexicon{
		terms:  make(map[string]float32),
		emojis: make(map[string]string),
	}
	if lexiconR != nil {
		if err := parseLexicon(lexiconR, lx.terms); err != nil {
			return nil, &corpus.Error{Kind: corpus.LexiconUnavailable, Op: "lexicon.Load", Err: err}
		}
	}
	if emojiR != nil {
		if err := parseEmoji(emojiR, lx.emojis); err != nil {
			return nil, &corpus.Error{Kind: corpus.LexiconUnavailable, Op: "lexicon.Load", Err: err}
		}
	}
	return lx, nil
}

// parseLexicon reads "term\tvalence\t..." lines. Lines without a tab, or
// starting with '#', are skipped silently. Only the first two
// tab-separated fields are used; anything after the second tab (stddev,
// raw ratings) is ignored. Valences are parsed and stored as float32,
// matching the reference's single-precision valence table (spec.md §3).
func parseLexicon(r io.Reader, out map[string]float32) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 32)
		if err != nil {
			continue
		}
		out[fields[0]] = float32(v)
	}
	return scanner.Err()
}

// parseEmoji reads "emoji\tphrase" lines.
func parseEmoji(r io.Reader, out map[string]string) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) < 2 {
			continue
		}
		out[fields[0]] = fields[1]
	}
	return scanner.Err()
}

// Valence returns the lexicon valence for term and whether term was found.
func (lx *Lexicon) Valence(term string) (float32, bool) {
	v, ok := lx.terms[term]
	return v, ok
}

// EmojiPhrase returns the English gloss for an emoji token and whether it
// was found.
func (lx *Lexicon) EmojiPhrase(emoji string) (string, bool) {
	p, ok := lx.emojis[emoji]
	return p, ok
}

// Len reports the number of distinct terms in the sentiment lexicon.
func (lx *Lexicon) Len() int {
	return len(lx.terms)
}

// Package vader implements the V-Analyzer: a rule-based lexicon and
// heuristics sentiment scorer for English, ported from the VADER algorithm
// (Hutto & Gilbert, 2014). It operates on a bag of pre-tokenized words from
// one sentence and returns four scores: positive, neutral, negative, and a
// single normalized compound score in [-1, 1].
package vader

import (
	"math"
	"strings"

	"github.com/crawlserv-go/sentimentcore/internal/casefold"
	"github.com/crawlserv-go/sentimentcore/lexicon"
)

// Tunable constants of the algorithm, frozen to match the reference
// implementation bit-for-bit on the metrics it exposes.
const (
	boosterIncrement = 0.293
	boosterDecrement = -0.293
	capsIncrement    = 0.733
	negationScalar   = -0.74
	dampOne          = 0.95
	dampTwo          = 0.90
	butFactorBefore  = 0.5
	butFactorAfter   = 1.5
	neverFactor      = 1.25
	normalizeAlpha   = 15.0

	epsilon = 1.1920929e-7 // float32 machine epsilon, matches std::numeric_limits<float>::epsilon()
)

// Scores is the four-number result of analyzing one sentence. Fields are
// float32 (not float64) because spec.md §3 specifies SentimentScores as
// "all single-precision floats" and spec.md §9 requires the engines to
// "match the original behavior bit-for-bit on the metrics they expose" —
// the reference (original_source/crawlserv/src/Data/Sentiment.hpp) computes
// the whole valence/sentiment pipeline in `float`, not `double`.
type Scores struct {
	Positive float32
	Neutral  float32
	Negative float32
	Compound float32
}

// Analyzer scores sentences against a loaded Lexicon. The zero value is not
// usable; construct with New.
type Analyzer struct {
	lex *lexicon.Lexicon
}

// New returns an Analyzer bound to lex. lex must not be nil.
func New(lex *lexicon.Lexicon) *Analyzer {
	return &Analyzer{lex: lex}
}

// Analyze scores one sentence's worth of tokens. An empty word list returns
// the zero Scores.
func (a *Analyzer) Analyze(words []string) Scores {
	if len(words) == 0 {
		return Scores{}
	}

	capDiff := allCapsDifferential(words)

	newWords := a.substituteEmojis(words)
	if len(newWords) == 0 {
		return Scores{}
	}

	wordsLower := make([]string, len(newWords))
	for i, w := range newWords {
		wordsLower[i] = casefold.ToLower(w)
	}

	sentiments := make([]float32, 0, len(newWords))
	for index := range newWords {
		if _, isBooster := boosterDict[wordsLower[index]]; isBooster {
			sentiments = append(sentiments, 0)
			continue
		}
		if index < len(newWords)-1 && wordsLower[index] == "kind" && wordsLower[index+1] == "of" {
			sentiments = append(sentiments, 0)
			continue
		}
		sentiments = append(sentiments, a.sentimentValence(newWords, wordsLower, index, capDiff))
	}

	butCheck(wordsLower, sentiments)

	return scoreValence(sentiments)
}

// substituteEmojis trims leading/trailing punctuation, control characters,
// and spaces from each token; a trimmed token found in the emoji map is
// replaced by the space-split words of its English gloss, expanding one
// token into several.
func (a *Analyzer) substituteEmojis(words []string) []string {
	newWords := make([]string, 0, len(words))
	for _, word := range words {
		trimmed := trimPunctCntrlSpace(word)

		if phrase, ok := a.lex.EmojiPhrase(trimmed); ok {
			for _, w := range strings.Fields(phrase) {
				newWords = append(newWords, w)
			}
			continue
		}
		newWords = append(newWords, trimmed)
	}
	return newWords
}

func trimPunctCntrlSpace(s string) string {
	isTrim := func(b byte) bool {
		return isASCIIPunct(b) || isASCIICntrl(b) || b == ' '
	}
	start := 0
	for start < len(s) && isTrim(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isTrim(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isASCIIPunct(b byte) bool {
	return (b >= '!' && b <= '/') || (b >= ':' && b <= '@') || (b >= '[' && b <= '`') || (b >= '{' && b <= '~')
}

func isASCIICntrl(b byte) bool {
	return b < 0x20 || b == 0x7f
}

// sentimentValence computes the per-token valence at index, applying the
// lexicon lookup, the "no"-as-negation special case, the ALL-CAPS bump, the
// scalar-modifier/negation/idiom sweep for k in {1,2,3}, and the "least"
// check.
func (a *Analyzer) sentimentValence(words, wordsLower []string, index int, capDiff bool) float32 {
	v, ok := a.lex.Valence(wordsLower[index])
	if !ok {
		return 0
	}
	valence := v

	if wordsLower[index] == "no" && index < len(words)-1 {
		if _, ok := a.lex.Valence(wordsLower[index+1]); ok {
			valence = 0
		}
	}

	if (index > 0 && wordsLower[index-1] == "no") ||
		(index > 1 && wordsLower[index-2] == "no") ||
		(index > 2 && wordsLower[index-3] == "no" &&
			(wordsLower[index-1] == "or" || wordsLower[index-1] == "nor")) {
		valence = v
	}

	if isAllCaps(words[index]) && capDiff {
		if valence > 0 {
			valence += capsIncrement
		} else {
			valence -= capsIncrement
		}
	}

	for startIndex := 0; startIndex < 3; startIndex++ {
		if index <= startIndex {
			continue
		}
		precWord := words[index-(startIndex+1)]
		precWordLower := wordsLower[index-(startIndex+1)]

		if _, inLexicon := a.lex.Valence(precWordLower); inLexicon {
			continue
		}

		s := scalarIncDec(precWord, precWordLower, valence, capDiff)
		if abs32(s) <= epsilon {
			switch startIndex {
			case 1:
				s *= dampOne
			case 2:
				s *= dampTwo
			}
		}
		valence += s

		negationCheck(&valence, wordsLower, startIndex, index)

		if startIndex == 2 {
			specialIdiomsCheck(&valence, wordsLower, index)
		}
	}

	a.leastCheck(&valence, wordsLower, index)

	return valence
}

// leastCheck negates valence if preceded by a non-lexicon "least", unless
// the word before "least" is "at" or "very".
func (a *Analyzer) leastCheck(valence *float32, wordsLower []string, index int) {
	if index < 1 {
		return
	}
	if _, inLexicon := a.lex.Valence(wordsLower[index-1]); inLexicon {
		return
	}
	if wordsLower[index-1] != "least" {
		return
	}
	if index > 1 {
		if wordsLower[index-2] != "at" && wordsLower[index-2] != "very" {
			*valence *= negationScalar
		}
		return
	}
	*valence *= negationScalar
}

// scalarIncDec looks up a booster/dampener contribution for a preceding
// word, flipping sign to match a negative valence and adding the ALL-CAPS
// bump when applicable.
func scalarIncDec(word, wordLower string, valence float32, capDiff bool) float32 {
	scalar, ok := boosterDict[wordLower]
	if !ok {
		return 0
	}
	if valence < 0 {
		scalar *= -1
	}
	if isAllCaps(word) && capDiff {
		if valence > 0 {
			scalar += capsIncrement
		} else {
			scalar -= capsIncrement
		}
	}
	return scalar
}

// isAllCaps reports whether every byte of word satisfies ASCII isupper —
// matching the reference's byte-wise std::isupper sweep exactly. A word
// containing any non-letter byte (digit, punctuation) is therefore not
// ALL-CAPS, same as the original.
func isAllCaps(word string) bool {
	if word == "" {
		return true
	}
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// allCapsDifferential reports whether words contains at least one ALL-CAPS
// word and at least one that is not — using the same byte-wise isAllCaps
// rule as the per-token check, so punctuation-bearing tokens never count
// as ALL-CAPS on either side of the comparison.
func allCapsDifferential(words []string) bool {
	count := 0
	for _, w := range words {
		if isAllCaps(w) {
			count++
		}
	}
	return count > 0 && count < len(words)
}

// negationCheck applies the k=1/2/3 negation rules described in spec.md
// §4.2 step 4's "Scalar modifier sweep".
func negationCheck(valence *float32, wordsLower []string, startIndex, index int) {
	switch startIndex {
	case 0:
		if isNegated(wordsLower[index-(startIndex+1)]) {
			*valence *= negationScalar
		}
	case 1:
		switch {
		case wordsLower[index-2] == "never" && (wordsLower[index-1] == "so" || wordsLower[index-1] == "this"):
			*valence *= neverFactor
		case wordsLower[index-2] == "without" && wordsLower[index-1] == "doubt":
			// no-op, matches reference
		case isNegated(wordsLower[index-(startIndex+1)]):
			*valence *= negationScalar
		}
	case 2:
		switch {
		case wordsLower[index-3] == "never" &&
			(wordsLower[index-2] == "so" || wordsLower[index-2] == "this" ||
				wordsLower[index-1] == "so" || wordsLower[index-1] == "this"):
			*valence *= neverFactor
		case wordsLower[index-3] == "without" &&
			(wordsLower[index-2] == "doubt" || wordsLower[index-1] == "doubt"):
			// no-op, matches reference
		case isNegated(wordsLower[index-(startIndex+1)]):
			*valence *= negationScalar
		}
	}
}

// specialIdiomsCheck tests the 2- and 3-gram windows centered on index
// against the idiom table, overwriting valence on a match, then adds any
// booster bi/tri-gram contribution found in the backward windows.
func specialIdiomsCheck(valence *float32, wordsLower []string, index int) {
	oneZero := wordsLower[index-1] + " " + wordsLower[index]
	twoOneZero := wordsLower[index-2] + " " + wordsLower[index-1] + " " + wordsLower[index]
	twoOne := wordsLower[index-2] + " " + wordsLower[index-1]
	threeTwoOne := wordsLower[index-3] + " " + wordsLower[index-2] + " " + wordsLower[index-1]
	threeTwo := wordsLower[index-3] + " " + wordsLower[index-2]

	for _, seq := range [...]string{oneZero, twoOneZero, twoOne, threeTwoOne, threeTwo} {
		if v, ok := specialCases[seq]; ok {
			*valence = v
			break
		}
	}

	if len(wordsLower)-1 > index {
		zeroOne := wordsLower[index] + " " + wordsLower[index+1]
		if v, ok := specialCases[zeroOne]; ok {
			*valence = v
		}
	}

	if len(wordsLower)-1 > index+1 {
		zeroOneTwo := wordsLower[index] + " " + wordsLower[index+1] + " " + wordsLower[index+2]
		if v, ok := specialCases[zeroOneTwo]; ok {
			*valence = v
		}
	}

	for _, nGram := range [...]string{threeTwoOne, threeTwo, twoOne} {
		if v, ok := boosterDict[nGram]; ok {
			*valence += v
		}
	}
}

// butCheck multiplies all valences before the first "but" by
// butFactorBefore and all valences after it by butFactorAfter.
func butCheck(wordsLower []string, sentiments []float32) {
	butIndex := -1
	for i, w := range wordsLower {
		if w == "but" {
			butIndex = i
			break
		}
	}
	if butIndex < 0 {
		return
	}
	for i := range sentiments {
		switch {
		case i < butIndex:
			sentiments[i] *= butFactorBefore
		case i > butIndex:
			sentiments[i] *= butFactorAfter
		}
	}
}

// isNegated reports whether wordLower is a negation term or contains the
// contraction fragment "n't".
func isNegated(wordLower string) bool {
	if _, ok := negate[wordLower]; ok {
		return true
	}
	return strings.Contains(wordLower, "n't")
}

// abs32 is float32's math.Abs: the reference computes the whole valence
// pipeline in single precision, so comparisons and accumulations here must
// not round-trip through float64.
func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// sqrt32 is float32's math.Sqrt. math.Sqrt itself only takes/returns
// float64; the float64 round-trip here is unavoidable (Go has no float32
// sqrt intrinsic) but is exact for the single finite-precision input/output
// it's given, so it does not reintroduce double-precision accumulation.
func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// normalize maps a raw valence sum to [-1, 1] via score/sqrt(score^2+alpha),
// clamped at the boundary.
func normalize(score float32) float32 {
	n := score / sqrt32(score*score+normalizeAlpha)
	if n < -1 {
		return -1
	}
	if n > 1 {
		return 1
	}
	return n
}

// scoreValence computes the compound score and the positive/neutral/
// negative proportions from the per-token valence list.
func scoreValence(sentiments []float32) Scores {
	if len(sentiments) == 0 {
		return Scores{}
	}

	var sum float32
	for _, s := range sentiments {
		sum += s
	}

	var positiveSum, negativeSum float32
	var neutralCount int
	for _, s := range sentiments {
		switch {
		case s > epsilon:
			positiveSum += s + 1.0
		case s < -epsilon:
			negativeSum += s - 1.0
		default:
			neutralCount++
		}
	}

	total := positiveSum + abs32(negativeSum) + float32(neutralCount)

	result := Scores{Compound: normalize(sum)}
	if total > 0 {
		result.Positive = abs32(positiveSum / total)
		result.Negative = abs32(negativeSum / total)
		result.Neutral = abs32(float32(neutralCount) / total)
	}
	return result
}

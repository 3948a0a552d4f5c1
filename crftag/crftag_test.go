package crftag

import (
	"strings"
	"testing"

	"github.com/crawlserv-go/sentimentcore/crfmodel"
	"github.com/crawlserv-go/sentimentcore/pattern"
	"github.com/stretchr/testify/require"
)

// testModel builds a tiny two-label model: a unigram pattern keyed on the
// token text, and a constant bigram pattern that favors staying on the same
// label across a transition. Weights are hand-picked so POS is favored at
// position 0 and the bigram term favors repeating whatever label preceded
// it, giving predictable Viterbi/maxent/forced outcomes to assert against.
func testModel(t *testing.T) *crfmodel.Model {
	t.Helper()
	dump := "" +
		"#mdl#0#8\n" +
		"#rdr#2/0/0\n" +
		"9:u:%x[0,0]," +
		"3:b:T," +
		"#qrk#2\n3:POS,3:NEG," +
		"#qrk#3\n4:u:hi,5:u:bye,3:b:T," +
		"0=2.0\n1=-2.0\n2=-1.0\n3=1.0\n4=1.0\n5=-1.0\n6=-1.0\n7=1.0\n"

	m, err := crfmodel.Load(strings.NewReader(dump))
	require.NoError(t, err)
	return m
}

func TestBuildSequenceCollectsUnigramAndBigramObservations(t *testing.T) {
	m := testModel(t)
	rows := []pattern.Row{{"hi"}, {"bye"}}

	seq, err := BuildSequence(m, rows, nil)
	require.NoError(t, err)

	require.Equal(t, []int{0}, seq.UObs[0]) // u:hi
	require.Equal(t, []int{2}, seq.BObs[0]) // b:T present, unused at t=0
	require.Equal(t, []int{1}, seq.UObs[1]) // u:bye
	require.Equal(t, []int{2}, seq.BObs[1])
	require.Equal(t, []int{-1, -1}, seq.Forced)
}

func TestBuildSequenceDropsUnknownObservationsSilently(t *testing.T) {
	m := testModel(t)
	rows := []pattern.Row{{"unseen-token"}}

	seq, err := BuildSequence(m, rows, nil)
	require.NoError(t, err)
	require.Empty(t, seq.UObs[0])
	require.Equal(t, []int{2}, seq.BObs[0])
}

func decodeLabels(t *testing.T, m *crfmodel.Model, ids []int) []string {
	t.Helper()
	out := make([]string, len(ids))
	for i, id := range ids {
		lbl, ok := m.Labels.Lookup(uint64(id))
		require.True(t, ok)
		out[i] = lbl
	}
	return out
}

func TestDecodeViterbiFavorsRepeatingLabelViaBigram(t *testing.T) {
	m := testModel(t)
	seq, err := BuildSequence(m, []pattern.Row{{"hi"}, {"bye"}}, nil)
	require.NoError(t, err)

	ids, score, err := DecodeViterbi(m, seq, crfmodel.Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"POS", "POS"}, decodeLabels(t, m, ids))
	require.InDelta(t, 2.0, score, 1e-9)
}

func TestDecodeViterbiMaxEntIgnoresBigramTransitions(t *testing.T) {
	m := testModel(t)
	seq, err := BuildSequence(m, []pattern.Row{{"hi"}, {"bye"}}, nil)
	require.NoError(t, err)

	ids, _, err := DecodeViterbi(m, seq, crfmodel.Options{MaxEnt: true})
	require.NoError(t, err)
	require.Equal(t, []string{"POS", "NEG"}, decodeLabels(t, m, ids))
}

func TestDecodeViterbiForcedLabelPinsPosition(t *testing.T) {
	m := testModel(t)
	seq, err := BuildSequence(m, []pattern.Row{{"hi"}, {"bye"}}, func(i int) (string, bool) {
		if i == 0 {
			return "NEG", true
		}
		return "", false
	})
	require.NoError(t, err)

	ids, _, err := DecodeViterbi(m, seq, crfmodel.Options{Force: true})
	require.NoError(t, err)
	require.Equal(t, []string{"NEG", "NEG"}, decodeLabels(t, m, ids))
}

func TestDecodePosteriorReturnsPerPositionMarginals(t *testing.T) {
	m := testModel(t)
	seq, err := BuildSequence(m, []pattern.Row{{"hi"}, {"bye"}}, nil)
	require.NoError(t, err)

	ids, scores, err := DecodePosterior(m, seq, crfmodel.Options{})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.Len(t, scores, 2)
	for _, s := range scores {
		require.GreaterOrEqual(t, s, 0.0)
		require.LessOrEqual(t, s, 1.0+1e-9)
	}
}

func TestTagAppendsDecodedLabelToEachToken(t *testing.T) {
	m := testModel(t)
	out, err := Tag(m, crfmodel.Options{}, []string{"hi", "bye"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"hi POS", "bye POS"}, out)
}

func TestTagEmptyInputReturnsNil(t *testing.T) {
	m := testModel(t)
	out, err := Tag(m, crfmodel.Options{}, nil, nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestTagStillLabelsTokenWithNoDirectUnigramMatch(t *testing.T) {
	// The token itself contributes no unigram observation, but the model
	// still decodes a label for it from the bigram transition alone.
	m := testModel(t)
	out, err := Tag(m, crfmodel.Options{}, []string{"hi", "never-seen-in-training"}, nil)
	require.NoError(t, err)
	require.Equal(t, "hi POS", out[0])
	require.Equal(t, 1, strings.Count(out[1], " "))
}

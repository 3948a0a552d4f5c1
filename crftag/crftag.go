// Package crftag implements the CRF-Tagger: applying a loaded linear-chain
// model's compiled patterns to a raw token sequence, scoring the resulting
// lattice, and decoding the most likely label sequence by Viterbi
// max-product or, when requested, forward-backward posterior decoding.
package crftag

import (
	"fmt"
	"math"

	"github.com/crawlserv-go/sentimentcore/crfmodel"
	"github.com/crawlserv-go/sentimentcore/pattern"
	"github.com/crawlserv-go/sentimentcore/quark"
)

// maxTaggable is the largest sequence length the tagger will process;
// longer inputs are silently truncated and the remainder left unlabeled.
const maxTaggable = 1<<32 - 1

// Sequence is a tokenized input after its patterns have been applied and
// interned against a Model: per-position unigram/bigram observation ids,
// plus an optional forced label id for positions the caller pinned.
type Sequence struct {
	Rows   []pattern.Row
	UObs   [][]int
	BObs   [][]int
	Forced []int // -1 when the position carries no forced label
}

// BuildSequence executes every compiled pattern in m at each position of
// rows, interning the resulting observation strings against m's (already
// locked) observation table. An intern miss — an observation the model
// never saw during training — is dropped silently rather than treated as
// an error. forcedLabelOf, when non-nil, is consulted per position for a
// caller-supplied gold label to pin.
func BuildSequence(m *crfmodel.Model, rows []pattern.Row, forcedLabelOf func(t int) (string, bool)) (*Sequence, error) {
	T := len(rows)
	seq := &Sequence{
		Rows:   rows,
		UObs:   make([][]int, T),
		BObs:   make([][]int, T),
		Forced: make([]int, T),
	}
	for t := range seq.Forced {
		seq.Forced[t] = -1
	}

	for t := 0; t < T; t++ {
		for _, pat := range m.Patterns {
			obs, err := pat.Exec(rows, t)
			if err != nil {
				return nil, fmt.Errorf("crftag: position %d: %w", t, err)
			}
			id := m.Observations.Intern(obs)
			if id == quark.NotFound {
				continue
			}
			kind := m.Kinds[id]
			if kind&crfmodel.KindUnigram != 0 {
				seq.UObs[t] = append(seq.UObs[t], int(id))
			}
			if kind&crfmodel.KindBigram != 0 {
				seq.BObs[t] = append(seq.BObs[t], int(id))
			}
		}
		if forcedLabelOf != nil {
			if lbl, ok := forcedLabelOf(t); ok {
				id := m.Labels.Intern(lbl)
				if id != quark.NotFound {
					seq.Forced[t] = int(id)
				}
			}
		}
	}
	return seq, nil
}

// psiAt returns the flat index of (t, yp, y) into a T*Y*Y row-major matrix.
func psiAt(Y, t, yp, y int) int {
	return t*Y*Y + yp*Y + y
}

// buildPsi computes the log-space transition matrix Ψ_t(y',y) summing
// active unigram feature weights at (t,y) and, unless maxent disables
// bigram transitions entirely, active bigram feature weights at (t,y',y)
// for t ≥ 1.
func buildPsi(m *crfmodel.Model, seq *Sequence, maxent bool) []float64 {
	Y := m.NLabels
	T := len(seq.Rows)
	psi := make([]float64, T*Y*Y)

	for t := 0; t < T; t++ {
		for y := 0; y < Y; y++ {
			sum := 0.0
			for _, o := range seq.UObs[t] {
				sum += m.Theta[m.UOff[o]+y]
			}
			for yp := 0; yp < Y; yp++ {
				psi[psiAt(Y, t, yp, y)] = sum
			}
		}
	}

	if maxent {
		return psi
	}

	for t := 1; t < T; t++ {
		for yp := 0; yp < Y; yp++ {
			for y := 0; y < Y; y++ {
				sum := 0.0
				d := yp*Y + y
				for _, o := range seq.BObs[t] {
					sum += m.Theta[m.BOff[o]+d]
				}
				psi[psiAt(Y, t, yp, y)] += sum
			}
		}
	}
	return psi
}

// applyForced pins psi so that decoding can only traverse the forced label
// at each position that carries one: every arc leading into, or out of, a
// different label at that position is driven to log-space -infinity.
func applyForced(psi []float64, Y, T int, forced []int) {
	negInf := math.Inf(-1)

	for t := 0; t < T; t++ {
		cyr := forced[t]
		if cyr < 0 {
			continue
		}
		if t != 0 {
			for y := 0; y < Y; y++ {
				if y == cyr {
					continue
				}
				for yp := 0; yp < Y; yp++ {
					psi[psiAt(Y, t, yp, y)] = negInf
				}
			}
		}
		if t != T-1 {
			for y := 0; y < Y; y++ {
				if y == cyr {
					continue
				}
				for yn := 0; yn < Y; yn++ {
					psi[psiAt(Y, t+1, y, yn)] = negInf
				}
			}
		}
	}
	if T > 0 && forced[0] >= 0 {
		yr := forced[0]
		for y := 0; y < Y; y++ {
			if y == yr {
				continue
			}
			for yp := 0; yp < Y; yp++ {
				psi[psiAt(Y, 0, yp, y)] = negInf
			}
		}
	}
}

// DecodeViterbi finds the highest-scoring label path through seq by
// max-product (computed as max-sum in log-space), returning the decoded
// label id at each position and the path's total score.
func DecodeViterbi(m *crfmodel.Model, seq *Sequence, opts crfmodel.Options) ([]int, float64, error) {
	Y := m.NLabels
	T := len(seq.Rows)
	if T == 0 {
		return nil, 0, nil
	}
	if Y == 0 {
		return nil, 0, fmt.Errorf("crftag: model has no labels")
	}

	psi := buildPsi(m, seq, opts.MaxEnt)
	if opts.Force {
		applyForced(psi, Y, T, seq.Forced)
	}

	back := make([]int, T*Y)
	cur := make([]float64, Y)
	old := make([]float64, Y)

	for y := 0; y < Y; y++ {
		cur[y] = psi[psiAt(Y, 0, 0, y)]
	}
	for t := 1; t < T; t++ {
		copy(old, cur)
		for y := 0; y < Y; y++ {
			best := math.Inf(-1)
			bestIdx := 0
			for yp := 0; yp < Y; yp++ {
				val := old[yp] + psi[psiAt(Y, t, yp, y)]
				if val > best {
					best = val
					bestIdx = yp
				}
			}
			back[t*Y+y] = bestIdx
			cur[y] = best
		}
	}

	bestY := 0
	for y := 1; y < Y; y++ {
		if cur[y] > cur[bestY] {
			bestY = y
		}
	}
	score := cur[bestY]

	labels := make([]int, T)
	bst := bestY
	for t := T; t > 0; t-- {
		yp := 0
		if t != 1 {
			yp = back[(t-1)*Y+bst]
		}
		labels[t-1] = bst
		bst = yp
	}
	return labels, score, nil
}

// DecodePosterior runs full forward-backward over seq and decodes each
// position independently as the label maximizing the marginal posterior
// α_t(y)·β_t(y)/Z_t, rather than the single best joint path.
func DecodePosterior(m *crfmodel.Model, seq *Sequence, opts crfmodel.Options) ([]int, []float64, error) {
	Y := m.NLabels
	T := len(seq.Rows)
	if T == 0 {
		return nil, nil, nil
	}
	if Y == 0 {
		return nil, nil, fmt.Errorf("crftag: model has no labels")
	}

	logPsi := buildPsi(m, seq, opts.MaxEnt)
	if opts.Force {
		applyForced(logPsi, Y, T, seq.Forced)
	}
	psi := make([]float64, len(logPsi))
	for i, v := range logPsi {
		psi[i] = math.Exp(v)
	}

	alpha := make([]float64, T*Y)
	beta := make([]float64, T*Y)

	for y := 0; y < Y; y++ {
		alpha[y] = psi[psiAt(Y, 0, 0, y)]
	}
	normalizeRow(alpha[:Y])

	for t := 1; t < T; t++ {
		for y := 0; y < Y; y++ {
			sum := 0.0
			for yp := 0; yp < Y; yp++ {
				sum += alpha[(t-1)*Y+yp] * psi[psiAt(Y, t, yp, y)]
			}
			alpha[t*Y+y] = sum
		}
		normalizeRow(alpha[t*Y : t*Y+Y])
	}

	for yp := 0; yp < Y; yp++ {
		beta[(T-1)*Y+yp] = 1.0 / float64(Y)
	}
	for t := T - 1; t > 0; t-- {
		for yp := 0; yp < Y; yp++ {
			sum := 0.0
			for y := 0; y < Y; y++ {
				sum += beta[t*Y+y] * psi[psiAt(Y, t, yp, y)]
			}
			beta[(t-1)*Y+yp] = sum
		}
		normalizeRow(beta[(t-1)*Y : (t-1)*Y+Y])
	}

	labels := make([]int, T)
	scores := make([]float64, T)
	es := make([]float64, Y)
	for t := 0; t < T; t++ {
		z := 0.0
		for y := 0; y < Y; y++ {
			es[y] = alpha[t*Y+y] * beta[t*Y+y]
			z += es[y]
		}
		bestY := 0
		for y := 1; y < Y; y++ {
			if es[y] > es[bestY] {
				bestY = y
			}
		}
		labels[t] = bestY
		if z > 0 {
			scores[t] = es[bestY] / z
		}
	}
	return labels, scores, nil
}

// normalizeRow scales row in place so it sums to 1, matching the
// forward-backward recursion's per-position rescaling that keeps the
// running products from underflowing over a long sequence. A zero-sum row
// (every entry zero) is left untouched.
func normalizeRow(row []float64) {
	sum := 0.0
	for _, v := range row {
		sum += v
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / sum
	for i := range row {
		row[i] *= inv
	}
}

// Tag decodes tokens against m and returns each token with its decoded
// label appended, separated by a single space. An empty input is returned
// unmodified. Inputs longer than 2³²-1 tokens are silently truncated; the
// returned slice still has the original length, with untouched tokens past
// the cutoff left unlabeled. forcedLabelOf, when non-nil and opts.Force is
// set, pins the decoding at any position it returns a known label for.
func Tag(m *crfmodel.Model, opts crfmodel.Options, tokens []string, forcedLabelOf func(i int) (string, bool)) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	limit := len(tokens)
	if uint64(limit) > maxTaggable {
		limit = maxTaggable
	}

	rows := make([]pattern.Row, limit)
	for i := 0; i < limit; i++ {
		rows[i] = pattern.Row{tokens[i]}
	}

	seq, err := BuildSequence(m, rows, forcedLabelOf)
	if err != nil {
		return nil, err
	}

	var labelIDs []int
	if opts.Posterior {
		labelIDs, _, err = DecodePosterior(m, seq, opts)
	} else {
		labelIDs, _, err = DecodeViterbi(m, seq, opts)
	}
	if err != nil {
		return nil, err
	}

	out := make([]string, len(tokens))
	copy(out, tokens)
	for i, id := range labelIDs {
		lbl, ok := m.Labels.Lookup(uint64(id))
		if !ok {
			continue
		}
		out[i] = out[i] + " " + lbl
	}
	return out, nil
}

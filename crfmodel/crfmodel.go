// Package crfmodel loads a linear-chain CRF model: compiled patterns, the
// label and observation interners, and a dense feature-weight vector. The
// format is the one wapiti-style model files use: a header line, the
// pattern/reader dump, then a weight list.
package crfmodel

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crawlserv-go/sentimentcore/internal/netstring"
	"github.com/crawlserv-go/sentimentcore/pattern"
	"github.com/crawlserv-go/sentimentcore/quark"
)

// Kind classifies an observation by which feature families it contributes
// to, taken from the first character of its interned string ('u', 'b', or
// '*' for both).
type Kind byte

const (
	KindUnigram Kind = 1
	KindBigram  Kind = 2
	KindBoth    Kind = 3
)

// Model is a synchronized, ready-to-decode linear-chain CRF: compiled
// patterns plus per-observation feature offsets into a flat weight vector.
type Model struct {
	Type int // 0 for a legacy file, otherwise the stored model type tag

	Patterns []*pattern.Pattern
	NUnigram int // patterns whose kind contributes unigram features
	NBigram  int // patterns whose kind contributes bigram features

	Labels       *quark.Interner
	Observations *quark.Interner

	NLabels int // Y
	NObs    int // O

	// Kinds, UOff, and BOff are indexed by observation id.
	Kinds []Kind
	UOff  []int // unigram feature block offset, valid when Kinds[o]&1 != 0
	BOff  []int // bigram feature block offset, valid when Kinds[o]&2 != 0

	NFeatures int // F, the total length of Theta
	Theta     []float64
}

// MaxEnt, Posterior, and Force mirror the decoding-mode switches a loaded
// model is run with; Options itself carries no loading logic.
type Options struct {
	MaxEnt    bool
	Posterior bool
	Force     bool
}

// Load reads a full model file (header, reader dump, weight list) from r.
func Load(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)

	modelType, nact, err := readModelHeader(br)
	if err != nil {
		return nil, err
	}

	m := &Model{Type: modelType}
	if err := m.loadReader(br); err != nil {
		return nil, err
	}
	m.sync()

	for i := uint64(0); i < nact; i++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("crfmodel: reading weight %d: %w", i, err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, fmt.Errorf("crfmodel: invalid weight line %q", line)
		}
		f, err := strconv.ParseUint(line[:eq], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("crfmodel: invalid feature id in %q: %w", line, err)
		}
		v, err := strconv.ParseFloat(line[eq+1:], 64)
		if err != nil {
			return nil, fmt.Errorf("crfmodel: invalid weight value in %q: %w", line, err)
		}
		if f >= uint64(len(m.Theta)) {
			return nil, fmt.Errorf("crfmodel: feature id %d out of range (F=%d)", f, len(m.Theta))
		}
		m.Theta[f] = v
	}

	return m, nil
}

// readModelHeader accepts either "#mdl#<type>#<nact>\n" (current) or
// "#mdl#<nact>\n" (legacy, implying type 0).
func readModelHeader(br *bufio.Reader) (modelType int, nact uint64, err error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return 0, 0, fmt.Errorf("crfmodel: cannot read header: %w", err)
	}
	if n, errScan := fmt.Sscanf(line, "#mdl#%d#%d\n", &modelType, &nact); errScan == nil && n == 2 {
		return modelType, nact, nil
	}
	if n, errScan := fmt.Sscanf(line, "#mdl#%d\n", &nact); errScan == nil && n == 1 {
		return 0, nact, nil
	}
	return 0, 0, fmt.Errorf("crfmodel: invalid model header %q", line)
}

// loadReader parses "#rdr#<npats>/<ntoks>/<autouni>\n" (or the legacy
// two-field form), then npats netstring pattern sources, then the label
// and observation interner dumps.
func (m *Model) loadReader(br *bufio.Reader) error {
	line, err := br.ReadString('\n')
	if err != nil {
		return fmt.Errorf("crfmodel: cannot read reader header: %w", err)
	}
	var npats, ntoks uint32
	var autouni int
	if n, errScan := fmt.Sscanf(line, "#rdr#%d/%d/%d\n", &npats, &ntoks, &autouni); errScan != nil || n != 3 {
		if n, errScan := fmt.Sscanf(line, "#rdr#%d/%d\n", &npats, &ntoks); errScan != nil || n != 2 {
			return fmt.Errorf("crfmodel: broken file, invalid reader format %q", line)
		}
	}

	for p := uint32(0); p < npats; p++ {
		src, err := netstring.Read(br)
		if err != nil {
			return fmt.Errorf("crfmodel: pattern %d: %w", p, err)
		}
		pat, err := pattern.Compile(src)
		if err != nil {
			return fmt.Errorf("crfmodel: pattern %d: %w", p, err)
		}
		m.Patterns = append(m.Patterns, pat)
		if len(src) == 0 {
			continue
		}
		switch lowerByte(src[0]) {
		case 'u':
			m.NUnigram++
		case 'b':
			m.NBigram++
		case '*':
			m.NUnigram++
			m.NBigram++
		}
	}

	m.Labels = quark.New()
	if err := m.Labels.Load(br); err != nil {
		return fmt.Errorf("crfmodel: labels: %w", err)
	}
	m.Observations = quark.New()
	if err := m.Observations.Load(br); err != nil {
		return fmt.Errorf("crfmodel: observations: %w", err)
	}
	return nil
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// sync derives per-observation kinds and feature offsets from the label and
// observation counts, locking both interners against further insertion.
func (m *Model) sync() {
	Y := int(m.Labels.Count())
	O := int(m.Observations.Count())
	m.NLabels = Y
	m.NObs = O

	m.Kinds = make([]Kind, O)
	m.UOff = make([]int, O)
	m.BOff = make([]int, O)

	F := 0
	for o := 0; o < O; o++ {
		obs, _ := m.Observations.Lookup(uint64(o))
		var kind Kind
		if len(obs) > 0 {
			switch obs[0] {
			case 'u':
				kind = KindUnigram
			case 'b':
				kind = KindBigram
			case '*':
				kind = KindBoth
			}
		}
		m.Kinds[o] = kind
		if kind&KindUnigram != 0 {
			m.UOff[o] = F
			F += Y
		}
		if kind&KindBigram != 0 {
			m.BOff[o] = F
			F += Y * Y
		}
	}
	m.NFeatures = F
	m.Theta = make([]float64, F)

	m.Labels.Lock(true)
	m.Observations.Lock(true)
}

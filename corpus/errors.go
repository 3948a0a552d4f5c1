package corpus

import "fmt"

// ErrKind classifies the fatal and non-fatal error conditions the pipeline
// surfaces to its host, per spec.md §7. The kind is not a Go error type in
// its own right — it is carried inside an *Error so callers can switch on
// it without string-matching a message.
type ErrKind int

const (
	// ConfigInvalid: no category defined, or both label and query missing
	// at the same index after trimming. Fatal to job start.
	ConfigInvalid ErrKind = iota
	// LexiconUnavailable: cannot open the dictionary or emoji file. Fatal
	// to job start.
	LexiconUnavailable
	// ModelUnavailable: cannot open the CRF model file. Fatal to tagger
	// initialization.
	ModelUnavailable
	// ModelCorrupt: malformed header, unknown pattern command, invalid
	// netstring length, or out-of-range feature id. Fatal.
	ModelCorrupt
	// PatternInvalid: unescaped * or ?, missing closing ], unterminated
	// "...". Fatal at compile time.
	PatternInvalid
	// DecodeFailed: arithmetic error while decoding one sentence.
	// Propagated to the caller; the host may skip the sentence.
	DecodeFailed
	// CorpusIncomplete: corpus missing date or sentence map; the
	// Aggregator logs a warning and skips that corpus.
	CorpusIncomplete
)

func (k ErrKind) String() string {
	switch k {
	case ConfigInvalid:
		return "ConfigInvalid"
	case LexiconUnavailable:
		return "LexiconUnavailable"
	case ModelUnavailable:
		return "ModelUnavailable"
	case ModelCorrupt:
		return "ModelCorrupt"
	case PatternInvalid:
		return "PatternInvalid"
	case DecodeFailed:
		return "DecodeFailed"
	case CorpusIncomplete:
		return "CorpusIncomplete"
	default:
		return "Unknown"
	}
}

// Error is the structured error object spec.md §7 requires fatal and
// non-fatal conditions to surface as. Op names the operation that failed
// (e.g. "lexicon.Load", "pattern.Compile").
type Error struct {
	Kind ErrKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error kind is fatal to job/tagger start, as
// opposed to the two per-item kinds (DecodeFailed, CorpusIncomplete) a
// caller may recover from by skipping the offending item.
func (k ErrKind) Fatal() bool {
	return k != DecodeFailed && k != CorpusIncomplete
}

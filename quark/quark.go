// Package quark implements a persistent string-to-id interner: monotonic
// dense ids for distinct strings, with the ability to freeze further
// insertions and to load a dump written in the netstring-wrapped pattern
// wapiti-style model files use. The underlying map+slice representation is
// one of the structures sanctioned in place of a critical-bit trie —
// lookups stay O(1) amortized, which is the only contract callers rely on.
package quark

import (
	"bufio"
	"fmt"
	"io"

	"github.com/crawlserv-go/sentimentcore/internal/netstring"
)

// NotFound is returned by Lookup/Intern when a key has no id: Lookup for
// any unknown id, Intern for an unknown key once the interner is locked.
const NotFound = ^uint64(0)

// Interner maps strings to dense, monotonically assigned ids.
type Interner struct {
	ids    map[string]uint64
	byID   []string
	locked bool
}

// New returns an empty Interner.
func New() *Interner {
	return &Interner{ids: make(map[string]uint64)}
}

// Intern returns the id for key, assigning the next available id if key is
// new. Once locked, unknown keys return NotFound instead of being added.
func (q *Interner) Intern(key string) uint64 {
	if id, ok := q.ids[key]; ok {
		return id
	}
	if q.locked {
		return NotFound
	}
	id := uint64(len(q.byID))
	q.ids[key] = id
	q.byID = append(q.byID, key)
	return id
}

// Lookup returns the string behind id, or ("", false) if id is unassigned.
func (q *Interner) Lookup(id uint64) (string, bool) {
	if id >= uint64(len(q.byID)) {
		return "", false
	}
	return q.byID[id], true
}

// Lock freezes the interner: further Intern calls on unknown keys return
// NotFound instead of allocating a new id. Passing false unlocks it again.
func (q *Interner) Lock(lock bool) {
	q.locked = lock
}

// Locked reports whether the interner currently rejects new keys.
func (q *Interner) Locked() bool {
	return q.locked
}

// Count returns the number of distinct interned strings.
func (q *Interner) Count() uint64 {
	return uint64(len(q.byID))
}

// Load reads a "#qrk#<count>\n" header followed by count netstrings from r,
// interning each one in order (so dumps round-trip the original ids
// assuming the interner was empty beforehand).
func (q *Interner) Load(r io.Reader) error {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil {
		return fmt.Errorf("quark: cannot read header: %w", err)
	}
	var count uint64
	if _, err := fmt.Sscanf(header, "#qrk#%d\n", &count); err != nil {
		return fmt.Errorf("quark: invalid header %q: %w", header, err)
	}

	for i := uint64(0); i < count; i++ {
		s, err := netstring.Read(br)
		if err != nil {
			return fmt.Errorf("quark: entry %d: %w", i, err)
		}
		q.Intern(s)
	}
	return nil
}

package quark

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternAssignsDenseMonotonicIDs(t *testing.T) {
	q := New()
	require.Equal(t, uint64(0), q.Intern("cat"))
	require.Equal(t, uint64(1), q.Intern("dog"))
	require.Equal(t, uint64(0), q.Intern("cat"))
	require.Equal(t, uint64(2), q.Count())
}

func TestLookupRoundTrips(t *testing.T) {
	q := New()
	id := q.Intern("hello")
	got, ok := q.Lookup(id)
	require.True(t, ok)
	require.Equal(t, "hello", got)

	_, ok = q.Lookup(99)
	require.False(t, ok)
}

func TestLockRejectsNewKeys(t *testing.T) {
	q := New()
	q.Intern("known")
	q.Lock(true)

	require.Equal(t, NotFound, q.Intern("unknown"))
	require.Equal(t, uint64(0), q.Intern("known"))

	q.Lock(false)
	require.Equal(t, uint64(1), q.Intern("unknown"))
}

func TestLoadParsesNetstringDump(t *testing.T) {
	dump := "#qrk#3\n3:cat,3:dog,4:bird,"
	q := New()
	err := q.Load(strings.NewReader(dump))
	require.NoError(t, err)
	require.Equal(t, uint64(3), q.Count())

	id := q.Intern("dog")
	require.Equal(t, uint64(1), id)
}

func TestLoadToleratesTrailingNewlinePerEntry(t *testing.T) {
	dump := "#qrk#2\n3:cat,\n3:dog,\n"
	q := New()
	err := q.Load(strings.NewReader(dump))
	require.NoError(t, err)
	require.Equal(t, uint64(2), q.Count())
}

func TestLoadRejectsBadHeader(t *testing.T) {
	q := New()
	err := q.Load(strings.NewReader("not-a-header\n"))
	require.Error(t, err)
}

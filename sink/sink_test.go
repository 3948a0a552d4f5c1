package sink

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/crawlserv-go/sentimentcore/aggregate"
)

func testRows() []aggregate.Row {
	return []aggregate.Row{
		{
			Date: "2020-01",
			Categories: []aggregate.CategoryResult{
				{Label: "politics", Count: 3, Mean: 0.25, HasArticleData: true, ArticleCount: 2, ArticleMean: 0.1},
			},
		},
		{
			Date: "2020-02",
			Categories: []aggregate.CategoryResult{
				{Label: "politics", Count: 1, Mean: -0.5},
			},
		},
	}
}

func TestStdoutWritesEveryRowAndCategory(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)
	require.NoError(t, s.Write(testRows()))
	require.NoError(t, s.Close())

	out := buf.String()
	require.Contains(t, out, "2020-01")
	require.Contains(t, out, "2020-02")
	require.Contains(t, out, "politics")
	require.Contains(t, out, "article_count")
}

func TestStdoutRejectsWriteAfterClose(t *testing.T) {
	s := NewStdout(nil)
	require.NoError(t, s.Close())
	require.Error(t, s.Write(testRows()))
}

func TestBoltPersistsOneJSONValuePerRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.db")
	b, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, b.Write(testRows()))
	require.NoError(t, b.Close())

	db, err := bbolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	defer db.Close()

	err = db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(rowsBucket)
		require.NotNil(t, bucket)
		raw := bucket.Get([]byte("2020-01"))
		require.NotNil(t, raw)
		var row aggregate.Row
		require.NoError(t, json.Unmarshal(raw, &row))
		require.Equal(t, "2020-01", row.Date)
		require.Equal(t, uint64(3), row.Categories[0].Count)
		return nil
	})
	require.NoError(t, err)
}

func TestParquetWritesFileWithoutError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.parquet")
	p := NewParquet(path)
	require.NoError(t, p.Write(testRows()))
	require.NoError(t, p.Close())
}

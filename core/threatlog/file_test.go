package threatlog_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/threatlog"
)

func sampleRecord(id string) threatlog.Record {
	return threatlog.Record{
		Timestamp:   "2025-03-14T09:26:53+03:00",
		IP:          "203.0.113.7",
		UserAgent:   "curl/8.0",
		URI:         "/book?trip=1",
		Method:      "GET",
		Threat:      "Dangerous pattern detected",
		Category:    "sqli",
		IncidentID:  id,
		InputSample: "1 UNION SELECT",
		InputLength: 14,
	}
}

func TestFileSink_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "waf.log")
	sink := threatlog.NewFileSink(path)
	assert.Equal(t, path, sink.Path())

	require.NoError(t, sink.Write(context.Background(), sampleRecord("AAAAAAAAAAAA")))
	require.NoError(t, sink.Write(context.Background(), sampleRecord("BBBBBBBBBBBB")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "{\n    \"timestamp\": \"2025-03-14T09:26:53+03:00\",\n")
	assert.Equal(t, 2, strings.Count(content, "\n---\n"))
	assert.True(t, strings.HasSuffix(content, "}\n---\n"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm()&0o640)

	records, err := threatlog.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, sampleRecord("AAAAAAAAAAAA"), records[0])
	assert.Equal(t, "BBBBBBBBBBBB", records[1].IncidentID)
}

func TestFileSink_NoHTMLEscaping(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "waf.log")
	r := sampleRecord("CCCCCCCCCCCC")
	r.InputSample = "&lt;script&gt;"
	require.NoError(t, threatlog.NewFileSink(path).Write(context.Background(), r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"input_sample": "&lt;script&gt;"`)
}

func TestFileSink_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "waf.log")
	sink := threatlog.NewFileSink(path)

	const n = 64
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sink.Write(context.Background(), sampleRecord(fmt.Sprintf("%012d", i))))
		}()
	}
	wg.Wait()

	records, err := threatlog.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, n)

	seen := map[string]bool{}
	for _, r := range records {
		seen[r.IncidentID] = true
	}
	assert.Len(t, seen, n)
}

func TestFileSink_SeparateSinksSameFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "waf.log")
	a := threatlog.NewFileSink(path)
	b := threatlog.NewFileSink(path)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Write(context.Background(), sampleRecord(fmt.Sprintf("A%011d", i))))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Write(context.Background(), sampleRecord(fmt.Sprintf("B%011d", i))))
		}()
	}
	wg.Wait()

	records, err := threatlog.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 40)
}

func TestFileSink_UnwritableDirectory(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := threatlog.NewFileSink(filepath.Join(blocker, "waf.log")).Write(context.Background(), sampleRecord("X"))
	assert.Error(t, err)
}

func TestNewFileSink_DefaultPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, threatlog.DefaultPath, threatlog.NewFileSink("").Path())
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		records, err := threatlog.ReadFile(filepath.Join(t.TempDir(), "none.log"))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("trailing partial entry is skipped", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "waf.log")
		require.NoError(t, threatlog.NewFileSink(path).Write(context.Background(), sampleRecord("AAAAAAAAAAAA")))

		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
		require.NoError(t, err)
		_, err = f.WriteString("{\n    \"timestamp\": \"2025")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		records, err := threatlog.ReadFile(path)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "waf.log")
		require.NoError(t, os.WriteFile(path, []byte("not json\n---\n"), 0o600))

		_, err := threatlog.ReadFile(path)
		assert.Error(t, err)
	})
}

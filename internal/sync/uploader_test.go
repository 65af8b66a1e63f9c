package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	stdsync "sync"
	"sync/atomic"
	"testing"
	"time"

	"filebox/internal/metrics"
	"filebox/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePutter records Put calls and can simulate failures and slow transfers
type fakePutter struct {
	mu       stdsync.Mutex
	keys     []string
	types    map[string]string
	current  int
	maxSeen  int
	delay    time.Duration
	failKeys map[string]bool
}

func (f *fakePutter) Put(_ context.Context, key string, reader io.Reader, size int64, opts storage.PutOptions) error {
	f.mu.Lock()
	f.current++
	if f.current > f.maxSeen {
		f.maxSeen = f.current
	}
	f.keys = append(f.keys, key)
	if f.types == nil {
		f.types = make(map[string]string)
	}
	f.types[key] = opts.ContentType
	fail := f.failKeys[key]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.current--
	f.mu.Unlock()

	if fail {
		return errors.New("simulated store failure")
	}
	return nil
}

func (f *fakePutter) putKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func newTestUploader(job Job, store Putter) *Uploader {
	return NewUploader(job, store, metrics.New(), zap.NewNop())
}

func fakeEntries(n int) []FileEntry {
	entries := make([]FileEntry, n)
	for i := range entries {
		entries[i] = FileEntry{
			RelPath: fmt.Sprintf("file-%03d.txt", i),
			AbsPath: fmt.Sprintf("/fake/file-%03d.txt", i),
		}
	}
	return entries
}

func TestUploaderEachFileExactlyOnce(t *testing.T) {
	const l = 25
	entries := fakeEntries(l)

	for _, concurrency := range []int{1, 2, l, l + 10} {
		t.Run(fmt.Sprintf("concurrency-%d", concurrency), func(t *testing.T) {
			store := &fakePutter{}
			u := newTestUploader(Job{Prefix: "", Concurrency: concurrency}, store)
			u.readFile = func(path string) ([]byte, error) {
				return []byte("data for " + path), nil
			}

			results := u.Run(context.Background(), entries)
			require.Len(t, results, l)

			// Result i corresponds to entry i and every key was put exactly once
			want := make([]string, l)
			for i, e := range entries {
				want[i] = e.RelPath
				assert.Equal(t, e.RelPath, results[i].Key)
				assert.Equal(t, StatusUploaded, results[i].Status)
				assert.NoError(t, results[i].Err)
			}
			assert.ElementsMatch(t, want, store.putKeys())
		})
	}
}

func TestUploaderDryRunNeverTouchesStore(t *testing.T) {
	entries := fakeEntries(10)
	store := &fakePutter{}

	var reads int64
	u := newTestUploader(Job{Concurrency: 4, DryRun: true}, store)
	u.readFile = func(string) ([]byte, error) {
		atomic.AddInt64(&reads, 1)
		return nil, nil
	}

	results := u.Run(context.Background(), entries)

	require.Len(t, results, 10)
	assert.Zero(t, atomic.LoadInt64(&reads), "dry run must not read files")
	for _, r := range results {
		assert.Equal(t, StatusSkipped, r.Status)
	}
	assert.Empty(t, store.putKeys())
}

func TestUploaderClampsWorkersToFileCount(t *testing.T) {
	entries := fakeEntries(3)
	store := &fakePutter{delay: 20 * time.Millisecond}

	u := newTestUploader(Job{Concurrency: 100}, store)
	u.readFile = func(string) ([]byte, error) { return []byte("x"), nil }

	results := u.Run(context.Background(), entries)

	require.Len(t, results, 3)
	assert.LessOrEqual(t, store.maxSeen, 3)
}

func TestUploaderEmptyInput(t *testing.T) {
	store := &fakePutter{}
	u := newTestUploader(Job{Concurrency: 5}, store)

	results := u.Run(context.Background(), nil)

	assert.Empty(t, results)
	assert.Empty(t, store.putKeys())
}

func TestUploaderAppliesPrefixAndContentType(t *testing.T) {
	entries := []FileEntry{
		{RelPath: "sub/b.jpg", AbsPath: "/fake/sub/b.jpg"},
		{RelPath: "file.xyz", AbsPath: "/fake/file.xyz"},
	}
	store := &fakePutter{}

	u := newTestUploader(Job{Prefix: "backup/", Concurrency: 2}, store)
	u.readFile = func(string) ([]byte, error) { return []byte("x"), nil }

	results := u.Run(context.Background(), entries)

	require.Len(t, results, 2)
	assert.Equal(t, "backup/sub/b.jpg", results[0].Key)
	assert.Equal(t, "image/jpeg", store.types["backup/sub/b.jpg"])
	assert.Equal(t, "application/octet-stream", store.types["backup/file.xyz"])
}

func TestUploaderFileDeletedAfterEnumeration(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("data"), 0o644))
	}

	entries, err := Walk(root)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// One file vanishes between enumeration and read time
	require.NoError(t, os.Remove(filepath.Join(root, "b.txt")))

	store := &fakePutter{}
	u := newTestUploader(Job{Concurrency: 2}, store)

	results := u.Run(context.Background(), entries)
	summary := Summarize(results)

	assert.Equal(t, 2, summary.Uploaded)
	assert.Equal(t, 1, summary.Failed)
	assert.Error(t, summary.Err())

	for _, r := range results {
		if r.Path == "b.txt" {
			assert.ErrorIs(t, r.Err, ErrFileRead)
		} else {
			assert.Equal(t, StatusUploaded, r.Status)
		}
	}
	assert.ElementsMatch(t, []string{"a.txt", "c.txt"}, store.putKeys())
}

func TestUploaderTransferFailureDoesNotAbortSiblings(t *testing.T) {
	entries := fakeEntries(5)
	store := &fakePutter{failKeys: map[string]bool{"file-002.txt": true}}

	u := newTestUploader(Job{Concurrency: 2}, store)
	u.readFile = func(string) ([]byte, error) { return []byte("x"), nil }

	results := u.Run(context.Background(), entries)
	summary := Summarize(results)

	assert.Equal(t, 4, summary.Uploaded)
	assert.Equal(t, 1, summary.Failed)
	assert.ErrorIs(t, results[2].Err, ErrTransfer)
	assert.Error(t, summary.Err())
}

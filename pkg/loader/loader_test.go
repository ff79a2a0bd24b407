package loader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lintang-b-s/drive-search/pkg"
	"github.com/lintang-b-s/drive-search/pkg/drive"
	"github.com/lintang-b-s/drive-search/pkg/extract"
	"github.com/lintang-b-s/drive-search/pkg/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	files    []drive.File
	contents map[string]string
	listErr  error

	listCalls int32
	started   chan struct{}
	release   chan struct{}
}

func (s *fakeSource) ListFiles(ctx context.Context) ([]drive.File, error) {
	atomic.AddInt32(&s.listCalls, 1)
	if s.started != nil {
		s.started <- struct{}{}
		<-s.release
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.files, nil
}

func (s *fakeSource) Download(ctx context.Context, file drive.File, w io.Writer) error {
	content, ok := s.contents[file.ID]
	if !ok {
		return pkg.WrapErrorf(nil, pkg.ErrDownloadFailure, "no content for %s", file.ID)
	}
	_, err := io.WriteString(w, content)
	return err
}

type fakeMetrics struct {
	mu      sync.Mutex
	phases  []string
	indexed int
	skipped int
}

func (m *fakeMetrics) ObservePhase(phase string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phases = append(m.phases, phase)
}

func (m *fakeMetrics) ObserveDocuments(indexed, skipped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed += indexed
	m.skipped += skipped
}

func newTestLoader(t *testing.T, discard bool) (*Loader, *index.Store, *fakeMetrics, string) {
	t.Helper()
	log := zap.NewNop()
	store := index.NewStore(t.TempDir(), log)
	downloads := t.TempDir()
	m := &fakeMetrics{}
	l := New(index.NewBuilder(nil, log), store, extract.New(), Config{
		DownloadDir:       downloads,
		Workers:           2,
		DiscardDownloads:  discard,
		AllowedExtensions: []string{"txt", "doc", "pdf"},
	}, log, m)
	return l, store, m, downloads
}

func newDriveSource() *fakeSource {
	return &fakeSource{
		files: []drive.File{
			{ID: "1", Name: "a.txt", Link: "https://drive/1", OwnedByMe: true},
			{ID: "2", Name: "b.txt", Link: "https://drive/2", OwnedByMe: true},
			{ID: "3", Name: "old.doc", Link: "https://drive/3", OwnedByMe: true},
			{ID: "4", Name: "shared.pdf", Link: "https://drive/4", OwnedByMe: false},
			{ID: "5", Name: "lost.txt", Link: "https://drive/5", OwnedByMe: true},
			{ID: "6", Name: "A.txt", Link: "https://drive/6", OwnedByMe: true},
			{ID: "7", Name: "a.txt", Link: "https://drive/7", OwnedByMe: true},
		},
		contents: map[string]string{
			"1": "cats and dogs",
			"2": "dogs bark",
			"3": "legacy binary",
			"6": "upper case name",
			"7": "second cat",
		},
	}
}

func TestLoad(t *testing.T) {
	l, store, m, downloads := newTestLoader(t, true)
	src := newDriveSource()

	res, err := l.Load(context.Background(), "alice", src, false)
	require.NoError(t, err)
	assert.True(t, res.Loaded)
	assert.True(t, res.Built)
	assert.Equal(t, 4, res.Documents)
	assert.Equal(t, 2, res.Skipped)
	assert.GreaterOrEqual(t, res.Timers.Total.Passed, res.Timers.BuildIndex.Passed)
	assert.False(t, res.Timers.Total.EndTime.Before(res.Timers.Total.StartTime))

	idx, links, err := store.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, idx.GetPostingList("dogs"))
	assert.Equal(t, []string{"a_1.txt"}, idx.GetPostingList("second"))
	assert.Equal(t, index.DocLink{ID: "7", Link: "https://drive/7"}, links["a_1.txt"])
	assert.Equal(t, index.DocLink{ID: "6", Link: "https://drive/6"}, links["A.txt"])
	assert.NotContains(t, links, "old.doc")
	assert.NotContains(t, links, "shared.pdf")

	entries, err := os.ReadDir(filepath.Join(downloads, "alice"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ElementsMatch(t, []string{"retrieve", "download", "build_index", "total"}, m.phases)
	assert.Equal(t, 4, m.indexed)
	assert.Equal(t, 2, m.skipped)
}

func TestLoadKeepsDownloads(t *testing.T) {
	l, _, _, downloads := newTestLoader(t, false)

	_, err := l.Load(context.Background(), "alice", newDriveSource(), false)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(downloads, "alice"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestLoadExistingIndex(t *testing.T) {
	l, _, _, _ := newTestLoader(t, true)
	src := newDriveSource()
	ctx := context.Background()

	_, err := l.Load(ctx, "alice", src, false)
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&src.listCalls))

	t.Run("load skips the build", func(t *testing.T) {
		res, err := l.Load(ctx, "alice", src, false)
		require.NoError(t, err)
		assert.True(t, res.Loaded)
		assert.False(t, res.Built)
		assert.Equal(t, int32(1), atomic.LoadInt32(&src.listCalls))
	})

	t.Run("reload rebuilds", func(t *testing.T) {
		res, err := l.Load(ctx, "alice", src, true)
		require.NoError(t, err)
		assert.True(t, res.Built)
		assert.Equal(t, int32(2), atomic.LoadInt32(&src.listCalls))
	})
}

func TestLoadErrors(t *testing.T) {
	l, store, _, _ := newTestLoader(t, true)
	ctx := context.Background()

	t.Run("listing fails", func(t *testing.T) {
		src := &fakeSource{listErr: errors.New("quota exceeded")}
		_, err := l.Load(ctx, "alice", src, false)
		assert.EqualError(t, err, "quota exceeded")
		assert.False(t, store.Exists("alice"))
	})

	t.Run("invalid identifier", func(t *testing.T) {
		_, err := l.Load(ctx, "../bob", newDriveSource(), false)
		assert.True(t, errors.Is(err, pkg.ErrBadParamInput))
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := l.Load(cctx, "carol", newDriveSource(), false)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, store.Exists("carol"))
	})

	t.Run("empty collection", func(t *testing.T) {
		res, err := l.Load(ctx, "dave", &fakeSource{}, false)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Documents)
		assert.True(t, store.Exists("dave"))
	})
}

func TestLoadSharesInFlightBuild(t *testing.T) {
	l, _, _, _ := newTestLoader(t, true)
	src := newDriveSource()
	src.started = make(chan struct{}, 2)
	src.release = make(chan struct{})

	var wg sync.WaitGroup
	results := make([]Result, 2)
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = l.Load(context.Background(), "alice", src, true)
	}()
	<-src.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = l.Load(context.Background(), "alice", src, true)
	}()
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.listCalls))
	assert.Equal(t, results[0], results[1])
}

func TestFilterFiles(t *testing.T) {
	files := []drive.File{
		{Name: "report.PDF", OwnedByMe: true},
		{Name: "notes.txt", OwnedByMe: true},
		{Name: "~$notes.docx", OwnedByMe: true},
		{Name: "photo.png", OwnedByMe: true},
		{Name: "README", OwnedByMe: true},
		{Name: "shared.txt", OwnedByMe: false},
		{Name: "slides.pptx", OwnedByMe: true},
	}

	got := []string{}
	for _, f := range FilterFiles(files, DefaultAllowedExtensions) {
		got = append(got, f.Name)
	}
	assert.Equal(t, []string{"report.PDF", "notes.txt", "slides.pptx"}, got)
}

func TestDisambiguate(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name:  "unique names kept",
			files: []string{"a.txt", "B.txt"},
			want:  []string{"a.txt", "B.txt"},
		},
		{
			name:  "repeats numbered and lower-cased",
			files: []string{"Report.TXT", "Report.TXT", "Report.TXT"},
			want:  []string{"Report.TXT", "report_1.txt", "report_2.txt"},
		},
		{
			name:  "generated name already taken",
			files: []string{"a_1.txt", "a.txt", "a.txt"},
			want:  []string{"a_1.txt", "a.txt", "a_2.txt"},
		},
		{
			name:  "no extension",
			files: []string{"notes", "notes"},
			want:  []string{"notes", "notes_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := make([]drive.File, len(tt.files))
			for i, name := range tt.files {
				files[i] = drive.File{Name: name}
			}
			assert.Equal(t, tt.want, Disambiguate(files))
		})
	}
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(root, "one.txt"), []byte("red apples"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "two.txt"), []byte("green apples"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "one.txt"), []byte("blue sky"), 0600))

	src := NewDirSource(root)
	files, err := src.ListFiles(context.Background())
	require.NoError(t, err)
	ids := []string{}
	for _, f := range files {
		ids = append(ids, f.ID)
		assert.True(t, strings.HasPrefix(f.Link, "file://"))
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"one.txt", "sub/one.txt", "sub/two.txt"}, ids)

	l, store, _, _ := newTestLoader(t, true)
	res, err := l.Load(context.Background(), "local", src, false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Documents)

	idx, links, err := store.Load("local")
	require.NoError(t, err)
	assert.Len(t, idx.GetPostingList("apples"), 2)
	assert.Len(t, links, 3)
}

func TestProgressSource(t *testing.T) {
	l, store, _, _ := newTestLoader(t, true)
	src := &fakeSource{
		files: []drive.File{
			{ID: "1", Name: "a.txt", Link: "https://drive/1", OwnedByMe: true},
			{ID: "2", Name: "b.txt", Link: "https://drive/2", OwnedByMe: true},
			{ID: "3", Name: "c.txt", Link: "https://drive/3", OwnedByMe: false},
		},
		contents: map[string]string{"1": "cats", "2": "dogs"},
	}

	progress := NewProgressSource(src, []string{"txt"}, io.Discard)
	res, err := l.Load(context.Background(), "alice", progress, true)
	require.NoError(t, err)
	progress.Finish()

	assert.Equal(t, 2, res.Documents)
	assert.Equal(t, 2, progress.Downloaded())
	assert.True(t, store.Exists("alice"))
}

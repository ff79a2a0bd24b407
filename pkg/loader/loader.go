// Package loader downloads a user's Drive documents, extracts their text and rebuilds the user's
// index.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lintang-b-s/drive-search/pkg"
	"github.com/lintang-b-s/drive-search/pkg/concurrent"
	"github.com/lintang-b-s/drive-search/pkg/drive"
	"github.com/lintang-b-s/drive-search/pkg/index"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var DefaultAllowedExtensions = []string{"doc", "docx", "pdf", "txt", "ppt", "pptx"}

type Source interface {
	ListFiles(ctx context.Context) ([]drive.File, error)
	Download(ctx context.Context, file drive.File, w io.Writer) error
}

type Extractor interface {
	ExtractFile(path string) (string, error)
}

type IndexStore interface {
	Exists(id string) bool
	Save(id string, idx *index.InvertedIndex, links index.DocLinks) error
}

type Metrics interface {
	ObservePhase(phase string, d time.Duration)
	ObserveDocuments(indexed, skipped int)
}

type Config struct {
	DownloadDir       string
	Workers           int
	DiscardDownloads  bool
	AllowedExtensions []string
}

type Timer struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Passed    float64   `json:"passed"`
}

func newTimer(start, end time.Time) Timer {
	return Timer{StartTime: start, EndTime: end, Passed: end.Sub(start).Seconds()}
}

type Timers struct {
	Total      Timer `json:"total"`
	Retrieve   Timer `json:"retrieve"`
	Download   Timer `json:"download"`
	BuildIndex Timer `json:"build_index"`
}

type Result struct {
	Loaded    bool
	Built     bool
	Documents int
	Skipped   int
	Timers    Timers
}

// Loader rebuilds indexes from a Source. Builds for the same identifier never overlap: a second
// request waits for and shares the result of the one in flight.
type Loader struct {
	builder   *index.Builder
	store     IndexStore
	extractor Extractor
	cfg       Config
	log       *zap.Logger
	metrics   Metrics
	group     singleflight.Group
}

func New(builder *index.Builder, store IndexStore, extractor Extractor, cfg Config, log *zap.Logger,
	metrics Metrics) *Loader {
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = DefaultAllowedExtensions
	}
	return &Loader{
		builder:   builder,
		store:     store,
		extractor: extractor,
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
	}
}

// Load builds the index of id from src unless one already exists. With force the index is always
// rebuilt.
func (l *Loader) Load(ctx context.Context, id string, src Source, force bool) (Result, error) {
	if !force && l.store.Exists(id) {
		return Result{Loaded: true}, nil
	}

	v, err, shared := l.group.Do(id, func() (any, error) {
		return l.build(ctx, id, src)
	})
	if err != nil {
		return Result{}, err
	}
	if shared {
		l.log.Debug("joined in-flight build", zap.String("identifier", id))
	}
	return v.(Result), nil
}

type document struct {
	file drive.File
	name string
	seq  int
}

type fetched struct {
	document
	text string
	err  error
}

func (l *Loader) build(ctx context.Context, id string, src Source) (Result, error) {
	res := Result{}
	totalStart := time.Now()

	files, err := src.ListFiles(ctx)
	if err != nil {
		return res, err
	}
	files = FilterFiles(files, l.cfg.AllowedExtensions)
	retrieveEnd := time.Now()
	res.Timers.Retrieve = newTimer(totalStart, retrieveEnd)
	l.log.Info("retrieved drive files", zap.String("identifier", id), zap.Int("files", len(files)))

	downloadStart := time.Now()
	dir, err := l.downloadDir(id)
	if err != nil {
		return res, err
	}

	names := Disambiguate(files)
	docs := make([]document, len(files))
	for i, f := range files {
		docs[i] = document{file: f, name: names[i], seq: i}
	}

	texts := make(map[string]string, len(docs))
	links := make(index.DocLinks, len(docs))

	for _, f := range concurrent.Run(l.cfg.Workers, docs, func(d document) fetched {
		return l.fetch(ctx, src, dir, d)
	}) {
		if f.err != nil {
			l.log.Warn("skipping document", zap.String("identifier", id), zap.String("document", f.name),
				zap.Error(f.err))
			res.Skipped++
			continue
		}
		texts[f.name] = f.text
		links[f.name] = index.DocLink{ID: f.file.ID, Link: f.file.Link}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	downloadEnd := time.Now()
	res.Timers.Download = newTimer(downloadStart, downloadEnd)

	buildStart := time.Now()
	idx := l.builder.Build(texts)
	if err := l.store.Save(id, idx, links); err != nil {
		return res, err
	}
	end := time.Now()
	res.Timers.BuildIndex = newTimer(buildStart, end)
	res.Timers.Total = newTimer(totalStart, end)

	res.Loaded = true
	res.Built = true
	res.Documents = len(texts)
	l.observe(res)

	l.log.Info("index loaded", zap.String("identifier", id), zap.Int("documents", res.Documents),
		zap.Int("skipped", res.Skipped), zap.Float64("seconds", res.Timers.Total.Passed))
	return res, nil
}

func (l *Loader) observe(res Result) {
	if l.metrics == nil {
		return
	}
	l.metrics.ObservePhase("retrieve", res.Timers.Retrieve.EndTime.Sub(res.Timers.Retrieve.StartTime))
	l.metrics.ObservePhase("download", res.Timers.Download.EndTime.Sub(res.Timers.Download.StartTime))
	l.metrics.ObservePhase("build_index", res.Timers.BuildIndex.EndTime.Sub(res.Timers.BuildIndex.StartTime))
	l.metrics.ObservePhase("total", res.Timers.Total.EndTime.Sub(res.Timers.Total.StartTime))
	l.metrics.ObserveDocuments(res.Documents, res.Skipped)
}

func (l *Loader) downloadDir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "invalid identifier %q", id)
	}
	dir := filepath.Join(l.cfg.DownloadDir, id)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("error when creating download directory %s: %w", dir, err)
	}
	return dir, nil
}

// fetch downloads one document and extracts its text. The local file name is derived from the
// position, not the drive name, which may contain path separators.
func (l *Loader) fetch(ctx context.Context, src Source, dir string, d document) fetched {
	res := fetched{document: d}
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	path := filepath.Join(dir, fmt.Sprintf("%05d%s", d.seq, strings.ToLower(filepath.Ext(d.name))))
	f, err := os.Create(path)
	if err != nil {
		res.err = pkg.WrapErrorf(err, pkg.ErrDownloadFailure, "error when creating %s", path)
		return res
	}
	if l.cfg.DiscardDownloads {
		defer os.Remove(path)
	}

	err = src.Download(ctx, d.file, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = pkg.WrapErrorf(cerr, pkg.ErrDownloadFailure, "error when closing %s", path)
	}
	if err != nil {
		res.err = err
		return res
	}

	res.text, res.err = l.extractor.ExtractFile(path)
	return res
}

// FilterFiles keeps the files owned by the user whose extension is allowed and whose name does not
// start with "~" (office lock files).
func FilterFiles(files []drive.File, allowed []string) []drive.File {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, ext := range allowed {
		allowedSet[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	out := make([]drive.File, 0, len(files))
	for _, f := range files {
		if !f.OwnedByMe || strings.HasPrefix(f.Name, "~") {
			continue
		}
		dot := strings.LastIndex(f.Name, ".")
		if dot < 0 {
			continue
		}
		if _, ok := allowedSet[strings.ToLower(f.Name[dot+1:])]; !ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Disambiguate returns a unique document name per file. The first file with a given name keeps
// it; the n-th repeat (n >= 1) becomes "<name>_<n><ext>" with name and extension lower-cased.
func Disambiguate(files []drive.File) []string {
	seen := make(map[string]int, len(files))
	used := make(map[string]struct{}, len(files))
	names := make([]string, len(files))

	for i, f := range files {
		n := seen[f.Name]
		seen[f.Name]++
		if n == 0 {
			if _, taken := used[f.Name]; !taken {
				names[i] = f.Name
				used[f.Name] = struct{}{}
				continue
			}
			n = 1
		}

		ext := filepath.Ext(f.Name)
		base := strings.ToLower(strings.TrimSuffix(f.Name, ext))
		ext = strings.ToLower(ext)
		for ; ; n++ {
			name := fmt.Sprintf("%s_%d%s", base, n, ext)
			if _, taken := used[name]; !taken {
				names[i] = name
				used[name] = struct{}{}
				break
			}
		}
	}
	return names
}

package loader

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/lintang-b-s/drive-search/pkg/drive"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// ProgressSource draws a progress bar over the downloads of the wrapped Source. The bar is sized
// when the files are listed, counting only the files the loader will fetch.
type ProgressSource struct {
	src     Source
	allowed []string
	w       io.Writer

	mu         sync.Mutex
	bar        *progressbar.ProgressBar
	downloaded atomic.Int64
}

// NewProgressSource draws on w, or on an ansi aware stdout when w is nil.
func NewProgressSource(src Source, allowed []string, w io.Writer) *ProgressSource {
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	if w == nil {
		w = ansi.NewAnsiStdout()
	}
	return &ProgressSource{src: src, allowed: allowed, w: w}
}

func (p *ProgressSource) ListFiles(ctx context.Context) ([]drive.File, error) {
	files, err := p.src.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.bar = progressbar.NewOptions(len(FilterFiles(files, p.allowed)),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Fetching documents..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	p.mu.Unlock()
	return files, nil
}

func (p *ProgressSource) Download(ctx context.Context, file drive.File, w io.Writer) error {
	err := p.src.Download(ctx, file, w)
	p.downloaded.Add(1)

	p.mu.Lock()
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
	p.mu.Unlock()
	return err
}

// Downloaded is the number of download attempts so far, failed ones included.
func (p *ProgressSource) Downloaded() int {
	return int(p.downloaded.Load())
}

// Finish completes the bar.
func (p *ProgressSource) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

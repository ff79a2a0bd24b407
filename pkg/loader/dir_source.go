package loader

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/drive-search/pkg"
	"github.com/lintang-b-s/drive-search/pkg/drive"
)

// DirSource serves the regular files below a local directory as if they were drive files owned by
// the user. File ids are slash separated paths relative to the root and links are file:// urls.
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

func (s *DirSource) ListFiles(ctx context.Context) ([]drive.File, error) {
	abs, err := filepath.Abs(s.root)
	if err != nil {
		return nil, err
	}

	files := []drive.File{}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		files = append(files, drive.File{
			ID:        filepath.ToSlash(rel),
			Name:      d.Name(),
			Link:      "file://" + filepath.ToSlash(path),
			OwnedByMe: true,
		})
		return nil
	})
	if err != nil {
		return nil, pkg.WrapErrorf(err, pkg.ErrBadParamInput, "error when listing %s", s.root)
	}
	return files, nil
}

func (s *DirSource) Download(ctx context.Context, file drive.File, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(file.ID)))
	if err != nil {
		return pkg.WrapErrorf(err, pkg.ErrDownloadFailure, "error when opening %s", file.ID)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return pkg.WrapErrorf(err, pkg.ErrDownloadFailure, "error when copying %s", file.ID)
	}
	return nil
}

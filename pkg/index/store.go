package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/lintang-b-s/drive-search/pkg"

	"go.uber.org/zap"
)

const (
	IndexFile    = "index.json"
	DocLinksFile = "docs_urls.json"
	TermsFile    = "terms.json"
	DocIDsFile   = "docs.json"
)

var regexIdentifier = regexp.MustCompile(`^[A-Za-z0-9._@-]+$`)

// Store keeps one directory of json files per identifier under dir.
type Store struct {
	dir   string
	log   *zap.Logger
	locks sync.Map // identifier -> *sync.RWMutex
}

func NewStore(dir string, log *zap.Logger) *Store {
	return &Store{dir: dir, log: log}
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns the directory holding the index files of id.
func (s *Store) Path(id string) (string, error) {
	if id == "." || id == ".." || !regexIdentifier.MatchString(id) {
		return "", pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "invalid identifier %q", id)
	}
	return filepath.Join(s.dir, id), nil
}

func (s *Store) lock(id string) *sync.RWMutex {
	l, _ := s.locks.LoadOrStore(id, &sync.RWMutex{})
	return l.(*sync.RWMutex)
}

// Exists reports whether an index has been saved for id.
func (s *Store) Exists(id string) bool {
	dir, err := s.Path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(dir, IndexFile))
	return err == nil
}

// Save replaces the index files of id. Each file is renamed into place after it is fully written,
// index.json last, and readers of the same Store never see a mix of old and new files.
func (s *Store) Save(id string, idx *InvertedIndex, links DocLinks) error {
	dir, err := s.Path(id)
	if err != nil {
		return err
	}
	if err := idx.CheckLinks(links); err != nil {
		return err
	}
	if links == nil {
		links = DocLinks{}
	}

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("error when creating index directory %s: %w", dir, err)
	}

	files := []struct {
		name string
		data any
	}{
		{DocLinksFile, links},
		{TermsFile, idx.Terms()},
		{DocIDsFile, idx.DocIDMap()},
		{IndexFile, idx.Postings},
	}
	for _, f := range files {
		buf, err := json.Marshal(f.data)
		if err != nil {
			return fmt.Errorf("error when marshalling %s: %w", f.name, err)
		}
		if err := writeFileAtomic(dir, f.name, buf); err != nil {
			return err
		}
	}

	s.log.Info("index saved", zap.String("identifier", id), zap.Int("terms", len(idx.Postings)),
		zap.Int("documents", len(idx.DocIDs)))
	return nil
}

// Load reads the index of id. A missing or unreadable index.json or docs_urls.json is reported as
// ErrIndexAbsent, never partially returned.
func (s *Store) Load(id string) (*InvertedIndex, DocLinks, error) {
	dir, err := s.Path(id)
	if err != nil {
		return nil, nil, err
	}

	l := s.lock(id)
	l.RLock()
	defer l.RUnlock()

	idx := NewInvertedIndex()
	if err := s.readJSON(dir, IndexFile, &idx.Postings); err != nil {
		return nil, nil, err
	}
	links := DocLinks{}
	if err := s.readJSON(dir, DocLinksFile, &links); err != nil {
		return nil, nil, err
	}
	if idx.Postings == nil {
		return nil, nil, pkg.WrapErrorf(nil, pkg.ErrIndexAbsent, "index of %s is null", id)
	}
	for term, docs := range idx.Postings {
		for doc, freq := range docs {
			if freq < 1 {
				return nil, nil, pkg.WrapErrorf(nil, pkg.ErrIndexAbsent, "index of %s has count %d for %q in %q",
					id, freq, term, doc)
			}
		}
	}

	// docs.json is a cache, rebuilt from the postings when it cannot be used
	idx.DocIDs = nil
	docIDMap := map[int]string{}
	if err := s.readJSON(dir, DocIDsFile, &docIDMap); err == nil {
		idx.DocIDs, err = docIDsFromMap(docIDMap)
		if err != nil {
			s.log.Warn("ignoring doc id table", zap.String("identifier", id), zap.Error(err))
		}
	}
	if len(idx.DocIDs) == 0 {
		idx.DocIDs = idx.Documents()
	}

	return idx, links, nil
}

func (s *Store) readJSON(dir, name string, v any) error {
	buf, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return pkg.WrapErrorf(err, pkg.ErrIndexAbsent, "%s not found", name)
	}
	if err != nil {
		return fmt.Errorf("error when reading %s: %w", name, err)
	}
	if err := json.Unmarshal(buf, v); err != nil {
		s.log.Warn("corrupt index file", zap.String("path", filepath.Join(dir, name)), zap.Error(err))
		return pkg.WrapErrorf(err, pkg.ErrIndexAbsent, "%s is corrupt", name)
	}
	return nil
}

// Remove deletes every index file of id.
func (s *Store) Remove(id string) error {
	dir, err := s.Path(id)
	if err != nil {
		return err
	}
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()
	return os.RemoveAll(dir)
}

func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("error when creating temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error when writing %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error when syncing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("error when renaming %s: %w", name, err)
	}
	return nil
}

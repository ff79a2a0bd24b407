package usecases

import (
	"context"

	"github.com/lintang-b-s/drive-search/pkg/searcher"

	"go.uber.org/zap"
)

type SearcherService struct {
	log      *zap.Logger
	searcher Searcher
}

func New(log *zap.Logger, searcher Searcher) *SearcherService {
	return &SearcherService{
		log:      log,
		searcher: searcher,
	}
}

func (s *SearcherService) Search(ctx context.Context, id, query string) ([]searcher.Result, error) {
	return s.searcher.Find(ctx, id, query)
}

func (s *SearcherService) Correct(ctx context.Context, id, query string) (string, error) {
	return s.searcher.Correct(ctx, id, query)
}

func (s *SearcherService) IndexExists(id string) bool {
	return s.searcher.IndexExists(id)
}

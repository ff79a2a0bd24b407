package usecases

import (
	"context"

	"github.com/lintang-b-s/drive-search/pkg"
	"github.com/lintang-b-s/drive-search/pkg/kvdb"
	"github.com/lintang-b-s/drive-search/pkg/loader"

	"go.uber.org/zap"
)

type LoaderService struct {
	log     *zap.Logger
	loader  Loader
	connect DriveConnector
}

func NewLoaderService(log *zap.Logger, l Loader, connect DriveConnector) *LoaderService {
	return &LoaderService{log: log, loader: l, connect: connect}
}

// Load builds the index of the session's user from their drive, or only checks it exists unless
// force is set.
func (s *LoaderService) Load(ctx context.Context, sess *kvdb.Session, force bool) (loader.Result, error) {
	if !sess.Authorized() {
		return loader.Result{}, pkg.WrapErrorf(nil, pkg.ErrUnauthorized, "session %s has no drive access", sess.ID)
	}

	client, err := s.connect(ctx, toOAuth2Token(sess.Token))
	if err != nil {
		return loader.Result{}, err
	}

	s.log.Info("loading index", zap.String("identifier", sess.Identifier), zap.Bool("force", force))
	return s.loader.Load(ctx, sess.Identifier, client, force)
}

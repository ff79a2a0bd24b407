package usecases

import (
	"context"

	"github.com/lintang-b-s/drive-search/pkg/kvdb"
	"github.com/lintang-b-s/drive-search/pkg/loader"
	"github.com/lintang-b-s/drive-search/pkg/searcher"

	"golang.org/x/oauth2"
)

type Searcher interface {
	Find(ctx context.Context, id, query string) ([]searcher.Result, error)
	Correct(ctx context.Context, id, query string) (string, error)
	IndexExists(id string) bool
}

type Loader interface {
	Load(ctx context.Context, id string, src loader.Source, force bool) (loader.Result, error)
}

type SessionStore interface {
	SaveSession(s *kvdb.Session) error
	GetSession(id string) (*kvdb.Session, error)
	DeleteSession(id string) error
}

// DriveClient is the drive of one authorized user.
type DriveClient interface {
	loader.Source
	Identifier(ctx context.Context) (string, error)
}

// DriveConnector opens the drive of the user owning tok.
type DriveConnector func(ctx context.Context, tok *oauth2.Token) (DriveClient, error)

package controllers

import (
	"context"

	"github.com/lintang-b-s/drive-search/pkg/kvdb"
	"github.com/lintang-b-s/drive-search/pkg/loader"
	"github.com/lintang-b-s/drive-search/pkg/searcher"
)

type SearchService interface {
	Search(ctx context.Context, id, query string) ([]searcher.Result, error)
	Correct(ctx context.Context, id, query string) (string, error)
	IndexExists(id string) bool
}

type LoadService interface {
	Load(ctx context.Context, sess *kvdb.Session, force bool) (loader.Result, error)
}

type AuthService interface {
	// Session returns the session with the given id, or a new unsaved one when id is unknown.
	Session(id string) (*kvdb.Session, error)
	AuthCodeURL(sess *kvdb.Session) (string, error)
	Exchange(ctx context.Context, sess *kvdb.Session, state, code string) error
	Revoke(ctx context.Context, sess *kvdb.Session) error
	Clear(sess *kvdb.Session) error
}

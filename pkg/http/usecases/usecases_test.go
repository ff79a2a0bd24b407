package usecases

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/lintang-b-s/drive-search/pkg"
	"github.com/lintang-b-s/drive-search/pkg/drive"
	"github.com/lintang-b-s/drive-search/pkg/kvdb"
	"github.com/lintang-b-s/drive-search/pkg/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type memSessions map[string]kvdb.Session

func (m memSessions) SaveSession(sess *kvdb.Session) error {
	m[sess.ID] = *sess
	return nil
}

func (m memSessions) GetSession(id string) (*kvdb.Session, error) {
	sess, ok := m[id]
	if !ok {
		return nil, kvdb.ErrorsKeyNotExists
	}
	return &sess, nil
}

func (m memSessions) DeleteSession(id string) error {
	delete(m, id)
	return nil
}

type stubDrive struct {
	id string
}

func (d stubDrive) Identifier(ctx context.Context) (string, error) { return d.id, nil }

func (d stubDrive) ListFiles(ctx context.Context) ([]drive.File, error) { return nil, nil }

func (d stubDrive) Download(ctx context.Context, file drive.File, w io.Writer) error { return nil }

func newAuthService(t *testing.T, sessions memSessions, revoked *[]string) *AuthService {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token": "at", "token_type": "Bearer", "refresh_token": "rt", "expires_in": 3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	cfg := &oauth2.Config{
		ClientID: "client",
		Endpoint: oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenSrv.URL},
	}
	connect := func(ctx context.Context, tok *oauth2.Token) (DriveClient, error) {
		if tok.AccessToken != "at" {
			return nil, errors.New("unexpected token")
		}
		return stubDrive{id: "perm-1"}, nil
	}
	revoke := func(ctx context.Context, token string) error {
		*revoked = append(*revoked, token)
		return nil
	}
	return NewAuthService(zap.NewNop(), cfg, sessions, connect, revoke)
}

func TestAuthService(t *testing.T) {
	sessions := memSessions{}
	var revoked []string
	s := newAuthService(t, sessions, &revoked)

	sess, err := s.Session("")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.False(t, sess.Authorized())
	assert.Empty(t, sessions)

	authURL, err := s.AuthCodeURL(sess)
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, sess.State, u.Query().Get("state"))
	assert.Contains(t, sessions, sess.ID)

	ctx := context.Background()
	t.Run("state mismatch", func(t *testing.T) {
		err := s.Exchange(ctx, sess, "other", "good")
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	})

	t.Run("bad code", func(t *testing.T) {
		err := s.Exchange(ctx, sess, sess.State, "bad")
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
		assert.False(t, sess.Authorized())
	})

	t.Run("exchange", func(t *testing.T) {
		require.NoError(t, s.Exchange(ctx, sess, sess.State, "good"))

		stored, err := s.Session(sess.ID)
		require.NoError(t, err)
		assert.True(t, stored.Authorized())
		assert.Equal(t, "perm-1", stored.Identifier)
		assert.Equal(t, "rt", stored.Token.RefreshToken)
		assert.Empty(t, stored.State)
	})

	t.Run("revoke", func(t *testing.T) {
		require.NoError(t, s.Revoke(ctx, sess))
		assert.Equal(t, []string{"at"}, revoked)

		refreshOnly := &kvdb.Session{ID: "r", Token: &kvdb.Token{RefreshToken: "rt"}}
		require.NoError(t, s.Revoke(ctx, refreshOnly))
		assert.Equal(t, []string{"at", "rt"}, revoked)

		err := s.Revoke(ctx, &kvdb.Session{ID: "none"})
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, s.Clear(sess))
		stored, err := s.Session(sess.ID)
		require.NoError(t, err)
		assert.False(t, stored.Authorized())
		assert.Nil(t, stored.Token)
	})
}

type recordingLoader struct {
	id    string
	force bool
}

func (l *recordingLoader) Load(ctx context.Context, id string, src loader.Source, force bool) (loader.Result, error) {
	l.id, l.force = id, force
	return loader.Result{Loaded: true, Built: force}, nil
}

func TestLoaderService(t *testing.T) {
	var gotToken *oauth2.Token
	connect := func(ctx context.Context, tok *oauth2.Token) (DriveClient, error) {
		gotToken = tok
		return stubDrive{id: "perm-1"}, nil
	}

	tests := []struct {
		name    string
		sess    *kvdb.Session
		force   bool
		wantErr error
	}{
		{
			name:    "unauthorized",
			sess:    &kvdb.Session{ID: "s"},
			wantErr: pkg.ErrUnauthorized,
		},
		{
			name:  "load",
			sess:  &kvdb.Session{ID: "s", Identifier: "perm-1", Token: &kvdb.Token{AccessToken: "at"}},
			force: false,
		},
		{
			name:  "reload",
			sess:  &kvdb.Session{ID: "s", Identifier: "perm-1", Token: &kvdb.Token{AccessToken: "at"}},
			force: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &recordingLoader{}
			s := NewLoaderService(zap.NewNop(), l, connect)

			res, err := s.Load(context.Background(), tt.sess, tt.force)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, res.Loaded)
			assert.Equal(t, tt.force, res.Built)
			assert.Equal(t, "perm-1", l.id)
			assert.Equal(t, tt.force, l.force)
			assert.Equal(t, "at", gotToken.AccessToken)
		})
	}
}

package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lintang-b-s/drive-search/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func newFakeDrive(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ListQuery, r.URL.Query().Get("q"))
		page := map[string]any{}
		switch r.URL.Query().Get("pageToken") {
		case "":
			page["files"] = []map[string]any{
				{"id": "1", "name": "a.txt", "ownedByMe": true, "webContentLink": "https://drive/1"},
			}
			page["nextPageToken"] = "page-2"
		case "page-2":
			page["files"] = []map[string]any{
				{"id": "2", "name": "b.pdf", "ownedByMe": false, "webContentLink": "https://drive/2"},
			}
		}
		_ = json.NewEncoder(w).Encode(page)
	})
	mux.HandleFunc("/files/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		_, _ = w.Write([]byte("hello drive"))
	})
	mux.HandleFunc("/files/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 404, "message": "not found"}}`, http.StatusNotFound)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"permissionId": "perm-42", "emailAddress": "alice@example.com"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), zap.NewNop(),
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestClient(t *testing.T) {
	srv := newFakeDrive(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	t.Run("list follows pages", func(t *testing.T) {
		files, err := c.ListFiles(ctx)
		require.NoError(t, err)
		assert.Equal(t, []File{
			{ID: "1", Name: "a.txt", Link: "https://drive/1", OwnedByMe: true},
			{ID: "2", Name: "b.pdf", Link: "https://drive/2", OwnedByMe: false},
		}, files)
	})

	t.Run("identifier", func(t *testing.T) {
		id, err := c.Identifier(ctx)
		require.NoError(t, err)
		assert.Equal(t, "perm-42", id)
	})

	t.Run("download", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, c.Download(ctx, File{ID: "1", Name: "a.txt"}, &buf))
		assert.Equal(t, "hello drive", buf.String())
	})

	t.Run("download failure", func(t *testing.T) {
		err := c.Download(ctx, File{ID: "missing", Name: "gone.txt"}, &bytes.Buffer{})
		assert.True(t, errors.Is(err, pkg.ErrDownloadFailure))
	})
}

func TestOAuth(t *testing.T) {
	cfg := NewOAuth2Config(OAuthConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})

	u := AuthCodeURL(cfg, "state-1")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "state=state-1")
	assert.Contains(t, u, "client_id=client")
	assert.Contains(t, u, "include_granted_scopes=true")
	assert.Len(t, cfg.Scopes, 3)
}

func TestRevoke(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "rejected", status: http.StatusBadRequest, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded"))
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "tok", r.PostForm.Get("token"))
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			old := RevokeURL
			RevokeURL = srv.URL
			defer func() { RevokeURL = old }()

			err := Revoke(context.Background(), srv.Client(), "tok")
			if tt.wantErr {
				assert.True(t, errors.Is(err, pkg.ErrUnauthorized))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Package drive talks to Google Drive: OAuth configuration, file listing and downloads.
package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lintang-b-s/drive-search/pkg"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	ListQuery  = "'me' in owners and mimeType != 'application/vnd.google-apps.folder'"
	listFields = "nextPageToken, files(id, name, mimeType, ownedByMe, webContentLink)"
	pageSize   = 100
)

var (
	Scopes = []string{
		gdrive.DriveMetadataReadonlyScope,
		gdrive.DriveReadonlyScope,
		gdrive.DriveFileScope,
	}

	RevokeURL = "https://oauth2.googleapis.com/revoke"
)

type File struct {
	ID        string
	Name      string
	MimeType  string
	Link      string
	OwnedByMe bool
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func NewOAuth2Config(cfg OAuthConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}
}

// AuthCodeURL returns the consent page url. Offline access is requested so the token can be refreshed.
func AuthCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"))
}

// Revoke invalidates token at the google revocation endpoint.
func Revoke(ctx context.Context, client *http.Client, token string) error {
	if client == nil {
		client = http.DefaultClient
	}
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error when revoking token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return pkg.WrapErrorf(nil, pkg.ErrUnauthorized, "revoke returned status %d", resp.StatusCode)
	}
	return nil
}

// Client is a Drive v3 client acting for one authorized user.
type Client struct {
	svc *gdrive.Service
	log *zap.Logger
}

func NewClient(ctx context.Context, log *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error when creating drive service: %w", err)
	}
	return &Client{svc: svc, log: log}, nil
}

// NewClientFromToken builds a client whose requests are authorized by tok, refreshed through cfg.
func NewClientFromToken(ctx context.Context, log *zap.Logger, cfg *oauth2.Config, tok *oauth2.Token) (*Client, error) {
	return NewClient(ctx, log, option.WithTokenSource(cfg.TokenSource(ctx, tok)))
}

// Identifier returns the permission id of the authorized user, stable across sessions.
func (c *Client) Identifier(ctx context.Context) (string, error) {
	about, err := c.svc.About.Get().Fields("user").Context(ctx).Do()
	if err != nil {
		return "", pkg.WrapErrorf(err, pkg.ErrUnauthorized, "error when fetching drive user")
	}
	if about.User == nil || about.User.PermissionId == "" {
		return "", pkg.WrapErrorf(nil, pkg.ErrUnauthorized, "drive user has no permission id")
	}
	return about.User.PermissionId, nil
}

// ListFiles returns every non-folder file owned by the user, following all result pages.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	files := []File{}
	err := c.svc.Files.List().
		Q(ListQuery).
		Spaces("drive").
		PageSize(pageSize).
		Fields(listFields).
		Pages(ctx, func(page *gdrive.FileList) error {
			for _, f := range page.Files {
				files = append(files, File{
					ID:        f.Id,
					Name:      f.Name,
					MimeType:  f.MimeType,
					Link:      f.WebContentLink,
					OwnedByMe: f.OwnedByMe,
				})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("error when listing drive files: %w", err)
	}
	c.log.Debug("listed drive files", zap.Int("files", len(files)))
	return files, nil
}

// Download copies the content of file into w.
func (c *Client) Download(ctx context.Context, file File, w io.Writer) error {
	resp, err := c.svc.Files.Get(file.ID).Context(ctx).Download()
	if err != nil {
		return pkg.WrapErrorf(err, pkg.ErrDownloadFailure, "error when downloading %s", file.Name)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return pkg.WrapErrorf(err, pkg.ErrDownloadFailure, "error when reading %s", file.Name)
	}
	return nil
}

package drive_di

import (
	"context"
	"fmt"

	"github.com/lintang-b-s/drive-search/pkg/di/config"
	"github.com/lintang-b-s/drive-search/pkg/drive"
	"github.com/lintang-b-s/drive-search/pkg/http/usecases"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// NewOAuthConfig reads the google client credentials. Client id and secret have no default.
func NewOAuthConfig(_ *config.Config) (*oauth2.Config, error) {
	viper.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:6060/oauth2callback")

	cfg := drive.OAuthConfig{
		ClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
		ClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}
	return drive.NewOAuth2Config(cfg), nil
}

func NewConnector(cfg *oauth2.Config, log *zap.Logger) usecases.DriveConnector {
	return func(ctx context.Context, tok *oauth2.Token) (usecases.DriveClient, error) {
		return drive.NewClientFromToken(ctx, log, cfg, tok)
	}
}

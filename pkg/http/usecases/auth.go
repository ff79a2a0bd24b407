package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/lintang-b-s/drive-search/pkg"
	"github.com/lintang-b-s/drive-search/pkg/drive"
	"github.com/lintang-b-s/drive-search/pkg/kvdb"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type RevokeFunc func(ctx context.Context, token string) error

// AuthService runs the oauth2 authorization code flow and keeps the granted token in the session.
type AuthService struct {
	log      *zap.Logger
	oauth    *oauth2.Config
	sessions SessionStore
	connect  DriveConnector
	revoke   RevokeFunc
	now      func() time.Time
}

func NewAuthService(log *zap.Logger, oauth *oauth2.Config, sessions SessionStore, connect DriveConnector,
	revoke RevokeFunc) *AuthService {
	if revoke == nil {
		revoke = func(ctx context.Context, token string) error {
			return drive.Revoke(ctx, nil, token)
		}
	}
	return &AuthService{
		log:      log,
		oauth:    oauth,
		sessions: sessions,
		connect:  connect,
		revoke:   revoke,
		now:      time.Now,
	}
}

func (s *AuthService) Session(id string) (*kvdb.Session, error) {
	if id != "" {
		sess, err := s.sessions.GetSession(id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, kvdb.ErrorsKeyNotExists) {
			return nil, err
		}
	}
	return &kvdb.Session{ID: uuid.NewString(), CreatedAt: s.now()}, nil
}

// AuthCodeURL starts a new authorization attempt for sess and returns the consent page url.
func (s *AuthService) AuthCodeURL(sess *kvdb.Session) (string, error) {
	sess.State = uuid.NewString()
	if err := s.sessions.SaveSession(sess); err != nil {
		return "", err
	}
	return drive.AuthCodeURL(s.oauth, sess.State), nil
}

// Exchange completes the authorization started by AuthCodeURL. The session then holds the token and
// the drive identifier of the user.
func (s *AuthService) Exchange(ctx context.Context, sess *kvdb.Session, state, code string) error {
	if sess.State == "" || state != sess.State {
		return pkg.WrapErrorf(nil, pkg.ErrUnauthorized, "oauth state does not match the session")
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return pkg.WrapErrorf(err, pkg.ErrUnauthorized, "error when exchanging authorization code")
	}

	client, err := s.connect(ctx, tok)
	if err != nil {
		return err
	}
	id, err := client.Identifier(ctx)
	if err != nil {
		return err
	}

	sess.State = ""
	sess.Token = fromOAuth2Token(tok)
	sess.Identifier = id
	return s.sessions.SaveSession(sess)
}

func (s *AuthService) Revoke(ctx context.Context, sess *kvdb.Session) error {
	if sess.Token == nil {
		return pkg.WrapErrorf(nil, pkg.ErrUnauthorized, "session %s has no token", sess.ID)
	}
	token := sess.Token.AccessToken
	if token == "" {
		token = sess.Token.RefreshToken
	}
	return s.revoke(ctx, token)
}

// Clear forgets the credentials of sess. The session itself stays.
func (s *AuthService) Clear(sess *kvdb.Session) error {
	sess.State = ""
	sess.Token = nil
	sess.Identifier = ""
	return s.sessions.SaveSession(sess)
}

func fromOAuth2Token(tok *oauth2.Token) *kvdb.Token {
	return &kvdb.Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

func toOAuth2Token(tok *kvdb.Token) *oauth2.Token {
	if tok == nil {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

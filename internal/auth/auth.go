// Package auth obtains an authorized HTTP client for the Sheets API using the
// OAuth2 installed-application flow.
//
// The client secret comes from GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET, else
// from the first readable client secret JSON file. Tokens are persisted to a
// token cache file and refreshed automatically; when no usable token exists the
// consent URL is printed and the authorization code is received on a loopback
// redirect.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/rshade/gss-search/internal/logging"
)

// Environment variables holding the OAuth client.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvProjectID    = "GOOGLE_PROJECT_ID"
)

// ErrAuth is wrapped by every authentication failure.
var ErrAuth = errors.New("authentication failed")

// ErrNoClientSecret indicates neither the environment nor any candidate file
// supplied an OAuth client.
var ErrNoClientSecret = errors.New("no OAuth client secret found")

// Scopes requested from the user.
var Scopes = []string{sheetsapi.SpreadsheetsReadonlyScope}

// Options configures an Authenticator.
type Options struct {
	// SecretFiles are client secret JSON files tried in order.
	SecretFiles []string

	// TokenPath is where tokens are persisted.
	TokenPath string

	// Prompt receives the consent URL. Defaults to os.Stderr.
	Prompt io.Writer

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// authorizeFunc runs the interactive consent flow.
type authorizeFunc func(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)

// Authenticator produces authorized HTTP clients.
type Authenticator struct {
	opts      Options
	authorize authorizeFunc
}

// NewAuthenticator creates an Authenticator. Nothing is read until Client.
func NewAuthenticator(opts Options) *Authenticator {
	if opts.Prompt == nil {
		opts.Prompt = os.Stderr
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	a := &Authenticator{opts: opts}
	a.authorize = a.loopbackFlow
	return a
}

// Client returns an HTTP client that attaches and refreshes the user's token.
// The returned client keeps using ctx for token refreshes.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	log := logging.FromContext(ctx)

	conf, err := a.OAuthConfig()
	if err != nil {
		return nil, err
	}

	tok, err := loadToken(a.opts.TokenPath)
	switch {
	case err == nil:
		log.Debug().Ctx(ctx).Str("token_path", a.opts.TokenPath).Msg("using cached token")
	case errors.Is(err, os.ErrNotExist):
		log.Info().Ctx(ctx).Msg("no cached token, starting authorization flow")
		tok, err = a.authorize(ctx, conf)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuth, err)
		}
		if saveErr := saveToken(a.opts.TokenPath, tok); saveErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuth, saveErr)
		}
	default:
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	src := &persistingSource{
		base: conf.TokenSource(ctx, tok),
		path: a.opts.TokenPath,
		last: tok.AccessToken,
		ctx:  ctx,
	}
	return oauth2.NewClient(ctx, src), nil
}

// OAuthConfig resolves the OAuth client: environment first, then files.
func (a *Authenticator) OAuthConfig() (*oauth2.Config, error) {
	if conf, ok := a.configFromEnv(); ok {
		return conf, nil
	}

	for _, path := range a.opts.SecretFiles {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading client secret %s: %w", ErrAuth, path, err)
		}
		conf, err := google.ConfigFromJSON(data, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing client secret %s: %w", ErrAuth, path, err)
		}
		return conf, nil
	}

	return nil, fmt.Errorf("%w: %w (set %s and %s, or provide clientsecret.json)",
		ErrAuth, ErrNoClientSecret, EnvClientID, EnvClientSecret)
}

func (a *Authenticator) configFromEnv() (*oauth2.Config, bool) {
	id, okID := a.opts.LookupEnv(EnvClientID)
	secret, okSecret := a.opts.LookupEnv(EnvClientSecret)
	if !okID || !okSecret || id == "" || secret == "" {
		return nil, false
	}
	return &oauth2.Config{
		ClientID:     id,
		ClientSecret: secret,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}, true
}

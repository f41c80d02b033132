package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// tokenServer is a stand-in for the OAuth token endpoint.
type tokenServer struct {
	*httptest.Server

	mu    sync.Mutex
	forms []url.Values
}

func newTokenServer(t *testing.T, accessToken string) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		ts.mu.Lock()
		ts.forms = append(ts.forms, r.PostForm)
		ts.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w,
			`{"access_token":%q,"token_type":"Bearer","refresh_token":"refresh-1","expires_in":3600}`,
			accessToken)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) lastForm() url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.forms) == 0 {
		return nil
	}
	return ts.forms[len(ts.forms)-1]
}

func writeSecret(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	path := filepath.Join(dir, "clientsecret.json")
	content := fmt.Sprintf(`{"installed":{
		"client_id":"file-client",
		"client_secret":"file-secret",
		"auth_uri":"https://accounts.example.invalid/auth",
		"token_uri":%q,
		"redirect_uris":["http://localhost"]}}`, tokenURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestOAuthConfig(t *testing.T) {
	dir := t.TempDir()
	secretPath := writeSecret(t, dir, "https://token.example.invalid/token")

	t.Run("environment wins", func(t *testing.T) {
		env := map[string]string{EnvClientID: "env-client", EnvClientSecret: "env-secret"}
		a := NewAuthenticator(Options{
			SecretFiles: []string{secretPath},
			LookupEnv: func(k string) (string, bool) {
				v, ok := env[k]
				return v, ok
			},
		})

		conf, err := a.OAuthConfig()
		require.NoError(t, err)
		assert.Equal(t, "env-client", conf.ClientID)
		assert.Equal(t, "env-secret", conf.ClientSecret)
		assert.Equal(t, google.Endpoint, conf.Endpoint)
		assert.Equal(t, Scopes, conf.Scopes)
	})

	t.Run("first existing file", func(t *testing.T) {
		a := NewAuthenticator(Options{
			SecretFiles: []string{filepath.Join(dir, "missing.json"), secretPath},
			LookupEnv:   noEnv,
		})

		conf, err := a.OAuthConfig()
		require.NoError(t, err)
		assert.Equal(t, "file-client", conf.ClientID)
		assert.Equal(t, "https://token.example.invalid/token", conf.Endpoint.TokenURL)
	})

	t.Run("nothing configured", func(t *testing.T) {
		a := NewAuthenticator(Options{SecretFiles: []string{filepath.Join(dir, "missing.json")}, LookupEnv: noEnv})

		_, err := a.OAuthConfig()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAuth)
		assert.ErrorIs(t, err, ErrNoClientSecret)
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
		a := NewAuthenticator(Options{SecretFiles: []string{bad}, LookupEnv: noEnv})

		_, err := a.OAuthConfig()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAuth)
		assert.NotErrorIs(t, err, ErrNoClientSecret)
	})
}

// apiServer echoes the bearer token it received.
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Authorization")))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func getAuthHeader(t *testing.T, client *http.Client, target string) string {
	t.Helper()
	resp, err := client.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return buf.String()
}

func TestClient_UsesCachedToken(t *testing.T) {
	dir := t.TempDir()
	ts := newTokenServer(t, "should-not-be-used")
	tokenPath := filepath.Join(dir, "tokencache.json")
	require.NoError(t, saveToken(tokenPath, &oauth2.Token{
		AccessToken:  "cached",
		TokenType:    "Bearer",
		RefreshToken: "refresh-0",
		Expiry:       time.Now().Add(time.Hour),
	}))

	a := NewAuthenticator(Options{
		SecretFiles: []string{writeSecret(t, dir, ts.URL)},
		TokenPath:   tokenPath,
		LookupEnv:   noEnv,
	})
	a.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		t.Fatal("authorization flow must not run with a cached token")
		return nil, nil
	}

	client, err := a.Client(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer cached", getAuthHeader(t, client, newAPIServer(t).URL))
	assert.Nil(t, ts.lastForm(), "no token request expected")
}

func TestClient_RefreshesAndPersistsExpiredToken(t *testing.T) {
	dir := t.TempDir()
	ts := newTokenServer(t, "fresh")
	tokenPath := filepath.Join(dir, "tokencache.json")
	require.NoError(t, saveToken(tokenPath, &oauth2.Token{
		AccessToken:  "stale",
		TokenType:    "Bearer",
		RefreshToken: "refresh-0",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	a := NewAuthenticator(Options{
		SecretFiles: []string{writeSecret(t, dir, ts.URL)},
		TokenPath:   tokenPath,
		LookupEnv:   noEnv,
	})

	client, err := a.Client(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer fresh", getAuthHeader(t, client, newAPIServer(t).URL))
	assert.Equal(t, "refresh_token", ts.lastForm().Get("grant_type"))

	persisted, err := loadToken(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "fresh", persisted.AccessToken)
}

func TestClient_AuthorizesWhenNoToken(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "nested", "tokencache.json")

	a := NewAuthenticator(Options{
		SecretFiles: []string{writeSecret(t, dir, "https://token.example.invalid/token")},
		TokenPath:   tokenPath,
		LookupEnv:   noEnv,
	})
	a.authorize = func(_ context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
		assert.Equal(t, "file-client", conf.ClientID)
		return &oauth2.Token{AccessToken: "granted", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}, nil
	}

	client, err := a.Client(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer granted", getAuthHeader(t, client, newAPIServer(t).URL))

	persisted, err := loadToken(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "granted", persisted.AccessToken)

	info, err := os.Stat(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestClient_AuthorizationFailure(t *testing.T) {
	dir := t.TempDir()
	a := NewAuthenticator(Options{
		SecretFiles: []string{writeSecret(t, dir, "https://token.example.invalid/token")},
		TokenPath:   filepath.Join(dir, "tokencache.json"),
		LookupEnv:   noEnv,
	})
	denied := errors.New("denied")
	a.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return nil, denied
	}

	_, err := a.Client(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorIs(t, err, denied)
}

func TestClient_CorruptTokenCache(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "tokencache.json")
	require.NoError(t, os.WriteFile(tokenPath, []byte("garbage"), 0o600))

	a := NewAuthenticator(Options{
		SecretFiles: []string{writeSecret(t, dir, "https://token.example.invalid/token")},
		TokenPath:   tokenPath,
		LookupEnv:   noEnv,
	})

	_, err := a.Client(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

// promptCapture hands each write to a channel.
type promptCapture chan string

func (p promptCapture) Write(b []byte) (int, error) {
	p <- string(b)
	return len(b), nil
}

var urlInPrompt = regexp.MustCompile(`https://\S+`)

func TestLoopbackFlow(t *testing.T) {
	ts := newTokenServer(t, "from-code")
	prompt := make(promptCapture, 1)
	a := NewAuthenticator(Options{Prompt: prompt, LookupEnv: noEnv})
	conf := &oauth2.Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.example.invalid/auth",
			TokenURL:  ts.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: Scopes,
	}

	type outcome struct {
		tok *oauth2.Token
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		tok, err := a.loopbackFlow(context.Background(), conf)
		done <- outcome{tok, err}
	}()

	var printed string
	select {
	case printed = <-prompt:
	case <-time.After(5 * time.Second):
		t.Fatal("consent URL was not printed")
	}

	consent, err := url.Parse(urlInPrompt.FindString(printed))
	require.NoError(t, err)
	q := consent.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	require.Contains(t, q.Get("redirect_uri"), "http://127.0.0.1:")

	callback := q.Get("redirect_uri") + "/?code=the-code&state=" + url.QueryEscape(q.Get("state"))
	resp, err := http.Get(callback)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, "from-code", out.tok.AccessToken)
	case <-time.After(5 * time.Second):
		t.Fatal("flow did not finish")
	}

	form := ts.lastForm()
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "the-code", form.Get("code"))
	assert.NotEmpty(t, form.Get("code_verifier"))
}

func TestLoopbackFlow_StateMismatch(t *testing.T) {
	prompt := make(promptCapture, 1)
	a := NewAuthenticator(Options{Prompt: prompt, LookupEnv: noEnv})
	conf := &oauth2.Config{
		ClientID: "cid",
		Endpoint: oauth2.Endpoint{AuthURL: "https://accounts.example.invalid/auth", TokenURL: "https://token.example.invalid"},
	}

	done := make(chan error, 1)
	go func() {
		_, err := a.loopbackFlow(context.Background(), conf)
		done <- err
	}()

	consent, err := url.Parse(urlInPrompt.FindString(<-prompt))
	require.NoError(t, err)

	resp, err := http.Get(consent.Query().Get("redirect_uri") + "/?code=x&state=forged")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStateMismatch)
	case <-time.After(5 * time.Second):
		t.Fatal("flow did not finish")
	}
}

func TestLoopbackFlow_Cancelled(t *testing.T) {
	var prompt bytes.Buffer
	a := NewAuthenticator(Options{Prompt: &prompt, LookupEnv: noEnv})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.loopbackFlow(ctx, &oauth2.Config{
		Endpoint: oauth2.Endpoint{AuthURL: "https://accounts.example.invalid/auth"},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, prompt.String(), "https://accounts.example.invalid/auth")
}

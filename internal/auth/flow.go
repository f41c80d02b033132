package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/rshade/gss-search/internal/logging"
)

const (
	loopbackAddr    = "127.0.0.1:0"
	shutdownTimeout = 2 * time.Second
	readTimeout     = 10 * time.Second
)

// ErrStateMismatch indicates a redirect that does not belong to this flow.
var ErrStateMismatch = errors.New("authorization state mismatch")

type callbackResult struct {
	code string
	err  error
}

// loopbackFlow prints the consent URL and waits for Google to redirect the
// browser to a listener on 127.0.0.1.
func (a *Authenticator) loopbackFlow(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", loopbackAddr)
	if err != nil {
		return nil, fmt.Errorf("starting redirect listener: %w", err)
	}

	flowConf := *conf
	flowConf.RedirectURL = "http://" + ln.Addr().String()

	state := rand.Text()
	verifier := oauth2.GenerateVerifier()
	authURL := flowConf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: readTimeout,
	}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	_, _ = fmt.Fprintf(a.opts.Prompt,
		"Open the following URL in your browser to authorize gss-search:\n\n  %s\n\n", authURL)
	logging.FromContext(ctx).Info().Ctx(ctx).
		Str("redirect_url", flowConf.RedirectURL).
		Msg("waiting for authorization redirect")

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := flowConf.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

// callbackHandler delivers the first redirect outcome to results.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()

		var res callbackResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "Authorization state mismatch.", http.StatusBadRequest)
			res.err = ErrStateMismatch
		case q.Get("error") != "":
			http.Error(w, "Authorization was denied.", http.StatusForbidden)
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			http.Error(w, "Missing authorization code.", http.StatusBadRequest)
			res.err = errors.New("redirect carried no authorization code")
		default:
			_, _ = fmt.Fprintln(w, "Authorization complete. You can close this window.")
			res.code = q.Get("code")
		}

		select {
		case results <- res:
		default:
		}
	})
}

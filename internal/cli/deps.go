package cli

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"

	"github.com/rshade/gss-search/internal/auth"
	"github.com/rshade/gss-search/internal/config"
	"github.com/rshade/gss-search/internal/sheets"
	"github.com/rshade/gss-search/internal/tui"
)

// Deps are the collaborators commands reach outside the process through.
// Zero fields are filled from DefaultDeps.
type Deps struct {
	// NewService authenticates and returns the remote spreadsheet client.
	// prompt receives any interactive authorization instructions.
	NewService func(ctx context.Context, cfg *config.Config, prompt io.Writer) (sheets.Service, error)

	// NewSelector returns the interactive row selector.
	NewSelector func(header, query string) tui.Selector

	// Interactive reports whether the selector and prompts can use the terminal.
	Interactive func() bool

	// StyledOutput reports whether stdout is a terminal that gets lipgloss styling.
	StyledOutput func() bool

	// CopyToClipboard places text on the system clipboard.
	CopyToClipboard func(text string) error
}

// DefaultDeps returns the production collaborators.
func DefaultDeps() Deps {
	return Deps{
		NewService: newGoogleService,
		NewSelector: func(header, query string) tui.Selector {
			return tui.NewSelector(header, query)
		},
		Interactive:     tui.IsTTY,
		StyledOutput:    func() bool { return tui.IsTerminal(os.Stdout) },
		CopyToClipboard: clipboard.WriteAll,
	}
}

func (d Deps) withDefaults() Deps {
	def := DefaultDeps()
	if d.NewService == nil {
		d.NewService = def.NewService
	}
	if d.NewSelector == nil {
		d.NewSelector = def.NewSelector
	}
	if d.Interactive == nil {
		d.Interactive = def.Interactive
	}
	if d.StyledOutput == nil {
		d.StyledOutput = def.StyledOutput
	}
	if d.CopyToClipboard == nil {
		d.CopyToClipboard = def.CopyToClipboard
	}
	return d
}

// newGoogleService authorizes with the OAuth installed flow and returns a
// Sheets v4 client. Token refreshes use a context detached from command
// cancellation so a background refresh can still authenticate.
func newGoogleService(ctx context.Context, cfg *config.Config, prompt io.Writer) (sheets.Service, error) {
	authn := auth.NewAuthenticator(auth.Options{
		SecretFiles: cfg.ClientSecretCandidates(),
		TokenPath:   cfg.TokenCachePath(),
		Prompt:      prompt,
	})

	client, err := authn.Client(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	return sheets.NewGoogleService(ctx, client)
}

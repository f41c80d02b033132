package sheets

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// metadataFields limits the spreadsheet GET to what sheet resolution needs.
const metadataFields = "sheets.properties(sheetId,title)"

// GoogleService implements Service with the Sheets v4 API.
type GoogleService struct {
	svc *sheetsapi.Service
}

// NewGoogleService creates a Sheets client that authenticates through client.
// Extra options (for example a test endpoint) are passed through.
func NewGoogleService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*GoogleService, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return &GoogleService{svc: svc}, nil
}

// GetMetadata implements Service.
func (g *GoogleService) GetMetadata(ctx context.Context, spreadsheetID string) (*Metadata, error) {
	resp, err := g.svc.Spreadsheets.Get(spreadsheetID).
		Fields(metadataFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	meta := &Metadata{Sheets: make([]Sheet, 0, len(resp.Sheets))}
	for _, s := range resp.Sheets {
		if s == nil || s.Properties == nil {
			continue
		}
		meta.Sheets = append(meta.Sheets, Sheet{ID: s.Properties.SheetId, Title: s.Properties.Title})
	}
	return meta, nil
}

// FetchValues implements Service.
func (g *GoogleService) FetchValues(ctx context.Context, spreadsheetID, rangeName string) ([][]any, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, rangeName).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

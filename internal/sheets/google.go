package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// New authorizes with a service account key (the JSON downloaded from the
// Google Cloud console) and returns a client backed by the Sheets API.
func New(ctx context.Context, credentialsJSON []byte) (*Client, error) {
	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	srv, err := gsheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newClient(&googleValues{srv: srv}, jwtConfig.Email), nil
}

type googleValues struct {
	srv *gsheets.Service
}

func (g *googleValues) ColumnLength(ctx context.Context, spreadsheetID string) (int, error) {
	resp, err := g.srv.Spreadsheets.Values.Get(spreadsheetID, "A:A").Context(ctx).Do()
	if err != nil {
		return 0, classify(err)
	}
	return len(resp.Values), nil
}

func (g *googleValues) WriteCell(ctx context.Context, spreadsheetID string, row int, text string) error {
	cell := fmt.Sprintf("A%d", row)
	body := &gsheets.ValueRange{Values: [][]interface{}{{text}}}
	_, err := g.srv.Spreadsheets.Values.Update(spreadsheetID, cell, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrAccess, err)
	default:
		return err
	}
}

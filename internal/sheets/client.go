package sheets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sync"
)

var (
	ErrNotFound    = errors.New("spreadsheet not found")
	ErrAccess      = errors.New("no edit access to spreadsheet")
	ErrBadLink     = errors.New("link does not point to a spreadsheet")
	ErrUnavailable = errors.New("spreadsheet client is not configured")
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// valuesAPI is the part of the Sheets API the client needs: column A of the
// first sheet.
type valuesAPI interface {
	ColumnLength(ctx context.Context, spreadsheetID string) (int, error)
	WriteCell(ctx context.Context, spreadsheetID string, row int, text string) error
}

// Client appends notes to Google spreadsheets. Appends are serialized
// process-wide: finding the next free row and writing it must not interleave.
type Client struct {
	api   valuesAPI
	email string
	mu    sync.Mutex
}

// Unavailable returns a client that fails every write with ErrUnavailable.
// Used when the service account credentials could not be read.
func Unavailable() *Client {
	return &Client{}
}

func newClient(api valuesAPI, email string) *Client {
	return &Client{api: api, email: email}
}

// ServiceEmail is the address users must share their sheet with. Empty when unknown.
func (c *Client) ServiceEmail() string {
	return c.email
}

// Resolve extracts the spreadsheet id from a sheet link.
func (c *Client) Resolve(url string) (string, error) {
	m := spreadsheetIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", ErrBadLink
	}
	return m[1], nil
}

// AppendRow writes text into the first empty row of column A and returns the row number.
func (c *Client) AppendRow(ctx context.Context, url, text string) (int, error) {
	if c.api == nil {
		return 0, ErrUnavailable
	}
	id, err := c.Resolve(url)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.api.ColumnLength(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("read column: %w", err)
	}
	row := n + 1
	if err := c.api.WriteCell(ctx, id, row, text); err != nil {
		return 0, fmt.Errorf("write row %d: %w", row, err)
	}
	log.Printf("[info] note stored spreadsheet=%s row=%d", id, row)
	return row, nil
}

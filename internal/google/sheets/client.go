// Package sheets is a typed Google Sheets v4 client built on the shared
// request pipeline. Spreadsheet discovery delegates to the Drive API, so
// the client carries its own Drive client alongside the Sheets one.
package sheets

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/workspace-go/internal/google"
	"github.com/custodia-labs/workspace-go/internal/google/drive"
)

// BaseURL is the Sheets v4 production endpoint.
const BaseURL = "https://sheets.googleapis.com/v4"

// Client is a typed Google Sheets API client.
type Client struct {
	api   *google.Client
	drive *drive.Client
}

// New creates a Sheets client. The embedded Drive client is built from the
// same config but keeps an independent rate limiter: budgets are never
// shared across API types.
func New(cfg google.ClientConfig) *Client {
	return &Client{
		api:   google.NewClient(google.ServiceSheets, BaseURL, cfg),
		drive: drive.New(cfg),
	}
}

// API exposes the underlying pipeline client, mainly for stats queries.
func (c *Client) API() *google.Client {
	return c.api
}

// Stats returns the client's rate limiter snapshot.
func (c *Client) Stats() google.Stats {
	return c.api.Stats()
}

// Drive exposes the embedded Drive client used for spreadsheet discovery.
func (c *Client) Drive() *drive.Client {
	return c.drive
}

// ListSpreadsheets lists spreadsheet files the credential can see. It
// delegates to the Drive listing with a spreadsheet MIME type filter.
func (c *Client) ListSpreadsheets(ctx context.Context, max int) ([]*drive.File, error) {
	opts := drive.ListOptions{
		Query:   fmt.Sprintf("mimeType='%s' and trashed=false", drive.MimeTypeGoogleSheet),
		OrderBy: "modifiedTime desc",
	}
	return c.drive.ListAll(ctx, opts, max)
}

// GetSpreadsheet fetches spreadsheet metadata, including the full cell grid
// when includeGridData is set.
func (c *Client) GetSpreadsheet(ctx context.Context, spreadsheetID string, includeGridData bool) (*Spreadsheet, error) {
	q := url.Values{}
	if includeGridData {
		q.Set("includeGridData", "true")
	}
	var s Spreadsheet
	if err := c.api.Get(ctx, "/spreadsheets/"+url.PathEscape(spreadsheetID), q, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetValues reads the cell values of one A1-notation range.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, valueRange string) (*ValueRange, error) {
	var vr ValueRange
	if err := c.api.Get(ctx, valuesPath(spreadsheetID, valueRange), nil, &vr); err != nil {
		return nil, err
	}
	return &vr, nil
}

// BatchGetValues reads several ranges in one call.
func (c *Client) BatchGetValues(ctx context.Context, spreadsheetID string, ranges []string) (*BatchGetResponse, error) {
	q := url.Values{}
	for _, r := range ranges {
		q.Add("ranges", r)
	}
	var resp BatchGetResponse
	path := "/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values:batchGet"
	if err := c.api.Get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateValues overwrites one range with the given rows.
func (c *Client) UpdateValues(
	ctx context.Context, spreadsheetID, valueRange string, values [][]any, input ValueInput,
) (*UpdateResponse, error) {
	q := url.Values{"valueInputOption": {string(normaliseInput(input))}}
	body := &ValueRange{Range: valueRange, Values: values}
	var resp UpdateResponse
	if err := c.api.Put(ctx, valuesPath(spreadsheetID, valueRange), q, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchUpdateValues overwrites several ranges in one call.
func (c *Client) BatchUpdateValues(
	ctx context.Context, spreadsheetID string, data []*ValueRange, input ValueInput,
) (*BatchUpdateResponse, error) {
	body := &batchUpdateValuesRequest{
		ValueInputOption: string(normaliseInput(input)),
		Data:             data,
	}
	var resp BatchUpdateResponse
	path := "/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values:batchUpdate"
	if err := c.api.Post(ctx, path, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Append adds rows after the last row of the table that starts at the
// given range.
func (c *Client) Append(
	ctx context.Context, spreadsheetID, valueRange string, values [][]any, input ValueInput,
) (*AppendResponse, error) {
	q := url.Values{
		"valueInputOption": {string(normaliseInput(input))},
		"insertDataOption": {"INSERT_ROWS"},
	}
	body := &ValueRange{Values: values}
	var resp AppendResponse
	path := valuesPath(spreadsheetID, valueRange) + ":append"
	if err := c.api.Post(ctx, path, q, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AppendRow is a single-row convenience over Append with user-entered
// value interpretation.
func (c *Client) AppendRow(ctx context.Context, spreadsheetID, valueRange string, row []any) (*AppendResponse, error) {
	return c.Append(ctx, spreadsheetID, valueRange, [][]any{row}, ValueInputUserEntered)
}

// ClearValues clears the cell values of one range, keeping formatting.
func (c *Client) ClearValues(ctx context.Context, spreadsheetID, valueRange string) error {
	return c.api.Post(ctx, valuesPath(spreadsheetID, valueRange)+":clear", nil, struct{}{}, nil)
}

// CreateSpreadsheet creates a new spreadsheet with the given title and
// optional sheet (tab) titles.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string, sheetTitles []string) (*Spreadsheet, error) {
	body := &Spreadsheet{
		Properties: &SpreadsheetProperties{Title: title},
	}
	for i, t := range sheetTitles {
		body.Sheets = append(body.Sheets, &Sheet{
			Properties: &SheetProperties{Title: t, Index: int64(i)},
		})
	}
	var created Spreadsheet
	if err := c.api.Post(ctx, "/spreadsheets", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// valuesPath builds the values endpoint path for one range. The range is
// path-escaped because A1 notation contains "!" and may contain spaces.
func valuesPath(spreadsheetID, valueRange string) string {
	return "/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(valueRange)
}

func normaliseInput(input ValueInput) ValueInput {
	if input == "" {
		return ValueInputUserEntered
	}
	return input
}

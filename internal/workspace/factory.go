// Package workspace constructs the typed Google Workspace API clients.
package workspace

import (
	"fmt"

	"github.com/custodia-labs/workspace-go/internal/google"
	"github.com/custodia-labs/workspace-go/internal/google/calendar"
	"github.com/custodia-labs/workspace-go/internal/google/drive"
	"github.com/custodia-labs/workspace-go/internal/google/sheets"
)

// APIType selects which Workspace API a client talks to.
type APIType string

const (
	// APIDrive is the Google Drive v3 API.
	APIDrive APIType = "drive"
	// APISheets is the Google Sheets v4 API.
	APISheets APIType = "sheets"
	// APICalendar is the Google Calendar v3 API.
	APICalendar APIType = "calendar"
)

// ParseAPIType validates a user-supplied API name.
func ParseAPIType(s string) (APIType, error) {
	switch APIType(s) {
	case APIDrive, APISheets, APICalendar:
		return APIType(s), nil
	default:
		return "", fmt.Errorf("unknown API type %q (expected drive, sheets or calendar)", s)
	}
}

// Client is the tagged result of the factory: exactly one of the typed
// fields is set, matching API.
type Client struct {
	API      APIType
	Drive    *drive.Client
	Sheets   *sheets.Client
	Calendar *calendar.Client
}

// New constructs the client for the requested API. An unrecognised tag is
// a programming error and fails immediately rather than defaulting.
func New(api APIType, cfg google.ClientConfig) (*Client, error) {
	switch api {
	case APIDrive:
		return &Client{API: api, Drive: drive.New(cfg)}, nil
	case APISheets:
		return &Client{API: api, Sheets: sheets.New(cfg)}, nil
	case APICalendar:
		return &Client{API: api, Calendar: calendar.New(cfg)}, nil
	default:
		return nil, fmt.Errorf("unknown API type %q", api)
	}
}

// NewDrive constructs a Drive client.
func NewDrive(cfg google.ClientConfig) *drive.Client {
	return drive.New(cfg)
}

// NewSheets constructs a Sheets client.
func NewSheets(cfg google.ClientConfig) *sheets.Client {
	return sheets.New(cfg)
}

// NewCalendar constructs a Calendar client.
func NewCalendar(cfg google.ClientConfig) *calendar.Client {
	return calendar.New(cfg)
}

// Set bundles all three clients built from one shared config. Each client
// gets its own independent rate limiter; rate limiting is never shared
// across API types.
type Set struct {
	Drive    *drive.Client
	Sheets   *sheets.Client
	Calendar *calendar.Client
}

// NewSet builds all three clients at once from one config.
func NewSet(cfg google.ClientConfig) *Set {
	return &Set{
		Drive:    drive.New(cfg),
		Sheets:   sheets.New(cfg),
		Calendar: calendar.New(cfg),
	}
}

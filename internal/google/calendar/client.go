// Package calendar is a typed Google Calendar v3 client built on the
// shared request pipeline.
package calendar

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/workspace-go/internal/google"
)

// BaseURL is the Calendar v3 production endpoint.
const BaseURL = "https://www.googleapis.com/calendar/v3"

// PrimaryCalendar addresses the authenticated user's default calendar.
const PrimaryCalendar = "primary"

// Client is a typed Google Calendar API client.
type Client struct {
	api *google.Client
	now func() time.Time
}

// New creates a Calendar client with its own rate limiter.
func New(cfg google.ClientConfig) *Client {
	return &Client{
		api: google.NewClient(google.ServiceCalendar, BaseURL, cfg),
		now: time.Now,
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

// ListCalendars returns one page of the user's calendar list.
func (c *Client) ListCalendars(ctx context.Context, pageToken string, maxResults int) (*CalendarList, error) {
	q := url.Values{}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	if maxResults > 0 {
		q.Set("maxResults", strconv.Itoa(maxResults))
	}
	var list CalendarList
	if err := c.api.Get(ctx, "/users/me/calendarList", q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListAllCalendars pages through the calendar list until the server
// returns no next-page token.
func (c *Client) ListAllCalendars(ctx context.Context) ([]*CalendarListEntry, error) {
	var all []*CalendarListEntry
	pageToken := ""
	for {
		page, err := c.ListCalendars(ctx, pageToken, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// GetCalendar fetches one calendar list entry.
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*CalendarListEntry, error) {
	var entry CalendarListEntry
	if err := c.api.Get(ctx, "/users/me/calendarList/"+url.PathEscape(calendarID), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEventsOptions controls an events listing.
type ListEventsOptions struct {
	// TimeMin and TimeMax bound the window; zero values are omitted.
	TimeMin time.Time
	TimeMax time.Time
	// Query is a free-text filter.
	Query string
	// SingleEvents expands recurring events into instances.
	SingleEvents bool
	// OrderBy is "startTime" (requires SingleEvents) or "updated".
	OrderBy string
	// MaxResults limits one page.
	MaxResults int
	// PageToken resumes a previous listing.
	PageToken string
	// SyncToken requests only changes since the previous sync. The server
	// answers an expired token with 410, surfaced as SyncTokenExpiredError.
	SyncToken string
}

func (o ListEventsOptions) values() url.Values {
	q := url.Values{}
	if !o.TimeMin.IsZero() {
		q.Set("timeMin", o.TimeMin.Format(time.RFC3339))
	}
	if !o.TimeMax.IsZero() {
		q.Set("timeMax", o.TimeMax.Format(time.RFC3339))
	}
	if o.Query != "" {
		q.Set("q", o.Query)
	}
	if o.SingleEvents {
		q.Set("singleEvents", "true")
	}
	if o.OrderBy != "" {
		q.Set("orderBy", o.OrderBy)
	}
	if o.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(o.MaxResults))
	}
	if o.PageToken != "" {
		q.Set("pageToken", o.PageToken)
	}
	if o.SyncToken != "" {
		q.Set("syncToken", o.SyncToken)
	}
	return q
}

// ListEvents returns one page of events on a calendar.
func (c *Client) ListEvents(ctx context.Context, calendarID string, opts ListEventsOptions) (*Events, error) {
	var events Events
	path := "/calendars/" + url.PathEscape(calendarID) + "/events"
	if err := c.api.Get(ctx, path, opts.values(), &events); err != nil {
		return nil, err
	}
	return &events, nil
}

// ListAllEvents pages through an events listing until the server returns
// no next-page token. When max is positive the result is truncated to max
// entries and no further pages are fetched.
func (c *Client) ListAllEvents(ctx context.Context, calendarID string, opts ListEventsOptions, max int) ([]*Event, error) {
	var all []*Event
	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		page, err := c.ListEvents(ctx, calendarID, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if max > 0 && len(all) >= max {
			return all[:max], nil
		}
		if page.NextPageToken == "" {
			return all, nil
		}
		opts.PageToken = page.NextPageToken
	}
}

// GetEvent fetches one event.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	var event Event
	path := eventPath(calendarID, eventID)
	if err := c.api.Get(ctx, path, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent creates an event, notifying guests per sendUpdates.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, event *Event, sendUpdates SendUpdates) (*Event, error) {
	var created Event
	path := "/calendars/" + url.PathEscape(calendarID) + "/events"
	if err := c.api.Post(ctx, path, sendUpdatesQuery(sendUpdates), event, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEvent replaces an event, notifying guests per sendUpdates.
func (c *Client) UpdateEvent(
	ctx context.Context, calendarID, eventID string, event *Event, sendUpdates SendUpdates,
) (*Event, error) {
	var updated Event
	if err := c.api.Put(ctx, eventPath(calendarID, eventID), sendUpdatesQuery(sendUpdates), event, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEvent removes an event, notifying guests per sendUpdates.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string, sendUpdates SendUpdates) error {
	return c.api.Delete(ctx, eventPath(calendarID, eventID), sendUpdatesQuery(sendUpdates))
}

// QuickAdd creates an event from a natural-language description, e.g.
// "Lunch with Ana tomorrow at noon".
func (c *Client) QuickAdd(ctx context.Context, calendarID, text string, sendUpdates SendUpdates) (*Event, error) {
	q := sendUpdatesQuery(sendUpdates)
	q.Set("text", text)
	var created Event
	path := "/calendars/" + url.PathEscape(calendarID) + "/events/quickAdd"
	if err := c.api.Post(ctx, path, q, nil, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpcomingEvents returns the next events on a calendar within the coming
// number of days, expanded and ordered by start time.
func (c *Client) UpcomingEvents(ctx context.Context, calendarID string, days, max int) ([]*Event, error) {
	now := c.now()
	opts := ListEventsOptions{
		TimeMin:      now,
		TimeMax:      now.AddDate(0, 0, days),
		SingleEvents: true,
		OrderBy:      "startTime",
	}
	return c.ListAllEvents(ctx, calendarID, opts, max)
}

func eventPath(calendarID, eventID string) string {
	return "/calendars/" + url.PathEscape(calendarID) + "/events/" + url.PathEscape(eventID)
}

func sendUpdatesQuery(s SendUpdates) url.Values {
	q := url.Values{}
	if s != "" {
		q.Set("sendUpdates", string(s))
	}
	return q
}

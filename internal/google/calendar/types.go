package calendar

// SendUpdates controls notification fan-out for event mutations.
type SendUpdates string

const (
	// SendUpdatesAll notifies all guests.
	SendUpdatesAll SendUpdates = "all"
	// SendUpdatesExternalOnly notifies only guests outside the organiser's
	// domain.
	SendUpdatesExternalOnly SendUpdates = "externalOnly"
	// SendUpdatesNone sends no notifications.
	SendUpdatesNone SendUpdates = "none"
)

// CalendarListEntry is one calendar on the user's calendar list.
type CalendarListEntry struct {
	ID              string `json:"id,omitempty"`
	Summary         string `json:"summary,omitempty"`
	Description     string `json:"description,omitempty"`
	TimeZone        string `json:"timeZone,omitempty"`
	AccessRole      string `json:"accessRole,omitempty"`
	Primary         bool   `json:"primary,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// CalendarList is one page of the user's calendar list.
type CalendarList struct {
	Items         []*CalendarListEntry `json:"items"`
	NextPageToken string               `json:"nextPageToken,omitempty"`
	NextSyncToken string               `json:"nextSyncToken,omitempty"`
}

// EventDateTime is a calendar point in time: either an all-day Date or a
// timezone-aware DateTime.
type EventDateTime struct {
	Date     string `json:"date,omitempty"`     // "2026-08-23" for all-day
	DateTime string `json:"dateTime,omitempty"` // RFC 3339
	TimeZone string `json:"timeZone,omitempty"`
}

// Attendee is an event guest.
type Attendee struct {
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	Optional       bool   `json:"optional,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
	Organizer      bool   `json:"organizer,omitempty"`
}

// Event is a Calendar v3 event.
type Event struct {
	ID          string         `json:"id,omitempty"`
	Status      string         `json:"status,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Start       *EventDateTime `json:"start,omitempty"`
	End         *EventDateTime `json:"end,omitempty"`
	Attendees   []*Attendee    `json:"attendees,omitempty"`
	Recurrence  []string       `json:"recurrence,omitempty"`
	HTMLLink    string         `json:"htmlLink,omitempty"`
	Created     string         `json:"created,omitempty"`
	Updated     string         `json:"updated,omitempty"`
}

// Events is one page of an events listing.
type Events struct {
	Summary       string   `json:"summary,omitempty"`
	TimeZone      string   `json:"timeZone,omitempty"`
	Items         []*Event `json:"items"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
	NextSyncToken string   `json:"nextSyncToken,omitempty"`
}

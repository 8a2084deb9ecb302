// Package drive is a typed Google Drive v3 client built on the shared
// request pipeline.
package drive

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/custodia-labs/workspace-go/internal/google"
)

// BaseURL is the Drive v3 production endpoint.
const BaseURL = "https://www.googleapis.com/drive/v3"

// DefaultFields is the file metadata requested when the caller does not
// select fields explicitly.
const DefaultFields = "id,name,mimeType,size,modifiedTime,webViewLink,parents"

// Client is a typed Google Drive API client.
type Client struct {
	api *google.Client
}

// New creates a Drive client. The client owns its rate limiter; nothing is
// shared with other clients built from the same config.
func New(cfg google.ClientConfig) *Client {
	return &Client{api: google.NewClient(google.ServiceDrive, BaseURL, cfg)}
}

// API exposes the underlying pipeline client, mainly for stats queries.
func (c *Client) API() *google.Client {
	return c.api
}

// Stats returns the client's rate limiter snapshot.
func (c *Client) Stats() google.Stats {
	return c.api.Stats()
}

// ListOptions controls a files listing.
type ListOptions struct {
	// Query is a Drive search expression, e.g. "mimeType='text/plain'".
	Query string
	// OrderBy is a comma-separated sort list, e.g. "modifiedTime desc".
	OrderBy string
	// PageSize limits one page; Drive caps this at 1000.
	PageSize int
	// Fields selects file metadata fields. Defaults to DefaultFields.
	Fields string
	// PageToken resumes a previous listing.
	PageToken string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Query != "" {
		q.Set("q", o.Query)
	}
	if o.OrderBy != "" {
		q.Set("orderBy", o.OrderBy)
	}
	if o.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	fields := o.Fields
	if fields == "" {
		fields = DefaultFields
	}
	q.Set("fields", fmt.Sprintf("nextPageToken,incompleteSearch,files(%s)", fields))
	if o.PageToken != "" {
		q.Set("pageToken", o.PageToken)
	}
	return q
}

// List returns one page of files matching the options.
func (c *Client) List(ctx context.Context, opts ListOptions) (*FileList, error) {
	var list FileList
	if err := c.api.Get(ctx, "/files", opts.values(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListAll pages through the listing until the server returns no next-page
// token. When max is positive the result is truncated to max entries and
// no further pages are fetched.
func (c *Client) ListAll(ctx context.Context, opts ListOptions, max int) ([]*File, error) {
	var all []*File
	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		page, err := c.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Files...)

		if max > 0 && len(all) >= max {
			return all[:max], nil
		}
		if page.NextPageToken == "" {
			return all, nil
		}
		opts.PageToken = page.NextPageToken
	}
}

// Get fetches metadata for one file. fields defaults to DefaultFields.
func (c *Client) Get(ctx context.Context, fileID, fields string) (*File, error) {
	if fields == "" {
		fields = DefaultFields
	}
	q := url.Values{"fields": {fields}}
	var file File
	if err := c.api.Get(ctx, "/files/"+url.PathEscape(fileID), q, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Download fetches a file's binary content. The response is returned as-is
// without JSON decoding; the call still flows through the rate limiter.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	q := url.Values{"alt": {"media"}}
	return c.api.Download(ctx, "/files/"+url.PathEscape(fileID), q)
}

// Export converts a Google Workspace file (Doc, Sheet, Slides) to the given
// MIME type and returns the converted bytes.
func (c *Client) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	q := url.Values{"mimeType": {mimeType}}
	return c.api.Download(ctx, "/files/"+url.PathEscape(fileID)+"/export", q)
}

// Create creates file metadata. Content upload is a separate endpoint and
// out of scope here.
func (c *Client) Create(ctx context.Context, file *File) (*File, error) {
	var created File
	if err := c.api.Post(ctx, "/files", nil, file, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update patches file metadata.
func (c *Client) Update(ctx context.Context, fileID string, file *File) (*File, error) {
	var updated File
	if err := c.api.Patch(ctx, "/files/"+url.PathEscape(fileID), nil, file, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete permanently removes a file.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	return c.api.Delete(ctx, "/files/"+url.PathEscape(fileID), nil)
}

// ListPermissions returns the sharing grants on a file.
func (c *Client) ListPermissions(ctx context.Context, fileID string) (*PermissionList, error) {
	q := url.Values{"fields": {"permissions(id,type,role,emailAddress,domain,displayName)"}}
	var list PermissionList
	if err := c.api.Get(ctx, "/files/"+url.PathEscape(fileID)+"/permissions", q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreatePermission adds a sharing grant to a file.
func (c *Client) CreatePermission(
	ctx context.Context, fileID string, perm *Permission, sendNotification bool,
) (*Permission, error) {
	q := url.Values{"sendNotificationEmail": {strconv.FormatBool(sendNotification)}}
	var created Permission
	path := "/files/" + url.PathEscape(fileID) + "/permissions"
	if err := c.api.Post(ctx, path, q, perm, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// About returns the account's user info and storage quota.
func (c *Client) About(ctx context.Context) (*About, error) {
	q := url.Values{"fields": {"user,storageQuota"}}
	var about About
	if err := c.api.Get(ctx, "/about", q, &about); err != nil {
		return nil, err
	}
	return &about, nil
}

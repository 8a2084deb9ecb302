package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/workspace-go/internal/google"
)

// newTestServer pairs a Drive client with a local HTTP server.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(google.ClientConfig{
		AccessToken: "test-token",
		BaseURL:     srv.URL,
		RateLimit:   &google.RateLimitProfile{RequestsPerUserPerMinute: 60000, BurstSize: 100, Window: time.Minute},
	})
	return client, srv
}

func TestList(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "name contains 'report'", q.Get("q"))
		assert.Equal(t, "modifiedTime desc", q.Get("orderBy"))
		assert.Equal(t, "25", q.Get("pageSize"))
		assert.Contains(t, q.Get("fields"), "nextPageToken")

		fmt.Fprint(w, `{
			"files": [
				{"id": "f1", "name": "report.txt", "mimeType": "text/plain", "size": "2048"},
				{"id": "f2", "name": "report2.txt", "mimeType": "text/plain"}
			],
			"nextPageToken": "page2"
		}`)
	})

	list, err := client.List(context.Background(), ListOptions{
		Query:    "name contains 'report'",
		OrderBy:  "modifiedTime desc",
		PageSize: 25,
	})
	require.NoError(t, err)

	require.Len(t, list.Files, 2)
	assert.Equal(t, "f1", list.Files[0].ID)
	assert.Equal(t, int64(2048), list.Files[0].Size, "size arrives as a JSON string")
	assert.Equal(t, "page2", list.NextPageToken)
}

func TestListAll(t *testing.T) {
	t.Run("stops when no next page token", func(t *testing.T) {
		var requests int
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			requests++
			switch r.URL.Query().Get("pageToken") {
			case "":
				fmt.Fprint(w, `{"files":[{"id":"a"},{"id":"b"}],"nextPageToken":"p2"}`)
			case "p2":
				fmt.Fprint(w, `{"files":[{"id":"c"}]}`)
			default:
				t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
			}
		})

		files, err := client.ListAll(context.Background(), ListOptions{}, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, requests)
		require.Len(t, files, 3)
		assert.Equal(t, "c", files[2].ID)
	})

	t.Run("cap truncates without over-fetching", func(t *testing.T) {
		var requests int
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			requests++
			fmt.Fprintf(w, `{"files":[{"id":"x%d"},{"id":"y%d"}],"nextPageToken":"p%d"}`,
				requests, requests, requests)
		})

		files, err := client.ListAll(context.Background(), ListOptions{}, 3)
		require.NoError(t, err)
		assert.Len(t, files, 3)
		assert.Equal(t, 2, requests, "must stop after the page that crossed the cap")
	})
}

func TestGet(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/f1", r.URL.Path)
		assert.Equal(t, DefaultFields, r.URL.Query().Get("fields"))
		fmt.Fprint(w, `{"id":"f1","name":"notes.md","mimeType":"text/markdown"}`)
	})

	file, err := client.Get(context.Background(), "f1", "")
	require.NoError(t, err)
	assert.Equal(t, "notes.md", file.Name)
}

func TestDownload(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/f1", r.URL.Path)
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	})

	data, err := client.Download(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestExport(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/doc1/export", r.URL.Path)
		assert.Equal(t, ExportMimeText, r.URL.Query().Get("mimeType"))
		fmt.Fprint(w, "plain text body")
	})

	data, err := client.Export(context.Background(), "doc1", ExportMimeText)
	require.NoError(t, err)
	assert.Equal(t, "plain text body", string(data))
}

func TestCreateUpdateDelete(t *testing.T) {
	t.Run("create posts metadata", func(t *testing.T) {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/files", r.URL.Path)

			var body File
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "new folder", body.Name)
			assert.Equal(t, MimeTypeFolder, body.MimeType)

			fmt.Fprint(w, `{"id":"created","name":"new folder"}`)
		})

		created, err := client.Create(context.Background(), &File{Name: "new folder", MimeType: MimeTypeFolder})
		require.NoError(t, err)
		assert.Equal(t, "created", created.ID)
	})

	t.Run("update patches metadata", func(t *testing.T) {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/files/f1", r.URL.Path)
			fmt.Fprint(w, `{"id":"f1","name":"renamed"}`)
		})

		updated, err := client.Update(context.Background(), "f1", &File{Name: "renamed"})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Name)
	})

	t.Run("delete", func(t *testing.T) {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/files/f1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, client.Delete(context.Background(), "f1"))
	})

	t.Run("delete missing file surfaces not found", func(t *testing.T) {
		client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"message":"File not found"}}`)
		})

		err := client.Delete(context.Background(), "gone")
		assert.True(t, google.IsNotFound(err))
	})
}

func TestPermissions(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/files/f1/permissions", r.URL.Path)
			fmt.Fprint(w, `{"permissions":[{"id":"p1","type":"user","role":"reader","emailAddress":"a@example.com"}]}`)
		})

		list, err := client.ListPermissions(context.Background(), "f1")
		require.NoError(t, err)
		require.Len(t, list.Permissions, 1)
		assert.Equal(t, "reader", list.Permissions[0].Role)
	})

	t.Run("create", func(t *testing.T) {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "false", r.URL.Query().Get("sendNotificationEmail"))

			var body Permission
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "writer", body.Role)

			fmt.Fprint(w, `{"id":"p2","type":"user","role":"writer"}`)
		})

		perm := &Permission{Type: "user", Role: "writer", EmailAddress: "b@example.com"}
		created, err := client.CreatePermission(context.Background(), "f1", perm, false)
		require.NoError(t, err)
		assert.Equal(t, "p2", created.ID)
	})
}

func TestAbout(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/about", r.URL.Path)
		fmt.Fprint(w, `{
			"user": {"displayName": "Test User", "emailAddress": "user@example.com"},
			"storageQuota": {"limit": "16106127360", "usage": "4096"}
		}`)
	})

	about, err := client.About(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", about.User.EmailAddress)
	assert.Equal(t, int64(16106127360), about.StorageQuota.Limit)
	assert.Equal(t, int64(4096), about.StorageQuota.Usage)
}

func TestStats_BurstOverride(t *testing.T) {
	client := New(google.ClientConfig{
		AccessToken: "t",
		RateLimit:   &google.RateLimitProfile{BurstSize: 2},
	})

	stats := client.Stats()
	assert.InDelta(t, 2.0, stats.Tokens, 0.001)
	assert.Equal(t, 2, stats.Profile.BurstSize)
}

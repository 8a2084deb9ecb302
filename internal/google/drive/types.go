package drive

// Google Workspace MIME types.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder       = "application/vnd.google-apps.folder"
)

// Export formats for Google Workspace files.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
	ExportMimePDF  = "application/pdf"
)

// File is Drive v3 file metadata. Size is transmitted as a JSON string.
type File struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	MimeType     string   `json:"mimeType,omitempty"`
	Description  string   `json:"description,omitempty"`
	Parents      []string `json:"parents,omitempty"`
	Size         int64    `json:"size,omitempty,string"`
	Trashed      bool     `json:"trashed,omitempty"`
	Starred      bool     `json:"starred,omitempty"`
	WebViewLink  string   `json:"webViewLink,omitempty"`
	IconLink     string   `json:"iconLink,omitempty"`
	CreatedTime  string   `json:"createdTime,omitempty"`
	ModifiedTime string   `json:"modifiedTime,omitempty"`
	Owners       []*User  `json:"owners,omitempty"`
	Shared       bool     `json:"shared,omitempty"`
}

// User identifies a Drive user.
type User struct {
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
	PhotoLink    string `json:"photoLink,omitempty"`
	Me           bool   `json:"me,omitempty"`
}

// FileList is one page of a files listing.
type FileList struct {
	Files            []*File `json:"files"`
	NextPageToken    string  `json:"nextPageToken,omitempty"`
	IncompleteSearch bool    `json:"incompleteSearch,omitempty"`
}

// Permission is a sharing grant on a file.
type Permission struct {
	ID           string `json:"id,omitempty"`
	Type         string `json:"type,omitempty"` // user, group, domain, anyone
	Role         string `json:"role,omitempty"` // owner, writer, commenter, reader
	EmailAddress string `json:"emailAddress,omitempty"`
	Domain       string `json:"domain,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

// PermissionList is the sharing grants on a file.
type PermissionList struct {
	Permissions   []*Permission `json:"permissions"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

// StorageQuota is the account's storage usage. All values are JSON strings.
type StorageQuota struct {
	Limit             int64 `json:"limit,omitempty,string"`
	Usage             int64 `json:"usage,omitempty,string"`
	UsageInDrive      int64 `json:"usageInDrive,omitempty,string"`
	UsageInDriveTrash int64 `json:"usageInDriveTrash,omitempty,string"`
}

// About describes the account behind the credential.
type About struct {
	User         *User         `json:"user,omitempty"`
	StorageQuota *StorageQuota `json:"storageQuota,omitempty"`
}

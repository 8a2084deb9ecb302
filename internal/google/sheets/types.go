package sheets

// ValueInput selects how written cell values are interpreted.
type ValueInput string

const (
	// ValueInputRaw stores values exactly as given, without parsing.
	ValueInputRaw ValueInput = "RAW"
	// ValueInputUserEntered parses values as if typed into the UI
	// (numbers, dates, formulas).
	ValueInputUserEntered ValueInput = "USER_ENTERED"
)

// Spreadsheet is Sheets v4 spreadsheet metadata, optionally with grid data.
type Spreadsheet struct {
	SpreadsheetID  string                 `json:"spreadsheetId,omitempty"`
	Properties     *SpreadsheetProperties `json:"properties,omitempty"`
	Sheets         []*Sheet               `json:"sheets,omitempty"`
	SpreadsheetURL string                 `json:"spreadsheetUrl,omitempty"`
}

// SpreadsheetProperties are spreadsheet-level settings.
type SpreadsheetProperties struct {
	Title    string `json:"title,omitempty"`
	Locale   string `json:"locale,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Sheet is one tab of a spreadsheet.
type Sheet struct {
	Properties *SheetProperties `json:"properties,omitempty"`
	Data       []map[string]any `json:"data,omitempty"`
}

// SheetProperties are tab-level settings.
type SheetProperties struct {
	SheetID   int64  `json:"sheetId,omitempty"`
	Title     string `json:"title,omitempty"`
	Index     int64  `json:"index,omitempty"`
	SheetType string `json:"sheetType,omitempty"`
}

// ValueRange is a rectangular block of cell values.
type ValueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values,omitempty"`
}

// BatchGetResponse holds the value ranges for a batch read.
type BatchGetResponse struct {
	SpreadsheetID string        `json:"spreadsheetId,omitempty"`
	ValueRanges   []*ValueRange `json:"valueRanges,omitempty"`
}

// UpdateResponse describes the outcome of a values write.
type UpdateResponse struct {
	SpreadsheetID  string `json:"spreadsheetId,omitempty"`
	UpdatedRange   string `json:"updatedRange,omitempty"`
	UpdatedRows    int64  `json:"updatedRows,omitempty"`
	UpdatedColumns int64  `json:"updatedColumns,omitempty"`
	UpdatedCells   int64  `json:"updatedCells,omitempty"`
}

// BatchUpdateResponse describes the outcome of a batch values write.
type BatchUpdateResponse struct {
	SpreadsheetID       string            `json:"spreadsheetId,omitempty"`
	TotalUpdatedRows    int64             `json:"totalUpdatedRows,omitempty"`
	TotalUpdatedColumns int64             `json:"totalUpdatedColumns,omitempty"`
	TotalUpdatedCells   int64             `json:"totalUpdatedCells,omitempty"`
	Responses           []*UpdateResponse `json:"responses,omitempty"`
}

// AppendResponse describes the outcome of an append.
type AppendResponse struct {
	SpreadsheetID string          `json:"spreadsheetId,omitempty"`
	TableRange    string          `json:"tableRange,omitempty"`
	Updates       *UpdateResponse `json:"updates,omitempty"`
}

// batchUpdateValuesRequest is the wire shape for values:batchUpdate.
type batchUpdateValuesRequest struct {
	ValueInputOption string        `json:"valueInputOption"`
	Data             []*ValueRange `json:"data"`
}

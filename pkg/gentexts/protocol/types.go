package protocol

import "time"

// TextListResponse carries one generated text list
type TextListResponse struct {
	ID    string   `json:"id,omitempty"`
	Count int      `json:"count"`
	Texts []string `json:"texts"`
}

// RandomTextResponse carries one text drawn from the server's pool
type RandomTextResponse struct {
	Text string `json:"text"`
}

// TimeResponse is the world time snapshot served by the backend
type TimeResponse struct {
	Timezone     string    `json:"timezone"`
	Datetime     string    `json:"datetime"`
	UTCOffset    string    `json:"utc_offset,omitempty"`
	Abbreviation string    `json:"abbreviation,omitempty"`
	UnixTime     int64     `json:"unixtime,omitempty"`
	Title        string    `json:"title"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// ElapsedResponse reports the time since the backend started
type ElapsedResponse struct {
	Seconds float64 `json:"seconds"`
}

// HistoryEntry is one archived text list
type HistoryEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Count     int       `json:"count"`
	Bytes     int       `json:"bytes"`
	Texts     []string  `json:"texts,omitempty"`
}

// HistoryResponse lists archived text lists, newest first
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// VersionResponse reports the server protocol version
type VersionResponse struct {
	Version string `json:"version"`
}

// HealthResponse indicates node health
type HealthResponse struct {
	Status string `json:"status"`
}

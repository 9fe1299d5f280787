package api

import "time"

type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	Size       int       `json:"size_bytes"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Duration   float64   `json:"duration_sec"`
	Service    string    `json:"service"`
}

type CheckResponse struct {
	Allowed bool     `json:"allowed"`
	Matches []string `json:"matches,omitempty"`
}

type DictionaryInfo struct {
	Words    int        `json:"words"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

type WordsRequest struct {
	Words []string `json:"words"`
}

package dtos

import "time"

// APIResponse is the envelope around every HTTP response.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type CacheHealth struct {
	Backend string `json:"backend"`
	Status  string `json:"status"`
	Entries *int   `json:"entries,omitempty"` // in-memory backend only
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status        string      `json:"status"`
	Uptime        string      `json:"uptime"`
	UpSince       time.Time   `json:"up_since"`
	Summaries     CacheHealth `json:"summaries"`
	Conversations CacheHealth `json:"conversations"`
	ChatEnabled   bool        `json:"chat_enabled"`
}

package api

import (
	"context"
	"io"
	"net/http"

	"uav-logchat/flightdesk/internal/models/dtos"
)

// LogService is the upload side used by the log handlers.
type LogService interface {
	UploadLog(ctx context.Context, filename string, src io.Reader) (*dtos.UploadResponse, error)
	GetSummary(logID string) (*dtos.FlightSummary, error)
}

// ChatService is the conversation side used by the chat handlers.
type ChatService interface {
	ProcessMessage(ctx context.Context, logID, conversationID, message string, summary *dtos.FlightSummary) (string, error)
	ClearConversation(conversationID string) bool
}

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

func (h *Handlers) UploadLog() http.HandlerFunc {
	return UploadLogHandler(h.deps.Services.Logs, h.deps.Config.Upload.MaxSize)
}

func (h *Handlers) GetLog() http.HandlerFunc {
	return GetLogHandler(h.deps.Services.Logs)
}

func (h *Handlers) Chat() http.HandlerFunc {
	return ChatHandler(h.deps.Services.Logs, h.deps.Services.Chat)
}

func (h *Handlers) ClearChat() http.HandlerFunc {
	return ClearChatHandler(h.deps.Services.Logs, h.deps.Services.Chat)
}

func (h *Handlers) HealthCheck() http.HandlerFunc {
	return HealthCheckHandler(h.deps.Caches, h.deps.Config.Gemini.APIKey != "", h.deps.UpSince)
}

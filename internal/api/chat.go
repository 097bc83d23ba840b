package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"uav-logchat/flightdesk/internal/common"
	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/models/dtos"
	"uav-logchat/flightdesk/internal/services"
)

const maxChatBody = 64 << 10

// ChatHandler handles POST /api/chat/{log_id}?conversation_id=
func ChatHandler(logs LogService, chat ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		logID := chi.URLParam(r, "log_id")

		summary, err := logs.GetSummary(logID)
		if err != nil {
			common.RespondError(w, initTime, nil, constants.MsgLogNotFound, http.StatusNotFound)
			return
		}

		var req dtos.ChatRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		conversationID := r.URL.Query().Get("conversation_id")
		if conversationID == "" {
			conversationID = uuid.NewString()
		}

		answer, err := chat.ProcessMessage(r.Context(), logID, conversationID, req.Message, summary)
		if err != nil {
			if errors.Is(err, services.ErrEmptyMessage) {
				common.RespondError(w, initTime, nil, constants.MsgEmptyMessage, http.StatusBadRequest)
				return
			}
			common.RespondError(w, initTime, nil, constants.MsgInternalError, http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, constants.MsgChatResponse, dtos.ChatResponse{
			ConversationID: conversationID,
			Response:       answer,
		})
	}
}

// ClearChatHandler handles DELETE /api/chat/{log_id}?conversation_id=
func ClearChatHandler(logs LogService, chat ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if _, err := logs.GetSummary(chi.URLParam(r, "log_id")); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgLogNotFound, http.StatusNotFound)
			return
		}

		conversationID := r.URL.Query().Get("conversation_id")
		if conversationID == "" {
			common.RespondError(w, initTime, nil, constants.MsgMissingConvID, http.StatusBadRequest)
			return
		}

		chat.ClearConversation(conversationID)
		common.RespondSuccess(w, initTime, constants.MsgChatCleared, nil)
	}
}

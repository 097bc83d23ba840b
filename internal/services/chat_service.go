package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"uav-logchat/flightdesk/internal/common"
	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/logging"
	"uav-logchat/flightdesk/internal/metrics"
	"uav-logchat/flightdesk/internal/models/dtos"
	"uav-logchat/flightdesk/internal/providers"
)

var ErrEmptyMessage = errors.New(constants.MsgEmptyMessage)

const conversationCacheName = "conversations"

// ChatService answers questions about a flight summary and keeps one history per
// conversation id.
type ChatService struct {
	conversations common.CacheInterface
	llm           providers.LanguageModel
	metrics       *metrics.MetricsRegistry
	ttl           time.Duration
	locks         *keyedMutex
}

func NewChatService(conversations common.CacheInterface, llm providers.LanguageModel, metricsReg *metrics.MetricsRegistry, ttl time.Duration) *ChatService {
	return &ChatService{
		conversations: conversations,
		llm:           llm,
		metrics:       metricsReg,
		ttl:           ttl,
		locks:         newKeyedMutex(),
	}
}

// BuildPrompt composes the text sent to the model for one user message.
func BuildPrompt(summary *dtos.FlightSummary, message string) (string, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(constants.ChatSystemInstruction)
	sb.WriteByte('\n')
	sb.Write(data)
	sb.WriteByte('\n')
	sb.WriteString(message)
	return sb.String(), nil
}

// ProcessMessage sends message with the flight summary to the model and returns
// its answer. A provider failure is not an error: the returned text describes it
// and the history is left unchanged.
func (s *ChatService) ProcessMessage(ctx context.Context, logID, conversationID, message string, summary *dtos.FlightSummary) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	key := common.CacheKey(constants.CachePrefixConversation, conversationID)
	unlock := s.locks.Lock(key)
	defer unlock()

	history := s.History(conversationID)
	if len(history) == 0 {
		history = append(history, dtos.ChatTurn{Role: dtos.RoleSystem, Content: constants.ChatSystemInstruction})
	}

	prompt, err := BuildPrompt(summary, message)
	if err != nil {
		s.metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return constants.MsgChatErrorResponse + err.Error(), nil
	}

	start := time.Now()
	answer, err := s.llm.GenerateContent(ctx, prompt)
	s.metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		logging.Warn("Language model request failed",
			"log_id", logID,
			"conversation_id", conversationID,
			"provider", s.llm.GetProviderType(),
			"error", err.Error(),
		)
		return constants.MsgChatErrorResponse + err.Error(), nil
	}

	history = append(history,
		dtos.ChatTurn{Role: dtos.RoleUser, Content: message},
		dtos.ChatTurn{Role: dtos.RoleAssistant, Content: answer},
	)
	s.conversations.Set(key, history, s.ttl)
	s.metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()

	logging.Debug("Chat message answered",
		"log_id", logID,
		"conversation_id", conversationID,
		"turns", len(history),
	)
	return answer, nil
}

// History returns a copy of the stored turns of a conversation.
func (s *ChatService) History(conversationID string) []dtos.ChatTurn {
	turns, ok := common.GetTyped[[]dtos.ChatTurn](s.conversations, common.CacheKey(constants.CachePrefixConversation, conversationID))
	if !ok {
		s.metrics.CacheMissesTotal.WithLabelValues(conversationCacheName).Inc()
		return nil
	}
	s.metrics.CacheHitsTotal.WithLabelValues(conversationCacheName).Inc()
	out := make([]dtos.ChatTurn, len(turns))
	copy(out, turns)
	return out
}

// ClearConversation drops a conversation's history, reporting whether it existed.
func (s *ChatService) ClearConversation(conversationID string) bool {
	key := common.CacheKey(constants.CachePrefixConversation, conversationID)
	unlock := s.locks.Lock(key)
	defer unlock()

	_, found := s.conversations.Get(key)
	s.conversations.Delete(key)
	return found
}

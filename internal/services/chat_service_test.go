package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"uav-logchat/flightdesk/internal/common"
	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/metrics"
	"uav-logchat/flightdesk/internal/models/dtos"
)

// Mock LanguageModel
type mockLanguageModel struct {
	mu                  sync.Mutex
	prompts             []string
	generateContentFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockLanguageModel) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.generateContentFunc(ctx, prompt)
}

func (m *mockLanguageModel) GetProviderType() string {
	return "mock"
}

func newTestChatService(llm *mockLanguageModel) *ChatService {
	return NewChatService(common.NewCacheService(0, 0), llm, metrics.NewMetricsRegistry(prometheus.NewRegistry()), 0)
}

func testSummary() *dtos.FlightSummary {
	return &dtos.FlightSummary{
		FlightTime:     120,
		MaxAltitude:    200,
		GPSIssues:      []dtos.GPSIssue{},
		CriticalErrors: []dtos.Event{},
		ModeChanges:    []dtos.Event{},
		MessageTypes:   []string{"GPS"},
	}
}

func TestChatService_ProcessMessage_ComposesPrompt(t *testing.T) {
	llm := &mockLanguageModel{
		generateContentFunc: func(ctx context.Context, prompt string) (string, error) {
			return "You flew for two minutes.", nil
		},
	}
	svc := newTestChatService(llm)
	summary := testSummary()

	answer, err := svc.ProcessMessage(context.Background(), "log-1", "conv-1", "How long was the flight?", summary)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if answer != "You flew for two minutes." {
		t.Errorf("Expected model answer verbatim, got %q", answer)
	}

	summaryJSON, _ := json.Marshal(summary)
	want := constants.ChatSystemInstruction + "\n" + string(summaryJSON) + "\nHow long was the flight?"
	if len(llm.prompts) != 1 || llm.prompts[0] != want {
		t.Errorf("Unexpected prompt:\n%q\nexpected:\n%q", llm.prompts, want)
	}
}

func TestChatService_ProcessMessage_RecordsHistory(t *testing.T) {
	llm := &mockLanguageModel{
		generateContentFunc: func(ctx context.Context, prompt string) (string, error) {
			return "answer", nil
		},
	}
	svc := newTestChatService(llm)

	for _, msg := range []string{"first", "second"} {
		if _, err := svc.ProcessMessage(context.Background(), "log-1", "conv-1", msg, testSummary()); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	history := svc.History("conv-1")
	if len(history) != 5 {
		t.Fatalf("Expected system + 2 exchanges, got %d turns", len(history))
	}
	if history[0].Role != dtos.RoleSystem {
		t.Errorf("Expected system turn first, got %s", history[0].Role)
	}
	if history[3].Role != dtos.RoleUser || history[3].Content != "second" {
		t.Errorf("Unexpected user turn: %+v", history[3])
	}
	if history[4].Role != dtos.RoleAssistant || history[4].Content != "answer" {
		t.Errorf("Unexpected assistant turn: %+v", history[4])
	}

	if len(svc.History("conv-2")) != 0 {
		t.Error("Expected conversations to be independent")
	}
}

func TestChatService_ProcessMessage_ProviderFailure(t *testing.T) {
	llm := &mockLanguageModel{
		generateContentFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("quota exhausted")
		},
	}
	svc := newTestChatService(llm)

	answer, err := svc.ProcessMessage(context.Background(), "log-1", "conv-1", "hello", testSummary())
	if err != nil {
		t.Fatalf("Expected provider failure to be reported as text, got %v", err)
	}
	if answer != "Error processing message: quota exhausted" {
		t.Errorf("Unexpected answer: %q", answer)
	}
	if len(svc.History("conv-1")) != 0 {
		t.Error("Expected history not to be extended on failure")
	}
}

func TestChatService_ProcessMessage_EmptyMessage(t *testing.T) {
	llm := &mockLanguageModel{
		generateContentFunc: func(ctx context.Context, prompt string) (string, error) {
			t.Error("Expected no provider call")
			return "", nil
		},
	}
	svc := newTestChatService(llm)

	if _, err := svc.ProcessMessage(context.Background(), "log-1", "conv-1", "   ", testSummary()); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Expected ErrEmptyMessage, got %v", err)
	}
}

func TestChatService_ProcessMessage_MinimalSummary(t *testing.T) {
	llm := &mockLanguageModel{
		generateContentFunc: func(ctx context.Context, prompt string) (string, error) {
			return "ok", nil
		},
	}
	svc := newTestChatService(llm)
	summary := &dtos.FlightSummary{Error: "assemble flight summary: boom", MessageTypes: []string{"GPS"}}

	if _, err := svc.ProcessMessage(context.Background(), "log-1", "conv-1", "hi", summary); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(llm.prompts[0], `{"error":"assemble flight summary: boom","message_types":["GPS"]}`) {
		t.Errorf("Expected minimal summary in prompt, got %q", llm.prompts[0])
	}
}

func TestChatService_ClearConversation(t *testing.T) {
	llm := &mockLanguageModel{
		generateContentFunc: func(ctx context.Context, prompt string) (string, error) {
			return "ok", nil
		},
	}
	svc := newTestChatService(llm)

	if svc.ClearConversation("conv-1") {
		t.Error("Expected false for unknown conversation")
	}

	svc.ProcessMessage(context.Background(), "log-1", "conv-1", "hi", testSummary())
	if !svc.ClearConversation("conv-1") {
		t.Error("Expected true when clearing an existing conversation")
	}
	if len(svc.History("conv-1")) != 0 {
		t.Error("Expected history to be removed")
	}
}

func TestChatService_ConcurrentMessagesKeepAllTurns(t *testing.T) {
	llm := &mockLanguageModel{
		generateContentFunc: func(ctx context.Context, prompt string) (string, error) {
			return "ok", nil
		},
	}
	svc := newTestChatService(llm)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.ProcessMessage(context.Background(), "log-1", "conv-1", "ping", testSummary())
		}()
	}
	wg.Wait()

	if got := len(svc.History("conv-1")); got != 1+2*n {
		t.Errorf("Expected %d turns, got %d", 1+2*n, got)
	}
	if svc.locks.size() != 0 {
		t.Errorf("Expected no locks retained, got %d", svc.locks.size())
	}
}

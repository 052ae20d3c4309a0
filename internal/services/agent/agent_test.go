package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

type stubProvider struct {
	responses []string
	err       error
	requests  []interfaces.CompletionRequest
}

func (s *stubProvider) Generate(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "stub response", nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *stubProvider) ModelInfo() models.ModelInfo {
	return models.ModelInfo{Provider: "stub", Model: "stub-1"}
}

type stubBackend struct {
	sourceType models.SourceType
	contexts   []models.Context
	queries    []string
}

func (s *stubBackend) Retrieve(ctx context.Context, subquery string, maxResults int) *models.RetrievalResult {
	s.queries = append(s.queries, subquery)
	return &models.RetrievalResult{
		Answer:   fmt.Sprintf("answer for %s", subquery),
		Contexts: s.contexts,
	}
}

func (s *stubBackend) SourceType() models.SourceType {
	if s.sourceType == "" {
		return models.SourceTypeDocument
	}
	return s.sourceType
}

func testAgentConfig() *common.AgentConfig {
	return &common.AgentConfig{
		Strategy:              "blind",
		ContextBudget:         DefaultContextBudget,
		InformedContextBudget: DefaultInformedContextBudget,
	}
}

func TestFormatConversationEmptyHistory(t *testing.T) {
	assert.Equal(t, "what next?", FormatConversation("what next?", nil))
}

func TestFormatConversation(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleUser, Content: "tell me about Go"},
		{Role: models.RoleAssistant, Content: "Go is a language"},
	}

	got := FormatConversation("who made it?", history)

	assert.True(t, strings.HasPrefix(got, "Previous conversation:\n"))
	assert.Contains(t, got, "User: tell me about Go\n")
	assert.Contains(t, got, "Assistant: Go is a language\n")
	assert.True(t, strings.HasSuffix(got, "answer this follow-up question: who made it?"))
}

func TestFormatConversationWindowAndSystemSkip(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleUser, Content: "second"},
		{Role: models.RoleSystem, Content: "you are helpful"},
		{Role: models.RoleUser, Content: "third"},
		{Role: models.RoleAssistant, Content: "fourth"},
	}

	got := FormatConversation("q", history)

	// only the last three turns are considered, and system turns are dropped
	assert.NotContains(t, got, "first")
	assert.NotContains(t, got, "second")
	assert.NotContains(t, got, "you are helpful")
	assert.Contains(t, got, "User: third")
	assert.Contains(t, got, "Assistant: fourth")
}

func TestParseSubqueries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		max  int
		want []string
	}{
		{"dashes", "- one\n- two", 4, []string{"one", "two"}},
		{"bullets", "• one\n* two", 4, []string{"one", "two"}},
		{"plain lines", "one\ntwo", 4, []string{"one", "two"}},
		{"blank lines skipped", "- one\n\n  \n- two", 4, []string{"one", "two"}},
		{"duplicates dropped", "- what is X?\n- What is  X?\n- other", 4, []string{"what is X?", "other"}},
		{"capped", "- a\n- b\n- c\n- d\n- e", 3, []string{"a", "b", "c"}},
		{"empty", "  \n\n", 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSubqueries(tt.raw, tt.max))
		})
	}
}

func TestDecomposerBlind(t *testing.T) {
	provider := &stubProvider{responses: []string{"- what is X?\n- how does X work?"}}
	d := NewDecomposer(provider, false, common.GetLogger())

	subs, err := d.Blind(context.Background(), "explain X")

	require.NoError(t, err)
	assert.Equal(t, []string{"what is X?", "how does X work?"}, subs)
	require.Len(t, provider.requests, 1)
	assert.Contains(t, provider.requests[0].Prompt, "Original Query: explain X")
	assert.Contains(t, provider.requests[0].Prompt, "2-4")
}

func TestDecomposerBlindDropsDuplicates(t *testing.T) {
	provider := &stubProvider{responses: []string{"- what is X?\n- what is X?"}}
	d := NewDecomposer(provider, false, common.GetLogger())

	subs, err := d.Blind(context.Background(), "explain X")

	require.NoError(t, err)
	assert.Equal(t, []string{"what is X?"}, subs)
}

func TestDecomposerBlindFallbacks(t *testing.T) {
	// provider failure falls back to the original query and reports the error
	d := NewDecomposer(&stubProvider{err: errors.New("llm down")}, false, common.GetLogger())
	subs, err := d.Blind(context.Background(), "explain X")
	assert.Error(t, err)
	assert.Equal(t, []string{"explain X"}, subs)

	// an unusable response falls back without an error
	d = NewDecomposer(&stubProvider{responses: []string{"  \n"}}, false, common.GetLogger())
	subs, err = d.Blind(context.Background(), "explain X")
	assert.NoError(t, err)
	assert.Equal(t, []string{"explain X"}, subs)
}

func TestDecomposerInformed(t *testing.T) {
	provider := &stubProvider{responses: []string{"- gap one\n- gap two\n- gap three\n- gap four"}}
	d := NewDecomposer(provider, false, common.GetLogger())

	subs, err := d.Informed(context.Background(), "explain X", "[Source 1] From 'Doc':\nsome text")

	require.NoError(t, err)
	// informed decomposition is capped at three
	assert.Equal(t, []string{"gap one", "gap two", "gap three"}, subs)
	assert.Contains(t, provider.requests[0].Prompt, "Initial Results:\n[Source 1] From 'Doc':")
}

func TestDecomposerInformedFallbacks(t *testing.T) {
	d := NewDecomposer(&stubProvider{err: errors.New("llm down")}, false, common.GetLogger())
	subs, err := d.Informed(context.Background(), "topic X", "ctx")
	assert.Error(t, err)
	assert.Equal(t, []string{
		"What additional details can be found about topic X?",
		"Are there any alternative perspectives on topic X?",
	}, subs)

	dWeb := NewDecomposer(&stubProvider{err: errors.New("llm down")}, true, common.GetLogger())
	subs, _ = dWeb.Informed(context.Background(), "topic X", "ctx")
	assert.Equal(t, []string{
		"topic X latest information",
		"topic X alternative perspectives",
	}, subs)
}

func TestFanOutExecutorRun(t *testing.T) {
	backend := &stubBackend{contexts: []models.Context{{DocumentID: "doc_1", Content: "c"}}}
	exec := NewFanOutExecutor(backend, 5, common.GetLogger())

	results := exec.Run(context.Background(), []string{"a", "b"})

	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Subquery)
	assert.Equal(t, "answer for a", results[0].Answer)
	assert.Equal(t, "b", results[1].Subquery)
	assert.Equal(t, []string{"a", "b"}, backend.queries)
}

func TestContextAggregatorCollect(t *testing.T) {
	results := []models.IntermediateResult{
		{Subquery: "a", Contexts: []models.Context{{DocumentID: "1"}, {DocumentID: "2"}}},
		{Subquery: "b", Contexts: []models.Context{{DocumentID: "3"}}},
		{Subquery: "c"},
	}

	all := NewContextAggregator().Collect(results)

	require.Len(t, all, 3)
	assert.Equal(t, "1", all[0].DocumentID)
	assert.Equal(t, "3", all[2].DocumentID)
}

func TestFormatForPromptRanking(t *testing.T) {
	contexts := []models.Context{
		{DocumentTitle: "Low", Content: "low text", Score: 0.2},
		{DocumentTitle: "High", Content: "high text", Score: 0.9, URL: "https://h.example"},
		{Content: "untitled text", Score: 0.5},
	}

	got := NewContextAggregator().FormatForPrompt(contexts, 0)

	assert.True(t, strings.HasPrefix(got, "Context information:\n\n"))
	assert.Contains(t, got, "[Source 1] From 'High' (relevance: 0.90):\nURL: https://h.example\nhigh text")
	assert.Contains(t, got, "[Source 2] From 'Unknown' (relevance: 0.50):\nuntitled text")
	assert.Contains(t, got, "[Source 3] From 'Low' (relevance: 0.20):\nlow text")
	assert.Less(t, strings.Index(got, "high text"), strings.Index(got, "untitled text"))
}

func TestFormatForPromptBudget(t *testing.T) {
	contexts := []models.Context{
		{DocumentTitle: "First", Content: strings.Repeat("a", 100), Score: 0.9},
		{DocumentTitle: "Second", Content: strings.Repeat("b", 100), Score: 0.8},
	}

	got := NewContextAggregator().FormatForPrompt(contexts, 160)

	assert.Contains(t, got, "First")
	assert.NotContains(t, got, "bbb")
	assert.Contains(t, got, contextTruncationNote)

	// a budget too small for even the first block yields no note
	got = NewContextAggregator().FormatForPrompt(contexts, 10)
	assert.Empty(t, got)
}

func TestFormatForPromptEmpty(t *testing.T) {
	assert.Empty(t, NewContextAggregator().FormatForPrompt(nil, 4000))
}

func TestFormatResults(t *testing.T) {
	results := []models.IntermediateResult{
		{Subquery: "a", Answer: "ans a"},
		{Subquery: "b", Answer: "ans b"},
	}

	doc := formatResults(results, false)
	assert.Contains(t, doc, "Subquery 1: a\nResults: ans a")
	assert.Contains(t, doc, "Subquery 2: b\nResults: ans b")

	web := formatResults(results, true)
	assert.Contains(t, web, "Search Query 1: a")
}

func TestSynthesizerError(t *testing.T) {
	s := NewSynthesizer(&stubProvider{err: errors.New("llm down")}, false, common.GetLogger())

	answer, err := s.Synthesize(context.Background(), "q", nil, "")

	assert.Error(t, err)
	assert.Contains(t, answer, "Error synthesizing results")
}

func TestControllerBlindRun(t *testing.T) {
	provider := &stubProvider{responses: []string{
		"- sub one\n- sub two",
		"final answer",
	}}
	backend := &stubBackend{contexts: []models.Context{
		{DocumentID: "doc_1", DocumentTitle: "T", Content: "evidence", Score: 0.7},
	}}
	ctrl := NewController(testAgentConfig(), provider, backend, 5, common.GetLogger())

	result := ctrl.Run(context.Background(), models.Query{Text: "big question"})

	assert.Equal(t, StageDone, ctrl.Stage())
	assert.Equal(t, models.StrategyBlind, result.Strategy)
	assert.Equal(t, "final answer", result.Answer)
	assert.Equal(t, []string{"sub one", "sub two"}, result.Subqueries)
	require.Len(t, result.Intermediate, 2)
	assert.Len(t, result.Contexts, 2)
	assert.Empty(t, result.Failures)
	assert.Equal(t, "stub", result.ModelInfo.Provider)

	// the synthesis prompt carries the per-subquery answers and the ranked view
	last := provider.requests[len(provider.requests)-1]
	assert.Contains(t, last.Prompt, "Subquery 1: sub one")
	assert.Contains(t, last.Prompt, "[Source 1]")
}

func TestControllerInformedRun(t *testing.T) {
	provider := &stubProvider{responses: []string{
		"- follow up one\n- follow up two",
		"informed answer",
	}}
	backend := &stubBackend{contexts: []models.Context{
		{DocumentID: "doc_1", DocumentTitle: "T", Content: "initial evidence", Score: 0.8},
	}}
	ctrl := NewController(testAgentConfig(), provider, backend, 5, common.GetLogger())

	result := ctrl.Run(context.Background(), models.Query{Text: "big question", Strategy: models.StrategyInformed})

	assert.Equal(t, models.StrategyInformed, result.Strategy)
	assert.Equal(t, "informed answer", result.Answer)
	// the initial retrieval is not a subquery but leads the intermediate results
	assert.Equal(t, []string{"follow up one", "follow up two"}, result.Subqueries)
	require.Len(t, result.Intermediate, 3)
	assert.Equal(t, "Initial query: big question", result.Intermediate[0].Subquery)
	// initial query plus both follow-ups hit the backend
	assert.Equal(t, []string{"big question", "follow up one", "follow up two"}, backend.queries)
	// initial contexts feed the informed decomposition prompt
	assert.Contains(t, provider.requests[0].Prompt, "initial evidence")
}

func TestControllerRecordsFailures(t *testing.T) {
	provider := &stubProvider{err: errors.New("llm down")}
	backend := &stubBackend{}
	ctrl := NewController(testAgentConfig(), provider, backend, 5, common.GetLogger())

	result := ctrl.Run(context.Background(), models.Query{Text: "q"})

	assert.Equal(t, StageDone, ctrl.Stage())
	// decomposition fell back to the original query, synthesis degraded
	assert.Equal(t, []string{"q"}, result.Subqueries)
	assert.Contains(t, result.Answer, "Error synthesizing results")
	require.Len(t, result.Failures, 2)
	assert.Equal(t, models.FailureStageDecompose, result.Failures[0].Stage)
	assert.Equal(t, models.FailureStageSynthesize, result.Failures[1].Stage)
}

func TestControllerInvalidStrategyFallsBack(t *testing.T) {
	cfg := &common.AgentConfig{Strategy: "wat", ContextBudget: 4000, InformedContextBudget: 2000}
	ctrl := NewController(cfg, &stubProvider{}, &stubBackend{}, 5, common.GetLogger())

	result := ctrl.Run(context.Background(), models.Query{Text: "q"})

	assert.Equal(t, models.StrategyBlind, result.Strategy)
}

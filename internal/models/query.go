package models

import (
	"fmt"
	"strings"
)

// Strategy selects how the pipeline decomposes the original query before
// fanning out retrieval.
type Strategy string

const (
	// StrategyBlind decomposes the query from its text alone.
	StrategyBlind Strategy = "blind"

	// StrategyInformed performs an initial retrieval first and decomposes
	// with the initial findings as context.
	StrategyInformed Strategy = "informed"
)

// ParseStrategy converts a user-supplied string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyBlind:
		return StrategyBlind, nil
	case StrategyInformed:
		return StrategyInformed, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (expected blind or informed)", s)
	}
}

// SourceType identifies where a retrieval context came from.
type SourceType string

const (
	SourceTypeDocument SourceType = "document"
	SourceTypeWeb      SourceType = "web"
	SourceTypeDeepWeb  SourceType = "deep_web"
)

// ParseSourceType converts a user-supplied string to a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "doc":
		return SourceTypeDocument, nil
	case "web":
		return SourceTypeWeb, nil
	case "deep_web", "deepweb", "deep-web":
		return SourceTypeDeepWeb, nil
	default:
		return "", fmt.Errorf("unknown retrieval backend %q (expected document, web or deep_web)", s)
	}
}

// Message roles for conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Query is the pipeline input: the question, the chosen strategy, and any
// prior conversation turns to fold into it.
type Query struct {
	Text         string    `json:"text"`
	Strategy     Strategy  `json:"strategy"`
	Conversation []Message `json:"conversation,omitempty"`
}

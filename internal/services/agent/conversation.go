package agent

import (
	"fmt"
	"strings"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// conversationWindow is how many trailing turns are folded into the query.
const conversationWindow = 3

// FormatConversation folds recent conversation turns into the query so a
// follow-up question carries its context. System messages are skipped.
// Without history the query is returned unchanged.
func FormatConversation(query string, history []models.Message) string {
	if len(history) == 0 {
		return query
	}

	recent := history
	if len(recent) > conversationWindow {
		recent = recent[len(recent)-conversationWindow:]
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, msg := range recent {
		if msg.Role == models.RoleSystem {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", capitalizeRole(msg.Role), msg.Content)
	}
	fmt.Fprintf(&b, "\n\nConsidering the conversation above, answer this follow-up question: %s", query)
	return b.String()
}

func capitalizeRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

package analysis

import (
	"fmt"
	"strings"
)

// ChatMessage is one message from a chatlog export.
type ChatMessage struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// FormatMessages flattens exported messages into the line-per-message text
// the analysis prompts consume.
func FormatMessages(messages []ChatMessage) string {
	lines := make([]string, len(messages))
	for i, m := range messages {
		sender := m.Sender
		if sender == "" {
			sender = "Unknown"
		}
		lines[i] = fmt.Sprintf("[%s] %s: %s", m.Timestamp, sender, m.Content)
	}
	return strings.Join(lines, "\n")
}

// ChatStatistics summarizes a message batch for the integration response.
type ChatStatistics struct {
	MessageCount  int    `json:"message_count"`
	UniqueSenders int    `json:"unique_senders"`
	Platform      string `json:"platform"`
	GroupName     string `json:"group_name"`
}

func Statistics(messages []ChatMessage, platform, groupName string) ChatStatistics {
	senders := make(map[string]bool)
	for _, m := range messages {
		senders[m.Sender] = true
	}
	return ChatStatistics{
		MessageCount:  len(messages),
		UniqueSenders: len(senders),
		Platform:      platform,
		GroupName:     groupName,
	}
}

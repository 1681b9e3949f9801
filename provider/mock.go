package provider

import (
	"context"
	"strings"
)

// MockBackend answers without calling any model. Hashtag requests get a
// list literal, everything else gets a short synthetic post built from the
// first line of the user prompt.
type MockBackend struct{}

func (MockBackend) Complete(_ context.Context, msgs []Message, _ int) (string, error) {
	var system, user string
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			system = m.Content
		case RoleUser:
			user = m.Content
		}
	}

	if strings.Contains(strings.ToLower(system), "hashtag") {
		return `["#Innovation", "#Leadership", "#Industry"]`, nil
	}

	topic := "this topic"
	for _, line := range strings.Split(user, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "Title:"); ok && strings.TrimSpace(rest) != "" {
			topic = strings.TrimSpace(rest)
			break
		}
	}

	var sb strings.Builder
	sb.WriteString("This is a mock post generated without a language model.\n\n")
	sb.WriteString("I have been reading about ")
	sb.WriteString(topic)
	sb.WriteString(" and it raises a few questions worth discussing.\n\n")
	sb.WriteString("What is your take on it?\n\n")
	sb.WriteString("#Innovation #Leadership #Industry")
	return sb.String(), nil
}

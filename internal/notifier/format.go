package notifier

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const discordMaxLength = 2000

// Message renders the notification text.
func Message(n Notification) string {
	name := n.File.Name
	if name == "" {
		name = "Untitled Meeting"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 *%s*\n", name)
	fmt.Fprintf(&b, "Category: %s (confidence %.0f%%)", n.Category, n.Confidence*100)
	if n.User != "" {
		fmt.Fprintf(&b, "\nOwner: %s", n.User)
	}
	if s := strings.TrimSpace(n.Summary); s != "" {
		b.WriteString("\n\n")
		b.WriteString(s)
	}
	return b.String()
}

// Payload builds the JSON body for platform.
func Payload(platform string, n Notification) map[string]any {
	text := Message(n)
	switch platform {
	case PlatformDiscord:
		return map[string]any{"content": truncate(text, discordMaxLength)}
	case PlatformSlack, PlatformGoogleChat:
		return map[string]any{"text": text}
	default:
		return map[string]any{
			"text":       text,
			"file":       n.File.Name,
			"category":   string(n.Category),
			"confidence": n.Confidence,
			"user":       n.User,
		}
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

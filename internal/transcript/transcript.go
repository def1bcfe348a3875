package transcript

import (
	"sort"
	"strings"
	"time"
)

// FallbackUsername is used when an author's display name cannot be resolved.
const FallbackUsername = "Unknown"

// Message is a normalized chat message ready for rendering.
type Message struct {
	Content   string
	Username  string
	Timestamp time.Time
}

// SortByTime orders messages ascending by timestamp. The sort is stable so
// messages sharing a timestamp keep their arrival order.
func SortByTime(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

// Render joins messages into the transcript text, one
// "<timestamp> <username>: <content>" line per message. Content is rendered
// verbatim, so a message containing newlines spans multiple visual lines.
func Render(msgs []Message) string {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.Timestamp.UTC().Format(time.RFC3339))
		sb.WriteByte(' ')
		sb.WriteString(m.Username)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}

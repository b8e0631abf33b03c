package assist

import (
	"context"
	"fmt"
	"log"
	"strings"

	"taskdesk/pkg/task"
)

// Reply is a chat response with any bullet-point actions the model offered.
type Reply struct {
	Text             string
	SuggestedActions []string
}

const chatSystem = "You are an assistant specialized in task management, focused on helping users organize and optimize their activities."

const chatPromptFmt = `Task manager context:
%s
User message: %s

Please analyze the message and provide:
1. A useful and relevant answer
2. Suggestions for practical actions when appropriate
3. Consider the context of the existing tasks

Keep a professional but friendly tone.`

// chatApology is the fixed reply when the underlying call fails. Chat is the
// one operation that always succeeds from the caller's perspective.
const chatApology = "Sorry, something went wrong while processing your message. Please try again later."

// Chat sends the user message with a digest of the current tasks and returns
// the model's free-text reply. Lines starting with a bullet marker are
// extracted into SuggestedActions.
func (c *Client) Chat(ctx context.Context, message string, current []task.Task) *Reply {
	id := reqID()

	var digest strings.Builder
	if len(current) > 0 {
		digest.WriteString("Current tasks:\n")
		for _, t := range current {
			fmt.Fprintf(&digest, "- %s (%s, %s)\n", t.Title, t.State, t.Priority)
		}
	}
	prompt := fmt.Sprintf(chatPromptFmt, digest.String(), message)

	raw, err := c.llm.Complete(ctx, chatSystem, prompt)
	if err != nil {
		log.Printf("assist: [%s] chat call failed: %v", id, err)
		return &Reply{Text: chatApology, SuggestedActions: []string{}}
	}

	return &Reply{Text: raw, SuggestedActions: extractActions(raw)}
}

// extractActions pulls out lines beginning with "-" or "*", with the marker
// and following space stripped. Other lines are not parsed further.
func extractActions(text string) []string {
	actions := []string{}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			actions = append(actions, strings.TrimSpace(trimmed[1:]))
		}
	}
	return actions
}

package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"taskdesk/pkg/task"
)

// Improvement is the structured improvement suggestion for an existing task.
type Improvement struct {
	TitleSuggestion       string      `json:"title_suggestion"`
	DescriptionSuggestion string      `json:"description_suggestion"`
	Adjustments           Adjustments `json:"suggested_adjustments"`
	SuggestedSubtasks     []string    `json:"suggested_subtasks"`
	Recommendations       []string    `json:"recommendations"`
}

// Adjustments carries the suggested priority/category changes.
type Adjustments struct {
	Priority task.Priority `json:"priority"`
	Category task.Category `json:"category"`
}

const improveSystem = "You are an assistant specialized in task optimization. Reply ONLY with a valid JSON object, no additional text."

const improvePromptFmt = `You are a productivity expert. Analyze this task and suggest improvements.
Reply ONLY with a valid JSON object, no additional text.

Current task:
- Title: %s
- Description: %s
- Priority: %s
- Category: %s

Response format (keep exactly this structure):
{
    "title_suggestion": "suggested improvement for the title",
    "description_suggestion": "suggested improvement for the description",
    "suggested_adjustments": {
        "priority": "High|Medium|Low",
        "category": "Work|Studies|Personal"
    },
    "suggested_subtasks": ["subtask1", "subtask2"],
    "recommendations": ["recommendation1", "recommendation2"]
}`

// SuggestImprovements asks the model how to sharpen an existing task. Any
// failure yields the fallback, which echoes the task's own priority and
// category and embeds its title verbatim in the title suggestion.
func (c *Client) SuggestImprovements(ctx context.Context, t task.Task) *Improvement {
	id := reqID()

	prompt := fmt.Sprintf(improvePromptFmt, t.Title, t.Description, t.Priority, t.Category)

	raw, err := c.llm.Complete(ctx, improveSystem, prompt)
	if err != nil {
		log.Printf("assist: [%s] improve call failed: %v", id, err)
		return fallbackImprovement(t)
	}

	var imp Improvement
	if err := json.Unmarshal([]byte(raw), &imp); err != nil {
		logBadReply(id, "improve", raw, err)
		return fallbackImprovement(t)
	}
	if imp.TitleSuggestion == "" || !imp.Adjustments.Priority.Valid() || !imp.Adjustments.Category.Valid() {
		logBadReply(id, "improve", raw, fmt.Errorf("missing or unknown fields"))
		return fallbackImprovement(t)
	}
	return &imp
}

// fallbackImprovement is the documented substitute for a failed improvement
// call.
func fallbackImprovement(t task.Task) *Improvement {
	priority := t.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}
	category := t.Category
	if category == "" {
		category = task.CategoryPersonal
	}
	return &Improvement{
		TitleSuggestion:       "Consider being more specific with the title: " + t.Title,
		DescriptionSuggestion: "Add more detail to the description",
		Adjustments: Adjustments{
			Priority: priority,
			Category: category,
		},
		SuggestedSubtasks: []string{
			"Break the task down further",
			"Set a specific deadline",
		},
		Recommendations: []string{
			"Add more context",
			"Define completion criteria",
		},
	}
}

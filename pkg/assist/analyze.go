package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"taskdesk/pkg/task"
)

// Analysis is the structured suggestion for a new task.
type Analysis struct {
	Priority       task.Priority  `json:"priority"`
	Category       task.Category  `json:"category"`
	DueDate        string         `json:"due_date"`
	SimilarTasks   []string       `json:"similar_tasks"`
	Justifications Justifications `json:"justifications"`
}

// Justifications carries the per-field rationale strings.
type Justifications struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	DueDate  string `json:"due_date"`
}

const analyzeSystem = "You are an assistant specialized in task analysis. Reply ONLY with a valid JSON object, no additional text."

const analyzePromptFmt = `You are a task management assistant. Analyze the following task and provide recommendations.
Reply ONLY with a valid JSON object, no additional text.

Task:
- Title: %s
- Description: %s

%s

Response format (keep exactly this structure):
{
    "priority": "High|Medium|Low",
    "category": "Work|Studies|Personal",
    "due_date": "YYYY-MM-DD",
    "similar_tasks": ["task1", "task2"],
    "justifications": {
        "priority": "reason for the chosen priority",
        "category": "reason for the chosen category",
        "due_date": "reason for the chosen date"
    }
}`

// AnalyzeNewTask asks the model to suggest priority, category and due date
// for a new task, given a digest of the existing ones. Any transport or
// parse failure yields the deterministic fallback; this never fails from
// the caller's perspective.
func (c *Client) AnalyzeNewTask(ctx context.Context, title, description string, existing []task.Task) *Analysis {
	id := reqID()

	var digest strings.Builder
	for _, t := range existing {
		fmt.Fprintf(&digest, "- %s: %s\n", t.Title, t.Description)
	}
	prompt := fmt.Sprintf(analyzePromptFmt, title, description, digest.String())

	raw, err := c.llm.Complete(ctx, analyzeSystem, prompt)
	if err != nil {
		log.Printf("assist: [%s] analyze call failed: %v", id, err)
		return c.fallbackAnalysis()
	}

	var a Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		logBadReply(id, "analyze", raw, err)
		return c.fallbackAnalysis()
	}
	if !a.Priority.Valid() || !a.Category.Valid() || a.DueDate == "" {
		logBadReply(id, "analyze", raw, fmt.Errorf("missing or unknown fields"))
		return c.fallbackAnalysis()
	}
	if a.SimilarTasks == nil {
		a.SimilarTasks = []string{}
	}
	return &a
}

// fallbackAnalysis is the documented substitute: medium priority, personal
// category, due one week from today. Reproducible given the current date.
func (c *Client) fallbackAnalysis() *Analysis {
	due := c.now().AddDate(0, 0, 7).Format(task.DateLayout)
	return &Analysis{
		Priority:     task.PriorityMedium,
		Category:     task.CategoryPersonal,
		DueDate:      due,
		SimilarTasks: []string{},
		Justifications: Justifications{
			Priority: "Set to medium by default",
			Category: "Set to personal by default",
			DueDate:  "Estimated one week from today",
		},
	}
}

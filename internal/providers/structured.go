package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// adjudicationSchema validates model replies before they are trusted.
const adjudicationSchemaJSON = `{
	"type": "object",
	"properties": {
		"pick": {"type": "string", "enum": ["A", "B"]},
		"text": {"type": "string"}
	},
	"required": ["pick"]
}`

var adjudicationSchema = jsonschema.MustCompileString("adjudication.json", adjudicationSchemaJSON)

// adjudicationUserPrompt renders the arbitration request body shared by all
// backends.
func adjudicationUserPrompt(contextBefore, candidateA, candidateB, contextAfter string) string {
	return fmt.Sprintf(`Context before:
%s

Option A:
%s

Option B:
%s

Context after:
%s

Select A or B and return the chosen text verbatim. Do not rewrite or merge. Return JSON format: {"pick": "A" or "B", "text": "<verbatim chosen text>"}`,
		contextBefore, candidateA, candidateB, contextAfter)
}

// parseAdjudication extracts and validates a JSON adjudication from model
// output, tolerating markdown code fences and surrounding prose. A reply
// with a valid pick but empty text falls back to the named candidate.
func parseAdjudication(content, candidateA, candidateB string) (*Adjudication, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty adjudication reply")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONObject(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	var lastErr error
	for _, cand := range candidates {
		var raw any
		if err := json.Unmarshal([]byte(cand), &raw); err != nil {
			lastErr = err
			continue
		}
		if err := adjudicationSchema.Validate(raw); err != nil {
			lastErr = fmt.Errorf("adjudication reply failed validation: %w", err)
			continue
		}
		var adj Adjudication
		if err := json.Unmarshal([]byte(cand), &adj); err != nil {
			lastErr = err
			continue
		}
		if adj.Text == "" {
			if adj.Pick == "A" {
				adj.Text = candidateA
			} else {
				adj.Text = candidateB
			}
		}
		return &adj, nil
	}
	return nil, fmt.Errorf("failed to parse adjudication reply: %w", lastErr)
}

// stripCodeFences removes a surrounding ```...``` fence, if present.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// extractJSONObject pulls the outermost {...} from surrounding prose.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

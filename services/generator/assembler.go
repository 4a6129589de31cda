package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/upb/llm-datagen/services/templates"
)

const noContext = "無"

// errMalformedResponse marks provider output with no decodable JSON object.
// It never leaves this package; affected fields get ParseErrorSentinel.
var errMalformedResponse = errors.New("malformed provider response")

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type contextEntry struct {
	name  string
	value any
}

// buildContext renders "- name: value" lines, or 無 when the row is empty
func buildContext(entries []contextEntry) string {
	if len(entries) == 0 {
		return noContext
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- %s: %v", e.name, e.value))
	}
	return strings.Join(lines, "\n")
}

func formatHint(q Question) string {
	switch q.AnswerType {
	case AnswerSingleChoice:
		return fmt.Sprintf("您的回答必須嚴格地從以下選項中選擇一個: [%s]", strings.Join(choiceStrings(q.Options), ", "))
	case AnswerNumber:
		return "您的回答必須是一個數字。"
	case AnswerYesNo:
		return "您的回答必須是「是」或「否」。"
	default:
		return "請用一句話簡短回答。"
	}
}

func choiceStrings(opts map[string]any) []string {
	switch v := opts["choices"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, c := range v {
			out = append(out, fmt.Sprint(c))
		}
		return out
	default:
		return nil
	}
}

func questionLines(questions []Question) string {
	lines := make([]string, 0, len(questions))
	for _, q := range questions {
		lines = append(lines, fmt.Sprintf("- 問題: \"%s\" (欄位名: %s)\n  格式要求: %s", q.Question, q.Name, formatHint(q)))
	}
	return strings.Join(lines, "\n")
}

// jsonFormatExample renders {"name": "你的答案", ...} indented by two spaces,
// keeping question order
func jsonFormatExample(questions []Question) string {
	if len(questions) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for i, q := range questions {
		key, _ := json.Marshal(q.Name)
		b.WriteString("  ")
		b.Write(key)
		b.WriteString(`: "你的答案"`)
		if i < len(questions)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// coherentPrompt hydrates body with one row's context and the coherent questions
func coherentPrompt(body string, entries []contextEntry, questions []Question) string {
	return templates.Hydrate(body, templates.Vars{
		Context:           buildContext(entries),
		QuestionLines:     questionLines(questions),
		JSONFormatExample: jsonFormatExample(questions),
	})
}

// extractAnswers decodes the span from the first '{' to the last '}' as a JSON object
func extractAnswers(text string) (map[string]any, error) {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("%w: no JSON object found", errMalformedResponse)
	}
	var answers map[string]any
	if err := json.Unmarshal([]byte(match), &answers); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	if answers == nil {
		return nil, fmt.Errorf("%w: null object", errMalformedResponse)
	}
	return answers, nil
}

package templates

import (
	"strconv"
	"strings"
)

// Placeholders understood by Hydrate. Anything else in a body is left alone.
const (
	PlaceholderCount             = "{{count}}"
	PlaceholderContext           = "{{context}}"
	PlaceholderQuestionLines     = "{{questionLines}}"
	PlaceholderJSONFormatExample = "{{jsonFormatExample}}"
)

// Vars are the hydration values. Zero values count as not supplied and
// leave their placeholder verbatim.
type Vars struct {
	Count             int
	Context           string
	QuestionLines     string
	JSONFormatExample string
}

// Hydrate substitutes the supplied variables into body
func Hydrate(body string, vars Vars) string {
	pairs := make([]string, 0, 8)
	if vars.Count > 0 {
		pairs = append(pairs, PlaceholderCount, strconv.Itoa(vars.Count))
	}
	if vars.Context != "" {
		pairs = append(pairs, PlaceholderContext, vars.Context)
	}
	if vars.QuestionLines != "" {
		pairs = append(pairs, PlaceholderQuestionLines, vars.QuestionLines)
	}
	if vars.JSONFormatExample != "" {
		pairs = append(pairs, PlaceholderJSONFormatExample, vars.JSONFormatExample)
	}
	if len(pairs) == 0 {
		return body
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

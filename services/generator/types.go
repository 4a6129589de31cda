package generator

// CoherentMarker is the generator type for answers that depend on the rest of the row
const CoherentMarker = "llm-answer"

// ParseErrorSentinel fills coherent fields whose provider output had no usable JSON object
const ParseErrorSentinel = "LLM PARSE ERROR"

// Field is one column of a dataset request
type Field struct {
	Name    string         `json:"name" validate:"required"`
	Type    string         `json:"type" validate:"required"`
	Options map[string]any `json:"options,omitempty"`
}

// Question is one column of a survey request
type Question struct {
	Name          string         `json:"name" validate:"required"`
	Question      string         `json:"question"`
	GeneratorType string         `json:"generatorType" validate:"required"`
	AnswerType    string         `json:"answerType,omitempty"`
	Options       map[string]any `json:"options,omitempty"`
}

// DataSetRequest asks for rows of independently generated fields
type DataSetRequest struct {
	Rows   int     `json:"rows" validate:"required,gte=1"`
	Fields []Field `json:"fields" validate:"required,min=1,dive"`
}

// SurveyRequest asks for rows of survey answers, some of which see the rest of the row
type SurveyRequest struct {
	Rows       int        `json:"rows" validate:"required,gte=1"`
	Questions  []Question `json:"questions" validate:"required,min=1,dive"`
	TemplateID string     `json:"templateId,omitempty"`
}

// Table is the generated result in row-major form
type Table struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Answer types understood when building coherent format hints
const (
	AnswerSingleChoice = "單選"
	AnswerNumber       = "數字"
	AnswerYesNo        = "是非"
)

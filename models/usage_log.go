package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageAction represents what consumed provider tokens
type UsageAction string

const (
	UsageActionGenerateData UsageAction = "generate_data"
)

// UsageLog is one successful provider call charged to a principal
type UsageLog struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	Principal        string      `json:"principal" db:"principal"`
	Action           UsageAction `json:"action" db:"action"`
	Provider         string      `json:"provider" db:"provider"`
	Model            string      `json:"model,omitempty" db:"model"`
	PromptTokens     int         `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int         `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int         `json:"total_tokens" db:"total_tokens"`
	LatencyMs        int         `json:"latency_ms" db:"latency_ms"`
	RequestID        string      `json:"request_id,omitempty" db:"request_id"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the UsageLog model
func (UsageLog) TableName() string {
	return "usage_logs"
}

// NewUsageLog creates a new UsageLog instance
func NewUsageLog(principal string, action UsageAction, provider string) *UsageLog {
	return &UsageLog{
		ID:        uuid.New(),
		Principal: principal,
		Action:    action,
		Provider:  provider,
		CreatedAt: time.Now(),
	}
}

// WithTokens sets the token counters
func (u *UsageLog) WithTokens(prompt, completion, total int) *UsageLog {
	u.PromptTokens = prompt
	u.CompletionTokens = completion
	u.TotalTokens = total
	return u
}

// WithModel sets the model and latency
func (u *UsageLog) WithModel(model string, latency time.Duration) *UsageLog {
	u.Model = model
	u.LatencyMs = int(latency.Milliseconds())
	return u
}

// WithRequest sets the request correlation ID
func (u *UsageLog) WithRequest(requestID string) *UsageLog {
	u.RequestID = requestID
	return u
}

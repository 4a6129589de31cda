package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPromptTemplate_AccessibleBy(t *testing.T) {
	owner := "key-a"
	empty := ""

	tests := []struct {
		name      string
		ownerID   *string
		principal string
		want      bool
	}{
		{"public template, anonymous", nil, "", true},
		{"public template, any caller", nil, "key-b", true},
		{"empty owner counts as public", &empty, "key-b", true},
		{"owner", &owner, "key-a", true},
		{"other caller", &owner, "key-b", false},
		{"anonymous on owned template", &owner, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := &PromptTemplate{ID: uuid.New(), OwnerID: tt.ownerID}
			assert.Equal(t, tt.want, tmpl.AccessibleBy(tt.principal))
		})
	}
}

func TestTemplateKind_IsValid(t *testing.T) {
	assert.True(t, TemplateKindIndependent.IsValid())
	assert.True(t, TemplateKindCoherent.IsValid())
	assert.False(t, TemplateKind("freeform").IsValid())
}

func TestNewUsageLog(t *testing.T) {
	log := NewUsageLog("key-a", UsageActionGenerateData, "gemini").
		WithTokens(12, 30, 42).
		WithModel("gemini-1.5-flash", 1500*time.Millisecond).
		WithRequest("req-1")

	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.Equal(t, "key-a", log.Principal)
	assert.Equal(t, UsageActionGenerateData, log.Action)
	assert.Equal(t, 42, log.TotalTokens)
	assert.Equal(t, 1500, log.LatencyMs)
	assert.Equal(t, "req-1", log.RequestID)
	assert.False(t, log.CreatedAt.IsZero())
	assert.Equal(t, "usage_logs", UsageLog{}.TableName())
	assert.Equal(t, "prompt_templates", PromptTemplate{}.TableName())
}

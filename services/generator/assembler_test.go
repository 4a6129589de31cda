package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContext(t *testing.T) {
	assert.Equal(t, "無", buildContext(nil))
	assert.Equal(t, "- 姓名: 王小明\n- 年齡: 30", buildContext([]contextEntry{
		{name: "姓名", value: "王小明"},
		{name: "年齡", value: 30},
	}))
}

func TestFormatHint(t *testing.T) {
	tests := []struct {
		name string
		q    Question
		want string
	}{
		{
			name: "single choice from any slice",
			q:    Question{AnswerType: AnswerSingleChoice, Options: map[string]any{"choices": []any{"A", "B"}}},
			want: "您的回答必須嚴格地從以下選項中選擇一個: [A, B]",
		},
		{
			name: "single choice from string slice",
			q:    Question{AnswerType: AnswerSingleChoice, Options: map[string]any{"choices": []string{"是", "否"}}},
			want: "您的回答必須嚴格地從以下選項中選擇一個: [是, 否]",
		},
		{name: "number", q: Question{AnswerType: AnswerNumber}, want: "您的回答必須是一個數字。"},
		{name: "yes no", q: Question{AnswerType: AnswerYesNo}, want: "您的回答必須是「是」或「否」。"},
		{name: "free text", q: Question{}, want: "請用一句話簡短回答。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatHint(tt.q))
		})
	}
}

func TestJSONFormatExample(t *testing.T) {
	assert.Equal(t, "{}", jsonFormatExample(nil))
	assert.Equal(t,
		"{\n  \"b\": \"你的答案\",\n  \"a\": \"你的答案\"\n}",
		jsonFormatExample([]Question{{Name: "b"}, {Name: "a"}}))
}

func TestCoherentPrompt(t *testing.T) {
	got := coherentPrompt(
		"背景:\n{{context}}\n問題:\n{{questionLines}}\n格式:\n{{jsonFormatExample}}",
		[]contextEntry{{name: "性別", value: "女"}},
		[]Question{{Name: "q1", Question: "您喜歡咖啡嗎", AnswerType: AnswerYesNo}},
	)

	assert.Equal(t, "背景:\n- 性別: 女\n問題:\n- 問題: \"您喜歡咖啡嗎\" (欄位名: q1)\n  格式要求: 您的回答必須是「是」或「否」。\n格式:\n{\n  \"q1\": \"你的答案\"\n}", got)
}

func TestExtractAnswers(t *testing.T) {
	t.Run("object inside prose and fences", func(t *testing.T) {
		answers, err := extractAnswers("以下是答案：\n```json\n{\"q1\": \"是\", \"n\": 3}\n```\n謝謝")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"q1": "是", "n": float64(3)}, answers)
	})

	malformed := map[string]string{
		"no braces":     "I cannot answer that.",
		"invalid json":  "{q1: yes}",
		"two objects":   "{\"a\":1} and {\"b\":2}",
		"trailing junk": "{}garbage}",
	}
	for name, text := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := extractAnswers(text)
			assert.True(t, errors.Is(err, errMalformedResponse))
		})
	}
}

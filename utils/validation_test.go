package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testColumn struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required"`
}

type testRequest struct {
	Rows    int          `json:"rows" validate:"required,gte=1,lte=100"`
	Columns []testColumn `json:"columns" validate:"required,min=1,dive"`
	Mode    string       `json:"mode,omitempty" validate:"omitempty,oneof=fast slow"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		req        testRequest
		wantFields []string
	}{
		{
			name: "valid struct",
			req:  testRequest{Rows: 3, Columns: []testColumn{{Name: "a", Type: "b"}}},
		},
		{
			name:       "missing rows and columns",
			req:        testRequest{},
			wantFields: []string{"rows", "columns"},
		},
		{
			name:       "nested column reported by json path",
			req:        testRequest{Rows: 1, Columns: []testColumn{{Name: "a", Type: "b"}, {Type: "b"}}},
			wantFields: []string{"columns[1].name"},
		},
		{
			name:       "rows above bound",
			req:        testRequest{Rows: 101, Columns: []testColumn{{Name: "a", Type: "b"}}},
			wantFields: []string{"rows"},
		},
		{
			name:       "mode outside enum",
			req:        testRequest{Rows: 1, Columns: []testColumn{{Name: "a", Type: "b"}}, Mode: "medium"},
			wantFields: []string{"mode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			fields := GetValidationFields(err)
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestNewValidationError_Messages(t *testing.T) {
	err := ValidateStruct(&testRequest{Rows: 200, Columns: []testColumn{}})
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Validation failed", validationErr.Error())
	assert.Equal(t, "rows must be less than or equal to 100", validationErr.Fields["rows"])
	assert.Equal(t, "columns must contain at least 1 item(s)", validationErr.Fields["columns"])
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(&ValidationError{Message: "test"}))
	assert.False(t, IsValidationError(assert.AnError))
	assert.Nil(t, GetValidationFields(assert.AnError))
}

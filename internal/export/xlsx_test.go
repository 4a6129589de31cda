package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/upb/llm-datagen/services/generator"
)

func TestWriteXLSX(t *testing.T) {
	table := &generator.Table{
		Columns: []string{"編號", "公司", "分數"},
		Rows: []map[string]any{
			{"編號": "1", "公司": "台積電", "分數": 5},
			{"編號": "2", "分數": []any{"a", "b"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"編號", "公司", "分數"}, rows[0])
	assert.Equal(t, []string{"1", "台積電", "5"}, rows[1])
	assert.Equal(t, []string{"2", "", "[a b]"}, rows[2])
}

func TestWriteXLSX_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, &generator.Table{Columns: []string{"a"}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}}, rows)
}

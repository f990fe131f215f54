package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumns_FixedOrder(t *testing.T) {
	assert.Equal(t, []string{"name", "gender", "title", "email", "mobile", "wechat", "remark"}, Columns())
}

func TestRow_FieldAccess(t *testing.T) {
	row := sampleRow(1)

	for _, column := range Columns() {
		value, ok := row.Field(column)
		assert.True(t, ok, "column %s should be addressable", column)
		assert.True(t, row.SetField(column, value+"!"))
		updated, _ := row.Field(column)
		assert.Equal(t, value+"!", updated)
	}

	_, ok := row.Field("unknown")
	assert.False(t, ok)
	assert.False(t, row.SetField("unknown", "x"))
	assert.False(t, row.SetField("_row_number", "9"))
	assert.Equal(t, 1, row.RowNumber)
}

func TestRow_Values(t *testing.T) {
	row := sampleRow(1)
	values := row.Values()
	assert.Len(t, values, 7)
	assert.Equal(t, row.Name, values[0])
	assert.Equal(t, row.Remark, values[6])
}

package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/esg/pkg/errors"
)

func TestRoundTo1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{33.45, 33.5},
		{1.25, 1.2},
		{3.75, 3.8},
		{66.66666, 66.7},
		{100, 100},
		{-0.04, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundTo1(tt.in), "RoundTo1(%v)", tt.in)
	}
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float", 12.5, 12.5, true},
		{"int", 3, 3, true},
		{"numeric string", " 42.5 ", 42.5, true},
		{"word", "lots", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
		{"nan string", "NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "  ", Stringify("  "))
	assert.Equal(t, "0", Stringify(0))
	assert.Equal(t, "false", Stringify(false))
	assert.Equal(t, "[]", Stringify([]interface{}{}))
	assert.Equal(t, "{}", Stringify(map[string]interface{}{}))
	assert.Equal(t, `{"a":1}`, Stringify(map[string]interface{}{"a": 1}))
}

func TestNormalizePage(t *testing.T) {
	page, size, offset := NormalizePage(0, 0, 20, 100)
	assert.Equal(t, []int{1, 20, 0}, []int{page, size, offset})

	page, size, offset = NormalizePage(3, 500, 20, 100)
	assert.Equal(t, []int{3, 100, 200}, []int{page, size, offset})

	assert.Equal(t, 3, TotalPages(41, 20))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestValidateStruct(t *testing.T) {
	type request struct {
		CompanyName string `validate:"required"`
		SetupStep   int    `validate:"gte=1,lte=4"`
	}

	require.NoError(t, ValidateStruct(request{CompanyName: "Acme", SetupStep: 2}))

	err := ValidateStruct(request{SetupStep: 9})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequest(err))

	esgErr, ok := errors.AsESGError(err)
	require.True(t, ok)
	assert.Equal(t, "is required", esgErr.Metadata()["company_name"])
	assert.Equal(t, "must be less than or equal to 4", esgErr.Metadata()["setup_step"])
}

func TestValidateDataEntries(t *testing.T) {
	valid := []map[string]interface{}{
		nil,
		{},
		{"energy_consumption_kwh": 1200.5, "notes": "anything goes"},
		{"water_usage_m3": "35", "gas_usage_m3": nil},
		{"energy_consumption_kwh": ""},
		{"free_text": -4, "nested": map[string]interface{}{"x": 1}},
	}
	for _, entries := range valid {
		assert.NoError(t, ValidateDataEntries(entries), "%v", entries)
	}

	invalid := []map[string]interface{}{
		{"energy_consumption_kwh": -1},
		{"water_usage_m3": "a lot"},
		{"gas_usage_m3": true},
	}
	for _, entries := range invalid {
		err := ValidateDataEntries(entries)
		assert.True(t, errors.IsInvalidRequest(err), "%v", entries)
	}

	tooMany := make(map[string]interface{}, MaxDataEntryKeys+1)
	for i := 0; i <= MaxDataEntryKeys; i++ {
		tooMany[fmt.Sprintf("field_%d", i)] = i
	}
	assert.True(t, errors.IsInvalidRequest(ValidateDataEntries(tooMany)))
}

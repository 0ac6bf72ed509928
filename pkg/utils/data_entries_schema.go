package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/errors"
)

// MaxDataEntryKeys bounds the number of keys a task may carry in data_entries.
const MaxDataEntryKeys = 200

// meterValueSchema accepts non-negative numbers, numeric strings, blank strings and null.
var meterValueSchema = map[string]interface{}{
	"anyOf": []interface{}{
		map[string]interface{}{"type": "number", "minimum": 0},
		map[string]interface{}{"type": "string", "pattern": `^\s*([0-9]+(\.[0-9]+)?)?\s*$`},
		map[string]interface{}{"type": "null"},
	},
}

var dataEntriesSchema = mustCompileSchema(map[string]interface{}{
	"type":          "object",
	"maxProperties": MaxDataEntryKeys,
	"properties": map[string]interface{}{
		constants.MeterKeyEnergyKWh: meterValueSchema,
		constants.MeterKeyWaterM3:   meterValueSchema,
		constants.MeterKeyGasM3:     meterValueSchema,
	},
})

func mustCompileSchema(schema map[string]interface{}) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid data entries schema: %v", err))
	}
	return s
}

// ValidateDataEntries checks a task's data_entries object. A nil map is valid.
func ValidateDataEntries(entries map[string]interface{}) error {
	if entries == nil {
		return nil
	}

	result, err := dataEntriesSchema.Validate(gojsonschema.NewGoLoader(entries))
	if err != nil {
		return errors.ErrInvalidRequest(fmt.Sprintf("data_entries could not be validated: %v", err))
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	sort.Strings(msgs)
	return errors.ErrInvalidRequest("data_entries: "+strings.Join(msgs, "; ")).
		WithMetadata("violations", msgs)
}

//Personal.AI order the ending

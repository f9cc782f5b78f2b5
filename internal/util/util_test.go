package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cityArgs struct {
	City string  `json:"city" description:"City name"`
	Name *string `json:"name" description:"Optional name"`
	Unit string  `json:"unit,omitempty" enum:"Celsius|Fahrenheit"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(cityArgs{})
	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "name")
	assert.Equal(t, "string", props["name"].(map[string]any)["type"])
	assert.Equal(t, []string{"Celsius", "Fahrenheit"}, props["unit"].(map[string]any)["enum"])
	assert.Equal(t, []string{"city"}, schema["required"])
}

func TestValidateParameters(t *testing.T) {
	schema := CreateSchema(cityArgs{})

	require.NoError(t, ValidateParameters(map[string]any{"city": "London"}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "city", vErr.Field)

	err = ValidateParameters(map[string]any{"city": 42}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type string")

	err = ValidateParameters(map[string]any{"city": "London", "unit": "Kelvin"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "unit", vErr.Field)
}

func TestValidateParameters_JSONDecodedRequired(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"x": map[string]any{"type": "integer"}},
		"required":   []any{"x"},
	}
	assert.NoError(t, ValidateParameters(map[string]any{"x": float64(5)}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"x": 5.5}, schema))
	assert.Error(t, ValidateParameters(map[string]any{}, schema))
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("no markers", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers", out)

	out, err = RenderTemplate(`Unit: {{default "Celsius" .user_preference_temperature_unit}}`, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Unit: Celsius", out)

	out, err = RenderTemplate(`Cities: {{join ", " .cities}}`, map[string]any{"cities": []string{"london", "tokyo"}})
	require.NoError(t, err)
	assert.Equal(t, "Cities: london, tokyo", out)

	_, err = RenderTemplate("{{.broken", nil)
	assert.Error(t, err)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "London", Capitalize("LONDON"))
	assert.Equal(t, "New york", Capitalize("new york"))
	assert.Equal(t, "", Capitalize(""))
}

package extensions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
)

var testArgs = map[string]ArgumentSpec{
	"apiKey":  {Type: ArgumentString, Title: "API Key", Required: true, Format: FormatPassword},
	"effort":  {Type: ArgumentString, Enum: []string{"low", "high"}},
	"take":    {Type: ArgumentNumber, Minimum: float(1), Maximum: float(10), Default: float64(5)},
	"stream":  {Type: ArgumentBoolean},
	"tags":    {Type: ArgumentArray, Items: &ArgumentSpec{Type: ArgumentString}},
	"headers": {Type: ArgumentObject, Properties: map[string]ArgumentSpec{"token": {Type: ArgumentString, Format: FormatPassword}}},
}

func TestValidateValues_Coerces(t *testing.T) {
	out, err := ValidateValues(testArgs, map[string]interface{}{
		"apiKey":  "k",
		"take":    "3",
		"stream":  "true",
		"tags":    []interface{}{"a", "b"},
		"headers": map[string]interface{}{"token": "t"},
		"unknown": "dropped",
	})
	require.NoError(t, err)

	assert.Equal(t, "k", out["apiKey"])
	assert.Equal(t, float64(3), out["take"])
	assert.Equal(t, true, out["stream"])
	assert.Equal(t, []interface{}{"a", "b"}, out["tags"])
	assert.Equal(t, map[string]interface{}{"token": "t"}, out["headers"])
	assert.NotContains(t, out, "unknown")
	assert.NotContains(t, out, "effort")
}

func TestValidateValues_Defaults(t *testing.T) {
	out, err := ValidateValues(testArgs, map[string]interface{}{"apiKey": "k", "take": ""})
	require.NoError(t, err)
	assert.Equal(t, float64(5), out["take"])
}

func TestValidateValues_CollectsProblems(t *testing.T) {
	_, err := ValidateValues(testArgs, map[string]interface{}{
		"effort": "medium",
		"take":   float64(11),
		"stream": "maybe",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	msg := apperr.MessageOf(err)
	assert.Contains(t, msg, "API Key is required")
	assert.Contains(t, msg, "effort must be one of low, high")
	assert.Contains(t, msg, "take must be at most 10")
	assert.Contains(t, msg, "stream must be a boolean")
}

func TestValidateValues_NestedObject(t *testing.T) {
	args := map[string]ArgumentSpec{
		"auth": {Type: ArgumentObject, Properties: map[string]ArgumentSpec{
			"user": {Type: ArgumentString, Required: true},
		}},
	}
	_, err := ValidateValues(args, map[string]interface{}{"auth": map[string]interface{}{}})
	require.Error(t, err)
	assert.Contains(t, apperr.MessageOf(err), "auth.user is required")
}

func TestDecode(t *testing.T) {
	type openAI struct {
		APIKey      string  `json:"apiKey"`
		Temperature float64 `json:"temperature"`
	}
	v, err := Decode[openAI](map[string]interface{}{"apiKey": "k", "temperature": 0.5})
	require.NoError(t, err)
	assert.Equal(t, openAI{APIKey: "k", Temperature: 0.5}, v)
}

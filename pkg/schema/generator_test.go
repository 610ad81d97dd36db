package schema

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stats struct {
	P50 float64 `json:"p50"`
}

type record struct {
	ID       uuid.UUID         `json:"id"`
	Mode     string            `json:"mode" enum:"fast|slow"`
	Count    int               `json:"count" description:"number of items"`
	Note     string            `json:"note,omitempty"`
	Stats    *stats            `json:"stats"`
	Tags     []string          `json:"tags"`
	Labels   map[string]string `json:"labels,omitempty"`
	At       time.Time         `json:"at"`
	Internal string            `json:"-"`
	hidden   int
}

type settings struct {
	Timeout time.Duration `yaml:"timeout"`
	Enabled *bool         `yaml:"enabled"`
}

func TestGenerateSchema_Struct(t *testing.T) {
	s, err := NewGenerator().GenerateSchema(reflect.TypeOf(record{}))
	require.NoError(t, err)

	assert.Equal(t, schemaRef, s.Schema)
	assert.Equal(t, "record", s.Title)
	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{"id", "mode", "count", "tags", "at"}, s.Required)

	assert.Len(t, s.Properties, 8)
	assert.NotContains(t, s.Properties, "Internal")
	assert.NotContains(t, s.Properties, "hidden")

	assert.Equal(t, "uuid", s.Properties["id"].Format)
	assert.Equal(t, "date-time", s.Properties["at"].Format)
	assert.Equal(t, []any{"fast", "slow"}, s.Properties["mode"].Enum)
	assert.Equal(t, "number of items", s.Properties["count"].Description)
	assert.Equal(t, []string{"object", "null"}, s.Properties["stats"].Type)
	assert.Equal(t, "number", s.Properties["stats"].Properties["p50"].Type)
	assert.Equal(t, "string", s.Properties["tags"].Items.Type)
	assert.Equal(t, "string", s.Properties["labels"].AdditionalProperties.Type)
}

func TestGenerateSchema_YAMLTags(t *testing.T) {
	s, err := NewGenerator(WithTagName("yaml")).GenerateSchema(reflect.TypeOf(&settings{}))
	require.NoError(t, err)

	assert.Equal(t, "settings", s.Title)
	assert.Equal(t, "string", s.Properties["timeout"].Type)
	assert.NotEmpty(t, s.Properties["timeout"].Pattern)
	assert.Equal(t, []string{"boolean", "null"}, s.Properties["enabled"].Type)
	assert.Equal(t, []string{"timeout"}, s.Required)
}

func TestGenerateSchema_Unsupported(t *testing.T) {
	type withChan struct {
		C chan int `json:"c"`
	}
	_, err := NewGenerator().GenerateSchema(reflect.TypeOf(withChan{}))
	assert.Error(t, err)

	type intKeys struct {
		M map[int]string `json:"m"`
	}
	_, err = NewGenerator().GenerateSchema(reflect.TypeOf(intKeys{}))
	assert.Error(t, err)
}

func TestGenerateJSONSchema_IsValidJSON(t *testing.T) {
	out, err := NewGenerator().GenerateJSONSchema(record{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, schemaRef, decoded["$schema"])
	assert.Equal(t, idBase+"record", decoded["$id"])
}

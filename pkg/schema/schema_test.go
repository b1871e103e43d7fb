package schema_test

import (
	"reflect"
	"testing"

	"github.com/effective-security/agentloop/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchArgs struct {
	Query string `json:"query" jsonschema:"description=Search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum results to return"`
}

type weatherArgs struct {
	Location location `json:"location" jsonschema:"description=Location to look up"`
	Units    string   `json:"units,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
}

type location struct {
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

func TestNew(t *testing.T) {
	s, err := schema.New(reflect.TypeOf(searchArgs{}))
	require.NoError(t, err)
	require.NotNil(t, s.Parameters)

	exp := `{
	"properties": {
		"query": {
			"type": "string",
			"description": "Search query"
		},
		"limit": {
			"type": "integer",
			"description": "Maximum results to return"
		}
	},
	"type": "object",
	"required": [
		"query"
	]
}`
	assert.Equal(t, exp, s.String())

	// cached on second call
	s2, err := schema.New(reflect.TypeOf(searchArgs{}))
	require.NoError(t, err)
	assert.Same(t, s, s2)
}

func TestNewNested(t *testing.T) {
	s, err := schema.New(reflect.TypeOf(weatherArgs{}))
	require.NoError(t, err)
	require.NotNil(t, s.Parameters)

	loc, ok := s.Parameters.Properties.Get("location")
	require.True(t, ok)
	assert.Empty(t, loc.Ref)
	assert.Equal(t, "object", loc.Type)

	_, ok = loc.Properties.Get("city")
	assert.True(t, ok)
}

func TestFromAny(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type": "string",
			},
		},
		"required": []string{"query"},
	}

	s, err := schema.FromAny(def)
	require.NoError(t, err)
	assert.Equal(t, "object", s.Type)
	q, ok := s.Properties.Get("query")
	require.True(t, ok)
	assert.Equal(t, "string", q.Type)

	assert.NotPanics(t, func() {
		s2 := schema.MustFromAny(def)
		assert.Equal(t, "object", s2.Type)
	})

	_, err = schema.FromAny(func() {})
	assert.Error(t, err)
}

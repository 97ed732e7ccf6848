package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
		{"```json {\"a\":1}```", `{"a":1}`},
		{"\n```json\n{\"a\":1}\n```\n", `{"a":1}`},
		{"```JSON\n[1,2]\n```", `[1,2]`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StripFences(tc.in), "%q", tc.in)
	}
}

func TestStripFences_ParsesLikeBareBody(t *testing.T) {
	var fenced, bare map[string]any
	require.NoError(t, json.Unmarshal([]byte(StripFences("```json\n{\"a\":1}\n```")), &fenced))
	require.NoError(t, json.Unmarshal([]byte(StripFences(`{"a":1}`)), &bare))
	assert.Equal(t, bare, fenced)
}

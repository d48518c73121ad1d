package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSchemaYAML_UsesKindNames(t *testing.T) {
	src := `kind: object
properties:
  tags:
    kind: array
    items:
      kind: primitive
      type: string
  status:
    kind: enum
    values: [active, retired]
required: [status]
`
	var s Schema
	require.NoError(t, yaml.Unmarshal([]byte(src), &s))

	assert.Equal(t, KindObject, s.Kind)
	assert.Equal(t, KindArray, s.Properties["tags"].Kind)
	assert.Equal(t, KindPrimitive, s.Properties["tags"].Items.Kind)
	assert.Equal(t, KindEnum, s.Properties["status"].Kind)

	out, err := yaml.Marshal(&s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: object")
	assert.NotContains(t, string(out), "kind: 0")
}

func TestChangeJSON_UsesEnumNames(t *testing.T) {
	c := Change{
		Type:     ContractRemoved,
		Path:     "echo",
		Impact:   Breaking,
		Severity: SeverityCritical,
	}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"contract_removed"`)
	assert.Contains(t, string(data), `"breaking"`)
	assert.Contains(t, string(data), `"critical"`)

	var back Change
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c.Type, back.Type)
	assert.Equal(t, c.Impact, back.Impact)
	assert.Equal(t, c.Severity, back.Severity)
}

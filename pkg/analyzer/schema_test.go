package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibyllinesoft/contractver/pkg/contract"
)

func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestAnalyzeSchemaChanges_TypeChanged(t *testing.T) {
	src := &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString}
	dst := &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeInteger}

	a := New(nil, nil)
	result := a.AnalyzeSchemaChanges(src, dst)

	require.Len(t, result.Differences, 1)
	c := result.Differences[0]
	assert.Equal(t, contract.SchemaTypeChanged, c.Type)
	assert.Equal(t, contract.Breaking, c.Impact)
	assert.Equal(t, "string", c.Details.Before)
	assert.Equal(t, "integer", c.Details.After)
	assert.False(t, result.Compatible)
	assert.Len(t, result.BreakingChanges, 1)
}

func TestAnalyzeSchemaChanges_KindChanged(t *testing.T) {
	src := &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString}
	dst := &contract.Schema{Kind: contract.KindArray, Items: &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString}}

	a := New(nil, nil)
	result := a.AnalyzeSchemaChanges(src, dst)

	require.Len(t, result.Differences, 1)
	assert.Equal(t, contract.SchemaTypeChanged, result.Differences[0].Type)
	assert.True(t, result.Differences[0].Details.MigrationRequired)
}

func TestAnalyzeSchemaChanges_ConstraintTightened(t *testing.T) {
	tests := []struct {
		name string
		src  *contract.Schema
		dst  *contract.Schema
	}{
		{
			"minimum raised",
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeNumber, Minimum: floatPtr(0)},
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeNumber, Minimum: floatPtr(10)},
		},
		{
			"maximum lowered",
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeNumber, Maximum: floatPtr(100)},
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeNumber, Maximum: floatPtr(50)},
		},
		{
			"max_length lowered",
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString, MaxLength: intPtr(64)},
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString, MaxLength: intPtr(32)},
		},
		{
			"constraint added",
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString},
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString, MinLength: intPtr(1)},
		},
		{
			"pattern added",
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString},
			&contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString, Pattern: "^[a-z]+$"},
		},
	}

	a := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.AnalyzeSchemaChanges(tt.src, tt.dst)
			require.Len(t, result.Differences, 1)
			assert.Equal(t, contract.Breaking, result.Differences[0].Impact, tt.name)
		})
	}
}

func TestAnalyzeSchemaChanges_ConstraintWidened(t *testing.T) {
	src := &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString, MaxLength: intPtr(32)}
	dst := &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString, MaxLength: intPtr(64)}

	a := New(nil, nil)
	result := a.AnalyzeSchemaChanges(src, dst)

	require.Len(t, result.Differences, 1)
	assert.Equal(t, contract.Feature, result.Differences[0].Impact)
	assert.True(t, result.Compatible)
}

func TestAnalyzeSchemaChanges_EnumValues(t *testing.T) {
	src := &contract.Schema{Kind: contract.KindEnum, Values: []string{"a", "b", "c"}}
	dst := &contract.Schema{Kind: contract.KindEnum, Values: []string{"a", "c", "d"}}

	a := New(nil, nil)
	result := a.AnalyzeSchemaChanges(src, dst)

	require.Len(t, result.Differences, 2)
	removed, added := result.Differences[0], result.Differences[1]
	assert.Equal(t, contract.Breaking, removed.Impact)
	assert.Equal(t, "b", removed.Details.Before)
	assert.Equal(t, contract.Feature, added.Impact)
	assert.Equal(t, "d", added.Details.After)
}

func TestAnalyzeSchemaChanges_DescriptionIsFix(t *testing.T) {
	src := &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString, Description: "old"}
	dst := &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString, Description: "new"}

	a := New(nil, nil)
	result := a.AnalyzeSchemaChanges(src, dst)

	require.Len(t, result.Differences, 1)
	c := result.Differences[0]
	assert.Equal(t, contract.Fix, c.Impact)
	assert.NotEmpty(t, c.Details.Diff)
	assert.True(t, result.Compatible)
}

func TestAnalyzeSchemaChanges_NestedObjects(t *testing.T) {
	src := &contract.Schema{
		Kind: contract.KindObject,
		Properties: map[string]*contract.Schema{
			"address": {
				Kind: contract.KindObject,
				Properties: map[string]*contract.Schema{
					"city": {Kind: contract.KindPrimitive, Type: contract.TypeString},
					"zip":  {Kind: contract.KindPrimitive, Type: contract.TypeString},
				},
			},
		},
	}
	dst := &contract.Schema{
		Kind: contract.KindObject,
		Properties: map[string]*contract.Schema{
			"address": {
				Kind: contract.KindObject,
				Properties: map[string]*contract.Schema{
					"city": {Kind: contract.KindPrimitive, Type: contract.TypeString},
				},
			},
		},
	}

	a := New(nil, nil)
	result := a.AnalyzeSchemaChanges(src, dst)

	require.Len(t, result.Differences, 1)
	assert.Equal(t, "address.zip", result.Differences[0].Path)
	assert.Equal(t, contract.SchemaRemoved, result.Differences[0].Type)
}

func TestAnalyzeSchemaChanges_ArrayItems(t *testing.T) {
	src := &contract.Schema{Kind: contract.KindArray, Items: &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeString}}
	dst := &contract.Schema{Kind: contract.KindArray, Items: &contract.Schema{Kind: contract.KindPrimitive, Type: contract.TypeNumber}}

	a := New(nil, nil)
	result := a.AnalyzeSchemaChanges(src, dst)

	require.Len(t, result.Differences, 1)
	assert.Equal(t, "[]", result.Differences[0].Path)
	assert.Equal(t, contract.SchemaTypeChanged, result.Differences[0].Type)
}

func TestAnalyzeSchemaChanges_NilSchemas(t *testing.T) {
	a := New(nil, nil)

	assert.Empty(t, a.AnalyzeSchemaChanges(nil, nil).Differences)

	added := a.AnalyzeSchemaChanges(nil, &contract.Schema{Kind: contract.KindObject})
	require.Len(t, added.Differences, 1)
	assert.Equal(t, contract.SchemaAdded, added.Differences[0].Type)

	removed := a.AnalyzeSchemaChanges(&contract.Schema{Kind: contract.KindObject}, nil)
	require.Len(t, removed.Differences, 1)
	assert.Equal(t, contract.Breaking, removed.Differences[0].Impact)
}

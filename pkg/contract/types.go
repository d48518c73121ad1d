package contract

import (
	"sort"
)

// Definition is a single machine-checkable contract: structured input and
// output schemas plus the conditions and laws a conforming implementation
// must satisfy. Definitions are supplied by a contract store and are
// read-only from the engine's perspective.
type Definition struct {
	ID              string            `json:"id" yaml:"id"`
	Name            string            `json:"name" yaml:"name"`
	Description     string            `json:"description,omitempty" yaml:"description,omitempty"`
	Input           *Schema           `json:"input,omitempty" yaml:"input,omitempty"`
	Output          *Schema           `json:"output,omitempty" yaml:"output,omitempty"`
	Preconditions   []Condition       `json:"preconditions,omitempty" yaml:"preconditions,omitempty"`
	Postconditions  []Condition       `json:"postconditions,omitempty" yaml:"postconditions,omitempty"`
	MetamorphicLaws []Law             `json:"metamorphic_laws,omitempty" yaml:"metamorphic_laws,omitempty"`
	Invariants      []Condition       `json:"invariants,omitempty" yaml:"invariants,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Condition is a named pre/post-condition or invariant expression.
type Condition struct {
	Name        string `json:"name" yaml:"name"`
	Expression  string `json:"expression" yaml:"expression"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Law is a metamorphic relation between contract executions.
type Law struct {
	Name        string `json:"name" yaml:"name"`
	Relation    string `json:"relation" yaml:"relation"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SchemaKind discriminates the closed set of schema node shapes.
type SchemaKind int

const (
	KindObject SchemaKind = iota
	KindArray
	KindPrimitive
	KindEnum
	KindReference
)

func (k SchemaKind) String() string {
	return []string{"object", "array", "primitive", "enum", "reference"}[k]
}

// PrimitiveType is the value type of a primitive schema node.
type PrimitiveType string

const (
	TypeString  PrimitiveType = "string"
	TypeInteger PrimitiveType = "integer"
	TypeNumber  PrimitiveType = "number"
	TypeBoolean PrimitiveType = "boolean"
	TypeNull    PrimitiveType = "null"
)

// Schema is a node in a contract schema tree. It is a tagged union over
// Kind: only the fields belonging to the active kind are meaningful.
type Schema struct {
	Kind        SchemaKind `json:"kind" yaml:"kind"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Nullable    bool       `json:"nullable,omitempty" yaml:"nullable,omitempty"`

	// Object
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty" yaml:"items,omitempty"`
	MinItems *int    `json:"min_items,omitempty" yaml:"min_items,omitempty"`
	MaxItems *int    `json:"max_items,omitempty" yaml:"max_items,omitempty"`

	// Primitive
	Type      PrimitiveType `json:"type,omitempty" yaml:"type,omitempty"`
	Format    string        `json:"format,omitempty" yaml:"format,omitempty"`
	Minimum   *float64      `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum   *float64      `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinLength *int          `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength *int          `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Pattern   string        `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Enum
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`

	// Reference
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// IsRequired reports whether the named property is listed as required.
func (s *Schema) IsRequired(property string) bool {
	for _, r := range s.Required {
		if r == property {
			return true
		}
	}
	return false
}

// SortedPropertyNames returns the object's property names in lexical order.
// Diffing iterates properties through this to keep change lists
// deterministic.
func (s *Schema) SortedPropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedIDs returns contract IDs from a definition set in lexical order.
func SortedIDs(defs map[string]*Definition) []string {
	ids := make([]string, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

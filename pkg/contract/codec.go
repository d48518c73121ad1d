package contract

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// The enum types serialize as their names, not their ordinals, so contract
// files and exported snapshots stay readable and stable across reorderings
// of the constants.

// ParseSchemaKind converts a string to a SchemaKind.
func ParseSchemaKind(s string) (SchemaKind, error) {
	switch strings.ToLower(s) {
	case "object":
		return KindObject, nil
	case "array":
		return KindArray, nil
	case "primitive":
		return KindPrimitive, nil
	case "enum":
		return KindEnum, nil
	case "reference":
		return KindReference, nil
	}
	return KindObject, fmt.Errorf("unknown schema kind: %s", s)
}

func (k SchemaKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *SchemaKind) UnmarshalText(data []byte) error {
	parsed, err := ParseSchemaKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k SchemaKind) MarshalYAML() (interface{}, error) { return k.String(), nil }

func (k *SchemaKind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

// ParseChangeType converts a string to a ChangeType.
func ParseChangeType(s string) (ChangeType, error) {
	for t := SchemaAdded; t <= ContractTypeChanged; t++ {
		if t.String() == strings.ToLower(s) {
			return t, nil
		}
	}
	return SchemaAdded, fmt.Errorf("unknown change type: %s", s)
}

func (t ChangeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ChangeType) UnmarshalText(data []byte) error {
	parsed, err := ParseChangeType(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ChangeType) MarshalYAML() (interface{}, error) { return t.String(), nil }

func (t *ChangeType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

func (i Impact) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *Impact) UnmarshalText(data []byte) error {
	parsed, err := ParseImpact(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func (i Impact) MarshalYAML() (interface{}, error) { return i.String(), nil }

func (i *Impact) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return i.UnmarshalText([]byte(s))
}

// ParseSeverity converts a string to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "patch":
		return SeverityPatch, nil
	case "minor":
		return SeverityMinor, nil
	case "major":
		return SeverityMajor, nil
	case "critical":
		return SeverityCritical, nil
	}
	return SeverityPatch, fmt.Errorf("unknown severity: %s", s)
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(data []byte) error {
	parsed, err := ParseSeverity(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Severity) MarshalYAML() (interface{}, error) { return s.String(), nil }

func (s *Severity) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(text))
}

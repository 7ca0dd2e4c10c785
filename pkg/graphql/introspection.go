// Introspection query and the result type tree.
package graphql

import (
	"encoding/json"
	"fmt"

	"github.com/mcpgraphql/mcpgraphql/pkg/jsonutil"
)

// Schema represents a GraphQL schema from introspection
type Schema struct {
	QueryType        *TypeRef    `json:"queryType"`
	MutationType     *TypeRef    `json:"mutationType"`
	SubscriptionType *TypeRef    `json:"subscriptionType"`
	Types            []Type      `json:"types"`
	Directives       []Directive `json:"directives"`
}

// TypeRef represents a reference to a type
type TypeRef struct {
	Name string `json:"name"`
}

// Type represents a GraphQL type
type Type struct {
	Kind          string       `json:"kind"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Fields        []Field      `json:"fields,omitempty"`
	InputFields   []InputValue `json:"inputFields,omitempty"`
	Interfaces    []TypeRef    `json:"interfaces,omitempty"`
	EnumValues    []EnumValue  `json:"enumValues,omitempty"`
	PossibleTypes []TypeRef    `json:"possibleTypes,omitempty"`
}

// Field represents a GraphQL field
type Field struct {
	Name              string       `json:"name"`
	Description       string       `json:"description,omitempty"`
	Args              []InputValue `json:"args,omitempty"`
	Type              FieldType    `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason string       `json:"deprecationReason,omitempty"`
}

// FieldType represents a field's type information
type FieldType struct {
	Kind   string     `json:"kind"`
	Name   string     `json:"name,omitempty"`
	OfType *FieldType `json:"ofType,omitempty"`
}

// InputValue represents an input value
type InputValue struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Type         FieldType `json:"type"`
	DefaultValue string    `json:"defaultValue,omitempty"`
}

// EnumValue represents an enum value
type EnumValue struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	IsDeprecated      bool   `json:"isDeprecated"`
	DeprecationReason string `json:"deprecationReason,omitempty"`
}

// Directive represents a GraphQL directive
type Directive struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Locations   []string     `json:"locations"`
	Args        []InputValue `json:"args,omitempty"`
}

// ParseIntrospection extracts the schema from an introspection response's
// data payload (the object holding "__schema").
func ParseIntrospection(data json.RawMessage) (*Schema, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty introspection data")
	}

	var result struct {
		Schema *Schema `json:"__schema"`
	}
	if err := jsonutil.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	if result.Schema == nil {
		return nil, fmt.Errorf("introspection data has no __schema")
	}
	return result.Schema, nil
}

// IntrospectionQuery returns the full introspection query
func IntrospectionQuery() string {
	return `query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types {
      kind
      name
      description
      fields(includeDeprecated: true) {
        name
        description
        args {
          name
          description
          type { kind name ofType { kind name ofType { kind name ofType { kind name } } } }
          defaultValue
        }
        type { kind name ofType { kind name ofType { kind name ofType { kind name } } } }
        isDeprecated
        deprecationReason
      }
      inputFields {
        name
        description
        type { kind name ofType { kind name ofType { kind name ofType { kind name } } } }
        defaultValue
      }
      interfaces { name }
      enumValues(includeDeprecated: true) {
        name
        description
        isDeprecated
        deprecationReason
      }
      possibleTypes { name }
    }
    directives {
      name
      description
      locations
      args {
        name
        description
        type { kind name ofType { kind name ofType { kind name } } }
        defaultValue
      }
    }
  }
}`
}

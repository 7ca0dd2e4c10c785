package graphql

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample introspection data (the object carrying "__schema") for testing
const sampleIntrospectionData = `{
  "__schema": {
    "queryType": {"name": "Query"},
    "mutationType": {"name": "Mutation"},
    "types": [
      {
        "kind": "OBJECT",
        "name": "Query",
        "description": "The entry point",
        "fields": [
          {
            "name": "user",
            "args": [
              {"name": "id", "type": {"kind": "NON_NULL", "ofType": {"kind": "SCALAR", "name": "ID"}}}
            ],
            "type": {"kind": "OBJECT", "name": "User"},
            "isDeprecated": false
          },
          {
            "name": "users",
            "args": [
              {"name": "limit", "type": {"kind": "SCALAR", "name": "Int"}, "defaultValue": "10"}
            ],
            "type": {"kind": "NON_NULL", "ofType": {"kind": "LIST", "ofType": {"kind": "NON_NULL", "ofType": {"kind": "OBJECT", "name": "User"}}}},
            "isDeprecated": false
          }
        ]
      },
      {
        "kind": "OBJECT",
        "name": "Mutation",
        "fields": [
          {
            "name": "createUser",
            "args": [
              {"name": "input", "type": {"kind": "NON_NULL", "ofType": {"kind": "INPUT_OBJECT", "name": "UserInput"}}}
            ],
            "type": {"kind": "OBJECT", "name": "User"},
            "isDeprecated": false
          }
        ]
      },
      {
        "kind": "OBJECT",
        "name": "User",
        "description": "A registered user",
        "interfaces": [{"name": "Node"}],
        "fields": [
          {"name": "id", "type": {"kind": "NON_NULL", "ofType": {"kind": "SCALAR", "name": "ID"}}, "isDeprecated": false},
          {"name": "name", "type": {"kind": "SCALAR", "name": "String"}, "isDeprecated": false},
          {"name": "nickname", "type": {"kind": "SCALAR", "name": "String"}, "isDeprecated": true, "deprecationReason": "Use name instead"}
        ]
      },
      {
        "kind": "INTERFACE",
        "name": "Node",
        "fields": [
          {"name": "id", "type": {"kind": "NON_NULL", "ofType": {"kind": "SCALAR", "name": "ID"}}, "isDeprecated": false}
        ]
      },
      {
        "kind": "OBJECT",
        "name": "Post",
        "fields": [
          {"name": "title", "type": {"kind": "SCALAR", "name": "String"}, "isDeprecated": false}
        ]
      },
      {"kind": "UNION", "name": "SearchResult", "possibleTypes": [{"name": "User"}, {"name": "Post"}]},
      {
        "kind": "ENUM",
        "name": "Role",
        "enumValues": [
          {"name": "ADMIN", "isDeprecated": false},
          {"name": "USER", "isDeprecated": false},
          {"name": "GUEST", "isDeprecated": true, "deprecationReason": "Guests are gone"}
        ]
      },
      {
        "kind": "INPUT_OBJECT",
        "name": "UserInput",
        "inputFields": [
          {"name": "name", "type": {"kind": "NON_NULL", "ofType": {"kind": "SCALAR", "name": "String"}}},
          {"name": "role", "type": {"kind": "ENUM", "name": "Role"}, "defaultValue": "USER"}
        ]
      },
      {"kind": "SCALAR", "name": "DateTime", "description": "ISO-8601 timestamp"},
      {"kind": "SCALAR", "name": "String"},
      {"kind": "SCALAR", "name": "ID"},
      {"kind": "SCALAR", "name": "Int"},
      {"kind": "SCALAR", "name": "Boolean"},
      {"kind": "OBJECT", "name": "__Type"}
    ],
    "directives": [
      {
        "name": "skip",
        "locations": ["FIELD"],
        "args": [{"name": "if", "type": {"kind": "NON_NULL", "ofType": {"kind": "SCALAR", "name": "Boolean"}}}]
      },
      {
        "name": "cacheControl",
        "description": "Caching hints",
        "locations": ["FIELD_DEFINITION", "OBJECT"],
        "args": [{"name": "maxAge", "type": {"kind": "SCALAR", "name": "Int"}}]
      }
    ]
  }
}`

func TestParseIntrospection(t *testing.T) {
	schema, err := ParseIntrospection(json.RawMessage(sampleIntrospectionData))

	require.NoError(t, err)
	require.NotNil(t, schema.QueryType)
	assert.Equal(t, "Query", schema.QueryType.Name)
	require.NotNil(t, schema.MutationType)
	assert.Equal(t, "Mutation", schema.MutationType.Name)
	assert.Nil(t, schema.SubscriptionType)
	assert.Len(t, schema.Types, 14)
	assert.Len(t, schema.Directives, 2)
}

func TestParseIntrospectionErrors(t *testing.T) {
	t.Run("empty data", func(t *testing.T) {
		_, err := ParseIntrospection(nil)
		require.Error(t, err)
	})

	t.Run("no __schema", func(t *testing.T) {
		_, err := ParseIntrospection(json.RawMessage(`{"user": {"id": "1"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "__schema")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := ParseIntrospection(json.RawMessage(`{"__schema": `))
		require.Error(t, err)
	})
}

func TestRenderSDL(t *testing.T) {
	schema, err := ParseIntrospection(json.RawMessage(sampleIntrospectionData))
	require.NoError(t, err)

	sdl := RenderSDL(schema)

	// Object types with fields, args, and list/non-null notation
	assert.Contains(t, sdl, "type Query {")
	assert.Contains(t, sdl, `"""The entry point"""`)
	assert.Contains(t, sdl, "user(id: ID!): User")
	assert.Contains(t, sdl, "users(limit: Int = 10): [User!]!")
	assert.Contains(t, sdl, "createUser(input: UserInput!): User")

	// Interface implementation and deprecation
	assert.Contains(t, sdl, "type User implements Node {")
	assert.Contains(t, sdl, `nickname: String @deprecated(reason: "Use name instead")`)
	assert.Contains(t, sdl, "interface Node {")

	// Union, enum, input, custom scalar
	assert.Contains(t, sdl, "union SearchResult = User | Post")
	assert.Contains(t, sdl, "enum Role {")
	assert.Contains(t, sdl, `GUEST @deprecated(reason: "Guests are gone")`)
	assert.Contains(t, sdl, "input UserInput {")
	assert.Contains(t, sdl, "role: Role = USER")
	assert.Contains(t, sdl, "scalar DateTime")

	// Custom directives are rendered, built-ins are not
	assert.Contains(t, sdl, "directive @cacheControl(maxAge: Int) on FIELD_DEFINITION | OBJECT")
	assert.NotContains(t, sdl, "directive @skip")

	// Built-in scalars and introspection machinery are skipped
	assert.NotContains(t, sdl, "scalar String")
	assert.NotContains(t, sdl, "scalar Boolean")
	assert.NotContains(t, sdl, "__Type")
}

func TestRenderSDLDeterministic(t *testing.T) {
	schema, err := ParseIntrospection(json.RawMessage(sampleIntrospectionData))
	require.NoError(t, err)

	first := RenderSDL(schema)
	second := RenderSDL(schema)

	assert.Equal(t, first, second)
}

func TestRenderSDLSchemaBlock(t *testing.T) {
	t.Run("conventional root names omit the block", func(t *testing.T) {
		schema := &Schema{
			QueryType:    &TypeRef{Name: "Query"},
			MutationType: &TypeRef{Name: "Mutation"},
		}
		assert.NotContains(t, RenderSDL(schema), "schema {")
	})

	t.Run("custom root names emit the block", func(t *testing.T) {
		schema := &Schema{
			QueryType:    &TypeRef{Name: "RootQuery"},
			MutationType: &TypeRef{Name: "Mutation"},
		}
		sdl := RenderSDL(schema)
		assert.Contains(t, sdl, "schema {")
		assert.Contains(t, sdl, "query: RootQuery")
		assert.Contains(t, sdl, "mutation: Mutation")
	})
}

func TestRenderSDLMultilineDescription(t *testing.T) {
	schema := &Schema{
		QueryType: &TypeRef{Name: "Query"},
		Types: []Type{
			{
				Kind:        "SCALAR",
				Name:        "JSON",
				Description: "Arbitrary JSON.\nNo shape is enforced.",
			},
		},
	}

	sdl := RenderSDL(schema)

	assert.Contains(t, sdl, "\"\"\"\nArbitrary JSON.\nNo shape is enforced.\n\"\"\"\nscalar JSON")
}

func TestRenderFieldType(t *testing.T) {
	tests := []struct {
		name string
		ft   *FieldType
		want string
	}{
		{
			"plain scalar",
			&FieldType{Kind: "SCALAR", Name: "String"},
			"String",
		},
		{
			"non-null scalar",
			&FieldType{Kind: "NON_NULL", OfType: &FieldType{Kind: "SCALAR", Name: "String"}},
			"String!",
		},
		{
			"list of scalar",
			&FieldType{Kind: "LIST", OfType: &FieldType{Kind: "SCALAR", Name: "Int"}},
			"[Int]",
		},
		{
			"non-null list of non-null",
			&FieldType{Kind: "NON_NULL", OfType: &FieldType{Kind: "LIST", OfType: &FieldType{Kind: "NON_NULL", OfType: &FieldType{Kind: "SCALAR", Name: "String"}}}},
			"[String!]!",
		},
		{
			"nil",
			nil,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderFieldType(tt.ft))
		})
	}
}

package language

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const petsSDL = `
type Query {
	pet(id: ID!): Pet
	pets(limit: Int): [Pet!]!
}

type Mutation {
	adopt(id: ID!): Pet
}

type Pet {
	id: ID!
	name: String!
	owner: Owner
}

type Owner {
	name: String!
}
`

func TestParseQuery(t *testing.T) {
	doc, err := ParseQuery(`# Fetch a pet.
query Pet($id: ID!) {
  pet(id: $id) {
    id
    owner # Circular reference to Owner
  }
}
`)
	require.NoError(t, err)
	require.Len(t, doc.Operations, 1)

	var op *OperationDefinition = doc.Operations[0]
	require.Equal(t, Query, op.Operation)
	require.Equal(t, "Pet", op.Name)

	var vd *VariableDefinition = op.VariableDefinitions[0]
	require.Equal(t, "id", vd.Variable)
	require.Equal(t, "ID!", vd.Type.String())

	var sel SelectionSet = op.SelectionSet
	root := sel[0].(*Field)
	require.Equal(t, "pet", root.Name)
	require.Len(t, root.SelectionSet, 2)

	var pos *Position = root.Position
	require.Equal(t, 3, pos.Line)
}

func TestParseQueryErrors(t *testing.T) {
	_, err := ParseQuery("query Broken {\n  pet(\n}\n")
	require.Error(t, err)

	var gqlErr *gqlerror.Error
	require.ErrorAs(t, err, &gqlErr)
	require.NotEmpty(t, gqlErr.Locations)
}

func TestLoadSchema(t *testing.T) {
	sch, err := LoadSchema("pets.graphql", petsSDL)
	require.NoError(t, err)
	require.Equal(t, "Query", sch.Query.Name)
	require.Equal(t, "Mutation", sch.Mutation.Name)
	require.Nil(t, sch.Subscription)
	require.NotNil(t, sch.Types["String"], "prelude scalars are loaded")

	_, err = LoadSchema("broken.graphql", "type Query { pet: Missing }")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	sch, err := LoadSchema("pets.graphql", petsSDL)
	require.NoError(t, err)

	require.NoError(t, Validate(sch, "pet.graphql", `query Pet($id: ID!) {
  pet(id: $id) {
    id
    name
    owner {
      name
    }
  }
}
`))
	require.NoError(t, Validate(sch, "adopt.graphql", "mutation Adopt($id: ID!) {\n  adopt(id: $id) {\n    id\n  }\n}\n"))

	err = Validate(sch, "bare.graphql", "query Pets {\n  pets {\n    owner\n  }\n}\n")
	var list gqlerror.List
	require.ErrorAs(t, err, &list)
	require.Len(t, list, 1)
	require.Contains(t, list[0].Message, "must have a selection of subfields")

	err = Validate(sch, "unknown.graphql", "query Pets {\n  pets {\n    color\n  }\n}\n")
	require.ErrorContains(t, err, `Cannot query field "color" on type "Pet"`)

	require.Error(t, Validate(sch, "syntax.graphql", "query {"))
}

package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Schema {
	t.Helper()
	sch, err := ParseIntrospection([]byte(mustReadFile(t, "testdata/introspection.json")))
	require.NoError(t, err, "failed to parse introspection fixture")
	return sch
}

func fieldNames(typ *Type) []string {
	var names []string
	for _, f := range typ.Fields {
		names = append(names, f.Name)
	}
	return names
}

func TestParseIntrospection(t *testing.T) {
	sch := loadFixture(t)

	require.Equal(t, "Query", sch.QueryType)
	require.Equal(t, "Mutation", sch.MutationType)
	require.Equal(t, "Subscription", sch.SubscriptionType)
	require.NotNil(t, sch.RootType(OperationSubscription))

	// declaration order is preserved
	require.Equal(t,
		[]string{"user", "users", "node", "search", "serverTime", "legacyUsers"},
		fieldNames(sch.GetQueryType()))

	users := sch.GetQueryType().Fields[1]
	require.Equal(t, "[User!]!", users.Type.String())
	require.Len(t, users.Arguments, 2)
	require.NotNil(t, users.Arguments[0].DefaultValue)
	require.Equal(t, "10", *users.Arguments[0].DefaultValue)

	legacy := sch.GetQueryType().Fields[5]
	require.True(t, legacy.IsDeprecated)
	require.Equal(t, "Use users instead.", legacy.DeprecationReason)

	user := sch.Types["User"]
	require.Equal(t, TypeKindObject, user.Kind)
	require.Equal(t, []string{"Node"}, user.Interfaces)
	require.Equal(t, "A registered account.", user.Description)

	require.Equal(t, []string{"User", "Post"}, sch.Types["SearchResult"].PossibleTypes)
	require.Equal(t, TypeKindEnum, sch.Types["Role"].Kind)
	require.Len(t, sch.Types["CreateUserInput"].InputFields, 2)
}

func TestParseIntrospectionWithoutEnvelope(t *testing.T) {
	sch, err := ParseIntrospection([]byte(`{"__schema":{"queryType":{"name":"Q"},"types":[
		{"kind":"OBJECT","name":"Q","fields":[{"name":"ok","args":[],"type":{"kind":"SCALAR","name":"Boolean"}}]}
	]}}`))
	require.NoError(t, err)
	require.Equal(t, "Q", sch.QueryType)
	require.Equal(t, []string{"ok"}, fieldNames(sch.GetQueryType()))
	require.Nil(t, sch.GetMutationType())
}

func TestParseIntrospectionErrors(t *testing.T) {
	_, err := ParseIntrospection([]byte(`{"data":null}`))
	require.ErrorIs(t, err, ErrNoSchema)

	_, err = ParseIntrospection([]byte(`{"errors":[{"message":"introspection disabled"}]}`))
	require.ErrorContains(t, err, "introspection disabled")

	_, err = ParseIntrospection([]byte(`not json`))
	require.Error(t, err)
}

func TestMalformedTypeRefDegradesToNil(t *testing.T) {
	sch, err := ParseIntrospection([]byte(`{"__schema":{"queryType":{"name":"Q"},"types":[
		{"kind":"OBJECT","name":"Q","fields":[{"name":"broken","args":[],"type":{"kind":"NON_NULL","ofType":null}}]},
		{"kind":"MYSTERY","name":"Odd"}
	]}}`))
	require.NoError(t, err)
	broken := sch.GetQueryType().Fields[0]
	require.Nil(t, broken.Type)
	require.Nil(t, sch.Resolve(broken.Type))
	require.Equal(t, TypeKindScalar, sch.Types["Odd"].Kind)
}

func TestTypeRefHelpers(t *testing.T) {
	ref := NonNullType(ListType(NonNullType(NamedType("ID"))))
	require.Equal(t, "[ID!]!", ref.String())
	require.Equal(t, "ID", ref.GetNamedType())
	require.True(t, ref.IsNonNull())
	require.True(t, ref.IsList())
	require.Equal(t, "[ID!]", ref.Unwrap().String())

	var nilRef *TypeRef
	require.Equal(t, "", nilRef.GetNamedType())
	require.Equal(t, "", nilRef.String())
	require.Nil(t, nilRef.Unwrap())
}

func TestIsLeaf(t *testing.T) {
	for _, name := range []string{"String", "Int", "Float", "Boolean", "ID", "DateTime", "Date", "JSON"} {
		require.True(t, IsLeaf(name), name)
	}
	for _, name := range []string{"User", "Role", "Upload", ""} {
		require.False(t, IsLeaf(name), name)
	}
}

func TestBuildFromSDL(t *testing.T) {
	sch, err := BuildFromSDL("test.graphql", `
		type Query {
			"Look up a user."
			user(id: ID!, verbose: Boolean = false): User
			old: String @deprecated
		}
		type User { id: ID!, friends(first: Int): [User!] }
	`)
	require.NoError(t, err)

	query := sch.GetQueryType()
	require.NotNil(t, query)
	require.Equal(t, "user", query.Fields[0].Name)
	require.Equal(t, "Look up a user.", query.Fields[0].Description)
	require.Equal(t, "Boolean", query.Fields[0].Arguments[1].Type.String())
	require.Equal(t, "false", *query.Fields[0].Arguments[1].DefaultValue)
	require.True(t, query.Fields[1].IsDeprecated)
	require.Equal(t, "No longer supported", query.Fields[1].DeprecationReason)
	require.Equal(t, "[User!]", sch.Types["User"].Fields[1].Type.String())
	require.Equal(t, TypeKindScalar, sch.Types["String"].Kind)
}

func TestBuildFromSDLInvalid(t *testing.T) {
	_, err := BuildFromSDL("bad.graphql", `type Query { user: Missing }`)
	require.Error(t, err)
}

func TestRenderRoundTrip(t *testing.T) {
	sch := loadFixture(t)
	sdl := Render(sch)

	require.NotContains(t, sdl, "__Schema")
	require.NotContains(t, sdl, "scalar String")
	require.NotContains(t, sdl, "directive @include")
	require.Contains(t, sdl, "directive @cacheControl(maxAge: Int) on FIELD_DEFINITION | OBJECT")

	reloaded, err := BuildFromSDL("rendered.graphql", sdl)
	require.NoError(t, err, "rendered SDL must load:\n%s", sdl)
	require.Equal(t, fieldNames(sch.GetQueryType()), fieldNames(reloaded.GetQueryType())[:len(sch.GetQueryType().Fields)])
	require.Equal(t, "Use users instead.", reloaded.GetQueryType().Fields[5].DeprecationReason)
}

func TestSchemaRenderSnapshot(t *testing.T) {
	actual := Render(loadFixture(t))

	snapshotPath := filepath.Join("testdata", "schema_rendered.graphql")

	// If snapshot doesn't exist, create it
	if _, err := os.Stat(snapshotPath); os.IsNotExist(err) {
		err := os.WriteFile(snapshotPath, []byte(actual), 0644)
		require.NoError(t, err, "failed to write snapshot file")
		t.Logf("Created snapshot file: %s", snapshotPath)
		return
	}

	expected, err := os.ReadFile(snapshotPath)
	require.NoError(t, err, "failed to read snapshot file")

	if diff := cmp.Diff(string(expected), actual); diff != "" {
		t.Errorf("Rendered schema snapshot mismatch (-want +got):\n%s", diff)
	}
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read file: %s", path)
	return string(content)
}

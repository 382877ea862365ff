package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlopera/internal/config"
	"github.com/hanpama/gqlopera/internal/eventbus"
	"github.com/hanpama/gqlopera/internal/introspection"
	"github.com/hanpama/gqlopera/internal/logging"
	"github.com/hanpama/gqlopera/internal/schema"
)

const starwarsSDL = `
schema {
	query: Query
}
type Query {
	"Look up a character."
	hero(id: ID!): Character
	echo(text: String!): String!
}
type Character {
	id: ID!
	name: String!
	friends: [Character!]!
}
`

const heroDocument = `# Look up a character.
query Hero($id: ID!) {
  hero(id: $id) {
    id
    name
    friends # Circular reference to Character
  }
}
`

type resolver struct{}

func (resolver) Hero(args struct{ ID graphql.ID }) *character {
	return &character{id: args.ID}
}

func (resolver) Echo(args struct{ Text string }) string { return args.Text }

type character struct{ id graphql.ID }

func (c *character) ID() graphql.ID        { return c.id }
func (c *character) Name() string          { return "Luke" }
func (c *character) Friends() []*character { return nil }

func newGraphQLServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := graphql.MustParseSchema(starwarsSDL, resolver{})
	srv := httptest.NewServer(&relay.Handler{Schema: s})
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errb bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errb.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerateFromEndpoint(t *testing.T) {
	srv := newGraphQLServer(t)
	dir := t.TempDir()
	outDir := filepath.Join(dir, "ops")

	_, stderr, err := execute(t, "generate",
		"-c", filepath.Join(dir, "missing.json"),
		"-e", srv.URL,
		"-o", outDir,
	)
	require.NoError(t, err)

	require.Equal(t, heroDocument, readFile(t, filepath.Join(outDir, "query", "hero.graphql")))
	require.Equal(t, "query Echo($text: String!) {\n  echo(text: $text)\n}\n",
		readFile(t, filepath.Join(outDir, "query", "echo.graphql")))
	require.DirExists(t, filepath.Join(outDir, "mutation"))
	require.DirExists(t, filepath.Join(outDir, "subscription"))

	require.Contains(t, stderr, "Config file not found")
	require.Contains(t, stderr, "Generated 2 query files")
	require.Contains(t, stderr, "Operations saved to: "+outDir)
}

func TestGenerateAliases(t *testing.T) {
	srv := newGraphQLServer(t)
	for _, alias := range []string{"gen", "g"} {
		outDir := filepath.Join(t.TempDir(), "ops")
		_, _, err := execute(t, alias, "-c", "", "-e", srv.URL, "-o", outDir)
		require.NoError(t, err, alias)
		require.FileExists(t, filepath.Join(outDir, "query", "hero.graphql"))
	}
}

func TestGenerateFromSchemaFileWithConfig(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.graphqls")
	require.NoError(t, os.WriteFile(schemaPath, []byte(starwarsSDL), 0644))
	outDir := filepath.Join(dir, "out")
	cfgPath := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
		"schema": "`+filepath.ToSlash(schemaPath)+`",
		"output": "`+filepath.ToSlash(outDir)+`",
		"circularRefs": "silent",
		"excludeFields": ["echo"]
	}`), 0644))

	_, stderr, err := execute(t, "generate", "-c", cfgPath, "--verify", "--emit-sdl")
	require.NoError(t, err)

	require.Equal(t, "# Look up a character.\nquery Hero($id: ID!) {\n  hero(id: $id) {\n    id\n    name\n  }\n}\n",
		readFile(t, filepath.Join(outDir, "query", "hero.graphql")))
	require.NoFileExists(t, filepath.Join(outDir, "query", "echo.graphql"))
	require.Contains(t, readFile(t, filepath.Join(outDir, "schema.graphql")), "type Character {")
	require.Contains(t, stderr, "Verified 1 operations")
	require.NotContains(t, stderr, "does not validate")
}

func TestGenerateVerifyWarns(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.graphql")
	require.NoError(t, os.WriteFile(schemaPath, []byte(starwarsSDL), 0644))

	_, stderr, err := execute(t, "generate", "-c", "", "--schema", schemaPath, "-o", filepath.Join(dir, "out"), "--verify")
	require.NoError(t, err, "verification failures are warnings")
	require.Contains(t, stderr, "Generated operation does not validate")
	require.Contains(t, stderr, "hero.graphql")
}

func TestGenerateRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "generate", "-c", "", "-e", "http://localhost:4000/graphql", "-o", dir, "--max-depth", "11")
	require.ErrorIs(t, err, config.ErrInvalid)
	require.ErrorContains(t, err, "maxDepth must be at most 10")

	_, _, err = execute(t, "generate", "-c", "", "-o", dir)
	require.ErrorContains(t, err, "endpoint is required unless schema is set")

	_, _, err = execute(t, "generate", "-c", "", "-e", "http://localhost:4000/graphql", "-H", "Authorization: x")
	require.ErrorContains(t, err, "invalid JSON format for headers")
}

func TestGenerateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, _, err := execute(t, "generate", "-c", "", "-e", url, "-o", t.TempDir())
	require.ErrorIs(t, err, introspection.ErrConnectionRefused)
	require.Equal(t, "Connection refused. Make sure the GraphQL server is running.", introspection.Hint(err))
}

func TestWatchSurvivesFailedInitialFetch(t *testing.T) {
	gql := newGraphQLServer(t)
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "starting up", http.StatusServiceUnavailable)
			return
		}
		gql.Config.Handler.ServeHTTP(w, r)
	}))
	defer srv.Close()

	outDir := filepath.Join(t.TempDir(), "ops")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var errb bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"generate", "-c", "", "-e", srv.URL, "-o", outDir, "--watch"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&errb)
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	hero := filepath.Join(outDir, "query", "hero.graphql")
	require.Eventually(t, func() bool {
		_, err := os.Stat(hero)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	require.Equal(t, heroDocument, readFile(t, hero))
	require.Contains(t, errb.String(), "Initial generation failed")
	require.GreaterOrEqual(t, requests.Load(), int32(2))
}

func TestFlagsOverrideConfigOnlyWhenSet(t *testing.T) {
	f := &generateFlags{}
	cmd := generateCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{
		"--max-depth", "2",
		"--include-fields", "hero,echo",
		"--circular-refs", "allow",
		"-H", `{"X-Tenant":"acme"}`,
		"--shallow",
	}))

	cfg := config.Default()
	cfg.Endpoint = "http://from-file"
	cfg.MaxFields = 20
	cfg.Headers = map[string]string{"Authorization": "Bearer file"}

	require.NoError(t, f.apply(cmd, &cfg))
	require.Equal(t, "http://from-file", cfg.Endpoint)
	require.Equal(t, 20, cfg.MaxFields, "unset flag keeps config value")
	require.Equal(t, 2, cfg.MaxDepth)
	require.Equal(t, []string{"hero", "echo"}, cfg.IncludeFields)
	require.Equal(t, "allow", cfg.CircularRefs)
	require.Equal(t, map[string]string{"Authorization": "Bearer file", "X-Tenant": "acme"}, cfg.Headers)

	require.NoError(t, cfg.Finalize())
	require.Equal(t, 1, cfg.MaxDepth, "shallow mode wins")
}

func TestRegenerateWritesChangedSchema(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var logs bytes.Buffer
	logger := logging.New(&logs, false)
	defer logging.Subscribe(logger)()

	cfg := config.Default()
	cfg.Output = t.TempDir()
	p := &pipeline{cfg: cfg, log: logger, src: introspection.File{Path: "schema.graphql"}}

	sch, err := schema.BuildFromSDL("schema.graphql", starwarsSDL)
	require.NoError(t, err)
	require.NoError(t, p.regenerate(context.Background(), sch))

	require.Equal(t, heroDocument, readFile(t, filepath.Join(cfg.Output, "query", "hero.graphql")))
	require.Contains(t, logs.String(), "Operations updated!")
}

func TestValidateCommand(t *testing.T) {
	srv := newGraphQLServer(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"endpoint":"`+srv.URL+`"}`), 0644))

	_, stderr, err := execute(t, "validate", "-c", cfgPath)
	require.NoError(t, err)
	require.Contains(t, stderr, "GraphQL endpoint is accessible and schema is valid")

	srv.Close()
	_, _, err = execute(t, "validate", "-c", cfgPath)
	require.ErrorIs(t, err, introspection.ErrConnectionRefused)
	require.ErrorContains(t, err, "validation failed")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, stderr, err := execute(t, "init")
	require.NoError(t, err)
	require.Contains(t, stderr, "Configuration file created")
	require.FileExists(t, filepath.Join(dir, config.FileName))

	_, stderr, err = execute(t, "init")
	require.NoError(t, err)
	require.Contains(t, stderr, "Configuration file already exists")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, "gqlopera version dev (commit: none)\n", stdout)
}

func TestExecuteExitCode(t *testing.T) {
	require.Equal(t, 0, Execute(context.Background(), []string{"version"}))
	require.Equal(t, 1, Execute(context.Background(), []string{"nope"}))
}

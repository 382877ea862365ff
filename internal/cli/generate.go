package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hanpama/gqlopera/internal/config"
	"github.com/hanpama/gqlopera/internal/eventbus"
	"github.com/hanpama/gqlopera/internal/introspection"
	"github.com/hanpama/gqlopera/internal/logging"
	"github.com/hanpama/gqlopera/internal/otel"
	"github.com/hanpama/gqlopera/internal/watch"
)

const defaultConfigPath = config.FileName

type generateFlags struct {
	configPath       string
	endpoint         string
	output           string
	headers          string
	schema           string
	watch            bool
	verbose          bool
	maxDepth         int
	maxFields        int
	shallow          bool
	includeFields    []string
	excludeFields    []string
	circularRefs     string
	circularRefDepth int
	verify           bool
	emitSDL          bool
	otelEndpoint     string
	otelService      string
}

func newGenerateCmd() *cobra.Command {
	return generateCmd(&generateFlags{})
}

func generateCmd(f *generateFlags) *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen", "g"},
		Short:   "Generate operation documents from a GraphQL schema",
		Long: `Introspect the endpoint (or read --schema) and write one .graphql
document per root field.

Flags override values from the config file only when given explicitly.

Examples:
  gqlopera generate -e http://localhost:4000/graphql
  gqlopera generate -H '{"Authorization":"Bearer token"}' --max-depth 3
  gqlopera gen --schema schema.graphql --circular-refs allow --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", defaultConfigPath, "Path to config file")
	flags.StringVarP(&f.endpoint, "endpoint", "e", "", "GraphQL endpoint URL")
	flags.StringVarP(&f.output, "output", "o", def.Output, "Output directory")
	flags.StringVarP(&f.headers, "headers", "H", "", "HTTP headers as JSON string")
	flags.StringVar(&f.schema, "schema", "", "Read the schema from a .graphql or introspection .json file instead of the endpoint")
	flags.BoolVar(&f.watch, "watch", false, "Watch for schema changes and regenerate")
	flags.BoolVar(&f.verbose, "verbose", false, "Enable verbose logging")
	flags.IntVar(&f.maxDepth, "max-depth", def.MaxDepth, "Maximum depth for field expansion")
	flags.IntVar(&f.maxFields, "max-fields", def.MaxFields, "Maximum fields per type")
	flags.BoolVar(&f.shallow, "shallow", false, "Enable shallow mode (maxDepth=1)")
	flags.StringSliceVar(&f.includeFields, "include-fields", nil, "Comma-separated list of root fields to include")
	flags.StringSliceVar(&f.excludeFields, "exclude-fields", nil, "Comma-separated list of root fields to exclude")
	flags.StringVar(&f.circularRefs, "circular-refs", def.CircularRefs, "Circular reference handling: skip, silent, or allow")
	flags.IntVar(&f.circularRefDepth, "circular-ref-depth", def.CircularRefDepth, "Depth limit for circular references")
	flags.BoolVar(&f.verify, "verify", false, "Validate generated documents against the schema")
	flags.BoolVar(&f.emitSDL, "emit-sdl", false, "Also write the schema as SDL to <output>/schema.graphql")
	flags.StringVar(&f.otelEndpoint, "otel-endpoint", "", "OTLP collector endpoint")
	flags.StringVar(&f.otelService, "otel-service", "gqlopera", "OpenTelemetry service name")

	return cmd
}

// apply copies explicitly set flags onto cfg.
func (f *generateFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("endpoint") {
		cfg.Endpoint = f.endpoint
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("headers") {
		h, err := config.ParseHeaders(f.headers)
		if err != nil {
			return err
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for k, v := range h {
			cfg.Headers[k] = v
		}
	}
	if changed("schema") {
		cfg.Schema = f.schema
	}
	if changed("watch") {
		cfg.Watch = f.watch
	}
	if changed("max-depth") {
		cfg.MaxDepth = f.maxDepth
	}
	if changed("max-fields") {
		cfg.MaxFields = f.maxFields
	}
	if changed("shallow") {
		cfg.ShallowMode = f.shallow
	}
	if changed("include-fields") {
		cfg.IncludeFields = f.includeFields
	}
	if changed("exclude-fields") {
		cfg.ExcludeFields = f.excludeFields
	}
	if changed("circular-refs") {
		cfg.CircularRefs = f.circularRefs
	}
	if changed("circular-ref-depth") {
		cfg.CircularRefDepth = f.circularRefDepth
	}
	if changed("verify") {
		cfg.Verify = f.verify
	}
	if changed("emit-sdl") {
		cfg.EmitSDL = f.emitSDL
	}
	return nil
}

func runGenerate(cmd *cobra.Command, f *generateFlags) error {
	logger := logging.New(cmd.ErrOrStderr(), f.verbose)

	cfg, err := loadConfig(logger, f.configPath)
	if err != nil {
		return err
	}
	if err := f.apply(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)
	defer logging.Subscribe(logger)()

	shutdown, err := otel.Setup(f.otelEndpoint, f.otelService)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	logger.Info("GraphQL Schema Generator")
	p := &pipeline{cfg: cfg, log: logger, src: newSource(cfg)}
	data, err := p.run(cmd.Context())
	if !cfg.Watch {
		return err
	}

	w := watch.New(p.src, cfg.WatchInterval.Std(), p.regenerate)
	if err != nil {
		logger.Error("Initial generation failed", "err", err, "hint", introspection.Hint(err))
		w.Invalidate()
	} else {
		w.Seed(data)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("Watching for changes...", "interval", cfg.WatchInterval.Std())
	return w.Run(ctx)
}

// loadConfig reads path, warning instead of failing when it does not exist.
func loadConfig(logger *log.Logger, path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Config file not found: " + path)
		return cfg, nil
	}
	return cfg, err
}

func newSource(cfg config.Config) introspection.Source {
	if cfg.Schema != "" {
		return introspection.File{Path: cfg.Schema}
	}
	return introspection.New(cfg.Endpoint,
		introspection.WithHeaders(cfg.Headers),
		introspection.WithTimeout(cfg.Timeout.Std()),
	)
}

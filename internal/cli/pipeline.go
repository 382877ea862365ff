package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hanpama/gqlopera/internal/config"
	"github.com/hanpama/gqlopera/internal/eventbus"
	"github.com/hanpama/gqlopera/internal/events"
	"github.com/hanpama/gqlopera/internal/introspection"
	"github.com/hanpama/gqlopera/internal/language"
	"github.com/hanpama/gqlopera/internal/logging"
	"github.com/hanpama/gqlopera/internal/operation"
	"github.com/hanpama/gqlopera/internal/output"
	"github.com/hanpama/gqlopera/internal/runid"
	"github.com/hanpama/gqlopera/internal/schema"
)

// pipeline runs fetch, generate and write for one configuration. Each run is
// tagged with its own run ID.
type pipeline struct {
	cfg config.Config
	log *log.Logger
	src introspection.Source
}

// run fetches the schema, generates and writes all documents. It returns the
// raw schema payload so a watcher can be seeded with it.
func (p *pipeline) run(ctx context.Context) (data []byte, err error) {
	ctx, finish := p.start(ctx)
	documents := 0
	defer func() { finish(documents, err) }()

	data, err = p.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	sch, err := p.src.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	documents, err = p.generate(ctx, sch)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// regenerate is the watch callback for a changed schema.
func (p *pipeline) regenerate(ctx context.Context, sch *schema.Schema) (err error) {
	ctx, finish := p.start(ctx)
	documents := 0
	defer func() { finish(documents, err) }()

	documents, err = p.generate(ctx, sch)
	if err != nil {
		return err
	}
	logging.Success(p.log, "Operations updated!")
	return nil
}

func (p *pipeline) start(ctx context.Context) (context.Context, func(int, error)) {
	ctx, rid := runid.NewContext(ctx)
	p.log.Debug("Run started", "run", rid)
	begin := time.Now()
	eventbus.Publish(ctx, events.RunStart{Source: p.src.String(), Output: p.cfg.Output})
	return ctx, func(documents int, err error) {
		eventbus.Publish(ctx, events.RunFinish{Documents: documents, Err: err, Duration: time.Since(begin)})
	}
}

func (p *pipeline) generate(ctx context.Context, sch *schema.Schema) (int, error) {
	docs := operation.NewGenerator(sch, p.cfg.Generator()).WithLogger(p.log).GenerateAll(ctx)

	w := output.New(p.cfg.Output)
	if _, err := w.Write(ctx, docs); err != nil {
		return 0, err
	}
	if p.cfg.EmitSDL {
		path, err := w.WriteSDL(sch)
		if err != nil {
			return 0, err
		}
		p.log.Info("Schema SDL saved to: " + path)
	}
	if p.cfg.Verify {
		if err := p.verify(sch, w, docs); err != nil {
			return 0, err
		}
	}
	logging.Success(p.log, "Operations saved to: "+p.cfg.Output)
	return len(docs), nil
}

// verify checks every document against the schema and warns about the ones
// that do not validate. Annotated fields and unexpanded unions are the usual
// cause; the documents are still written.
func (p *pipeline) verify(sch *schema.Schema, w *output.Writer, docs []operation.Document) error {
	astSchema, err := language.LoadSchema(output.SDLFileName, schema.Render(sch))
	if err != nil {
		return fmt.Errorf("load schema for verification: %w", err)
	}
	invalid := 0
	for _, doc := range docs {
		if err := language.Validate(astSchema, w.Path(doc), doc.Content); err != nil {
			invalid++
			p.log.Warn("Generated operation does not validate", "file", w.Path(doc), "err", err)
		}
	}
	if invalid == 0 {
		p.log.Info(fmt.Sprintf("Verified %d operations", len(docs)))
	}
	return nil
}

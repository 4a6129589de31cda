package generator

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/upb/llm-datagen/internal/localgen"
	"github.com/upb/llm-datagen/internal/observability"
	"github.com/upb/llm-datagen/internal/shared"
	"github.com/upb/llm-datagen/services"
	"github.com/upb/llm-datagen/services/providers"
	"github.com/upb/llm-datagen/services/templates"
)

// Generation modes reported to metrics
const (
	ModeDataSet = "dataset"
	ModeSurvey  = "survey"
)

// TextGenerator is the orchestrator surface the planner calls
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (*providers.Result, error)
}

// TemplateSource resolves prompt bodies for groups and survey rows
type TemplateSource interface {
	Resolve(ctx context.Context, id, principal string) (*templates.Template, error)
	ResolveCoherent(ctx context.Context, id, principal string) (*templates.Template, error)
}

// UsageCounter counts successful generation requests per principal
type UsageCounter interface {
	Increment(ctx context.Context, principal string, rows int) error
}

// Config holds generator limits
type Config struct {
	MaxRows        int
	RowConcurrency int
}

// DefaultConfig returns the default generator limits
func DefaultConfig() Config {
	return Config{
		MaxRows:        1000,
		RowConcurrency: 8,
	}
}

// Service plans and runs generation requests
type Service struct {
	registry  *localgen.Registry
	text      TextGenerator
	templates TemplateSource
	counters  UsageCounter
	logger    *zap.Logger
	metrics   observability.Metrics
	config    Config
}

// NewService creates a generation service. counters may be nil.
func NewService(
	registry *localgen.Registry,
	text TextGenerator,
	templateSource TemplateSource,
	counters UsageCounter,
	logger *zap.Logger,
	metrics observability.Metrics,
	config Config,
) *Service {
	if config.MaxRows <= 0 {
		config.MaxRows = DefaultConfig().MaxRows
	}
	if config.RowConcurrency <= 0 {
		config.RowConcurrency = DefaultConfig().RowConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Service{
		registry:  registry,
		text:      text,
		templates: templateSource,
		counters:  counters,
		logger:    logger,
		metrics:   metrics,
		config:    config,
	}
}

// MaxRows returns the configured row ceiling
func (s *Service) MaxRows() int {
	return s.config.MaxRows
}

// GenerateDataSet produces rows of local and independent-remote fields
func (s *Service) GenerateDataSet(ctx context.Context, req DataSetRequest) (*Table, error) {
	if err := s.checkRows(req.Rows); err != nil {
		return nil, err
	}
	if len(req.Fields) == 0 {
		return nil, services.ErrNoFields
	}

	fields := planFields(s.registry, req.Fields)
	for _, f := range fields {
		if _, ok := f.class.(coherentClass); ok {
			return nil, services.NewValidationError("field %q: %s", f.name, services.ErrCoherentInDataSet.Message)
		}
	}

	start := time.Now()
	p := buildPlan(req.Rows, fields)
	cache := newRequestCache(req.Rows)

	if err := s.resolveColumns(ctx, p, cache); err != nil {
		return nil, err
	}

	table := &Table{Columns: p.order, Rows: make([]map[string]any, req.Rows)}
	for i := range table.Rows {
		row := make(map[string]any, len(p.order))
		for _, name := range p.order {
			row[name] = cache.value(name, i)
		}
		table.Rows[i] = row
	}

	s.finish(ctx, ModeDataSet, req.Rows, start)
	return table, nil
}

// GenerateSurvey produces rows where coherent answers see the rest of the row
func (s *Service) GenerateSurvey(ctx context.Context, req SurveyRequest) (*Table, error) {
	if err := s.checkRows(req.Rows); err != nil {
		return nil, err
	}
	if len(req.Questions) == 0 {
		return nil, services.ErrNoFields
	}

	start := time.Now()
	fields := planQuestions(s.registry, req.Questions)
	p := buildPlan(req.Rows, fields)
	cache := newRequestCache(req.Rows)

	var body string
	if len(p.coherent) > 0 {
		tmpl, err := s.templates.ResolveCoherent(ctx, req.TemplateID, shared.Principal(ctx))
		if err != nil {
			return nil, err
		}
		body = tmpl.Body
	}

	if err := s.resolveColumns(ctx, p, cache); err != nil {
		return nil, err
	}

	rows, err := s.assembleRows(ctx, p, fields, cache, body)
	if err != nil {
		return nil, err
	}

	s.finish(ctx, ModeSurvey, req.Rows, start)
	return &Table{Columns: columnsWithExtras(p.order, rows), Rows: rows}, nil
}

func (s *Service) checkRows(rows int) error {
	if rows < 1 {
		return services.NewValidationError("rows must be at least 1")
	}
	if rows > s.config.MaxRows {
		return services.NewDomainError(services.ErrorTypeValidation, services.ErrTooManyRows.Message, nil).
			WithDetail("max_rows", s.config.MaxRows)
	}
	return nil
}

// resolveColumns runs local generators and independent groups concurrently.
// Only request-fatal errors are returned.
func (s *Service) resolveColumns(ctx context.Context, p *plan, cache *requestCache) error {
	for _, f := range p.local {
		if err := localgen.Validate(f.class.(localClass).generator, f.options); err != nil {
			return services.NewValidationError("field %q: %v", f.name, err)
		}
	}

	eg, gctx := errgroup.WithContext(ctx)

	for _, f := range p.local {
		eg.Go(func() error {
			values, err := f.class.(localClass).generator.Generate(gctx, p.rows, f.options)
			if err != nil {
				var optErr *localgen.OptionError
				if errors.As(err, &optErr) {
					return services.NewValidationError("field %q: %v", f.name, err)
				}
				return err
			}
			cache.set(f.name, values)
			return nil
		})
	}

	for _, g := range p.groups {
		eg.Go(func() error {
			return s.runGroup(gctx, g, p.rows, cache)
		})
	}

	return eg.Wait()
}

func (s *Service) runGroup(ctx context.Context, g batchGroup, rows int, cache *requestCache) error {
	needed := g.needed(rows)

	tmpl, err := s.templates.Resolve(ctx, g.key, shared.Principal(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("could not resolve template for group, leaving fields empty",
			zap.String("type", g.key),
			zap.Strings("fields", g.fields),
			zap.Error(err))
		return nil
	}

	prompt := templates.Hydrate(tmpl.Body, templates.Vars{Count: needed})
	res, err := s.text.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	items := splitItems(res.Text)
	if len(items) < needed {
		s.logger.Warn("provider returned fewer items than requested",
			zap.String("type", g.key),
			zap.Int("expected", needed),
			zap.Int("got", len(items)))
	}

	for i, chunk := range partition(items, len(g.fields), rows) {
		cache.set(g.fields[i], chunk)
	}
	return nil
}

// assembleRows makes one provider call per row for the coherent questions
func (s *Service) assembleRows(ctx context.Context, p *plan, fields []plannedField, cache *requestCache, body string) ([]map[string]any, error) {
	rows := make([]map[string]any, p.rows)

	questions := make([]Question, 0, len(p.coherent))
	for _, f := range p.coherent {
		questions = append(questions, f.question)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.RowConcurrency)

	for i := 0; i < p.rows; i++ {
		eg.Go(func() error {
			row := make(map[string]any, len(p.order))
			entries := make([]contextEntry, 0, len(fields))
			seen := make(map[string]bool, len(fields))
			for _, f := range fields {
				if _, ok := f.class.(coherentClass); ok {
					continue
				}
				v := cache.value(f.name, i)
				row[f.name] = v
				if !seen[f.name] {
					seen[f.name] = true
					entries = append(entries, contextEntry{name: f.name, value: v})
				}
			}

			if len(questions) > 0 {
				res, err := s.text.Generate(gctx, coherentPrompt(body, entries, questions))
				if err != nil {
					return err
				}
				answers, err := extractAnswers(res.Text)
				if err != nil {
					s.logger.Warn("could not parse coherent answers, filling sentinel",
						zap.Int("row", i),
						zap.Error(err))
					for _, q := range questions {
						row[q.Name] = ParseErrorSentinel
					}
				} else {
					for k, v := range answers {
						row[k] = v
					}
				}
			}

			rows[i] = row
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// columnsWithExtras appends keys the provider added beyond the declared columns
func columnsWithExtras(declared []string, rows []map[string]any) []string {
	known := make(map[string]bool, len(declared))
	for _, name := range declared {
		known[name] = true
	}
	columns := append([]string(nil), declared...)
	for _, row := range rows {
		var extras []string
		for k := range row {
			if !known[k] {
				known[k] = true
				extras = append(extras, k)
			}
		}
		sort.Strings(extras)
		columns = append(columns, extras...)
	}
	return columns
}

func (s *Service) finish(ctx context.Context, mode string, rows int, start time.Time) {
	s.metrics.RecordGeneration(mode, rows)

	principal := shared.Principal(ctx)
	if s.counters != nil && principal != "" {
		if err := s.counters.Increment(ctx, principal, rows); err != nil {
			s.logger.Warn("failed to update usage counters", zap.String("principal", principal), zap.Error(err))
		}
	}

	s.logger.Info("generation completed",
		zap.String("mode", mode),
		zap.Int("rows", rows),
		zap.String("principal", principal),
		zap.String("request_id", shared.RequestID(ctx)),
		zap.Duration("elapsed", time.Since(start)))
}

// Preview caps rows for a JSON preview and runs a dataset generation
func (s *Service) Preview(ctx context.Context, req DataSetRequest, limit int) (*Table, error) {
	if limit > 0 && req.Rows > limit {
		return nil, services.NewValidationError("preview is limited to %d rows", limit)
	}
	return s.GenerateDataSet(ctx, req)
}

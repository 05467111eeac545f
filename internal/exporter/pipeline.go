// Package exporter runs bulk extraction over a page cache and loads the
// results into the PostgreSQL lexicon.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lennon-c/de-wiktio/internal/domain"
	"github.com/lennon-c/de-wiktio/internal/entry"
	"github.com/lennon-c/de-wiktio/pkg/ctxutil"
)

// Repo is the subset of the lexicon repository the pipeline writes through.
type Repo interface {
	GetLexemeIDsByNormalizedTitles(ctx context.Context, titles []string) (map[string]uuid.UUID, error)
	BulkInsertLexemes(ctx context.Context, lexemes []domain.Lexeme) (int, error)
	BulkInsertWordForms(ctx context.Context, forms []domain.WordFormRecord) (int, error)
	BulkInsertPOSTags(ctx context.Context, tags []domain.POSTag) (int, error)
	BulkInsertInflections(ctx context.Context, values []domain.InflectionValue) (int, error)
}

// Config holds the pipeline knobs.
type Config struct {
	// DryRun extracts and counts but skips all database writes.
	DryRun bool

	// Limit caps the number of titles processed; 0 means all.
	Limit int

	// WithFlexion resolves companion Flexion pages for verbs and
	// adjectives. Off by default: it forces the namespace-108 cache
	// to load as well.
	WithFlexion bool

	// BatchSize is the number of rows per insert batch.
	BatchSize int
}

// Summary is the outcome of one export run.
type Summary struct {
	Titles      int
	ByStatus    map[string]int
	Lexemes     int
	Existing    int
	WordForms   int
	POSTags     int
	Inflections int
	Duration    time.Duration
}

// Pipeline extracts every cached entry page and bulk-inserts the results.
type Pipeline struct {
	log    *slog.Logger
	repo   Repo
	loader *entry.Loader
	caches entry.CacheRegistry
	cfg    Config
}

// NewPipeline creates a new export pipeline.
func NewPipeline(log *slog.Logger, repo Repo, loader *entry.Loader, caches entry.CacheRegistry, cfg Config) *Pipeline {
	return &Pipeline{
		log:    log.With(slog.String("component", "exporter")),
		repo:   repo,
		loader: loader,
		caches: caches,
		cfg:    cfg,
	}
}

// Run extracts all entry pages from the namespace-0 cache in sorted title
// order and writes the lexicon tables. The first database or cache error
// aborts the run; per-page corpus variance is recorded as status counts.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	runID := uuid.New()
	ctx = ctxutil.WithRunID(ctx, runID)
	log := p.log.With(slog.String("run_id", runID.String()))

	start := time.Now()
	summary := Summary{ByStatus: make(map[string]int)}

	pages, err := p.caches.Pages(ctx, entry.NamespaceEntry)
	if err != nil {
		return summary, fmt.Errorf("load entry cache: %w", err)
	}

	titles := make([]string, 0, len(pages))
	for title := range pages {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	if p.cfg.Limit > 0 && len(titles) > p.cfg.Limit {
		titles = titles[:p.cfg.Limit]
	}
	summary.Titles = len(titles)

	log.Info("starting export",
		slog.Int("titles", len(titles)),
		slog.Bool("dry_run", p.cfg.DryRun),
		slog.Bool("with_flexion", p.cfg.WithFlexion),
	)

	var (
		lexemes     []domain.Lexeme
		forms       []domain.WordFormRecord
		tags        []domain.POSTag
		inflections []domain.InflectionValue
	)

	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("export interrupted: %w", err)
		}

		e, err := p.loader.EntryFromDump(ctx, title)
		if err != nil {
			return summary, fmt.Errorf("load entry %q: %w", title, err)
		}

		lex, eForms, eTags, eValues, err := p.extract(ctx, e)
		if err != nil {
			return summary, fmt.Errorf("extract %q: %w", title, err)
		}

		summary.ByStatus[lex.Status]++
		lexemes = append(lexemes, lex)
		forms = append(forms, eForms...)
		tags = append(tags, eTags...)
		inflections = append(inflections, eValues...)
	}

	if !p.cfg.DryRun {
		if err := p.insertAll(ctx, &summary, lexemes, forms, tags, inflections); err != nil {
			return summary, err
		}
	}

	summary.Duration = time.Since(start)
	log.Info("export completed",
		slog.Int("titles", summary.Titles),
		slog.Int("lexemes", summary.Lexemes),
		slog.Int("existing", summary.Existing),
		slog.Int("word_forms", summary.WordForms),
		slog.Int("pos_tags", summary.POSTags),
		slog.Int("inflections", summary.Inflections),
		slog.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// extract converts one Entry into flat lexicon records. Companion lookup
// errors abort extraction; everything else is captured as statuses.
func (p *Pipeline) extract(ctx context.Context, e *entry.Entry) (domain.Lexeme, []domain.WordFormRecord, []domain.POSTag, []domain.InflectionValue, error) {
	now := time.Now()

	var (
		forms  []domain.WordFormRecord
		tags   []domain.POSTag
		values []domain.InflectionValue
	)

	for i, wf := range e.WordForms() {
		rec := domain.WordFormRecord{
			ID:       uuid.New(),
			LexemeID: uuid.Nil, // filled below once the lexeme exists
			Position: i,
		}
		if h := wf.Heading(); h != nil {
			rec.Heading = h.Title
		}

		for j, tag := range wf.POSTags() {
			tags = append(tags, domain.POSTag{WordFormID: rec.ID, Tag: tag, Position: j})
		}

		for ti, table := range wf.OverviewTables(false) {
			values = append(values, paramValues(rec.ID, domain.SourceOverview, ti, table)...)
		}

		if p.cfg.WithFlexion {
			ext, err := wf.ExtendedInflections(ctx)
			if err != nil {
				return domain.Lexeme{}, nil, nil, nil, fmt.Errorf("companion lookup: %w", err)
			}
			for ti, table := range ext {
				values = append(values, paramValues(rec.ID, domain.SourceFlexion, ti, table)...)
			}
		}

		rec.Status = wf.Status().String()
		forms = append(forms, rec)
	}

	lex := domain.Lexeme{
		ID:              uuid.New(),
		Title:           e.Title(),
		TitleNormalized: domain.NormalizeTitle(e.Title()),
		Status:          e.Status().String(),
		CreatedAt:       now,
	}
	for i := range forms {
		forms[i].LexemeID = lex.ID
	}

	return lex, forms, tags, values, nil
}

func (p *Pipeline) insertAll(ctx context.Context, s *Summary, lexemes []domain.Lexeme, forms []domain.WordFormRecord, tags []domain.POSTag, values []domain.InflectionValue) error {
	lexemes, forms, tags, values, existing, err := p.dropExisting(ctx, lexemes, forms, tags, values)
	if err != nil {
		return err
	}
	s.Existing = existing

	s.Lexemes, err = batchProcess(lexemes, p.cfg.BatchSize, func(batch []domain.Lexeme) (int, error) {
		return p.repo.BulkInsertLexemes(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("insert lexemes: %w", err)
	}

	s.WordForms, err = batchProcess(forms, p.cfg.BatchSize, func(batch []domain.WordFormRecord) (int, error) {
		return p.repo.BulkInsertWordForms(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("insert word forms: %w", err)
	}

	s.POSTags, err = batchProcess(tags, p.cfg.BatchSize, func(batch []domain.POSTag) (int, error) {
		return p.repo.BulkInsertPOSTags(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("insert pos tags: %w", err)
	}

	s.Inflections, err = batchProcess(values, p.cfg.BatchSize, func(batch []domain.InflectionValue) (int, error) {
		return p.repo.BulkInsertInflections(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("insert inflections: %w", err)
	}

	return nil
}

// dropExisting removes lexemes an earlier run already wrote, together with
// their word forms, tags, and inflection values. The conflicting rows carry
// freshly minted IDs that never reach the database, so keeping their
// children would violate the lexicon foreign keys. Returns the pruned
// slices and the number of lexemes dropped.
func (p *Pipeline) dropExisting(ctx context.Context, lexemes []domain.Lexeme, forms []domain.WordFormRecord, tags []domain.POSTag, values []domain.InflectionValue) ([]domain.Lexeme, []domain.WordFormRecord, []domain.POSTag, []domain.InflectionValue, int, error) {
	if len(lexemes) == 0 {
		return lexemes, forms, tags, values, 0, nil
	}

	existing, err := p.lookupExisting(ctx, lexemes)
	if err != nil {
		return nil, nil, nil, nil, 0, fmt.Errorf("lookup existing lexemes: %w", err)
	}
	if len(existing) == 0 {
		return lexemes, forms, tags, values, 0, nil
	}

	skipLexeme := make(map[uuid.UUID]bool)
	keptLexemes := lexemes[:0]
	for _, l := range lexemes {
		if _, ok := existing[l.TitleNormalized]; ok {
			skipLexeme[l.ID] = true
			continue
		}
		keptLexemes = append(keptLexemes, l)
	}

	skipForm := make(map[uuid.UUID]bool)
	keptForms := forms[:0]
	for _, f := range forms {
		if skipLexeme[f.LexemeID] {
			skipForm[f.ID] = true
			continue
		}
		keptForms = append(keptForms, f)
	}

	keptTags := tags[:0]
	for _, t := range tags {
		if !skipForm[t.WordFormID] {
			keptTags = append(keptTags, t)
		}
	}

	keptValues := values[:0]
	for _, v := range values {
		if !skipForm[v.WordFormID] {
			keptValues = append(keptValues, v)
		}
	}

	return keptLexemes, keptForms, keptTags, keptValues, len(skipLexeme), nil
}

// lookupExisting resolves the already-stored normalized titles in chunks.
func (p *Pipeline) lookupExisting(ctx context.Context, lexemes []domain.Lexeme) (map[string]uuid.UUID, error) {
	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	existing := make(map[string]uuid.UUID)
	for i := 0; i < len(lexemes); i += batchSize {
		end := min(i+batchSize, len(lexemes))
		titles := make([]string, 0, end-i)
		for _, l := range lexemes[i:end] {
			titles = append(titles, l.TitleNormalized)
		}
		chunk, err := p.repo.GetLexemeIDsByNormalizedTitles(ctx, titles)
		if err != nil {
			return nil, err
		}
		for title, id := range chunk {
			existing[title] = id
		}
	}
	return existing, nil
}

// paramValues flattens one parameter table into inflection value rows.
func paramValues(formID uuid.UUID, source domain.InflectionSource, tableIndex int, table entry.ParamMap) []domain.InflectionValue {
	out := make([]domain.InflectionValue, 0, table.Len())
	for pos, key := range table.Keys() {
		v, _ := table.Get(key)
		out = append(out, domain.InflectionValue{
			ID:         uuid.New(),
			WordFormID: formID,
			Source:     source,
			TableIndex: tableIndex,
			Name:       key,
			Value:      v,
			Position:   pos,
		})
	}
	return out
}

// batchProcess splits items into fixed-size chunks and sums the results of fn.
func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Package pipeline runs the batch linkage pass: load the inputs, build the
// entity index, score and attach every candidate record, rank forecast
// candidates, deconflict sightings, and write the results.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-linkage-engine/config"
	"github.com/gcbaptista/go-linkage-engine/index"
	"github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/internal/export"
	"github.com/gcbaptista/go-linkage-engine/internal/geo"
	"github.com/gcbaptista/go-linkage-engine/internal/keywords"
	"github.com/gcbaptista/go-linkage-engine/internal/linking"
	"github.com/gcbaptista/go-linkage-engine/internal/loader"
	"github.com/gcbaptista/go-linkage-engine/internal/logging"
	"github.com/gcbaptista/go-linkage-engine/internal/persistence"
	"github.com/gcbaptista/go-linkage-engine/internal/scoring"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// SnapshotFile is the gob snapshot of the latest run inside the output directory.
const SnapshotFile = "run.gob"

// Stages lists the pipeline stages in execution order.
var Stages = []string{
	model.StageKeywords,
	model.StageEntities,
	model.StageResearch,
	model.StageSBIR,
	model.StageProjects,
	model.StageForecasts,
	model.StageDeconflict,
}

// ProgressFunc is told when a stage finishes.
type ProgressFunc func(current, total int, message string)

// Options tune a single run.
type Options struct {
	Label    string
	Progress ProgressFunc
	NoExport bool // compute only; write no files
}

// Pipeline runs linkage passes with fixed settings. A Pipeline holds no
// per-run state and may run concurrently.
type Pipeline struct {
	settings *config.Settings
}

// New returns a pipeline for validated settings.
func New(settings *config.Settings) *Pipeline {
	return &Pipeline{settings: settings}
}

// Settings returns the settings the pipeline runs with.
func (p *Pipeline) Settings() *config.Settings {
	return p.settings
}

// run carries the state of one pass.
type run struct {
	settings *config.Settings
	log      *zerolog.Logger
	result   *model.RunResult
	table    *keywords.Table
	entities *index.EntityIndex
	scorer   *scoring.Scorer
	forecast []model.Forecast
	done     int
	progress ProgressFunc
}

// Run executes every stage. Missing inputs skip their stage and are recorded
// in the manifest; the returned error is reserved for cancellation and for
// failures writing the outputs.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*model.RunResult, error) {
	result := &model.RunResult{
		ID:        uuid.New().String(),
		Label:     opts.Label,
		StartedAt: time.Now().UTC(),
		Headers:   make(map[string][]string),
	}
	ctx = logging.WithRun(ctx, result.ID)

	r := &run{
		settings: p.settings,
		log:      logging.FromContext(ctx),
		result:   result,
		progress: opts.Progress,
	}
	r.log.Info().Str("label", opts.Label).Msg("Pipeline run started")

	steps := []func(context.Context) error{
		r.loadKeywords,
		r.loadEntities,
		r.scoreResearch,
		r.scoreAwards,
		r.scoreProjects,
		r.linkForecasts,
		r.deconflict,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step(ctx); err != nil {
			return nil, err
		}
	}

	result.CompletedAt = time.Now().UTC()
	result.Manifest.RunID = result.ID
	result.Manifest.Label = result.Label
	result.Manifest.Generated = result.CompletedAt.Truncate(time.Second)
	if result.Manifest.Files == nil {
		result.Manifest.Files = []string{}
	}

	if !opts.NoExport {
		if err := p.Export(result); err != nil {
			return nil, err
		}
	}

	r.log.Info().
		Dur("duration", result.CompletedAt.Sub(result.StartedAt)).
		Int("research", len(result.Research)).
		Int("sbir", len(result.Awards)).
		Int("projects", len(result.Projects)).
		Int("candidates", len(result.Candidates)).
		Int("matches", len(result.Matches)).
		Msg("Pipeline run completed")
	return result, nil
}

// Export writes every table, the manifest and, when enabled, the run snapshot.
func (p *Pipeline) Export(result *model.RunResult) error {
	out := p.settings.Output
	w, err := export.NewWriter(out.Dir, export.Options{
		JSON:           out.JSON,
		JSONLimit:      out.JSONLimit,
		ManifestFormat: out.ManifestFormat,
	})
	if err != nil {
		return err
	}

	for _, name := range exportedTables(&result.Manifest) {
		sheet, err := export.SheetFor(result, name)
		if err != nil {
			return err
		}
		if err := w.WriteSheet(sheet); err != nil {
			return err
		}
	}
	if _, err := w.WriteManifest(&result.Manifest); err != nil {
		return err
	}

	if out.Snapshot {
		if err := persistence.SaveGob(filepath.Join(out.Dir, SnapshotFile), result); err != nil {
			return fmt.Errorf("saving run snapshot: %w", err)
		}
	}
	return nil
}

// exportedTables returns the tables whose producing stage ran.
func exportedTables(m *model.Manifest) []string {
	producers := []struct{ table, stage string }{
		{model.TableEntities, model.StageEntities},
		{model.TableResearch, model.StageResearch},
		{model.TableSBIR, model.StageSBIR},
		{model.TableProjects, model.StageProjects},
		{model.TableCandidates, model.StageForecasts},
		{model.TableMatches, model.StageDeconflict},
	}
	var tables []string
	for _, p := range producers {
		if report, ok := m.Stage(p.stage); ok && report.Status == model.StageStatusRan {
			tables = append(tables, p.table)
		}
	}
	return tables
}

// finish records a stage report and reports progress.
func (r *run) finish(report model.StageReport) {
	r.result.Manifest.Stages = append(r.result.Manifest.Stages, report)
	r.done++

	event := r.log.Info()
	if report.Status == model.StageStatusSkipped {
		event = r.log.Warn().Str("reason", report.Reason)
	}
	event.Str("stage", report.Stage).
		Str("status", string(report.Status)).
		Int("rows", report.Rows).
		Int("excluded", report.Excluded).
		Int("output", report.Output).
		Msg("Stage finished")

	if r.progress != nil {
		r.progress(r.done, len(Stages), fmt.Sprintf("%s %s", report.Stage, report.Status))
	}
}

// skip turns a load error into a skipped stage. Missing inputs are expected;
// anything else is logged as an error but still only skips the stage.
func (r *run) skip(stage, input string, err error) {
	reason := err.Error()
	if !stderrors.Is(err, errors.ErrMissingInput) {
		r.log.Error().Err(err).Str("stage", stage).Msg("Input could not be read")
	}
	r.finish(model.StageReport{Stage: stage, Status: model.StageStatusSkipped, Reason: reason, Input: input})
}

func (r *run) loadKeywords(_ context.Context) error {
	k := r.settings.Keywords
	table, problems := keywords.Load(k.File, k.WeightsFile)
	r.table = table
	r.scorer = scoring.NewScorer(r.settings.Scoring, table)

	report := model.StageReport{Stage: model.StageKeywords, Status: model.StageStatusRan, Input: k.File, Rows: table.Len(), Output: table.Len()}
	for _, err := range problems {
		r.log.Warn().Err(err).Msg("Keyword input unavailable")
		var missing *errors.MissingInputError
		if stderrors.As(err, &missing) && missing.Path == k.File {
			report.Status = model.StageStatusSkipped
		}
		if report.Reason != "" {
			report.Reason += "; "
		}
		report.Reason += err.Error()
	}
	r.finish(report)
	return nil
}

func (r *run) loadEntities(_ context.Context) error {
	path := r.settings.Inputs.Entities
	roster, meta, err := loader.LoadEntities(path)
	if err != nil {
		r.entities = index.NewEntityIndex()
		r.skip(model.StageEntities, path, err)
		return nil
	}

	r.entities = index.BuildEntityIndex(roster)
	r.result.Entities = r.entities.Roster
	collisions := r.entities.Collisions()
	for _, c := range collisions {
		r.log.Warn().
			Str("canonical_name", c.CanonicalName).
			Str("kept_entity_id", c.KeptEntityID).
			Str("shadowed_entity_id", c.ShadowedEntityID).
			Msg("Entity name collision; first entity wins")
	}
	r.result.Manifest.Collisions = collisions

	r.finish(model.StageReport{
		Stage:    model.StageEntities,
		Status:   model.StageStatusRan,
		Input:    path,
		Rows:     len(roster) + meta.Malformed,
		Excluded: len(roster) - r.entities.Len() + meta.Malformed,
		Output:   r.entities.Len(),
	})
	return nil
}

func (r *run) scoreResearch(ctx context.Context) error {
	path := r.settings.Inputs.Research
	records, meta, err := loader.LoadResearch(path)
	if err != nil {
		r.skip(model.StageResearch, path, err)
		return nil
	}
	err = r.forEach(ctx, len(records), func(i int) error {
		rec := &records[i]
		rec.MatchEntityID = linking.AttachResearch(r.entities, rec)
		return r.applyScore(model.SourceKindResearch, rec, &rec.Linkage)
	})
	if err != nil {
		return err
	}
	r.result.Research = records
	r.result.Headers[model.TableResearch] = meta.Header
	r.finish(model.StageReport{Stage: model.StageResearch, Status: model.StageStatusRan, Input: path, Rows: len(records) + meta.Malformed, Excluded: meta.Malformed, Output: len(records)})
	return nil
}

func (r *run) scoreAwards(ctx context.Context) error {
	path := r.settings.Inputs.SBIR
	records, meta, err := loader.LoadAwards(path)
	if err != nil {
		r.skip(model.StageSBIR, path, err)
		return nil
	}
	err = r.forEach(ctx, len(records), func(i int) error {
		rec := &records[i]
		rec.MatchEntityID = linking.AttachAward(r.entities, rec)
		return r.applyScore(model.SourceKindSBIR, rec, &rec.Linkage)
	})
	if err != nil {
		return err
	}
	r.result.Awards = records
	r.result.Headers[model.TableSBIR] = meta.Header
	r.finish(model.StageReport{Stage: model.StageSBIR, Status: model.StageStatusRan, Input: path, Rows: len(records) + meta.Malformed, Excluded: meta.Malformed, Output: len(records)})
	return nil
}

func (r *run) scoreProjects(ctx context.Context) error {
	path := r.settings.Inputs.Projects
	records, meta, err := loader.LoadProjects(path)
	if err != nil {
		r.skip(model.StageProjects, path, err)
		return nil
	}
	minLen := r.settings.Linking.MinTitleEntityLen
	err = r.forEach(ctx, len(records), func(i int) error {
		rec := &records[i]
		rec.MatchEntityID = linking.AttachByTitle(r.entities, rec.ProjectTitle, minLen)
		return r.applyScore(model.SourceKindProject, rec, &rec.Linkage)
	})
	if err != nil {
		return err
	}
	r.result.Projects = records
	r.result.Headers[model.TableProjects] = meta.Header
	r.finish(model.StageReport{Stage: model.StageProjects, Status: model.StageStatusRan, Input: path, Rows: len(records) + meta.Malformed, Excluded: meta.Malformed, Output: len(records)})
	return nil
}

func (r *run) linkForecasts(ctx context.Context) error {
	path := r.settings.Inputs.Forecast
	forecasts, meta, err := loader.LoadForecasts(path)
	if err != nil {
		r.skip(model.StageForecasts, path, err)
		return nil
	}
	if len(r.result.Awards) == 0 {
		r.finish(model.StageReport{Stage: model.StageForecasts, Status: model.StageStatusSkipped, Reason: "no sbir awards to rank", Input: path, Rows: len(forecasts) + meta.Malformed, Excluded: meta.Malformed})
		return nil
	}

	rows, err := linking.LinkForecasts(ctx, forecasts, r.result.Awards, r.settings.Linking.TopK, r.settings.Pipeline.Workers)
	if err != nil {
		return err
	}
	r.result.Candidates = rows
	r.finish(model.StageReport{Stage: model.StageForecasts, Status: model.StageStatusRan, Input: path, Rows: len(forecasts) + meta.Malformed, Excluded: meta.Malformed, Output: len(rows)})
	return nil
}

func (r *run) deconflict(ctx context.Context) error {
	in := r.settings.Inputs
	sightings, sightingMeta, err := loader.LoadSightings(in.Sightings)
	if err != nil {
		r.skip(model.StageDeconflict, in.Sightings, err)
		return nil
	}
	confounds, confoundMeta, err := loader.LoadConfounds(in.Confounds)
	if err != nil {
		r.skip(model.StageDeconflict, in.Confounds, err)
		return nil
	}

	excluded := sightingMeta.Malformed + confoundMeta.Malformed
	for _, s := range sightings {
		if !s.Matchable() {
			excluded++
		}
	}
	for _, c := range confounds {
		if !c.Matchable() {
			excluded++
		}
	}

	matches, err := geo.Deconflict(ctx, sightings, confounds, geo.Options{
		MaxDistanceMeters: r.settings.Deconflict.MaxDistanceMeters,
		MaxTimeDelta:      r.settings.Deconflict.MaxTimeDelta,
		Workers:           r.settings.Pipeline.Workers,
	})
	if err != nil {
		return err
	}
	r.result.Matches = matches
	r.finish(model.StageReport{
		Stage:    model.StageDeconflict,
		Status:   model.StageStatusRan,
		Input:    in.Sightings,
		Rows:     len(sightings) + len(confounds) + sightingMeta.Malformed + confoundMeta.Malformed,
		Excluded: excluded,
		Output:   len(matches),
	})
	return nil
}

func (r *run) applyScore(kind model.SourceKind, rec model.Scorable, link *model.Linkage) error {
	res, err := r.scorer.Score(kind, rec)
	if err != nil {
		return err
	}
	link.CredibilityScore = res.Score
	link.TopKeywordHits = res.TopHits
	return nil
}

// forEach runs fn for 0..n-1 with at most Pipeline.Workers goroutines. Each
// call must write only to its own index.
func (r *run) forEach(ctx context.Context, n int, fn func(i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.settings.Pipeline.Workers))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	return g.Wait()
}

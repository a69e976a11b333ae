package engine

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gcbaptista/go-linkage-engine/internal/logging"
	"github.com/gcbaptista/go-linkage-engine/internal/persistence"
	"github.com/gcbaptista/go-linkage-engine/internal/pipeline"
	"github.com/gcbaptista/go-linkage-engine/model"
	"github.com/gcbaptista/go-linkage-engine/store"
)

// ResultsFile holds every retained run so serve can restore them all.
const ResultsFile = "results.gob"

// SnapshotPath returns where the pipeline writes the run snapshot.
func (e *Engine) SnapshotPath() string {
	return filepath.Join(e.settings.Output.Dir, pipeline.SnapshotFile)
}

// ResultsPath returns where the engine persists its result store.
func (e *Engine) ResultsPath() string {
	return filepath.Join(e.settings.Output.Dir, ResultsFile)
}

// LoadSnapshot reads a run snapshot written by the pipeline and stores it.
func (e *Engine) LoadSnapshot(path string) (*model.RunResult, error) {
	result, err := readSnapshot(path)
	if err != nil {
		return nil, err
	}
	e.storeRun(result)
	return result, nil
}

func readSnapshot(path string) (*model.RunResult, error) {
	var result model.RunResult
	if err := persistence.LoadGob(path, &result); err != nil {
		return nil, fmt.Errorf("failed to load run snapshot %s: %w", path, err)
	}
	if result.ID == "" {
		return nil, fmt.Errorf("run snapshot %s has no run ID", path)
	}
	if result.Headers == nil {
		result.Headers = make(map[string][]string)
	}
	return &result, nil
}

// saveResults writes the result store next to the run snapshot. Failures are
// logged; the runs stay available in memory.
func (e *Engine) saveResults() {
	if !e.settings.Output.Snapshot {
		return
	}
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	if err := persistence.SaveGob(e.ResultsPath(), e.results); err != nil {
		logging.Default().Warn().Err(err).Str("path", e.ResultsPath()).Msg("Failed to persist result store")
	}
}

// loadSnapshotFromDisk restores the persisted result store, then adds the
// pipeline's run snapshot when that run is not already among them. A
// `linkage run` between two serve sessions only writes the run snapshot.
func (e *Engine) loadSnapshotFromDisk() {
	log := logging.Default()

	restored := store.NewResultStore(store.DefaultMaxRuns)
	switch err := persistence.LoadGob(e.ResultsPath(), restored); {
	case err == nil:
		e.results = restored
		log.Info().Int("runs", restored.Len()).Str("path", e.ResultsPath()).Msg("Restored stored runs")
	case stderrors.Is(err, os.ErrNotExist):
	default:
		log.Warn().Err(err).Msg("Ignoring unreadable result store")
	}

	path := e.SnapshotPath()
	result, err := readSnapshot(path)
	switch {
	case err == nil:
		if _, getErr := e.results.Get(result.ID); getErr == nil {
			return
		}
		e.storeRun(result)
		log.Info().Str("run_id", result.ID).Str("path", path).Msg("Loaded run snapshot")
	case stderrors.Is(err, os.ErrNotExist):
		if e.results.Len() == 0 {
			log.Info().Str("path", path).Msg("No run snapshot found; starting empty")
		}
	default:
		log.Warn().Err(err).Msg("Ignoring unreadable run snapshot")
	}
}

package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// LatestRunID is the alias that resolves to the most recently stored run.
const LatestRunID = "latest"

// DefaultMaxRuns bounds how many runs a ResultStore keeps in memory.
const DefaultMaxRuns = 20

// ResultStore keeps completed runs in memory, oldest first. When full, the
// oldest run is evicted.
type ResultStore struct {
	Mu      sync.RWMutex
	Runs    map[string]*model.RunResult
	Order   []string // Run IDs in insertion order
	MaxRuns int
}

// gobResultStoreData is the Gob form of a ResultStore, without the mutex.
type gobResultStoreData struct {
	Runs    map[string]*model.RunResult
	Order   []string
	MaxRuns int
}

// NewResultStore returns an empty store holding at most maxRuns runs.
func NewResultStore(maxRuns int) *ResultStore {
	if maxRuns <= 0 {
		maxRuns = DefaultMaxRuns
	}
	return &ResultStore{
		Runs:    make(map[string]*model.RunResult),
		MaxRuns: maxRuns,
	}
}

// Put stores a run, replacing any run with the same ID, and makes it the latest.
func (rs *ResultStore) Put(run *model.RunResult) {
	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	if _, exists := rs.Runs[run.ID]; exists {
		rs.removeFromOrder(run.ID)
	}
	rs.Runs[run.ID] = run
	rs.Order = append(rs.Order, run.ID)

	for len(rs.Order) > rs.MaxRuns {
		oldest := rs.Order[0]
		rs.Order = rs.Order[1:]
		delete(rs.Runs, oldest)
	}
}

// Get returns the run with the given ID, or the latest run for "latest".
func (rs *ResultStore) Get(runID string) (*model.RunResult, error) {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	if runID == LatestRunID {
		if len(rs.Order) == 0 {
			return nil, errors.NewRunNotFoundError(runID)
		}
		runID = rs.Order[len(rs.Order)-1]
	}
	run, ok := rs.Runs[runID]
	if !ok {
		return nil, errors.NewRunNotFoundError(runID)
	}
	return run, nil
}

// Latest returns the most recently stored run, if any.
func (rs *ResultStore) Latest() (*model.RunResult, bool) {
	run, err := rs.Get(LatestRunID)
	return run, err == nil
}

// List returns run summaries, newest first.
func (rs *ResultStore) List() []model.RunSummary {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	out := make([]model.RunSummary, 0, len(rs.Order))
	for i := len(rs.Order) - 1; i >= 0; i-- {
		out = append(out, rs.Runs[rs.Order[i]].Summary())
	}
	return out
}

// Delete removes a run.
func (rs *ResultStore) Delete(runID string) error {
	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	if _, ok := rs.Runs[runID]; !ok {
		return errors.NewRunNotFoundError(runID)
	}
	delete(rs.Runs, runID)
	rs.removeFromOrder(runID)
	return nil
}

// Len returns the number of stored runs.
func (rs *ResultStore) Len() int {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()
	return len(rs.Order)
}

func (rs *ResultStore) removeFromOrder(runID string) {
	for i, id := range rs.Order {
		if id == runID {
			rs.Order = append(rs.Order[:i], rs.Order[i+1:]...)
			return
		}
	}
}

// GobEncode implements the gob.GobEncoder interface for ResultStore.
func (rs *ResultStore) GobEncode() ([]byte, error) {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	var buf bytes.Buffer
	data := gobResultStoreData{Runs: rs.Runs, Order: rs.Order, MaxRuns: rs.MaxRuns}
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("failed to gob encode result store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for ResultStore.
func (rs *ResultStore) GobDecode(data []byte) error {
	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	var decoded gobResultStoreData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to gob decode result store data: %w", err)
	}
	rs.Runs = decoded.Runs
	if rs.Runs == nil {
		rs.Runs = make(map[string]*model.RunResult)
	}
	rs.Order = decoded.Order
	rs.MaxRuns = decoded.MaxRuns
	if rs.MaxRuns <= 0 {
		rs.MaxRuns = DefaultMaxRuns
	}
	return nil
}

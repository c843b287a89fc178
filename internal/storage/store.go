package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/replisim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	tableFile    = "trajectory.db"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
)

var openTable = NewSQLiteSink

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dim        int                `json:"dim"`
	Dt         float64            `json:"dt"`
	Cutoff     float64            `json:"cutoff"`
	Integrator string             `json:"integrator"`
	Fitness    string             `json:"fitness"`
	Noise      string             `json:"noise"`
	EpochLen   int                `json:"epoch_len"`
	SaveEvery  int                `json:"save_every"`
	Epochs     int                `json:"epochs"`
	Status     string             `json:"status"`
	Error      string             `json:"error,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Run is an open run directory. Epochs are written as they complete and
// the metadata is rewritten by Finish.
type Run struct {
	meta  RunMetadata
	dir   string
	table *SQLiteSink
}

// Create allocates a run directory for meta. With withTable set, every epoch is
// also written to a SQLite table inside the run directory. On failure the
// directory is removed again.
func (s *Store) Create(meta RunMetadata, withTable bool) (*Run, error) {
	if meta.Name == "" {
		meta.Name = "run"
	}
	meta.ID = fmt.Sprintf("%s_%s", meta.Name, uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	meta.Status = StatusRunning

	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	r := &Run{meta: meta, dir: dir}
	if withTable {
		table, err := openTable(filepath.Join(dir, tableFile))
		if err != nil {
			os.RemoveAll(dir)
			return nil, err
		}
		if err := table.WriteRun(meta); err != nil {
			table.Close()
			os.RemoveAll(dir)
			return nil, err
		}
		r.table = table
	}

	if err := r.writeMetadata(); err != nil {
		r.Close()
		os.RemoveAll(dir)
		return nil, err
	}
	return r, nil
}

func (r *Run) ID() string  { return r.meta.ID }
func (r *Run) Dir() string { return r.dir }

// WriteEpoch stores one epoch's trajectory as epoch_<k>.csv with a time
// column followed by one column per component.
func (r *Run) WriteEpoch(epoch int, traj *dynamo.Trajectory) error {
	path := filepath.Join(r.dir, epochFile(epoch))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ExportCSV(f, traj); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.meta.Epochs = max(r.meta.Epochs, epoch)

	if r.table != nil {
		if err := r.table.WriteEpoch(r.meta.ID, epoch, traj); err != nil {
			return err
		}
	}
	return f.Close()
}

// Finish records the final metrics and outcome. runErr == nil marks the run completed.
func (r *Run) Finish(metrics map[string]float64, runErr error) error {
	r.meta.Metrics = metrics
	r.meta.Status = StatusCompleted
	if runErr != nil {
		r.meta.Status = StatusAborted
		r.meta.Error = runErr.Error()
	}
	err := r.writeMetadata()
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return err
}

func (r *Run) Close() error {
	if r.table == nil {
		return nil
	}
	err := r.table.Close()
	r.table = nil
	return err
}

func (r *Run) writeMetadata() error {
	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.meta); err != nil {
		return err
	}
	return f.Close()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadEpoch reads back the trajectory of one epoch.
func (s *Store) LoadEpoch(runID string, epoch int) (*dynamo.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, epochFile(epoch)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// TablePath returns the SQLite table of a run, or an error if the run was stored without one.
func (s *Store) TablePath(runID string) (string, error) {
	path := filepath.Join(s.baseDir, runID, tableFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("run %s has no trajectory table", runID)
		}
		return "", err
	}
	return path, nil
}

// OpenTable opens the SQLite table of a run for reading.
func (s *Store) OpenTable(runID string) (*SQLiteSink, error) {
	path, err := s.TablePath(runID)
	if err != nil {
		return nil, err
	}
	return openTable(path)
}

func epochFile(epoch int) string {
	return fmt.Sprintf("epoch_%d.csv", epoch)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func csvHeader(dim int) []string {
	header := []string{"time"}
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	return header
}

func readCSV(f io.Reader) (*dynamo.Trajectory, error) {
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return dynamo.NewTrajectory(0), nil
	}

	traj := dynamo.NewTrajectory(len(records) - 1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		state := make(dynamo.State, len(record)-1)
		for j := 1; j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+1, j, err)
			}
			state[j-1] = v
		}
		traj.Samples = append(traj.Samples, dynamo.Sample{Time: t, State: state})
	}
	return traj, nil
}

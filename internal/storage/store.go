// Package storage keeps finished runs on disk, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/drape/internal/experiment"
)

const (
	metaFile   = "metadata.json"
	framesFile = "frames.csv"
)

// ErrRunNotFound is returned for a run id with no metadata on disk.
var ErrRunNotFound = errors.New("storage: run not found")

// ErrInvalidRunID is returned for an id that is not a single plain
// directory name under the store.
var ErrInvalidRunID = errors.New("storage: invalid run id")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Frames      int                `json:"frames"`
	Garments    int                `json:"garments"`
	Particles   int                `json:"particles"`
	Constraints int                `json:"constraints"`
	Recovered   int                `json:"recovered"`
	WallMS      float64            `json:"wall_ms"`
	Session     SessionSummary     `json:"session"`
	Params      map[string]float64 `json:"params,omitempty"`
	Tags        map[string]string  `json:"tags,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

type SessionSummary struct {
	Frames     int     `json:"frames"`
	OverBudget int     `json:"over_budget"`
	AvgFrameMS float64 `json:"avg_frame_ms"`
	MaxFrameMS float64 `json:"max_frame_ms"`
	FPS        float64 `json:"fps"`
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// Save writes the result under a fresh run id and returns the id. params
// records the tunable values of the config the run used; tags are free-form.
func (s *Store) Save(res *experiment.Result, cfg experiment.Config, tags map[string]string) (string, error) {
	if res == nil {
		return "", fmt.Errorf("storage: nil result")
	}
	if err := s.Init(); err != nil {
		return "", err
	}
	now := time.Now()
	runID, runDir, err := s.newRunDir(res.Scenario, now)
	if err != nil {
		return "", err
	}

	params := make(map[string]float64)
	for _, name := range experiment.ParamNames() {
		if v, err := cfg.Param(name); err == nil {
			params[name] = v
		}
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    res.Scenario,
		Timestamp:   now,
		Seed:        res.Seed,
		Dt:          res.Dt,
		Duration:    res.Duration,
		Frames:      len(res.Frames),
		Garments:    res.Garments,
		Particles:   res.Particles,
		Constraints: res.Constraints,
		Recovered:   res.Recovered,
		WallMS:      ms(res.Wall),
		Session: SessionSummary{
			Frames:     res.Session.Frames,
			OverBudget: res.Session.OverBudget,
			AvgFrameMS: ms(res.Session.AvgFrameTime()),
			MaxFrameMS: ms(res.Session.MaxFrameTime),
			FPS:        res.Session.FPS,
		},
		Params:  params,
		Tags:    tags,
		Metrics: res.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metaFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteCSV(f, res.Frames); err != nil {
		return "", err
	}
	return runID, f.Close()
}

// newRunDir creates a directory that no other run owns.
func (s *Store) newRunDir(scenario string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", safeName(scenario), now.Unix())
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
}

func checkID(runID string) error {
	if runID == "" || safeName(runID) != runID {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return nil
}

// safeName keeps letters, digits, '-' and '_' so the id is a plain
// directory name.
func safeName(s string) string {
	b := []byte(s)
	for i, c := range b {
		ok := c == '-' || c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !ok {
			b[i] = '_'
		}
	}
	if len(b) == 0 {
		return "run"
	}
	return string(b)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// Latest returns the most recent run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[len(runs)-1], nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if err := checkID(runID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]experiment.Frame, error) {
	if err := checkID(runID); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []experiment.Frame{}, nil
	}

	frames := make([]experiment.Frame, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		fr, err := experiment.FrameFromValues(vals)
		if err != nil {
			return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
		}
		frames = append(frames, fr)
	}
	return frames, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

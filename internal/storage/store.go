package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// Store keeps one directory per named run under a base directory. A run
// directory holds trajectory part files, a checkpoint, and metadata.json.
// Run directories are keyed by output name, not timestamp, so sequential
// sessions extending the same trajectory land in the same directory.
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
	Name        string    `json:"name"`
	System      string    `json:"system"`
	Updated     time.Time `json:"updated"`
	Seed        int64     `json:"seed"`
	Dt          float64   `json:"dt"`
	Steps       int64     `json:"steps"`
	SimTime     float64   `json:"sim_time"`
	Interrupted bool      `json:"interrupted"`
	StopReason  string    `json:"stop_reason,omitempty"`
}

func (s *Store) RunDir(name string) string {
	return filepath.Join(s.baseDir, name)
}

// CheckpointPath is where the engine reads and writes continuation state for
// the named run.
func (s *Store) CheckpointPath(name string) string {
	return filepath.Join(s.RunDir(name), "state.cpt")
}

func (s *Store) WriteMetadata(meta *RunMetadata) error {
	runDir := s.RunDir(meta.Name)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) LoadMetadata(name string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(name), "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
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
		meta, err := s.LoadMetadata(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

// Parts returns the trajectory part files of a run in part order.
func (s *Store) Parts(name string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.RunDir(name), "traj.part*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadEnergies reads the energy series of a run across all its parts.
func (s *Store) LoadEnergies(name string) (times, epot, ekin []float64, err error) {
	parts, err := s.Parts(name)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(parts) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no trajectory parts", name)
	}

	for _, part := range parts {
		f, err := os.Open(part)
		if err != nil {
			return nil, nil, nil, err
		}

		r := csv.NewReader(f)
		records, err := r.ReadAll()
		f.Close()
		if err != nil {
			return nil, nil, nil, err
		}

		for i, record := range records {
			if i == 0 || len(record) < 4 {
				continue
			}
			t, err := strconv.ParseFloat(record[1], 64)
			if err != nil {
				continue
			}
			ep, _ := strconv.ParseFloat(record[2], 64)
			ek, _ := strconv.ParseFloat(record[3], 64)
			times = append(times, t)
			epot = append(epot, ep)
			ekin = append(ekin, ek)
		}
	}

	return times, epot, ekin, nil
}

package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var frameHeader = []string{"step", "time", "epot", "ekin"}

// TrajectoryWriter appends frames to one part file of a run. In append mode
// it continues the latest existing part; otherwise it starts a fresh
// traj.partNNNN.csv, leaving earlier parts untouched.
type TrajectoryWriter struct {
	path string
	file *os.File
	w    *csv.Writer
}

// OpenTrajectory opens the trajectory of the named run for writing.
func (s *Store) OpenTrajectory(name string, appendMode bool) (*TrajectoryWriter, error) {
	runDir := s.RunDir(name)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}

	parts, err := s.Parts(name)
	if err != nil {
		return nil, err
	}

	if appendMode && len(parts) > 0 {
		path := parts[len(parts)-1]
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		return &TrajectoryWriter{path: path, file: f, w: csv.NewWriter(f)}, nil
	}

	path := filepath.Join(runDir, fmt.Sprintf("traj.part%04d.csv", len(parts)+1))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}

	tw := &TrajectoryWriter{path: path, file: f, w: csv.NewWriter(f)}
	if err := tw.w.Write(frameHeader); err != nil {
		f.Close()
		return nil, err
	}
	return tw, nil
}

func (t *TrajectoryWriter) Path() string { return t.path }

func (t *TrajectoryWriter) WriteFrame(step int64, simTime, epot, ekin float64) error {
	return t.w.Write([]string{
		strconv.FormatInt(step, 10),
		strconv.FormatFloat(simTime, 'f', 6, 64),
		strconv.FormatFloat(epot, 'g', -1, 64),
		strconv.FormatFloat(ekin, 'g', -1, 64),
	})
}

func (t *TrajectoryWriter) Flush() error {
	t.w.Flush()
	return t.w.Error()
}

// Close flushes and closes the part file. Closing twice is safe.
func (t *TrajectoryWriter) Close() error {
	if t.file == nil {
		return nil
	}
	t.w.Flush()
	flushErr := t.w.Error()
	closeErr := t.file.Close()
	t.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

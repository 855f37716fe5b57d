package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

type checkpointData struct {
	System     string    `json:"system"`
	Step       int64     `json:"step"`
	Time       float64   `json:"time"`
	Positions  []float64 `json:"positions"`
	Velocities []float64 `json:"velocities"`
}

// readCheckpoint returns nil without error when no checkpoint exists.
func readCheckpoint(path string) (*checkpointData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cpt checkpointData
	if err := json.Unmarshal(data, &cpt); err != nil {
		return nil, fmt.Errorf("corrupt checkpoint %s: %w", path, err)
	}
	if len(cpt.Positions) != len(cpt.Velocities) {
		return nil, fmt.Errorf("corrupt checkpoint %s: %d positions, %d velocities",
			path, len(cpt.Positions), len(cpt.Velocities))
	}
	return &cpt, nil
}

// writeCheckpoint writes atomically via rename so an interrupted write never
// leaves a truncated checkpoint behind.
func writeCheckpoint(path string, cpt *checkpointData) error {
	data, err := json.Marshal(cpt)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

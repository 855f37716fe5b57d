package analysis

import (
	"math"
	"testing"
)

func TestEnergyEmpty(t *testing.T) {
	stats := Energy(nil)
	if stats.Samples != 0 {
		t.Errorf("expected 0 samples, got %d", stats.Samples)
	}
}

func TestEnergyConstantSeries(t *testing.T) {
	stats := Energy([]float64{2.0, 2.0, 2.0})
	if stats.RelDrift != 0 {
		t.Errorf("expected zero drift, got %f", stats.RelDrift)
	}
	if stats.MaxDeviation != 0 {
		t.Errorf("expected zero deviation, got %f", stats.MaxDeviation)
	}
	if stats.Mean != 2.0 {
		t.Errorf("expected mean 2.0, got %f", stats.Mean)
	}
}

func TestEnergyDrift(t *testing.T) {
	stats := Energy([]float64{1.0, 1.05, 0.9, 1.1})
	if math.Abs(stats.RelDrift-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %f", stats.RelDrift)
	}
	// Largest excursion is 0.9, a 10% deviation; 1.1 ties it.
	if math.Abs(stats.MaxDeviation-0.1) > 1e-12 {
		t.Errorf("expected max deviation 0.1, got %f", stats.MaxDeviation)
	}
	if stats.Samples != 4 {
		t.Errorf("expected 4 samples, got %d", stats.Samples)
	}
}

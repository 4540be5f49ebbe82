package model

import (
	"encoding/json"
	"time"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one evolve run from start to finish.
type RunRecord struct {
	VersionedRecord
	ID               string    `json:"id"`
	FitnessMode      string    `json:"fitness_mode"`
	PopulationLength int       `json:"population_length"`
	ChromosomeLength int       `json:"chromosome_length"`
	Seed             int64     `json:"seed"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at,omitzero"`
	Generations      int       `json:"generations"`
	FinalBest        float64   `json:"final_best"`
	Error            string    `json:"error,omitempty"`
}

// GenerationDiagnostics summarizes the population at the end of a generation.
type GenerationDiagnostics struct {
	Generation    int     `json:"generation"`
	Population    int     `json:"population"`
	Active        int     `json:"active"`
	BestFitness   float64 `json:"best_fitness"`
	MeanFitness   float64 `json:"mean_fitness"`
	MedianFitness float64 `json:"median_fitness"`
	WorstFitness  float64 `json:"worst_fitness"`
	StdDevFitness float64 `json:"std_dev_fitness"`
	BestVariance  float64 `json:"best_variance"`
	MeanAge       float64 `json:"mean_age"`
}

// GenerationRecord is one persisted generation of a run.
type GenerationRecord struct {
	VersionedRecord
	RunID       string                `json:"run_id"`
	Diagnostics GenerationDiagnostics `json:"diagnostics"`
	BestID      string                `json:"best_id,omitempty"`
	BestGenes   json.RawMessage       `json:"best_genes,omitempty"`
	RecordedAt  time.Time             `json:"recorded_at"`
}

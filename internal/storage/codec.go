package storage

import (
	"encoding/json"
	"errors"

	"asyncga/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeGeneration(g model.GenerationRecord) ([]byte, error) {
	return json.Marshal(g)
}

func DecodeGeneration(data []byte) (model.GenerationRecord, error) {
	var record model.GenerationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.GenerationRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.GenerationRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

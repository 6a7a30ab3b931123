package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/grapes/pkg/model"
)

// Snapshot is a complete catalog dump.
type Snapshot struct {
	Modules       []model.Module       `json:"modules,omitempty"`
	Artifacts     []model.Artifact     `json:"artifacts,omitempty"`
	Licenses      []model.License      `json:"licenses,omitempty"`
	Organizations []model.Organization `json:"organizations,omitempty"`
	Products      []model.Product      `json:"products,omitempty"`
}

// ReadSnapshot decodes a catalog dump from r. Unknown fields are rejected
// so that typos in hand-written snapshots surface early.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// WriteSnapshot encodes s as indented JSON.
func WriteSnapshot(s *Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a catalog dump from path.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// SaveSnapshot writes s to path through a temporary file in the same
// directory, so readers never observe a partial dump.
func SaveSnapshot(s *Snapshot, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteSnapshot(s, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

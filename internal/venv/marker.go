// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// markerSchemaVersion is bumped when Marker gains incompatible fields.
const markerSchemaVersion = 1

type (
	// Marker is the readiness record written after the last setup step.
	// Its presence is what makes an environment ready; its content is
	// informational (status output, staleness warnings).
	Marker struct {
		Version       int        `toml:"version"`
		CreatedAt     time.Time  `toml:"created_at"`
		Interpreter   string     `toml:"interpreter"`
		PythonVersion string     `toml:"python_version,omitempty"`
		Editable      bool       `toml:"editable"`
		Requirements  FileDigest `toml:"requirements"`
		Project       FileDigest `toml:"project"`
	}

	// FileDigest records a file's content hash at provisioning time.
	// An empty SHA256 means the file did not exist.
	FileDigest struct {
		Path   string `toml:"path"`
		SHA256 string `toml:"sha256,omitempty"`
	}
)

// newMarker captures the manifest digests for layout.
func newMarker(layout Layout, interpreter string, version PythonVersion, editable bool, now time.Time) (*Marker, error) {
	reqs, err := digestFile(layout.Requirements)
	if err != nil {
		return nil, err
	}
	project, err := digestFile(layout.ProjectFile)
	if err != nil {
		return nil, err
	}

	m := &Marker{
		Version:      markerSchemaVersion,
		CreatedAt:    now.UTC().Truncate(time.Second),
		Interpreter:  interpreter,
		Editable:     editable,
		Requirements: reqs,
		Project:      project,
	}
	if !version.IsZero() {
		m.PythonVersion = version.String()
	}
	return m, nil
}

// ReadMarker loads the marker at path.
func ReadMarker(path string) (*Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read readiness marker: %w", err)
	}
	var m Marker
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse readiness marker %s: %w", path, err)
	}
	return &m, nil
}

// WriteMarker stores m at path. The file appears atomically so a crash never
// leaves a half-written marker that would count as ready.
func WriteMarker(path string, m *Marker) (err error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode readiness marker: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".marker-*")
	if err != nil {
		return fmt.Errorf("failed to create readiness marker: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name()) // Best-effort cleanup of the temp file
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write readiness marker: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close readiness marker: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to install readiness marker: %w", err)
	}
	return nil
}

// StaleFiles lists the manifests whose content changed since the marker was
// written. A stale environment is still used; callers only warn.
func (m *Marker) StaleFiles(layout Layout) ([]string, error) {
	var stale []string
	for _, d := range []FileDigest{
		{Path: layout.Requirements, SHA256: m.Requirements.SHA256},
		{Path: layout.ProjectFile, SHA256: m.Project.SHA256},
	} {
		current, err := calculateFileHash(d.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", d.Path, err)
		}
		if current != d.SHA256 {
			stale = append(stale, d.Path)
		}
	}
	return stale, nil
}

func digestFile(path string) (FileDigest, error) {
	sum, err := calculateFileHash(path)
	if err != nil {
		return FileDigest{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return FileDigest{Path: path, SHA256: sum}, nil
}

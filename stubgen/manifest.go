package stubgen

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/callgen/errors"
)

// ManifestFileName is written at the root of the output directory.
const ManifestFileName = "callgen.manifest.toml"

// Manifest records what generated the files in an output directory, so
// check can tell a stale descriptor from hand edits.
type Manifest struct {
	GeneratorVersion string          `toml:"generator_version"`
	Interfaces       []ManifestEntry `toml:"interfaces"`
}

// ManifestEntry is one generated interface.
type ManifestEntry struct {
	Name        string   `toml:"name"`
	Source      string   `toml:"source"`
	Fingerprint string   `toml:"fingerprint"`
	Methods     []string `toml:"methods"`
	Files       []string `toml:"files"`
}

// Upsert replaces the entry with the same name or adds it, keeping
// entries sorted by name.
func (m *Manifest) Upsert(e ManifestEntry) {
	for i := range m.Interfaces {
		if m.Interfaces[i].Name == e.Name {
			m.Interfaces[i] = e
			return
		}
	}
	m.Interfaces = append(m.Interfaces, e)
	sort.Slice(m.Interfaces, func(i, j int) bool { return m.Interfaces[i].Name < m.Interfaces[j].Name })
}

// Entry returns the entry for the named interface.
func (m *Manifest) Entry(name string) (ManifestEntry, bool) {
	for _, e := range m.Interfaces {
		if e.Name == name {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// ReadManifest loads the manifest in dir. A missing manifest is empty.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if os.IsNotExist(err) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	return &m, nil
}

// WriteManifest writes m into dir.
func WriteManifest(dir string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write manifest")
	}
	return nil
}

package testsupport

import (
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"quarry/internal/catalog"
	"quarry/internal/logging"
)

// WriteManifest marshals the entries to path as a quarry manifest.
func WriteManifest(t *testing.T, path string, entries []catalog.Artifact) {
	t.Helper()

	doc := struct {
		Artifacts []catalog.Artifact `yaml:"artifacts"`
	}{Artifacts: entries}

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

// LoadCatalog writes entries to path and loads them back through the real
// parser, failing the test on any error.
func LoadCatalog(t *testing.T, path string, entries []catalog.Artifact) *catalog.Catalog {
	t.Helper()

	WriteManifest(t, path, entries)
	cat, err := catalog.Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	return cat
}

package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"quarry/internal/logging"
)

var (
	// ErrManifest indicates the manifest exists but is unparsable or
	// structurally invalid. Never retried.
	ErrManifest = errors.New("catalog: invalid manifest")

	// ErrUnknownArtifact indicates a caller referenced a name the manifest
	// does not declare. Never retried.
	ErrUnknownArtifact = errors.New("catalog: unknown artifact")
)

// Artifact describes one binary artifact the deployment requires. Loaded from
// the manifest and immutable afterwards.
type Artifact struct {
	Name         string `yaml:"name"`
	Kind         string `yaml:"kind"`
	SourceURL    string `yaml:"url"`
	Filename     string `yaml:"filename"`
	SizeBytes    int64  `yaml:"size"`
	Checksum     string `yaml:"checksum"`
	ChecksumType string `yaml:"checksum_type"`
	Destination  string `yaml:"destination"`
	Version      string `yaml:"version"`
	Description  string `yaml:"description"`
}

type manifest struct {
	Artifacts []Artifact `yaml:"artifacts"`
}

// Catalog holds the declared artifact set, keyed by name.
type Catalog struct {
	artifacts map[string]Artifact
	order     []string
}

// Load reads the manifest at path. A missing file yields an empty catalog and
// a warning on logger; any other failure is wrapped in ErrManifest.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	log := logging.NewComponentLogger(logger, "catalog")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("manifest not found, catalog is empty",
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldEventType, "manifest_missing"),
			)
			return &Catalog{artifacts: map[string]Artifact{}}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrManifest, path, err)
	}

	var doc manifest
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrManifest, path, err)
	}
	if len(doc.Artifacts) == 0 {
		return nil, fmt.Errorf("%w: %s declares no artifacts", ErrManifest, path)
	}

	cat := &Catalog{artifacts: make(map[string]Artifact, len(doc.Artifacts))}
	for i, entry := range doc.Artifacts {
		normalized, err := normalizeEntry(entry, i)
		if err != nil {
			return nil, err
		}
		if _, dup := cat.artifacts[normalized.Name]; dup {
			// The manifest is the single statement of what this deployment
			// needs; a silently re-bound name would fetch the wrong version.
			return nil, fmt.Errorf("%w: duplicate artifact name %q", ErrManifest, normalized.Name)
		}
		cat.artifacts[normalized.Name] = normalized
		cat.order = append(cat.order, normalized.Name)
	}

	log.Info("manifest loaded",
		logging.String(logging.FieldPath, path),
		logging.Int("artifacts", len(cat.artifacts)),
	)
	return cat, nil
}

func normalizeEntry(entry Artifact, index int) (Artifact, error) {
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Kind = strings.TrimSpace(entry.Kind)
	entry.SourceURL = strings.TrimSpace(entry.SourceURL)
	entry.Filename = strings.TrimSpace(entry.Filename)
	entry.Checksum = strings.TrimSpace(entry.Checksum)
	entry.Destination = strings.Trim(strings.TrimSpace(entry.Destination), "/")

	switch {
	case entry.Name == "":
		return Artifact{}, fmt.Errorf("%w: entry %d has no name", ErrManifest, index)
	case entry.SourceURL == "":
		return Artifact{}, fmt.Errorf("%w: artifact %q has no url", ErrManifest, entry.Name)
	case entry.Filename == "":
		return Artifact{}, fmt.Errorf("%w: artifact %q has no filename", ErrManifest, entry.Name)
	case entry.SizeBytes < 0:
		return Artifact{}, fmt.Errorf("%w: artifact %q has negative size", ErrManifest, entry.Name)
	}

	entry.ChecksumType = strings.ToLower(strings.TrimSpace(entry.ChecksumType))
	if entry.ChecksumType == "" {
		entry.ChecksumType = "md5"
	}
	return entry, nil
}

// Describe returns the descriptor for name.
func (c *Catalog) Describe(name string) (Artifact, error) {
	artifact, ok := c.artifacts[name]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownArtifact, name)
	}
	return artifact, nil
}

// Has reports whether name is declared in the manifest.
func (c *Catalog) Has(name string) bool {
	_, ok := c.artifacts[name]
	return ok
}

// Len returns the number of declared artifacts.
func (c *Catalog) Len() int {
	return len(c.artifacts)
}

// All returns every descriptor in manifest order.
func (c *Catalog) All() []Artifact {
	out := make([]Artifact, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.artifacts[name])
	}
	return out
}

// Names returns the declared artifact names, sorted.
func (c *Catalog) Names() []string {
	names := append([]string(nil), c.order...)
	sort.Strings(names)
	return names
}

// HasChecksum reports whether the artifact declares a digest to verify against.
func (a Artifact) HasChecksum() bool {
	return a.Checksum != ""
}

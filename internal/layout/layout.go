// Package layout maps artifact descriptors to concrete destination paths
// under the install root.
//
// Resolution is pure: an explicit destination in the manifest wins, otherwise
// the artifact kind selects a conventional subdirectory. The package never
// creates directories; callers do that lazily right before a write.
package layout

import (
	"path/filepath"

	"quarry/internal/catalog"
)

// kindDirs is the kind to subdirectory convention for artifacts without an
// explicit destination.
var kindDirs = map[string]string{
	"speech-model":  "models/speech",
	"lipsync-model": "models/lipsync",
	"checkpoint":    "models/checkpoints",
	"vae":           "models/vae",
	"lora":          "models/loras",
	"controlnet":    "models/controlnet",
}

// fallbackDir receives artifacts whose kind has no convention entry.
const fallbackDir = "models"

// Resolve returns the absolute final path for an artifact under installRoot.
func Resolve(artifact catalog.Artifact, installRoot string) string {
	if artifact.Destination != "" {
		return filepath.Join(installRoot, filepath.FromSlash(artifact.Destination), artifact.Filename)
	}
	dir, ok := kindDirs[artifact.Kind]
	if !ok {
		dir = fallbackDir
	}
	return filepath.Join(installRoot, filepath.FromSlash(dir), artifact.Filename)
}

// KnownKind reports whether kind has a convention directory.
func KnownKind(kind string) bool {
	_, ok := kindDirs[kind]
	return ok
}

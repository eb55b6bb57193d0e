package acquire

import (
	"errors"
	"io/fs"
	"os"

	"quarry/internal/catalog"
	"quarry/internal/layout"
	"quarry/internal/logging"
)

// Status derives the install state of every catalogued artifact. Only the
// final destination path counts: a staging file alone is still absent.
func (m *Manager) Status() map[string]State {
	states := make(map[string]State, m.catalog.Len())
	for _, artifact := range m.catalog.All() {
		dest := layout.Resolve(artifact, m.cfg.Paths.InstallRoot)
		state, err := m.deriveState(artifact, dest)
		if err != nil {
			m.logger.Warn("state derivation degraded",
				logging.String(logging.FieldArtifact, artifact.Name),
				logging.Error(err),
			)
		}
		states[artifact.Name] = state
	}
	return states
}

// StateOf derives the install state of a single artifact.
func (m *Manager) StateOf(name string) (State, error) {
	artifact, err := m.catalog.Describe(name)
	if err != nil {
		return "", err
	}
	state, _ := m.deriveState(artifact, layout.Resolve(artifact, m.cfg.Paths.InstallRoot))
	return state, nil
}

// deriveState inspects the filesystem for one artifact. The error return is
// non-nil when verification itself was impossible (unreadable file, unknown
// digest algorithm under the fail-closed policy); the artifact is then
// reported corrupted rather than silently trusted.
func (m *Manager) deriveState(artifact catalog.Artifact, dest string) (State, error) {
	info, err := os.Stat(dest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StateAbsent, nil
		}
		return StateCorrupted, err
	}
	if info.IsDir() {
		return StateCorrupted, errors.New("destination path is a directory")
	}

	if !artifact.HasChecksum() {
		return StateInstalled, nil
	}

	ok, err := m.verifier.Verify(dest, artifact.Checksum, artifact.ChecksumType)
	if err != nil {
		return StateCorrupted, err
	}
	if !ok {
		return StateCorrupted, nil
	}
	return StateInstalled, nil
}

// Audit verifies every catalogued artifact's content digest. Artifacts
// without a declared digest report true because their validity cannot be
// disproved; the distinction is logged.
func (m *Manager) Audit() map[string]bool {
	results := make(map[string]bool, m.catalog.Len())
	for _, artifact := range m.catalog.All() {
		dest := layout.Resolve(artifact, m.cfg.Paths.InstallRoot)
		log := m.logger.With(logging.String(logging.FieldArtifact, artifact.Name))

		if _, err := os.Stat(dest); err != nil {
			results[artifact.Name] = false
			log.Warn("artifact missing during audit", logging.String(logging.FieldPath, dest))
			continue
		}

		if !artifact.HasChecksum() {
			results[artifact.Name] = true
			log.Info("artifact present, no digest to audit",
				logging.String(logging.FieldEventType, "audit_unverifiable"),
			)
			continue
		}

		ok, err := m.verifier.Verify(dest, artifact.Checksum, artifact.ChecksumType)
		if err != nil {
			results[artifact.Name] = false
			log.Warn("audit verification failed", logging.Error(err))
			continue
		}
		results[artifact.Name] = ok
		if !ok {
			log.Warn("artifact corrupted",
				logging.String(logging.FieldPath, dest),
				logging.String(logging.FieldEventType, "audit_corrupted"),
			)
		}
	}
	return results
}

// Missing returns the names of artifacts with no file at their destination,
// in manifest order.
func (m *Manager) Missing() []string {
	return m.namesInState(StateAbsent)
}

// Corrupted returns the names of artifacts whose file fails verification, in
// manifest order.
func (m *Manager) Corrupted() []string {
	return m.namesInState(StateCorrupted)
}

func (m *Manager) namesInState(want State) []string {
	states := m.Status()
	var names []string
	for _, artifact := range m.catalog.All() {
		if states[artifact.Name] == want {
			names = append(names, artifact.Name)
		}
	}
	return names
}

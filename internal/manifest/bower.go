// Package manifest keeps the project-level bower.json in step with the
// library version installed by a direct archive sync.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"libsync/internal/logger"
)

// Bower mirrors the installed library version into a bower.json file as
// devDependencies.<Dependency> = "<Repo>#<version>".
type Bower struct {
	Path       string // bower.json path
	Dependency string // dependency key, e.g. "ionic"
	Repo       string // owner/repo, e.g. "driftyco/ionic-bower"
}

// NewBower creates a Bower updater for the manifest at path.
func NewBower(path, dependency, repo string) *Bower {
	return &Bower{Path: path, Dependency: dependency, Repo: repo}
}

// SetVersion rewrites the dependency entry for version, creating a minimal
// manifest when none exists. Other keys are preserved.
func (b *Bower) SetVersion(version string) error {
	data, err := b.read()
	if err != nil {
		return err
	}

	devDeps, ok := data["devDependencies"].(map[string]any)
	if !ok {
		devDeps = map[string]any{}
	}
	devDeps[b.Dependency] = b.Repo + "#" + version
	data["devDependencies"] = devDeps

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", b.Path, err)
	}
	if err := os.WriteFile(b.Path, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("saving %s: %w", b.Path, err)
	}

	logger.Debug("[DEBUG] Set %s to %s#%s in %s\n", b.Dependency, b.Repo, version, b.Path)
	return nil
}

func (b *Bower) read() (map[string]any, error) {
	raw, err := os.ReadFile(b.Path)
	if os.IsNotExist(err) {
		return map[string]any{"name": "HelloIonic", "private": "true"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.Path, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", b.Path, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

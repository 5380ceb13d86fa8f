package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/deltaneutral/dnfvault/pkg/errors"
)

// HookFileExtensions lists the supported hook file extensions.
var HookFileExtensions = map[string]bool{
	".tengo": true,
}

// LoadHooksFromDir loads hook scripts from <dir>/hooks. Missing directories
// are not an error; hooks are strictly optional.
func LoadHooksFromDir(manager Manager, dir string) error {
	hooksDir := filepath.Join(dir, "hooks")
	if _, err := os.Stat(hooksDir); err != nil {
		return nil
	}

	entries, err := os.ReadDir(hooksDir)
	if err != nil {
		return errors.Wrapf(err, "failed to read hooks directory %s", hooksDir)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if _, ok := HookFileExtensions[ext]; !ok {
			continue // Skip unsupported file types
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), ext))
		switch hookType {
		case PostDownload, PostSync:
			// Valid hook type
		default:
			continue // Skip unknown hook types
		}

		hookPath := filepath.Join(hooksDir, entry.Name())
		content, err := os.ReadFile(hookPath)
		if err != nil {
			return errors.Wrapf(err, "error reading hook file %s", hookPath)
		}

		if err := manager.AddHook(Hook{
			Type:    hookType,
			Content: string(content),
		}); err != nil {
			return errors.Wrapf(err, "error adding hook %s", hookType)
		}
	}

	return nil
}

package settings

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FileStore is a Store backed by a flat YAML document mapping property keys
// to scalars or sequences:
//
//	sonar.auth.github.enabled: true
//	sonar.auth.github.clientId.secured: abc123
//	sonar.auth.github.organizations:
//	  - example0
//	  - example1
//
// The file is re-read whenever its modification time changes, so edits are
// picked up without restarting the host. If a reload fails the previously
// loaded values stay in effect.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	values  map[string]string
	modTime time.Time
}

// NewFileStore loads path and returns a FileStore. A nil logger uses slog.Default().
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fs := &FileStore{path: path, logger: logger}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat settings file: %w", err)
	}
	values, err := readYAMLSettings(path)
	if err != nil {
		return nil, err
	}
	fs.values = values
	fs.modTime = info.ModTime()
	return fs, nil
}

// Get implements Store.
func (f *FileStore) Get(key string) (string, bool) {
	f.reloadIfChanged()

	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *FileStore) reloadIfChanged() {
	info, err := os.Stat(f.path)
	if err != nil {
		f.logger.Warn("Settings file not readable, keeping previous values", "path", f.path, "error", err)
		return
	}

	f.mu.RLock()
	unchanged := info.ModTime().Equal(f.modTime)
	f.mu.RUnlock()
	if unchanged {
		return
	}

	values, err := readYAMLSettings(f.path)
	if err != nil {
		f.logger.Warn("Failed to reload settings file, keeping previous values", "path", f.path, "error", err)
		return
	}

	f.mu.Lock()
	f.values = values
	f.modTime = info.ModTime()
	f.mu.Unlock()
	f.logger.Debug("Reloaded settings file", "path", f.path, "keys", len(values))
}

func readYAMLSettings(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-provided configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	values := make(map[string]string, len(raw))
	for key, node := range raw {
		v, err := nodeToValue(&node)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", key, err)
		}
		values[key] = v
	}
	return values, nil
}

// nodeToValue flattens a YAML node into the Store string representation.
func nodeToValue(node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return "", nil
		}
		return node.Value, nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("sequence entries must be scalars (line %d)", item.Line)
			}
			items = append(items, item.Value)
		}
		return strings.Join(items, ","), nil
	default:
		return "", fmt.Errorf("unsupported YAML node kind %s (line %d)", nodeKindName(node.Kind), node.Line)
	}
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return strconv.Itoa(int(kind))
	}
}

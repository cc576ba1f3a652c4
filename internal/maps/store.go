package maps

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const fileSuffix = ".map.json"

// DirStore loads every *.map.json file in a directory at construction time
// and serves lookups from memory. Configs are read-only after load.
type DirStore struct {
	configs map[string]*Config
}

func NewDirStore(dir string, log *zap.Logger) (*DirStore, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read maps dir: %w", err)
	}

	configs := make(map[string]*Config)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), fileSuffix)
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read map %q: %w", name, err)
		}
		cfg := &Config{}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse map %q: %w", name, err)
		}
		configs[name] = cfg
		log.Info("loaded map", zap.String("map", name), zap.Int("teams", len(cfg.Teams)))
	}
	return &DirStore{configs: configs}, nil
}

func (s *DirStore) Lookup(name string) (*Config, bool) {
	cfg, ok := s.configs[name]
	return cfg, ok
}

func (s *DirStore) ListNames() []string {
	names := make([]string, 0, len(s.configs))
	for name := range s.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StaticStore serves a fixed set of configs. Used by tests.
type StaticStore map[string]*Config

func (s StaticStore) Lookup(name string) (*Config, bool) {
	cfg, ok := s[name]
	return cfg, ok
}

func (s StaticStore) ListNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

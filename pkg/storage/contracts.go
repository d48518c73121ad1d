package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/observability"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// FileContractStore reads versioned contract sets from the local
// filesystem. Layout: one directory per version under the root, holding
// one YAML file per contract definition.
//
//	<root>/1.2.0/echo.yaml
//	<root>/1.2.0/reverse.yaml
//	<root>/2.0.0/echo.yaml
//
// Loaded sets are cached per version. With watching enabled, filesystem
// changes under a version directory invalidate that version's cache
// entry.
type FileContractStore struct {
	rootDir string
	logger  *observability.Logger

	mu    sync.RWMutex
	cache map[string]map[string]*contract.Definition

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileContractStore creates a contract store rooted at rootDir,
// creating the directory if needed.
func NewFileContractStore(rootDir string, logger *observability.Logger) (*FileContractStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create contract root: %w", err)
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &FileContractStore{
		rootDir: rootDir,
		logger:  logger,
		cache:   make(map[string]map[string]*contract.Definition),
	}, nil
}

// Contracts loads the contract set for a version, from cache when
// available.
func (s *FileContractStore) Contracts(version semver.Version) (map[string]*contract.Definition, error) {
	key := version.String()

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	versionDir := filepath.Join(s.rootDir, key)
	entries, err := os.ReadDir(versionDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read version directory %s: %w", key, err)
	}

	set := make(map[string]*contract.Definition)
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(versionDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read contract file %s: %w", entry.Name(), err)
		}

		var def contract.Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse contract file %s: %w", entry.Name(), err)
		}
		if def.ID == "" {
			def.ID = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}
		set[def.ID] = &def
	}

	s.mu.Lock()
	s.cache[key] = set
	s.mu.Unlock()
	return set, nil
}

// SaveContracts writes a contract set as one YAML file per definition
// under the version's directory and refreshes the cache.
func (s *FileContractStore) SaveContracts(version semver.Version, set map[string]*contract.Definition) error {
	versionDir := filepath.Join(s.rootDir, version.String())
	if err := os.MkdirAll(versionDir, 0755); err != nil {
		return fmt.Errorf("failed to create version directory: %w", err)
	}

	for _, id := range contract.SortedIDs(set) {
		data, err := yaml.Marshal(set[id])
		if err != nil {
			return fmt.Errorf("failed to marshal contract %s: %w", id, err)
		}
		path := filepath.Join(versionDir, id+".yaml")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write contract file: %w", err)
		}
	}

	s.mu.Lock()
	s.cache[version.String()] = set
	s.mu.Unlock()
	return nil
}

// Versions lists every version directory under the root whose name parses
// as a semantic version, in ascending order. Non-version directories are
// skipped.
func (s *FileContractStore) Versions() ([]semver.Version, error) {
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract root: %w", err)
	}

	var versions []semver.Version
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, err := semver.Parse(entry.Name())
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	semver.Sort(versions)
	return versions, nil
}

// Watch starts invalidating cached versions when their files change on
// disk. Call Close to stop watching.
func (s *FileContractStore) Watch() error {
	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.rootDir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch contract root: %w", err)
	}
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to read contract root: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := watcher.Add(filepath.Join(s.rootDir, entry.Name())); err != nil {
				s.logger.WithError(err).WithField("dir", entry.Name()).Warn("failed to watch version directory")
			}
		}
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	go s.watchLoop()
	return nil
}

func (s *FileContractStore) watchLoop() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.WithError(err).Warn("contract watcher error")
		}
	}
}

func (s *FileContractStore) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(s.rootDir, event.Name)
	if err != nil {
		return
	}

	// A new version directory appears: start watching it.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := s.watcher.Add(event.Name); err != nil {
				s.logger.WithError(err).WithField("dir", rel).Warn("failed to watch version directory")
			}
			return
		}
	}

	version := rel
	if i := strings.IndexByte(rel, filepath.Separator); i >= 0 {
		version = rel[:i]
	}

	s.mu.Lock()
	if _, ok := s.cache[version]; ok {
		delete(s.cache, version)
		s.logger.WithField("version", version).Debug("contract cache invalidated")
	}
	s.mu.Unlock()
}

// Close stops the watcher, if running.
func (s *FileContractStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

package dependency

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ListStore holds the configured blocklist/allowlist loaded from disk and
// keeps them current via an fsnotify watch, so an operator can edit either
// file without restarting the server. Request-level blocklist/allowlist
// args (Request.Blocklist/Allowlist) are appended to these at call
// time — the files set the org-wide baseline, and a request can add names
// to either list for one call.
type ListStore struct {
	blocklistPath string
	allowlistPath string
	logger        *slog.Logger

	mu        sync.RWMutex
	blocklist []string
	allowlist []string
}

// NewListStore loads both files (a missing path is not an error; it
// simply contributes no entries) and returns a store ready to read.
func NewListStore(blocklistPath, allowlistPath string, logger *slog.Logger) *ListStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ListStore{blocklistPath: blocklistPath, allowlistPath: allowlistPath, logger: logger}
	s.Reload()
	return s
}

// Lists returns the currently loaded blocklist/allowlist.
func (s *ListStore) Lists() Lists {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Lists{Blocklist: s.blocklist, Allowlist: s.allowlist}
}

// Reload re-reads both list files from disk. Safe to call concurrently
// with Lists.
func (s *ListStore) Reload() {
	blocklist := readListFile(s.blocklistPath)
	allowlist := readListFile(s.allowlistPath)

	s.mu.Lock()
	s.blocklist = blocklist
	s.allowlist = allowlist
	s.mu.Unlock()

	s.logger.Info("dependency guard lists reloaded",
		"blocklist_entries", len(blocklist), "allowlist_entries", len(allowlist))
}

// readListFile reads one name per line, ignoring blank lines and lines
// starting with '#'. A missing or unreadable file yields an empty list.
func readListFile(path string) []string {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names
}

// Watch starts an fsnotify watch on both list files and reloads the store
// whenever either one changes, until ctx is done. Paths left empty are
// skipped. Returns immediately if neither path is configured.
func (s *ListStore) Watch(ctx ctxStopper) error {
	dirs := watchDirs(s.blocklistPath, s.allowlistPath)
	if len(dirs) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			s.logger.Warn("dependency guard list watch failed", "dir", dir, "error", err)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !s.watches(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					s.Reload()
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("dependency guard list watcher error", "error", werr)
			}
		}
	}()

	return nil
}

func (s *ListStore) watches(name string) bool {
	return name == s.blocklistPath || name == s.allowlistPath
}

// ctxStopper is the subset of context.Context Watch needs, kept narrow so
// this file doesn't import context solely for a Done() channel type.
type ctxStopper interface {
	Done() <-chan struct{}
}

// watchDirs returns the distinct parent directories of the given paths,
// skipping blanks — fsnotify watches directories, not bare file paths, so
// it still sees creates (e.g. the first time a blocklist is added).
func watchDirs(paths ...string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		dir := dirOf(p)
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

func dirOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "."
	}
	return path[:idx]
}

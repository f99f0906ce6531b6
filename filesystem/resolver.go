// Package filesystem resolves URL path segments to files and
// directories under a fixed serving root.
package filesystem

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrMissing   = fmt.Errorf("filesystem: target does not exist")
	ErrForbidden = fmt.Errorf("filesystem: path escapes serving root")
)

type TargetKind uint8

const (
	TargetFile TargetKind = iota
	TargetDir
)

// Target is what a relative path resolved to. For TargetFile the full
// content is already in memory; for TargetDir the immediate children
// are enumerated.
type Target struct {
	Kind        TargetKind
	Path        string
	Content     []byte
	ContentType string
	Entries     []Entry
}

// Entry is one directory child. Entries are generated per request and
// never cached.
type Entry struct {
	Name  string
	IsDir bool
}

// Resolver maps relative paths onto a canonicalized root directory.
// The root is fixed at construction and read-only for the lifetime of
// the server, so concurrent use needs no locking.
type Resolver struct {
	root string
	log  *slog.Logger
}

func NewResolver(root string, logger *slog.Logger) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: resolving root %s: %w", root, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("filesystem: serving root %s: %w", abs, err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("filesystem: serving root %s: %w", canonical, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filesystem: serving root %s is not a directory", canonical)
	}

	return &Resolver{root: canonical, log: logger}, nil
}

func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a relative path onto the root. The substring check is a
// fast early rejection; containment of the canonicalized path is the
// authoritative guard against symlinked or absolute-path escapes. No
// filesystem access happens before the substring check passes.
func (r *Resolver) Resolve(rel string) (*Target, error) {
	if strings.Contains(rel, "..") {
		return nil, ErrForbidden
	}

	joined := filepath.Join(r.root, filepath.FromSlash(rel))
	if !r.contains(joined) {
		return nil, ErrForbidden
	}

	info, err := os.Stat(joined)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("filesystem: stat %s: %w", joined, err)
	}

	canonical, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("filesystem: canonicalize %s: %w", joined, err)
	}
	if !r.contains(canonical) {
		return nil, ErrForbidden
	}

	if info.IsDir() {
		entries, err := r.list(canonical)
		if err != nil {
			return nil, err
		}
		return &Target{Kind: TargetDir, Path: canonical, Entries: entries}, nil
	}

	content, err := os.ReadFile(canonical)
	if err != nil {
		return nil, fmt.Errorf("filesystem: read %s: %w", canonical, err)
	}

	return &Target{
		Kind:        TargetFile,
		Path:        canonical,
		Content:     content,
		ContentType: ContentType(canonical),
	}, nil
}

func (r *Resolver) contains(path string) bool {
	return path == r.root || strings.HasPrefix(path, r.root+string(filepath.Separator))
}

// list enumerates immediate children only. Entries that cannot be
// stat'd are skipped; the listing is best-effort since the directory
// contents are not owned by this process.
func (r *Resolver) list(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("filesystem: list %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		info, err := dirEntry.Info()
		if err != nil {
			r.log.Debug("skipping unreadable entry", "dir", dir, "name", dirEntry.Name(), "error", err)
			continue
		}
		entries = append(entries, Entry{Name: info.Name(), IsDir: info.IsDir()})
	}

	return entries, nil
}

// Package loader reads template source from an ordered list of search
// directories and runs the comment transform over it before handing it to
// the host engine.
//
// The loader mirrors a framework template loader: a template is addressed by
// its path relative to a search directory, directories are tried in order,
// and a miss in every directory is ErrTemplateNotFound. Preprocessing is
// gated on the two config toggles (debug AND enabled) and must run on raw
// source, before any compiled-template caching the host engine maintains.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sean-reed/django-render-comments/internal/config"
	"github.com/sean-reed/django-render-comments/internal/logging"
	"github.com/sean-reed/django-render-comments/internal/preprocess"
)

// ErrTemplateNotFound is returned when no search directory contains the
// requested template.
var ErrTemplateNotFound = errors.New("template not found")

// Loader resolves template names against search directories and
// preprocesses their contents.
type Loader struct {
	dirs     []string
	exts     []string
	excludes []string
	enabled  bool // debug AND feature toggle, fixed at construction
	logger   logging.Logger
}

// New builds a loader from the configuration. The preprocessing gate is
// evaluated once here: both cfg.Debug and cfg.Enabled must hold.
func New(cfg *config.Config, logger logging.Logger) *Loader {
	return &Loader{
		dirs:     cfg.Templates.Dirs,
		exts:     cfg.Templates.Extensions,
		excludes: cfg.Templates.ExcludePatterns,
		enabled:  cfg.Debug && cfg.Enabled,
		logger:   logger.WithComponent("loader"),
	}
}

// Enabled reports whether loaded templates get their comments rewritten.
func (l *Loader) Enabled() bool {
	return l.enabled
}

// Get loads the named template from the first search directory containing
// it and returns the transformed source. The name is relative to a search
// directory; names escaping the search directories are rejected.
func (l *Loader) Get(ctx context.Context, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", fmt.Errorf("invalid template name %q: %w", name, err)
	}

	var tried []string
	for _, dir := range l.dirs {
		origin := filepath.Join(dir, filepath.FromSlash(name))
		contents, err := os.ReadFile(origin)
		if err != nil {
			if os.IsNotExist(err) {
				tried = append(tried, origin)
				continue
			}
			return "", fmt.Errorf("reading template %s: %w", origin, err)
		}

		l.logger.Debug(ctx, "template loaded", "origin", origin, "preprocess", l.enabled)
		return preprocess.Transform(string(contents), l.enabled), nil
	}

	return "", fmt.Errorf("%w: %s (tried %s)", ErrTemplateNotFound, name, strings.Join(tried, ", "))
}

// Walk visits every template under the search directories, calling fn with
// the search directory and the template's slash-separated name relative to
// it. Files are filtered by the configured extensions and exclude patterns.
// Missing search directories are skipped, matching loader behavior on Get.
func (l *Loader) Walk(ctx context.Context, fn func(dir, name string) error) error {
	for _, dir := range l.dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			l.logger.Debug(ctx, "search directory missing, skipping", "dir", dir)
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !l.matches(path) {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			return fn(dir, filepath.ToSlash(rel))
		})
		if err != nil {
			return fmt.Errorf("walking template dir %s: %w", dir, err)
		}
	}
	return nil
}

// matches applies the extension allowlist and the exclude patterns.
func (l *Loader) matches(path string) bool {
	ext := filepath.Ext(path)
	ok := false
	for _, e := range l.exts {
		if ext == e {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}

	base := filepath.Base(path)
	for _, pattern := range l.excludes {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}
	return true
}

// validateName rejects absolute names and traversal outside the search
// directories.
func validateName(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return errors.New("absolute paths not allowed")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return errors.New("path escapes template directories")
	}
	return nil
}

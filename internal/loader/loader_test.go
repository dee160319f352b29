package loader

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sean-reed/django-render-comments/internal/config"
	"github.com/sean-reed/django-render-comments/internal/logging"
)

func testConfig(dirs []string, debug, enabled bool) *config.Config {
	return &config.Config{
		Debug:   debug,
		Enabled: enabled,
		Templates: config.TemplatesConfig{
			Dirs:            dirs,
			Extensions:      []string{".html", ".txt"},
			ExcludePatterns: []string{"*.bak"},
		},
	}
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestGetPreprocessesWhenDebugAndEnabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "<p>hi</p>{# note #}")

	l := New(testConfig([]string{dir}, true, true), logging.NewLogger(nil))
	assert.True(t, l.Enabled())

	got, err := l.Get(context.Background(), "index.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>{% verbatim %}<!-- note -->{% endverbatim %}", got)
}

func TestGetStripsWhenGateClosed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "<p>hi</p>{# note #}")

	tests := []struct {
		name           string
		debug, enabled bool
	}{
		{"debug off", false, true},
		{"feature off", true, false},
		{"both off", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(testConfig([]string{dir}, tt.debug, tt.enabled), logging.NewLogger(nil))
			assert.False(t, l.Enabled())

			got, err := l.Get(context.Background(), "index.html")
			require.NoError(t, err)
			assert.Equal(t, "<p>hi</p>", got)
		})
	}
}

func TestGetSearchesDirsInOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, second, "page.html", "from second")
	writeFile(t, first, "other.html", "other")

	l := New(testConfig([]string{first, second}, true, true), logging.NewLogger(nil))

	got, err := l.Get(context.Background(), "page.html")
	require.NoError(t, err)
	assert.Equal(t, "from second", got)

	// A file present in the first dir shadows the second.
	writeFile(t, first, "page.html", "from first")
	got, err = l.Get(context.Background(), "page.html")
	require.NoError(t, err)
	assert.Equal(t, "from first", got)
}

func TestGetNotFound(t *testing.T) {
	dir := t.TempDir()
	l := New(testConfig([]string{dir}, true, true), logging.NewLogger(nil))

	_, err := l.Get(context.Background(), "missing.html")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Contains(t, err.Error(), dir)
}

func TestGetRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	l := New(testConfig([]string{dir}, true, true), logging.NewLogger(nil))
	ctx := context.Background()

	for _, name := range []string{"", "/etc/passwd", "../outside.html", "../../x/y.html"} {
		_, err := l.Get(ctx, name)
		assert.Error(t, err, "name: %q", name)
	}

	// Traversal that stays inside the search dir is fine.
	writeFile(t, dir, "sub/page.html", "ok")
	got, err := l.Get(ctx, "sub/../sub/page.html")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "")
	writeFile(t, dir, "mail/welcome.txt", "")
	writeFile(t, dir, "old.bak", "")
	writeFile(t, dir, "styles.css", "")
	missing := filepath.Join(dir, "does-not-exist")

	l := New(testConfig([]string{dir, missing}, true, true), logging.NewLogger(nil))

	var names []string
	err := l.Walk(context.Background(), func(root, name string) error {
		assert.Equal(t, dir, root)
		names = append(names, name)
		return nil
	})
	require.NoError(t, err)

	sort.Strings(names)
	assert.Equal(t, []string{"index.html", "mail/welcome.txt"}, names)
}

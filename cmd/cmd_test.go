package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sean-reed/django-render-comments/internal/errors"
)

func TestProcessFileToOutDir(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	src := filepath.Join(srcDir, "page.html")
	require.NoError(t, os.WriteFile(src, []byte("a {# note #} b"), 0644))

	collector := apperrors.NewCollector()
	processFile(src, "page.html", true, false, outDir, collector)
	require.False(t, collector.HasErrors())

	got, err := os.ReadFile(filepath.Join(outDir, "page.html"))
	require.NoError(t, err)
	assert.Equal(t, "a {% verbatim %}<!-- note -->{% endverbatim %} b", string(got))
}

func TestProcessFileInPlace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(src, []byte("a {# note #} b"), 0644))

	collector := apperrors.NewCollector()
	processFile(src, "page.html", false, true, "", collector)
	require.False(t, collector.HasErrors())

	got, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "a  b", string(got), "disabled transform strips comments")
}

func TestProcessFileMissingSource(t *testing.T) {
	collector := apperrors.NewCollector()
	processFile(filepath.Join(t.TempDir(), "absent.html"), "absent.html", true, false, t.TempDir(), collector)

	require.True(t, collector.HasErrors())
	assert.Equal(t, "read", collector.All()[0].Stage)
}

func TestRelativeName(t *testing.T) {
	dirs := []string{"/srv/app/templates", "/srv/shared/templates"}

	assert.Equal(t, "mail/welcome.txt", relativeName(dirs, "/srv/app/templates/mail/welcome.txt"))
	assert.Equal(t, "base.html", relativeName(dirs, "/srv/shared/templates/base.html"))
	assert.Equal(t, "orphan.html", relativeName(dirs, "/tmp/orphan.html"))
}

func TestInitWritesConfig(t *testing.T) {
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	require.NoError(t, runInit(initCmd, nil))

	data, err := os.ReadFile(configFileName)
	require.NoError(t, err)
	assert.Contains(t, string(data), "enabled: true")
	assert.Contains(t, string(data), "./templates")

	// Second run without --force must refuse to overwrite
	err = runInit(initCmd, nil)
	assert.Error(t, err)
}

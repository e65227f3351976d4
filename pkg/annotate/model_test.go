package annotate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/polyglot/pkg/annotate"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadModel_Builtin(t *testing.T) {
	m, err := annotate.LoadModel(annotate.DefaultModel, "")
	require.NoError(t, err)
	assert.Equal(t, "en_basic", m.Name)
	assert.Equal(t, "en", m.Language)
	assert.Contains(t, m.Stopwords, "the")
	// YAML 1.1 booleans must stay strings in a []string target.
	assert.Contains(t, m.Stopwords, "no")
	assert.Equal(t, "sit", m.Exceptions["sat"])
	assert.NotEmpty(t, m.Suffixes)
}

func TestLoadModel_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
name: custom
language: en
stopwords: [foo]
exceptions:
  geese: goose
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), content, 0644))

	m, err := annotate.LoadModel("custom", dir)
	require.NoError(t, err)
	assert.Equal(t, "custom", m.Name)
	assert.Equal(t, []string{"foo"}, m.Stopwords)
}

func TestLoadModel_DirectoryShadowsBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en_basic.yaml"), []byte("name: shadow\n"), 0644))

	m, err := annotate.LoadModel("en_basic", dir)
	require.NoError(t, err)
	assert.Equal(t, "shadow", m.Name)
}

func TestLoadModel_LiteralPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: literal\n"), 0644))

	m, err := annotate.LoadModel(path, "")
	require.NoError(t, err)
	assert.Equal(t, "literal", m.Name)
}

func TestLoadModel_NotFound(t *testing.T) {
	_, err := annotate.LoadModel("xx_missing", t.TempDir())
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestParseModel_Invalid(t *testing.T) {
	_, err := annotate.ParseModel([]byte("stopwords: [a"))
	assert.Error(t, err)

	_, err = annotate.ParseModel([]byte("language: en\n"))
	assert.Error(t, err, "name is required")
}

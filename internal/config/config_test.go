package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Survived", cfg.Columns.Target)
	assert.Equal(t, 0.2, cfg.Split.TestSize)
	assert.Equal(t, int64(42), cfg.Split.Seed)
	assert.Equal(t, 100, cfg.Forest.NTrees)
	assert.Equal(t, 5, cfg.Forest.MaxDepth)
	assert.Equal(t, ClassWeightBalanced, cfg.Forest.ClassWeight)
	assert.Equal(t, 2, cfg.PCA.Components)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
columns:
  target: Label
paths:
  input: data/passengers.csv
  parquet: true
forest:
  n_trees: 10
target_policy: require
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Label", cfg.Columns.Target)
	assert.Equal(t, "Age", cfg.Columns.Age, "unset roles keep defaults")
	assert.Equal(t, "data/passengers.csv", cfg.Paths.Input)
	assert.True(t, cfg.Paths.Parquet)
	assert.Equal(t, 10, cfg.Forest.NTrees)
	assert.Equal(t, 5, cfg.Forest.MaxDepth)
	assert.Equal(t, TargetPolicyRequire, cfg.TargetPolicy)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
cv_folds = 3

[split]
test_size = 0.25
seed = 7

[pca]
components = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.CVFolds)
	assert.Equal(t, 0.25, cfg.Split.TestSize)
	assert.Equal(t, int64(7), cfg.Split.Seed)
	assert.Equal(t, 3, cfg.PCA.Components)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty target column", func(c *Config) { c.Columns.Target = "" }},
		{"empty input", func(c *Config) { c.Paths.Input = "" }},
		{"test size zero", func(c *Config) { c.Split.TestSize = 0 }},
		{"test size one", func(c *Config) { c.Split.TestSize = 1 }},
		{"no trees", func(c *Config) { c.Forest.NTrees = 0 }},
		{"no depth", func(c *Config) { c.Forest.MaxDepth = 0 }},
		{"min split one", func(c *Config) { c.Forest.MinSamplesSplit = 1 }},
		{"unknown class weight", func(c *Config) { c.Forest.ClassWeight = "subsample" }},
		{"no components", func(c *Config) { c.PCA.Components = 0 }},
		{"single fold", func(c *Config) { c.CVFolds = 1 }},
		{"unknown target policy", func(c *Config) { c.TargetPolicy = "impute" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

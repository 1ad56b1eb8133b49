// Package config maps logical column roles and pipeline parameters to values
// loaded from YAML or TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	TargetPolicyDrop    = "drop"
	TargetPolicyRequire = "require"

	ClassWeightBalanced = "balanced"
	ClassWeightNone     = "none"
)

type Config struct {
	Columns      Columns `yaml:"columns" toml:"columns"`
	Paths        Paths   `yaml:"paths" toml:"paths"`
	Split        Split   `yaml:"split" toml:"split"`
	Balance      Balance `yaml:"balance" toml:"balance"`
	Forest       Forest  `yaml:"forest" toml:"forest"`
	PCA          PCA     `yaml:"pca" toml:"pca"`
	CVFolds      int     `yaml:"cv_folds" toml:"cv_folds"`
	TargetPolicy string  `yaml:"target_policy" toml:"target_policy"`
}

// Columns maps every role the pipeline needs to a column name in the input
// schema. Derived columns are named here as well.
type Columns struct {
	ID         string `yaml:"id" toml:"id"`
	Target     string `yaml:"target" toml:"target"`
	Pclass     string `yaml:"pclass" toml:"pclass"`
	Name       string `yaml:"name" toml:"name"`
	Sex        string `yaml:"sex" toml:"sex"`
	Age        string `yaml:"age" toml:"age"`
	SibSp      string `yaml:"sibsp" toml:"sibsp"`
	Parch      string `yaml:"parch" toml:"parch"`
	Ticket     string `yaml:"ticket" toml:"ticket"`
	Fare       string `yaml:"fare" toml:"fare"`
	Cabin      string `yaml:"cabin" toml:"cabin"`
	Embarked   string `yaml:"embarked" toml:"embarked"`
	FamilySize string `yaml:"family_size" toml:"family_size"`
	IsAlone    string `yaml:"is_alone" toml:"is_alone"`
}

type Paths struct {
	Input         string `yaml:"input" toml:"input"`
	Cleaned       string `yaml:"cleaned" toml:"cleaned"`
	Normalized    string `yaml:"normalized" toml:"normalized"`
	EDAPlot       string `yaml:"eda_plot" toml:"eda_plot"`
	ConfusionPlot string `yaml:"confusion_plot" toml:"confusion_plot"`
	PCAPlot       string `yaml:"pca_plot" toml:"pca_plot"`
	State         string `yaml:"state" toml:"state"`
	Model         string `yaml:"model" toml:"model"`
	Parquet       bool   `yaml:"parquet" toml:"parquet"`
}

type Split struct {
	TestSize float64 `yaml:"test_size" toml:"test_size"`
	Seed     int64   `yaml:"seed" toml:"seed"`
}

type Balance struct {
	Seed int64 `yaml:"seed" toml:"seed"`
}

type Forest struct {
	NTrees          int    `yaml:"n_trees" toml:"n_trees"`
	MaxDepth        int    `yaml:"max_depth" toml:"max_depth"`
	MinSamplesSplit int    `yaml:"min_samples_split" toml:"min_samples_split"`
	ClassWeight     string `yaml:"class_weight" toml:"class_weight"`
	Seed            int64  `yaml:"seed" toml:"seed"`
	Workers         int    `yaml:"workers" toml:"workers"`
}

type PCA struct {
	Components int `yaml:"components" toml:"components"`
}

// Default returns the parameters the original scripts hard-coded.
func Default() Config {
	return Config{
		Columns: Columns{
			ID:         "PassengerId",
			Target:     "Survived",
			Pclass:     "Pclass",
			Name:       "Name",
			Sex:        "Sex",
			Age:        "Age",
			SibSp:      "SibSp",
			Parch:      "Parch",
			Ticket:     "Ticket",
			Fare:       "Fare",
			Cabin:      "Cabin",
			Embarked:   "Embarked",
			FamilySize: "FamilySize",
			IsAlone:    "IsAlone",
		},
		Paths: Paths{
			Input:         "train.csv",
			Cleaned:       "train_cleaned.csv",
			Normalized:    "train_normalized.csv",
			EDAPlot:       "eda_plots.png",
			ConfusionPlot: "confusion_matrix.png",
			PCAPlot:       "pca_plot.png",
			State:         "preprocess_state.msgpack",
			Model:         "titanic_model.gob",
		},
		Split:   Split{TestSize: 0.2, Seed: 42},
		Balance: Balance{Seed: 42},
		Forest: Forest{
			NTrees:          100,
			MaxDepth:        5,
			MinSamplesSplit: 2,
			ClassWeight:     ClassWeightBalanced,
			Seed:            42,
			Workers:         4,
		},
		PCA:          PCA{Components: 2},
		TargetPolicy: TargetPolicyDrop,
	}
}

// Load reads a YAML or TOML file on top of Default. The format follows the
// file extension.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing yaml config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(raw), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing toml config %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	roles := map[string]string{
		"id":          c.Columns.ID,
		"target":      c.Columns.Target,
		"pclass":      c.Columns.Pclass,
		"name":        c.Columns.Name,
		"sex":         c.Columns.Sex,
		"age":         c.Columns.Age,
		"sibsp":       c.Columns.SibSp,
		"parch":       c.Columns.Parch,
		"ticket":      c.Columns.Ticket,
		"fare":        c.Columns.Fare,
		"cabin":       c.Columns.Cabin,
		"embarked":    c.Columns.Embarked,
		"family_size": c.Columns.FamilySize,
		"is_alone":    c.Columns.IsAlone,
	}
	for role, name := range roles {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("column for role %q must not be empty", role)
		}
	}

	if c.Paths.Input == "" {
		return fmt.Errorf("input path must not be empty")
	}

	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("test_size must be between 0 and 1, got %g", c.Split.TestSize)
	}

	if c.Forest.NTrees <= 0 {
		return fmt.Errorf("n_trees must be positive, got %d", c.Forest.NTrees)
	}
	if c.Forest.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.Forest.MaxDepth)
	}
	if c.Forest.MinSamplesSplit < 2 {
		return fmt.Errorf("min_samples_split must be at least 2, got %d", c.Forest.MinSamplesSplit)
	}
	if c.Forest.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Forest.Workers)
	}
	switch c.Forest.ClassWeight {
	case ClassWeightBalanced, ClassWeightNone, "":
	default:
		return fmt.Errorf("unknown class_weight %q", c.Forest.ClassWeight)
	}

	if c.PCA.Components < 1 {
		return fmt.Errorf("pca components must be at least 1, got %d", c.PCA.Components)
	}
	if c.CVFolds < 0 || c.CVFolds == 1 {
		return fmt.Errorf("cv_folds must be 0 or at least 2, got %d", c.CVFolds)
	}

	switch c.TargetPolicy {
	case TargetPolicyDrop, TargetPolicyRequire:
	default:
		return fmt.Errorf("unknown target_policy %q", c.TargetPolicy)
	}

	return nil
}

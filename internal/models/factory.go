package models

import (
	"fmt"
)

type ModelConfig struct {
	Algorithm   string
	MaxDepth    int
	MinSplit    int
	NTrees      int
	ClassWeight string
	Seed        int64
	Workers     int
}

func CreateModel(config ModelConfig) (Model, error) {
	switch config.Algorithm {
	case "tree":
		if config.MaxDepth <= 0 {
			config.MaxDepth = 10
		}
		if config.MinSplit <= 0 {
			config.MinSplit = 2
		}
		tree := NewDecisionTree(config.MaxDepth, config.MinSplit)
		tree.Seed = config.Seed
		return tree, nil

	case "forest":
		if config.NTrees <= 0 {
			config.NTrees = 100
		}
		if config.MaxDepth <= 0 {
			config.MaxDepth = 10
		}
		if config.MinSplit <= 0 {
			config.MinSplit = 2
		}
		forest := NewRandomForest(config.NTrees, config.MaxDepth, config.MinSplit)
		forest.Seed = config.Seed
		if config.ClassWeight != "" {
			forest.ClassWeight = config.ClassWeight
		}
		if config.Workers > 0 {
			forest.MaxWorkers = config.Workers
		}
		return forest, nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

func DefaultConfig(algorithm string) ModelConfig {
	config := ModelConfig{Algorithm: algorithm, Seed: 42}

	switch algorithm {
	case "tree":
		config.MaxDepth = 10
		config.MinSplit = 2
	case "forest":
		config.NTrees = 100
		config.MaxDepth = 5
		config.MinSplit = 2
		config.ClassWeight = ClassWeightBalanced
		config.Workers = 4
	}

	return config
}

// Clone returns an unfitted model with the same configuration.
func Clone(model Model) (Model, error) {
	switch m := model.(type) {
	case *DecisionTree:
		tree := NewDecisionTree(m.MaxDepth, m.MinSamplesSplit)
		tree.MinImpurityDecrease = m.MinImpurityDecrease
		tree.MaxFeatures = m.MaxFeatures
		tree.Seed = m.Seed
		return tree, nil
	case *RandomForest:
		forest := NewRandomForest(m.NTrees, m.MaxDepth, m.MinSamplesSplit)
		forest.ClassWeight = m.ClassWeight
		forest.Seed = m.Seed
		forest.MaxWorkers = m.MaxWorkers
		return forest, nil
	default:
		return nil, fmt.Errorf("cannot clone model type %s", model.GetType())
	}
}

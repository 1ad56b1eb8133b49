package main

import (
	"github.com/spf13/cobra"
)

func (a *app) cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Impute Age and Embarked, drop Cabin and write the cleaned CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.runner.Clean(cmd.Context())
			if err != nil {
				return a.handle(err)
			}
			a.console.clean(res)
			return nil
		},
	}
}

func (a *app) normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Min-max scale the numeric columns of the cleaned CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.runner.Normalize(cmd.Context())
			if err != nil {
				return a.handle(err)
			}
			a.console.normalize(res)
			return nil
		},
	}
}

func (a *app) reduceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reduce",
		Short: "Project the encoded, standardized table on its principal components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.runner.Reduce(cmd.Context())
			if err != nil {
				return a.handle(err)
			}
			a.console.reduce(res)
			return nil
		},
	}
}

func addTrainFlags(cmd *cobra.Command) {
	cmd.Flags().Int("cv-folds", 0, "stratified cross-validation folds on the training part (0 disables)")
	cmd.Flags().Int("trees", 100, "number of trees in the forest")
}

func (a *app) trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and evaluate the balanced random forest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.runner.Train(cmd.Context())
			if err != nil {
				return a.handle(err)
			}
			a.console.train(res)
			return nil
		},
	}
	addTrainFlags(cmd)
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run clean, normalize, reduce and train in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.runner.Run(cmd.Context())
			if res != nil {
				a.console.run(res)
			}
			if err != nil {
				return a.handle(err)
			}
			return nil
		},
	}
	addTrainFlags(cmd)
	return cmd
}

func (a *app) predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict [flags] <passengers.csv>",
		Short: "Predict survival with a saved model bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")
			if model == "" {
				model = a.runner.Config.Paths.Model
			}
			output, _ := cmd.Flags().GetString("output")

			res, err := a.runner.Predict(cmd.Context(), args[0], model, output)
			if err != nil {
				return a.handle(err)
			}
			a.console.predict(res)
			return nil
		},
	}
	cmd.Flags().String("model", "", "model bundle (defaults to paths.model)")
	cmd.Flags().String("output", "predictions.csv", "where to write the predictions, empty to skip")
	return cmd
}

package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/evaluation"
	"github.com/Arya-f4/machine-learning-uts/internal/pipeline"
)

type console struct {
	out io.Writer

	green  func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
	bold   func(a ...any) string
}

func newConsole(out io.Writer) *console {
	return &console{
		out:    out,
		green:  color.New(color.FgGreen).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
		bold:   color.New(color.Bold).SprintFunc(),
	}
}

func (c *console) heading(title string) {
	fmt.Fprintf(c.out, "\n%s\n", c.cyan(c.bold("== "+title+" ==")))
}

func (c *console) wrote(label, path string) {
	if path != "" {
		fmt.Fprintf(c.out, "%s %s: %s\n", c.green("✓"), label, path)
	}
}

func (c *console) loaded(l pipeline.Loaded) {
	fmt.Fprintf(c.out, "Source: %s (%d rows, %d columns, fingerprint %s)\n",
		l.Source.Path, l.Source.Rows, l.Source.Columns, l.Source.FingerprintHex())
	if l.DroppedTargets > 0 {
		fmt.Fprintf(c.out, "%s dropped %d rows without a target\n", c.yellow("!"), l.DroppedTargets)
	}
}

func (c *console) missing(counts []data.ColumnCount) {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Column", "Missing"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, cc := range counts {
		table.Append([]string{cc.Name, strconv.Itoa(cc.Count)})
	}
	table.Render()
}

func (c *console) summary(columns []data.ColumnSummary) {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Column", "Type", "Non-Null", "Distinct", "Mean"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, s := range columns {
		mean := ""
		if s.Kind == data.Numeric && s.NonNull > 0 {
			mean = s.Mean.StringFixed(2)
		}
		table.Append([]string{s.Name, s.Kind.String(), strconv.Itoa(s.NonNull), strconv.Itoa(s.Distinct), mean})
	}
	table.Render()
}

func (c *console) clean(res *pipeline.CleanResult) {
	c.heading("Clean")
	c.loaded(res.Loaded)
	fmt.Fprintln(c.out, "Missing values before cleaning:")
	c.missing(res.MissingBefore)
	fmt.Fprintf(c.out, "Age median %s filled %d rows\n", c.bold(strconv.FormatFloat(res.AgeMedian, 'f', -1, 64)), res.AgeFilled)
	fmt.Fprintf(c.out, "Embarked mode %s filled %d rows\n", c.bold(res.EmbarkedMode), res.EmbarkedFilled)
	fmt.Fprintln(c.out, "Missing values after cleaning:")
	c.missing(res.MissingAfter)
	c.wrote("cleaned data", res.Output)
	c.wrote("parquet", res.Parquet)
}

func (c *console) normalize(res *pipeline.NormalizeResult) {
	c.heading("Normalize")
	c.loaded(res.Loaded)
	for _, name := range res.Columns {
		if n := res.Filled[name]; n > 0 {
			fmt.Fprintf(c.out, "%s filled %d rows with the median\n", name, n)
		}
	}
	fmt.Fprintf(c.out, "Min-max scaled: %v\n", res.Columns)
	c.wrote("normalized data", res.Output)
	c.wrote("parquet", res.Parquet)
}

func (c *console) reduce(res *pipeline.ReduceResult) {
	c.heading("Reduce")
	c.loaded(res.Loaded)
	fmt.Fprintf(c.out, "Dropped %d incomplete rows, %d remain\n", res.Dropped, res.Rows)

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Component", "Explained Variance"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, ratio := range res.Projection.Ratios {
		table.Append([]string{fmt.Sprintf("PC%d", i+1), fmt.Sprintf("%.4f", ratio)})
	}
	table.Render()
	fmt.Fprintf(c.out, "Total variance explained: %s\n", c.green(fmt.Sprintf("%.4f", res.Projection.Total)))
	c.wrote("pca plot", res.Plot)
}

func (c *console) counts(label string, counts map[int]int) {
	classes := make([]int, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	fmt.Fprintf(c.out, "%s:", label)
	for _, class := range classes {
		fmt.Fprintf(c.out, " %s=%d", evaluation.ClassNames([]int{class}, pipeline.SurvivalNames)[0], counts[class])
	}
	fmt.Fprintln(c.out)
}

func (c *console) train(res *pipeline.TrainResult) {
	c.heading("Train")
	c.loaded(res.Loaded)
	c.summary(res.Summary)
	fmt.Fprintln(c.out, "Missing values:")
	c.missing(res.Missing)
	fmt.Fprintf(c.out, "Features: %v\n", res.Features)
	c.counts("Training classes", res.TrainCounts)
	c.counts("After oversampling", res.BalancedCounts)
	c.counts("Test classes", res.TestCounts)
	fmt.Fprintf(c.out, "Training time: %v\n", res.TrainingTime)

	fmt.Fprintf(c.out, "\nAccuracy: %s\n", c.green(fmt.Sprintf("%.4f", res.Metrics.Accuracy)))
	evaluation.WriteClassificationReport(c.out, res.Metrics, pipeline.SurvivalNames)
	fmt.Fprintln(c.out, "Confusion matrix (rows actual, columns predicted):")
	evaluation.WriteConfusionMatrix(c.out, res.Metrics, pipeline.SurvivalNames)

	if len(res.Importances) == len(res.Features) {
		table := tablewriter.NewWriter(c.out)
		table.SetHeader([]string{"Feature", "Importance"})
		table.SetAlignment(tablewriter.ALIGN_RIGHT)
		for i, name := range res.Features {
			table.Append([]string{name, fmt.Sprintf("%.4f", res.Importances[i])})
		}
		table.Render()
	}

	if res.CV != nil {
		fmt.Fprintf(c.out, "Cross-validation accuracy: %s ± %.4f over %d folds\n",
			c.green(fmt.Sprintf("%.4f", res.CV.Mean)), res.CV.Std, len(res.CV.Scores))
	}

	c.wrote("eda plot", res.EDAPlot)
	c.wrote("confusion plot", res.ConfusionPlot)
	c.wrote("preprocessing state", res.StatePath)
	c.wrote("model bundle", res.ModelPath)
}

func (c *console) run(res *pipeline.RunResult) {
	if res.Clean != nil {
		c.clean(res.Clean)
	}
	if res.Normalize != nil {
		c.normalize(res.Normalize)
	}
	if res.Reduce != nil {
		c.reduce(res.Reduce)
	}
	if res.Train != nil {
		c.train(res.Train)
	}
}

func (c *console) predict(res *pipeline.PredictResult) {
	c.heading("Predict")
	fmt.Fprintf(c.out, "Source: %s (%d rows)\n", res.Source.Path, res.Source.Rows)
	fmt.Fprintf(c.out, "Bundle: %s\n", res.ModelPath)
	res.Bundle.WriteSummary(c.out)

	survived := 0
	for _, p := range res.Predictions {
		if p == 1 {
			survived++
		}
	}
	fmt.Fprintf(c.out, "Predicted survivors: %s of %d\n", c.green(strconv.Itoa(survived)), len(res.Predictions))
	c.wrote("predictions", res.Output)
}

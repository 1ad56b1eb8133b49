package evaluation

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// ClassNames maps classes to display names. Classes without a name
// are shown by their label.
func ClassNames(classes []int, names map[int]string) []string {
	out := make([]string, len(classes))
	for i, class := range classes {
		if name, ok := names[class]; ok {
			out[i] = name
			continue
		}
		out[i] = strconv.Itoa(class)
	}
	return out
}

func f2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// WriteClassificationReport renders per-class precision, recall, F1 and
// support followed by accuracy and the macro and weighted averages.
func WriteClassificationReport(w io.Writer, m *ClassificationMetrics, names map[int]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Class", "Precision", "Recall", "F1-Score", "Support"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	labels := ClassNames(m.Classes, names)
	for i, class := range m.Classes {
		cm := m.PerClassMetrics[class]
		table.Append([]string{labels[i], f2(cm.Precision), f2(cm.Recall), f2(cm.F1Score), strconv.Itoa(cm.Support)})
	}

	n := strconv.Itoa(m.NumSamples)
	table.Append([]string{"accuracy", "", "", f2(m.Accuracy), n})
	table.Append([]string{"macro avg", f2(m.MacroPrecision), f2(m.MacroRecall), f2(m.MacroF1), n})
	table.Append([]string{"weighted avg", f2(m.WeightedPrecision), f2(m.WeightedRecall), f2(m.WeightedF1), n})

	table.Render()
}

// WriteConfusionMatrix renders the matrix with actual classes on rows.
func WriteConfusionMatrix(w io.Writer, m *ClassificationMetrics, names map[int]string) {
	labels := ClassNames(m.Classes, names)

	header := make([]string, 0, len(labels)+1)
	header = append(header, "Actual \\ Predicted")
	header = append(header, labels...)

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i, row := range m.ConfusionMatrix {
		line := make([]string, 0, len(row)+1)
		line = append(line, labels[i])
		for _, v := range row {
			line = append(line, strconv.Itoa(v))
		}
		table.Append(line)
	}

	table.Render()
}

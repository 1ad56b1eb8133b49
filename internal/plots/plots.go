// Package plots renders the PNG figures of the pipeline with gonum/plot.
package plots

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
)

// AgeBins is the histogram resolution of the age panel.
const AgeBins = 30

var classColors = []color.RGBA{
	{R: 204, G: 51, B: 51, A: 255},
	{R: 51, G: 119, B: 204, A: 255},
	{R: 80, G: 170, B: 80, A: 255},
	{R: 230, G: 160, B: 40, A: 255},
}

func classColor(i int) color.Color {
	return classColors[i%len(classColors)]
}

// EDAColumns names the columns used by the overview figure.
type EDAColumns struct {
	Target string
	Sex    string
	Pclass string
	Age    string
}

// EDA writes a 2x2 overview: target counts, target by sex, target by
// passenger class and an age histogram that skips missing ages.
func EDA(ds *data.Dataset, cols EDAColumns, names map[int]string, path string) error {
	y, err := ds.Labels(cols.Target)
	if err != nil {
		return err
	}
	classes := distinct(y)

	counts, err := targetCounts(y, classes, names, cols.Target)
	if err != nil {
		return err
	}
	bySex, err := groupedCounts(ds, cols.Sex, y, classes, names, "Survival by "+cols.Sex)
	if err != nil {
		return err
	}
	byClass, err := groupedCounts(ds, cols.Pclass, y, classes, names, "Survival by "+cols.Pclass)
	if err != nil {
		return err
	}
	ages, err := ageHistogram(ds, cols.Age)
	if err != nil {
		return err
	}

	grid := [][]*plot.Plot{
		{counts, bySex},
		{byClass, ages},
	}
	img := vgimg.New(12*vg.Inch, 10*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 3,
		PadBottom: vg.Millimeter * 3,
		PadLeft:   vg.Millimeter * 3,
		PadRight:  vg.Millimeter * 3,
	}
	canvases := plot.Align(grid, tiles, dc)
	for j := range grid {
		for i := range grid[j] {
			grid[j][i].Draw(canvases[j][i])
		}
	}

	return writePNG(img, path)
}

func writePNG(img *vgimg.Canvas, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(file); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

func distinct(y []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, v := range y {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func className(class int, names map[int]string) string {
	if name, ok := names[class]; ok {
		return name
	}
	return strconv.Itoa(class)
}

func targetCounts(y, classes []int, names map[int]string, target string) (*plot.Plot, error) {
	values := make(plotter.Values, len(classes))
	labels := make([]string, len(classes))
	for i, class := range classes {
		for _, v := range y {
			if v == class {
				values[i]++
			}
		}
		labels[i] = className(class, names)
	}

	p := plot.New()
	p.Title.Text = target + " count"
	p.Y.Label.Text = "Passengers"

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return nil, err
	}
	bars.Color = classColor(0)
	p.Add(bars)
	p.NominalX(labels...)
	return p, nil
}

// groupedCounts draws one bar group per value of column, one bar per class.
func groupedCounts(ds *data.Dataset, column string, y, classes []int, names map[int]string, title string) (*plot.Plot, error) {
	values, missing, err := ds.Strings(column)
	if err != nil {
		return nil, err
	}

	var groups []string
	seen := make(map[string]bool)
	for i, v := range values {
		if !missing[i] && !seen[v] {
			seen[v] = true
			groups = append(groups, v)
		}
	}
	sort.Strings(groups)
	groupIdx := make(map[string]int, len(groups))
	for i, g := range groups {
		groupIdx[g] = i
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Passengers"
	p.Legend.Top = true

	width := vg.Points(20)
	for k, class := range classes {
		counts := make(plotter.Values, len(groups))
		for i, v := range values {
			if !missing[i] && y[i] == class {
				counts[groupIdx[v]]++
			}
		}
		bars, err := plotter.NewBarChart(counts, width)
		if err != nil {
			return nil, err
		}
		bars.Color = classColor(k)
		bars.Offset = width * vg.Length(2*k-len(classes)+1) / 2
		p.Add(bars)
		p.Legend.Add(className(class, names), bars)
	}
	p.NominalX(groups...)
	return p, nil
}

func ageHistogram(ds *data.Dataset, column string) (*plot.Plot, error) {
	ages, err := ds.Floats(column)
	if err != nil {
		return nil, err
	}
	observed := make(plotter.Values, 0, len(ages))
	for _, a := range ages {
		if !math.IsNaN(a) {
			observed = append(observed, a)
		}
	}

	p := plot.New()
	p.Title.Text = column + " distribution"
	p.X.Label.Text = column
	p.Y.Label.Text = "Passengers"
	if len(observed) == 0 {
		return p, nil
	}

	hist, err := plotter.NewHist(observed, AgeBins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = classColor(1)
	p.Add(hist)
	return p, nil
}

// confusionGrid adapts a confusion matrix to plotter.GridXYZ with the first
// actual class drawn on the top row.
type confusionGrid struct {
	cm [][]int
}

func (g confusionGrid) Dims() (c, r int) { return len(g.cm[0]), len(g.cm) }
func (g confusionGrid) X(c int) float64  { return float64(c) }
func (g confusionGrid) Y(r int) float64  { return float64(r) }
func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.cm[len(g.cm)-1-r][c])
}

// ConfusionHeatmap writes an annotated heatmap of cm with predicted classes
// on the x axis and actual classes on the y axis.
func ConfusionHeatmap(cm [][]int, labels []string, path string) error {
	n := len(cm)
	if n == 0 || len(labels) != n {
		return fmt.Errorf("confusion matrix of size %d with %d labels", n, len(labels))
	}
	for _, row := range cm {
		if len(row) != n {
			return fmt.Errorf("confusion matrix is not square")
		}
	}

	grid := confusionGrid{cm: cm}
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = "Confusion Matrix"
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Actual"
	p.Add(hm)

	var xTicks, yTicks []plot.Tick
	annotations := plotter.XYLabels{}
	for i, label := range labels {
		xTicks = append(xTicks, plot.Tick{Value: float64(i), Label: label})
		yTicks = append(yTicks, plot.Tick{Value: float64(n - 1 - i), Label: label})
		for j := range cm[i] {
			annotations.XYs = append(annotations.XYs, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			annotations.Labels = append(annotations.Labels, strconv.Itoa(cm[i][j]))
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)

	text, err := plotter.NewLabels(annotations)
	if err != nil {
		return err
	}
	p.Add(text)

	return p.Save(6*vg.Inch, 5*vg.Inch, path)
}

// PCAScatter plots the first two component scores coloured by class.
func PCAScatter(scores [][]float64, y []int, names map[int]string, ratios []float64, path string) error {
	if len(scores) != len(y) {
		return fmt.Errorf("got %d score rows and %d labels", len(scores), len(y))
	}
	if len(scores) == 0 || len(scores[0]) < 2 {
		return fmt.Errorf("pca scatter needs at least two components")
	}

	p := plot.New()
	p.Title.Text = "PCA projection"
	p.X.Label.Text = axisLabel(1, ratios)
	p.Y.Label.Text = axisLabel(2, ratios)
	p.Add(plotter.NewGrid())

	for k, class := range distinct(y) {
		var pts plotter.XYs
		for i, s := range scores {
			if y[i] == class {
				pts = append(pts, plotter.XY{X: s[0], Y: s[1]})
			}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.Color = classColor(k)
		scatter.Radius = vg.Points(2.5)
		p.Add(scatter)
		p.Legend.Add(className(class, names), scatter)
	}

	return p.Save(7*vg.Inch, 5*vg.Inch, path)
}

func axisLabel(component int, ratios []float64) string {
	if component-1 < len(ratios) {
		return fmt.Sprintf("PC%d (%.1f%%)", component, ratios[component-1]*100)
	}
	return fmt.Sprintf("PC%d", component)
}

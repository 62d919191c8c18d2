package report

import (
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"
)

// WriteTrialsCSV writes one row per trial with the running mean up to it.
func WriteTrialsCSV(path string, prices []float64) error {
	if len(prices) == 0 {
		return errors.New("no trial prices recorded")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"trial", "price", "running_mean"}); err != nil {
		return err
	}

	running := runningMean(prices)
	for i, p := range prices {
		record := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(p, 'f', 6, 64),
			strconv.FormatFloat(running[i], 'f', 6, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTrialsPNG charts how the running mean settles as trials accumulate.
// At most maxPoints points are drawn.
func WriteTrialsPNG(path string, prices []float64, maxPoints int) error {
	if len(prices) == 0 {
		return errors.New("no trial prices recorded")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	running := runningMean(prices)
	idx := downsample(len(running), maxPoints)
	x := make([]float64, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		x[i] = float64(j + 1)
		y[i] = running[j]
	}
	final := running[len(running)-1]

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name:           "Trials",
			ValueFormatter: chart.IntValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Mean price",
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Running mean",
				XValues: x,
				YValues: y,
			},
			chart.ContinuousSeries{
				Name:    "Final estimate",
				XValues: []float64{x[0], x[len(x)-1]},
				YValues: []float64{final, final},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func runningMean(prices []float64) []float64 {
	out := floats.CumSum(make([]float64, len(prices)), prices)
	for i := range out {
		out[i] /= float64(i + 1)
	}
	return out
}

// downsample picks up to max evenly spaced indices of [0, n), always keeping
// the first and last.
func downsample(n, max int) []int {
	if max <= 1 || n <= max {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	idx := make([]int, 0, max)
	step := float64(n-1) / float64(max-1)
	for i := 0; i < max; i++ {
		j := int(math.Round(step * float64(i)))
		if j >= n {
			j = n - 1
		}
		idx = append(idx, j)
	}
	return idx
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type BenchmarkResult struct {
	Name       string  `json:"name"`
	Framework  string  `json:"framework"`
	Category   string  `json:"category"`
	Iterations int64   `json:"iterations"`
	NsPerOp    float64 `json:"ns_per_op"`
	BytesPerOp int64   `json:"bytes_per_op"`
	AllocsOp   int64   `json:"allocs_per_op"`
}

type CategoryResults struct {
	Category string
	Results  []BenchmarkResult
}

var frameworkColors = map[string]text.Colors{
	"Beanpod": {text.FgGreen, text.Bold},
	"Do":      {text.FgYellow},
	"Dig":     {text.FgMagenta},
	"Fx":      {text.FgBlue},
}

var categoryOrder = []string{
	"Provide_Simple", "Provide_Chain",
	"Invoke_Singleton", "Invoke_Chain",
	"Named_10",
	"Lifecycle_10", "Lifecycle_50",
	"LifecycleWithWork_10", "LifecycleWithWork_50",
}

var categoryTitles = map[string]string{
	"Provide_Simple":       "Registration (single bean)",
	"Provide_Chain":        "Registration (dependency chain)",
	"Invoke_Singleton":     "Lookup (singleton)",
	"Invoke_Chain":         "Lookup (dependency chain)",
	"Named_10":             "Named beans (10)",
	"Lifecycle_10":         "Start and close (10 beans)",
	"Lifecycle_50":         "Start and close (50 beans)",
	"LifecycleWithWork_10": "Start and close with 1ms callbacks (10 beans)",
	"LifecycleWithWork_50": "Start and close with 1ms callbacks (50 beans)",
}

var benchPattern = regexp.MustCompile(`^Benchmark(\w+)-\d+\s+(\d+)\s+([\d.]+) ns/op\s+(\d+) B/op\s+(\d+) allocs/op`)

func main() {
	var (
		dir      = flag.String("dir", "..", "directory holding the benchmark package")
		count    = flag.Int("count", 3, "runs per benchmark, averaged")
		jsonPath = flag.String("json", "", "also write results to this file")
	)
	flag.Parse()

	fmt.Println(text.Colors{text.FgCyan, text.Bold}.Sprint("beanpod benchmark suite"))
	fmt.Println(text.Faint.Sprint("running benchmarks..."))
	fmt.Println()

	cmd := exec.Command(
		"go", "test", "-bench=.", "-benchmem", "-count="+strconv.Itoa(*count), "-benchtime=100ms",
	)
	cmd.Dir = *dir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "benchmark failed: %s\n", exitErr.Stderr)
		}
		os.Exit(1)
	}

	results := parseResults(output)
	grouped := groupByCategory(results)

	for _, cat := range grouped {
		printCategory(cat)
	}
	printSummary(grouped)

	if *jsonPath != "" {
		if err := exportJSON(*jsonPath, results); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// parseResults averages repeated runs of the same benchmark. Names follow
// Category_Scenario_Framework.
func parseResults(output []byte) []BenchmarkResult {
	runs := make(map[string][]BenchmarkResult)
	var names []string

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		m := benchPattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		name := m[1]
		i := strings.LastIndex(name, "_")
		if i < 0 {
			continue
		}

		r := BenchmarkResult{Name: name, Category: name[:i], Framework: name[i+1:]}
		r.Iterations, _ = strconv.ParseInt(m[2], 10, 64)
		r.NsPerOp, _ = strconv.ParseFloat(m[3], 64)
		r.BytesPerOp, _ = strconv.ParseInt(m[4], 10, 64)
		r.AllocsOp, _ = strconv.ParseInt(m[5], 10, 64)

		if _, ok := runs[name]; !ok {
			names = append(names, name)
		}
		runs[name] = append(runs[name], r)
	}

	results := make([]BenchmarkResult, 0, len(names))
	for _, name := range names {
		rs := runs[name]
		avg := rs[0]
		var ns float64
		var bytesOp, allocs int64
		for _, r := range rs {
			ns += r.NsPerOp
			bytesOp += r.BytesPerOp
			allocs += r.AllocsOp
		}
		n := int64(len(rs))
		avg.NsPerOp = ns / float64(n)
		avg.BytesPerOp = bytesOp / n
		avg.AllocsOp = allocs / n
		results = append(results, avg)
	}
	return results
}

func groupByCategory(results []BenchmarkResult) []CategoryResults {
	groups := make(map[string][]BenchmarkResult)
	var extra []string
	for _, r := range results {
		if _, ok := groups[r.Category]; !ok && !slices.Contains(categoryOrder, r.Category) {
			extra = append(extra, r.Category)
		}
		groups[r.Category] = append(groups[r.Category], r)
	}

	var ordered []CategoryResults
	for _, key := range append(slices.Clone(categoryOrder), extra...) {
		rs, ok := groups[key]
		if !ok {
			continue
		}
		slices.SortFunc(
			rs, func(a, b BenchmarkResult) int {
				switch {
				case a.NsPerOp < b.NsPerOp:
					return -1
				case a.NsPerOp > b.NsPerOp:
					return 1
				}
				return 0
			},
		)
		ordered = append(ordered, CategoryResults{Category: key, Results: rs})
	}
	return ordered
}

func printCategory(cat CategoryResults) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(categoryTitle(cat.Category))
	t.AppendHeader(table.Row{"Framework", "Time/op", "B/op", "Allocs/op", "", "Relative"})
	t.SetColumnConfigs(
		[]table.ColumnConfig{
			{Number: 2, Align: text.AlignRight},
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
		},
	)

	fastest := cat.Results[0].NsPerOp
	for i, r := range cat.Results {
		relative := "fastest"
		if i > 0 && fastest > 0 {
			relative = fmt.Sprintf("%.1fx slower", r.NsPerOp/fastest)
		}
		t.AppendRow(
			table.Row{
				colorFor(r.Framework).Sprint(r.Framework),
				formatNs(r.NsPerOp),
				r.BytesPerOp,
				r.AllocsOp,
				makeBar(r.NsPerOp, fastest, 20),
				relative,
			},
		)
	}

	t.Render()
	fmt.Println()
}

func categoryTitle(cat string) string {
	if title, ok := categoryTitles[cat]; ok {
		return title
	}
	return strings.ReplaceAll(cat, "_", " ")
}

func colorFor(framework string) text.Colors {
	if c, ok := frameworkColors[framework]; ok {
		return c
	}
	return text.Colors{text.Reset}
}

func makeBar(value, fastest float64, width int) string {
	filled := width
	if fastest > 0 && value > 0 {
		filled = int(float64(width) * fastest / value)
	}
	filled = max(1, min(filled, width))

	return text.FgGreen.Sprint(strings.Repeat("█", filled)) + text.FgRed.Sprint(strings.Repeat("░", width-filled))
}

func formatNs(ns float64) string {
	switch {
	case ns >= 1_000_000:
		return fmt.Sprintf("%.2f ms", ns/1_000_000)
	case ns >= 1_000:
		return fmt.Sprintf("%.2f µs", ns/1_000)
	}
	return fmt.Sprintf("%.0f ns", ns)
}

func printSummary(groups []CategoryResults) {
	wins := make(map[string]int)
	for _, cat := range groups {
		wins[cat.Results[0].Framework]++
	}

	frameworks := make([]string, 0, len(wins))
	for name := range wins {
		frameworks = append(frameworks, name)
	}
	slices.SortFunc(frameworks, func(a, b string) int { return wins[b] - wins[a] })

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Summary")
	t.AppendHeader(table.Row{"#", "Framework", "Wins", ""})
	for i, name := range frameworks {
		t.AppendRow(
			table.Row{
				i + 1,
				colorFor(name).Sprint(name),
				fmt.Sprintf("%d/%d", wins[name], len(groups)),
				text.FgGreen.Sprint(strings.Repeat("█", wins[name]*3)),
			},
		)
	}
	t.AppendFooter(table.Row{"", "Compared", "beanpod, samber/do, uber/dig, uber/fx", ""})
	t.Render()
}

func exportJSON(path string, results []BenchmarkResult) error {
	data, err := json.MarshalIndent(struct {
		Benchmarks []BenchmarkResult `json:"benchmarks"`
	}{Benchmarks: results}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Println(text.Faint.Sprint("results written to " + path))
	return nil
}

package chart

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/pumpsight/pumpsight/internal/simulation"
)

// Config holds styling and dimension configuration shared by both charts.
type Config struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int

	GridColor      string
	TextColor      string
	FlowColor      string
	MaxFlowColor   string
	ThresholdColor string
	OverhaulColor  string
	BarColor       string
}

// DefaultConfig returns the palette and dimensions used by the API handlers.
func DefaultConfig() Config {
	return Config{
		Width: 860, Height: 420,
		MarginTop: 40, MarginRight: 150, MarginBottom: 50, MarginLeft: 70,
		GridColor:      "#e5e7eb",
		TextColor:      "#1f2937",
		FlowColor:      "#3b82f6",
		MaxFlowColor:   "#9ca3af",
		ThresholdColor: "#ef4444",
		OverhaulColor:  "#f97316",
		BarColor:       "#3b82f6",
	}
}

// Renderer renders SVG charts from simulation results.
type Renderer struct {
	cfg  Config
	line *template.Template
	bars *template.Template
}

// New creates a Renderer with the given configuration.
func New(cfg Config) *Renderer {
	funcs := template.FuncMap{
		"div": func(a, b int) int { return a / b },
		"add": func(a, b int) int { return a + b },
		"neg": func(a int) int { return -a },
	}
	return &Renderer{
		cfg:  cfg,
		line: template.Must(template.New("line").Funcs(funcs).Parse(lineTemplate)),
		bars: template.Must(template.New("bars").Funcs(funcs).Parse(barTemplate)),
	}
}

// FlowData is the input for the flow-rate line chart.
type FlowData struct {
	Title string
	Years []simulation.YearRecord

	// Threshold draws the dashed horizontal rule the run was evaluated
	// against. Zero or negative disables the rule.
	Threshold float64

	// FailureYear draws a vertical marker; pass simulation.NoFailure to omit.
	FailureYear int
}

// lineData is the resolved template input for the line chart.
type lineData struct {
	Config      Config
	Title       string
	InnerWidth  int
	InnerHeight int

	XTicks    []tick
	YTicks    []tick
	GridLines []gridLine

	FlowPath string
	MaxPath  string
	Markers  []marker

	HasThreshold bool
	ThresholdY   int
	ThresholdTxt string

	HasFailure  bool
	FailureX    int
	FailureYear int

	Legend []legendItem
}

type tick struct {
	X, Y  int
	Label string
}

type gridLine struct {
	X1, Y1, X2, Y2 int
}

type marker struct {
	X, Y int
}

type legendItem struct {
	Y     int
	Color string
	Dash  string
	Name  string
}

const lineTemplate = `<svg width="{{.Config.Width}}" height="{{.Config.Height}}" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <style>
      .axis { font: 12px sans-serif; fill: {{.Config.TextColor}}; }
      .axis path, .axis line { fill: none; stroke: {{.Config.TextColor}}; shape-rendering: crispEdges; }
      .grid-line { stroke: {{.Config.GridColor}}; stroke-width: 0.5px; }
      .title { font: bold 16px sans-serif; text-anchor: middle; fill: {{.Config.TextColor}}; }
      .axis-label { font: 12px sans-serif; text-anchor: middle; fill: {{.Config.TextColor}}; }
      .legend { font: 12px sans-serif; fill: {{.Config.TextColor}}; }
    </style>
  </defs>

  {{if .Title}}
  <text class="title" x="{{div .Config.Width 2}}" y="20">{{.Title}}</text>
  {{end}}

  <g transform="translate({{.Config.MarginLeft}},{{.Config.MarginTop}})">
    {{range .GridLines}}<line class="grid-line" x1="{{.X1}}" x2="{{.X2}}" y1="{{.Y1}}" y2="{{.Y2}}"></line>{{end}}

    <g class="axis" transform="translate(0,{{.InnerHeight}})">
      {{range .XTicks}}<line x1="{{.X}}" x2="{{.X}}" y1="0" y2="6"></line><text x="{{.X}}" y="20" text-anchor="middle">{{.Label}}</text>{{end}}
      <path d="M0,0H{{$.InnerWidth}}"></path>
      <text class="axis-label" x="{{div .InnerWidth 2}}" y="35">Year</text>
    </g>

    <g class="axis">
      {{range .YTicks}}<line x1="0" x2="-6" y1="{{.Y}}" y2="{{.Y}}"></line><text x="-10" y="{{add .Y 4}}" text-anchor="end">{{.Label}}</text>{{end}}
      <path d="M0,0V{{$.InnerHeight}}"></path>
      <text class="axis-label" transform="rotate(-90)" x="{{neg (div .InnerHeight 2)}}" y="-50">Flow rate</text>
    </g>

    {{if .MaxPath}}
    <path fill="none" stroke="{{.Config.MaxFlowColor}}" stroke-width="1.5px" stroke-dasharray="6,3" d="{{.MaxPath}}"></path>
    {{end}}
    {{if .FlowPath}}
    <path fill="none" stroke="{{.Config.FlowColor}}" stroke-width="2px" d="{{.FlowPath}}"></path>
    {{end}}

    {{if .HasThreshold}}
    <line stroke="{{.Config.ThresholdColor}}" stroke-width="1.5px" stroke-dasharray="4,4" x1="0" x2="{{.InnerWidth}}" y1="{{.ThresholdY}}" y2="{{.ThresholdY}}"></line>
    <text class="legend" x="{{add .InnerWidth -4}}" y="{{add .ThresholdY -5}}" text-anchor="end" fill="{{.Config.ThresholdColor}}">{{.ThresholdTxt}}</text>
    {{end}}

    {{if .HasFailure}}
    <line stroke="{{.Config.ThresholdColor}}" stroke-width="1px" stroke-dasharray="2,4" x1="{{.FailureX}}" x2="{{.FailureX}}" y1="0" y2="{{.InnerHeight}}"></line>
    <text class="legend" x="{{add .FailureX 4}}" y="14" fill="{{.Config.ThresholdColor}}">failure @ year {{.FailureYear}}</text>
    {{end}}

    {{range .Markers}}
    <circle cx="{{.X}}" cy="{{.Y}}" r="4" fill="{{$.Config.OverhaulColor}}" stroke="#ffffff" stroke-width="1px"></circle>
    {{end}}
  </g>

  <g class="legend" transform="translate({{add (add .Config.MarginLeft .InnerWidth) 14}}, {{.Config.MarginTop}})">
    {{range .Legend}}
    <line x1="0" x2="18" y1="{{add .Y 6}}" y2="{{add .Y 6}}" stroke="{{.Color}}" stroke-width="2px"{{if .Dash}} stroke-dasharray="{{.Dash}}"{{end}}></line>
    <text x="24" y="{{add .Y 10}}">{{.Name}}</text>
    {{end}}
  </g>
</svg>`

// Flow renders the flow-rate history as an SVG line chart.
func (r *Renderer) Flow(d FlowData) (string, error) {
	innerW := r.cfg.Width - r.cfg.MarginLeft - r.cfg.MarginRight
	innerH := r.cfg.Height - r.cfg.MarginTop - r.cfg.MarginBottom

	td := lineData{
		Config:      r.cfg,
		Title:       d.Title,
		InnerWidth:  innerW,
		InnerHeight: innerH,
	}
	if len(d.Years) == 0 {
		return r.execute(r.line, td)
	}

	lastYear := d.Years[len(d.Years)-1].Year
	xs := yearScale{maxYear: lastYear, width: innerW}
	ys := newValueScale(valueExtent(d.Years, d.Threshold), innerH)

	td.XTicks = yearTicks(xs, 10)
	td.YTicks, td.GridLines = valueTicksAndGrid(ys, innerW)
	td.FlowPath = linePath(d.Years, xs, ys, func(yr simulation.YearRecord) float64 { return yr.FlowRate })
	td.MaxPath = linePath(d.Years, xs, ys, func(yr simulation.YearRecord) float64 { return yr.MaxFlowRate })

	for _, yr := range d.Years {
		if yr.IsOverhaulYear {
			td.Markers = append(td.Markers, marker{X: xs.scale(yr.Year), Y: ys.scale(yr.FlowRate)})
		}
	}
	if d.Threshold > 0 {
		td.HasThreshold = true
		td.ThresholdY = ys.scale(d.Threshold)
		td.ThresholdTxt = "threshold " + formatTick(d.Threshold, 1)
	}
	if d.FailureYear != simulation.NoFailure && d.FailureYear >= 0 && d.FailureYear <= lastYear {
		td.HasFailure = true
		td.FailureX = xs.scale(d.FailureYear)
		td.FailureYear = d.FailureYear
	}
	td.Legend = []legendItem{
		{Y: 0, Color: r.cfg.FlowColor, Name: "Flow rate"},
		{Y: 20, Color: r.cfg.MaxFlowColor, Dash: "6,3", Name: "Max flow rate"},
	}
	if td.HasThreshold {
		td.Legend = append(td.Legend, legendItem{Y: 40, Color: r.cfg.ThresholdColor, Dash: "4,4", Name: "Threshold"})
	}
	return r.execute(r.line, td)
}

func (r *Renderer) execute(tmpl *template.Template, data interface{}) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("chart: render: %w", err)
	}
	return "<?xml version=\"1.0\" encoding=\"UTF-8\"?>" + b.String(), nil
}

// --- scales and ticks ---

// yearScale maps integer years [0, maxYear] onto [0, width] pixels.
type yearScale struct {
	maxYear int
	width   int
}

func (s yearScale) scale(year int) int {
	if s.maxYear == 0 {
		return 0
	}
	return int(float64(year) / float64(s.maxYear) * float64(s.width))
}

// valueScale maps flow-rate values onto the inverted pixel Y axis.
type valueScale struct {
	min, max float64
	height   int
}

func newValueScale(extent [2]float64, height int) valueScale {
	return valueScale{min: extent[0], max: extent[1], height: height}
}

func (s valueScale) scale(v float64) int {
	d := s.max - s.min
	if d == 0 {
		return s.height
	}
	r := (v - s.min) / d
	return s.height - int(r*float64(s.height))
}

// valueExtent covers every flow and ceiling value plus the threshold rule,
// padded 5% so lines do not touch the frame.
func valueExtent(years []simulation.YearRecord, threshold float64) [2]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, yr := range years {
		lo = math.Min(lo, math.Min(yr.FlowRate, yr.MaxFlowRate))
		hi = math.Max(hi, math.Max(yr.FlowRate, yr.MaxFlowRate))
	}
	if threshold > 0 {
		lo = math.Min(lo, threshold)
		hi = math.Max(hi, threshold)
	}
	if lo > hi {
		return [2]float64{0, 100}
	}
	if lo == hi {
		if lo == 0 {
			return [2]float64{-1, 1}
		}
		pad := math.Abs(lo) * 0.1
		return [2]float64{lo - pad, hi + pad}
	}
	pad := (hi - lo) * 0.05
	return [2]float64{lo - pad, hi + pad}
}

func yearTicks(xs yearScale, maxTicks int) []tick {
	step := 1
	for xs.maxYear/step >= maxTicks {
		switch {
		case step == 1:
			step = 2
		case step == 2:
			step = 5
		default:
			step *= 2
		}
	}
	var ticks []tick
	for y := 0; y <= xs.maxYear; y += step {
		ticks = append(ticks, tick{X: xs.scale(y), Label: fmt.Sprintf("%d", y)})
	}
	return ticks
}

func valueTicksAndGrid(ys valueScale, width int) ([]tick, []gridLine) {
	values := valueTicks(ys.min, ys.max, 6)
	prec := tickPrecision(values)
	ticks := make([]tick, 0, len(values))
	grid := make([]gridLine, 0, len(values))
	for _, v := range values {
		y := ys.scale(v)
		ticks = append(ticks, tick{Y: y, Label: formatTick(v, prec)})
		grid = append(grid, gridLine{X1: 0, Y1: y, X2: width, Y2: y})
	}
	return ticks, grid
}

// valueTicks picks round tick values covering [min, max] using a
// 1/2/5 step ladder scaled to the range's order of magnitude.
func valueTicks(min, max float64, maxTicks int) []float64 {
	if min >= max {
		return []float64{min}
	}
	rawStep := (max - min) / float64(maxTicks-1)
	magnitude := math.Pow(10, math.Floor(math.Log10(rawStep)))
	step := 10 * magnitude
	switch norm := rawStep / magnitude; {
	case norm <= 1:
		step = magnitude
	case norm <= 2:
		step = 2 * magnitude
	case norm <= 5:
		step = 5 * magnitude
	}
	var ticks []float64
	for v := math.Floor(min/step) * step; v <= max+step/2; v += step {
		if v >= min-step/2 {
			ticks = append(ticks, v)
		}
	}
	return ticks
}

// tickPrecision picks enough decimal places to tell adjacent ticks apart.
func tickPrecision(values []float64) int {
	if len(values) <= 1 {
		return 1
	}
	minDiff := math.Inf(1)
	for i := 1; i < len(values); i++ {
		if diff := math.Abs(values[i] - values[i-1]); diff > 0 && diff < minDiff {
			minDiff = diff
		}
	}
	if math.IsInf(minDiff, 0) {
		return 2
	}
	prec := int(math.Max(0, -math.Floor(math.Log10(minDiff)))) + 1
	if prec > 8 {
		prec = 8
	}
	return prec
}

func formatTick(v float64, precision int) string {
	s := fmt.Sprintf("%.*f", precision, v)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func linePath(years []simulation.YearRecord, xs yearScale, ys valueScale, value func(simulation.YearRecord) float64) string {
	if len(years) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteString("M")
	for i, yr := range years {
		x, y := xs.scale(yr.Year), ys.scale(value(yr))
		if i == 0 {
			fmt.Fprintf(&b, "%d,%d", x, y)
		} else {
			fmt.Fprintf(&b, " L%d,%d", x, y)
		}
	}
	return b.String()
}

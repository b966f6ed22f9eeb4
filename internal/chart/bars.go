package chart

import (
	"fmt"

	"github.com/pumpsight/pumpsight/internal/simulation"
)

// FactorData is the input for the decay factor bar chart.
type FactorData struct {
	Title   string
	Impacts []simulation.FactorImpact
}

type barData struct {
	Config      Config
	Title       string
	Height      int
	LabelGutter int
	Bars        []bar
}

type bar struct {
	Y      int
	Height int
	Width  int
	Label  string
	Value  string
}

const (
	barHeight      = 22
	barGap         = 14
	barLabelGutter = 170
	barValueGutter = 150
)

const barTemplate = `<svg width="{{.Config.Width}}" height="{{.Height}}" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <style>
      .title { font: bold 16px sans-serif; text-anchor: middle; fill: {{.Config.TextColor}}; }
      .bar-label { font: 12px sans-serif; text-anchor: end; fill: {{.Config.TextColor}}; }
      .bar-value { font: 12px sans-serif; fill: {{.Config.TextColor}}; }
    </style>
  </defs>

  {{if .Title}}
  <text class="title" x="{{div .Config.Width 2}}" y="20">{{.Title}}</text>
  {{end}}

  <g transform="translate({{.LabelGutter}},{{.Config.MarginTop}})">
    {{range .Bars}}
    <text class="bar-label" x="-10" y="{{add .Y 15}}">{{.Label}}</text>
    <rect x="0" y="{{.Y}}" width="{{.Width}}" height="{{.Height}}" rx="2" fill="{{$.Config.BarColor}}"></rect>
    <text class="bar-value" x="{{add .Width 8}}" y="{{add .Y 15}}">{{.Value}}</text>
    {{end}}
  </g>
</svg>`

// Factors renders per-factor decay contributions as horizontal bars, scaled
// so the largest contribution fills the drawable width.
func (r *Renderer) Factors(d FactorData) (string, error) {
	innerW := r.cfg.Width - barLabelGutter - barValueGutter

	td := barData{
		Config:      r.cfg,
		Title:       d.Title,
		LabelGutter: barLabelGutter,
		Height:      r.cfg.MarginTop + r.cfg.MarginBottom,
	}
	if len(d.Impacts) == 0 {
		td.Height = r.cfg.Height
		return r.execute(r.bars, td)
	}

	maxRate := 0.0
	for _, imp := range d.Impacts {
		if imp.RatePerYear > maxRate {
			maxRate = imp.RatePerYear
		}
	}
	for i, imp := range d.Impacts {
		width := 0
		if maxRate > 0 {
			width = int(imp.RatePerYear / maxRate * float64(innerW))
		}
		td.Bars = append(td.Bars, bar{
			Y:      i * (barHeight + barGap),
			Height: barHeight,
			Width:  width,
			Label:  imp.Name,
			Value:  fmt.Sprintf("%.2f %%/yr (%.1f%%)", imp.RatePerYear, imp.SharePct),
		})
	}
	td.Height = r.cfg.MarginTop + len(d.Impacts)*(barHeight+barGap) + r.cfg.MarginBottom
	return r.execute(r.bars, td)
}

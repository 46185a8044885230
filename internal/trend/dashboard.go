package trend

import (
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Series is one line or dot cloud in a panel.
type Series struct {
	Name string
	X, Y []float64
	// Dots draws markers instead of a line.
	Dots bool
}

// Panel is one chart of the dashboard.
type Panel struct {
	Title  string
	YLabel string
	Series []Series
	// LogY plots the y axis on a log10 scale.
	LogY bool
	// YRange fixes the y axis to [YMin, YMax].
	YRange     bool
	YMin, YMax float64
	// YFloor clamps the lower end of the y axis at zero.
	YFloor bool
	// Missing lists the columns absent from the table.
	Missing []string
}

// Empty reports whether the panel has nothing to draw.
func (p Panel) Empty() bool {
	return len(p.Series) == 0
}

// ratioMax leaves headroom above 1 on ratio panels.
const ratioMax = 1.1

type columnRef []string

var (
	colElapsed       = columnRef{"elapsed_time"}
	colIntensity     = columnRef{"intensity", "primal_intensity"}
	colLocalObj      = columnRef{"local_objective"}
	colGlobalObj     = columnRef{"global_objective"}
	colLocalViol     = columnRef{"local_violation"}
	colGlobalViol    = columnRef{"global_violation"}
	colRelaxing      = columnRef{"is_enabled_penalty_coefficient_relaxing"}
	colTightening    = columnRef{"is_enabled_penalty_coefficient_tightening"}
	colRelaxRate     = columnRef{"penalty_coefficient_relaxing_rate"}
	colTightenRate   = columnRef{"penalty_coefficient_tightening_rate"}
	colReset         = columnRef{"penalty_coefficient_reset_flag", "is_enabled_forcibly_initial_modification"}
	colLocalInit     = columnRef{"employing_local_augmented_solution_flag"}
	colGlobalInit    = columnRef{"employing_global_augmented_solution_flag"}
	colPreviousInit  = columnRef{"employing_previous_solution_flag"}
	colModifications = columnRef{"number_of_initial_modification"}
	colTenure        = columnRef{"initial_tabu_tenure"}
)

type panelBuilder struct {
	iter    []float64
	panel   Panel
	columns [][]float64
}

func (t *Table) panel(title, ylabel string, refs ...columnRef) *panelBuilder {
	b := &panelBuilder{panel: Panel{Title: title, YLabel: ylabel}}
	b.iter, _ = t.Column("iteration")
	for _, ref := range refs {
		col, ok := t.Column(ref...)
		if !ok {
			b.panel.Missing = append(b.panel.Missing, strings.Join(ref, "|"))
		}
		b.columns = append(b.columns, col)
	}
	return b
}

// build adds the series produced by fn unless a column is missing.
func (b *panelBuilder) build(fn func(cols [][]float64) []Series) Panel {
	if len(b.panel.Missing) > 0 {
		slog.Warn("Trend panel has missing columns", "panel", b.panel.Title, "missing", b.panel.Missing)
		return b.panel
	}
	b.panel.Series = fn(b.columns)
	return b.panel
}

func (b *panelBuilder) ratio() *panelBuilder {
	b.panel.YRange = true
	b.panel.YMin, b.panel.YMax = 0, ratioMax
	return b
}

func (b *panelBuilder) floor() *panelBuilder {
	b.panel.YFloor = true
	return b
}

func (b *panelBuilder) line(name string, y []float64) Series {
	return Series{Name: name, X: b.iter, Y: y}
}

func (b *panelBuilder) dots(name string, y []float64) Series {
	return Series{Name: name, X: b.iter, Y: y, Dots: true}
}

// CumulativeRate is cumsum(values)[i] / (iteration[i] + 1): the share of
// iterations so far in which a flag was set.
func CumulativeRate(values, iteration []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	floats.CumSum(out, values)
	for i := range out {
		out[i] /= iteration[i] + 1
	}
	return out
}

// BuildDashboard lays the table out as ten panels, two per row.
func BuildDashboard(t *Table) []Panel {
	var panels []Panel

	b := t.panel("Elapsed Time", "Elapsed Time[s]", colElapsed).floor()
	panels = append(panels, b.build(func(c [][]float64) []Series {
		return []Series{b.line("Elapsed Time", c[0])}
	}))

	b = t.panel("Intensity", "Intensity", colIntensity)
	b.panel.LogY = true
	panels = append(panels, b.build(func(c [][]float64) []Series {
		return []Series{b.line("Intensity", c[0])}
	}))

	b = t.panel("Objective", "Objective", colLocalObj, colGlobalObj)
	panels = append(panels, b.build(func(c [][]float64) []Series {
		return []Series{b.dots("Local Incumbent", c[0]), b.line("Global Incumbent", c[1])}
	}))

	b = t.panel("Violation", "Violation", colLocalViol, colGlobalViol).floor()
	panels = append(panels, b.build(func(c [][]float64) []Series {
		return []Series{b.dots("Local Incumbent", c[0]), b.line("Global Incumbent", c[1])}
	}))

	b = t.panel("Penalty Coefficient Control", "Ratio", colRelaxing, colTightening).ratio()
	panels = append(panels, b.build(func(c [][]float64) []Series {
		relaxing := CumulativeRate(c[0], b.iter)
		tightening := CumulativeRate(c[1], b.iter)
		none := make([]float64, len(relaxing))
		for i := range none {
			none[i] = 1 - relaxing[i] - tightening[i]
		}
		return []Series{
			b.line("Relaxing", relaxing),
			b.line("Tightening", tightening),
			b.line("No Updating", none),
		}
	}))

	b = t.panel("Penalty Coefficient Relaxing/Tightening Rate Control", "Value", colRelaxRate, colTightenRate).ratio()
	panels = append(panels, b.build(func(c [][]float64) []Series {
		return []Series{b.line("Relaxing", c[0]), b.line("Tightening", c[1])}
	}))

	b = t.panel("Penalty Coefficient Reset Control", "Ratio", colReset).ratio()
	panels = append(panels, b.build(func(c [][]float64) []Series {
		return []Series{b.line("Reset", CumulativeRate(c[0], b.iter))}
	}))

	b = t.panel("Initial Solution Control", "Ratio", colLocalInit, colGlobalInit, colPreviousInit).ratio()
	panels = append(panels, b.build(func(c [][]float64) []Series {
		return []Series{
			b.line("Local Incumbent", CumulativeRate(c[0], b.iter)),
			b.line("Global Incumbent", CumulativeRate(c[1], b.iter)),
			b.line("Same as Previous", CumulativeRate(c[2], b.iter)),
		}
	}))

	b = t.panel("Initial Modification Control", "Ratio", colModifications).ratio()
	panels = append(panels, b.build(func(c [][]float64) []Series {
		return []Series{b.line("Initial Modification", CumulativeRate(c[0], b.iter))}
	}))

	b = t.panel("Initial Tabu Tenure Control", "Initial Tabu Tenure", colTenure).floor()
	panels = append(panels, b.build(func(c [][]float64) []Series {
		return []Series{b.line("Initial Tabu Tenure", c[0])}
	}))

	return panels
}

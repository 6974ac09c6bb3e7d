package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Alias1177/RevenueIntel/models"
)

// Workbook collects computed results into an Excel export: one sheet per
// analysis. It only renders the value types the engines return; no numbers
// are computed here.
type Workbook struct {
	wb *excelize.File
}

func NewWorkbook() *Workbook {
	return &Workbook{wb: excelize.NewFile()}
}

// AddMonthlyKPIs writes the monthly KPI series.
func (w *Workbook) AddMonthlyKPIs(series []models.MonthlyAggregate) error {
	const sheet = "Monthly KPIs"
	if err := w.newSheet(sheet, []string{"Month", "Revenue", "Orders", "AOV"}); err != nil {
		return err
	}
	for i, agg := range series {
		row := i + 2
		w.setRow(sheet, row, agg.Period.String(), agg.Revenue, agg.Orders, agg.AOV)
	}
	return nil
}

// AddDecomposition writes the month-over-month attribution table.
func (w *Workbook) AddDecomposition(results []models.DecompositionResult) error {
	const sheet = "Decomposition"
	headers := []string{"Baseline", "Month", "Revenue Change", "Volume Effect", "AOV Effect", "Residual", "Interpretation"}
	if err := w.newSheet(sheet, headers); err != nil {
		return err
	}
	for i, r := range results {
		row := i + 2
		w.setRow(sheet, row,
			r.BaselinePeriod.String(), r.CurrentPeriod.String(),
			r.RevenueDelta, r.VolumeEffect, r.AOVEffect, r.Residual, r.Interpretation)
	}
	return nil
}

// AddPareto writes one concentration ranking under a caller-chosen sheet name
// ("Pareto Products", "Pareto Categories", ...). Rows at or under the cutoff
// rank are the concentration set.
func (w *Workbook) AddPareto(sheet string, result models.ParetoResult) error {
	headers := []string{"Rank", "Name", "Revenue", "Share", "Cumulative Share", "In Top Set"}
	if err := w.newSheet(sheet, headers); err != nil {
		return err
	}
	for i, e := range result.Entries {
		row := i + 2
		w.setRow(sheet, row, e.Rank, e.Name, e.Revenue, e.Share, e.CumulativeShare, e.Rank <= result.CutoffRank)
	}
	return nil
}

// AddForecast writes the horizon projection.
func (w *Workbook) AddForecast(result models.ForecastResult) error {
	const sheet = "Forecast"
	if err := w.newSheet(sheet, []string{"Month", "Forecast Revenue", "Model MAE"}); err != nil {
		return err
	}
	for i, p := range result.Points {
		row := i + 2
		if i == 0 {
			w.setRow(sheet, row, p.Period.String(), p.Revenue, result.MAE)
			continue
		}
		w.setRow(sheet, row, p.Period.String(), p.Revenue)
	}
	return nil
}

// AddScenarios writes a side-by-side what-if comparison grid.
func (w *Workbook) AddScenarios(results []models.ScenarioResult) error {
	const sheet = "Scenarios"
	headers := []string{
		"Scenario", "Price Change", "Volume Change", "Discount",
		"Adjusted Revenue", "Revenue Delta", "Volume Effect", "AOV Effect", "Interpretation",
	}
	if err := w.newSheet(sheet, headers); err != nil {
		return err
	}
	for i, r := range results {
		row := i + 2
		name := r.Assumption.Name
		if name == "" {
			name = fmt.Sprintf("scenario %d", i+1)
		}
		w.setRow(sheet, row,
			name, r.Assumption.PriceChange, r.Assumption.VolumeChange, r.Assumption.Discount,
			r.Adjusted.Revenue, r.Delta.RevenueDelta, r.Delta.VolumeEffect, r.Delta.AOVEffect,
			r.Delta.Interpretation)
	}
	return nil
}

// Save writes the workbook to disk, dropping the default empty sheet first.
func (w *Workbook) Save(path string) error {
	if idx, err := w.wb.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
		// Only delete the default sheet when something else was added.
		if len(w.wb.GetSheetList()) > 1 {
			w.wb.DeleteSheet("Sheet1")
		}
	}
	if err := w.wb.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

func (w *Workbook) newSheet(name string, headers []string) error {
	if _, err := w.wb.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}
	w.setRow(name, 1, toAny(headers)...)
	return nil
}

func (w *Workbook) setRow(sheet string, row int, values ...any) {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			continue
		}
		_ = w.wb.SetCellValue(sheet, cell, v)
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

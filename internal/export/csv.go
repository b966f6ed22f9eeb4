package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pumpsight/pumpsight/internal/simulation"
)

// Filename is the download name offered for exported simulation data.
const Filename = "pump_flow_rate_simulation.csv"

// header is the fixed CSV column layout.
var header = []string{"year", "is_overhaul_year", "max_flow_rate", "flow_rate"}

// Write serializes years as CSV with the header
// year,is_overhaul_year,max_flow_rate,flow_rate.
func Write(w io.Writer, years []simulation.YearRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, yr := range years {
		row := []string{
			strconv.Itoa(yr.Year),
			strconv.FormatBool(yr.IsOverhaulYear),
			strconv.FormatFloat(yr.MaxFlowRate, 'f', -1, 64),
			strconv.FormatFloat(yr.FlowRate, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write year %d: %w", yr.Year, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

// Read parses CSV produced by Write back into year records. The header row
// is required and checked.
func Read(r io.Reader) ([]simulation.YearRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("export: read header: %w", err)
	}
	for i, col := range header {
		if head[i] != col {
			return nil, fmt.Errorf("export: header column %d is %q, want %q", i, head[i], col)
		}
	}

	var years []simulation.YearRecord
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("export: row %d: %w", row, err)
		}

		year, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("export: row %d: year: %w", row, err)
		}
		overhaul, err := strconv.ParseBool(rec[1])
		if err != nil {
			return nil, fmt.Errorf("export: row %d: is_overhaul_year: %w", row, err)
		}
		maxRate, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("export: row %d: max_flow_rate: %w", row, err)
		}
		flow, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("export: row %d: flow_rate: %w", row, err)
		}

		years = append(years, simulation.YearRecord{
			Year:           year,
			IsOverhaulYear: overhaul,
			MaxFlowRate:    maxRate,
			FlowRate:       flow,
		})
	}
	return years, nil
}

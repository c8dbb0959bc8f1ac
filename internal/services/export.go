package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// revenueCSVHeader is the column order of the revenue export
var revenueCSVHeader = []string{"period", "revenue", "bookings", "moving_average", "growth_rate_percent"}

// WriteRevenueCSV writes one row per period of the report. The growth rate of
// the first period is left empty.
func WriteRevenueCSV(w io.Writer, resp *RevenueReportResponse) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(revenueCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	movingAverage := resp.Summary.MovingAverage
	growthRates := resp.Summary.GrowthRates

	for i, row := range resp.Series {
		record := []string{
			row.Period,
			row.Revenue.StringFixed(2),
			strconv.FormatInt(row.Bookings, 10),
			"",
			"",
		}
		if i < len(movingAverage) {
			record[3] = formatFloat(movingAverage[i])
		}
		if i > 0 && i-1 < len(growthRates) {
			record[4] = formatFloat(growthRates[i-1])
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

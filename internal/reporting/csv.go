package reporting

import (
	"fmt"
	"strings"

	"conversion-insight/internal/domain"
)

// RenderConversionsCSV renders the detected conversion events as CSV.
func RenderConversionsCSV(events []domain.ConversionEvent) string {
	var sb strings.Builder

	sb.WriteString("timestamp,amount,token,to_address,tx_hash\n")

	for _, e := range events {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%s,%s,%s\n",
			e.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
			e.Amount,
			e.Token,
			e.ToAddress,
			e.TxHash,
		))
	}

	return sb.String()
}

// RenderScheduleCSV renders the simulated schedule as CSV.
func RenderScheduleCSV(sim domain.SimulationResult) string {
	var sb strings.Builder

	sb.WriteString("date,amount,rate,currency\n")

	for _, c := range sim.Conversions {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%s\n",
			c.Timestamp.UTC().Format("2006-01-02"),
			c.Amount,
			c.Price,
			c.Currency,
		))
	}

	return sb.String()
}

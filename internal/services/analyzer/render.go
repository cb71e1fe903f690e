package analyzer

import (
	"fmt"
	"io"
	"strings"

	"github.com/NordCoder/Netprobe/internal/domain/record"
	"github.com/NordCoder/Netprobe/internal/domain/report"
)

var rule = strings.Repeat("=", 60)

// Render writes the text report printed by the analyze command.
func Render(w io.Writer, rep report.Report) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(rule)
	line("INTERNET CONNECTIVITY ANALYSIS REPORT")
	line(rule)
	line("Analysis Period: %s to %s", rep.Period.From, rep.Period.To)
	line("Total Tests: %d", rep.Period.TotalTests)
	line("")

	c := rep.Connectivity
	line("CONNECTIVITY SUMMARY:")
	line("  Average Score: %s%%", num(c.AverageScore))
	line("  Uptime: %s%%", num(c.UptimePercentage))
	line("  Connectivity Issues: %d", c.ConnectivityIssues)
	line("  Total Outages: %d", c.TotalOutages)
	line("")

	p := rep.Performance
	line("PERFORMANCE METRICS:")
	line("  Avg Ping Success Rate: %s%%", num(p.AveragePingSuccessRate))
	if p.AverageLatencyMs != nil {
		line("  Average Latency: %sms", record.FormatFloat(p.AverageLatencyMs))
	}
	if p.MaxLatencyMs != nil {
		line("  Maximum Latency: %sms", record.FormatFloat(p.MaxLatencyMs))
	}
	line("")

	if len(rep.Outages) > 0 {
		line("OUTAGE DETAILS:")
		for i, o := range rep.Outages {
			line("  %d. %s to %s (~%d minutes)", i+1, o.Start, o.End, o.DurationRecords)
		}
		line("")
	}

	if len(rep.CommonIssues) > 0 {
		line("COMMON ISSUES:")
		for _, ic := range rep.CommonIssues {
			line("  %s: %d occurrences", ic.Issue, ic.Count)
		}
		line("")
	}

	line("RECOMMENDATIONS:")
	for _, r := range rep.Recommendations {
		line("  • %s", r)
	}
	line("")
	line(rule)
	line("This report can be provided to your ISP as evidence of connectivity issues.")

	_, err := io.WriteString(w, b.String())
	return err
}

func num(v float64) string { return record.FormatFloat(&v) }

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/insightdelivered/ledger-insights/internal/analytics"
	"github.com/insightdelivered/ledger-insights/internal/dashboard"
	"github.com/insightdelivered/ledger-insights/internal/models"
)

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.MustParse("en-IN"))
)

// printReport writes the human-readable dashboard summary.
func printReport(out io.Writer, r *dashboard.Report) {
	fmt.Fprintf(out, "Ledger report for %s (%s)\n\n", r.Today.Format("02 Jan 2006"), r.Period)

	fmt.Fprintln(out, "Ledgers:")
	for _, kind := range models.LedgerKinds {
		v := r.Ledgers[kind]
		if len(v.Records) == 0 {
			continue
		}
		printer.Fprintf(out, "  %-8s %14.2f  %-4s %+.2f%%  (%d records)\n",
			titleCaser.String(string(kind)), v.Latest, v.Trend, v.TrendPercent, len(v.Records))
	}

	loans := r.Loans
	if len(loans.Disbursements)+len(loans.Repayments) > 0 {
		fmt.Fprintln(out, "\nLending:")
		printer.Fprintf(out, "  Disbursed %.2f, repaid %.2f, outstanding %.2f\n",
			loans.TotalDisbursed.InexactFloat64(), loans.TotalRepaid.InexactFloat64(), loans.Outstanding.InexactFloat64())
	}

	if len(r.Types.Buckets) > 0 {
		fmt.Fprintln(out, "\nSpend by type:")
		for _, k := range analytics.SortedKeys(r.Types.Buckets) {
			b := r.Types.Buckets[k]
			printer.Fprintf(out, "  %-18s %14.2f  (%d, avg %.2f)\n", k, b.Sum.InexactFloat64(), b.Count, b.Average.InexactFloat64())
		}
	}

	if o := r.Outliers; o.Retained > 0 {
		fmt.Fprintln(out, "\nTransaction range:")
		printer.Fprintf(out, "  Mean %.2f, std dev %.2f, band %.2f to %.2f, %d of %d outside\n",
			o.Mean, o.StdDev, o.Lower, o.Upper, o.Outliers, o.Retained)
	}

	if f := r.Forecast; f.Transactions > 0 || f.PocketMoney != 0 {
		fmt.Fprintln(out, "\nPocket money:")
		printer.Fprintf(out, "  Balance %.2f, spent %.2f over %d day(s)\n", f.PocketMoney, f.TotalSpend, f.DaysSinceFirst)
		printer.Fprintf(out, "  Average %.2f/day, lasts %d more day(s)\n", f.AvgDailySpend, f.DaysUntilDepleted)
		printer.Fprintf(out, "  Recommended %.2f/day and %.2f/transaction for the %d day(s) left this %s\n",
			f.RecommendedAvgDailySpend, f.RecommendedAvgTransactionSize, f.RemainingDaysInPeriod, r.Period)
	}

	if len(r.Funds.Funds) > 0 {
		fmt.Fprintln(out, "\nFunds:")
		for _, fs := range r.Funds.Funds {
			printer.Fprintf(out, "  %-24s invested %.2f, units %.2f, avg growth %.2f%%\n",
				fs.Fund, fs.TotalInvested.InexactFloat64(), fs.TotalUnits.InexactFloat64(), fs.AverageGrowth)
		}
	}

	var goals []string
	for _, metric := range sortedMetrics(r.Budget) {
		p := r.Budget[metric]
		if !p.HasLimit() {
			continue
		}
		mark := ""
		if p.GoalReached {
			mark = "  reached"
		}
		goals = append(goals, printer.Sprintf("  %-18s %14.2f of %.2f (%.0f%%)%s", metric, p.Value, *p.Limit, p.Ratio*100, mark))
	}
	if len(goals) > 0 {
		fmt.Fprintln(out, "\nBudget:")
		fmt.Fprintln(out, strings.Join(goals, "\n"))
	}

	if n := r.SkipCount(); n > 0 {
		fmt.Fprintf(out, "\n%d row(s) skipped:\n", n)
		for _, kind := range models.LedgerKinds {
			for _, d := range r.Diagnostics[kind].Details {
				fmt.Fprintf(out, "  %s line %d: %s\n", kind, d.Line, d.Reason)
			}
		}
	}
}

func sortedMetrics(m map[string]analytics.Progress) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/utils"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEntry(w io.Writer, instrument string, entry model.HistoryEntry) {
	a := entry.Analysis
	fmt.Fprintf(w, "%s analysis %s (%s)\n", instrument, entry.ID, entry.Timestamp)
	fmt.Fprintf(w, "Preferences: lot %g, target $%d, %s\n\n", entry.Preferences.LotSize, entry.Preferences.ProfitTarget, entry.Preferences.RiskProfile)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Trend\t%s\n", a.Trend)
	fmt.Fprintf(tw, "Structure\t%s\n", a.Structure)
	fmt.Fprintf(tw, "Volatility\t%s\n", a.Volatility)
	fmt.Fprintf(tw, "Support\t%s\n", joinLevels(a.SupportLevels))
	fmt.Fprintf(tw, "Resistance\t%s\n", joinLevels(a.ResistanceLevels))
	fmt.Fprintf(tw, "Liquidity\t%s\n", strings.Join(a.LiquidityZones, "; "))
	fmt.Fprintf(tw, "Bias\t%s\n", a.Bias)
	if len(a.NewsWarnings) > 0 {
		fmt.Fprintf(tw, "News\t%s\n", strings.Join(a.NewsWarnings, "; "))
	}
	tw.Flush()

	p := entry.Plan
	if p == nil {
		fmt.Fprintln(w, "\nNo trade plan.")
		return
	}
	exposure := dto.NewPlanExposure(p, entry.Preferences.LotSize)
	fmt.Fprintf(w, "\n%s LIMIT @ %s (%s, %s)\n", p.Direction, utils.FormatPrice(p.EntryPrice), p.Status, p.Timestamp)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if exposure != nil {
		fmt.Fprintf(tw, "Take profit\t%s\t%s\n", utils.FormatPrice(p.TakeProfit), utils.FormatUSD(exposure.RewardUSD))
		fmt.Fprintf(tw, "Stop loss\t%s\t%s\n", utils.FormatPrice(p.StopLoss), utils.FormatUSD(-exposure.RiskUSD))
	}
	fmt.Fprintf(tw, "Risk/reward\t%s\n", p.RiskReward)
	fmt.Fprintf(tw, "Confidence\t%s\n", utils.FormatPercent(p.Confidence))
	if p.TimeHorizon != "" {
		fmt.Fprintf(tw, "Horizon\t%s\n", p.TimeHorizon)
	}
	tw.Flush()
}

func printHistoryList(w io.Writer, entries []model.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "History is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tTIME\tTREND\tPLAN\tRISK")
	for i, e := range entries {
		plan := "-"
		if e.Plan != nil {
			plan = fmt.Sprintf("%s @ %s", e.Plan.Direction, utils.FormatPrice(e.Plan.EntryPrice))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, e.ID, e.Timestamp, e.Analysis.Trend, plan, e.Preferences.RiskProfile)
	}
	tw.Flush()
}

func joinLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = utils.FormatPrice(l)
	}
	return strings.Join(parts, ", ")
}

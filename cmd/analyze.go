package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gold-analyst/internal/model"
	"gold-analyst/internal/repository"
	"gold-analyst/internal/service"

	"github.com/spf13/cobra"
)

var (
	analyzeLot    float64
	analyzeTarget int
	analyzeRisk   string
	analyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis, store it in history and print it",
	RunE:  Analyze,
}

func Analyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	patch, err := analyzePatch(cmd)
	if err != nil {
		return err
	}

	appDep, err := NewAppDependency(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer appDep.Close()

	repo, err := repository.NewRepository(appDep.cfg, appDep.log, appDep.validator, appDep.slot)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	services := service.NewService(appDep.cfg, appDep.log, repo)
	services.SessionService.LoadHistory(ctx)
	services.SessionService.UpdatePreferences(patch)

	if timeout := appDep.cfg.Scheduler.TimeoutDuration; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := services.SessionService.TriggerAnalysis(ctx)
	if err != nil {
		return err
	}

	entry, err := services.SessionService.GetHistory(result.Analysis.ID)
	if err != nil {
		// the run succeeded but was not kept; print it with the live preferences
		entry = model.HistoryEntry{
			ID:          result.Analysis.ID,
			Analysis:    result.Analysis,
			Plan:        result.Plan,
			Preferences: services.SessionService.Preferences(),
		}
	}

	if analyzeJSON {
		return printJSON(cmd.OutOrStdout(), entry)
	}
	printEntry(cmd.OutOrStdout(), appDep.cfg.App.Instrument, entry)
	return nil
}

func analyzePatch(cmd *cobra.Command) (model.PreferencesPatch, error) {
	var patch model.PreferencesPatch
	flags := cmd.Flags()
	if flags.Changed("lot") {
		patch.LotSize = &analyzeLot
	}
	if flags.Changed("target") {
		patch.ProfitTarget = &analyzeTarget
	}
	if flags.Changed("risk") {
		risk, err := model.ParseRiskProfile(analyzeRisk)
		if err != nil {
			return patch, err
		}
		patch.RiskProfile = &risk
	}
	return patch, nil
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeLot, "lot", 0, "lot size (1 lot = 100 oz)")
	analyzeCmd.Flags().IntVar(&analyzeTarget, "target", 0, "profit target in USD")
	analyzeCmd.Flags().StringVar(&analyzeRisk, "risk", "", "risk profile: Conservative, Balanced or Aggressive")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the result as JSON")
}

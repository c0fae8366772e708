package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/chargeflow/config"
	"github.com/kilianp07/chargeflow/core/model"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a site configuration",
	Long:  "Builds the constraint model and verifies the all-zero schedule is feasible.",
	RunE:  check,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	oracle, err := cfg.Site.BuildOracle()
	if err != nil {
		return fmt.Errorf("site oracle: %w", err)
	}

	baseline := model.NewSchedule()
	for _, id := range oracle.Stations() {
		baseline.SetRate(id, 0, 0)
	}
	if !oracle.IsFeasible(baseline, 0) {
		return fmt.Errorf("constraint model rejects the all-zero schedule: %v", oracle.Violations(baseline, 0))
	}

	cmd.Printf("site ok: %d stations, %d constraints\n", len(cfg.Site.Stations), len(cfg.Site.Constraints))
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marthaea/link-guardian-safecheck/internal/audit"
	"github.com/marthaea/link-guardian-safecheck/internal/config"
	"github.com/marthaea/link-guardian-safecheck/internal/intel"
	"github.com/marthaea/link-guardian-safecheck/internal/scan"
	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

var (
	scanConfigFile string
	scanJSON       bool
	scanOffline    bool
	scanAuditFile  string
)

var scanCmd = &cobra.Command{
	Use:   "scan [url or email]...",
	Short: "Scan one or more URLs or email addresses",
	Long: `Run the full suspicion analysis on each input and print the verdict.
With --json the full verdict objects are printed; otherwise a readable
report is written for each input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanConfigFile, "config", "", "Path to profile YAML file (default: built-in profile)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print verdicts as JSON")
	scanCmd.Flags().BoolVar(&scanOffline, "offline", false, "Skip external signal sources (heuristics only)")
	scanCmd.Flags().StringVar(&scanAuditFile, "audit-log", "", "Path to audit log file (default: no audit log)")
}

func loadProfile(path string) (*config.Profile, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

func runScan(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("component", "linkguardian").Logger()
	if !scanJSON {
		logger = logger.Level(zerolog.WarnLevel)
	}

	profile, err := loadProfile(scanConfigFile)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	auditLogger := audit.NopLogger()
	if scanAuditFile != "" {
		auditLogger, err = audit.NewFileLogger(scanAuditFile)
		if err != nil {
			return fmt.Errorf("creating audit logger: %w", err)
		}
	}

	var sources []intel.Source
	if !scanOffline {
		sources = scan.BuildSources(profile, logger)
	}

	svc := scan.New(profile, sources, auditLogger, logger)
	verdicts := svc.ScanAll(cmd.Context(), args)

	if scanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(verdicts) == 1 {
			return enc.Encode(verdicts[0])
		}
		return enc.Encode(verdicts)
	}

	for _, v := range verdicts {
		printVerdict(v)
	}

	for _, v := range verdicts {
		if v.WarningLevel == verdict.LevelDanger {
			return fmt.Errorf("dangerous input detected")
		}
	}
	return nil
}

func printVerdict(v verdict.Verdict) {
	fmt.Fprintf(os.Stdout, "\n=== %s ===\n\n", v.Input)
	fmt.Fprintf(os.Stdout, "  Type:    %s\n", v.Kind)
	fmt.Fprintf(os.Stdout, "  Domain:  %s\n", v.Domain)
	fmt.Fprintf(os.Stdout, "  Level:   %s\n", v.WarningLevel)
	fmt.Fprintf(os.Stdout, "  Risk:    %d/100\n", v.RiskScore)
	if v.Degraded {
		fmt.Fprintf(os.Stdout, "  Note:    external verification unavailable\n")
	}
	fmt.Fprintf(os.Stdout, "\n%s\n", v.ThreatDetails)
}

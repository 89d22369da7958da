package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marthaea/link-guardian-safecheck/internal/heuristic"
	"github.com/marthaea/link-guardian-safecheck/internal/target"
)

var testConfigFile string

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run built-in scenarios against the heuristic rules",
	Long:  "Run a suite of known-bad and known-good inputs to verify the heuristic battery and thresholds behave as expected.",
	RunE:  runTest,
}

func init() {
	testCmd.Flags().StringVar(&testConfigFile, "config", "", "Path to profile YAML file (default: built-in profile)")
}

type scenario struct {
	name     string
	input    string
	expected heuristic.RiskLevel
}

var scenarios = []scenario{
	// Should score high — stacked phishing signals
	{
		name:     "ip_host_verify_page",
		input:    "http://192.168.4.2/verify-account.html",
		expected: heuristic.RiskHigh,
	},
	{
		name:     "paypal_typosquat",
		input:    "http://paypa1-secure-login.com",
		expected: heuristic.RiskHigh,
	},
	{
		name:     "throwaway_tld_lure",
		input:    "http://winner-update.tk/verify",
		expected: heuristic.RiskHigh,
	},
	{
		name:     "crypto_doubler_on_free_hosting",
		input:    "https://cdn.weebly.com/free-bitcoin-doubler",
		expected: heuristic.RiskHigh,
	},

	// Should score medium — one strong signal
	{
		name:     "shortener_with_lure",
		input:    "https://bit.ly/free-prize",
		expected: heuristic.RiskMedium,
	},

	// Should score low — benign
	{
		name:     "known_safe_domain",
		input:    "https://google.com",
		expected: heuristic.RiskLow,
	},
	{
		name:     "plain_corporate_email",
		input:    "support@paypal.com",
		expected: heuristic.RiskLow,
	},
	{
		name:     "benign_docs_link",
		input:    "https://example.com/docs",
		expected: heuristic.RiskLow,
	},
}

func runTest(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile(testConfigFile)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	scorer := heuristic.New()

	fmt.Fprintf(os.Stderr, "\n=== LinkGuardian Heuristic Tests ===\n")
	fmt.Fprintf(os.Stderr, "Profile: %s (%s)\n\n", profile.ProfileName, profile.Version)

	passed := 0
	failed := 0

	for _, sc := range scenarios {
		analysis := scorer.Score(target.Parse(sc.input))
		heuristic.Classify(&analysis, profile.Heuristic)
		actual := analysis.RiskLevel

		status := "PASS"
		if actual != sc.expected {
			status = "FAIL"
			failed++
		} else {
			passed++
		}

		fmt.Fprintf(os.Stderr, "  [%s] %-32s expected=%-8s got=%-8s score=%d\n",
			status, sc.name, sc.expected, actual, analysis.Score)
	}

	fmt.Fprintf(os.Stderr, "\n  Results: %d passed, %d failed, %d total\n\n",
		passed, failed, len(scenarios))

	if failed > 0 {
		return fmt.Errorf("%d scenario(s) failed", failed)
	}
	return nil
}

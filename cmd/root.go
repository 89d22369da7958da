package cmd

import "github.com/spf13/cobra"

// Version is set at build time.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "linkguardian",
	Short: "LinkGuardian — suspicion scoring for URLs and email addresses",
	Long: `LinkGuardian checks URLs and email addresses for signs of phishing
and scam activity. Inputs run through a battery of heuristic pattern rules,
optionally enriched with external reputation signals, and come back with a
risk score, a safe/warning/danger verdict, and a human-readable explanation.`,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("linkguardian v%s\n", Version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marthaea/link-guardian-safecheck/internal/audit"
	"github.com/marthaea/link-guardian-safecheck/internal/dashboard"
	"github.com/marthaea/link-guardian-safecheck/internal/history"
	"github.com/marthaea/link-guardian-safecheck/internal/scan"
	"github.com/marthaea/link-guardian-safecheck/internal/server"
)

var (
	serveConfigFile string
	listenAddr      string
	historyDBPath   string
	auditFile       string
	noDashboard     bool
	noHistory       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LinkGuardian HTTP API",
	Long: `Start the HTTP server exposing the check API, scan history, and the
real-time dashboard.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "configs/default.yaml", "Path to profile YAML file")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Address to listen on (overrides profile)")
	serveCmd.Flags().StringVar(&historyDBPath, "history-db", "", "Path to the scan history SQLite file (overrides profile)")
	serveCmd.Flags().StringVar(&auditFile, "audit-log", "", "Path to audit log file (default: stderr)")
	serveCmd.Flags().BoolVar(&noDashboard, "no-dashboard", false, "Disable the real-time dashboard")
	serveCmd.Flags().BoolVar(&noHistory, "no-history", false, "Disable scan history persistence")
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("component", "linkguardian").Logger()

	profile, err := loadProfile(serveConfigFile)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	logger.Info().
		Str("profile", profile.ProfileName).
		Str("version", profile.Version).
		Bool("simulate", profile.Sources.Simulate).
		Bool("ipqs", profile.Sources.IPQS.Enabled).
		Msg("profile loaded")

	if listenAddr == "" {
		listenAddr = profile.Server.Listen
	}
	if historyDBPath == "" {
		historyDBPath = profile.Server.HistoryDB
	}

	var auditLogger *audit.Logger
	if auditFile != "" {
		auditLogger, err = audit.NewFileLogger(auditFile)
		if err != nil {
			return fmt.Errorf("creating audit logger: %w", err)
		}
		logger.Info().Str("path", auditFile).Msg("audit log enabled")
	} else {
		auditLogger = audit.NewStderrLogger()
	}

	var store *history.Store
	if !noHistory && historyDBPath != "" {
		store, err = history.Open(historyDBPath)
		if err != nil {
			return fmt.Errorf("opening history db: %w", err)
		}
		defer store.Close()
		logger.Info().Str("path", historyDBPath).Msg("scan history enabled")
	}

	sources := scan.BuildSources(profile, logger)
	svc := scan.New(profile, sources, auditLogger, logger)
	apiServer := server.New(svc, store, logger)

	var handler http.Handler = apiServer

	if !noDashboard {
		hub := dashboard.NewHub(profile)
		svc.AddObserver(hub.OnEvent)
		dashboard.Run(context.Background(), hub)

		dashHandler := dashboard.Handler(hub)
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/_dashboard") {
				dashHandler.ServeHTTP(w, r)
				return
			}
			apiServer.ServeHTTP(w, r)
		})
	}

	logger.Info().
		Str("listen", listenAddr).
		Int("sources", len(sources)).
		Msg("starting linkguardian server")

	fmt.Fprintf(os.Stderr, "\n  LinkGuardian v%s\n", Version)
	fmt.Fprintf(os.Stderr, "  Profile: %s (%s)\n", profile.ProfileName, profile.Version)
	fmt.Fprintf(os.Stderr, "  Listen:  %s\n", listenAddr)
	if !noDashboard {
		dashAddr := listenAddr
		if strings.HasPrefix(dashAddr, ":") {
			dashAddr = "localhost" + dashAddr
		}
		fmt.Fprintf(os.Stderr, "  Dashboard: http://%s/_dashboard/\n", dashAddr)
	}
	fmt.Fprintln(os.Stderr)

	srv := apiServer.HTTPServer(listenAddr)
	srv.Handler = handler
	return srv.ListenAndServe()
}

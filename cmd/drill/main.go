// Command drill runs the AI trading-model incident response drill:
// either as an HTTP service for a presentation host (serve) or as a
// one-shot simulation printed to the terminal (run).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantlab/incident-drill/internal/app"
	"github.com/quantlab/incident-drill/internal/config"
	"github.com/quantlab/incident-drill/internal/domain"
	"github.com/quantlab/incident-drill/internal/drill"
	"github.com/quantlab/incident-drill/internal/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	outputPath string
	showDraft  bool
)

var rootCmd = &cobra.Command{
	Use:   "drill",
	Short: "AI trading-model incident response drill",
	Long: `drill walks a responder through the eight-phase incident response
workflow for a degraded AI trading model, assembling a governance-grade
incident record and a committee-ready formal report.

Use "drill serve" to expose the workflow as an HTTP API for a
presentation host, or "drill run" to execute the whole scenario
non-interactively and print the final report.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the drill HTTP service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		application, err := app.New(cfg)
		if err != nil {
			return fmt.Errorf("init application: %w", err)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- application.Run()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-stop:
			fmt.Fprintf(cmd.ErrOrStderr(), "received %s, shutting down\n", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return application.Shutdown(shutdownCtx)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full simulation non-interactively",
	Long: `run executes every phase of the drill in order and prints the final
incident report. With --show-draft the pre-prevention draft report is
printed first, demonstrating the preventive-measures placeholder.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()

		inc := drill.NewIncident()

		fmt.Fprintln(out, "*** CRITICAL AI MODEL ALERT DETECTED ***")
		fmt.Fprintf(out, "Incident ID: %s\n", inc.ID)
		fmt.Fprintf(out, "Model: %s\n", inc.Model)
		fmt.Fprintf(out, "Severity: %s\n", inc.Severity)
		fmt.Fprintf(out, "Date Detected: %s at %s\n", inc.DateDetected,
			inc.Detect.AlertTimestamp.Format("15:04:05"))
		fmt.Fprintf(out, "Trigger: %s\n", inc.Detect.Trigger)

		steps := []struct {
			phase domain.Phase
			apply func() error
		}{
			{domain.PhaseContain, func() error { return drill.Contain(inc) }},
			{domain.PhaseInvestigate, func() error { return drill.Investigate(inc) }},
			{domain.PhaseRemediate, func() error { return drill.Remediate(inc) }},
			{domain.PhaseDocument, func() error { return drill.Document(inc, time.Now()) }},
		}
		for _, step := range steps {
			if err := step.apply(); err != nil {
				return fmt.Errorf("%s: %w", step.phase, err)
			}
			fmt.Fprintf(out, "\n--- PHASE: %s ---\n", step.phase.Label())
		}

		if showDraft {
			draft, err := drill.FormatReport(inc)
			if err != nil {
				return fmt.Errorf("format draft report: %w", err)
			}
			fmt.Fprintln(out, "\nDraft report (before prevention phase):")
			fmt.Fprintln(out, draft)
		}

		if err := drill.PreventRecurrence(inc); err != nil {
			return fmt.Errorf("%s: %w", domain.PhasePrevent, err)
		}
		fmt.Fprintf(out, "\n--- PHASE: %s ---\n", domain.PhasePrevent.Label())

		report, err := drill.FormatReport(inc)
		if err != nil {
			return fmt.Errorf("format report: %w", err)
		}

		if outputPath != "" {
			if err := os.WriteFile(outputPath, []byte(report), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(out, "\nReport written to %s\n", outputPath)
			return nil
		}

		fmt.Fprintln(out, "\nFinal incident report:")
		fmt.Fprintln(out, report)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "drill %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildDate)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the final report to a file instead of stdout")
	runCmd.Flags().BoolVar(&showDraft, "show-draft", false, "also print the pre-prevention draft report")

	rootCmd.AddCommand(serveCmd, runCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

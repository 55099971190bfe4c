package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	forecaster "github.com/aouyang1/go-weibull-forecaster"
	"github.com/aouyang1/go-weibull-forecaster/forecast/options"
	"github.com/aouyang1/go-weibull-forecaster/internal/api"
	"github.com/aouyang1/go-weibull-forecaster/internal/config"
	"github.com/aouyang1/go-weibull-forecaster/internal/metrics"
	"github.com/aouyang1/go-weibull-forecaster/timedataset"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weibull-forecaster",
		Short: "Fit a scaled Weibull curve to period counts and forecast over the observed horizon",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(fitCmd())
	return rootCmd
}

// serveCmd runs the forecast API
func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	return cmd
}

func serve(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"fit_timeout", cfg.Server.FitTimeout,
		"rate_limit_rps", cfg.Server.RateLimit.RPS,
		"solver", cfg.Forecast.SolverName(),
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	handler := api.New(cfg, m)

	go func() {
		err := config.Watch(ctx, configPath, func(newCfg *config.Config) {
			if newCfg.Server.HTTPPort != cfg.Server.HTTPPort {
				slog.Warn("config: http_port change requires a restart",
					"current", cfg.Server.HTTPPort, "configured", newCfg.Server.HTTPPort)
			}
			handler.Reload(newCfg)
			m.ConfigReloads.Inc()
		})
		if err != nil {
			slog.Error("config: unable to watch", "path", configPath, "error", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("weibull-forecaster shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	return httpSrv.Shutdown(shutdownCtx)
}

type fitFlags struct {
	input           string
	output          string
	plot            string
	distribution    bool
	summary         bool
	solver          string
	iterations      int
	tolerance       float64
	numericGradient bool
}

// fitCmd fits a JSON file of observations and writes the forecast records
func fitCmd() *cobra.Command {
	var flags fitFlags

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit observations from a JSON file and write the forecast",
		Long: `Reads a JSON array of {"time": n, "measure": n} observations, fits a scaled
Weibull curve to the non-zero measures and writes a JSON array of
{"time": n, "forecast": n} records covering the forecast horizon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "-", "Observations JSON file, - for stdin")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "-", "Forecast JSON file, - for stdout")
	cmd.Flags().StringVar(&flags.plot, "plot", "", "Write an html plot of the fit to this path")
	cmd.Flags().BoolVar(&flags.distribution, "distribution", false, "Include the reference Weibull cdf and pdf")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "Print the fitted model summary to stderr")
	cmd.Flags().StringVar(&flags.solver, "solver", "lm", "Least squares solver, lm or bfgs")
	cmd.Flags().IntVar(&flags.iterations, "iterations", 0, "Solver iteration budget, 0 for the solver default")
	cmd.Flags().Float64Var(&flags.tolerance, "tolerance", 0, "Solver convergence tolerance, 0 for the solver default")
	cmd.Flags().BoolVar(&flags.numericGradient, "numeric-gradient", false, "Use finite differences instead of the analytic gradient")
	return cmd
}

func runFit(stdin io.Reader, stdout, stderr io.Writer, flags fitFlags) error {
	in := stdin
	if flags.input != "" && flags.input != "-" {
		file, err := os.Open(flags.input)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	obs, err := timedataset.DecodeObservations(in)
	if err != nil {
		return err
	}

	opt := &forecaster.Options{
		ForecastOptions: &options.Options{
			Solver:          flags.solver,
			Iterations:      flags.iterations,
			Tolerance:       flags.tolerance,
			NumericGradient: flags.numericGradient,
		},
		IncludeDistribution: flags.distribution,
	}

	f, err := forecaster.New(opt)
	if err != nil {
		return err
	}
	if err := f.Fit(obs); err != nil {
		return err
	}

	res, err := f.Forecast()
	if err != nil {
		return err
	}

	if flags.summary {
		m, err := f.Model()
		if err != nil {
			return err
		}
		if err := m.TablePrint(stderr); err != nil {
			return err
		}
	}

	if flags.plot != "" {
		if err := writePlot(f, flags.plot); err != nil {
			return err
		}
	}

	out := stdout
	if flags.output != "" && flags.output != "-" {
		file, err := os.Create(flags.output)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Records())
}

func writePlot(f *forecaster.Forecaster, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.PlotFit(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sleepsentinel/internal/activity"
	"sleepsentinel/internal/agent"
	"sleepsentinel/internal/config"
	"sleepsentinel/internal/fsutil"
	"sleepsentinel/internal/logging"
	"sleepsentinel/internal/tui"
)

const (
	version = "0.1.0-dev"

	uiShutdownTimeout = 2 * time.Second
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "sleepsentinel",
		Short:         "Put the computer to sleep once network and input activity stop",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "configuration file layered over the system config")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug|info|warn|error|critical")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newLogsCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig resolves the layered configuration and applies --log-level
func loadConfig(flags *globalFlags) (config.Config, error) {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return cfg, err
	}
	if flags.logLevel != "" {
		level, err := logging.ParseLevel(flags.logLevel)
		if err != nil {
			return cfg, err
		}
		cfg.Logging.Level = string(level)
	}
	return cfg, nil
}

// openLogger opens the session log file, truncating the previous run's log.
// When the file cannot be opened events go to stderr instead.
func openLogger(cfg config.Config, stderr io.Writer) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	format := logging.Format(cfg.Logging.Format)

	path := fsutil.LogFilePath(cfg.Logging.File)
	if err := fsutil.EnsureStateDirectory(filepath.Dir(path)); err == nil {
		if logger, err := logging.NewSessionFileLogger(level, path); err == nil {
			logger.SetFormat(format)
			return logger
		}
	}

	logger := logging.NewWriterLogger(level, format, stderr)
	logger.Warn("app.log_file.unavailable", "Logging to stderr", map[string]interface{}{
		"path": path,
	})
	return logger
}

func logStarted(logger *logging.Logger, mode string, cfg config.Config) {
	logger.Info("app.started", "Application started", map[string]interface{}{
		"version":                 version,
		"mode":                    mode,
		"inactivity_limit_s":      cfg.Monitor.InactivityLimitSeconds,
		"download_threshold_mbps": cfg.Monitor.DownloadThresholdMbps,
		"upload_threshold_mbps":   cfg.Monitor.UploadThresholdMbps,
		"dry_run":                 cfg.Power.DryRun,
	})
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(flags)
		},
	}
}

func runTUI(flags *globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger := openLogger(cfg, os.Stderr)
	defer fsutil.CloseWithError(logger.Close, logger, "log file")

	startTime := time.Now()
	logStarted(logger, "tui", cfg)

	feed := activity.NewFeed("terminal")
	a := agent.NewAgent(agent.Options{
		Config:        cfg,
		ConfigPath:    flags.configPath,
		HandleSignals: true,
		Sources:       []activity.Source{feed},
	}, logger)

	p := tea.NewProgram(tui.NewModel(a, feed, logger), tea.WithAltScreen(), tea.WithMouseCellMotion())

	// the sleep trigger exits the process; give the terminal back first
	uiDone := make(chan struct{})
	a.SetExit(func(code int) {
		p.Quit()
		select {
		case <-uiDone:
		case <-time.After(uiShutdownTimeout):
		}
		os.Exit(code)
	})

	agentErr := make(chan error, 1)
	go func() { agentErr <- a.Run() }()
	go func() {
		<-a.Done()
		p.Quit()
	}()

	_, uiErr := p.Run()
	close(uiDone)

	_ = a.Shutdown()
	runErr := <-agentErr

	exitReason := "normal"
	if uiErr != nil || runErr != nil {
		exitReason = "error"
	}
	logger.Info("app.exited", "Application exited", map[string]interface{}{
		"reason":           exitReason,
		"duration_seconds": time.Since(startTime).Seconds(),
	})

	if uiErr != nil {
		return fmt.Errorf("error running TUI: %w", uiErr)
	}
	return runErr
}

type runFlags struct {
	limit    int
	download float64
	upload   float64
	dryRun   bool
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Monitor headless, starting immediately",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, rf, &cfg)
			if errs := cfg.Validate(); len(errs) > 0 {
				return fmt.Errorf("invalid settings: %w", errors.Join(validationErrs(errs)...))
			}
			return runHeadless(cmd.OutOrStdout(), flags, cfg)
		},
	}
	cmd.Flags().IntVar(&rf.limit, "limit", 0, "inactivity limit in seconds")
	cmd.Flags().Float64Var(&rf.download, "download", 0, "download threshold in Mbps")
	cmd.Flags().Float64Var(&rf.upload, "upload", 0, "upload threshold in Mbps")
	cmd.Flags().BoolVar(&rf.dryRun, "dry-run", false, "log power actions instead of performing them")
	return cmd
}

// applyRunFlags overrides only the flags given on the command line
func applyRunFlags(cmd *cobra.Command, rf *runFlags, cfg *config.Config) {
	if cmd.Flags().Changed("limit") {
		cfg.Monitor.InactivityLimitSeconds = rf.limit
	}
	if cmd.Flags().Changed("download") {
		cfg.Monitor.DownloadThresholdMbps = rf.download
	}
	if cmd.Flags().Changed("upload") {
		cfg.Monitor.UploadThresholdMbps = rf.upload
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Power.DryRun = rf.dryRun
	}
}

func validationErrs(errs []config.ValidationError) []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

func runHeadless(out io.Writer, flags *globalFlags, cfg config.Config) error {
	logger := openLogger(cfg, os.Stderr)
	defer fsutil.CloseWithError(logger.Close, logger, "log file")

	startTime := time.Now()
	logStarted(logger, "headless", cfg)

	_, _ = fmt.Fprintf(out, "Monitoring: sleep after %ds below %.2f Mbps down / %.2f Mbps up\n",
		cfg.Monitor.InactivityLimitSeconds, cfg.Monitor.DownloadThresholdMbps, cfg.Monitor.UploadThresholdMbps)
	if path := logger.Path(); path != "" {
		_, _ = fmt.Fprintf(out, "Log: %s\n", path)
	}

	a := agent.NewAgent(agent.Options{
		Config:        cfg,
		ConfigPath:    flags.configPath,
		Autostart:     true,
		HandleSignals: true,
	}, logger)

	err := a.Run()

	logger.Info("app.exited", "Application exited", map[string]interface{}{
		"duration_seconds": time.Since(startTime).Seconds(),
	})
	return err
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration commands"}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "test [path]",
		Short: "Test configuration file for validity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigTest(cmd.OutOrStdout(), flags, args)
		},
	})
	return cfgCmd
}

// runConfigTest validates configuration file(s)
func runConfigTest(out io.Writer, flags *globalFlags, args []string) error {
	logger := logging.NewLogger(logging.LevelInfo)

	var cfg config.Config
	var configErr error

	if len(args) > 0 {
		_, _ = fmt.Fprintf(out, "Testing configuration file: %s\n", args[0])
		cfg, configErr = config.LoadFrom(args[0])
	} else {
		_, _ = fmt.Fprintln(out, "Testing configuration (defaults + system + --config):")
		_, _ = fmt.Fprintf(out, "  System config: %s\n", config.SystemConfigPath())
		if flags.configPath != "" {
			_, _ = fmt.Fprintf(out, "  Explicit config: %s\n", flags.configPath)
		}
		_, _ = fmt.Fprintln(out)
		cfg, configErr = config.Resolve(flags.configPath)
	}

	if configErr != nil {
		logger.Error("config.validation.error", "Configuration validation failed", map[string]interface{}{
			"error": configErr.Error(),
		})
		return fmt.Errorf("configuration validation FAILED: %w", configErr)
	}

	_, _ = fmt.Fprintln(out, "✓ Configuration is VALID")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Configuration Summary:")
	_, _ = fmt.Fprintf(out, "  Inactivity Limit:     %ds\n", cfg.Monitor.InactivityLimitSeconds)
	_, _ = fmt.Fprintf(out, "  Download Threshold:   %.2f Mbps\n", cfg.Monitor.DownloadThresholdMbps)
	_, _ = fmt.Fprintf(out, "  Upload Threshold:     %.2f Mbps\n", cfg.Monitor.UploadThresholdMbps)
	_, _ = fmt.Fprintf(out, "  Sample Interval:      %ds\n", cfg.Sampler.IntervalSeconds)
	_, _ = fmt.Fprintf(out, "  Input Devices:        %t (%s)\n", cfg.Activity.InputDevices, cfg.Activity.DeviceGlob)
	_, _ = fmt.Fprintf(out, "  Prevent Idle:         %t\n", cfg.Power.PreventIdle)
	_, _ = fmt.Fprintf(out, "  Dry Run:              %t\n", cfg.Power.DryRun)
	_, _ = fmt.Fprintf(out, "  Log Level:            %s\n", cfg.Logging.Level)
	_, _ = fmt.Fprintf(out, "  Log Format:           %s\n", cfg.Logging.Format)

	logger.Info("config.validation.ok", "Configuration validation passed", map[string]interface{}{
		"inactivity_limit_s": cfg.Monitor.InactivityLimitSeconds,
	})
	return nil
}

func newLogsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Print the diagnostic log of the current or last run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return printLog(cmd.OutOrStdout(), fsutil.LogFilePath(cfg.Logging.File))
		},
	}
}

func printLog(out io.Writer, path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no log file at %s", path)
		}
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(out, f); err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sleepsentinel version %s\n", version)
		},
	}
}

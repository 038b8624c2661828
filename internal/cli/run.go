package cli

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	taskloop "github.com/paolodenti/task-async-loop"
	"github.com/paolodenti/task-async-loop/internal/config"
	"github.com/paolodenti/task-async-loop/internal/logging"
)

var (
	runDelay   time.Duration
	runMaxRuns int
	runUntil   string
	runConfig  string
	runVerbose bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Run a command once per loop iteration",
	Long: `Runs the given command through the loop driver: one run at a time,
each paced by --delay (the first run is immediate). The loop ends when
--max-runs is reached, when the --until policy matches the command's exit
status, or on SIGINT/SIGTERM.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

// registerRunFlags binds the run command's flags. Tests register the same
// flags on a fresh command to get a clean Changed state.
func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&runDelay, "delay", 0, "pause between runs (the first run is immediate)")
	cmd.Flags().IntVar(&runMaxRuns, "max-runs", 0, "stop after N runs (0 = unlimited)")
	cmd.Flags().StringVar(&runUntil, "until", "", "stop policy: success, failure or forever")
	cmd.Flags().StringVar(&runConfig, "config", "", "path to a YAML config file")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "enable debug logging")
}

func init() {
	registerRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// commandRunner abstracts command execution for testability.
type commandRunner interface {
	// Run executes the command and returns its exit code. A non-nil
	// error means the command could not be run at all.
	Run(ctx context.Context, args []string) (int, error)
}

// runner is the command runner used by the run command.
// It can be overridden in tests.
var runner commandRunner = execRunner{}

// execRunner runs commands via os/exec with stdout/stderr passed through.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, errors.Wrap(err, "unable to run command")
	}

	return 0, nil
}

// runSettings are the resolved settings for one run invocation:
// config-file defaults overridden by any flags set on the command line.
type runSettings struct {
	delay   time.Duration
	maxRuns int
	until   string
}

func resolveSettings(cmd *cobra.Command) (*runSettings, error) {
	cfg, err := config.LoadConfig(runConfig)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}

	s := &runSettings{
		delay:   time.Duration(cfg.DelayMS) * time.Millisecond,
		maxRuns: cfg.MaxRuns,
		until:   cfg.Until,
	}

	if cmd.Flags().Changed("delay") {
		s.delay = runDelay
	}
	if cmd.Flags().Changed("max-runs") {
		s.maxRuns = runMaxRuns
	}
	if cmd.Flags().Changed("until") {
		s.until = runUntil
	}

	if s.delay < 0 {
		return nil, config.ValidationError{Field: "delay", Message: "must be non-negative"}
	}
	if s.maxRuns < 0 {
		return nil, config.ValidationError{Field: "max-runs", Message: "must be non-negative"}
	}
	if err := config.ValidateUntil(s.until); err != nil {
		return nil, err
	}

	return s, nil
}

// runState is the shared data carried across iterations.
type runState struct {
	runs     int
	lastExit int
}

func runRun(cmd *cobra.Command, args []string) error {
	logging.Setup(runVerbose)

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.Component("run")
	st := &runState{}

	taskloop.Run(ctx, taskloop.Config{
		Delay: settings.delay,
		Data:  st,
		Log:   logrus.StandardLogger(),
		Condition: func(data any) bool {
			s := data.(*runState)
			return settings.maxRuns == 0 || s.runs < settings.maxRuns
		},
		Executer: func(data any, ctrl *taskloop.Control) {
			s := data.(*runState)
			s.runs++

			exitCode, err := runner.Run(ctx, args)
			if err != nil {
				log.WithError(err).Error("command could not be started")
				ctrl.Stop()
				return
			}
			s.lastExit = exitCode
			log.WithFields(logrus.Fields{
				"run":  s.runs,
				"exit": exitCode,
			}).Debug("command finished")

			switch {
			case settings.until == config.UntilSuccess && exitCode == 0:
				ctrl.Stop()
			case settings.until == config.UntilFailure && exitCode != 0:
				ctrl.Stop()
			default:
				ctrl.Next()
			}
		},
	})

	log.WithFields(logrus.Fields{
		"runs": st.runs,
		"exit": st.lastExit,
	}).Debug("loop finished")
	return nil
}

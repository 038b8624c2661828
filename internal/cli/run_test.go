package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paolodenti/task-async-loop/internal/config"
	"github.com/paolodenti/task-async-loop/internal/testutil"
)

// mockRunner implements commandRunner with scripted exit codes.
type mockRunner struct {
	mu    sync.Mutex
	codes []int
	err   error
	calls int
}

func (m *mockRunner) Run(ctx context.Context, args []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return -1, m.err
	}

	code := 0
	if m.calls < len(m.codes) {
		code = m.codes[m.calls]
	}
	m.calls++
	return code, nil
}

func (m *mockRunner) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// newRunCommand builds a fresh command for tests so flag Changed state
// does not leak between cases. It also resets the bound package vars to
// their defaults.
func newRunCommand(t *testing.T) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "run", Args: cobra.MinimumNArgs(1), RunE: runRun}
	registerRunFlags(cmd)

	ctx, cancel := testutil.LoopContext(t)
	t.Cleanup(cancel)
	cmd.SetContext(ctx)

	return cmd
}

func withMockRunner(t *testing.T, m *mockRunner) {
	t.Helper()
	orig := runner
	runner = m
	t.Cleanup(func() { runner = orig })
}

func TestRunCommandUntilSuccess(t *testing.T) {
	mock := &mockRunner{codes: []int{1, 1, 0}}
	withMockRunner(t, mock)

	cmd := newRunCommand(t)
	require.NoError(t, cmd.Flags().Set("until", "success"))

	require.NoError(t, runRun(cmd, []string{"true"}))
	assert.Equal(t, 3, mock.runCount(), "loop stops on the first zero exit")
}

func TestRunCommandUntilFailure(t *testing.T) {
	mock := &mockRunner{codes: []int{0, 0, 2}}
	withMockRunner(t, mock)

	cmd := newRunCommand(t)
	require.NoError(t, cmd.Flags().Set("until", "failure"))

	require.NoError(t, runRun(cmd, []string{"false"}))
	assert.Equal(t, 3, mock.runCount(), "loop stops on the first non-zero exit")
}

func TestRunCommandMaxRuns(t *testing.T) {
	mock := &mockRunner{}
	withMockRunner(t, mock)

	cmd := newRunCommand(t)
	require.NoError(t, cmd.Flags().Set("max-runs", "4"))

	require.NoError(t, runRun(cmd, []string{"true"}))
	assert.Equal(t, 4, mock.runCount())
}

func TestRunCommandRunnerErrorStopsLoop(t *testing.T) {
	mock := &mockRunner{err: errors.New("no such binary")}
	withMockRunner(t, mock)

	cmd := newRunCommand(t)

	// A command that cannot be started stops the loop; the loop itself
	// surfaces nothing.
	require.NoError(t, runRun(cmd, []string{"definitely-missing"}))
}

func TestRunCommandInvalidUntil(t *testing.T) {
	cmd := newRunCommand(t)
	require.NoError(t, cmd.Flags().Set("until", "eventually"))

	err := runRun(cmd, []string{"true"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "until")
}

func TestResolveSettingsDefaults(t *testing.T) {
	cmd := newRunCommand(t)

	s, err := resolveSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), s.delay)
	assert.Equal(t, 0, s.maxRuns)
	assert.Equal(t, config.UntilForever, s.until)
}

func TestResolveSettingsFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskloop.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("delay_ms: 500\nmax_runs: 9\nuntil: success\n"), 0o644))

	cmd := newRunCommand(t)
	require.NoError(t, cmd.Flags().Set("config", path))
	require.NoError(t, cmd.Flags().Set("delay", "50ms"))

	s, err := resolveSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, s.delay, "flag wins over config file")
	assert.Equal(t, 9, s.maxRuns, "unset flags fall back to the file")
	assert.Equal(t, config.UntilSuccess, s.until)
}

func TestResolveSettingsNegativeDelayFlag(t *testing.T) {
	cmd := newRunCommand(t)
	require.NoError(t, cmd.Flags().Set("delay", "-1s"))

	_, err := resolveSettings(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delay")
}

package action

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/powerpanel/internal/config"
)

type fakePower struct {
	performed []Action
	err       error
}

func (f *fakePower) Perform(_ context.Context, a Action) error {
	f.performed = append(f.performed, a)
	return f.err
}

type fakeSounder struct {
	played []string
}

func (f *fakeSounder) PlayForAction(_ context.Context, action string) error {
	f.played = append(f.played, action)
	return nil
}

func newTestDispatcher(t *testing.T, cfg *config.Config, opts ...Option) (*Dispatcher, *MockExecutor) {
	t.Helper()
	mock := NewMockExecutor()
	opts = append([]Option{WithExecutor(mock), WithGOOS("linux")}, opts...)
	return NewDispatcher(cfg, opts...), mock
}

func TestDispatcher_FallbackCommands(t *testing.T) {
	d, mock := newTestDispatcher(t, nil)

	for _, a := range All {
		require.NoError(t, d.Perform(context.Background(), string(a)))
	}

	executed := mock.Executed()
	require.Len(t, executed, 3)
	assert.Equal(t, "systemctl poweroff", executed[0].Line())
	assert.Equal(t, "systemctl reboot", executed[1].Line())
	assert.Equal(t, "systemctl suspend", executed[2].Line())
}

func TestDispatcher_WindowsCommands(t *testing.T) {
	d, mock := newTestDispatcher(t, nil, WithGOOS("windows"))

	require.NoError(t, d.Perform(context.Background(), "sleep"))
	executed := mock.Executed()
	require.Len(t, executed, 1)
	assert.Equal(t, "rundll32.exe powrprof.dll,SetSuspendState 0,1,0", executed[0].Line())
}

func TestDispatcher_PowerManagerPreferred(t *testing.T) {
	power := &fakePower{}
	d, mock := newTestDispatcher(t, nil, WithPowerManager(power))

	require.NoError(t, d.Perform(context.Background(), "restart"))
	assert.Equal(t, []Action{Restart}, power.performed)
	assert.Empty(t, mock.Executed())
}

func TestDispatcher_PowerManagerFailureFallsBack(t *testing.T) {
	power := &fakePower{err: assert.AnError}
	d, mock := newTestDispatcher(t, nil, WithPowerManager(power))

	require.NoError(t, d.Perform(context.Background(), "shutdown"))
	executed := mock.Executed()
	require.Len(t, executed, 1)
	assert.Equal(t, "systemctl poweroff", executed[0].Line())
}

func TestDispatcher_LogindDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Actions.UseLogind = false
	power := &fakePower{}
	d, mock := newTestDispatcher(t, cfg, WithPowerManager(power))

	require.NoError(t, d.Perform(context.Background(), "sleep"))
	assert.Empty(t, power.performed)
	assert.Len(t, mock.Executed(), 1)
}

func TestDispatcher_ConfigOverrideWins(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Actions.Commands["sleep"] = "loginctl  suspend  --no-wall"
	power := &fakePower{}
	d, mock := newTestDispatcher(t, cfg, WithPowerManager(power))

	cmd, ok := d.Command(Sleep)
	require.True(t, ok)
	assert.Equal(t, []string{"loginctl", "suspend", "--no-wall"}, cmd)

	require.NoError(t, d.Perform(context.Background(), "sleep"))
	assert.Empty(t, power.performed)
	executed := mock.Executed()
	require.Len(t, executed, 1)
	assert.Equal(t, "loginctl suspend --no-wall", executed[0].Line())
}

func TestDispatcher_UnknownAction(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	sounder := &fakeSounder{}
	d, mock := newTestDispatcher(t, nil, WithLogger(logger), WithSounder(sounder))

	err := d.Perform(context.Background(), "hibernate")
	assert.ErrorIs(t, err, ErrUnknownAction)

	d.Dispatch(context.Background(), "hibernate")
	assert.Contains(t, buf.String(), "unknown action ignored")
	assert.Empty(t, mock.Executed())
	assert.Empty(t, sounder.played)
}

func TestDispatcher_UnsupportedPlatform(t *testing.T) {
	d, mock := newTestDispatcher(t, nil, WithGOOS("plan9"))

	err := d.Perform(context.Background(), "shutdown")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, mock.Executed())
}

func TestDispatcher_CommandFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	d, mock := newTestDispatcher(t, nil, WithLogger(logger))
	mock.AddCommand("systemctl", []string{"reboot"}, "", "Access denied\n", assert.AnError)

	err := d.Perform(context.Background(), "restart")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "Access denied")

	assert.NotPanics(t, func() { d.Dispatch(context.Background(), "restart") })
	assert.Contains(t, buf.String(), "action failed")
}

func TestDispatcher_PlaysSoundBeforeAction(t *testing.T) {
	sounder := &fakeSounder{}
	d, _ := newTestDispatcher(t, nil, WithSounder(sounder))

	require.NoError(t, d.Perform(context.Background(), "sleep"))
	assert.Equal(t, []string{"sleep"}, sounder.played)
}

func TestDispatcher_UpdateConfig(t *testing.T) {
	d, _ := newTestDispatcher(t, config.DefaultConfig())

	cmd, ok := d.Command(Restart)
	require.True(t, ok)
	assert.Equal(t, []string{"systemctl", "reboot"}, cmd)

	updated := config.DefaultConfig()
	updated.Actions.Commands["restart"] = "loginctl reboot"
	d.UpdateConfig(updated)
	d.UpdateConfig(nil)

	cmd, ok = d.Command(Restart)
	require.True(t, ok)
	assert.Equal(t, []string{"loginctl", "reboot"}, cmd)
}

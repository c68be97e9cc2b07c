package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, a := range All {
		got, err := Parse(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	for _, id := range []string{"", "hibernate", "Shutdown", " sleep"} {
		_, err := Parse(id)
		assert.ErrorIs(t, err, ErrUnknownAction, id)
	}
}

func TestAction_Label(t *testing.T) {
	assert.Equal(t, "Power", Shutdown.Label())
	assert.Equal(t, "Restart", Restart.Label())
	assert.Equal(t, "Sleep", Sleep.Label())
}

func TestDefaultCommands(t *testing.T) {
	tests := []struct {
		goos string
		want map[Action]string
	}{
		{
			goos: "linux",
			want: map[Action]string{
				Shutdown: "systemctl poweroff",
				Restart:  "systemctl reboot",
				Sleep:    "systemctl suspend",
			},
		},
		{
			goos: "windows",
			want: map[Action]string{
				Shutdown: "shutdown /s /t 0",
				Restart:  "shutdown /r /t 0",
				Sleep:    "rundll32.exe powrprof.dll,SetSuspendState 0,1,0",
			},
		},
		{
			goos: "darwin",
			want: map[Action]string{
				Sleep: "pmset sleepnow",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmds := defaultCommands(tt.goos)
			assert.Len(t, cmds, len(All))
			for a, line := range tt.want {
				assert.Equal(t, line, buildCommandKey(cmds[a][0], cmds[a][1:]))
			}
		})
	}

	assert.Nil(t, defaultCommands("plan9"))
}

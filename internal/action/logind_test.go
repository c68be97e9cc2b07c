package action

import (
	"context"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBusObject struct {
	methods []string
	args    [][]interface{}
	err     error
	body    []interface{}
}

func (f *fakeBusObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.methods = append(f.methods, method)
	f.args = append(f.args, args)
	return &dbus.Call{Err: f.err, Body: f.body}
}

func TestLogind_Perform(t *testing.T) {
	obj := &fakeBusObject{}
	l := newLogind(obj, nil)

	require.NoError(t, l.Perform(context.Background(), Shutdown))
	require.NoError(t, l.Perform(context.Background(), Restart))
	require.NoError(t, l.Perform(context.Background(), Sleep))

	assert.Equal(t, []string{
		"org.freedesktop.login1.Manager.PowerOff",
		"org.freedesktop.login1.Manager.Reboot",
		"org.freedesktop.login1.Manager.Suspend",
	}, obj.methods)
	for _, args := range obj.args {
		assert.Equal(t, []interface{}{false}, args)
	}
}

func TestLogind_PerformError(t *testing.T) {
	obj := &fakeBusObject{err: assert.AnError}
	l := newLogind(obj, nil)

	err := l.Perform(context.Background(), Sleep)
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "Suspend")

	err = l.Perform(context.Background(), Action("dance"))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestLogind_Can(t *testing.T) {
	obj := &fakeBusObject{body: []interface{}{"challenge"}}
	l := newLogind(obj, nil)

	answer, err := l.Can(context.Background(), Restart)
	require.NoError(t, err)
	assert.Equal(t, "challenge", answer)
	assert.Equal(t, []string{"org.freedesktop.login1.Manager.CanReboot"}, obj.methods)
}

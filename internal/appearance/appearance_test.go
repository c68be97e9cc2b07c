package appearance

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/powerpanel/internal/config"
)

type fakeReader struct {
	value uint32
	err   error
	calls int
}

func (f *fakeReader) ReadColorScheme(context.Context) (uint32, error) {
	f.calls++
	return f.value, f.err
}

func newTestDetector(reader SchemeReader, env map[string]string) *Detector {
	d := NewDetector(reader, nil)
	d.getenv = func(key string) string { return env[key] }
	return d
}

func TestDetector_ConfigOverrideWins(t *testing.T) {
	reader := &fakeReader{value: SchemePreferLight}
	d := newTestDetector(reader, map[string]string{EnvColorScheme: "light"})

	assert.True(t, d.PrefersDark(config.ColorSchemeDark))
	assert.False(t, d.PrefersDark(config.ColorSchemeLight))
	assert.Zero(t, reader.calls)
}

func TestDetector_Sources(t *testing.T) {
	tests := []struct {
		name   string
		reader SchemeReader
		env    map[string]string
		want   bool
	}{
		{"env dark", &fakeReader{value: SchemePreferLight}, map[string]string{EnvColorScheme: "DARK"}, true},
		{"env light", &fakeReader{value: SchemePreferDark}, map[string]string{EnvColorScheme: "light"}, false},
		{"invalid env falls through", &fakeReader{value: SchemePreferDark}, map[string]string{EnvColorScheme: "sepia"}, true},
		{"portal dark", &fakeReader{value: SchemePreferDark}, nil, true},
		{"portal light", &fakeReader{value: SchemePreferLight}, map[string]string{"GTK_THEME": "Adwaita:dark"}, false},
		{"portal no preference uses GTK_THEME", &fakeReader{value: SchemeNoPreference}, map[string]string{"GTK_THEME": "Adwaita:dark"}, true},
		{"portal error uses GTK_THEME", &fakeReader{err: errors.New("no portal")}, map[string]string{"GTK_THEME": "Adwaita:dark"}, true},
		{"no reader", nil, map[string]string{"GTK_THEME": "Adwaita"}, false},
		{"nothing", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector(tt.reader, tt.env)
			assert.Equal(t, tt.want, d.PrefersDark(config.ColorSchemeSystem))
		})
	}
}

func TestDetector_Func(t *testing.T) {
	d := newTestDetector(&fakeReader{value: SchemePreferDark}, nil)
	fn := d.Func(config.ColorSchemeSystem)
	assert.True(t, fn())

	store := config.NewSelectionStore(t.TempDir()+"/config.json", fn, nil)
	assert.Equal(t, config.DefaultSelection(true), store.Load())
}

func TestUnwrapScheme(t *testing.T) {
	v, err := unwrapScheme(dbus.MakeVariant(uint32(1)))
	require.NoError(t, err)
	assert.Equal(t, SchemePreferDark, v)

	v, err = unwrapScheme(dbus.MakeVariant(dbus.MakeVariant(uint32(2))))
	require.NoError(t, err)
	assert.Equal(t, SchemePreferLight, v)

	_, err = unwrapScheme(dbus.MakeVariant("dark"))
	assert.Error(t, err)
}

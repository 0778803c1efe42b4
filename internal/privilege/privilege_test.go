package privilege

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/simplewebserver/internal/config"
	"example.com/simplewebserver/internal/logger"
)

type execCall struct {
	argv0 string
	argv  []string
	env   []string
}

func newTestController(elevatedNow bool, env map[string]string) (*Controller, *[]execCall, *bytes.Buffer) {
	var calls []execCall
	var out bytes.Buffer
	c := &Controller{
		Executable: "/opt/sws/simplewebserver",
		RootFolder: "/srv/game",
		ExtraArgs:  []string{"-config", "/etc/sws.toml"},
		Env:        []string{"HOME=/home/dev"},
		Console:    logger.NewConsole(&out),
		exec: func(argv0 string, argv []string, env []string) error {
			calls = append(calls, execCall{argv0, argv, env})
			return nil
		},
		lookPath: func(file string) (string, error) {
			if file == "sudo" {
				return "/usr/bin/sudo", nil
			}
			return "", errors.New("not found")
		},
		isElevated: func() bool { return elevatedNow },
		lookupEnvFn: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
	return c, &calls, &out
}

func TestArgs(t *testing.T) {
	c, _, _ := newTestController(false, nil)
	assert.Equal(t,
		[]string{"-config", "/etc/sws.toml", "-scheme", "https", "/srv/game", "8443"},
		c.Args(config.SchemeHTTPS, 8443))

	c.ExtraArgs = nil
	assert.Equal(t, []string{"-scheme", "http", "/srv/game", "80"}, c.Args(config.SchemeHTTP, 80))
}

func TestCommand(t *testing.T) {
	testCases := []struct {
		name        string
		elevatedNow bool
		want        bool
		env         map[string]string
		argv0       string
		argvPrefix  []string
		wantErr     bool
	}{
		{
			name:       "same privilege re-execs directly",
			argv0:      "/opt/sws/simplewebserver",
			argvPrefix: []string{"/opt/sws/simplewebserver"},
		},
		{
			name:        "stay elevated re-execs directly",
			elevatedNow: true,
			want:        true,
			argv0:       "/opt/sws/simplewebserver",
			argvPrefix:  []string{"/opt/sws/simplewebserver"},
		},
		{
			name:       "elevate through sudo",
			want:       true,
			argv0:      "/usr/bin/sudo",
			argvPrefix: []string{"sudo", "/opt/sws/simplewebserver"},
		},
		{
			name:        "drop back to the sudo user",
			elevatedNow: true,
			env:         map[string]string{"SUDO_USER": "dev"},
			argv0:       "/usr/bin/sudo",
			argvPrefix:  []string{"sudo", "-u", "dev", "/opt/sws/simplewebserver"},
		},
		{
			name:        "cannot drop without sudo user",
			elevatedNow: true,
			wantErr:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _, _ := newTestController(tc.elevatedNow, tc.env)
			argv0, argv, err := c.Command(tc.want, config.SchemeHTTP, 8080)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.argv0, argv0)
			want := append(append([]string{}, tc.argvPrefix...), c.Args(config.SchemeHTTP, 8080)...)
			assert.Equal(t, want, argv)
		})
	}
}

func TestCommand_NoSudo(t *testing.T) {
	c, _, _ := newTestController(false, nil)
	c.lookPath = func(string) (string, error) { return "", errors.New("executable file not found in $PATH") }
	_, _, err := c.Command(true, config.SchemeHTTP, 8080)
	assert.ErrorContains(t, err, "cannot elevate")
}

func TestRelaunch(t *testing.T) {
	c, calls, out := newTestController(false, nil)

	require.NoError(t, c.Relaunch(false, config.SchemeHTTPS, 8080))
	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/opt/sws/simplewebserver", call.argv0)
	assert.Equal(t, []string{"/opt/sws/simplewebserver", "-config", "/etc/sws.toml", "-scheme", "https", "/srv/game", "8080"}, call.argv)
	assert.Equal(t, c.Env, call.env)
	assert.Contains(t, out.String(), "Restarting as non-admin with https")
}

func TestRelaunch_ExecFailure(t *testing.T) {
	c, _, out := newTestController(false, nil)
	c.exec = func(string, []string, []string) error { return errors.New("permission denied") }

	err := c.Relaunch(false, config.SchemeHTTP, 8080)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Contains(t, out.String(), "Error restarting")
}

package spooler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"receipt-bridge/internal/model"
)

const lpstatOutput = `printer EPSON_TM_T20 is idle.  enabled since Tue 14 Oct 2025 09:12:01 AM
printer Kitchen_80 disabled since Mon 13 Oct 2025 06:00:00 PM -
	Paused
printer Office_Laser is idle.  enabled since Tue 14 Oct 2025 09:12:01 AM
system default destination: Kitchen_80
`

func TestParseLpstat(t *testing.T) {
	printers := ParseLpstat(lpstatOutput)

	require.Len(t, printers, 3)
	assert.Equal(t, model.DiscoveredPrinter{ID: "EPSON_TM_T20", Name: "EPSON_TM_T20", Transport: model.TransportSpooler}, printers[0])
	assert.True(t, printers[1].IsDefault)
	assert.Equal(t, "Kitchen_80", printers[1].Name)
	assert.False(t, printers[2].IsDefault)
}

func TestParseLpstatWithoutDefault(t *testing.T) {
	printers := ParseLpstat("printer A is idle.\nno system default destination\n")

	require.Len(t, printers, 1)
	assert.False(t, printers[0].IsDefault)
	assert.Empty(t, ParseLpstat(""))
}

func TestParsePowerShell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []model.DiscoveredPrinter
	}{
		{
			name:  "array",
			input: `[{"Name":"POS-80","Default":true},{"Name":"Microsoft Print to PDF","Default":false}]`,
			want: []model.DiscoveredPrinter{
				{ID: "POS-80", Name: "POS-80", IsDefault: true, Transport: model.TransportSpooler},
				{ID: "Microsoft Print to PDF", Name: "Microsoft Print to PDF", Transport: model.TransportSpooler},
			},
		},
		{
			name:  "single object",
			input: "{\"Name\":\"XP-58\",\"Default\":false}\r\n",
			want:  []model.DiscoveredPrinter{{ID: "XP-58", Name: "XP-58", Transport: model.TransportSpooler}},
		},
		{
			name:  "empty",
			input: "",
			want:  []model.DiscoveredPrinter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePowerShell([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePowerShell([]byte("Get-CimInstance : access denied"))
	assert.Error(t, err)
}

func fakeScanner(goos string, run Runner) *Scanner {
	return &Scanner{
		goos:     goos,
		run:      run,
		lookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
		logger:   zap.NewNop(),
	}
}

func TestScanPOSIX(t *testing.T) {
	var gotEnv []string
	var gotArgs []string
	s := fakeScanner("linux", func(_ context.Context, env []string, name string, args ...string) ([]byte, error) {
		gotEnv = env
		gotArgs = append([]string{name}, args...)
		return []byte(lpstatOutput), nil
	})

	printers, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, printers, 3)
	assert.Equal(t, []string{"LC_ALL=C"}, gotEnv)
	assert.Equal(t, []string{"lpstat", "-p", "-d"}, gotArgs)
}

func TestScanPOSIXNoDestinations(t *testing.T) {
	s := fakeScanner("darwin", func(context.Context, []string, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})

	printers, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, printers)
}

func TestScanWindows(t *testing.T) {
	var gotArgs []string
	s := fakeScanner("windows", func(_ context.Context, _ []string, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte(`{"Name":"POS-80","Default":true}`), nil
	})

	printers, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, printers, 1)
	assert.True(t, printers[0].IsDefault)
	assert.Equal(t, "powershell", gotArgs[0])
	assert.Equal(t, powerShellQuery, gotArgs[len(gotArgs)-1])
	assert.Equal(t, "powershell", s.tool())
	assert.True(t, s.IsAvailable())
}

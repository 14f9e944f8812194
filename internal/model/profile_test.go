package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSplitsPortOutOfHost(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		wantHost string
		wantPort int
		wantAddr string
	}{
		{"ipv4 with port", "10.0.0.5:9100", 0, "10.0.0.5", 9100, "10.0.0.5:9100"},
		{"hostname with custom port", "kitchen.local:9101", 0, "kitchen.local", 9101, "kitchen.local:9101"},
		{"matching explicit port", "10.0.0.5:9100", 9100, "10.0.0.5", 9100, "10.0.0.5:9100"},
		{"bare host", " 10.0.0.5 ", 0, "10.0.0.5", DefaultNetworkPort, "10.0.0.5:9100"},
		{"bracketed ipv6 with port", "[fe80::1]:9100", 0, "fe80::1", 9100, "[fe80::1]:9100"},
		{"bare ipv6", "fe80::1", 0, "fe80::1", DefaultNetworkPort, "[fe80::1]:9100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PrinterProfile{Transport: TransportNetwork, Host: tt.host, Port: tt.port}
			p.Normalize()
			require.NoError(t, p.Validate())
			assert.Equal(t, tt.wantHost, p.Host)
			assert.Equal(t, tt.wantPort, p.Port)
			assert.Equal(t, tt.wantAddr, p.Address())
		})
	}
}

func TestValidateRejectsConflictingHostPort(t *testing.T) {
	p := PrinterProfile{Transport: TransportNetwork, Host: "10.0.0.5:9100", Port: 9200}
	p.Normalize()

	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not carry a port")
}

func TestNormalizeLeavesOtherTransportsAlone(t *testing.T) {
	p := PrinterProfile{Transport: TransportSpooler, PrinterName: "TM-m30", Host: "10.0.0.5:9100"}
	p.Normalize()

	assert.Equal(t, RoleReceipt, p.Role)
	assert.Equal(t, DefaultPaperWidth, p.PaperWidth)
	assert.Equal(t, 2, p.DrawerPin)
	assert.Zero(t, p.Port)
	assert.Equal(t, "10.0.0.5:9100", p.Host)
}

// internal/model/profile.go
package model

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// TransportKind selects how compiled bytes reach the printer
type TransportKind string

const (
	TransportSpooler TransportKind = "spooler"
	TransportNetwork TransportKind = "network"
	TransportBLE     TransportKind = "ble"
	TransportSerial  TransportKind = "serial"
	TransportUSB     TransportKind = "usb"
)

// Valid reports whether k is a known transport kind
func (k TransportKind) Valid() bool {
	switch k {
	case TransportSpooler, TransportNetwork, TransportBLE, TransportSerial, TransportUSB:
		return true
	}
	return false
}

// Role distinguishes the independent printer slots of one installation
type Role string

const (
	RoleReceipt Role = "receipt"
	RoleKitchen Role = "kitchen"
)

// ParseRole maps an empty value to RoleReceipt
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleReceipt:
		return RoleReceipt, nil
	case RoleKitchen:
		return RoleKitchen, nil
	}
	return "", fmt.Errorf("unknown printer role %q", s)
}

// PaperWidth is the roll width of a thermal printer
type PaperWidth string

const (
	Paper58mm PaperWidth = "58mm"
	Paper80mm PaperWidth = "80mm"

	DefaultPaperWidth = Paper80mm
)

// DefaultNetworkPort is the de facto raw print port
const DefaultNetworkPort = 9100

// ParsePaperWidth accepts "58mm", "58", "80mm" and "80"
func ParsePaperWidth(s string) (PaperWidth, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSuffix(v, "mm")
	switch v {
	case "58":
		return Paper58mm, nil
	case "80":
		return Paper80mm, nil
	}
	return "", fmt.Errorf("unsupported paper width %q", s)
}

// Columns returns the character columns of the standard font
func (p PaperWidth) Columns() int {
	if p == Paper58mm {
		return 32
	}
	return 48
}

// LogoWidth returns the widest raster image the print head accepts
func (p PaperWidth) LogoWidth() int {
	if p == Paper58mm {
		return 256
	}
	return 384
}

func (p *PaperWidth) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var s string
	switch v := raw.(type) {
	case nil:
		*p = ""
		return nil
	case string:
		if v == "" {
			*p = ""
			return nil
		}
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("unsupported paper width %v", raw)
	}

	parsed, err := ParsePaperWidth(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PrinterProfile is the persisted configuration for one printer role
type PrinterProfile struct {
	Role       Role          `json:"role"`
	Transport  TransportKind `json:"transport"`
	PaperWidth PaperWidth    `json:"paperWidth"`
	DrawerPin  int           `json:"drawerPin,omitempty"`

	// spooler
	PrinterName string `json:"printerName,omitempty"`

	// network
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// ble
	DeviceID           string `json:"deviceId,omitempty"`
	DeviceName         string `json:"deviceName,omitempty"`
	ServiceUUID        string `json:"serviceUuid,omitempty"`
	CharacteristicUUID string `json:"characteristicUuid,omitempty"`

	// serial
	SerialPort string `json:"serialPort,omitempty"`
	BaudRate   int    `json:"baudRate,omitempty"`

	// usb
	VendorID  string `json:"vendorId,omitempty"`
	ProductID string `json:"productId,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize fills transport defaults in place
func (p *PrinterProfile) Normalize() {
	if p.Role == "" {
		p.Role = RoleReceipt
	}
	if p.PaperWidth == "" {
		p.PaperWidth = DefaultPaperWidth
	}
	if p.Transport == TransportNetwork {
		p.splitHostPort()
		if p.Port == 0 {
			p.Port = DefaultNetworkPort
		}
	}
	if p.DrawerPin == 0 {
		p.DrawerPin = 2
	}
}

// splitHostPort moves a port typed into the host field over to Port.
// A conflicting explicit port leaves Host untouched for Validate to reject.
func (p *PrinterProfile) splitHostPort() {
	host := strings.TrimSpace(p.Host)
	h, port, err := net.SplitHostPort(host)
	if err != nil {
		p.Host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
		return
	}
	n, err := strconv.Atoi(port)
	if err != nil || (p.Port != 0 && p.Port != n) {
		return
	}
	p.Host, p.Port = h, n
}

// Validate checks that the address fields required by the transport are present
func (p *PrinterProfile) Validate() error {
	if _, err := ParseRole(string(p.Role)); err != nil {
		return err
	}
	if !p.Transport.Valid() {
		return fmt.Errorf("unknown transport %q", p.Transport)
	}
	if _, err := ParsePaperWidth(string(p.PaperWidth)); err != nil {
		return err
	}
	if p.DrawerPin != 2 && p.DrawerPin != 5 {
		return fmt.Errorf("drawer pin must be 2 or 5, got %d", p.DrawerPin)
	}

	switch p.Transport {
	case TransportSpooler:
		if strings.TrimSpace(p.PrinterName) == "" {
			return fmt.Errorf("printerName is required for spooler printers")
		}
	case TransportNetwork:
		if strings.TrimSpace(p.Host) == "" {
			return fmt.Errorf("host is required for network printers")
		}
		if strings.Contains(p.Host, ":") && net.ParseIP(p.Host) == nil {
			return fmt.Errorf("host %q must not carry a port, use the port field", p.Host)
		}
		if p.Port <= 0 || p.Port > 65535 {
			return fmt.Errorf("port %d out of range", p.Port)
		}
	case TransportBLE:
		if strings.TrimSpace(p.DeviceID) == "" {
			return fmt.Errorf("deviceId is required for BLE printers")
		}
	case TransportSerial:
		if strings.TrimSpace(p.SerialPort) == "" {
			return fmt.Errorf("serialPort is required for serial printers")
		}
	case TransportUSB:
		if p.VendorID == "" || p.ProductID == "" {
			return fmt.Errorf("vendorId and productId are required for USB printers")
		}
	}
	return nil
}

// Address returns the transport specific destination
func (p *PrinterProfile) Address() string {
	switch p.Transport {
	case TransportSpooler:
		return p.PrinterName
	case TransportNetwork:
		return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	case TransportBLE:
		return p.DeviceID
	case TransportSerial:
		return p.SerialPort
	case TransportUSB:
		return p.VendorID + ":" + p.ProductID
	}
	return ""
}

// TargetKey identifies the physical printer for write serialization
func (p *PrinterProfile) TargetKey() string {
	return string(p.Transport) + "://" + strings.ToLower(p.Address())
}

// ProfileSet is an immutable snapshot of all configured roles
type ProfileSet map[Role]PrinterProfile

// With returns a copy of s with profile stored under its role
func (s ProfileSet) With(profile PrinterProfile) ProfileSet {
	next := make(ProfileSet, len(s)+1)
	for role, p := range s {
		next[role] = p
	}
	next[profile.Role] = profile
	return next
}

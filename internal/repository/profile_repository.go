// internal/repository/profile_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"receipt-bridge/internal/model"
)

const profileFileVersion = 1

// profileRecord is the on-disk shape of one profile
type profileRecord struct {
	Role               string `mapstructure:"role"`
	Transport          string `mapstructure:"transport"`
	PaperWidth         string `mapstructure:"paper_width"`
	DrawerPin          int    `mapstructure:"drawer_pin"`
	PrinterName        string `mapstructure:"printer_name"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	DeviceID           string `mapstructure:"device_id"`
	DeviceName         string `mapstructure:"device_name"`
	ServiceUUID        string `mapstructure:"service_uuid"`
	CharacteristicUUID string `mapstructure:"characteristic_uuid"`
	SerialPort         string `mapstructure:"serial_port"`
	BaudRate           int    `mapstructure:"baud_rate"`
	VendorID           string `mapstructure:"vendor_id"`
	ProductID          string `mapstructure:"product_id"`
	UpdatedAt          string `mapstructure:"updated_at"`
}

// fileProfileRepository keeps profiles in a YAML file
type fileProfileRepository struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewProfileRepository creates a YAML file backed repository at path
func NewProfileRepository(path string, logger *zap.Logger) ProfileRepository {
	return &fileProfileRepository{
		path:   path,
		logger: logger.With(zap.String("repository", "profiles"), zap.String("path", path)),
	}
}

// Load reads the profile file
func (r *fileProfileRepository) Load(ctx context.Context) (model.ProfileSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(r.path); errors.Is(err, fs.ErrNotExist) {
		r.logger.Info("No printer profiles stored yet")
		return model.ProfileSet{}, nil
	}

	v := viper.New()
	v.SetConfigFile(r.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var records []profileRecord
	if err := v.UnmarshalKey("profiles", &records); err != nil {
		return nil, fmt.Errorf("failed to decode profile file: %w", err)
	}

	set := make(model.ProfileSet, len(records))
	for _, rec := range records {
		profile := rec.toProfile()
		profile.Normalize()
		if err := profile.Validate(); err != nil {
			r.logger.Warn("Skipping invalid stored profile", zap.String("role", rec.Role), zap.Error(err))
			continue
		}
		set[profile.Role] = profile
	}

	r.logger.Debug("Printer profiles loaded", zap.Int("count", len(set)))
	return set, nil
}

// Save writes all profiles to a temp file and renames it over the old one
func (r *fileProfileRepository) Save(ctx context.Context, profiles model.ProfileSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	roles := make([]string, 0, len(profiles))
	for role := range profiles {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)

	records := make([]map[string]interface{}, 0, len(profiles))
	for _, role := range roles {
		p := profiles[model.Role(role)]
		records = append(records, recordFrom(&p).toMap())
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("version", profileFileVersion)
	v.Set("profiles", records)

	// viper infers the format from the extension
	tmp := filepath.Join(dir, ".printers.tmp.yaml")
	if err := v.WriteConfigAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace profile file: %w", err)
	}

	r.logger.Info("Printer profiles saved", zap.Strings("roles", roles))
	return nil
}

func recordFrom(p *model.PrinterProfile) profileRecord {
	rec := profileRecord{
		Role:               string(p.Role),
		Transport:          string(p.Transport),
		PaperWidth:         string(p.PaperWidth),
		DrawerPin:          p.DrawerPin,
		PrinterName:        p.PrinterName,
		Host:               p.Host,
		Port:               p.Port,
		DeviceID:           p.DeviceID,
		DeviceName:         p.DeviceName,
		ServiceUUID:        p.ServiceUUID,
		CharacteristicUUID: p.CharacteristicUUID,
		SerialPort:         p.SerialPort,
		BaudRate:           p.BaudRate,
		VendorID:           p.VendorID,
		ProductID:          p.ProductID,
	}
	if !p.UpdatedAt.IsZero() {
		rec.UpdatedAt = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return rec
}

// toMap drops empty fields so the file only shows what the transport uses
func (rec profileRecord) toMap() map[string]interface{} {
	m := map[string]interface{}{
		"role":        rec.Role,
		"transport":   rec.Transport,
		"paper_width": rec.PaperWidth,
		"drawer_pin":  rec.DrawerPin,
	}
	strs := map[string]string{
		"printer_name":        rec.PrinterName,
		"host":                rec.Host,
		"device_id":           rec.DeviceID,
		"device_name":         rec.DeviceName,
		"service_uuid":        rec.ServiceUUID,
		"characteristic_uuid": rec.CharacteristicUUID,
		"serial_port":         rec.SerialPort,
		"vendor_id":           rec.VendorID,
		"product_id":          rec.ProductID,
		"updated_at":          rec.UpdatedAt,
	}
	for k, v := range strs {
		if v != "" {
			m[k] = v
		}
	}
	if rec.Port != 0 {
		m["port"] = rec.Port
	}
	if rec.BaudRate != 0 {
		m["baud_rate"] = rec.BaudRate
	}
	return m
}

func (rec profileRecord) toProfile() model.PrinterProfile {
	p := model.PrinterProfile{
		Role:               model.Role(rec.Role),
		Transport:          model.TransportKind(rec.Transport),
		PaperWidth:         model.PaperWidth(rec.PaperWidth),
		DrawerPin:          rec.DrawerPin,
		PrinterName:        rec.PrinterName,
		Host:               rec.Host,
		Port:               rec.Port,
		DeviceID:           rec.DeviceID,
		DeviceName:         rec.DeviceName,
		ServiceUUID:        rec.ServiceUUID,
		CharacteristicUUID: rec.CharacteristicUUID,
		SerialPort:         rec.SerialPort,
		BaudRate:           rec.BaudRate,
		VendorID:           rec.VendorID,
		ProductID:          rec.ProductID,
	}
	if t, err := time.Parse(time.RFC3339, rec.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p
}

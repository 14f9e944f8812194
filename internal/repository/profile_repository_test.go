package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"receipt-bridge/internal/model"
)

func TestLoadMissingFileReturnsEmptySet(t *testing.T) {
	repo := NewProfileRepository(filepath.Join(t.TempDir(), "printers.yaml"), zap.NewNop())

	set, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "printers.yaml")
	repo := NewProfileRepository(path, zap.NewNop())
	updated := time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC)

	set := model.ProfileSet{
		model.RoleReceipt: {
			Role: model.RoleReceipt, Transport: model.TransportNetwork, PaperWidth: model.Paper80mm,
			DrawerPin: 2, Host: "192.168.1.50", Port: 9100, UpdatedAt: updated,
		},
		model.RoleKitchen: {
			Role: model.RoleKitchen, Transport: model.TransportBLE, PaperWidth: model.Paper58mm,
			DrawerPin: 5, DeviceID: "AA:BB:CC:DD:EE:FF", DeviceName: "MTP-II",
			ServiceUUID:        "000018f0-0000-1000-8000-00805f9b34fb",
			CharacteristicUUID: "00002af1-0000-1000-8000-00805f9b34fb",
			UpdatedAt:          updated,
		},
	}

	require.NoError(t, repo.Save(context.Background(), set))

	loaded, err := NewProfileRepository(path, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, set, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
	assert.Equal(t, "printers.yaml", entries[0].Name())
}

func TestSaveReplacesPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printers.yaml")
	repo := NewProfileRepository(path, zap.NewNop())

	require.NoError(t, repo.Save(context.Background(), model.ProfileSet{
		model.RoleReceipt: {Role: model.RoleReceipt, Transport: model.TransportSpooler, PaperWidth: model.Paper80mm, DrawerPin: 2, PrinterName: "Old"},
	}))
	require.NoError(t, repo.Save(context.Background(), model.ProfileSet{
		model.RoleReceipt: {Role: model.RoleReceipt, Transport: model.TransportSpooler, PaperWidth: model.Paper80mm, DrawerPin: 2, PrinterName: "New"},
	}))

	set, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New", set[model.RoleReceipt].PrinterName)
}

func TestLoadSkipsInvalidProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: 1
profiles:
  - role: receipt
    transport: spooler
    printer_name: POS-80
  - role: kitchen
    transport: network
`), 0o600))

	set, err := NewProfileRepository(path, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, set, 1)
	receipt := set[model.RoleReceipt]
	assert.Equal(t, "POS-80", receipt.PrinterName)
	assert.Equal(t, model.DefaultPaperWidth, receipt.PaperWidth)
	assert.Equal(t, 2, receipt.DrawerPin)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: [::"), 0o600))

	_, err := NewProfileRepository(path, zap.NewNop()).Load(context.Background())
	assert.Error(t, err)
}

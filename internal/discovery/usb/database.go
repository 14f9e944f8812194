// 📁 internal/discovery/usb/database.go - Known thermal printer vendors
package usb

import (
	"fmt"

	"github.com/google/gousb"
)

// VendorInfo contains vendor-specific information
type VendorInfo struct {
	Brand    string
	Name     string
	products map[gousb.ID]string
}

// DeviceDatabase maps USB ids of common receipt printers to names
type DeviceDatabase struct {
	vendors map[gousb.ID]*VendorInfo
}

// NewDeviceDatabase creates and initializes the device database
func NewDeviceDatabase() *DeviceDatabase {
	return &DeviceDatabase{vendors: map[gousb.ID]*VendorInfo{
		0x04B8: {Brand: "Epson", Name: "Seiko Epson Corporation", products: map[gousb.ID]string{
			0x0202: "TM-T88IV",
			0x0203: "TM-T88V",
			0x0214: "TM-T88VI",
			0x0215: "TM-T20III",
			0x0216: "TM-T82III",
			0x0217: "TM-m30",
		}},
		0x0519: {Brand: "Star", Name: "Star Micronics Co., Ltd.", products: map[gousb.ID]string{
			0x0001: "TSP143III",
			0x0002: "TSP143IIIU",
			0x0003: "TSP654II",
		}},
		0x1CBE: {Brand: "Citizen", Name: "Citizen Systems Japan Co., Ltd.", products: map[gousb.ID]string{
			0x0001: "CT-S310II",
			0x0002: "CT-S4000",
		}},
		0x1D90: {Brand: "Citizen", Name: "Citizen Systems Japan Co., Ltd."},
		0x1504: {Brand: "Bixolon", Name: "BIXOLON Co., Ltd.", products: map[gousb.ID]string{
			0x0006: "SRP-330II",
			0x0007: "SRP-350III",
		}},
		0x0DD4: {Brand: "Custom", Name: "Custom Engineering SPA"},
		0x154F: {Brand: "SNBC", Name: "Shandong New Beiyang"},
		0x0416: {Brand: "Xprinter", Name: "Winbond based POS printer"},
	}}
}

// IsKnownVendor checks if a vendor ID is in the database
func (db *DeviceDatabase) IsKnownVendor(vendorID gousb.ID) bool {
	_, exists := db.vendors[vendorID]
	return exists
}

// DisplayName names a device as "Brand Model", falling back to the product id
func (db *DeviceDatabase) DisplayName(vendorID, productID gousb.ID) string {
	vendor, ok := db.vendors[vendorID]
	if !ok {
		return fmt.Sprintf("USB printer %04x:%04x", uint16(vendorID), uint16(productID))
	}
	if model, ok := vendor.products[productID]; ok {
		return vendor.Brand + " " + model
	}
	return fmt.Sprintf("%s %04x", vendor.Brand, uint16(productID))
}

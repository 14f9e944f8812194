// internal/escpos/command.go
package escpos

const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	LF  byte = 0x0A
)

// Alignment values for ESC a n
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

// Character size values for GS ! n. Bits 0-3 scale height, bits 4-7 scale width.
const (
	SizeNormal       byte = 0x00
	SizeDoubleHeight byte = 0x01
	SizeDoubleWidth  byte = 0x10
	SizeDouble       byte = 0x11
)

// Drawer kick pulse timing, in 2ms units
const (
	drawerPulseOn  byte = 0x19
	drawerPulseOff byte = 0x19
)

// DefaultFeedLines is fed before the cut so the last line clears the cutter
const DefaultFeedLines = 4

var commands = struct {
	initialize  []byte
	boldOn      []byte
	boldOff     []byte
	cutFull     []byte
	cutPartial  []byte
	drawerPin2  []byte
	drawerPin5  []byte
	rasterImage []byte
}{
	initialize:  []byte{ESC, 0x40},                                      // ESC @
	boldOn:      []byte{ESC, 0x45, 0x01},                                // ESC E 1
	boldOff:     []byte{ESC, 0x45, 0x00},                                // ESC E 0
	cutFull:     []byte{GS, 0x56, 0x00},                                 // GS V 0
	cutPartial:  []byte{GS, 0x56, 0x01},                                 // GS V 1
	drawerPin2:  []byte{ESC, 0x70, 0x00, drawerPulseOn, drawerPulseOff}, // ESC p 0 25 25
	drawerPin5:  []byte{ESC, 0x70, 0x01, drawerPulseOn, drawerPulseOff}, // ESC p 1 25 25
	rasterImage: []byte{GS, 0x76, 0x30},                                 // GS v 0
}

// Initialize returns ESC @
func Initialize() []byte { return clone(commands.initialize) }

// SelectCodeTable returns ESC t n
func SelectCodeTable(n byte) []byte { return []byte{ESC, 0x74, n} }

// Align returns ESC a n
func Align(a Alignment) []byte { return []byte{ESC, 0x61, byte(a)} }

// Bold returns ESC E n
func Bold(on bool) []byte {
	if on {
		return clone(commands.boldOn)
	}
	return clone(commands.boldOff)
}

// CharacterSize returns GS ! n
func CharacterSize(n byte) []byte { return []byte{GS, 0x21, n} }

// FeedLines returns ESC d n
func FeedLines(n byte) []byte { return []byte{ESC, 0x64, n} }

// Cut returns GS V 0, or GS V 1 for a partial cut
func Cut(partial bool) []byte {
	if partial {
		return clone(commands.cutPartial)
	}
	return clone(commands.cutFull)
}

// DrawerKick returns ESC p m t1 t2 for connector pin 2 or 5. Any other pin uses pin 2.
func DrawerKick(pin int) []byte {
	if pin == 5 {
		return clone(commands.drawerPin5)
	}
	return clone(commands.drawerPin2)
}

// RasterImagePrefix is the opcode that starts a GS v 0 raster bit image
func RasterImagePrefix() []byte { return clone(commands.rasterImage) }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Package boardid maps a USB vendor/product id pair, as reported in
// AUTOPILOT_VERSION, to a human-readable flight controller board name.
// It is constant data, not part of the synchronized parameter core.
package boardid

import "fmt"

// Info describes one known board entry.
type Info struct {
	VendorID  uint16
	ProductID uint16
	Class     string
	Name      string
	Comment   string
}

type key struct {
	vendorID, productID uint16
}

// database enumerates known boards, grounded on the original C++
// BoardIdentifier's board table.
var database = []Info{
	{9900, 16, "Pixhawk", "PX4 FMU V1", ""},
	{9900, 17, "Pixhawk", "PX4 FMU V2", ""},
	{9900, 18, "Pixhawk", "PX4 FMU V4", ""},
	{9900, 19, "Pixhawk", "PX4 FMU V4 PRO", ""},
	{9900, 22, "Pixhawk", "PX4 FMU V2", "Bootloader on older Pixhawk V2 boards"},
	{9900, 4097, "Pixhawk", "AeroCore", ""},
	{9900, 33, "Pixhawk", "AUAV X2.1 FMU V2", ""},
	{9900, 48, "Pixhawk", "MindPX FMU V2", ""},
	{9900, 50, "Pixhawk", "PX4 FMU V5", ""},
	{12677, 51, "Pixhawk", "PX4 FMU V5X", ""},
	{7052, 54, "Pixhawk", "PX4 FMU V6U", ""},
	{12677, 53, "Pixhawk", "PX4 FMU V6X", ""},
	{12677, 56, "Pixhawk", "PX4 FMU V6C", ""},
	{13891, 29, "Pixhawk", "PX4 FMU V6X-RT", ""},
	{9900, 64, "Pixhawk", "TAP V1", ""},
	{9900, 65, "Pixhawk", "ASC V1", ""},
	{9900, 1, "Pixhawk", "Omnibus F4 SD", ""},
	{8137, 28, "Pixhawk", "PX4 FMUK66 v3.x", ""},
	{8137, 36, "Pixhawk", "Tropic-Community VMU", ""},
	{8137, 37, "Pixhawk", "MR-TROPIC", ""},
	{1155, 41775, "Pixhawk", "PX4 FMU ModalAI FCv1", ""},
	{1155, 41776, "Pixhawk", "PX4 FMU ModalAI FCv2", ""},
	{12642, 75, "Pixhawk", "PX4 DurandalV1", ""},
	{12642, 80, "Pixhawk", "Holybro Kakute Flight Controller", ""},
	{4104, 1, "Pixhawk", "PX4 FMU UVify Core", ""},
	{12643, 76, "Pixhawk", "CUAV Flight Controller", ""},
	{1155, 55, "Pixhawk", "PX4 FMU SmartAP AIRLink", ""},
	{12677, 57, "Pixhawk", "ARK FMU V6X", ""},
	{12677, 58, "Pixhawk", "ARK Pi6X", ""},
	{12677, 59, "Pixhawk", "ARK FPV", ""},
	{1155, 22336, "Pixhawk", "ArduPilot ChibiOS", ""},
	{4617, 22336, "Pixhawk", "ArduPilot ChibiOS", ""},
	{4617, 22337, "Pixhawk", "ArduPilot ChibiOS", ""},
	{12642, 0, "Pixhawk", "Holybro", ""},
	{11694, 0, "Pixhawk", "CubePilot", ""},
	{2702, 110, "Pixhawk", "JFB JFB110", ""},
	{13735, 1, "Pixhawk", "ThePeach FCC-K1", ""},
	{13735, 2, "Pixhawk", "ThePeach FCC-R1", ""},
	{9900, 4119, "Pixhawk", "mRo Pixracer Pro", ""},
	{9900, 4130, "Pixhawk", "mRo Control Zero Classic", ""},
	{9900, 4131, "Pixhawk", "mRo Control Zero H7", ""},
	{9900, 4132, "Pixhawk", "mRo Control Zero H7 OEM", ""},
	{9900, 4388, "Pixhawk", "3DR Control Zero H7 OEM Rev G", ""},
	{2106, 7120, "Pixhawk", "PX4 Accton Godwit GA1", ""},
	{1027, 24597, "SiK Radio", "SiK Radio", "3DR Radio"},
	{4292, 60000, "SiK Radio", "SiK Radio", "SILabs Radio"},
	{12346, 4097, "SiK Radio", "DroneBridge Radio", "ESP32-based telemetry radio"},
	{5446, 424, "RTK GPS", "U-blox RTK GPS", "U-blox RTK GPS (M8P)"},
	{5446, 425, "RTK GPS", "U-blox RTK GPS", "U-blox RTK GPS (F9P)"},
	{1317, 42151, "RTK GPS", "Trimble RTK GPS", ""},
	{5418, 34240, "RTK GPS", "Septentrio RTK GPS", ""},
	{8352, 16732, "OpenPilot", "OpenPilot OPLink", ""},
	{8352, 16733, "OpenPilot", "OpenPilot CC3D", ""},
	{8352, 16734, "OpenPilot", "OpenPilot Revolution", ""},
	{8352, 16848, "OpenPilot", "Taulabs Sparky2", ""},
	{13891, 5600, "Pixhawk", "ZeroOne X6", ""},
	{8355, 16888, "Pixhawk", "Svehicle e2", ""},
}

var byKey map[key]Info

func init() {
	byKey = make(map[key]Info, len(database))
	for _, info := range database {
		byKey[key{info.VendorID, info.ProductID}] = info
	}
}

// Identify returns "Name (Comment)" for a known board, "Name" when there is
// no comment, or a generic "Unknown Board (VID: .., PID: ..)" fallback.
func Identify(vendorID, productID uint16) string {
	info, ok := byKey[key{vendorID, productID}]
	if !ok {
		return fmt.Sprintf("Unknown Board (VID: %d, PID: %d)", vendorID, productID)
	}
	if info.Comment != "" {
		return fmt.Sprintf("%s (%s)", info.Name, info.Comment)
	}
	return info.Name
}

// Class returns the board's class ("Pixhawk", "SiK Radio", ...), or
// "Unknown" for an unrecognized pair.
func Class(vendorID, productID uint16) string {
	if info, ok := byKey[key{vendorID, productID}]; ok {
		return info.Class
	}
	return "Unknown"
}

// Name returns the board's bare name, or "Unknown Board" for an
// unrecognized pair.
func Name(vendorID, productID uint16) string {
	if info, ok := byKey[key{vendorID, productID}]; ok {
		return info.Name
	}
	return "Unknown Board"
}

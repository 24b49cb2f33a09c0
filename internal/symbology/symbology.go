// Package symbology defines the barcode symbology identifiers used across
// the scanner and their human-readable display labels.
package symbology

import "strings"

// ID is a machine identifier for a barcode symbology, e.g. "ean_13".
type ID string

const (
	Aztec      ID = "aztec"
	Codabar    ID = "codabar"
	Code39     ID = "code_39"
	Code93     ID = "code_93"
	Code128    ID = "code_128"
	DataMatrix ID = "data_matrix"
	EAN8       ID = "ean_8"
	EAN13      ID = "ean_13"
	ITF        ID = "itf"
	PDF417     ID = "pdf417"
	QRCode     ID = "qr_code"
	UPCA       ID = "upc_a"
	UPCE       ID = "upc_e"
	Unknown    ID = "unknown"
)

// labels maps known identifiers to their display names.
var labels = map[ID]string{
	Aztec:      "Aztec",
	Codabar:    "Codabar",
	Code39:     "Code 39",
	Code93:     "Code 93",
	Code128:    "Code 128",
	DataMatrix: "Data Matrix",
	EAN8:       "EAN-8",
	EAN13:      "EAN-13",
	ITF:        "ITF",
	PDF417:     "PDF417",
	QRCode:     "QR Code",
	UPCA:       "UPC-A",
	UPCE:       "UPC-E",
	Unknown:    "Unknown",
}

// Label returns the display name for id. Identifiers without a fixed label
// are rendered generically: uppercased with underscores replaced by spaces.
func Label(id ID) string {
	if l, ok := labels[id]; ok {
		return l
	}
	return strings.ToUpper(strings.ReplaceAll(string(id), "_", " "))
}

// FormatList renders a sequence of identifiers as a single comma-separated
// display string, e.g. "EAN-13, UPC-A, QR Code".
func FormatList(ids []ID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = Label(id)
	}
	return strings.Join(names, ", ")
}

// Parse normalizes a user-supplied symbology name to an ID. Unrecognized
// names are returned as-is so backends can reject them with context.
func Parse(s string) ID {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	switch id {
	case "qr", "qrcode":
		return QRCode
	case "ean13":
		return EAN13
	case "ean8":
		return EAN8
	case "upca":
		return UPCA
	case "upce":
		return UPCE
	case "code39":
		return Code39
	case "code93":
		return Code93
	case "code128":
		return Code128
	case "datamatrix":
		return DataMatrix
	case "pdf_417":
		return PDF417
	}
	return id
}

package detect

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/multi"

	"github.com/MeKo-Tech/scanline/internal/symbology"
)

// DefaultBackend is the backend used when no name is configured.
const DefaultBackend = "gozxing"

func init() {
	Register(DefaultBackend, newGozxing)
}

// gozxingDetector decodes frames with the pure-Go zxing port.
type gozxingDetector struct {
	hints   map[gozxing.DecodeHintType]interface{}
	maxSize int
}

func newGozxing(cfg Config) (Detector, error) {
	hints := make(map[gozxing.DecodeHintType]interface{})
	if len(cfg.Formats) > 0 {
		formats := make([]gozxing.BarcodeFormat, 0, len(cfg.Formats))
		for _, id := range cfg.Formats {
			bf, ok := toZXing(id)
			if !ok {
				return nil, fmt.Errorf("detect: unsupported symbology %q", id)
			}
			formats = append(formats, bf)
		}
		hints[gozxing.DecodeHintType_POSSIBLE_FORMATS] = formats
	}
	if cfg.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	return &gozxingDetector{hints: hints, maxSize: cfg.MaxImageSize}, nil
}

func (d *gozxingDetector) Detect(_ context.Context, img image.Image) ([]Match, error) {
	// Downscale oversized frames before binarization; result points are
	// scaled back to source coordinates.
	scale := 1.0
	if d.maxSize > 0 {
		b := img.Bounds()
		if longest := max(b.Dx(), b.Dy()); longest > d.maxSize {
			scale = float64(longest) / float64(d.maxSize)
			img = imaging.Fit(img, d.maxSize, d.maxSize, imaging.Linear)
		}
	}

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("detect: binarize frame: %w", err)
	}

	reader := multi.NewGenericMultipleBarcodeReader(gozxing.NewMultiFormatReader())
	results, err := reader.DecodeMultiple(bitmap, d.hints)
	if err != nil {
		if _, notFound := err.(gozxing.NotFoundException); notFound {
			return nil, nil
		}
		return nil, fmt.Errorf("detect: decode frame: %w", err)
	}

	out := make([]Match, 0, len(results))
	for _, r := range results {
		var points []Point
		if pts := r.GetResultPoints(); len(pts) > 0 {
			points = make([]Point, 0, len(pts))
			for _, p := range pts {
				points = append(points, Point{
					X: int(p.GetX() * scale),
					Y: int(p.GetY() * scale),
				})
			}
		}
		out = append(out, Match{
			Format: fromZXing(r.GetBarcodeFormat()),
			Value:  r.GetText(),
			Points: points,
		})
	}
	return out, nil
}

func (d *gozxingDetector) Formats(_ context.Context) ([]symbology.ID, error) {
	// The zxing port decodes a fixed symbology set; report it in stable order.
	return []symbology.ID{
		symbology.Aztec,
		symbology.Codabar,
		symbology.Code39,
		symbology.Code93,
		symbology.Code128,
		symbology.DataMatrix,
		symbology.EAN8,
		symbology.EAN13,
		symbology.ITF,
		symbology.PDF417,
		symbology.QRCode,
		symbology.UPCA,
		symbology.UPCE,
	}, nil
}

func toZXing(id symbology.ID) (gozxing.BarcodeFormat, bool) {
	switch id {
	case symbology.Aztec:
		return gozxing.BarcodeFormat_AZTEC, true
	case symbology.Codabar:
		return gozxing.BarcodeFormat_CODABAR, true
	case symbology.Code39:
		return gozxing.BarcodeFormat_CODE_39, true
	case symbology.Code93:
		return gozxing.BarcodeFormat_CODE_93, true
	case symbology.Code128:
		return gozxing.BarcodeFormat_CODE_128, true
	case symbology.DataMatrix:
		return gozxing.BarcodeFormat_DATA_MATRIX, true
	case symbology.EAN8:
		return gozxing.BarcodeFormat_EAN_8, true
	case symbology.EAN13:
		return gozxing.BarcodeFormat_EAN_13, true
	case symbology.ITF:
		return gozxing.BarcodeFormat_ITF, true
	case symbology.PDF417:
		return gozxing.BarcodeFormat_PDF_417, true
	case symbology.QRCode:
		return gozxing.BarcodeFormat_QR_CODE, true
	case symbology.UPCA:
		return gozxing.BarcodeFormat_UPC_A, true
	case symbology.UPCE:
		return gozxing.BarcodeFormat_UPC_E, true
	default:
		return 0, false
	}
}

func fromZXing(bf gozxing.BarcodeFormat) symbology.ID {
	switch bf {
	case gozxing.BarcodeFormat_AZTEC:
		return symbology.Aztec
	case gozxing.BarcodeFormat_CODABAR:
		return symbology.Codabar
	case gozxing.BarcodeFormat_CODE_39:
		return symbology.Code39
	case gozxing.BarcodeFormat_CODE_93:
		return symbology.Code93
	case gozxing.BarcodeFormat_CODE_128:
		return symbology.Code128
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return symbology.DataMatrix
	case gozxing.BarcodeFormat_EAN_8:
		return symbology.EAN8
	case gozxing.BarcodeFormat_EAN_13:
		return symbology.EAN13
	case gozxing.BarcodeFormat_ITF:
		return symbology.ITF
	case gozxing.BarcodeFormat_PDF_417:
		return symbology.PDF417
	case gozxing.BarcodeFormat_QR_CODE:
		return symbology.QRCode
	case gozxing.BarcodeFormat_UPC_A:
		return symbology.UPCA
	case gozxing.BarcodeFormat_UPC_E:
		return symbology.UPCE
	default:
		return symbology.Unknown
	}
}

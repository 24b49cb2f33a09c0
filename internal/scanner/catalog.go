package scanner

import (
	"context"
	"log/slog"
	"slices"

	"github.com/MeKo-Tech/scanline/internal/symbology"
)

// SupportedFormats returns the symbologies the detection capability can
// decode. The capability is queried at most once per service lifetime;
// later calls return the cached sequence. Without a capability, or when the
// single query failed, the result is empty.
func (s *Service) SupportedFormats(ctx context.Context) []symbology.ID {
	if s.detector == nil {
		return nil
	}
	s.catalogOnce.Do(func() {
		ids, err := s.detector.Formats(ctx)
		if err != nil {
			slog.Warn("symbology catalog query failed", "error", err)
			return
		}
		s.catalog = ids
	})
	// Callers get their own copy; the cache lives for the service lifetime.
	return slices.Clone(s.catalog)
}

// FormattedSupportedFormats renders the supported symbologies as one
// comma-separated display string, e.g. "EAN-13, QR Code". Failures upstream
// yield the empty string.
func (s *Service) FormattedSupportedFormats(ctx context.Context) string {
	return symbology.FormatList(s.SupportedFormats(ctx))
}

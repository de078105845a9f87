package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/radiusdt/vector-attrib/internal/models"
)

// Resolver looks up a country code for an IP address.
type Resolver interface {
	CountryCode(ip string) (string, error)
	Close() error
}

// MaxMindResolver implements Resolver over a MaxMind GeoLite2 database.
type MaxMindResolver struct {
	reader *geoip2.Reader
}

// NewMaxMindResolver opens the GeoIP database at dbPath.
func NewMaxMindResolver(dbPath string) (*MaxMindResolver, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &MaxMindResolver{reader: reader}, nil
}

// CountryCode returns the ISO country code for an IP address.
func (m *MaxMindResolver) CountryCode(ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	record, err := m.reader.Country(parsed)
	if err != nil {
		return "", err
	}
	return record.Country.IsoCode, nil
}

// Close closes the GeoIP database.
func (m *MaxMindResolver) Close() error {
	if m.reader != nil {
		return m.reader.Close()
	}
	return nil
}

// EnrichConversions fills in the country for rows that carry an IP but no
// country code. Lookup failures leave the row untouched; enrichment is best
// effort and never blocks the computation.
func EnrichConversions(rows []models.ConversionRow, resolver Resolver) {
	if resolver == nil {
		return
	}
	for i := range rows {
		if rows[i].Country != "" || rows[i].IP == "" {
			continue
		}
		code, err := resolver.CountryCode(rows[i].IP)
		if err != nil || code == "" {
			continue
		}
		rows[i].Country = code
	}
}

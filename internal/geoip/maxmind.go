package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Resolver resolves IP addresses to ISO 3166-1 alpha-2 country codes using
// a MaxMind GeoLite2 database.
type Resolver struct {
	reader *geoip2.Reader
}

// Open opens the GeoIP database at the given path.
func Open(dbPath string) (*Resolver, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Country returns the country code for an IP address.
func (r *Resolver) Country(ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	record, err := r.reader.Country(parsed)
	if err != nil {
		return "", err
	}
	return record.Country.IsoCode, nil
}

// Close closes the GeoIP database.
func (r *Resolver) Close() error {
	if r.reader != nil {
		return r.reader.Close()
	}
	return nil
}

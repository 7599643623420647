package geo

import (
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// Reader resolves source addresses to ISO country codes from a MaxMind database
type Reader struct {
	db *geoip2.Reader

	mu    sync.Mutex
	cache map[string]string
}

// Open loads a GeoLite2 or GeoIP2 country or city database
func Open(path string) (*Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip db %s: %w", path, err)
	}
	return &Reader{db: db, cache: make(map[string]string)}, nil
}

// Country returns ISO code of ip, empty string when address is invalid or not in database
func (r *Reader) Country(ip string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if code, ok := r.cache[ip]; ok {
		return code
	}
	var code string
	if addr := net.ParseIP(ip); addr != nil {
		if rec, err := r.db.Country(addr); err == nil {
			code = rec.Country.IsoCode
		}
	}
	r.cache[ip] = code
	return code
}

func (r *Reader) Close() error {
	return r.db.Close()
}

package geo

import (
	"net"
	"strings"

	"github.com/oschwald/maxminddb-golang"
)

type Result struct {
	Country   string  `json:"country"`
	Region    string  `json:"region"`
	City      string  `json:"city"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

var (
	localResult   = Result{Country: "Local", Region: "Local", City: "Local"}
	unknownResult = Result{Country: "Unknown", Region: "Unknown", City: "Unknown"}
)

type Reader struct {
	db *maxminddb.Reader
}

// Open opens a MaxMind .mmdb file. Returns a no-op Reader if path is empty;
// lookups then resolve to the Unknown tuple (private ranges still map to Local).
func Open(path string) (*Reader, error) {
	if path == "" {
		return &Reader{}, nil
	}
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() {
	if r != nil && r.db != nil {
		r.db.Close()
	}
}

// isPrivate mirrors the ranges the beacon treats as local traffic.
// 172.16.0.0/12 and IPv6 ULAs intentionally fall through to a normal lookup.
func isPrivate(ip string) bool {
	return ip == "127.0.0.1" || ip == "localhost" ||
		strings.HasPrefix(ip, "192.168.") || strings.HasPrefix(ip, "10.")
}

// Lookup resolves a client address to coarse location facts. Private and
// loopback addresses short-circuit to the Local tuple regardless of database
// state; anything unresolvable yields the Unknown tuple. Never fails.
func (r *Reader) Lookup(ipStr string) Result {
	cleaned := strings.TrimPrefix(ipStr, "::ffff:")

	if isPrivate(cleaned) {
		return localResult
	}

	if r == nil || r.db == nil {
		return unknownResult
	}
	ip := net.ParseIP(cleaned)
	if ip == nil {
		return unknownResult
	}

	var record struct {
		Country struct {
			ISOCode string `maxminddb:"iso_code"`
		} `maxminddb:"country"`
		City struct {
			Names map[string]string `maxminddb:"names"`
		} `maxminddb:"city"`
		Subdivisions []struct {
			Names map[string]string `maxminddb:"names"`
		} `maxminddb:"subdivisions"`
		Location struct {
			Latitude  float64 `maxminddb:"latitude"`
			Longitude float64 `maxminddb:"longitude"`
		} `maxminddb:"location"`
	}

	if err := r.db.Lookup(ip, &record); err != nil {
		return unknownResult
	}
	if record.Country.ISOCode == "" {
		return unknownResult
	}

	res := Result{
		Country:   record.Country.ISOCode,
		Region:    "Unknown",
		City:      "Unknown",
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
	if len(record.Subdivisions) > 0 {
		if name := record.Subdivisions[0].Names["en"]; name != "" {
			res.Region = name
		}
	}
	if name := record.City.Names["en"]; name != "" {
		res.City = name
	}
	return res
}

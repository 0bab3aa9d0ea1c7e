package carecost

import (
	"context"
	"net/url"
	"strings"
)

// Hospital is a healthcare facility returned by the discovery collaborator.
// A Hospital is never modified once a crawl starts.
type Hospital struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`

	// Location is nil when the upstream record carries no coordinates.
	Location *Coordinates `json:"location,omitempty"`

	// Distance from the search origin in miles. Zero when unknown.
	Distance float64 `json:"distance_miles,omitempty"`
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HasWebsite reports whether the hospital can be crawled.
func (h *Hospital) HasWebsite() bool {
	return strings.TrimSpace(h.Website) != ""
}

// HospitalQuery describes a nearby-hospital search.
type HospitalQuery struct {
	// Location is a free-form place such as "Austin, TX" or a street address.
	Location string

	// RadiusMiles bounds the search around the geocoded location.
	RadiusMiles float64

	// Limit caps the number of hospitals returned. Zero means no limit.
	Limit int
}

// Validate returns an error if the query cannot be executed.
func (q HospitalQuery) Validate() error {
	if strings.TrimSpace(q.Location) == "" {
		return Errorf(EINVALID, "location required")
	}
	if q.RadiusMiles <= 0 {
		return Errorf(EINVALID, "radius must be positive")
	}
	if q.Limit < 0 {
		return Errorf(EINVALID, "limit must not be negative")
	}
	return nil
}

// HospitalFinder discovers hospitals near a location.
type HospitalFinder interface {
	// FindHospitals geocodes the query location and returns nearby hospitals,
	// nearest first when distances are known.
	FindHospitals(ctx context.Context, q HospitalQuery) ([]*Hospital, error)
}

// NormalizeWebsite turns a website value from an upstream record into an
// absolute http(s) URL. Values without a scheme are assumed to be https.
func NormalizeWebsite(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Errorf(EINVALID, "website required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", Errorf(EINVALID, "invalid website %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", Errorf(EINVALID, "unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", Errorf(EINVALID, "website %q has no host", raw)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	return u.String(), nil
}

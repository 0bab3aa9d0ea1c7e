// Package osm discovers hospitals with OpenStreetMap services: Nominatim
// geocodes the search location and Overpass lists hospitals around it.
package osm

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/carecost"
)

const (
	// DefaultNominatimURL is the public Nominatim search endpoint.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

	// DefaultOverpassURL is the public Overpass interpreter endpoint.
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

	// DefaultUserAgent identifies the client as the OSM usage policies require.
	DefaultUserAgent = "carecost/1.0 (hospital discovery)"

	// DefaultTimeout bounds each OSM request.
	DefaultTimeout = 60 * time.Second
)

// Ensure Finder implements carecost.HospitalFinder at compile time.
var _ carecost.HospitalFinder = (*Finder)(nil)

// Finder finds hospitals near a location.
type Finder struct {
	client       *http.Client
	nominatimURL string
	overpassURL  string
	userAgent    string
}

// Option configures a Finder.
type Option func(*Finder)

// WithNominatimURL sets the geocoding endpoint.
func WithNominatimURL(u string) Option {
	return func(f *Finder) {
		f.nominatimURL = u
	}
}

// WithOverpassURL sets the Overpass endpoint.
func WithOverpassURL(u string) Option {
	return func(f *Finder) {
		f.overpassURL = u
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Finder) {
		f.userAgent = ua
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Finder) {
		f.client = c
	}
}

// NewFinder creates a new Finder.
func NewFinder(opts ...Option) *Finder {
	f := &Finder{
		client:       &http.Client{Timeout: DefaultTimeout},
		nominatimURL: DefaultNominatimURL,
		overpassURL:  DefaultOverpassURL,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindHospitals geocodes q.Location and returns the named hospitals within
// q.RadiusMiles, nearest first. Hospitals without coordinates sort last.
func (f *Finder) FindHospitals(ctx context.Context, q carecost.HospitalQuery) ([]*carecost.Hospital, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	origin, err := f.Geocode(ctx, q.Location)
	if err != nil {
		return nil, err
	}

	elements, err := f.overpass(ctx, query(origin, q.RadiusMiles))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var hospitals []*carecost.Hospital
	for _, el := range elements {
		h := el.hospital()
		if h == nil || seen[strings.ToLower(h.Name)] {
			continue
		}
		seen[strings.ToLower(h.Name)] = true
		if h.Location != nil {
			h.Distance = DistanceMiles(*origin, *h.Location)
		}
		hospitals = append(hospitals, h)
	}

	slices.SortStableFunc(hospitals, func(a, b *carecost.Hospital) int {
		if (a.Location == nil) != (b.Location == nil) {
			if a.Location == nil {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Distance, b.Distance)
	})
	if q.Limit > 0 && len(hospitals) > q.Limit {
		hospitals = hospitals[:q.Limit]
	}
	return hospitals, nil
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves a free-form location to coordinates. Returns ENOTFOUND
// when Nominatim has no match.
func (f *Finder) Geocode(ctx context.Context, location string) (*carecost.Coordinates, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.nominatimURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating geocode request: %w", err)
	}
	var places []place
	if err := f.do(req, &places); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", location, err)
	}
	if len(places) == 0 {
		return nil, carecost.Errorf(carecost.ENOTFOUND, "location %q not found", location)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude: %w", err)
	}
	return &carecost.Coordinates{Lat: lat, Lon: lon}, nil
}

// query builds an Overpass QL query for hospitals around origin.
func query(origin *carecost.Coordinates, radiusMiles float64) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", int(radiusMiles*metersPerMile), origin.Lat, origin.Lon)
	var b strings.Builder
	b.WriteString("[out:json][timeout:50];(")
	for _, tag := range []string{`["amenity"="hospital"]`, `["healthcare"="hospital"]`} {
		for _, kind := range []string{"node", "way", "relation"} {
			b.WriteString(kind + tag + around + ";")
		}
	}
	b.WriteString(");out center tags;")
	return b.String()
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *point            `json:"center"`
	Tags   map[string]string `json:"tags"`
}

// point is the center Overpass reports for ways and relations.
type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassResponse struct {
	Elements []element `json:"elements"`
}

func (f *Finder) overpass(ctx context.Context, q string) ([]element, error) {
	form := url.Values{}
	form.Set("data", q)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp overpassResponse
	if err := f.do(req, &resp); err != nil {
		return nil, fmt.Errorf("querying overpass: %w", err)
	}
	return resp.Elements, nil
}

func (f *Finder) do(req *http.Request, v any) error {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return carecost.Errorf(carecost.EUNAVAILABLE, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return carecost.Errorf(carecost.EUNAVAILABLE, "HTTP %d from %s", resp.StatusCode, req.URL.Host)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// hospital converts an element to a Hospital. Unnamed elements are dropped.
func (el element) hospital() *carecost.Hospital {
	name := strings.TrimSpace(el.Tags["name"])
	if name == "" {
		return nil
	}
	h := &carecost.Hospital{
		Name:    name,
		Address: address(el.Tags),
		Phone:   firstTag(el.Tags, "phone", "contact:phone"),
		Website: firstTag(el.Tags, "website", "contact:website", "url"),
	}
	switch {
	case el.Lat != nil && el.Lon != nil:
		h.Location = &carecost.Coordinates{Lat: *el.Lat, Lon: *el.Lon}
	case el.Center != nil:
		h.Location = &carecost.Coordinates{Lat: el.Center.Lat, Lon: el.Center.Lon}
	}
	return h
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(tags[k]); v != "" {
			return v
		}
	}
	return ""
}

// address formats the addr:* tags, falling back to a free-form address tag.
func address(tags map[string]string) string {
	var parts []string
	if n, s := tags["addr:housenumber"], tags["addr:street"]; n != "" && s != "" {
		parts = append(parts, n+" "+s)
	} else if s != "" {
		parts = append(parts, s)
	}
	for _, k := range []string{"addr:city", "addr:state", "addr:postcode"} {
		if v := tags[k]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return tags["address"]
}

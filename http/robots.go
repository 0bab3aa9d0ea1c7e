package http

import (
	"context"
	"errors"
	"net/url"

	"github.com/fwojciec/carecost"
	"github.com/temoto/robotstxt"
)

// Ensure RobotsService implements carecost.RobotsService at compile time.
var _ carecost.RobotsService = (*RobotsService)(nil)

// maxRobotsSize caps how much of a robots.txt file is parsed.
const maxRobotsSize = 512 << 10

// RobotsService parses robots.txt files.
type RobotsService struct {
	userAgent string
}

// NewRobotsService creates a RobotsService using the same options as
// NewFetcher. Only the user agent applies; it selects the robots.txt group.
func NewRobotsService(opts ...Option) *RobotsService {
	f := NewFetcher(opts...)
	return &RobotsService{userAgent: f.userAgent}
}

// Policy fetches /robots.txt for the host of siteURL through fetcher.
// Transport errors and unparseable files allow everything; a 4xx response
// allows everything, and a 5xx response disallows everything, as robotstxt
// reports them.
func (s *RobotsService) Policy(ctx context.Context, fetcher carecost.Fetcher, siteURL string) (carecost.RobotsPolicy, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return nil, carecost.Errorf(carecost.EINVALID, "invalid site URL %q", siteURL)
	}
	robotsURL := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}

	body, status, err := get(ctx, fetcher, robotsURL.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return allowAll{}, nil
	}
	if len(body) > maxRobotsSize {
		body = body[:maxRobotsSize]
	}
	data, err := robotstxt.FromStatusAndBytes(status, body)
	if err != nil {
		return allowAll{}, nil
	}
	return &policy{data: data, agent: s.userAgent}, nil
}

// get fetches targetURL and returns its body and status. A non-200 status
// is not an error; only failures without a status are.
func get(ctx context.Context, fetcher carecost.Fetcher, targetURL string) ([]byte, int, error) {
	resp, err := fetcher.Fetch(ctx, targetURL)
	if err == nil {
		return resp.Body, resp.StatusCode, nil
	}
	var fe *carecost.FetchError
	if errors.As(err, &fe) && fe.StatusCode != 0 {
		return nil, fe.StatusCode, nil
	}
	return nil, 0, err
}

// policy tests paths with TestAgent, which honors the allow-all and
// disallow-all results of 4xx and 5xx responses.
type policy struct {
	data  *robotstxt.RobotsData
	agent string
}

func (p *policy) Allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return p.data.TestAgent(path, p.agent)
}

type allowAll struct{}

func (allowAll) Allowed(string) bool { return true }

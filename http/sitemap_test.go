package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/carecost"
	carecosthttp "github.com/fwojciec/carecost/http"
	"github.com/fwojciec/carecost/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("reads sitemaps announced in robots.txt", func(t *testing.T) {
		t.Parallel()

		srv := newSitemapServer(t, map[string]string{
			"/robots.txt": "User-agent: *\nDisallow: /private/\nSitemap: {{BASE}}/pages.xml\n",
			"/pages.xml": `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/patients/billing</loc></url>
  <url><loc>{{BASE}}/price-transparency</loc></url>
</urlset>`,
		})

		urls, err := carecosthttp.NewSitemapService().DiscoverURLs(context.Background(), carecosthttp.NewFetcher(), srv.URL+"/about")

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/patients/billing", srv.URL + "/price-transparency"}, urls)
	})

	t.Run("falls back to sitemap.xml", func(t *testing.T) {
		t.Parallel()

		srv := newSitemapServer(t, map[string]string{
			"/sitemap.xml": `<urlset><url><loc>{{BASE}}/fees</loc></url></urlset>`,
		})

		urls, err := carecosthttp.NewSitemapService().DiscoverURLs(context.Background(), carecosthttp.NewFetcher(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/fees"}, urls)
	})

	t.Run("resolves sitemap indexes and removes duplicates", func(t *testing.T) {
		t.Parallel()

		srv := newSitemapServer(t, map[string]string{
			"/sitemap.xml": `<sitemapindex>
  <sitemap><loc>{{BASE}}/sitemap-a.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-b.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-a.xml</loc></sitemap>
</sitemapindex>`,
			"/sitemap-a.xml": `<urlset><url><loc>{{BASE}}/a</loc></url><url><loc>{{BASE}}/shared</loc></url></urlset>`,
			"/sitemap-b.xml": `<urlset><url><loc>{{BASE}}/shared</loc></url><url><loc>{{BASE}}/b</loc></url></urlset>`,
		})

		urls, err := carecosthttp.NewSitemapService().DiscoverURLs(context.Background(), carecosthttp.NewFetcher(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/a", srv.URL + "/shared", srv.URL + "/b"}, urls)
	})

	t.Run("skips missing child sitemaps", func(t *testing.T) {
		t.Parallel()

		srv := newSitemapServer(t, map[string]string{
			"/robots.txt":  "Sitemap: {{BASE}}/gone.xml\nSitemap: {{BASE}}/here.xml\n",
			"/here.xml":    `<urlset><url><loc>{{BASE}}/here</loc></url></urlset>`,
			"/sitemap.xml": `<urlset><url><loc>{{BASE}}/unused</loc></url></urlset>`,
		})

		urls, err := carecosthttp.NewSitemapService().DiscoverURLs(context.Background(), carecosthttp.NewFetcher(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/here"}, urls)
	})

	t.Run("returns empty slice when the site has no sitemap", func(t *testing.T) {
		t.Parallel()

		srv := newSitemapServer(t, map[string]string{})

		urls, err := carecosthttp.NewSitemapService().DiscoverURLs(context.Background(), carecosthttp.NewFetcher(), srv.URL)

		require.NoError(t, err)
		assert.NotNil(t, urls)
		assert.Empty(t, urls)
	})

	t.Run("returns error for unparseable sitemap", func(t *testing.T) {
		t.Parallel()

		srv := newSitemapServer(t, map[string]string{
			"/sitemap.xml": "just some text",
		})

		_, err := carecosthttp.NewSitemapService().DiscoverURLs(context.Background(), carecosthttp.NewFetcher(), srv.URL)

		require.Error(t, err)
	})

	t.Run("returns error for invalid site URL", func(t *testing.T) {
		t.Parallel()

		_, err := carecosthttp.NewSitemapService().DiscoverURLs(context.Background(), carecosthttp.NewFetcher(), "not a url")

		require.Error(t, err)
		assert.Equal(t, carecost.EINVALID, carecost.ErrorCode(err))
	})

	t.Run("sends every request through the given fetcher", func(t *testing.T) {
		t.Parallel()

		var requested []string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*carecost.Response, error) {
				requested = append(requested, url)
				switch url {
				case "https://hospital.example.org/robots.txt":
					return nil, &carecost.FetchError{URL: url, StatusCode: http.StatusNotFound}
				case "https://hospital.example.org/sitemap.xml":
					return &carecost.Response{
						URL:        url,
						StatusCode: http.StatusOK,
						Body:       []byte(`<urlset><url><loc>https://hospital.example.org/pricing</loc></url></urlset>`),
					}, nil
				}
				return nil, &carecost.FetchError{URL: url, StatusCode: http.StatusNotFound}
			},
		}

		urls, err := carecosthttp.NewSitemapService().DiscoverURLs(context.Background(), fetcher, "https://hospital.example.org/")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://hospital.example.org/pricing"}, urls)
		assert.Equal(t, []string{
			"https://hospital.example.org/robots.txt",
			"https://hospital.example.org/sitemap.xml",
		}, requested)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		srv := newSitemapServer(t, map[string]string{
			"/sitemap.xml": `<urlset><url><loc>{{BASE}}/page</loc></url></urlset>`,
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := carecosthttp.NewSitemapService().DiscoverURLs(ctx, carecosthttp.NewFetcher(), srv.URL)

		require.ErrorIs(t, err, context.Canceled)
	})
}

// newSitemapServer serves path->content. Content may contain {{BASE}},
// which is replaced with the server URL.
func newSitemapServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

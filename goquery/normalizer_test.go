package goquery_test

import (
	"testing"

	"github.com/fwojciec/carecost"
	"github.com/fwojciec/carecost/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricingHTML = `<html>
<head>
  <title> Price  List </title>
  <meta name="description" content="$777">
  <style>.price { color: red }</style>
  <script>var p = "$999";</script>
</head>
<body>
  <header><a href="/billing">Billing</a> Site header $5000</header>
  <main>
    <h1>Prices</h1>
    <p>CPT 99213
       cost: $125.00</p>
    <table>
      <tr><th>CPT Code</th><th>Price</th></tr>
      <tr><td>99213</td><td>$89.50</td></tr>
    </table>
    <noscript>enable javascript</noscript>
  </main>
  <footer><a href="/privacy">Privacy</a> footer text</footer>
</body>
</html>`

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	n := goquery.NewNormalizer()

	t.Run("strips noise nodes and collapses whitespace", func(t *testing.T) {
		t.Parallel()

		page, err := n.Normalize(&carecost.Response{
			URL:         "https://hospital.org/pricing",
			ContentType: "text/html; charset=utf-8",
			Body:        []byte(pricingHTML),
		})

		require.NoError(t, err)
		assert.Equal(t, "https://hospital.org/pricing", page.URL)
		assert.Equal(t, "Price List", page.Title)
		assert.Equal(t, "Prices CPT 99213 cost: $125.00 CPT Code Price 99213 $89.50", page.Text)
		assert.NotContains(t, page.Text, "$999")
		assert.NotContains(t, page.Text, "footer text")
	})

	t.Run("collects anchors from header and footer", func(t *testing.T) {
		t.Parallel()

		page, err := n.Normalize(&carecost.Response{URL: "https://hospital.org/", Body: []byte(pricingHTML)})

		require.NoError(t, err)
		assert.Equal(t, []carecost.Anchor{
			{Href: "/billing", Text: "Billing"},
			{Href: "/privacy", Text: "Privacy"},
		}, page.Anchors)
	})

	t.Run("reads table headers and rows", func(t *testing.T) {
		t.Parallel()

		page, err := n.Normalize(&carecost.Response{URL: "https://hospital.org/", Body: []byte(pricingHTML)})

		require.NoError(t, err)
		require.Len(t, page.Tables, 1)
		assert.Equal(t, []string{"CPT Code", "Price"}, page.Tables[0].Header)
		assert.Equal(t, [][]string{{"99213", "$89.50"}}, page.Tables[0].Rows)
	})

	t.Run("uses placeholder title when absent", func(t *testing.T) {
		t.Parallel()

		page, err := n.Normalize(&carecost.Response{Body: []byte("<p>hello</p>")})

		require.NoError(t, err)
		assert.Equal(t, carecost.DefaultTitle, page.Title)
		assert.Equal(t, "hello", page.Text)
	})

	t.Run("decodes declared charset", func(t *testing.T) {
		t.Parallel()

		page, err := n.Normalize(&carecost.Response{
			ContentType: "text/html; charset=windows-1252",
			Body:        []byte("<html><body><p>Caf\xe9 price $50</p></body></html>"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Café price $50", page.Text)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := n.Normalize(&carecost.Response{Body: []byte("  ")})

		assert.Equal(t, carecost.EINVALID, carecost.ErrorCode(err))
	})
}

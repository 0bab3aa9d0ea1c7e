package carecost_test

import (
	"testing"

	"github.com/fwojciec/carecost"
	"github.com/stretchr/testify/assert"
)

func TestRepresentative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prices []float64
		want   float64
		ok     bool
	}{
		{name: "empty has no representative", prices: nil, ok: false},
		{name: "single value", prices: []float64{125}, want: 125, ok: true},
		{name: "two values take the lowest", prices: []float64{300, 120}, want: 120, ok: true},
		{name: "three values take the median", prices: []float64{900, 15, 250}, want: 250, ok: true},
		{name: "four values take the upper median index", prices: []float64{10, 40, 20, 30}, want: 30, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := carecost.Representative(tt.prices)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepresentative_DoesNotReorderInput(t *testing.T) {
	t.Parallel()

	in := []float64{3, 1, 2}
	_, _ = carecost.Representative(in)

	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestBounds(t *testing.T) {
	t.Parallel()

	b := carecost.DefaultBounds

	assert.True(t, b.Contains(10))
	assert.True(t, b.Contains(50000))
	assert.False(t, b.Contains(9.99))
	assert.False(t, b.Contains(50000.01))
	assert.NoError(t, b.Validate())
	assert.Equal(t, carecost.EINVALID, carecost.ErrorCode(carecost.Bounds{Min: 100, Max: 10}.Validate()))
}

func TestFormatFromURL(t *testing.T) {
	t.Parallel()

	tests := map[string]carecost.StructuredFormat{
		"https://h.org/standard-charges.csv":    carecost.FormatCSV,
		"https://h.org/files/Charges.XLSX":      carecost.FormatXLSX,
		"https://h.org/mrf.json?version=2":      carecost.FormatJSON,
		"https://h.org/prices.xml#top":          carecost.FormatXML,
		"https://h.org/pricing.pdf":             carecost.FormatUnknown,
		"https://h.org/billing":                 carecost.FormatUnknown,
		"https://h.org/data.json/overview.html": carecost.FormatUnknown,
	}

	for u, want := range tests {
		t.Run(u, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, carecost.FormatFromURL(u))
		})
	}
}

func TestFormatFromContentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, carecost.FormatCSV, carecost.FormatFromContentType("text/csv; charset=utf-8"))
	assert.Equal(t, carecost.FormatJSON, carecost.FormatFromContentType("application/json"))
	assert.Equal(t, carecost.FormatXML, carecost.FormatFromContentType("text/xml"))
	assert.Equal(t, carecost.FormatXLSX, carecost.FormatFromContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.Equal(t, carecost.FormatXML, carecost.FormatFromContentType("application/rss+xml"))
	assert.Equal(t, carecost.FormatUnknown, carecost.FormatFromContentType("text/html"))
	assert.Equal(t, carecost.FormatUnknown, carecost.FormatFromContentType("application/xhtml+xml"))
}

func TestStructuredFormat_Method(t *testing.T) {
	t.Parallel()

	assert.Equal(t, carecost.MethodStructuredCSV, carecost.FormatCSV.Method())
	assert.Equal(t, carecost.MethodStructuredXLSX, carecost.FormatXLSX.Method())
	assert.Equal(t, carecost.MethodStructuredJSON, carecost.FormatJSON.Method())
	assert.Equal(t, carecost.MethodStructuredXML, carecost.FormatXML.Method())
	assert.Equal(t, "xlsx", carecost.FormatXLSX.String())
}

func TestMethod_Confident(t *testing.T) {
	t.Parallel()

	assert.True(t, carecost.MethodTextWindow.Confident())
	assert.True(t, carecost.MethodTableRow.Confident())
	assert.False(t, carecost.MethodStructuredCSV.Confident())
	assert.False(t, carecost.MethodPDFReference.Confident())
}

package carecost_test

import (
	"testing"

	"github.com/fwojciec/carecost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWebsite(t *testing.T) {
	t.Parallel()

	t.Run("adds https scheme and root path", func(t *testing.T) {
		t.Parallel()
		got, err := carecost.NormalizeWebsite("www.seton.net")
		require.NoError(t, err)
		assert.Equal(t, "https://www.seton.net/", got)
	})

	t.Run("keeps http and strips fragment", func(t *testing.T) {
		t.Parallel()
		got, err := carecost.NormalizeWebsite(" http://example.org/care#top ")
		require.NoError(t, err)
		assert.Equal(t, "http://example.org/care", got)
	})

	t.Run("rejects empty and non-http values", func(t *testing.T) {
		t.Parallel()
		_, err := carecost.NormalizeWebsite("")
		assert.Equal(t, carecost.EINVALID, carecost.ErrorCode(err))
		_, err = carecost.NormalizeWebsite("ftp://example.org")
		assert.Equal(t, carecost.EINVALID, carecost.ErrorCode(err))
	})
}

func TestHospitalQuery_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, carecost.HospitalQuery{Location: "Austin, TX", RadiusMiles: 10}.Validate())
	assert.Equal(t, carecost.EINVALID, carecost.ErrorCode(carecost.HospitalQuery{RadiusMiles: 10}.Validate()))
	assert.Equal(t, carecost.EINVALID, carecost.ErrorCode(carecost.HospitalQuery{Location: "x"}.Validate()))
	assert.Equal(t, carecost.EINVALID, carecost.ErrorCode(carecost.HospitalQuery{Location: "x", RadiusMiles: 1, Limit: -1}.Validate()))
}

func TestIsHTMLContentType(t *testing.T) {
	t.Parallel()

	assert.True(t, carecost.IsHTMLContentType("text/html; charset=utf-8"))
	assert.True(t, carecost.IsHTMLContentType("TEXT/HTML"))
	assert.True(t, carecost.IsHTMLContentType("application/xhtml+xml; charset=utf-8"))
	assert.False(t, carecost.IsHTMLContentType("application/pdf"))
	assert.False(t, carecost.IsHTMLContentType(""))
}

package collector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

const quotePage = `<!DOCTYPE html>
<html><head><title>EVO.ST history</title>
<script src="/static/app.js"></script>
<script>window.config = {"lang":"en-US"};</script>
<script>root.App.main = {"context":{"dispatcher":{"stores":{"PageStore":{},"CrumbStore":{"crumb":"Xy7\u002FaB.Qz"},"StreamStore":{}}}}};</script>
</head><body><div id="app">history</div></body></html>`

func TestExtractCrumb(t *testing.T) {
	crumb, err := ExtractCrumb(strings.NewReader(quotePage))
	require.NoError(t, err)
	assert.Equal(t, "Xy7/aB.Qz", crumb)
}

func TestExtractCrumb_SkipsMalformedOccurrences(t *testing.T) {
	page := `<html><script>var a = {"CrumbStore": 42}; var b = {"CrumbStore":{"crumb":"ok123"}};</script></html>`
	crumb, err := ExtractCrumb(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "ok123", crumb)
}

func TestExtractCrumb_NotFound(t *testing.T) {
	tests := map[string]string{
		"empty body":      "",
		"no crumb store":  `<html><head><script>root.App.main = {"context":{}};</script></head></html>`,
		"empty crumb":     `<html><script>{"CrumbStore":{"crumb":""}}</script></html>`,
		"outside script":  `<html><body><p>"CrumbStore":{"crumb":"abc"}</p></body></html>`,
		"truncated value": `<html><script>{"CrumbStore":{"crumb":"abc</script></html>`,
		"plain text":      "Service unavailable",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractCrumb(strings.NewReader(body))
			assert.ErrorIs(t, err, model.ErrTokenNotFound)
		})
	}
}

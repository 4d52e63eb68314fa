package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const productPage = `<!DOCTYPE html>
<html><head><title>Marine Weather</title><script>var x = "CHICAGO SHORE 99";</script></head>
<body>
<div id="nav">Home &gt; Products</div>
<pre class="glossaryProduct">
LAKE MICHIGAN WATER TEMPERATURES
CHICAGO SHORE............47.
</pre>
</body></html>`

func TestToText_ProductPage(t *testing.T) {
	t.Parallel()

	text := ToText(productPage)
	assert.Contains(t, text, "CHICAGO SHORE............47.")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "99")
}

func TestToText_PlainPre(t *testing.T) {
	t.Parallel()

	text := ToText("<html><body><pre>A 1</pre><p>skip</p><pre>B &amp; 2</pre></body></html>")
	assert.Equal(t, "A 1\nB & 2", text)
}

func TestToText_WholeDocument(t *testing.T) {
	t.Parallel()

	text := ToText("<html><body><script>bad()</script><p>Chicago Shore: <b>54</b>°F</p></body></html>")
	assert.Contains(t, text, "Chicago Shore: 54°F")
	assert.NotContains(t, text, "bad()")
}

func TestToText_PlainText(t *testing.T) {
	t.Parallel()

	raw := "Chicago Shore: 54°F\n"
	assert.Equal(t, raw, ToText(raw))
	assert.True(t, strings.HasSuffix(ToText(raw), "\n"))
}

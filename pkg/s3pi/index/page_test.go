package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRoot(t *testing.T) {
	doc := RenderRoot([]string{"bar", "foo"})

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>\n"))
	assert.Contains(t, doc, "<title>Simple Index</title>")
	assert.Contains(t, doc, `<meta name="api-version" value="2" />`)
	assert.Contains(t, doc, `<a href="bar/">bar</a>`)
	assert.Contains(t, doc, `<a href="foo/">foo</a>`)
	assert.Less(t, strings.Index(doc, "bar/"), strings.Index(doc, "foo/"),
		"entries keep the order given")
	assert.True(t, strings.HasSuffix(doc, "</html>\n"))
}

func TestRenderRootEmpty(t *testing.T) {
	doc := RenderRoot(nil)

	assert.NotContains(t, doc, "<a ")
	assert.Contains(t, doc, "<body>")
}

func TestRenderRootIdempotent(t *testing.T) {
	names := []string{"alpha", "beta", "gamma"}

	assert.Equal(t, RenderRoot(names), RenderRoot(names),
		"rendering twice from the same listing is byte-identical")
}

func TestAppendPackageLink(t *testing.T) {
	doc := AppendPackageLink("", "sample-1.0.whl")

	assert.Equal(t, "<a href=\"sample-1.0.whl\">sample-1.0.whl</a>\n<br />\n", doc)
}

func TestAppendPackageLinkNoDedup(t *testing.T) {
	doc := AppendPackageLink("", "sample-1.0.whl")
	doc = AppendPackageLink(doc, "sample-1.0.whl")

	// Appending is blind: the same filename twice produces two entries.
	assert.Equal(t, 2, strings.Count(doc, `<a href="sample-1.0.whl">`))
}

func TestListLinkedNames(t *testing.T) {
	doc := RenderRoot([]string{"foo", "bar"})

	names := ListLinkedNames(doc)

	require.Equal(t, []string{"foo/", "bar/"}, names)
}

func TestListLinkedNamesRoundTrip(t *testing.T) {
	doc := AppendPackageLink("", "foo-1.0.whl")
	doc = AppendPackageLink(doc, "foo-1.1.whl")

	names := ListLinkedNames(doc)

	require.Equal(t, []string{"foo-1.0.whl", "foo-1.1.whl"}, names)
}

func TestListLinkedNamesMalformed(t *testing.T) {
	doc := `<html><body>
<a href="good/">good</a>
<a>no href</a>
<a href="also-good/">broken
</body`

	names := ListLinkedNames(doc)

	require.Equal(t, []string{"good/", "also-good/"}, names,
		"unparsable anchors are skipped, not fatal")
}

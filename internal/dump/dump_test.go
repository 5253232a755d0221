package dump

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.11/" version="0.11">
  <siteinfo><sitename>Engineering Heritage</sitename></siteinfo>
  <page>
    <title>John Bradfield</title>
    <ns>0</ns>
    <id>1</id>
    <revision>
      <id>10</id>
      <timestamp>2024-09-14T10:00:00Z</timestamp>
      <text bytes="60" xml:space="preserve">Bradfield designed the bridge.&lt;ref&gt;x&lt;/ref&gt; [https://example.org Source]</text>
    </revision>
  </page>
  <page>
    <title>J Bradfield</title>
    <ns>0</ns>
    <redirect title="John Bradfield" />
    <revision>
      <timestamp>2024-09-15T10:00:00Z</timestamp>
      <text>#REDIRECT [[John Bradfield]]</text>
    </revision>
  </page>
  <page>
    <title>Help:Editing</title>
    <ns>0</ns>
    <revision><timestamp>2024-01-01T00:00:00Z</timestamp><text>help</text></revision>
  </page>
  <page>
    <title>Template:Infobox</title>
    <ns>10</ns>
    <revision><timestamp>2024-01-01T00:00:00Z</timestamp><text>{{{1}}}</text></revision>
  </page>
  <page>
    <title>Sydney Harbour Bridge</title>
    <ns>3002</ns>
    <revision><timestamp>2023-01-01T00:00:00Z</timestamp><text>first</text></revision>
    <revision><timestamp>2024-03-01T00:00:00Z</timestamp><text>second</text></revision>
  </page>
</mediawiki>`

func TestReaderDecodesPages(t *testing.T) {
	r := NewReader(strings.NewReader(sampleDump))

	p, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "John Bradfield", p.Title)
	assert.Equal(t, 0, p.NS)
	assert.Equal(t, "2024-09-14T10:00:00Z", p.Timestamp)
	assert.False(t, p.Redirect)
	assert.Equal(t, "Bradfield designed the bridge.<ref>x</ref> [https://example.org Source]", p.Text)

	p, err = r.Next()
	require.NoError(t, err)
	assert.True(t, p.Redirect)

	rest, err := r.All()
	require.NoError(t, err)
	require.Len(t, rest, 3)
	// The last revision wins.
	assert.Equal(t, "second", rest[2].Text)
	assert.Equal(t, "2024-03-01T00:00:00Z", rest[2].Timestamp)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRetain(t *testing.T) {
	pages, err := NewReader(strings.NewReader(sampleDump)).All()
	require.NoError(t, err)

	var kept []string
	for _, p := range pages {
		if Retain(p) {
			kept = append(kept, p.Title)
		}
	}
	assert.Equal(t, []string{"John Bradfield", "Sydney Harbour Bridge"}, kept)
}

func TestRetainRedirectText(t *testing.T) {
	assert.False(t, Retain(Page{Title: "Old", NS: 0, Redirect: true}))
	assert.False(t, Retain(Page{Title: "Broken links", NS: 0}))
	assert.True(t, Retain(Page{Title: "Profile:Smith, Jane", NS: 0}))
	assert.True(t, Retain(Page{Title: "Anything", NS: 3008}))
	assert.False(t, Retain(Page{Title: "Anything", NS: 3001}))
}

func TestReaderReportsMalformedXML(t *testing.T) {
	r := NewReader(strings.NewReader("<mediawiki><page><title>x</title><ns>zero</ns></page>"))
	_, err := r.Next()
	assert.Error(t, err)
}

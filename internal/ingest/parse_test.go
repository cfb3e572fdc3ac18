package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRSSFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test RSS Feed</title>
    <description>A test RSS feed</description>
    <link>https://example.com</link>
    <item>
      <title>RSS Post One</title>
      <link>https://example.com/post-1</link>
      <description>First RSS post &lt;b&gt;description&lt;/b&gt;</description>
      <pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>
    </item>
    <item>
      <title>RSS Post Two</title>
      <link>https://example.com/post-2</link>
      <description>Second RSS post description</description>
      <pubDate>Tue, 02 Jan 2024 12:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No Link Post</title>
      <description>This one is missing its link</description>
    </item>
  </channel>
</rss>`

const testAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <subtitle>A test Atom feed</subtitle>
  <link href="https://example.com" rel="alternate"/>
  <entry>
    <title>Atom Post One</title>
    <id>atom-id-1</id>
    <link href="https://example.com/atom-1" rel="alternate"/>
    <summary>First Atom post summary</summary>
    <published>2024-01-01T12:00:00Z</published>
  </entry>
  <entry>
    <title>Atom Post Two</title>
    <id>atom-id-2</id>
    <link href="https://example.com/atom-2" rel="alternate"/>
    <content>Second Atom post content body</content>
    <updated>2024-01-02T12:00:00Z</updated>
  </entry>
  <entry>
    <title>Atom Post Three</title>
    <id>https://example.com/atom-3</id>
    <summary>Entry with no link element at all</summary>
    <published>2024-01-03T12:00:00Z</published>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	doc, err := Parse([]byte(testRSSFeed))
	require.NoError(t, err)

	assert.Equal(t, "Test RSS Feed", doc.Title)

	// The linkless item is dropped silently.
	require.Len(t, doc.Items, 2)

	assert.Equal(t, "RSS Post One", doc.Items[0].Title)
	assert.Equal(t, "https://example.com/post-1", doc.Items[0].Link)
	// Descriptions are kept verbatim, markup included.
	assert.Equal(t, "First RSS post <b>description</b>", doc.Items[0].Description)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), doc.Items[0].Published)

	assert.Equal(t, "RSS Post Two", doc.Items[1].Title)
	assert.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), doc.Items[1].Published)
}

func TestParse_Atom(t *testing.T) {
	doc, err := Parse([]byte(testAtomFeed))
	require.NoError(t, err)

	assert.Equal(t, "Test Atom Feed", doc.Title)
	require.Len(t, doc.Items, 3)

	// First entry has a summary and a published date.
	assert.Equal(t, "Atom Post One", doc.Items[0].Title)
	assert.Equal(t, "https://example.com/atom-1", doc.Items[0].Link)
	assert.Equal(t, "First Atom post summary", doc.Items[0].Description)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), doc.Items[0].Published)

	// Second entry falls back to content and updated.
	assert.Equal(t, "Second Atom post content body", doc.Items[1].Description)
	assert.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), doc.Items[1].Published)

	// Third entry has no link element, so its id serves as the link.
	assert.Equal(t, "https://example.com/atom-3", doc.Items[2].Link)
}

func TestParse_UnknownDateSentinel(t *testing.T) {
	const feed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Dates</title>
    <item>
      <title>Bad date</title>
      <link>https://example.com/bad-date</link>
      <pubDate>sometime last tuesday-ish</pubDate>
    </item>
    <item>
      <title>No date</title>
      <link>https://example.com/no-date</link>
    </item>
  </channel>
</rss>`

	doc, err := Parse([]byte(feed))
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)

	// Unparseable and absent dates fail open to the zero-time sentinel
	// rather than rejecting the item.
	assert.True(t, doc.Items[0].Published.IsZero())
	assert.True(t, doc.Items[1].Published.IsZero())
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("definitely not xml <<<"))
	require.ErrorIs(t, err, ErrParse)

	_, err = Parse([]byte(`<rss><channel><item></rss>`))
	require.ErrorIs(t, err, ErrParse)
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse([]byte(`<?xml version="1.0"?><html><body>hi</body></html>`))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParse_StripsMarkupFromFeedTitle(t *testing.T) {
	const feed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>My &lt;marquee&gt;Fancy&lt;/marquee&gt; Feed</title>
  </channel>
</rss>`

	doc, err := Parse([]byte(feed))
	require.NoError(t, err)
	assert.Equal(t, "My Fancy Feed", doc.Title)
	assert.Empty(t, doc.Items)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "rss feed",
			input:    `<?xml version="1.0"?><rss version="2.0"><channel></channel></rss>`,
			expected: "rss",
		},
		{
			name:     "atom feed",
			input:    `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`,
			expected: "atom",
		},
		{
			name:     "empty input defaults to rss",
			input:    "",
			expected: "rss",
		},
		{
			name:     "other root element",
			input:    `<html></html>`,
			expected: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFormat([]byte(tt.input))
			assert.Equal(t, tt.expected, got)
		})
	}
}

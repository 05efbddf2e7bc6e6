package parser_test

import (
	"testing"

	"feed_ingestor/internal/logger"
	"feed_ingestor/internal/models"
	"feed_ingestor/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
	<channel>
		<title>Test Feed</title>
		<item>
			<title><![CDATA[First story]]></title>
			<link>https://example.com/1</link>
			<description><![CDATA[<p>Hello <b>world</b></p>]]></description>
			<pubDate>Wed, 03 May 2023 15:04:05 +0000</pubDate>
			<dc:creator><![CDATA[Jane Doe]]></dc:creator>
			<category><![CDATA[Tech]]></category>
			<category>Science</category>
		</item>
		<item>
			<title>Second story</title>
			<link>https://example.com/2</link>
			<description>Plain description</description>
			<pubDate>Thu, 04 May 2023 10:00:00 GMT</pubDate>
			<author>john@example.com (John Roe)</author>
		</item>
	</channel>
</rss>`

func parsers() map[string]parser.Parser {
	return map[string]parser.Parser{
		"pattern": parser.NewPattern(),
		"gofeed":  parser.NewGofeed(),
	}
}

func TestParse_SampleFeed(t *testing.T) {
	logger.Silence()
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			entries := p.Parse(sampleFeed)
			require.Len(t, entries, 2)

			assert.Equal(t, "First story", entries[0].Title)
			assert.Equal(t, "https://example.com/1", entries[0].Link)
			assert.Equal(t, "<p>Hello <b>world</b></p>", entries[0].Description)
			assert.Equal(t, "Wed, 03 May 2023 15:04:05 +0000", entries[0].PubDate)
			assert.Equal(t, "Jane Doe", entries[0].Author)
			assert.Equal(t, []string{"Tech", "Science"}, entries[0].Categories)

			assert.Equal(t, "Second story", entries[1].Title)
			assert.Equal(t, "Plain description", entries[1].Description)
			assert.Equal(t, "Thu, 04 May 2023 10:00:00 GMT", entries[1].PubDate)
			assert.Empty(t, entries[1].Categories)
		})
	}
}

func TestParse_NoItems(t *testing.T) {
	logger.Silence()
	inputs := []string{
		"",
		"not a feed at all",
		`<rss><channel><title>Empty</title></channel></rss>`,
	}
	for name, p := range parsers() {
		for _, in := range inputs {
			t.Run(name, func(t *testing.T) {
				require.Empty(t, p.Parse(in))
			})
		}
	}
}

func TestPattern_CDATAWinsOverPlain(t *testing.T) {
	raw := `<item>
		<title>plain title</title>
		<title><![CDATA[cdata title]]></title>
		<description>plain desc</description>
		<description><![CDATA[cdata desc]]></description>
		<link>https://example.com/x</link>
	</item>`

	entries := parser.NewPattern().Parse(raw)
	require.Len(t, entries, 1)
	require.Equal(t, "cdata title", entries[0].Title)
	require.Equal(t, "cdata desc", entries[0].Description)
}

func TestPattern_AuthorPrecedence(t *testing.T) {
	testCases := []struct {
		name  string
		block string
		want  string
	}{
		{
			name:  "creator cdata over author",
			block: `<item><author>generic</author><dc:creator><![CDATA[creator]]></dc:creator></item>`,
			want:  "creator",
		},
		{
			name:  "plain creator over author",
			block: `<item><author>generic</author><dc:creator>creator</dc:creator></item>`,
			want:  "creator",
		},
		{
			name:  "author fallback",
			block: `<item><author>generic</author></item>`,
			want:  "generic",
		},
		{
			name:  "empty creator falls back to author",
			block: `<item><dc:creator></dc:creator><author>generic</author></item>`,
			want:  "generic",
		},
		{
			name:  "absent",
			block: `<item><title>x</title></item>`,
			want:  "",
		},
	}

	p := parser.NewPattern()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries := p.Parse(tc.block)
			require.Len(t, entries, 1)
			require.Equal(t, tc.want, entries[0].Author)
		})
	}
}

func TestPattern_MalformedItemsDegrade(t *testing.T) {
	raw := `<item></item>
	<item attr="1"><title>Only title</title><link>broken</item>
	<item><pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate></item>
	<item><title>unterminated`

	entries := parser.NewPattern().Parse(raw)
	require.Equal(t, []models.Entry{
		{},
		{Title: "Only title"},
		{PubDate: "Mon, 01 Jan 2024 00:00:00 +0000"},
	}, entries)
}

func TestPattern_DateFallbacks(t *testing.T) {
	raw := `<item><dc:date>2024-01-02T03:04:05Z</dc:date></item>`
	entries := parser.NewPattern().Parse(raw)
	require.Len(t, entries, 1)
	require.Equal(t, "2024-01-02T03:04:05Z", entries[0].PubDate)
}

func TestGofeed_Atom(t *testing.T) {
	raw := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Atom Feed</title>
	<entry>
		<title>Atom entry</title>
		<link href="https://example.com/atom/1"/>
		<summary>Atom summary</summary>
		<published>2024-01-02T03:04:05Z</published>
		<author><name>Ada</name></author>
	</entry>
</feed>`

	entries := parser.NewGofeed().Parse(raw)
	require.Len(t, entries, 1)
	require.Equal(t, "Atom entry", entries[0].Title)
	require.Equal(t, "https://example.com/atom/1", entries[0].Link)
	require.Equal(t, "Atom summary", entries[0].Description)
	require.Equal(t, "2024-01-02T03:04:05Z", entries[0].PubDate)
	require.Equal(t, "Ada", entries[0].Author)
}

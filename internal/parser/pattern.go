package parser

import (
	"regexp"
	"strings"

	"feed_ingestor/internal/models"
)

var itemBlock = regexp.MustCompile(`(?s)<item(?:\s[^>]*)?>(.*?)</item>`)

// field matches a single element in both its CDATA-wrapped and plain forms.
type field struct {
	cdata *regexp.Regexp
	plain *regexp.Regexp
}

func newField(tag string) field {
	t := regexp.QuoteMeta(tag)
	return field{
		cdata: regexp.MustCompile(`(?s)<` + t + `(?:\s[^>]*)?>\s*<!\[CDATA\[(.*?)\]\]>\s*</` + t + `>`),
		plain: regexp.MustCompile(`(?s)<` + t + `(?:\s[^>]*)?>(.*?)</` + t + `>`),
	}
}

// first returns the CDATA value if the block has one, else the plain value.
func (f field) first(block string) (string, bool) {
	if m := f.cdata.FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := f.plain.FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// all returns every occurrence, each one CDATA-unwrapped when wrapped.
func (f field) all(block string) []string {
	var out []string
	for _, m := range f.plain.FindAllStringSubmatch(block, -1) {
		v := m[1]
		if c := f.cdata.FindStringSubmatch(m[0]); c != nil {
			v = c[1]
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var (
	titleField       = newField("title")
	linkField        = newField("link")
	descriptionField = newField("description")
	categoryField    = newField("category")

	// Date-bearing elements in lookup order.
	dateFields = []field{newField("pubDate"), newField("dc:date"), newField("published"), newField("updated")}
	// Creator-style elements first, then the generic author.
	authorFields = []field{newField("dc:creator"), newField("author")}
)

// Pattern extracts entries with regular expressions over <item> blocks.
// It does not validate the document and ignores namespaces other than the
// dc: author and date elements.
type Pattern struct{}

// NewPattern returns the regexp-based parser.
func NewPattern() *Pattern {
	return &Pattern{}
}

func (p *Pattern) Parse(raw string) []models.Entry {
	blocks := itemBlock.FindAllStringSubmatch(raw, -1)
	entries := make([]models.Entry, 0, len(blocks))
	for _, b := range blocks {
		entries = append(entries, parseItem(b[1]))
	}
	return entries
}

func parseItem(block string) models.Entry {
	var e models.Entry
	e.Title, _ = titleField.first(block)
	e.Link, _ = linkField.first(block)
	e.Description, _ = descriptionField.first(block)
	e.PubDate = firstOf(dateFields, block)
	e.Author = firstOf(authorFields, block)
	e.Categories = categoryField.all(block)
	return e
}

func firstOf(fields []field, block string) string {
	for _, f := range fields {
		if v, ok := f.first(block); ok && v != "" {
			return v
		}
	}
	return ""
}

package ingest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"

	"ratreader/internal/ratreader"
)

var (
	// ErrParse marks a document that could not be decoded as feed XML.
	ErrParse = errors.New("malformed feed document")
	// ErrUnknownFormat marks well-formed XML that is neither RSS nor Atom.
	ErrUnknownFormat = errors.New("unknown feed format")
)

// Document is a parsed feed: the feed's own title plus its candidate
// articles, in document order.
type Document struct {
	Title string
	Items []ratreader.Candidate
}

// The two wire schemas this parser accepts. Exactly one branch is taken per
// document; everything downstream only ever sees the normalized Candidate.
type (
	rssDocument struct {
		XMLName xml.Name `xml:"rss"`
		Channel struct {
			Title string    `xml:"title"`
			Items []rssItem `xml:"item"`
		} `xml:"channel"`
	}

	rssItem struct {
		Title       string `xml:"title"`
		Link        string `xml:"link"`
		Description string `xml:"description"`
		PubDate     string `xml:"pubDate"`
	}

	atomDocument struct {
		XMLName xml.Name    `xml:"feed"`
		Title   string      `xml:"title"`
		Entries []atomEntry `xml:"entry"`
	}

	atomEntry struct {
		Title     string     `xml:"title"`
		ID        string     `xml:"id"`
		Summary   string     `xml:"summary"`
		Content   string     `xml:"content"`
		Links     []atomLink `xml:"link"`
		Published string     `xml:"published"`
		Updated   string     `xml:"updated"`
	}

	atomLink struct {
		Href string `xml:"href,attr"`
		Rel  string `xml:"rel,attr"`
	}
)

// detectFormat looks at the root element to pick a schema: "rss" or "atom".
// Anything unrecognizable falls through to "rss", whose decode then reports
// the document as malformed.
func detectFormat(raw []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "rss"
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "rss":
			return "rss"
		case "feed":
			return "atom"
		default:
			return "unknown"
		}
	}
}

// Parse decodes raw feed bytes into a Document. Malformed XML yields
// [ErrParse]; well-formed XML of a shape that is neither RSS nor Atom yields
// [ErrUnknownFormat]. Both come back with an empty Document so a failed
// parse degrades to "zero new articles" for the cycle.
func Parse(raw []byte) (Document, error) {
	switch detectFormat(raw) {
	case "rss":
		return parseRSS(raw)
	case "atom":
		return parseAtom(raw)
	default:
		return Document{}, ErrUnknownFormat
	}
}

func parseRSS(raw []byte) (Document, error) {
	var doc rssDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %s", ErrParse, err)
	}

	items := []ratreader.Candidate{}
	for _, item := range doc.Channel.Items {
		var (
			title = strings.TrimSpace(item.Title)
			link  = strings.TrimSpace(item.Link)
		)
		// Feeds routinely carry malformed entries; anything without a title
		// and a link is skipped, not an error.
		if title == "" || link == "" {
			continue
		}

		items = append(items, ratreader.Candidate{
			Title:       title,
			Description: item.Description,
			Link:        link,
			Published:   parseWhen(item.PubDate),
		})
	}

	return Document{
		Title: sanitizeTitle(doc.Channel.Title),
		Items: items,
	}, nil
}

func parseAtom(raw []byte) (Document, error) {
	var doc atomDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %s", ErrParse, err)
	}

	items := []ratreader.Candidate{}
	for _, entry := range doc.Entries {
		var (
			title = strings.TrimSpace(entry.Title)
			link  = strings.TrimSpace(atomEntryLink(entry))
		)
		if title == "" || link == "" {
			continue
		}

		// Fallback order per field: summary then content, published then
		// updated.
		description := entry.Summary
		if description == "" {
			description = entry.Content
		}
		when := entry.Published
		if strings.TrimSpace(when) == "" {
			when = entry.Updated
		}

		items = append(items, ratreader.Candidate{
			Title:       title,
			Description: description,
			Link:        link,
			Published:   parseWhen(when),
		})
	}

	return Document{
		Title: sanitizeTitle(doc.Title),
		Items: items,
	}, nil
}

// atomEntryLink picks the entry's link: the rel="alternate" href, then the
// first href, then the entry id.
func atomEntryLink(entry atomEntry) string {
	for _, l := range entry.Links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href
		}
	}
	for _, l := range entry.Links {
		if l.Href != "" {
			return l.Href
		}
	}

	return entry.ID
}

// parseWhen parses a publish date, tolerating RFC-822 and ISO-8601 forms.
// Absent or unparseable dates come back as the zero time, the "unknown date"
// sentinel, which sorts after every real date in the newest-first listing.
func parseWhen(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	when, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}

	return when.UTC()
}

var stripPolicy = bluemonday.StrictPolicy()

// Removes all html tags from a feed-level title and bounds its length.
// Article fields are stored verbatim; only derived display names get
// stripped.
func sanitizeTitle(s string) string {
	s = strings.TrimSpace(stripPolicy.Sanitize(s))
	if len(s) > 256 {
		s = s[:256]
	}

	return s
}

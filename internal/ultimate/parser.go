package ultimate

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/handiism/ultimate-tab/internal/model"
	"github.com/handiism/ultimate-tab/internal/tab"
	"github.com/handiism/ultimate-tab/internal/ultimate/dto"
)

// ErrNoContent is returned when a page has no element that holds tab text.
//
// This typically means the URL is not a tab page, or the page was fetched
// before its content was rendered.
var ErrNoContent = errors.New("no tab content found on page")

// ErrEmptyResult is returned when the tab element was found but no
// non-blank lines could be reconstructed from it.
var ErrEmptyResult = errors.New("tab content is empty")

// DefaultMinHeuristicLength is the minimum text length, in characters, of an
// element picked by the fallback content search.
const DefaultMinHeuristicLength = 80

// contentSelectors are tried in order; the first non-empty match holds the tab.
var contentSelectors = []*xpath.Expr{
	xpath.MustCompile(`//pre[contains(@class, 'js-tab-content')]`),
	xpath.MustCompile(`//pre`),
	xpath.MustCompile(`//*[contains(@class, 'js-tab-content')]`),
	xpath.MustCompile(`//code`),
}

var (
	heuristicSelector = xpath.MustCompile(`//div | //section | //article | //p | //td`)
	storeSelector     = xpath.MustCompile(`//*[contains(concat(' ', normalize-space(@class), ' '), ' js-store ')]`)
	titleSelector     = xpath.MustCompile(`//*[@itemprop='name']`)
	headingSelector   = xpath.MustCompile(`//h1`)
	artistSelector    = xpath.MustCompile(`//*[contains(concat(' ', normalize-space(@class), ' '), ' t_autor ')]`)
	infoHeadSelector  = xpath.MustCompile(`//*[contains(concat(' ', normalize-space(@class), ' '), ' t_dt ')]`)
	infoValueSelector = xpath.MustCompile(`//*[contains(concat(' ', normalize-space(@class), ' '), ' t_dtde ')]`)
	linkSelector      = xpath.MustCompile(`.//a`)
)

var (
	chordsWord = regexp.MustCompile(`(?i)\bchords\b`)
	byPrefix   = regexp.MustCompile(`(?i)^by\s+`)
)

// Parser extracts a tab from an Ultimate Guitar page.
//
// Parser reads song information from the page markup, falling back to the
// js-store JSON that newer pages embed, then locates the tab text and
// reconstructs it with the tab package.
//
// Example usage:
//
//	parser := NewParser()
//	t, err := parser.Parse(htmlContent)
//	if errors.Is(err, ErrNoContent) {
//	    fmt.Println("not a tab page")
//	    return
//	}
//	fmt.Printf("%s by %s (%d lines)\n", t.Metadata.Title, t.Metadata.Artist, len(t.Lines))
type Parser struct {
	minHeuristicLength int
}

// NewParser creates a Parser with default settings.
func NewParser() *Parser {
	return &Parser{minHeuristicLength: DefaultMinHeuristicLength}
}

// Parse extracts metadata and lines from a tab page.
//
// Metadata never causes an error; missing fields keep their defaults.
//
// Returns:
//   - ErrNoContent if no element holding tab text is found
//   - ErrEmptyResult if the tab text reconstructs to nothing but blank lines
func (p *Parser) Parse(htmlContent string) (*model.Tab, error) {
	doc, err := htmlquery.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	store := extractStore(doc)
	meta := extractMetadata(doc, store)

	raw, ok := p.extractContent(doc, store)
	if !ok {
		return nil, ErrNoContent
	}

	t := &model.Tab{
		Metadata: meta,
		Lines:    tab.Reconstruct(raw),
	}
	if !t.HasContent() {
		return nil, ErrEmptyResult
	}

	return t, nil
}

// extractStore decodes the js-store page state, if the page has one.
//
// Ultimate Guitar embeds it like this:
//
//	<div class="js-store" data-content="{&quot;store&quot;:...}">
//
// The HTML parser has already unescaped the attribute value.
func extractStore(doc *html.Node) *dto.JSONStore {
	n := htmlquery.QuerySelector(doc, storeSelector)
	if n == nil {
		return nil
	}
	data := htmlquery.SelectAttr(n, "data-content")
	if data == "" {
		return nil
	}
	var store dto.JSONStore
	if err := json.Unmarshal([]byte(data), &store); err != nil {
		return nil
	}
	return &store
}

func extractMetadata(doc *html.Node, store *dto.JSONStore) model.Metadata {
	meta := model.NewMetadata()

	if n := htmlquery.QuerySelector(doc, titleSelector); n != nil {
		setText(&meta.Title, chordsWord.ReplaceAllString(htmlquery.InnerText(n), ""))
	}

	if n := htmlquery.QuerySelector(doc, artistSelector); n != nil {
		artist := strings.TrimSpace(strings.ReplaceAll(htmlquery.InnerText(n), "\n", ""))
		setText(&meta.Artist, byPrefix.ReplaceAllString(artist, ""))
	}

	extractInfoTable(doc, &meta)

	if store != nil {
		store.FillMetadata(&meta)
	}

	if meta.Title == model.Unknown {
		if n := htmlquery.QuerySelector(doc, headingSelector); n != nil {
			setText(&meta.Title, chordsWord.ReplaceAllString(htmlquery.InnerText(n), ""))
		}
	}

	return meta
}

// extractInfoTable reads the info block of older pages, where a header
// element lists field names ("Author Difficulty Key ...") and one value
// element per field follows in the same order.
func extractInfoTable(doc *html.Node, meta *model.Metadata) {
	head := htmlquery.QuerySelector(doc, infoHeadSelector)
	if head == nil {
		return
	}
	headers := strings.Fields(strings.ToLower(htmlquery.InnerText(head)))
	values := htmlquery.QuerySelectorAll(doc, infoValueSelector)

	for i, header := range headers {
		if i >= len(values) {
			break
		}
		value := strings.TrimSpace(htmlquery.InnerText(values[i]))
		switch header {
		case "author":
			if a := htmlquery.QuerySelector(values[i], linkSelector); a != nil {
				value = strings.TrimSpace(htmlquery.InnerText(a))
			}
			setText(&meta.Author, value)
		case "difficulty":
			meta.Difficulty = value
		case "key":
			meta.Key = value
		case "capo":
			meta.Capo = value
		case "tuning":
			meta.Tuning = value
		}
	}
}

func setText(field *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*field = v
	}
}

// extractContent finds the tab text and splits it into lines.
// Named containers win over the js-store, which wins over the heuristic search.
func (p *Parser) extractContent(doc *html.Node, store *dto.JSONStore) ([]string, bool) {
	for _, expr := range contentSelectors {
		n := htmlquery.QuerySelector(doc, expr)
		if n == nil {
			continue
		}
		if text := nodeText(n); strings.TrimSpace(text) != "" {
			return splitLines(text), true
		}
	}

	if store != nil {
		if text, ok := store.Content(); ok {
			return splitLines(text), true
		}
	}

	return p.findChordBlock(doc)
}

// findChordBlock picks the shortest element that is long enough and has at
// least one chord line, which skips wrappers around the whole page.
func (p *Parser) findChordBlock(doc *html.Node) ([]string, bool) {
	var best []string
	bestLen := -1

	for _, n := range htmlquery.QuerySelectorAll(doc, heuristicSelector) {
		text := nodeText(n)
		length := utf8.RuneCountInString(strings.TrimSpace(text))
		if length < p.minHeuristicLength {
			continue
		}
		if bestLen >= 0 && length >= bestLen {
			continue
		}
		lines := splitLines(text)
		if !hasChordLine(lines) {
			continue
		}
		best, bestLen = lines, length
	}

	return best, bestLen >= 0
}

func hasChordLine(lines []string) bool {
	for _, l := range lines {
		if !tab.IsNoise(l) && tab.IsChordLine(l) {
			return true
		}
	}
	return false
}

// nodeText returns the text under n. <br> becomes a newline; script and
// style contents are skipped.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "br":
				sb.WriteByte('\n')
				return
			case "script", "style":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Package collect scans a parsed page for flashcard items.
//
// The markup contract:
//
//	<div data-fcard-item data-fcard-tags="animals pets" data-fcard-example="ex1">
//	  <span lang="en">dog</span>
//	  <span lang="pl" data-fcard-disambiguation="zwierzę">pies</span>
//	</div>
//	<p id="ex1">The dog barks.</p>
package collect

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-shiori/dom"
	"github.com/japaniel/fcard/pkg/fcard"
	"golang.org/x/net/html"
)

// Attribute names of the markup contract.
const (
	AttrItem           = "data-fcard-item"
	AttrExample        = "data-fcard-example"
	AttrTags           = "data-fcard-tags"
	AttrDisambiguation = "data-fcard-disambiguation"
	AttrLang           = "lang"
)

// Collector turns item elements into fcard items.
type Collector struct {
	// Logger receives notices about skipped elements. nil means slog.Default().
	Logger *slog.Logger
}

// Scan collects every item on the page into a Store using a default Collector.
func Scan(doc *html.Node) (*fcard.Store, error) {
	return (&Collector{}).Scan(doc)
}

// Scan collects every item on the page into a Store. It fails with
// fcard.ErrNoItemsFound when the page has no usable item elements; no partial
// store is returned on failure.
func (c *Collector) Scan(doc *html.Node) (*fcard.Store, error) {
	items, err := c.Items(doc)
	if err != nil {
		return nil, err
	}
	return fcard.NewStore(items)
}

// Items returns the items found on the page in document order.
func (c *Collector) Items(doc *html.Node) ([]fcard.Item, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", fcard.ErrInvalidArgument)
	}
	elements := dom.QuerySelectorAll(doc, "["+AttrItem+"]")
	if len(elements) == 0 {
		return nil, fcard.ErrNoItemsFound
	}

	ids := indexByID(doc)
	items := make([]fcard.Item, 0, len(elements))
	for i, el := range elements {
		it := ItemFromElement(el, i+1, ids)
		if len(it.Languages) == 0 {
			c.logger().Warn("skipping item without language variants", "anchor", it.Anchor)
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, fcard.ErrNoItemsFound
	}
	return items, nil
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ItemFromElement builds an item from an element carrying data-fcard-item.
// position is the 1-based document position, used as the anchor when the
// element has no id. ids resolves example references.
func ItemFromElement(el *html.Node, position int, ids map[string]*html.Node) fcard.Item {
	it := fcard.Item{
		Anchor: dom.ID(el),
		HTML:   dom.OuterHTML(el),
		Text:   RenderedText(el),
	}
	if it.Anchor == "" {
		it.Anchor = fmt.Sprintf("item-%d", position)
	}

	for _, textEl := range dom.QuerySelectorAll(el, "["+AttrLang+"]") {
		lang := strings.TrimSpace(dom.GetAttribute(textEl, AttrLang))
		if lang == "" {
			continue
		}
		it.AddFragment(fcard.Fragment{
			Lang:           lang,
			HTML:           dom.OuterHTML(textEl),
			Text:           RenderedText(textEl),
			Disambiguation: strings.TrimSpace(dom.GetAttribute(textEl, AttrDisambiguation)),
		})
	}

	for _, id := range strings.Fields(dom.GetAttribute(el, AttrExample)) {
		if ex, ok := ids[id]; ok {
			it.Examples = append(it.Examples, fcard.Example{ID: id, HTML: dom.OuterHTML(ex), Text: RenderedText(ex)})
		}
	}

	it.Tags = strings.Fields(dom.GetAttribute(el, AttrTags))
	return it
}

// RenderedText returns the text content of n with whitespace runs collapsed,
// approximating what a browser displays.
func RenderedText(n *html.Node) string {
	return strings.Join(strings.Fields(dom.TextContent(n)), " ")
}

// indexByID maps element ids to elements; the first element wins on duplicates,
// matching getElementById.
func indexByID(doc *html.Node) map[string]*html.Node {
	ids := make(map[string]*html.Node)
	for _, n := range dom.QuerySelectorAll(doc, "[id]") {
		id := dom.ID(n)
		if _, seen := ids[id]; !seen && id != "" {
			ids[id] = n
		}
	}
	return ids
}

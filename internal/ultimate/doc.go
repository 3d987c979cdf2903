// Package ultimate reads tab pages from Ultimate Guitar.
//
// The Parser turns a page's HTML into a model.Tab:
//
//	parser := ultimate.NewParser()
//	t, err := parser.Parse(htmlContent)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s - %s\n", t.Metadata.Artist, t.Metadata.Title)
//
// # Locating the tab
//
// Tab text is searched for in this order:
//
//  1. a <pre> with the js-tab-content class, then any <pre>
//  2. any element with the js-tab-content class, then any <code>
//  3. the wiki_tab content of the js-store JSON
//  4. the shortest block element with at least 80 characters of text that
//     contains a chord line
//
// # Page state
//
// Newer pages render in the browser from a JSON blob kept in the
// data-content attribute of a js-store element. The dto subpackage decodes it
// and is used both for tab text and to fill metadata the markup lacks.
package ultimate

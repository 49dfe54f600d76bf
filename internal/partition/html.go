package partition

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dgallion1/docpart/internal/classify"
	"github.com/dgallion1/docpart/internal/element"
)

const filetypeHTML = "text/html"

var (
	// Subtrees that never contribute content.
	htmlSkipTags = map[string]bool{
		"script":   true,
		"style":    true,
		"head":     true,
		"noscript": true,
		"template": true,
	}

	// Tags that are one text block by themselves: their whole subtree
	// is collected into elements without structural recursion.
	htmlTextTags = map[string]bool{
		"p": true, "a": true, "span": true, "font": true, "pre": true,
		"b": true, "i": true, "u": true, "em": true, "strong": true,
		"dt": true,
	}

	// Inline tags folded into a surrounding text run instead of
	// breaking it.
	htmlInlineTags = map[string]bool{
		"a": true, "span": true, "font": true, "b": true, "i": true,
		"u": true, "em": true, "strong": true, "br": true, "img": true,
		"code": true, "small": true, "sub": true, "sup": true, "mark": true,
	}

	// Tags recorded as emphasis when met inside a text run.
	htmlEmphasisTags = map[string]bool{
		"b": true, "i": true, "strong": true, "em": true, "span": true,
	}

	htmlHeadingTags = map[string]bool{
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	}

	htmlListItemTags      = map[string]bool{"li": true, "dd": true}
	htmlListContainerTags = map[string]bool{"ul": true, "ol": true, "dl": true}
)

// HTML partitions an HTML document into classified elements in
// document order. Headings and list items map structurally; other text
// goes through the text classifier. Links and emphasis found inside an
// element's span land in its metadata, along with the ancestor tags of
// its containing node.
func HTML(src Source, opts Options) ([]element.Element, error) {
	if err := validateBounds(opts); err != nil {
		return nil, err
	}
	sd, err := resolveSource(src, opts, acceptHTML)
	if err != nil {
		return nil, err
	}
	text, err := decodeSource(sd, opts, true)
	if err != nil {
		return nil, err
	}

	elems, err := partitionHTMLString(text, opts)
	if err != nil {
		return nil, err
	}
	return finalize(elems, baseMetadata(sd, opts, filetypeHTML), opts)
}

// partitionHTMLString walks decoded markup and returns raw elements,
// before identifiers and the shared envelope are applied.
func partitionHTMLString(text string, opts Options) ([]element.Element, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	w := &htmlWalker{opts: opts}
	if articles := findArticles(doc); opts.AssembleArticles && len(articles) > 0 {
		for _, article := range articles {
			w.walk(article, ancestorChain(article))
		}
	} else {
		w.walk(doc, nil)
	}
	return w.elems, nil
}

type htmlWalker struct {
	opts  Options
	elems []element.Element
}

// walk dispatches one node. ancestors holds the tags enclosing n, root
// first, not including n itself.
func (w *htmlWalker) walk(n *html.Node, ancestors []string) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c, ancestors)
		}
		return
	case html.TextNode:
		w.emitClassified(piece{text: normalizeWhitespace(n.Data)}, ancestors)
		return
	case html.ElementNode:
	default:
		return
	}

	tag := n.Data
	if htmlSkipTags[tag] {
		return
	}
	if w.opts.SkipHeadersAndFooters && (tag == "header" || tag == "footer") {
		return
	}
	if w.opts.IncludePageBreaks && strings.Contains(strings.ToLower(nodeAttr(n, "style")), "page-break") {
		w.emitPageBreak(ancestors)
	}

	switch {
	case tag == "hr":
		if w.opts.IncludePageBreaks {
			w.emitPageBreak(ancestors)
		}
	case tag == "br":
		// Nothing between blocks.
	case htmlHeadingTags[tag]:
		for _, p := range collectInline(n, false) {
			w.emitAs(element.Title, p, ancestors)
		}
	case htmlListItemTags[tag]:
		w.walkListItem(n, ancestors)
	case htmlListContainerTags[tag]:
		childAnc := pushTag(ancestors, tag)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c, childAnc)
		}
	case tag == "table":
		w.emitTable(n, ancestors)
	case htmlTextTags[tag]:
		for _, p := range collectInline(n, tag == "pre") {
			w.emitClassified(p, ancestors)
		}
	default:
		w.walkContainer(n, ancestors)
	}
}

// walkContainer handles generic block containers: consecutive text and
// inline children form text runs, block children recurse between them.
func (w *htmlWalker) walkContainer(n *html.Node, ancestors []string) {
	childAnc := pushTag(ancestors, n.Data)
	col := newCollector(false)
	flush := func() {
		for _, p := range col.drain() {
			w.emitClassified(p, childAnc)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			col.writeText(c.Data)
		case c.Type == html.ElementNode && htmlInlineTags[c.Data]:
			col.feed(c)
		case c.Type == html.ElementNode:
			flush()
			w.walk(c, childAnc)
		}
	}
	flush()
}

// walkListItem emits the item's own text as one ListItem, then
// recurses into any nested lists.
func (w *htmlWalker) walkListItem(n *html.Node, ancestors []string) {
	col := newCollector(false)
	var nested []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && htmlListContainerTags[c.Data] {
			nested = append(nested, c)
			continue
		}
		col.feed(c)
	}
	for _, p := range col.drain() {
		w.emitAs(element.ListItem, p, ancestors)
	}

	childAnc := pushTag(ancestors, n.Data)
	for _, list := range nested {
		w.walk(list, childAnc)
	}
}

// emitTable flattens a table subtree into a single Table element with
// an HTML rendering in text_as_html.
func (w *htmlWalker) emitTable(n *html.Node, ancestors []string) {
	var rows [][]string
	var scanRows func(*html.Node)
	scanRows = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			var cells []string
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, normalizeWhitespace(subtreeText(c)))
				}
			}
			rows = append(rows, cells)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			scanRows(c)
		}
	}
	scanRows(n)

	text := tableText(rows)
	if text == "" {
		return
	}
	md := element.Metadata{TextAsHTML: tableHTML(rows)}
	if len(ancestors) > 0 {
		md.AncestorTags = append([]string(nil), ancestors...)
	}
	w.elems = append(w.elems, element.Element{
		Category: element.Table,
		Text:     text,
		Metadata: md,
	})
}

func (w *htmlWalker) emitPageBreak(ancestors []string) {
	md := element.Metadata{}
	if len(ancestors) > 0 {
		md.AncestorTags = append([]string(nil), ancestors...)
	}
	w.elems = append(w.elems, element.Element{Category: element.PageBreak, Metadata: md})
}

// emitClassified runs a text run through the classifier. Runs shorter
// than two characters are noise and dropped.
func (w *htmlWalker) emitClassified(p piece, ancestors []string) {
	if utf8.RuneCountInString(p.text) < 2 {
		return
	}
	cat := classify.Text(p.text, false)
	text := p.text
	if cat == element.ListItem {
		text = classify.CleanBullets(text)
	}
	w.append(cat, text, p, ancestors)
}

// emitAs forces a category for structurally typed tags.
func (w *htmlWalker) emitAs(cat element.Category, p piece, ancestors []string) {
	if p.text == "" {
		return
	}
	text := p.text
	if cat == element.ListItem {
		text = classify.CleanBullets(text)
	}
	w.append(cat, text, p, ancestors)
}

func (w *htmlWalker) append(cat element.Category, text string, p piece, ancestors []string) {
	md := element.Metadata{}
	if len(ancestors) > 0 {
		md.AncestorTags = append([]string(nil), ancestors...)
	}
	for _, l := range p.links {
		md.LinkURLs = append(md.LinkURLs, l.url)
		md.LinkTexts = append(md.LinkTexts, l.text)
	}
	for _, e := range p.emphasis {
		md.EmphasizedTextContents = append(md.EmphasizedTextContents, e.text)
		md.EmphasizedTextTags = append(md.EmphasizedTextTags, e.tag)
	}
	w.elems = append(w.elems, element.Element{Category: cat, Text: text, Metadata: md})
}

type linkRef struct {
	url  string
	text string
}

type emphasisRef struct {
	text string
	tag  string
}

// piece is one finished text run with everything recorded inside it.
type piece struct {
	text     string
	links    []linkRef
	emphasis []emphasisRef
}

// collector accumulates one text run at a time. <br> ends a run; in
// preformatted mode every newline does.
type collector struct {
	sb       strings.Builder
	links    []linkRef
	emphasis []emphasisRef
	pieces   []piece
	pre      bool
}

func newCollector(pre bool) *collector {
	return &collector{pre: pre}
}

func (col *collector) writeText(s string) {
	if !col.pre {
		col.sb.WriteString(s)
		return
	}
	for {
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			col.sb.WriteString(s)
			return
		}
		col.sb.WriteString(s[:idx])
		col.flush()
		s = s[idx+1:]
	}
}

// feed folds a node into the current run. Emphasis tags and anchors
// record themselves on entry, before their subtrees are read, so an
// outer span precedes the spans nested in it.
func (col *collector) feed(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		col.writeText(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}
	if htmlSkipTags[n.Data] {
		return
	}
	if n.Data == "br" {
		col.flush()
		return
	}

	if htmlEmphasisTags[n.Data] {
		if text := normalizeWhitespace(subtreeText(n)); text != "" {
			col.emphasis = append(col.emphasis, emphasisRef{text: text, tag: n.Data})
		}
	}
	if n.Data == "a" {
		if href := nodeAttr(n, "href"); href != "" {
			col.links = append(col.links, linkRef{url: href, text: normalizeWhitespace(subtreeText(n))})
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		col.feed(c)
	}
}

func (col *collector) flush() {
	text := normalizeWhitespace(col.sb.String())
	col.sb.Reset()
	if text == "" {
		col.links = nil
		col.emphasis = nil
		return
	}
	col.pieces = append(col.pieces, piece{text: text, links: col.links, emphasis: col.emphasis})
	col.links = nil
	col.emphasis = nil
}

func (col *collector) drain() []piece {
	col.flush()
	pieces := col.pieces
	col.pieces = nil
	return pieces
}

// collectInline reads an entire text-tag subtree as runs. The root
// feeds itself so a lone anchor or span records its own link/emphasis.
func collectInline(n *html.Node, pre bool) []piece {
	col := newCollector(pre)
	col.feed(n)
	return col.drain()
}

func subtreeText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			return
		}
		if node.Type == html.ElementNode && htmlSkipTags[node.Data] {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nodeAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func pushTag(ancestors []string, tag string) []string {
	out := make([]string, 0, len(ancestors)+1)
	out = append(out, ancestors...)
	return append(out, tag)
}

// findArticles returns the outermost article nodes in document order.
func findArticles(n *html.Node) []*html.Node {
	if n.Type == html.ElementNode && n.Data == "article" {
		return []*html.Node{n}
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findArticles(c)...)
	}
	return out
}

// ancestorChain lists the tags enclosing n, document root first.
func ancestorChain(n *html.Node) []string {
	var rev []string
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			rev = append(rev, p.Data)
		}
	}
	out := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

// tableText renders rows as plain text: cells joined by spaces, rows
// by newlines.
func tableText(rows [][]string) string {
	var lines []string
	for _, cells := range rows {
		line := strings.TrimSpace(strings.Join(cells, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// tableHTML renders rows as table markup for text_as_html.
func tableHTML(rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("<table>")
	for _, cells := range rows {
		sb.WriteString("<tr>")
		for _, cell := range cells {
			sb.WriteString("<td>")
			sb.WriteString(html.EscapeString(cell))
			sb.WriteString("</td>")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table>")
	return sb.String()
}

package extract

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ByLCY/docflow/layout"
)

// HTML 遍历 body 的直接子元素：p、h1..h6、ul/ol 的 li、br，
// 其余含块级子元素的容器递归展开，不含的按段落处理。
type HTML struct{}

var headingAtoms = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Main: true, atom.Header: true, atom.Footer: true, atom.Blockquote: true, atom.Pre: true,
	atom.Table: true, atom.Br: true,
}

var skipAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true, atom.Template: true, atom.Noscript: true,
}

// Extract implements Extractor.
func (h HTML) Extract(r io.Reader) ([]layout.Block, error) {
	doc, err := h.ExtractDocument(r)
	if err != nil {
		return nil, err
	}
	return doc.Blocks, nil
}

// ExtractDocument 同时读取 <title> 作为文档标题。
func (HTML) ExtractDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析 HTML 失败: %w", err)
	}
	doc := &Document{Blocks: []layout.Block{}}
	if title := find(root, atom.Title); title != nil {
		doc.Meta.Title = cleanText(textContent(title))
	}
	body := find(root, atom.Body)
	if body == nil {
		body = root
	}
	w := &htmlWalker{}
	w.children(body)
	doc.Blocks = w.blocks
	return doc, nil
}

type htmlWalker struct {
	blocks []layout.Block
	inline strings.Builder
}

func (w *htmlWalker) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
	w.flushInline()
}

func (w *htmlWalker) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}
	if skipAtoms[n.DataAtom] {
		return
	}
	if !blockAtoms[n.DataAtom] && !hasBlockChild(n) {
		// 行内元素与相邻文本合成一个段落
		w.inline.WriteString(textContent(n))
		return
	}

	w.flushInline()
	switch {
	case n.DataAtom == atom.P:
		w.add(layout.Paragraph(cleanText(textContent(n))))
	case headingAtoms[n.DataAtom] > 0:
		w.add(layout.Heading(headingAtoms[n.DataAtom], cleanText(textContent(n))))
	case n.DataAtom == atom.Ul || n.DataAtom == atom.Ol:
		w.list(n, n.DataAtom == atom.Ol)
	case n.DataAtom == atom.Br:
		w.blocks = append(w.blocks, layout.Break())
	case hasBlockChild(n):
		w.children(n)
	default:
		w.add(layout.Paragraph(cleanText(textContent(n))))
	}
}

// list 输出每个 li 的文本，嵌套列表紧随其后展开。
func (w *htmlWalker) list(n *html.Node, ordered bool) {
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		var text strings.Builder
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				nested = append(nested, c)
				continue
			}
			text.WriteString(textContent(c))
			text.WriteByte(' ')
		}
		w.add(layout.ListItem(ordered, cleanText(text.String())))
		for _, sub := range nested {
			w.list(sub, sub.DataAtom == atom.Ol)
		}
	}
}

func (w *htmlWalker) add(b layout.Block) {
	if b.Text == "" {
		return
	}
	w.blocks = append(w.blocks, b)
}

func (w *htmlWalker) flushInline() {
	text := cleanText(w.inline.String())
	w.inline.Reset()
	if text != "" {
		w.blocks = append(w.blocks, layout.Paragraph(text))
	}
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (blockAtoms[c.DataAtom] || hasBlockChild(c)) {
			return true
		}
	}
	return false
}

// textContent 拼接所有后代文本，br 视为空格。
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && skipAtoms[n.DataAtom]:
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/docflow/layout"
)

// DOCX 读取 Office Open XML 文字处理文档。
type DOCX struct{}

var headingName = regexp.MustCompile(`^heading\s*([1-6])$`)

// Extract implements Extractor.
func (d DOCX) Extract(r io.Reader) ([]layout.Block, error) {
	doc, err := d.ExtractDocument(r)
	if err != nil {
		return nil, err
	}
	return doc.Blocks, nil
}

// ExtractDocument 读取正文与 docProps/core.xml 中的标题、作者等信息。
func (DOCX) ExtractDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取 DOCX 失败: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("打开 DOCX 压缩包失败: %w", err)
	}
	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[f.Name] = f
	}

	body, ok := files["word/document.xml"]
	if !ok {
		return nil, fmt.Errorf("DOCX 缺少 word/document.xml")
	}

	var (
		styles    = map[string]int{}
		numbering = numberingFormats{}
		meta      layout.DocumentMeta
	)
	if f, ok := files["word/styles.xml"]; ok {
		if styles, err = readStyles(f); err != nil {
			return nil, err
		}
	}
	if f, ok := files["word/numbering.xml"]; ok {
		if numbering, err = readNumbering(f); err != nil {
			return nil, err
		}
	}
	if f, ok := files["docProps/core.xml"]; ok {
		if meta, err = readCoreProps(f); err != nil {
			return nil, err
		}
	}

	paragraphs, err := readParagraphs(body)
	if err != nil {
		return nil, err
	}

	blocks := make([]layout.Block, 0, len(paragraphs))
	for _, p := range paragraphs {
		text := cleanText(p.text.String())
		switch {
		case text == "" && p.breaks > 0:
			blocks = append(blocks, layout.Break())
		case text == "":
			continue
		case p.numID != "" && p.numID != "0":
			blocks = append(blocks, layout.ListItem(numbering.ordered(p.numID, p.ilvl), text))
		default:
			if level := headingLevel(p.style, styles); level > 0 {
				blocks = append(blocks, layout.Heading(level, text))
			} else {
				blocks = append(blocks, layout.Paragraph(text))
			}
		}
	}
	layout.Logger().Debug("DOCX 抽取完成", "paragraphs", len(paragraphs), "blocks", len(blocks))
	return &Document{Blocks: blocks, Meta: meta}, nil
}

// headingLevel 先按样式 ID 判断，再按 styles.xml 中的样式名判断。
func headingLevel(styleID string, styles map[string]int) int {
	if styleID == "" {
		return 0
	}
	if level, ok := styles[styleID]; ok {
		return level
	}
	return styleLevel(styleID)
}

func styleLevel(name string) int {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "title":
		return 1
	case "subtitle":
		return 2
	}
	if m := headingName.FindStringSubmatch(n); m != nil {
		level, _ := strconv.Atoi(m[1])
		return level
	}
	return 0
}

type docxParagraph struct {
	style  string
	numID  string
	ilvl   string
	text   strings.Builder
	breaks int
}

func readParagraphs(f *zip.File) ([]*docxParagraph, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("打开 %s 失败: %w", f.Name, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		out    []*docxParagraph
		stack  []*docxParagraph
		cur    *docxParagraph
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", f.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				// 文本框内的段落嵌套在外层段落中
				if cur != nil {
					stack = append(stack, cur)
				}
				cur = &docxParagraph{}
			case "pStyle":
				if cur != nil {
					cur.style = attr(t, "val")
				}
			case "numId":
				if cur != nil {
					cur.numID = attr(t, "val")
				}
			case "ilvl":
				if cur != nil {
					cur.ilvl = attr(t, "val")
				}
			case "t":
				inText = true
			case "tab":
				if cur != nil {
					cur.text.WriteByte(' ')
				}
			case "br", "cr":
				if cur != nil {
					cur.breaks++
					cur.text.WriteByte(' ')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if cur != nil {
					out = append(out, cur)
				}
				cur = nil
				if n := len(stack); n > 0 {
					cur, stack = stack[n-1], stack[:n-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && cur != nil {
				cur.text.Write(t)
			}
		}
	}
	return out, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func readStyles(f *zip.File) (map[string]int, error) {
	var doc struct {
		Styles []struct {
			ID   string `xml:"styleId,attr"`
			Name struct {
				Val string `xml:"val,attr"`
			} `xml:"name"`
		} `xml:"style"`
	}
	if err := decodeZipXML(f, &doc); err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, s := range doc.Styles {
		if level := styleLevel(s.Name.Val); level > 0 {
			out[s.ID] = level
		}
	}
	return out, nil
}

// numberingFormats 记录 numId 与层级对应的编号格式。
type numberingFormats map[string]map[string]string

func (n numberingFormats) ordered(numID, ilvl string) bool {
	if ilvl == "" {
		ilvl = "0"
	}
	format, ok := n[numID][ilvl]
	if !ok {
		return false
	}
	return format != "bullet" && format != "none"
}

func readNumbering(f *zip.File) (numberingFormats, error) {
	var doc struct {
		Abstract []struct {
			ID     string `xml:"abstractNumId,attr"`
			Levels []struct {
				Ilvl   string `xml:"ilvl,attr"`
				NumFmt struct {
					Val string `xml:"val,attr"`
				} `xml:"numFmt"`
			} `xml:"lvl"`
		} `xml:"abstractNum"`
		Nums []struct {
			ID       string `xml:"numId,attr"`
			Abstract struct {
				Val string `xml:"val,attr"`
			} `xml:"abstractNumId"`
		} `xml:"num"`
	}
	if err := decodeZipXML(f, &doc); err != nil {
		return nil, err
	}
	abstract := map[string]map[string]string{}
	for _, a := range doc.Abstract {
		levels := map[string]string{}
		for _, l := range a.Levels {
			levels[l.Ilvl] = l.NumFmt.Val
		}
		abstract[a.ID] = levels
	}
	out := numberingFormats{}
	for _, n := range doc.Nums {
		if levels, ok := abstract[n.Abstract.Val]; ok {
			out[n.ID] = levels
		}
	}
	return out, nil
}

func readCoreProps(f *zip.File) (layout.DocumentMeta, error) {
	var core struct {
		Title    string `xml:"title"`
		Subject  string `xml:"subject"`
		Creator  string `xml:"creator"`
		Keywords string `xml:"keywords"`
	}
	if err := decodeZipXML(f, &core); err != nil {
		return layout.DocumentMeta{}, err
	}
	meta := layout.DocumentMeta{
		Title:   strings.TrimSpace(core.Title),
		Subject: strings.TrimSpace(core.Subject),
		Author:  strings.TrimSpace(core.Creator),
	}
	for _, kw := range strings.FieldsFunc(core.Keywords, func(r rune) bool { return r == ',' || r == ';' }) {
		if kw = strings.TrimSpace(kw); kw != "" {
			meta.Keywords = append(meta.Keywords, kw)
		}
	}
	return meta, nil
}

func decodeZipXML(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("打开 %s 失败: %w", f.Name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", f.Name, err)
	}
	return nil
}

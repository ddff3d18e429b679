package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/docflow/layout"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func para(style, numID, body string) string {
	var ppr string
	if style != "" || numID != "" {
		ppr = "<w:pPr>"
		if style != "" {
			ppr += `<w:pStyle w:val="` + style + `"/>`
		}
		if numID != "" {
			ppr += `<w:numPr><w:ilvl w:val="0"/><w:numId w:val="` + numID + `"/></w:numPr>`
		}
		ppr += "</w:pPr>"
	}
	return "<w:p>" + ppr + body + "</w:p>"
}

func run(text string) string { return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>` }

func sampleDOCX(t *testing.T) []byte {
	body := strings.Join([]string{
		para("Title", "", run("Annual Report")),
		para("Heading2", "", run("Summary")),
		para("", "", run("First ")+run("paragraph")+"<w:r><w:tab/></w:r>"+run("text")),
		para("", "", ""),
		para("", "", `<w:r><w:br/></w:r>`),
		para("ListParagraph", "1", run("bullet one")),
		para("ListParagraph", "1", run("bullet two")),
		para("ListParagraph", "2", run("step one")),
		para("Kop3", "", run("Localized heading")),
		para("", "", run("non\u00a0breaking")),
	}, "")
	return buildDOCX(t, map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?><w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`,
		"word/styles.xml": `<w:styles ` + wordNS + `>
			<w:style w:type="paragraph" w:styleId="Kop3"><w:name w:val="heading 3"/></w:style>
			<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/></w:style>
		</w:styles>`,
		"word/numbering.xml": `<w:numbering ` + wordNS + `>
			<w:abstractNum w:abstractNumId="10"><w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/></w:lvl></w:abstractNum>
			<w:abstractNum w:abstractNumId="20"><w:lvl w:ilvl="0"><w:numFmt w:val="decimal"/></w:lvl></w:abstractNum>
			<w:num w:numId="1"><w:abstractNumId w:val="10"/></w:num>
			<w:num w:numId="2"><w:abstractNumId w:val="20"/></w:num>
		</w:numbering>`,
		"docProps/core.xml": `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
			<dc:title>Annual</dc:title><dc:creator>Finance</dc:creator><cp:keywords>q1, q2</cp:keywords>
		</cp:coreProperties>`,
	})
}

func TestDOCXExtract(t *testing.T) {
	doc, err := DOCX{}.ExtractDocument(bytes.NewReader(sampleDOCX(t)))
	require.NoError(t, err)

	want := []layout.Block{
		layout.Heading(1, "Annual Report"),
		layout.Heading(2, "Summary"),
		layout.Paragraph("First paragraph text"),
		layout.Break(),
		layout.ListItem(false, "bullet one"),
		layout.ListItem(false, "bullet two"),
		layout.ListItem(true, "step one"),
		layout.Heading(3, "Localized heading"),
		layout.Paragraph("non breaking"),
	}
	assert.Equal(t, want, doc.Blocks)
	assert.Equal(t, layout.DocumentMeta{Title: "Annual", Author: "Finance", Keywords: []string{"q1", "q2"}}, doc.Meta)
}

func TestDOCXErrors(t *testing.T) {
	_, err := DOCX{}.Extract(strings.NewReader("not a zip"))
	assert.Error(t, err)

	noBody := buildDOCX(t, map[string]string{"word/styles.xml": "<w:styles " + wordNS + "/>"})
	_, err = DOCX{}.Extract(bytes.NewReader(noBody))
	assert.Error(t, err)
}

func TestHTMLExtract(t *testing.T) {
	src := `<!doctype html><html><head><title>Demo</title><style>p{}</style></head><body>
		<h1>Main  title</h1>
		<p>First&nbsp;para <b>bold</b> text</p>
		<ul><li>alpha</li><li>beta<ol><li>nested</li></ol></li></ul>
		<br>
		<div><p>inside div</p><h3>Deep</h3></div>
		<div>plain div</div>
		loose <em>inline</em> text
		<p>   </p>
		<script>ignored()</script>
	</body></html>`

	doc, err := HTML{}.ExtractDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "Demo", doc.Meta.Title)
	want := []layout.Block{
		layout.Heading(1, "Main title"),
		layout.Paragraph("First para bold text"),
		layout.ListItem(false, "alpha"),
		layout.ListItem(false, "beta"),
		layout.ListItem(true, "nested"),
		layout.Break(),
		layout.Paragraph("inside div"),
		layout.Heading(3, "Deep"),
		layout.Paragraph("plain div"),
		layout.Paragraph("loose inline text"),
	}
	assert.Equal(t, want, doc.Blocks)
}

func TestTextExtract(t *testing.T) {
	src := "# Title\n\nfirst line\nsecond line\n\n- one\n* two\n1. first\n2) second\n\f\n#hashtag stays\n####### seven\n"
	blocks, err := Text{}.Extract(strings.NewReader(src))
	require.NoError(t, err)
	want := []layout.Block{
		layout.Heading(1, "Title"),
		layout.Paragraph("first line second line"),
		layout.ListItem(false, "one"),
		layout.ListItem(false, "two"),
		layout.ListItem(true, "first"),
		layout.ListItem(true, "second"),
		layout.Break(),
		layout.Paragraph("#hashtag stays ####### seven"),
	}
	assert.Equal(t, want, blocks)

	empty, err := Text{}.Extract(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNFCNormalization(t *testing.T) {
	// "e" 加组合重音符应合并为单个 "é"
	blocks, err := Text{}.Extract(strings.NewReader("cafe\u0301"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "caf\u00e9", blocks[0].Text)
}

func TestForPath(t *testing.T) {
	cases := map[string]Extractor{
		"report.docx": DOCX{},
		"page.HTML":   HTML{},
		"notes.txt":   Text{},
		"README.md":   Text{},
	}
	for name, want := range cases {
		got, err := ForPath(name)
		require.NoError(t, err, name)
		assert.IsType(t, want, got, name)
	}
	_, err := ForPath("scan.pdf")
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestExtractDocumentFallback(t *testing.T) {
	doc, err := ExtractDocument(Text{}, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, []layout.Block{layout.Paragraph("hello")}, doc.Blocks)
	assert.Equal(t, layout.DocumentMeta{}, doc.Meta)
}

package stylesheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/docflow/layout"
)

const reportSheet = `
sheet Report v1 {
  meta {
    title: "Q3"
    author: "Ops"
    keywords: ["a", "b"]
  }
  fonts {
    font serif { src: "fonts/Serif.ttf" }
  }
  page A4 portrait margin 48pt
  styles {
    bullet: "-"
    style paragraph { font: serif size: 11pt line-gap: 3pt paragraph-gap: 2pt }
    style heading1 extends paragraph { font: bold size: 20pt before: 10pt after: 6pt }
    style quote extends paragraph { indent: 0.5in }
    style list extends quote { line-height: 1.5x }
  }
}
`

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, layout.Geometry{WidthPt: 595.28, HeightPt: 841.89, MarginPt: 48}, s.Geometry)
	assert.Equal(t, layout.DefaultStyleTable(), s.Styles)
}

func TestCompileDSL(t *testing.T) {
	s, err := ParseDSL(reportSheet)
	require.NoError(t, err)

	assert.Equal(t, "Report", s.Name)
	assert.Equal(t, layout.DocumentMeta{Title: "Q3", Author: "Ops", Keywords: []string{"a", "b"}}, s.Meta)
	assert.Equal(t, []layout.FontResource{{Name: "serif", Src: "fonts/Serif.ttf"}}, s.Fonts)
	assert.Equal(t, 48.0, s.Geometry.MarginPt)
	assert.Equal(t, "-", s.Styles.Bullet)
	assert.Equal(t, "%d.", s.Styles.OrderedFormat)

	para := s.Styles.Styles[layout.StyleParagraph]
	assert.Equal(t, layout.StyleSpec{Font: "serif", SizePt: 11, LineGapPt: 3, ParagraphGapPt: 2}, para)

	// 继承 paragraph 的 line-gap 与 paragraph-gap，覆盖字体与字号。
	h1 := s.Styles.Styles[layout.HeadingKey(1)]
	assert.Equal(t, layout.FontBold, h1.Font)
	assert.Equal(t, 20.0, h1.SizePt)
	assert.Equal(t, 3.0, h1.LineGapPt)
	assert.Equal(t, 2.0, h1.ParagraphGapPt)
	assert.Equal(t, 10.0, h1.GapBeforePt)

	// 两级继承，且未声明的 after 取内置 list 的值。
	list := s.Styles.Styles[layout.StyleList]
	assert.Equal(t, layout.Font("serif"), list.Font)
	assert.Equal(t, 36.0, list.IndentPt)
	assert.InDelta(t, 5.5, list.LineGapPt, 1e-9)
	assert.Equal(t, 2.0, list.GapAfterPt)

	// 未声明的样式保持内置值。
	assert.Equal(t, layout.DefaultStyleTable().Styles[layout.HeadingKey(2)], s.Styles.Styles[layout.HeadingKey(2)])
}

func TestCompiledSheetDrivesLayout(t *testing.T) {
	s, err := ParseDSL(reportSheet)
	require.NoError(t, err)
	measure := func(text string, _ layout.Font, size float64) float64 { return float64(len(text)) * size / 2 }
	res, err := layout.Build([]layout.Block{layout.Heading(1, "Title"), layout.Paragraph("body")}, s.BuildOptions(measure))
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	runs := res.Pages[0].Runs
	require.Len(t, runs, 2)
	assert.Equal(t, s.Geometry.Top()-10, runs[0].Y)
	assert.Equal(t, 48.0, runs[0].X)
}

func TestPageVariants(t *testing.T) {
	cases := []struct {
		page string
		want layout.Geometry
	}{
		{"page A4 landscape", layout.Geometry{WidthPt: 841.89, HeightPt: 595.28, MarginPt: 48}},
		{"page letter margin 1in", layout.Geometry{WidthPt: 612, HeightPt: 792, MarginPt: 72}},
		{"page custom 400pt 600pt margin 10mm", layout.Geometry{WidthPt: 400, HeightPt: 600, MarginPt: 10 * layout.MmToPt}},
	}
	for _, c := range cases {
		s, err := ParseDSL("sheet T v1 {\n" + c.page + "\n}")
		require.NoError(t, err, c.page)
		assert.InDelta(t, c.want.WidthPt, s.Geometry.WidthPt, 1e-9, c.page)
		assert.InDelta(t, c.want.HeightPt, s.Geometry.HeightPt, 1e-9, c.page)
		assert.InDelta(t, c.want.MarginPt, s.Geometry.MarginPt, 1e-9, c.page)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := map[string]string{
		"cycle":         "sheet T v1 {\nstyles {\nstyle a extends b { size: 1pt }\nstyle b extends a { size: 2pt }\n}\n}",
		"missing base":  "sheet T v1 {\nstyles {\nstyle a extends nope { size: 1pt }\n}\n}",
		"unknown prop":  "sheet T v1 {\nstyles {\nstyle paragraph { colour: red }\n}\n}",
		"bad length":    "sheet T v1 {\nstyles {\nstyle paragraph { size: big }\n}\n}",
		"unknown size":  "sheet T v1 {\npage B7\n}",
		"custom no dim": "sheet T v1 {\npage custom 100pt\n}",
		"font no src":   "sheet T v1 {\nfonts {\nfont serif { style: \"bold\" }\n}\n}",
	}
	for name, src := range cases {
		_, err := ParseDSL(src)
		assert.Error(t, err, name)
	}
}

const reportYAML = `
name: Report
page:
  size: A5
  orientation: landscape
  margin: 36pt
meta:
  title: Q3
  keywords: [a, b]
fonts:
  - name: serif
    src: builtin:go-regular
styles:
  bullet: "*"
  ordered-format: "%d)"
  paragraph:
    font: serif
    size: 10
  heading1:
    extends: paragraph
    size: 18pt
`

func TestParseYAML(t *testing.T) {
	s, err := ParseYAML([]byte(reportYAML))
	require.NoError(t, err)

	assert.Equal(t, "Report", s.Name)
	assert.Equal(t, layout.Geometry{WidthPt: 595.28, HeightPt: 419.53, MarginPt: 36}, s.Geometry)
	assert.Equal(t, "Q3", s.Meta.Title)
	assert.Equal(t, []string{"a", "b"}, s.Meta.Keywords)
	assert.Equal(t, "*", s.Styles.Bullet)
	assert.Equal(t, "%d)", s.Styles.OrderedFormat)
	assert.Equal(t, 10.0, s.Styles.Styles[layout.StyleParagraph].SizePt)

	h1 := s.Styles.Styles[layout.HeadingKey(1)]
	assert.Equal(t, layout.Font("serif"), h1.Font)
	assert.Equal(t, 18.0, h1.SizePt)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	dslPath := filepath.Join(dir, "report.sheet")
	yamlPath := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(dslPath, []byte(reportSheet), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(reportYAML), 0o644))

	s, err := LoadFile(dslPath)
	require.NoError(t, err)
	assert.Equal(t, "Report", s.Name)
	assert.Equal(t, dir, s.BaseDir)

	s, err = LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 36.0, s.Geometry.MarginPt)

	_, err = LoadFile(filepath.Join(dir, "report.toml"))
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.sheet"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

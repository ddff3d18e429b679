package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/docflow/layout"
)

const sampleText = `# Report ${name}

The quick brown fox jumps over the lazy dog. The quick brown fox jumps over the lazy dog.

- first item
- second item
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleText), 0o644))
	return path
}

func TestPipelineConvertText(t *testing.T) {
	in := writeSample(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "report.pdf")
	debug := filepath.Join(dir, "debug", "layout.json")

	p, err := newPipeline("", "canvas", `{"name": "Q3"}`)
	require.NoError(t, err)
	require.NoError(t, p.convert(in, out, debug))

	pdfBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF-")))

	raw, err := os.ReadFile(debug)
	require.NoError(t, err)
	var res layout.Result
	require.NoError(t, json.Unmarshal(raw, &res))
	require.NotEmpty(t, res.Pages)
	require.NotEmpty(t, res.Pages[0].Runs)
	assert.Equal(t, "Report Q3", res.Pages[0].Runs[0].Text)
	// 纯文本没有标题元信息，使用文件名
	assert.Equal(t, "report", res.Meta.Title)
}

func TestPipelineFPDF(t *testing.T) {
	in := writeSample(t)
	out := filepath.Join(t.TempDir(), "report.pdf")

	p, err := newPipeline("", "fpdf", "")
	require.NoError(t, err)
	require.NoError(t, p.convert(in, out, ""))

	pdfBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF-")))
}

func TestPipelineShaperMeasure(t *testing.T) {
	in := writeSample(t)

	p, err := newPipeline("", "canvas", "")
	require.NoError(t, err)
	require.NoError(t, p.useShaper())

	res, err := p.layoutFile(in)
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	// 未绑定数据时保留占位符
	assert.Equal(t, "Report ${name}", res.Pages[0].Runs[0].Text)
}

func TestPipelineErrors(t *testing.T) {
	_, err := newPipeline("", "svg", "")
	require.Error(t, err)

	_, err = newPipeline("", "canvas", "{broken")
	require.Error(t, err)

	_, err = newPipeline(filepath.Join(t.TempDir(), "missing.sheet"), "canvas", "")
	require.Error(t, err)

	p, err := newPipeline("", "canvas", "")
	require.NoError(t, err)
	_, err = p.layoutFile(filepath.Join(t.TempDir(), "slides.pptx"))
	require.Error(t, err)
}

func TestSelectMeasure(t *testing.T) {
	p, err := newPipeline("", "canvas", "")
	require.NoError(t, err)

	require.NoError(t, p.selectMeasure("shaper"))
	require.NoError(t, p.selectMeasure("renderer"))
	require.NoError(t, p.selectMeasure(""))

	err = p.selectMeasure("shapr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shapr")
}

func TestLayoutCommandRejectsUnknownMeasure(t *testing.T) {
	in := writeSample(t)
	rootCmd.SetArgs([]string{"layout", in, "--measure", "fast"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		_ = layoutCmd.Flags().Set("measure", "renderer")
	})
	require.Error(t, rootCmd.Execute())
}

func TestPipelineStylesheet(t *testing.T) {
	dir := t.TempDir()
	sheetPath := filepath.Join(dir, "narrow.sheet")
	sheet := `sheet narrow v1 {
  meta {
    title: "样式表标题"
    author: "docflow"
  }
  page custom 300pt 400pt margin 20pt
}
`
	require.NoError(t, os.WriteFile(sheetPath, []byte(sheet), 0o644))

	p, err := newPipeline(sheetPath, "canvas", "")
	require.NoError(t, err)
	res, err := p.layoutFile(writeSample(t))
	require.NoError(t, err)
	require.NotEmpty(t, res.Pages)
	assert.InDelta(t, 300, res.Pages[0].Width, 1e-9)
	assert.InDelta(t, 400, res.Pages[0].Height, 1e-9)
	assert.Equal(t, "样式表标题", res.Meta.Title)
	assert.Equal(t, "docflow", res.Meta.Author)
}

func TestMergeMeta(t *testing.T) {
	doc := layout.DocumentMeta{Title: "Doc", Author: "Alice", Subject: "S"}
	sheet := layout.DocumentMeta{Author: "Bob", Keywords: []string{"k"}}

	got := mergeMeta(doc, sheet, "/tmp/in.docx")
	assert.Equal(t, "Doc", got.Title)
	assert.Equal(t, "Bob", got.Author)
	assert.Equal(t, "S", got.Subject)
	assert.Equal(t, []string{"k"}, got.Keywords)
	assert.True(t, strings.HasPrefix(got.Creator, "docflow "))

	got = mergeMeta(layout.DocumentMeta{}, layout.DocumentMeta{Creator: "me"}, "notes.v2.txt")
	assert.Equal(t, "notes.v2", got.Title)
	assert.Equal(t, "me", got.Creator)
}

func TestSetupLogging(t *testing.T) {
	require.NoError(t, setupLogging("debug"))
	require.NoError(t, setupLogging("WARN"))
	require.Error(t, setupLogging("loud"))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "docflow dev\n", buf.String())
}

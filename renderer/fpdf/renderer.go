// Package fpdfrenderer 使用 codeberg.org/go-pdf/fpdf 输出 PDF。
//
// 默认使用 PDF 标准 14 字体（Helvetica、Courier），文本经 cp1252 转码，
// 无需嵌入任何字体文件；开启 Unicode 后改为嵌入 TTF，可输出任意字符。
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ByLCY/docflow/layout"
	"github.com/ByLCY/docflow/renderer"
)

// Options configures the fpdf renderer.
type Options struct {
	// BaseDir 用于解析字体的相对路径。
	BaseDir string
	// Unicode 为 true 时嵌入 Fonts 中的 TTF（默认是内置 Go 字体），否则使用标准字体。
	Unicode bool
	// Fonts 仅在 Unicode 模式下生效，追加或覆盖默认字体。
	Fonts []layout.FontResource
	// CreationDate 非零时写入文档，便于生成可复现的输出。
	CreationDate time.Time
}

type coreFont struct {
	family string
	style  string
}

var coreFonts = map[layout.Font]coreFont{
	layout.FontRegular: {"Helvetica", ""},
	layout.FontBold:    {"Helvetica", "B"},
	layout.FontItalic:  {"Helvetica", "I"},
	layout.FontMono:    {"Courier", ""},
}

// Renderer draws layout results via fpdf.
type Renderer struct {
	opts  Options
	fonts map[layout.Font]layout.FontResource

	mu       sync.Mutex
	blobs    map[layout.Font][]byte
	measurer *fpdf.Fpdf
	tr       func(string) string
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 使用标准字体。
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer from opts.
func NewRendererWithOptions(opts Options) *Renderer {
	return &Renderer{
		opts:  opts,
		fonts: renderer.MergeFonts(renderer.DefaultFonts(), opts.Fonts),
		blobs: map[layout.Font][]byte{},
	}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	first := result.Pages[0]
	doc, tr, err := r.newDocument(first.Width, first.Height)
	if err != nil {
		return nil, err
	}
	applyMeta(doc, result.Meta)
	if !r.opts.CreationDate.IsZero() {
		doc.SetCreationDate(r.opts.CreationDate)
		doc.SetModificationDate(r.opts.CreationDate)
	}
	doc.SetTextColor(30, 30, 30)

	for _, page := range result.Pages {
		doc.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, run := range page.Runs {
			if run.Text == "" {
				continue
			}
			r.setFont(doc, run.Style.Font, run.Style.SizePt)
			// fpdf 原点在左上角
			doc.Text(run.X, page.Height-run.Y, tr(run.Text))
		}
	}

	if doc.Err() {
		return nil, fmt.Errorf("生成 PDF 失败: %w", doc.Error())
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Measure 实现 layout.MeasureFunc。单位为 pt，与渲染时使用同一套字体度量。
func (r *Renderer) Measure(text string, font layout.Font, sizePt float64) float64 {
	if text == "" || sizePt <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.measurer == nil {
		a4 := layout.PageSizes["A4"]
		doc, tr, err := r.newDocumentLocked(a4[0], a4[1])
		if err != nil {
			layout.Logger().Warn("初始化 fpdf 测量器失败", "err", err)
			return 0
		}
		r.measurer, r.tr = doc, tr
	}
	r.setFont(r.measurer, font, sizePt)
	return r.measurer.GetStringWidth(r.tr(text))
}

func (r *Renderer) newDocument(w, h float64) (*fpdf.Fpdf, func(string) string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newDocumentLocked(w, h)
}

func (r *Renderer) newDocumentLocked(w, h float64) (*fpdf.Fpdf, func(string) string, error) {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	if !r.opts.Unicode {
		return doc, doc.UnicodeTranslatorFromDescriptor(""), nil
	}
	for name, res := range r.fonts {
		data, err := r.fontBytes(name, res)
		if err != nil {
			return nil, nil, err
		}
		doc.AddUTF8FontFromBytes(string(name), "", data)
	}
	if doc.Err() {
		return nil, nil, fmt.Errorf("注册字体失败: %w", doc.Error())
	}
	return doc, func(s string) string { return s }, nil
}

// fontBytes 调用方需持有 mu。
func (r *Renderer) fontBytes(name layout.Font, res layout.FontResource) ([]byte, error) {
	if data, ok := r.blobs[name]; ok {
		return data, nil
	}
	data, err := renderer.LoadFontBytes(r.opts.BaseDir, res)
	if err != nil {
		return nil, err
	}
	r.blobs[name] = data
	return data, nil
}

func (r *Renderer) setFont(doc *fpdf.Fpdf, font layout.Font, sizePt float64) {
	if r.opts.Unicode {
		if _, ok := r.fonts[font]; !ok {
			font = layout.FontRegular
		}
		doc.SetFont(string(font), "", sizePt)
		return
	}
	cf, ok := coreFonts[font]
	if !ok {
		cf = coreFonts[layout.FontRegular]
	}
	doc.SetFont(cf.family, cf.style, sizePt)
}

func applyMeta(doc *fpdf.Fpdf, meta layout.DocumentMeta) {
	if meta.Title != "" {
		doc.SetTitle(meta.Title, true)
	}
	if meta.Author != "" {
		doc.SetAuthor(meta.Author, true)
	}
	if meta.Subject != "" {
		doc.SetSubject(meta.Subject, true)
	}
	if meta.Creator != "" {
		doc.SetCreator(meta.Creator, true)
	}
	if len(meta.Keywords) > 0 {
		doc.SetKeywords(strings.Join(meta.Keywords, ", "), true)
	}
}

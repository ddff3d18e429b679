package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/docflow/fonts"
	"github.com/ByLCY/docflow/layout"
	"github.com/ByLCY/docflow/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// 布局结果以 pt 表示；canvas 内部使用 mm，因此在绘制与测量的边界做换算。
type Renderer struct {
	baseDir   string
	fonts     map[layout.Font]layout.FontResource
	textColor color.Color

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	// BaseDir 用于解析字体的相对路径。
	BaseDir string
	// Fonts 追加或覆盖默认的 regular/bold/italic/mono。
	Fonts []layout.FontResource
	// TextColor 为空时使用深灰色。
	TextColor color.Color
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with extra fonts.
func NewRendererWithOptions(opts Options) *Renderer {
	col := opts.TextColor
	if col == nil {
		col = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	}
	return &Renderer{
		baseDir:      opts.BaseDir,
		fonts:        renderer.MergeFonts(renderer.DefaultFonts(), opts.Fonts),
		textColor:    col,
		fontFamilies: map[string]*fontFamilyEntry{},
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

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		// 布局坐标原点在左下角，Y 向上，与 CartesianI 一致
		ctx.SetCoordSystem(canvas.CartesianI)

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// Measure 实现 layout.MeasureFunc。canvas 的 TextWidth 以 mm 返回，这里换算为 pt。
func (r *Renderer) Measure(text string, font layout.Font, sizePt float64) float64 {
	if text == "" || sizePt <= 0 {
		return 0
	}
	face, err := r.fontFace(font, sizePt)
	if err != nil {
		return 0
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return toPt(face.TextWidth(text))
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	for _, run := range page.Runs {
		if run.Text == "" {
			continue
		}
		face, err := r.fontFace(run.Style.Font, run.Style.SizePt)
		if err != nil {
			return err
		}
		// NewTextLine 以当前坐标为基线绘制
		ctx.DrawText(toMm(run.X), toMm(run.Y), canvas.NewTextLine(face, run.Text, canvas.Left))
	}
	return nil
}

func (r *Renderer) fontFace(font layout.Font, sizePt float64) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, r.textColor, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name layout.Font) (*canvas.FontFamily, canvas.FontStyle, error) {
	res, ok := r.fonts[name]
	if !ok {
		res = r.fonts[layout.FontRegular]
	}
	key := fontCacheKey(res)

	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(res.Style)
	familyName := res.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, res, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		layout.Logger().Warn("字体加载失败，使用内置字体", "font", res.Name, "src", res.Src, "err", err)
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := renderer.LoadFontBytes(r.baseDir, font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

// fallback 调用方需持有 fontMu。
func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load("regular")
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("docflow-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }

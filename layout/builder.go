package layout

import (
	"context"
	"log/slog"
	"math"
)

// Build 把内容块依次排入固定尺寸的页面，返回带坐标的文本片段。
//
// 版面只会因配置无效而失败（见 ConfigurationError），内容再多也只是追加页面。
// 没有任何块时返回恰好一页空白页。
func Build(blocks []Block, opts BuildOptions) (*Result, error) {
	styles := normalizeStyles(opts.Styles)
	if err := validate(opts.Geometry, styles, opts.Measure); err != nil {
		return nil, err
	}

	log := Logger()
	collector := newPageCollector(opts.Geometry, log)
	renderer := newBlockRenderer(styles)
	maxWidth := opts.Geometry.MaxWidth()
	left := opts.Geometry.MarginPt
	debug := log.Enabled(context.Background(), slog.LevelDebug)

	for _, block := range blocks {
		frag := renderer.render(block)
		collector.skip(frag.gapBefore)
		if frag.kind != KindBreak {
			width := maxWidth - frag.indent
			lines := Wrap(frag.text, frag.style, width, opts.Measure)
			for i, line := range lines {
				marker := ""
				if i == 0 {
					marker = frag.marker
				}
				if debug && opts.Measure(line, frag.style.Font, frag.style.SizePt) > width {
					log.Debug("layout: hard split remnant exceeds width", "text", line, "width", width)
				}
				collector.placeLine(line, left+frag.indent, frag.style, marker, left)
			}
		}
		collector.skip(frag.gapAfter)
	}

	pages := collector.pages()
	log.Info("layout: done", "blocks", len(blocks), "pages", len(pages))
	return &Result{Pages: pages}, nil
}

// normalizeStyles 保证样式表至少含有 paragraph，以便所有未定义的类型都能回退。
func normalizeStyles(t StyleTable) StyleTable {
	defaults := DefaultStyleTable()
	if len(t.Styles) == 0 {
		return defaults.Merge(StyleTable{Bullet: t.Bullet, OrderedFormat: t.OrderedFormat})
	}
	if _, ok := t.Styles[StyleParagraph]; ok {
		return t
	}
	return t.Merge(StyleTable{Styles: map[string]StyleSpec{
		StyleParagraph: defaults.Styles[StyleParagraph],
	}})
}

func validate(g Geometry, styles StyleTable, measure MeasureFunc) error {
	if measure == nil {
		return configErrorf("measure", "缺少文本测量函数")
	}
	for name, v := range map[string]float64{"width": g.WidthPt, "height": g.HeightPt, "margin": g.MarginPt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErrorf("geometry."+name, "非有限数值 %v", v)
		}
	}
	if g.MarginPt < 0 {
		return configErrorf("geometry.margin", "边距不能为负: %g", g.MarginPt)
	}
	if g.MaxWidth() <= 0 {
		return configErrorf("geometry.width", "没有可用宽度: width=%g margin=%g", g.WidthPt, g.MarginPt)
	}
	if g.HeightPt <= 2*g.MarginPt {
		return configErrorf("geometry.height", "没有可用高度: height=%g margin=%g", g.HeightPt, g.MarginPt)
	}
	for name, s := range styles.Styles {
		if s.SizePt < 0 || s.LineGapPt < 0 || s.ParagraphGapPt < 0 || s.GapBeforePt < 0 || s.GapAfterPt < 0 || s.IndentPt < 0 {
			return configErrorf("styles."+name, "字号与间距不能为负")
		}
		if g.MaxWidth()-s.IndentPt <= 0 {
			return configErrorf("styles."+name, "缩进 %g 超出可用宽度 %g", s.IndentPt, g.MaxWidth())
		}
	}
	return nil
}

package layout

import "log/slog"

type pageAccumulator struct {
	runs []PlacedRun
}

func (p *pageAccumulator) appendRun(run PlacedRun) {
	p.runs = append(p.runs, run)
}

// pageCollector 持有纵向光标并在内容越过下边距时追加新页面。
// 光标与页面列表只属于一次布局。
type pageCollector struct {
	geometry Geometry
	accs     []*pageAccumulator
	cursorY  float64
	log      *slog.Logger
}

func newPageCollector(g Geometry, log *slog.Logger) *pageCollector {
	pc := &pageCollector{geometry: g, log: log}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.cursorY = pc.geometry.Top()
	if len(pc.accs) > 1 {
		pc.log.Debug("layout: new page", "page", len(pc.accs))
	}
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	return pc.accs[len(pc.accs)-1]
}

// ensureSpace 在当前页剩余空间不足 height 时换页。
// 只有空白页且光标仍在页顶时才不换页：这说明行高超过整个排版区域，
// 直接放在页顶，避免无限追加页面。之前的间距把光标推到页底时照常换页。
func (pc *pageCollector) ensureSpace(height float64) {
	if pc.cursorY-height >= pc.geometry.MarginPt {
		return
	}
	if len(pc.curr().runs) == 0 && pc.cursorY == pc.geometry.Top() {
		return
	}
	pc.newPage()
}

// placeLine 在当前光标处放置一行，必要时先换页。
// marker 非空时在 markerX 处额外放置列表标记。
func (pc *pageCollector) placeLine(text string, x float64, style StyleSpec, marker string, markerX float64) {
	advance := style.LineAdvance()
	pc.ensureSpace(advance)
	acc := pc.curr()
	if marker != "" {
		acc.appendRun(PlacedRun{Text: marker, X: markerX, Y: pc.cursorY, Style: style, Marker: true})
	}
	acc.appendRun(PlacedRun{Text: text, X: x, Y: pc.cursorY, Style: style})
	pc.cursorY -= advance
}

// skip 把光标下移 gap，最低夹到下边距；单独的间距不会产生新页面。
func (pc *pageCollector) skip(gap float64) {
	if gap <= 0 {
		return
	}
	pc.cursorY -= gap
	if pc.cursorY < pc.geometry.MarginPt {
		pc.cursorY = pc.geometry.MarginPt
	}
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		runs := acc.runs
		if runs == nil {
			runs = []PlacedRun{}
		}
		out[i] = Page{
			Width:  pc.geometry.WidthPt,
			Height: pc.geometry.HeightPt,
			Margin: pc.geometry.MarginPt,
			Runs:   runs,
		}
	}
	return out
}

package layout

import "strings"

// fragment 是块渲染器的输出：解析好样式、缩进、间距与列表标记的一段文本。
type fragment struct {
	kind      BlockKind
	text      string
	style     StyleSpec
	indent    float64
	gapBefore float64
	gapAfter  float64
	marker    string
}

// listState 记录当前列表组的编号，只在一次布局内有效。
type listState struct {
	active  bool
	ordered bool
	index   int
}

// blockRenderer 按样式表把块解析为 fragment，并串联列表编号与段间距所需的状态。
type blockRenderer struct {
	styles StyleTable
	list   listState
	prev   BlockKind
	first  bool
}

func newBlockRenderer(styles StyleTable) *blockRenderer {
	return &blockRenderer{styles: styles, first: true}
}

func (r *blockRenderer) render(b Block) fragment {
	style := r.styles.Resolve(b)
	frag := fragment{
		kind:      b.Kind,
		style:     style,
		gapBefore: style.GapBeforePt,
		gapAfter:  style.GapAfterPt,
	}
	if !r.first && r.prev == b.Kind && b.Kind != KindBreak {
		frag.gapBefore += style.ParagraphGapPt
	}
	r.first = false
	r.prev = b.Kind

	switch b.Kind {
	case KindBreak:
		r.list = listState{}
		return frag
	case KindListItem:
		frag.indent = style.IndentPt
		frag.text = b.Text
		// 空列表项不绘制，也不占用序号
		if strings.TrimSpace(b.Text) == "" {
			return frag
		}
		if r.list.active && r.list.ordered == b.Ordered {
			r.list.index++
		} else {
			r.list = listState{active: true, ordered: b.Ordered, index: 1}
		}
		frag.marker = r.styles.marker(b.Ordered, r.list.index)
	default:
		r.list = listState{}
		frag.indent = style.IndentPt
	}
	frag.text = b.Text
	return frag
}

package layout

import (
	"fmt"
	"strconv"
)

// 样式表的键。
const (
	StyleParagraph = "paragraph"
	StyleList      = "list"
	StyleBreak     = "break"
)

const (
	defaultBullet        = "•"
	defaultOrderedFormat = "%d."
)

// StyleTable 把块类型映射到样式。未定义的键回退到 paragraph。
type StyleTable struct {
	Styles        map[string]StyleSpec `json:"styles" yaml:"styles"`
	Bullet        string               `json:"bullet,omitempty" yaml:"bullet"`
	OrderedFormat string               `json:"orderedFormat,omitempty" yaml:"ordered-format"`
}

// HeadingKey 返回标题级别对应的样式键，例如 heading1。
func HeadingKey(level int) string { return "heading" + strconv.Itoa(level) }

// DefaultStyleTable 返回内置样式表：标题加粗，正文 12pt，行距 4pt。
func DefaultStyleTable() StyleTable {
	heading := func(size float64) StyleSpec {
		return StyleSpec{Font: FontBold, SizePt: size, LineGapPt: 4, GapBeforePt: 10, GapAfterPt: 6}
	}
	styles := map[string]StyleSpec{
		HeadingKey(1):  heading(20),
		HeadingKey(2):  heading(16),
		StyleParagraph: {Font: FontRegular, SizePt: 12, LineGapPt: 4},
		StyleList:      {Font: FontRegular, SizePt: 12, LineGapPt: 4, IndentPt: 14, GapAfterPt: 2},
		StyleBreak:     {Font: FontRegular, SizePt: 12, GapAfterPt: 12},
	}
	for level := 3; level <= 6; level++ {
		styles[HeadingKey(level)] = heading(14)
	}
	return StyleTable{
		Styles:        styles,
		Bullet:        defaultBullet,
		OrderedFormat: defaultOrderedFormat,
	}
}

// Merge 返回以 override 中已定义字段覆盖 t 之后的新样式表。t 本身不变。
func (t StyleTable) Merge(override StyleTable) StyleTable {
	out := StyleTable{
		Styles:        make(map[string]StyleSpec, len(t.Styles)+len(override.Styles)),
		Bullet:        t.Bullet,
		OrderedFormat: t.OrderedFormat,
	}
	for k, v := range t.Styles {
		out.Styles[k] = v
	}
	for k, v := range override.Styles {
		out.Styles[k] = v
	}
	if override.Bullet != "" {
		out.Bullet = override.Bullet
	}
	if override.OrderedFormat != "" {
		out.OrderedFormat = override.OrderedFormat
	}
	return out
}

// Resolve 返回块对应的样式。标题缺省时先退到更低级别的已定义标题，再退到 paragraph。
func (t StyleTable) Resolve(b Block) StyleSpec {
	switch b.Kind {
	case KindHeading:
		for level := b.Level; level >= 1; level-- {
			if s, ok := t.Styles[HeadingKey(level)]; ok {
				return s
			}
		}
	case KindListItem:
		if s, ok := t.Styles[StyleList]; ok {
			return s
		}
	case KindBreak:
		if s, ok := t.Styles[StyleBreak]; ok {
			return s
		}
	}
	return t.Styles[StyleParagraph]
}

func (t StyleTable) marker(ordered bool, index int) string {
	if !ordered {
		if t.Bullet == "" {
			return defaultBullet
		}
		return t.Bullet
	}
	format := t.OrderedFormat
	if format == "" {
		format = defaultOrderedFormat
	}
	return fmt.Sprintf(format, index)
}

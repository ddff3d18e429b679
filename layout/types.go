package layout

// 该文件定义内容块、样式与布局结果，供版式引擎、渲染器与调试 JSON 共用。
// 所有长度单位均为 pt，坐标采用 PDF 用户空间（原点在左下角）。

// BlockKind 区分内容块的类型。
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindListItem
	KindBreak
)

func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list-item"
	case KindBreak:
		return "break"
	default:
		return "unknown"
	}
}

// Block 是上游抽取器产出的一个语义内容单元。构造后不再修改。
// Level 仅对标题有效（1..6），Ordered 仅对列表项有效。
type Block struct {
	Kind    BlockKind `json:"kind"`
	Level   int       `json:"level,omitempty"`
	Ordered bool      `json:"ordered,omitempty"`
	Text    string    `json:"text,omitempty"`
}

// Heading 创建标题块，level 超出 1..6 时被夹到边界。
func Heading(level int, text string) Block {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return Block{Kind: KindHeading, Level: level, Text: text}
}

// Paragraph 创建段落块。
func Paragraph(text string) Block { return Block{Kind: KindParagraph, Text: text} }

// ListItem 创建列表项，ordered 为 true 时使用序号标记。
func ListItem(ordered bool, text string) Block {
	return Block{Kind: KindListItem, Ordered: ordered, Text: text}
}

// Break 创建仅产生纵向空白的换行块。
func Break() Block { return Block{Kind: KindBreak} }

// Font 是渲染器中已注册字体的名字，例如 regular、bold。
type Font string

const (
	FontRegular Font = "regular"
	FontBold    Font = "bold"
	FontItalic  Font = "italic"
	FontMono    Font = "mono"
)

// MeasureFunc 返回 text 以 font、sizePt 渲染后的宽度（pt）。
// 必须是纯函数：相同输入总是得到相同宽度。
type MeasureFunc func(text string, font Font, sizePt float64) float64

// StyleSpec 描述一种块类型的字体、字号与纵向间距。
type StyleSpec struct {
	Font           Font    `json:"font" yaml:"font"`
	SizePt         float64 `json:"sizePt" yaml:"size"`
	LineGapPt      float64 `json:"lineGapPt" yaml:"line-gap"`
	ParagraphGapPt float64 `json:"paragraphGapPt,omitempty" yaml:"paragraph-gap"`
	IndentPt       float64 `json:"indentPt,omitempty" yaml:"indent"`
	GapBeforePt    float64 `json:"gapBeforePt,omitempty" yaml:"before"`
	GapAfterPt     float64 `json:"gapAfterPt,omitempty" yaml:"after"`
}

// LineAdvance 是一行占用的纵向空间。
func (s StyleSpec) LineAdvance() float64 { return s.SizePt + s.LineGapPt }

// Geometry 描述所有页面共享的尺寸与边距。
type Geometry struct {
	WidthPt  float64 `json:"widthPt" yaml:"width"`
	HeightPt float64 `json:"heightPt" yaml:"height"`
	MarginPt float64 `json:"marginPt" yaml:"margin"`
}

// MaxWidth 返回可用于排版的文本宽度。
func (g Geometry) MaxWidth() float64 { return g.WidthPt - 2*g.MarginPt }

// Top 是新页面上光标的初始位置。
func (g Geometry) Top() float64 { return g.HeightPt - g.MarginPt }

// Result 保存布局后的页面与文档元信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// Page 记录页面尺寸与已经定位好的文本片段。
type Page struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Margin float64     `json:"margin"`
	Runs   []PlacedRun `json:"runs"`
}

// PlacedRun 是布局的最终输出单元。Y 为基线位置。
// Marker 为 true 表示该片段是列表项的项目符号或序号。
type PlacedRun struct {
	Text   string    `json:"text"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Style  StyleSpec `json:"style"`
	Marker bool      `json:"marker,omitempty"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title" yaml:"title"`
	Author   string   `json:"author" yaml:"author"`
	Subject  string   `json:"subject" yaml:"subject"`
	Creator  string   `json:"creator" yaml:"creator"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// FontResource 描述一个可被渲染器加载的字体。
// Src 可以是 builtin:<name> 形式或相对/绝对文件路径。
type FontResource struct {
	Name  string `json:"name" yaml:"name"`
	Src   string `json:"src" yaml:"src"`
	Style string `json:"style,omitempty" yaml:"style"`
}

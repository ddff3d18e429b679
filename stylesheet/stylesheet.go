// Package stylesheet 把 DSL 或 YAML 形式的样式表编译为页面几何、字体与样式表。
package stylesheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/docflow/dsl"
	"github.com/ByLCY/docflow/layout"
)

// DefaultMarginPt 是默认页边距。
const DefaultMarginPt = 48

// Sheet 是编译后的样式表。
type Sheet struct {
	Name     string                `json:"name"`
	Geometry layout.Geometry       `json:"geometry"`
	Styles   layout.StyleTable     `json:"styles"`
	Fonts    []layout.FontResource `json:"fonts,omitempty"`
	Meta     layout.DocumentMeta   `json:"meta"`
	// BaseDir 是样式表文件所在目录，用于解析字体相对路径。
	BaseDir string `json:"-"`
}

// Default 返回 A4 纵向、48pt 边距与内置样式的样式表。
func Default() *Sheet {
	a4 := layout.PageSizes["A4"]
	return &Sheet{
		Name:     "default",
		Geometry: layout.Geometry{WidthPt: a4[0], HeightPt: a4[1], MarginPt: DefaultMarginPt},
		Styles:   layout.DefaultStyleTable(),
	}
}

// BuildOptions 返回可直接交给 layout.Build 的选项。
func (s *Sheet) BuildOptions(measure layout.MeasureFunc) layout.BuildOptions {
	return layout.BuildOptions{Geometry: s.Geometry, Styles: s.Styles, Measure: measure}
}

// LoadFile 按扩展名读取样式表：.sheet/.dflow 为 DSL，.yaml/.yml 为 YAML。
func LoadFile(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取样式表 %s 失败: %w", path, err)
	}
	var sheet *Sheet
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".sheet", ".dflow":
		src, perr := dsl.ParseString(string(data))
		if perr != nil {
			return nil, fmt.Errorf("解析样式表 %s 失败: %w", path, perr)
		}
		sheet, err = Compile(src)
	case ".yaml", ".yml":
		sheet, err = ParseYAML(data)
	default:
		return nil, fmt.Errorf("不支持的样式表格式 %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("编译样式表 %s 失败: %w", path, err)
	}
	sheet.BaseDir = filepath.Dir(path)
	return sheet, nil
}

// ParseDSL 解析并编译 DSL 文本。
func ParseDSL(input string) (*Sheet, error) {
	src, err := dsl.ParseString(input)
	if err != nil {
		return nil, fmt.Errorf("解析样式表失败: %w", err)
	}
	return Compile(src)
}

// pageDecl 是 DSL 与 YAML 共用的页面声明。
type pageDecl struct {
	size      string
	landscape bool
	width     string
	height    string
	margin    string
}

func (p pageDecl) geometry() (layout.Geometry, error) {
	var g layout.Geometry
	size := strings.ToUpper(strings.TrimSpace(p.size))
	switch size {
	case "", "CUSTOM":
		if p.width == "" || p.height == "" {
			if size == "CUSTOM" {
				return g, fmt.Errorf("custom 页面需要宽度与高度")
			}
			a4 := layout.PageSizes["A4"]
			g.WidthPt, g.HeightPt = a4[0], a4[1]
			break
		}
		w, err := layout.ParseLength(p.width)
		if err != nil {
			return g, fmt.Errorf("页面宽度: %w", err)
		}
		h, err := layout.ParseLength(p.height)
		if err != nil {
			return g, fmt.Errorf("页面高度: %w", err)
		}
		g.WidthPt, g.HeightPt = w.ToPT(), h.ToPT()
	default:
		dims, ok := layout.PageSizes[size]
		if !ok {
			return g, fmt.Errorf("未知页面尺寸 %s", p.size)
		}
		g.WidthPt, g.HeightPt = dims[0], dims[1]
	}
	if p.landscape {
		g.WidthPt, g.HeightPt = g.HeightPt, g.WidthPt
	}

	g.MarginPt = DefaultMarginPt
	if p.margin != "" {
		m, err := layout.ParseLength(p.margin)
		if err != nil {
			return g, fmt.Errorf("页边距: %w", err)
		}
		g.MarginPt = m.ToPT()
	}
	return g, nil
}

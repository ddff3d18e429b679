package stylesheet

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/ByLCY/docflow/layout"
)

// yamlSheet 是 YAML 样式表的结构，例如：
//
//	name: Report
//	page: { size: A4, orientation: landscape, margin: 18mm }
//	fonts: [{ name: serif, src: fonts/Serif.ttf }]
//	styles:
//	  bullet: "-"
//	  paragraph: { font: serif, size: 11pt }
//	  heading1: { extends: paragraph, size: 20pt }
type yamlSheet struct {
	Name   string                `yaml:"name"`
	Page   yamlPage              `yaml:"page"`
	Meta   layout.DocumentMeta   `yaml:"meta"`
	Fonts  []layout.FontResource `yaml:"fonts"`
	Styles map[string]yaml.Node  `yaml:"styles"`
}

type yamlPage struct {
	Size        string `yaml:"size"`
	Orientation string `yaml:"orientation"`
	Width       string `yaml:"width"`
	Height      string `yaml:"height"`
	Margin      string `yaml:"margin"`
}

// ParseYAML 解析 YAML 形式的样式表，语义与 DSL 相同。
func ParseYAML(data []byte) (*Sheet, error) {
	var src yamlSheet
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("解析 YAML 样式表失败: %w", err)
	}

	sheet := Default()
	if src.Name != "" {
		sheet.Name = src.Name
	}
	sheet.Meta = src.Meta
	for _, f := range src.Fonts {
		if f.Name == "" || f.Src == "" {
			return nil, fmt.Errorf("字体声明缺少 name 或 src: %+v", f)
		}
		sheet.Fonts = append(sheet.Fonts, f)
	}

	page := pageDecl{
		size:   src.Page.Size,
		width:  src.Page.Width,
		height: src.Page.Height,
		margin: src.Page.Margin,
	}
	switch src.Page.Orientation {
	case "", "portrait":
	case "landscape":
		page.landscape = true
	default:
		return nil, fmt.Errorf("未知页面方向 %s", src.Page.Orientation)
	}
	geometry, err := page.geometry()
	if err != nil {
		return nil, err
	}
	sheet.Geometry = geometry

	decls := map[string]styleDecl{}
	var override layout.StyleTable
	for key, node := range src.Styles {
		switch key {
		case "bullet":
			override.Bullet = node.Value
			continue
		case "ordered-format":
			override.OrderedFormat = node.Value
			continue
		}
		var props map[string]string
		if err := node.Decode(&props); err != nil {
			return nil, fmt.Errorf("样式 %s 第 %d 行: %w", key, node.Line, err)
		}
		decl := styleDecl{name: key, props: map[string]string{}}
		for k, v := range props {
			if k == "extends" {
				decl.extends = v
				continue
			}
			decl.props[k] = v
		}
		decls[key] = decl
	}
	table, err := buildStyleTable(decls, override)
	if err != nil {
		return nil, err
	}
	sheet.Styles = table
	return sheet, nil
}

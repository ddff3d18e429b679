package stylesheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ByLCY/docflow/dsl"
	"github.com/ByLCY/docflow/layout"
)

// styleDecl 是一条未展开继承的样式声明。
type styleDecl struct {
	name    string
	extends string
	props   map[string]string
}

// Compile 把 DSL 语法树编译为 Sheet。未声明的部分沿用 Default()。
func Compile(src *dsl.Sheet) (*Sheet, error) {
	if src == nil {
		return nil, fmt.Errorf("样式表为空")
	}
	sheet := Default()
	sheet.Name = src.Name

	var (
		page     pageDecl
		decls    = map[string]styleDecl{}
		override layout.StyleTable
	)
	for _, section := range src.Sections {
		switch {
		case section.Meta != nil:
			sheet.Meta = compileMeta(section.Meta.Block)
		case section.Fonts != nil:
			fonts, err := compileFonts(section.Fonts.Block)
			if err != nil {
				return nil, err
			}
			sheet.Fonts = append(sheet.Fonts, fonts...)
		case section.Page != nil:
			p, err := compilePage(section.Page)
			if err != nil {
				return nil, err
			}
			page = p
		case section.Styles != nil:
			if err := compileStylesBlock(section.Styles.Block, decls, &override); err != nil {
				return nil, err
			}
		}
	}

	geometry, err := page.geometry()
	if err != nil {
		return nil, err
	}
	sheet.Geometry = geometry

	table, err := buildStyleTable(decls, override)
	if err != nil {
		return nil, err
	}
	sheet.Styles = table
	return sheet, nil
}

func compileMeta(block *dsl.Block) layout.DocumentMeta {
	var meta layout.DocumentMeta
	if block == nil {
		return meta
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := stmt.Assignment.Value
		switch strings.ToLower(stmt.Assignment.Key) {
		case "title":
			meta.Title = val.Text()
		case "author":
			meta.Author = val.Text()
		case "subject":
			meta.Subject = val.Text()
		case "creator":
			meta.Creator = val.Text()
		case "keywords":
			meta.Keywords = valueToList(val)
		}
	}
	return meta
}

func valueToList(v *dsl.Value) []string {
	if v == nil {
		return nil
	}
	if v.Array != nil {
		out := make([]string, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			if s := item.Text(); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	var out []string
	for _, part := range strings.Split(v.Text(), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func compileFonts(block *dsl.Block) ([]layout.FontResource, error) {
	if block == nil {
		return nil, nil
	}
	var fonts []layout.FontResource
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil || cmd.Name != "font" {
			continue
		}
		if len(cmd.Args) == 0 {
			return nil, fmt.Errorf("%s: font 缺少名称", cmd.Pos)
		}
		font := layout.FontResource{Name: cmd.Args[0].Value}
		if cmd.Block != nil {
			for _, s := range cmd.Block.Statements {
				if s.Assignment == nil {
					continue
				}
				switch s.Assignment.Key {
				case "src":
					font.Src = s.Assignment.Value.Text()
				case "style":
					font.Style = s.Assignment.Value.Text()
				}
			}
		}
		if font.Src == "" {
			return nil, fmt.Errorf("%s: 字体 %s 缺少 src", cmd.Pos, font.Name)
		}
		fonts = append(fonts, font)
	}
	return fonts, nil
}

func compilePage(section *dsl.PageSection) (pageDecl, error) {
	p := pageDecl{size: section.Spec.Size}
	params := section.Spec.Params
	if strings.EqualFold(p.size, "custom") {
		if len(params) < 2 {
			return p, fmt.Errorf("%s: custom 页面需要宽度与高度", section.Pos)
		}
		p.width, p.height = params[0].Value, params[1].Value
		params = params[2:]
	}
	for i := 0; i < len(params); i++ {
		switch strings.ToLower(params[i].Value) {
		case "portrait":
			p.landscape = false
		case "landscape":
			p.landscape = true
		case "margin":
			if i+1 >= len(params) {
				return p, fmt.Errorf("%s: margin 缺少数值", section.Pos)
			}
			p.margin = params[i+1].Value
			i++
		default:
			return p, fmt.Errorf("%s: 未知页面参数 %s", params[i].Pos, params[i].Value)
		}
	}
	return p, nil
}

func compileStylesBlock(block *dsl.Block, decls map[string]styleDecl, override *layout.StyleTable) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		if a := stmt.Assignment; a != nil {
			switch a.Key {
			case "bullet":
				override.Bullet = a.Value.Text()
			case "ordered-format":
				override.OrderedFormat = a.Value.Text()
			default:
				return fmt.Errorf("%s: 未知样式表属性 %s", a.Pos, a.Key)
			}
			continue
		}
		cmd := stmt.Command
		if cmd == nil || cmd.Name != "style" {
			continue
		}
		decl, err := parseStyleCommand(cmd)
		if err != nil {
			return err
		}
		decls[decl.name] = decl
	}
	return nil
}

func parseStyleCommand(cmd *dsl.Command) (styleDecl, error) {
	if len(cmd.Args) == 0 {
		return styleDecl{}, fmt.Errorf("%s: style 缺少名称", cmd.Pos)
	}
	decl := styleDecl{name: cmd.Args[0].Value, props: map[string]string{}}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		decl.extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return decl, nil
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := stmt.Assignment.Value.Text()
		if val == "" {
			continue
		}
		decl.props[stmt.Assignment.Key] = val
	}
	return decl, nil
}

// resolveStyles 展开 extends 继承链，子样式的属性覆盖父样式。
func resolveStyles(styles map[string]styleDecl) (map[string]map[string]string, error) {
	resolved := map[string]map[string]string{}
	visiting := map[string]bool{}

	var dfs func(name string) (map[string]string, error)
	dfs = func(name string) (map[string]string, error) {
		if props, ok := resolved[name]; ok {
			return props, nil
		}
		style, ok := styles[name]
		if !ok {
			return nil, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return nil, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.extends != "" {
			parent, err := dfs(style.extends)
			if err != nil {
				return nil, err
			}
			for k, v := range parent {
				props[k] = v
			}
		}
		for k, v := range style.props {
			props[k] = v
		}
		resolved[name] = props
		delete(visiting, name)
		return props, nil
	}

	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// buildStyleTable 把声明叠加到内置样式表上。
// 声明中未写出的属性取同名内置样式的值，没有同名内置样式时取 paragraph。
func buildStyleTable(decls map[string]styleDecl, override layout.StyleTable) (layout.StyleTable, error) {
	resolved, err := resolveStyles(decls)
	if err != nil {
		return layout.StyleTable{}, err
	}
	defaults := layout.DefaultStyleTable()
	override.Styles = map[string]layout.StyleSpec{}
	for name, props := range resolved {
		base, ok := defaults.Styles[name]
		if !ok {
			base = defaults.Styles[layout.StyleParagraph]
		}
		spec, err := applyProps(base, props)
		if err != nil {
			return layout.StyleTable{}, fmt.Errorf("style %s: %w", name, err)
		}
		override.Styles[name] = spec
	}
	return defaults.Merge(override), nil
}

func applyProps(spec layout.StyleSpec, props map[string]string) (layout.StyleSpec, error) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lineHeight *layout.LineHeightSpec
	for _, key := range keys {
		val := props[key]
		switch key {
		case "font":
			spec.Font = layout.Font(val)
		case "line-height":
			lh, err := layout.ParseLineHeight(val)
			if err != nil {
				return spec, err
			}
			lineHeight = &lh
		case "size", "line-gap", "paragraph-gap", "indent", "before", "after":
			l, err := layout.ParseLength(val)
			if err != nil {
				return spec, fmt.Errorf("%s: %w", key, err)
			}
			pt := l.ToPT()
			switch key {
			case "size":
				spec.SizePt = pt
			case "line-gap":
				spec.LineGapPt = pt
			case "paragraph-gap":
				spec.ParagraphGapPt = pt
			case "indent":
				spec.IndentPt = pt
			case "before":
				spec.GapBeforePt = pt
			case "after":
				spec.GapAfterPt = pt
			}
		default:
			return spec, fmt.Errorf("未知样式属性 %s", key)
		}
	}
	if lineHeight != nil {
		spec.LineGapPt = lineHeight.GapPt(spec.SizePt)
	}
	return spec, nil
}

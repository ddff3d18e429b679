package renderer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/docflow/fonts"
	"github.com/ByLCY/docflow/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
// Measure 按渲染时实际使用的字体度量文本宽度（pt），可直接作为 layout.MeasureFunc 注入。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
	Measure(text string, font layout.Font, sizePt float64) float64
}

// DefaultFonts 把四种基础字体映射到内置 Go 字体。
func DefaultFonts() []layout.FontResource {
	return []layout.FontResource{
		{Name: string(layout.FontRegular), Src: "builtin:go-regular"},
		{Name: string(layout.FontBold), Src: "builtin:go-bold", Style: "bold"},
		{Name: string(layout.FontItalic), Src: "builtin:go-italic", Style: "italic"},
		{Name: string(layout.FontMono), Src: "builtin:go-mono"},
	}
}

// MergeFonts 以 base 为底，按 Name 用 overrides 覆盖或追加。
func MergeFonts(base, overrides []layout.FontResource) map[layout.Font]layout.FontResource {
	out := make(map[layout.Font]layout.FontResource, len(base)+len(overrides))
	for _, f := range base {
		out[layout.Font(f.Name)] = f
	}
	for _, f := range overrides {
		if f.Name == "" {
			continue
		}
		out[layout.Font(f.Name)] = f
	}
	return out
}

// LoadFontBytes 读取 builtin: 内置字体或文件字体，相对路径基于 baseDir。
func LoadFontBytes(baseDir string, font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	if fonts.IsBuiltin(font.Src) {
		return fonts.Load(font.Src)
	}
	path := font.Src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", font.Src, err)
	}
	return data, nil
}

package fonts

import (
	"bytes"
	"fmt"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/docflow/layout"
)

// Shaper 用 HarfBuzz 整形结果测量文本宽度，不依赖任何 PDF 渲染器。
// 解析后的 font.Font 可并发读取；HarfbuzzShaper 有内部缓冲，由 mu 串行化。
type Shaper struct {
	mu       sync.Mutex
	hb       shaping.HarfbuzzShaper
	fonts    map[layout.Font]*font.Font
	fallback *font.Font
}

// NewShaper 解析 sources 中的字体数据。未注册的字体测量时退回内置 regular。
func NewShaper(sources map[layout.Font][]byte) (*Shaper, error) {
	s := &Shaper{fonts: make(map[layout.Font]*font.Font, len(sources))}
	for name, data := range sources {
		f, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("解析字体 %s 失败: %w", name, err)
		}
		s.fonts[name] = f
	}
	regular, err := Load("regular")
	if err != nil {
		return nil, err
	}
	if s.fallback, err = parse(regular); err != nil {
		return nil, err
	}
	return s, nil
}

// NewBuiltinShaper 注册 regular/bold/italic/mono 四种内置字体。
func NewBuiltinShaper() (*Shaper, error) {
	sources := map[layout.Font][]byte{}
	for _, name := range []layout.Font{layout.FontRegular, layout.FontBold, layout.FontItalic, layout.FontMono} {
		data, err := Load(string(name))
		if err != nil {
			return nil, err
		}
		sources[name] = data
	}
	return NewShaper(sources)
}

func parse(data []byte) (*font.Font, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return face.Font, nil
}

// Measure 实现 layout.MeasureFunc，返回 text 的整形前进宽度（pt）。
func (s *Shaper) Measure(text string, f layout.Font, sizePt float64) float64 {
	if text == "" || sizePt <= 0 {
		return 0
	}
	ft, ok := s.fonts[f]
	if !ok {
		ft = s.fallback
	}
	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(ft),
		Size:      fixed.Int26_6(sizePt * 64),
		Script:    scriptOf(runes),
		Language:  language.NewLanguage("en"),
	}

	s.mu.Lock()
	out := s.hb.Shape(input)
	s.mu.Unlock()

	return float64(out.Advance) / 64
}

func scriptOf(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

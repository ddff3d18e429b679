package layout

import (
	"strings"
	"unicode/utf8"
)

// Wrap 使用贪心算法按字体度量把 text 拆成不超过 maxWidthPt 的行。
//
// 文本先按空白切分为单词，逐词尝试追加到当前行；放不下时输出当前行并以该词开新行。
// 若单词本身就超过 maxWidthPt，则逐字符硬拆分，最后剩余的片段成为新的当前行。
// 空白输入返回空切片。结果只依赖 (text, style, maxWidthPt, measure)。
func Wrap(text string, style StyleSpec, maxWidthPt float64, measure MeasureFunc) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}
	}
	width := func(s string) float64 { return measure(s, style.Font, style.SizePt) }

	var lines []string
	line := ""
	for _, w := range words {
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if width(candidate) <= maxWidthPt {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		if width(w) <= maxWidthPt {
			line = w
			continue
		}
		var fragments []string
		fragments, line = hardSplit(w, maxWidthPt, width)
		lines = append(lines, fragments...)
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// hardSplit 逐字符切分过长单词，返回已完成的片段与剩余部分。
// 单个字符即使超宽也会独占一段，保证不丢字符。
// 按原始字节切片而不是重新编码 rune，无效的 UTF-8 字节原样保留。
func hardSplit(word string, maxWidthPt float64, width func(string) float64) ([]string, string) {
	var done []string
	start := 0
	for i := 0; i < len(word); {
		_, size := utf8.DecodeRuneInString(word[i:])
		if i > start && width(word[start:i+size]) > maxWidthPt {
			done = append(done, word[start:i])
			start = i
		}
		i += size
	}
	return done, word[start:]
}

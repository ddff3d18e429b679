package extract

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ByLCY/docflow/layout"
)

// Text 读取轻量标记的纯文本：
//
//	# 标题           （# 的个数为级别）
//	- 项目 / * 项目   （无序列表）
//	1. 项目          （有序列表）
//
// 其余连续的非空行合并为一个段落，空行分隔段落；只含换页符的行输出 Break。
type Text struct{}

var orderedItem = regexp.MustCompile(`^\d+[.)]\s+`)

// Extract implements Extractor.
func (Text) Extract(r io.Reader) ([]layout.Block, error) {
	blocks := []layout.Block{}
	var para []string
	flush := func() {
		if text := cleanText(strings.Join(para, " ")); text != "" {
			blocks = append(blocks, layout.Paragraph(text))
		}
		para = para[:0]
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" && strings.ContainsRune(line, '\f'):
			flush()
			blocks = append(blocks, layout.Break())
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			rest := strings.TrimLeft(trimmed, "#")
			if level > 6 || !strings.HasPrefix(rest, " ") {
				para = append(para, trimmed)
				continue
			}
			flush()
			if text := cleanText(rest); text != "" {
				blocks = append(blocks, layout.Heading(level, text))
			}
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			flush()
			if text := cleanText(trimmed[2:]); text != "" {
				blocks = append(blocks, layout.ListItem(false, text))
			}
		case orderedItem.MatchString(trimmed):
			flush()
			if text := cleanText(orderedItem.ReplaceAllString(trimmed, "")); text != "" {
				blocks = append(blocks, layout.ListItem(true, text))
			}
		default:
			para = append(para, trimmed)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("读取文本失败: %w", err)
	}
	flush()
	return blocks, nil
}

// Package extract 把 DOCX、HTML 与纯文本转换为 layout.Block 序列。
//
// 抽取只保留语义结构（标题、段落、列表项、换行），不保留表格、图片与复杂样式。
package extract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/docflow/layout"
)

// ErrUnsupported 表示无法识别的输入格式。
var ErrUnsupported = errors.New("extract: 不支持的输入格式")

// Extractor 从 r 中读取文档并返回内容块。
type Extractor interface {
	Extract(r io.Reader) ([]layout.Block, error)
}

// Document 是带元信息的抽取结果。
type Document struct {
	Blocks []layout.Block
	Meta   layout.DocumentMeta
}

// DocumentExtractor 由能同时读取文档元信息的抽取器实现。
type DocumentExtractor interface {
	Extractor
	ExtractDocument(r io.Reader) (*Document, error)
}

// ExtractDocument 优先使用 DocumentExtractor，否则只返回内容块。
func ExtractDocument(e Extractor, r io.Reader) (*Document, error) {
	if de, ok := e.(DocumentExtractor); ok {
		return de.ExtractDocument(r)
	}
	blocks, err := e.Extract(r)
	if err != nil {
		return nil, err
	}
	return &Document{Blocks: blocks}, nil
}

// ForPath 按扩展名选择抽取器。
func ForPath(name string) (Extractor, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".docx":
		return DOCX{}, nil
	case ".html", ".htm", ".xhtml":
		return HTML{}, nil
	case ".txt", ".text", ".md":
		return Text{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// cleanText 把不换行空格换成普通空格，合并空白并做 NFC 规范化。
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// Package imaging 提供图片转 PDF 与 JPEG 重新编码。
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/docflow/layout"
)

// DefaultQuality 是 JPEG 重新编码的默认质量。
const DefaultQuality = 92

// JPEGOptions 控制 ReencodeJPEG。
type JPEGOptions struct {
	// Quality 取值 1..100，0 表示 DefaultQuality。
	Quality int
	// MaxDimension 大于 0 时把长边缩小到该像素数，不放大。
	MaxDimension int
}

func (o JPEGOptions) quality() int {
	switch {
	case o.Quality <= 0:
		return DefaultQuality
	case o.Quality > 100:
		return 100
	default:
		return o.Quality
	}
}

// Decode 解码 PNG、JPEG、GIF、WebP、BMP 与 TIFF。
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("解码图片失败: %w", err)
	}
	return img, format, nil
}

// ToPDF 生成单页 PDF，页面尺寸等于图片像素数（按 pt 计），图片铺满整页。
func ToPDF(r io.Reader) ([]byte, error) {
	img, format, err := Decode(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("图片尺寸为 0")
	}
	wMM := float64(b.Dx()) * layout.PtToMm
	hMM := float64(b.Dy()) * layout.PtToMm

	var buf bytes.Buffer
	writer := pdf.New(&buf, wMM, hMM, nil)
	c := canvas.New(wMM, hMM)
	ctx := canvas.NewContext(c)
	// 每 pt 一个像素
	ctx.DrawImage(0, 0, img, canvas.DPMM(float64(b.Dx())/wMM))
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	layout.Logger().Debug("图片转 PDF", "format", format, "width", b.Dx(), "height", b.Dy())
	return buf.Bytes(), nil
}

// ReencodeJPEG 把任意支持的图片铺在白底上重新编码为 JPEG。
func ReencodeJPEG(r io.Reader, w io.Writer, opts JPEGOptions) error {
	src, _, err := Decode(r)
	if err != nil {
		return err
	}
	sb := src.Bounds()
	dw, dh := fitWithin(sb.Dx(), sb.Dy(), opts.MaxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	// JPEG 没有透明通道，先铺白底
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if dw == sb.Dx() && dh == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	}

	if err := jpeg.Encode(w, dst, &jpeg.Options{Quality: opts.quality()}); err != nil {
		return fmt.Errorf("编码 JPEG 失败: %w", err)
	}
	return nil
}

// fitWithin 按比例缩小到长边不超过 limit，limit<=0 时保持原尺寸。
func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, atLeastOne(h * limit / w)
	}
	return atLeastOne(w * limit / h), limit
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// OutputName 把输入文件名的扩展名替换为 ext，例如 report.docx → report.pdf、photo.jpeg → photo.jpg。
func OutputName(in, ext string) string {
	base := filepath.Base(in)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "output"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "output"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return base + ext
}

package dsl_test

import (
	"testing"

	"github.com/ByLCY/docflow/dsl"
)

const sampleSheet = `
// 季度报告样式
sheet Report v1 {
  meta {
    title: "Q3 Report"
    author: "Ops"
    keywords: [
      "finance"
      "internal"
    ]
  }

  fonts {
    font serif {
      src: "fonts/Serif.ttf"
      style: "regular"
    }
    font serif-bold { src: "builtin:go-bold" }
  }

  page A4 landscape margin 18mm

  styles {
    bullet: "-"
    ordered-format: "%d)"
    style paragraph { font: serif size: 11pt line-gap: 3pt paragraph-gap: 2pt }
    style heading1 extends paragraph {
      font: serif-bold
      size: 20pt
      before: 10pt; after: 6pt
    }
  }
}
`

func TestParseSheet(t *testing.T) {
	sheet, err := dsl.ParseString(sampleSheet)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if sheet.Name != "Report" {
		t.Fatalf("expected sheet name Report, got %s", sheet.Name)
	}
	if sheet.Version != "v1" {
		t.Fatalf("expected version v1, got %s", sheet.Version)
	}
	if len(sheet.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sheet.Sections))
	}
	kinds := []string{"meta", "fonts", "page", "styles"}
	for i, want := range kinds {
		if got := sheet.Sections[i].Kind(); got != want {
			t.Fatalf("section %d: expected %s, got %s", i, want, got)
		}
	}

	meta := sheet.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" || title.Value.Text() != "Q3 Report" {
		t.Fatalf("unexpected title assignment: %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[2].Assignment
	if keywords == nil || keywords.Value.Array == nil || len(keywords.Value.Array.Values) != 2 {
		t.Fatalf("expected keywords array with 2 entries, got %+v", keywords)
	}

	fonts := sheet.Sections[1].Fonts
	if len(fonts.Block.Statements) != 2 {
		t.Fatalf("expected 2 font declarations, got %d", len(fonts.Block.Statements))
	}
	serif := fonts.Block.Statements[0].Command
	if serif == nil || serif.Name != "font" || serif.Args[0].Value != "serif" {
		t.Fatalf("unexpected font command: %+v", serif)
	}
	if src := serif.Block.Statements[0].Assignment; src == nil || src.Value.Text() != "fonts/Serif.ttf" {
		t.Fatalf("unexpected font src: %+v", serif.Block.Statements[0])
	}

	page := sheet.Sections[2].Page
	if page.Spec.Size != "A4" {
		t.Fatalf("expected page size A4, got %s", page.Spec.Size)
	}
	if len(page.Spec.Params) != 3 || page.Spec.Params[0].Value != "landscape" || page.Spec.Params[2].Value != "18mm" {
		t.Fatalf("unexpected page params: %+v", page.Spec.Params)
	}

	styles := sheet.Sections[3].Styles.Block.Statements
	if len(styles) != 4 {
		t.Fatalf("expected 4 style statements, got %d", len(styles))
	}
	if styles[0].Assignment == nil || styles[0].Assignment.Value.Text() != "-" {
		t.Fatalf("unexpected bullet assignment: %+v", styles[0])
	}
	paragraph := styles[2].Command
	if paragraph == nil || paragraph.Name != "style" || len(paragraph.Block.Statements) != 4 {
		t.Fatalf("unexpected paragraph style: %+v", paragraph)
	}
	if size := paragraph.Block.Statements[1].Assignment; size.Key != "size" || size.Value.Text() != "11pt" {
		t.Fatalf("unexpected size assignment: %+v", size)
	}
	heading := styles[3].Command
	if len(heading.Args) != 3 || heading.Args[1].Value != "extends" || heading.Args[2].Value != "paragraph" {
		t.Fatalf("unexpected heading args: %+v", heading.Args)
	}
	if len(heading.Block.Statements) != 4 {
		t.Fatalf("expected 4 heading statements, got %d", len(heading.Block.Statements))
	}
}

func TestParseRejectsMalformedSheet(t *testing.T) {
	cases := []string{
		``,
		`doc Report v1 { }`,
		`sheet Report v1 { styles { style paragraph { size: 12pt } }`,
		`sheet Report v1 { meta { title: "unterminated } }`,
	}
	for _, src := range cases {
		if _, err := dsl.ParseString(src); err == nil {
			t.Errorf("expected parse error for %q", src)
		}
	}
}

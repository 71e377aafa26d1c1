package web

import (
	"html/template"
	"strings"
	"testing"
	"time"

	"clipscribe/internal/domain/entity"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return renderer
}

func TestRenderAllPages(t *testing.T) {
	renderer := testRenderer(t)

	article := &entity.Article{
		ID:          1,
		UserID:      1,
		SourceTitle: "A Video",
		SourceLink:  "https://youtu.be/a",
		Content:     "<p>body</p>",
		CreatedAt:   time.Now(),
	}

	tests := []struct {
		page string
		data any
	}{
		{"index", struct{ Username string }{"alice"}},
		{"login", struct{ Error string }{}},
		{"signup", struct{ Error string }{"Passwords do not match."}},
		{"all-blogs", struct{ Articles []*entity.Article }{[]*entity.Article{article}}},
		{"blog-details", struct {
			Article *entity.Article
			Content template.HTML
		}{article, template.HTML(article.Content)}},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			var sb strings.Builder
			if err := renderer.Render(&sb, tt.page, tt.data); err != nil {
				t.Fatalf("Render(%q): %v", tt.page, err)
			}
			if !strings.Contains(sb.String(), "<!DOCTYPE html>") {
				t.Errorf("page %q missing doctype", tt.page)
			}
		})
	}
}

func TestRenderUnknownPage(t *testing.T) {
	renderer := testRenderer(t)

	var sb strings.Builder
	if err := renderer.Render(&sb, "no-such-page", nil); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestRenderEscapesUserData(t *testing.T) {
	renderer := testRenderer(t)

	var sb strings.Builder
	data := struct{ Username string }{Username: `<script>alert(1)</script>`}
	if err := renderer.Render(&sb, "index", data); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(sb.String(), "<script>alert(1)</script>") {
		t.Error("username rendered unescaped")
	}
}

func TestRenderArticleContentUnescaped(t *testing.T) {
	renderer := testRenderer(t)

	article := &entity.Article{SourceTitle: "A Video", SourceLink: "https://youtu.be/a", CreatedAt: time.Now()}
	data := struct {
		Article *entity.Article
		Content template.HTML
	}{article, template.HTML("<h1><b><u>A Video</u></b></h1>")}

	var sb strings.Builder
	if err := renderer.Render(&sb, "blog-details", data); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(sb.String(), "<h1><b><u>A Video</u></b></h1>") {
		t.Error("trusted article HTML was escaped")
	}
}

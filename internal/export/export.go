// Package export печатает статью в PDF через headless Chrome.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"wikihub/internal/logger"
	"wikihub/internal/models"

	"go.uber.org/zap"
)

var ErrPDFDependencyMissing = errors.New("pdf dependency missing")

// Printer превращает HTML-документ в PDF.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

type Service struct {
	printer   Printer
	publicURL string
}

// NewService: publicURL — префикс для ссылок на вложения (может быть пустым).
func NewService(printer Printer, publicURL string) *Service {
	return &Service{printer: printer, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *Service) ArticlePDF(ctx context.Context, a *models.Article) (*Result, error) {
	log := logger.WithCtx(ctx)
	log.Info("Экспорт статьи в PDF", zap.String("id", a.ID))

	html, err := s.RenderHTML(a)
	if err != nil {
		return nil, err
	}
	data, err := s.printer.PrintPDF(ctx, html)
	if err != nil {
		log.Error("Ошибка генерации PDF", zap.String("id", a.ID), zap.Error(err))
		return nil, err
	}
	return &Result{
		Data:     data,
		Filename: sanitizeFilename(a.Title) + ".pdf",
		MimeType: "application/pdf",
	}, nil
}

type attachmentView struct {
	Name string
	URL  string
	Size string
}

type articleView struct {
	Title       string
	Author      string
	Workspace   string
	Created     string
	Updated     string
	Version     int
	Attachments []attachmentView
	Content     template.HTML
}

// RenderHTML собирает HTML для печати. Контент уже очищен при сохранении.
func (s *Service) RenderHTML(a *models.Article) (string, error) {
	v := articleView{
		Title:     a.Title,
		Author:    a.AuthorName,
		Workspace: a.WorkspaceName,
		Created:   formatTime(a.CreatedAt),
		Updated:   formatTime(a.UpdatedAt),
		Version:   a.CurrentVersion,
		Content:   template.HTML(a.Content),
	}
	if v.Author == "" {
		v.Author = "Anonymous"
	}
	if v.Workspace == "" && a.WorkspaceID != nil {
		v.Workspace = *a.WorkspaceID
	}
	for _, att := range a.Attachments {
		v.Attachments = append(v.Attachments, attachmentView{
			Name: att.OriginalName,
			URL:  s.publicURL + att.Path,
			Size: humanSize(att.Size),
		})
	}

	var buf bytes.Buffer
	if err := articleTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render article html: %w", err)
	}
	return buf.String(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// sanitizeFilename оставляет латиницу, цифры, '-' и '_'; пробелы становятся '-'.
func sanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	result := b.String()
	if len(result) > 50 {
		result = result[:50]
	}
	if result == "" {
		result = "article"
	}
	return result
}

var articleTemplate = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, serif; color: #222; margin: 0; }
  h1 { font-size: 26px; margin: 0 0 8px 0; }
  .meta { font-size: 12px; color: #666; border-bottom: 1px solid #ddd; padding-bottom: 8px; margin-bottom: 16px; }
  .meta span { margin-right: 16px; }
  .content img { max-width: 100%; }
  .attachments { margin-top: 24px; font-size: 13px; }
  .attachments h2 { font-size: 15px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
  <span>Author: {{.Author}}</span>
  {{if .Workspace}}<span>Workspace: {{.Workspace}}</span>{{end}}
  <span>Created: {{.Created}}</span>
  <span>Updated: {{.Updated}}</span>
  <span>Version: {{.Version}}</span>
</div>
<div class="content">{{.Content}}</div>
{{if .Attachments}}
<div class="attachments">
  <h2>Attachments</h2>
  <ul>
  {{range .Attachments}}<li><a href="{{.URL}}">{{.Name}}</a> ({{.Size}})</li>
  {{end}}
  </ul>
</div>
{{end}}
</body>
</html>
`))

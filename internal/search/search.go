// Package search индексирует статьи в Meilisearch.
package search

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"wikihub/internal/models"
)

const idxArticles = "wikihub_articles"

// ArticleDoc — документ индекса статей.
type ArticleDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	WorkspaceID string `json:"workspaceId"`
	UpdatedAt   int64  `json:"updatedAt"`
}

var stripPolicy = bluemonday.StrictPolicy()

// PlainText превращает HTML статьи в текст без тегов.
func PlainText(rawHTML string) string {
	withBreaks := strings.NewReplacer("</p>", "</p>\n", "<br>", "\n", "<br/>", "\n", "<br />", "\n").Replace(rawHTML)
	text := html.UnescapeString(stripPolicy.Sanitize(withBreaks))

	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func NewArticleDoc(a *models.Article) ArticleDoc {
	doc := ArticleDoc{
		ID:        a.ID,
		Title:     a.Title,
		Content:   PlainText(a.Content),
		UpdatedAt: a.UpdatedAt.Unix(),
	}
	if a.WorkspaceID != nil {
		doc.WorkspaceID = *a.WorkspaceID
	}
	return doc
}

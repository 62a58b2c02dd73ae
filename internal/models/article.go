package models

import "time"

type Article struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	WorkspaceID     *string      `json:"workspaceId"`
	WorkspaceName   string       `json:"workspaceName,omitempty"`
	Attachments     []Attachment `json:"attachments"`
	CurrentVersion  int          `json:"currentVersion"`
	LatestVersionID *string      `json:"latestVersionId"`
	UserID          *string      `json:"userId"`
	AuthorName      string       `json:"authorName,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// ArticleSummary — проекция для списка (без content).
type ArticleSummary struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	WorkspaceID    *string      `json:"workspaceId"`
	WorkspaceName  string       `json:"workspaceName,omitempty"`
	Attachments    []Attachment `json:"attachments"`
	CurrentVersion int          `json:"currentVersion"`
	UserID         *string      `json:"userId"`
	AuthorName     string       `json:"authorName,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type ArticleWithComments struct {
	*Article
	Comments []*Comment `json:"comments"`
}

type ArticleFilter struct {
	WorkspaceID string
	Search      string
	IDs         []string
}

// swagger:model CreateArticleRequest
type CreateArticleRequest struct {
	Title       string  `json:"title"       example:"Photosynthesis"`
	Content     string  `json:"content"     example:"<p>Plants convert light into energy.</p>"`
	WorkspaceID *string `json:"workspaceId" example:"nature"`
}

// swagger:model UpdateArticleRequest
type UpdateArticleRequest struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	WorkspaceID  *string `json:"workspaceId,omitempty"`
	ChangeReason string  `json:"changeReason,omitempty" example:"Fixed typos"`
}

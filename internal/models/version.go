package models

import "time"

// ArticleVersion — неизменяемый снимок статьи. Строки только добавляются.
type ArticleVersion struct {
	ID           string       `json:"id"`
	ArticleID    string       `json:"articleId"`
	Version      int          `json:"version"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	WorkspaceID  *string      `json:"workspaceId"`
	Attachments  []Attachment `json:"attachments"`
	CreatedBy    string       `json:"createdBy"`
	ChangeReason *string      `json:"changeReason"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type VersionSummary struct {
	ID           string    `json:"id"`
	Version      int       `json:"version"`
	Title        string    `json:"title"`
	CreatedBy    string    `json:"createdBy"`
	ChangeReason *string   `json:"changeReason"`
	CreatedAt    time.Time `json:"createdAt"`
}

type HistoricalVersion struct {
	*ArticleVersion
	IsHistorical bool `json:"isHistorical"`
}

type RestoreResult struct {
	Success             bool     `json:"success"`
	Message             string   `json:"message"`
	Article             *Article `json:"article"`
	RestoredFromVersion int      `json:"restoredFromVersion"`
}

package models

import "time"

type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// swagger:model RenameWorkspaceRequest
type RenameWorkspaceRequest struct {
	Name string `json:"name" example:"Technology"`
}

const DefaultWorkspaceID = "uncategorized"

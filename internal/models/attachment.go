package models

import (
	"io"
	"time"
)

type Attachment struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Path         string    `json:"path"`
	Mimetype     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Upload — файл из multipart-запроса до сохранения.
type Upload struct {
	OriginalName string
	Mimetype     string
	Size         int64
	Body         io.Reader
}

// Package storage хранит файлы вложений: на диске или в S3-совместимом хранилище.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidName = errors.New("invalid blob name")
)

type BlobInfo struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

type Blobs interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	// Open возвращает содержимое; для дискового и minio-хранилища это io.ReadSeekCloser.
	Open(ctx context.Context, name string) (io.ReadCloser, BlobInfo, error)
	// Delete идемпотентен: отсутствующий файл не ошибка.
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]BlobInfo, error)
}

var reExt = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// NewName — имя файла вида <unix-ms>-<random><ext>. Расширение передаёт вызывающий
// по проверенному MIME-типу; всё, что не похоже на расширение, отбрасывается.
func NewName(ext string) string {
	if !reExt.MatchString(ext) {
		ext = ""
	}
	var b [6]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(b[:]), ext)
}

// PublicPath — путь, по которому файл отдаёт API.
func PublicPath(name string) string {
	return "/uploads/" + name
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}

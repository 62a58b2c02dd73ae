package storage

import (
	"context"
	"time"

	"wikihub/internal/logger"

	"go.uber.org/zap"
)

// References отдаёт имена всех файлов, на которые ссылаются статьи и их версии.
type References interface {
	ReferencedFilenames(ctx context.Context) (map[string]struct{}, error)
}

// Sweeper удаляет файлы, на которые никто не ссылается.
// Свежие файлы не трогаем: загрузка могла ещё не дописать метаданные.
type Sweeper struct {
	blobs Blobs
	refs  References
	grace time.Duration
	now   func() time.Time
}

func NewSweeper(blobs Blobs, refs References, grace time.Duration) *Sweeper {
	return &Sweeper{blobs: blobs, refs: refs, grace: grace, now: time.Now}
}

func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	// Сначала список файлов, потом ссылки: файл, сохранённый между вызовами,
	// в список не попадёт и удалён не будет.
	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return 0, err
	}
	refs, err := s.refs.ReferencedFilenames(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, b := range blobs {
		if _, ok := refs[b.Name]; ok {
			continue
		}
		if b.ModTime.After(cutoff) {
			continue
		}
		if err := s.blobs.Delete(ctx, b.Name); err != nil {
			logger.Log.Warn("Не удалось удалить осиротевший файл", zap.String("file", b.Name), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

// Run запускает периодическую чистку до отмены ctx.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				logger.Log.Error("Ошибка чистки осиротевших файлов", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Log.Info("Осиротевшие файлы удалены", zap.Int("count", n))
			}
		}
	}
}

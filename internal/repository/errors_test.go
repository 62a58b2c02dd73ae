package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundOr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"нет строк", pgx.ErrNoRows, ErrNotFound},
		{"id не uuid", &pgconn.PgError{Code: pgInvalidText}, ErrNotFound},
		{"обёрнутая 22P02", fmt.Errorf("query: %w", &pgconn.PgError{Code: pgInvalidText}), ErrNotFound},
		{"нарушение уникальности", &pgconn.PgError{Code: pgUniqueViolation}, nil},
		{"прочая ошибка", errors.New("connection reset"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := notFoundOr(tt.err)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
				return
			}
			assert.Same(t, tt.err, got)
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

package db

import (
	"strings"
	"testing"
)

func TestMigrationFilesOrdered(t *testing.T) {
	files, err := migrationFiles(migrationFS)
	if err != nil {
		t.Fatalf("ошибка чтения миграций: %v", err)
	}
	if len(files) < 3 {
		t.Fatalf("ожидалось минимум 3 миграции, получено %d", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Fatalf("миграции не отсортированы: %s >= %s", files[i-1], files[i])
		}
	}
}

func TestInitMigrationHasVersionUniqueness(t *testing.T) {
	body, err := migrationFS.ReadFile("migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("ошибка чтения миграции: %v", err)
	}
	sql := string(body)
	for _, want := range []string{
		"UNIQUE (article_id, version)",
		"REFERENCES articles(id) ON DELETE CASCADE",
		"CHECK (role IN ('admin', 'user'))",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("в схеме нет %q", want)
		}
	}
}

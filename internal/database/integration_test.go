package database

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := InitializeInMemory(name)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tables := []string{"words", "word_examples", "assignments", "assignment_words", "word_mastery", "learning_sessions", "learning_answers"}
	for _, table := range tables {
		var name string
		err := db.GetContext(ctx, &name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	applied, err := db.RunMigrations(ctx)
	if err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("Second migration run applied %v, want none", applied)
	}
}

// TestDatabaseTransactions tests commit and rollback through WithTx
func TestDatabaseTransactions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecReturningID(ctx, "INSERT INTO words (english, korean, level) VALUES (?, ?, ?)", "apple", "사과", 1)
		return err
	})
	if err != nil {
		t.Fatalf("Committed transaction failed: %v", err)
	}

	boom := errors.New("boom")
	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO words (english, korean, level) VALUES (?, ?, ?)", "pear", "배", 1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}

	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM words"); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("word count = %d, want 1 after rollback", count)
	}
}

func TestExecReturningID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.ExecReturningID(ctx, "INSERT INTO words (english, korean, level) VALUES (?, ?, ?)", "cat", "고양이", 1)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	second, err := db.ExecReturningID(ctx, "INSERT INTO words (english, korean, level) VALUES (?, ?, ?)", "dog", "개", 1)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if second <= first {
		t.Errorf("ids not increasing: %d then %d", first, second)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "INSERT INTO word_examples (word_id, english) VALUES (?, ?)", 999, "orphan")
	if err == nil {
		t.Error("expected foreign key violation for orphan example")
	}
}

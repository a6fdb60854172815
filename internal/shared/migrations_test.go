package shared

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func migratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrations(t *testing.T) {
	migrations, err := Migrations()
	if err != nil {
		t.Fatalf("failed to load migrations: %v", err)
	}

	var got []string
	for _, m := range migrations {
		got = append(got, m.String())
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %s is missing a script", m)
		}
	}
	want := []string{"0000 create_posts", "0001 create_drafts"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("migrations mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{"Empty", "", nil},
		{"Comments Only", "-- nothing here\n\n", nil},
		{
			name:   "Multi-line Statement",
			script: "-- drafts\nCREATE TABLE drafts (\n    scope TEXT -- \"*\" or platform\n);\n",
			want:   []string{"CREATE TABLE drafts (\nscope TEXT\n)"},
		},
		{
			name:   "Several Statements",
			script: "DROP TABLE IF EXISTS draft_state;\nDROP TABLE IF EXISTS drafts;",
			want:   []string{"DROP TABLE IF EXISTS draft_state", "DROP TABLE IF EXISTS drafts"},
		},
		{
			name:   "Missing Final Semicolon",
			script: "DROP INDEX idx_posts_created_at",
			want:   []string{"DROP INDEX idx_posts_created_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, splitStatements(tt.script)); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunMigrations(t *testing.T) {
	t.Run("Fresh Database", func(t *testing.T) {
		db := migratedDB(t)

		if v, err := SchemaVersion(db); err != nil || v != -1 {
			t.Fatalf("expected version -1 before migrating, got %d (%v)", v, err)
		}

		applied, err := RunMigrations(db)
		if err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if len(applied) != 2 || applied[0].Name != "create_posts" || applied[1].Name != "create_drafts" {
			t.Errorf("unexpected applied migrations: %v", applied)
		}

		if v, _ := SchemaVersion(db); v != 1 {
			t.Errorf("expected schema version 1, got %d", v)
		}
		if err := CheckSchema(db); err != nil {
			t.Errorf("schema check failed: %v", err)
		}

		var name string
		if err := db.QueryRow("SELECT name FROM schema_migrations WHERE version = 1").Scan(&name); err != nil || name != "create_drafts" {
			t.Errorf("expected recorded name create_drafts, got %q (%v)", name, err)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		db := migratedDB(t)
		if _, err := RunMigrations(db); err != nil {
			t.Fatal(err)
		}

		applied, err := RunMigrations(db)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if len(applied) != 0 {
			t.Errorf("expected nothing applied on second run, got %v", applied)
		}
	})

	t.Run("Rollback", func(t *testing.T) {
		db := migratedDB(t)
		if _, err := RunMigrations(db); err != nil {
			t.Fatal(err)
		}

		m, err := RollbackMigration(db)
		if err != nil {
			t.Fatalf("failed to roll back: %v", err)
		}
		if m.Name != "create_drafts" {
			t.Errorf("expected create_drafts to be rolled back, got %s", m)
		}
		if _, err := db.Exec("SELECT 1 FROM drafts LIMIT 1"); err == nil {
			t.Error("drafts table should be dropped by rollback")
		}
		if _, err := db.Exec("SELECT 1 FROM posts LIMIT 1"); err != nil {
			t.Errorf("posts table should survive: %v", err)
		}
		if err := CheckSchema(db); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig after rollback, got %v", err)
		}

		applied, err := RunMigrations(db)
		if err != nil || len(applied) != 1 {
			t.Errorf("expected drafts migration to reapply, got %v (%v)", applied, err)
		}
	})

	t.Run("Rollback Empty", func(t *testing.T) {
		db := migratedDB(t)
		if _, err := RollbackMigration(db); err == nil {
			t.Error("expected error with nothing applied")
		}
	})
}

func TestCheckSchema(t *testing.T) {
	t.Run("Unmigrated", func(t *testing.T) {
		db := migratedDB(t)
		if err := CheckSchema(db); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Single Draft State", func(t *testing.T) {
		db := migratedDB(t)
		if _, err := RunMigrations(db); err != nil {
			t.Fatal(err)
		}
		if _, err := db.Exec("INSERT INTO draft_state (id, mode, platforms) VALUES (1, 'unified', 'x')"); err != nil {
			t.Fatal(err)
		}
		if err := CheckSchema(db); err != nil {
			t.Errorf("one saved draft set should pass: %v", err)
		}
		if _, err := db.Exec("INSERT INTO draft_state (id, mode, platforms) VALUES (2, 'unified', 'x')"); err == nil {
			t.Error("draft_state should reject a second row")
		}
	})

	t.Run("Duplicated Draft State", func(t *testing.T) {
		db := migratedDB(t)
		if _, err := RunMigrations(db); err != nil {
			t.Fatal(err)
		}
		stmts := []string{
			"DROP TABLE draft_state",
			"CREATE TABLE draft_state (id INTEGER, mode TEXT, platforms TEXT)",
			"INSERT INTO draft_state VALUES (1, 'unified', ''), (1, 'individual', '')",
		}
		for _, stmt := range stmts {
			if _, err := db.Exec(stmt); err != nil {
				t.Fatal(err)
			}
		}
		if err := CheckSchema(db); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

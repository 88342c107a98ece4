package database

import (
	"strings"
	"testing"
	"testing/fstest"

	"wizardgo/migrations"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_add_index.sql":      {Data: []byte("CREATE INDEX i ON t(c);")},
		"002_add_column.sql":     {Data: []byte("ALTER TABLE t ADD COLUMN c int;")},
		"001_initial_schema.sql": {Data: []byte("CREATE TABLE t (id int);")},
		"README.md":              {Data: []byte("not a migration")},
		"archive/000_old.sql":    {Data: []byte("DROP TABLE t;")},
	}

	got, err := LoadMigrations(fsys)
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}

	var files []string
	for _, m := range got {
		files = append(files, m.File)
	}
	want := []string{"001_initial_schema.sql", "002_add_column.sql", "010_add_index.sql"}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", files, want)
	}
	if got[2].Version != 10 || got[0].SQL != "CREATE TABLE t (id int);" {
		t.Errorf("migrations = %+v", got)
	}
}

func TestLoadMigrationsRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name:    "unnumbered",
			fsys:    fstest.MapFS{"schema.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "NNN_name.sql",
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"001_a.sql":  {Data: []byte("SELECT 1;")},
				"0001_b.sql": {Data: []byte("SELECT 2;")},
			},
			wantErr: "share version 1",
		},
		{
			name:    "empty",
			fsys:    fstest.MapFS{"001_blank.sql": {Data: []byte("  \n")}},
			wantErr: "is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.fsys)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("LoadMigrations() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPending(t *testing.T) {
	all := []Migration{{Version: 1, File: "001_a.sql"}, {Version: 2, File: "002_b.sql"}, {Version: 3, File: "003_c.sql"}}

	pending := Pending(all, map[string]bool{"001_a.sql": true, "003_c.sql": true})
	if len(pending) != 1 || pending[0].File != "002_b.sql" {
		t.Errorf("Pending() = %+v, want only 002_b.sql", pending)
	}
	if got := Pending(all, nil); len(got) != 3 {
		t.Errorf("Pending(nil) = %d migrations, want 3", len(got))
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := LoadMigrations(migrations.FS)
	if err != nil {
		t.Fatalf("LoadMigrations(embedded) error = %v", err)
	}
	if len(got) == 0 || got[0].File != "001_initial_schema.sql" {
		t.Fatalf("embedded migrations = %+v", got)
	}
	if !strings.Contains(got[0].SQL, "CREATE TABLE IF NOT EXISTS items") {
		t.Error("initial schema does not create the items table")
	}
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	for _, d := range Drivers {
		t.Run(string(d), func(t *testing.T) {
			_, err := OpenDriver(context.Background(), d, "/nonexistent/dir/test.db")
			if err == nil {
				t.Error("expected error for invalid path, got nil")
			}
		})
	}
}

func TestOpenDriver_Unknown(t *testing.T) {
	if _, err := OpenDriver(context.Background(), Driver("postgres"), ":memory:"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    Driver
		wantErr bool
	}{
		{"", DriverCGO, false},
		{"sqlite3", DriverCGO, false},
		{" SQLite ", DriverPure, false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDriver(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDriver(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDriver(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := openTestStore(t, DriverCGO)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
	if s.Driver() != DriverCGO {
		t.Errorf("Driver() = %q", s.Driver())
	}
}

// Pragma tests

func TestPragmas(t *testing.T) {
	pragmas := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}

	for _, d := range Drivers {
		t.Run(string(d), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test.db")
			s, err := OpenDriver(context.Background(), d, path)
			if err != nil {
				t.Fatalf("OpenDriver() failed: %v", err)
			}
			defer s.Close()

			for _, p := range pragmas {
				if err := s.verifyPragma(p.name, p.want); err != nil {
					t.Error(err)
				}
			}
		})
	}
}

func TestHasRelations(t *testing.T) {
	s := openTestStore(t, DriverPure)
	if !s.HasRelations() {
		t.Error("pure driver should always carry url_query_each")
	}
}

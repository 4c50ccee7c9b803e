package database

import "testing"

func TestDSN(t *testing.T) {
	got := DSN("booking", "", "db", "3306", "studio")
	want := "booking@tcp(db:3306)/studio?charset=utf8mb4&parseTime=true&loc=Local"
	if got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
	if got := DSN("booking", "pw", "db", "3306", "studio"); got[:11] != "booking:pw@" {
		t.Fatalf("DSN with password = %q", got)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 migration files, got %d", len(entries))
	}
}

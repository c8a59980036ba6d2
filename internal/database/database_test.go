// internal/database/database_test.go
//
// Unit-tests for the connection-descriptor derivation.

package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestConnInfo_TCP(t *testing.T) {
	cfg, err := mysql.ParseDSN("app:secret@tcp(db.internal:3306)/billing?parseTime=true")
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}

	ci := ConnInfo(cfg)
	if ci.Host != "db.internal" {
		t.Fatalf("Host = %q, want db.internal", ci.Host)
	}
	if ci.Database != "billing" {
		t.Fatalf("Database = %q, want billing", ci.Database)
	}
	if ci.Socket != "" {
		t.Fatalf("Socket = %q, want empty for TCP", ci.Socket)
	}
}

func TestConnInfo_UnixSocket(t *testing.T) {
	cfg, err := mysql.ParseDSN("app:secret@unix(/run/mysqld/mysqld.sock)/billing")
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}

	ci := ConnInfo(cfg)
	if ci.Socket != "/run/mysqld/mysqld.sock" {
		t.Fatalf("Socket = %q", ci.Socket)
	}
	if ci.Host != "" {
		t.Fatalf("Host = %q, want empty for socket", ci.Host)
	}
	if ci.Database != "billing" {
		t.Fatalf("Database = %q, want billing", ci.Database)
	}
}

package migrations

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// column returns the definition line of col inside CREATE TABLE table.
func column(t *testing.T, table, col string) string {
	t.Helper()
	b, err := files.ReadFile("001_init.sql")
	if err != nil {
		t.Fatal(err)
	}
	sql := string(b)
	start := strings.Index(sql, "CREATE TABLE IF NOT EXISTS "+table+" (")
	if start < 0 {
		t.Fatalf("table %s not found", table)
	}
	body := sql[start:]
	body = body[:strings.Index(body, ");")]

	re := regexp.MustCompile(`(?m)^\s*` + col + `\s+.*$`)
	line := re.FindString(body)
	if line == "" {
		t.Fatalf("column %s.%s not found", table, col)
	}
	return line
}

func TestSchema_OptionalColumnsAreNullable(t *testing.T) {
	for _, c := range [][2]string{{"broadcasts", "title"}, {"contacts", "name"}, {"broadcasts", "link_url"}, {"broadcasts", "button_text"}} {
		if line := column(t, c[0], c[1]); strings.Contains(line, "NOT NULL") {
			t.Fatalf("%s.%s must be nullable: %q", c[0], c[1], line)
		}
	}
	if line := column(t, "broadcasts", "title"); !strings.Contains(line, "VARCHAR(100)") {
		t.Fatalf("title should be capped at 100 chars: %q", line)
	}
}

func TestSchema_RequiredColumns(t *testing.T) {
	for _, c := range [][2]string{{"broadcasts", "message"}, {"broadcasts", "status"}, {"contacts", "phone"}} {
		if line := column(t, c[0], c[1]); !strings.Contains(line, "NOT NULL") {
			t.Fatalf("%s.%s must be NOT NULL: %q", c[0], c[1], line)
		}
	}
}

func TestApply(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS tenants`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Apply(context.Background(), db); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestApply_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))

	err = Apply(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "001_init.sql") {
		t.Fatalf("want error naming the file, got %v", err)
	}
}

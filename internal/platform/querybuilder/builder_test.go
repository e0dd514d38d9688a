package querybuilder

import (
	"reflect"
	"testing"
	"time"
)

func TestSelectToSQL(t *testing.T) {
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := Select("id", "status").
		From("applications").
		Where(Eq("status", "pending"), Lt("expires_at", cutoff)).
		OrderBy("expires_at ASC").
		Limit(100).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "SELECT id, status FROM applications WHERE status = $1 AND expires_at < $2 ORDER BY expires_at ASC LIMIT 100"
	if sql != wantSQL {
		t.Fatalf("sql mismatch\n got: %s\nwant: %s", sql, wantSQL)
	}
	if !reflect.DeepEqual(args, []any{"pending", cutoff}) {
		t.Fatalf("args mismatch: %v", args)
	}
}

func TestSelectForUpdate(t *testing.T) {
	sql, _, err := Select("id").From("positions").Where(Eq("id", "pos-1")).ForUpdate().ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "SELECT id FROM positions WHERE id = $1 FOR UPDATE"; sql != want {
		t.Fatalf("sql mismatch\n got: %s\nwant: %s", sql, want)
	}
}

func TestSelectEmptyInMatchesNothing(t *testing.T) {
	sql, args, err := Select("id").From("invites").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "SELECT id FROM invites WHERE 1=0"; sql != want {
		t.Fatalf("sql mismatch: %s", sql)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestInsertToSQL(t *testing.T) {
	sql, args, err := InsertInto("squad_members").
		Columns("squad_id", "user_id", "role").
		Values("squad-1", "user-1", "captain").
		Values("squad-1", "user-2", "member").
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "INSERT INTO squad_members (squad_id, user_id, role) VALUES ($1, $2, $3), ($4, $5, $6)"
	if sql != wantSQL {
		t.Fatalf("sql mismatch\n got: %s\nwant: %s", sql, wantSQL)
	}
	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(args))
	}
}

func TestInsertRowArityMismatch(t *testing.T) {
	_, _, err := InsertInto("squads").Columns("id", "name").Values("squad-1").ToSQL()
	if err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestUpdateToSQL(t *testing.T) {
	sql, args, err := Update("positions").
		SetRaw("filled_count", "filled_count + 1").
		Set("is_open", false).
		Where(Eq("id", "pos-1"), Expr("filled_count < capacity")).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "UPDATE positions SET filled_count = filled_count + 1, is_open = $1 WHERE id = $2 AND filled_count < capacity"
	if sql != wantSQL {
		t.Fatalf("sql mismatch\n got: %s\nwant: %s", sql, wantSQL)
	}
	if !reflect.DeepEqual(args, []any{false, "pos-1"}) {
		t.Fatalf("args mismatch: %v", args)
	}
}

func TestExprPlaceholderRewrite(t *testing.T) {
	sql, args, err := Select("id").
		From("applications").
		Where(Eq("applicant_id", "user-1"), Expr("(status = ? OR status = ?)", "pending", "approved")).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "SELECT id FROM applications WHERE applicant_id = $1 AND (status = $2 OR status = $3)"
	if sql != wantSQL {
		t.Fatalf("sql mismatch\n got: %s\nwant: %s", sql, wantSQL)
	}
	if !reflect.DeepEqual(args, []any{"user-1", "pending", "approved"}) {
		t.Fatalf("args mismatch: %v", args)
	}
}

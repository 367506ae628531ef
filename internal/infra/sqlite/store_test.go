package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"home-ai/internal/application"
	"home-ai/internal/domain"
)

func TestLogRequest_Success(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO request_logs (request_id, created_at, input_type, input_text, output_text, commands, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)).
		WithArgs("req-1", "2025-06-01 10:00:00", "text", "lights on", "Turned on the light.", sqlmock.AnyArg(), int64(120)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.LogRequest(context.Background(), application.RequestRecord{
		RequestID:  "req-1",
		CreatedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		InputType:  "text",
		InputText:  "lights on",
		OutputText: "Turned on the light.",
		Commands: []domain.ExecutedCommand{{
			Command: domain.Command{Device: "light", Action: "on", Parameters: map[string]any{"room": "kitchen"}},
			Result:  domain.Envelope{Success: true, Message: "ok"},
		}},
		Duration: 120 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("LogRequest: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestLogRequest_NoCommandsStoresNull(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	mock.ExpectExec("INSERT INTO request_logs").
		WithArgs("req-2", sqlmock.AnyArg(), "text", "hi", "Hello!", nil, int64(5)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.LogRequest(context.Background(), application.RequestRecord{
		RequestID:  "req-2",
		InputType:  "text",
		InputText:  "hi",
		OutputText: "Hello!",
		Duration:   5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("LogRequest: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestLogRequest_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	mock.ExpectExec("INSERT INTO request_logs").WillReturnError(errors.New("disk full"))

	err = store.LogRequest(context.Background(), application.RequestRecord{RequestID: "req-3"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected db error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestRecentRequests_DecodesCommands(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	commands, _ := json.Marshal([]domain.ExecutedCommand{{
		Command: domain.Command{Device: "thermostat", Action: "set_temp", Parameters: map[string]any{"temperature": 23.0}},
		Result:  domain.Envelope{Success: true, Message: "Set the target temperature to 23.0°C."},
	}})

	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"request_id", "created_at", "input_type", "input_text", "output_text", "commands", "duration_ms"}).
		AddRow("req-9", created, "audio", "set it to 23", "Done.", string(commands), int64(340)).
		AddRow("req-8", created.Add(-time.Minute), "text", "hello", "Hi!", nil, int64(12))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT request_id, created_at, input_type, input_text, output_text, commands, duration_ms
		FROM request_logs
		ORDER BY id DESC
		LIMIT ?
	`)).
		WithArgs(10).
		WillReturnRows(rows)

	got, err := store.RecentRequests(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentRequests: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records: got %d, want 2", len(got))
	}

	first := got[0]
	if first.RequestID != "req-9" || first.Duration != 340*time.Millisecond {
		t.Errorf("record: %+v", first)
	}
	if len(first.Commands) != 1 || first.Commands[0].Command.Device != "thermostat" {
		t.Errorf("commands: %+v", first.Commands)
	}
	if got[1].Commands != nil {
		t.Errorf("expected nil commands, got %+v", got[1].Commands)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestRecentRequests_DefaultLimit(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	mock.ExpectQuery("SELECT request_id").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "created_at", "input_type", "input_text", "output_text", "commands", "duration_ms"}))

	if _, err := store.RecentRequests(context.Background(), 0); err != nil {
		t.Fatalf("RecentRequests: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

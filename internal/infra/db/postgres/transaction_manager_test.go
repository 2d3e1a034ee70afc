//go:build !integration

package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"fideliza/internal/domain"
)

func TestTranslateErr(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), domain.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrAlreadyExists},
		{"other pg error", &pgconn.PgError{Code: "40001"}, domain.ErrOperationFailed},
		{"exec context", domain.ErrInvalidExecContext, domain.ErrInvalidExecContext},
		{"unknown", errors.New("boom"), domain.ErrOperationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := translateErr(tc.in); !errors.Is(got, tc.want) && got != tc.want {
				t.Errorf("translateErr(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestGetExecutor_RejectsUnknownHandles(t *testing.T) {
	if _, err := getExecutor(nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument without a pool, got %v", err)
	}
	if _, err := getExecutor(nil, "not-a-tx"); !errors.Is(err, domain.ErrInvalidExecContext) {
		t.Errorf("expected ErrInvalidExecContext, got %v", err)
	}
}

func TestHashToInt64_Stable(t *testing.T) {
	a, b := hashToInt64("cs_test_123"), hashToInt64("cs_test_123")
	if a != b {
		t.Fatal("expected hash to be deterministic")
	}
	if a == hashToInt64("cs_test_124") {
		t.Error("expected different keys to hash differently")
	}
}

func TestForUpdate_OnlyInsideTransaction(t *testing.T) {
	if got := forUpdate("SELECT 1", nil); got != "SELECT 1" {
		t.Errorf("expected no lock clause outside a transaction, got %q", got)
	}
}

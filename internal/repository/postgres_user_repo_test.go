package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// 一意制約違反のpqエラーがErrDuplicateEmailに変換されることを検証
func TestMapCreateError_UniqueViolation(t *testing.T) {
	pqErr := &pq.Error{Code: "23505"}

	mapped := mapCreateError(pqErr)
	if !errors.Is(mapped, ErrDuplicateEmail) {
		t.Errorf("mapCreateError(23505) = %v, want ErrDuplicateEmail", mapped)
	}
}

// 一意制約違反以外のpqエラーはそのまま返されることを検証
func TestMapCreateError_OtherErrors(t *testing.T) {
	pqErr := &pq.Error{Code: "40001"} // serialization_failure
	if errors.Is(mapCreateError(pqErr), ErrDuplicateEmail) {
		t.Error("non-unique-violation pq error should not map to ErrDuplicateEmail")
	}

	plain := errors.New("connection reset")
	if errors.Is(mapCreateError(plain), ErrDuplicateEmail) {
		t.Error("plain error should not map to ErrDuplicateEmail")
	}
}

package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/mailauth/internal/model"
)

// PostgresPendingRepoはPendingVerificationRepositoryインターフェースを満たすことを検証
func TestPostgresPendingRepo_ImplementsInterface(t *testing.T) {
	var _ PendingVerificationRepository = (*PostgresPendingRepo)(nil)
}

// NewPostgresPendingRepoが正しく初期化されることを検証
func TestNewPostgresPendingRepo_Initializes(t *testing.T) {
	repo := NewPostgresPendingRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// 有効期限判定は検証時の遅延評価であることの期待動作
func TestPendingVerification_ExpiryIsLazy_Concept(t *testing.T) {
	// 期限切れレコードはストアに残っていてもよく、
	// 検証時のIsExpiredチェックで拒否される。
	pending := &model.PendingVerification{
		Email:     "taro@example.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	if !pending.IsExpired(time.Now()) {
		t.Error("expected pending verification to be expired")
	}
}

// 候補カラムがNULLの場合にCandidateがnilになることの検証
func TestPendingVerification_CandidateIsOptional_Concept(t *testing.T) {
	pending := &model.PendingVerification{
		Email:     "taro@example.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}

	if pending.Candidate != nil {
		t.Error("candidate should be nil when no signup data is attached")
	}
}

// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/mailauth/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
// 同一メールアドレスに対する並行コミットの敗者側で返される。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが既に存在する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// PendingVerificationRepository は検証待ちレコードの永続化インターフェース。
// メールアドレスごとに最大1件の制約をストア側で保証する。
type PendingVerificationRepository interface {
	// Upsert は検証待ちレコードを冪等にUPSERTする。
	// 同一メールアドレスの既存レコード（コード・候補含む）は丸ごと置き換える。
	Upsert(ctx context.Context, pending *model.PendingVerification) error

	// FindByEmail は指定メールアドレスの検証待ちレコードを取得する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.PendingVerification, error)

	// ConsumeByEmailAndCode は(email, code)完全一致のレコードを原子的に削除して返す。
	// 一致するレコードがない場合はnilを返し、何も削除しない。
	// 削除と取得が単一操作のため、同一コードの二重検証は片方しか成功しない。
	ConsumeByEmailAndCode(ctx context.Context, email, code string) (*model.PendingVerification, error)

	// UpdateCode は既存レコードのコードと有効期限のみを原子的に更新して返す。
	// 候補データは保持される。レコードが存在しない場合はnilを返す。
	UpdateCode(ctx context.Context, email, code string, expiresAt time.Time) (*model.PendingVerification, error)
}

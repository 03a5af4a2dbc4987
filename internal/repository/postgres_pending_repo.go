package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/mailauth/internal/model"
)

// PostgresPendingRepo はPostgreSQLを使用した検証待ちレコードリポジトリ。
// emailを主キーとし、メールアドレスごとに最大1件の制約をスキーマで保証する。
type PostgresPendingRepo struct {
	db *sql.DB
}

// NewPostgresPendingRepo はPostgresPendingRepoを生成する。
func NewPostgresPendingRepo(db *sql.DB) *PostgresPendingRepo {
	return &PostgresPendingRepo{db: db}
}

// Upsert は検証待ちレコードを冪等にUPSERTする。
// ON CONFLICTにより同一メールアドレスの既存レコードを丸ごと置き換えるため、
// 二重サインアップは新しいコード・候補で前のレコードを上書きする（意図された動作）。
func (r *PostgresPendingRepo) Upsert(ctx context.Context, pending *model.PendingVerification) error {
	var name, candidateEmail, passwordHash sql.NullString
	if pending.Candidate != nil {
		name = sql.NullString{String: pending.Candidate.Name, Valid: true}
		candidateEmail = sql.NullString{String: pending.Candidate.Email, Valid: true}
		passwordHash = sql.NullString{String: pending.Candidate.PasswordHash, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_verifications
		   (email, code, expires_at, candidate_name, candidate_email, candidate_password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		 ON CONFLICT (email) DO UPDATE SET
		   code = EXCLUDED.code,
		   expires_at = EXCLUDED.expires_at,
		   candidate_name = EXCLUDED.candidate_name,
		   candidate_email = EXCLUDED.candidate_email,
		   candidate_password_hash = EXCLUDED.candidate_password_hash,
		   updated_at = now()`,
		pending.Email, pending.Code, pending.ExpiresAt, name, candidateEmail, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pending verification: %w", err)
	}

	return nil
}

// FindByEmail は指定メールアドレスの検証待ちレコードを取得する。見つからない場合はnilを返す。
func (r *PostgresPendingRepo) FindByEmail(ctx context.Context, email string) (*model.PendingVerification, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT email, code, expires_at, candidate_name, candidate_email, candidate_password_hash, created_at, updated_at
		 FROM pending_verifications WHERE email = $1`,
		email,
	)

	pending, err := scanPending(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending verification: %w", err)
	}

	return pending, nil
}

// ConsumeByEmailAndCode は(email, code)完全一致のレコードを原子的に削除して返す。
// DELETE ... RETURNINGによる単一操作のため、並行する検証のうち
// レコードを取得できるのは1リクエストのみ（コードの実質単回使用を保証）。
func (r *PostgresPendingRepo) ConsumeByEmailAndCode(ctx context.Context, email, code string) (*model.PendingVerification, error) {
	row := r.db.QueryRowContext(ctx,
		`DELETE FROM pending_verifications WHERE email = $1 AND code = $2
		 RETURNING email, code, expires_at, candidate_name, candidate_email, candidate_password_hash, created_at, updated_at`,
		email, code,
	)

	pending, err := scanPending(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume pending verification: %w", err)
	}

	return pending, nil
}

// UpdateCode は既存レコードのコードと有効期限のみを更新して返す。
// 候補カラムには触れないため、再送信しても候補データは保持される。
// レコードが存在しない場合はnilを返す。
func (r *PostgresPendingRepo) UpdateCode(ctx context.Context, email, code string, expiresAt time.Time) (*model.PendingVerification, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE pending_verifications SET code = $2, expires_at = $3, updated_at = now()
		 WHERE email = $1
		 RETURNING email, code, expires_at, candidate_name, candidate_email, candidate_password_hash, created_at, updated_at`,
		email, code, expiresAt,
	)

	pending, err := scanPending(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update pending verification code: %w", err)
	}

	return pending, nil
}

// scanPending は1行をPendingVerificationにスキャンする。
// 候補カラムがすべてNULLの場合はCandidateをnilにする。
func scanPending(row *sql.Row) (*model.PendingVerification, error) {
	pending := &model.PendingVerification{}
	var name, candidateEmail, passwordHash sql.NullString

	err := row.Scan(
		&pending.Email, &pending.Code, &pending.ExpiresAt,
		&name, &candidateEmail, &passwordHash,
		&pending.CreatedAt, &pending.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if name.Valid {
		pending.Candidate = &model.Candidate{
			Name:         name.String,
			Email:        candidateEmail.String,
			PasswordHash: passwordHash.String,
		}
	}

	return pending, nil
}

// compile-time interface check
var _ PendingVerificationRepository = (*PostgresPendingRepo)(nil)

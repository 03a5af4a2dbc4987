// Package model はドメインモデルを定義する。
package model

import "time"

// User は登録済みユーザーを表す。
// 検証ステートマシンのコミットステップでのみ作成されるため、
// IsVerified=false のUserレコードは存在しない。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Candidate は未コミットのユーザー候補を表す。
// PendingVerificationに添付され、検証成功時にUserレコードの種になる。
type Candidate struct {
	Name         string
	Email        string
	PasswordHash string
}

// PendingVerification は進行中のサインアップを表す永続レコード。
// メールアドレスごとに最大1件（upsertセマンティクス）。
// 検証成功・検証済みユーザー発覚・期限切れ検証試行のいずれかで削除される。
type PendingVerification struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	Candidate *Candidate // 省略可: サインアップ経由で作成された場合のみ存在する
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired は有効期限が指定時刻より過去かどうかを返す。
func (p *PendingVerification) IsExpired(now time.Time) bool {
	return p.ExpiresAt.Before(now)
}

// Package security はパスワードの一方向ハッシュ化を提供する。
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost はbcryptのコストファクタ。
const passwordHashCost = 12

// HashPassword はパスワードのソルト付き一方向ハッシュを生成する。
// 平文パスワードは保存もログ出力もしないこと。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword はハッシュと平文パスワードを照合する。
// 一致する場合のみtrueを返す。
func ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

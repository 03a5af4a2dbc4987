package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// otpDigits はOTPの桁数。
	otpDigits = 6
	// otpTTL はOTPの有効期間（固定ポリシー）。
	otpTTL = 10 * time.Minute
)

var otpMax = big.NewInt(1_000_000)

// GenerateOTP は6桁の数字OTPを生成する。
// 時間をまたいだ一意性は保証しない（キーは(email, code)の組であるため
// 異なるメールアドレス間の衝突は許容される）。
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}

// OTPExpiryFor は指定時刻を起点としたOTPの有効期限を返す。
func OTPExpiryFor(now time.Time) time.Time {
	return now.Add(otpTTL)
}

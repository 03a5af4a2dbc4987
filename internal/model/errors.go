// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeEmailRegistered    = "EMAIL_ALREADY_REGISTERED"
	ErrCodeOTPInvalid         = "OTP_INVALID"
	ErrCodeOTPExpired         = "OTP_EXPIRED"
	ErrCodeAlreadyVerified    = "ALREADY_VERIFIED"
	ErrCodeNoSignupInProgress = "NO_SIGNUP_IN_PROGRESS"
	ErrCodeSignupDataMissing  = "SIGNUP_DATA_MISSING"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が正しくありません: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailRegisteredError は登録済みメールアドレスでのサインアップエラーを生成する。
func NewEmailRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailRegistered,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスで登録してください。",
	}
}

// NewOTPInvalidError は認証コード不一致エラーを生成する。
// メールアドレス未知とコード誤りを区別しない（アカウント列挙対策）。
func NewOTPInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeOTPInvalid,
		Message:  "認証コードまたはメールアドレスが正しくありません。",
		Category: "auth",
		Action:   "メールに記載された最新の認証コードを確認してください。",
	}
}

// NewOTPExpiredError は認証コード期限切れエラーを生成する。
func NewOTPExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeOTPExpired,
		Message:  "認証コードの有効期限が切れています。",
		Category: "auth",
		Action:   "認証コードの再送信をリクエストしてください。",
	}
}

// NewAlreadyVerifiedError は検証済みユーザーに対する操作エラーを生成する。
func NewAlreadyVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyVerified,
		Message:  "このメールアドレスは既に認証済みです。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewNoSignupInProgressError は進行中サインアップ不在エラーを生成する。
func NewNoSignupInProgressError() *APIError {
	return &APIError{
		Code:     ErrCodeNoSignupInProgress,
		Message:  "進行中のサインアップがありません。",
		Category: "auth",
		Action:   "サインアップからやり直してください。",
	}
}

// NewSignupDataMissingError は候補データ欠落エラーを生成する。
// upsert契約が守られていれば到達しないはずの整合性エラー。
func NewSignupDataMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeSignupDataMissing,
		Message:  "サインアップ情報が見つかりません。",
		Category: "auth",
		Action:   "お手数ですが、サインアップからやり直してください。",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレス不明とパスワード不一致で同一メッセージを返す（アカウント列挙対策）。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// Package auth はサインアップ・OTP検証・ログインのビジネスロジックを提供する。
//
// メールアドレスごとの状態遷移:
//
//	[レコードなし] --BeginSignup--> [検証待ち] --VerifyOTP(成功)--> [検証済み]（終端）
//	[検証待ち] --ResendOTP--> [検証待ち（新コード）]
//	[検証済み] --BeginSignup/VerifyOTP/ResendOTP--> エラー
//
// 検証済み状態はUserレコードの存在で表現し、ステータス列は持たない。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/mailauth/internal/model"
	"github.com/hitoshi/mailauth/internal/repository"
	"github.com/hitoshi/mailauth/internal/security"
)

// emailPattern は基本的なメールアドレス形式の検証パターン。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Notifier はOTP・ウェルカムメッセージの配信契約。
// 配信はレスポンス前に待機するが、データ整合性のクリティカルパスには乗らない。
type Notifier interface {
	// DeliverOTP は認証コードメールを配信する。
	DeliverOTP(ctx context.Context, to, name, code string) error
	// DeliverWelcome は登録完了メールを配信する。
	DeliverWelcome(ctx context.Context, to, name string) error
}

// TokenIssuer は署名付きベアラートークンの発行契約。
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// MetricsCollector は認証フローのメトリクス収集インターフェース。
type MetricsCollector interface {
	RecordSignupStarted()
	RecordOTPResent()
	RecordUserVerified()
	RecordVerifyFailure(code string)
	RecordLoginSuccess()
	RecordLoginFailure()
}

// AuthResult はトークン発行を伴う操作の結果。
type AuthResult struct {
	Token string
	User  *model.User
}

// Service はサインアップ検証ステートマシンとログインを提供する。
type Service struct {
	userRepo    repository.UserRepository
	pendingRepo repository.PendingVerificationRepository
	notifier    Notifier
	tokens      TokenIssuer
	metrics     MetricsCollector
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	userRepo repository.UserRepository,
	pendingRepo repository.PendingVerificationRepository,
	notifier Notifier,
	tokens TokenIssuer,
	metrics MetricsCollector,
) *Service {
	return &Service{
		userRepo:    userRepo,
		pendingRepo: pendingRepo,
		notifier:    notifier,
		tokens:      tokens,
		metrics:     metrics,
	}
}

// BeginSignup はサインアップを開始し、OTPをメール配信する。
// 同一メールアドレスの未検証サインアップが既に進行中の場合、
// 検証待ちレコードを新しいコード・候補で黙って上書きする（意図されたリトライ動作）。
// OTPメールの配信を待ってから成功を返すため、「送信しました」の応答は
// 少なくとも配信試行後にしか返らない。
func (s *Service) BeginSignup(ctx context.Context, name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return model.NewValidationError("名前・メールアドレス・パスワードは必須です")
	}
	if !emailPattern.MatchString(email) {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user != nil {
		return model.NewEmailRegisteredError()
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	pending := &model.PendingVerification{
		Email:     email,
		Code:      code,
		ExpiresAt: OTPExpiryFor(time.Now()),
		Candidate: &model.Candidate{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
		},
	}

	if err := s.pendingRepo.Upsert(ctx, pending); err != nil {
		return fmt.Errorf("failed to upsert pending verification: %w", err)
	}

	if err := s.notifier.DeliverOTP(ctx, email, name, code); err != nil {
		return fmt.Errorf("failed to deliver otp email: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSignupStarted()
	}

	slog.Info("signup started",
		slog.String("email", email),
	)

	return nil
}

// VerifyOTP はOTPを検証し、候補からユーザーをコミットしてトークンを発行する。
//
// 検証待ちレコードは(email, code)完全一致の原子的な削除で取得するため、
// 同じコードでの2回目の呼び出しは必ず「不一致」パスに落ちる（実質単回使用）。
// ウェルカムメールはコミット後のベストエフォート配信で、失敗してもコミットは
// ロールバックしない。
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	if email == "" || code == "" {
		return nil, model.NewValidationError("メールアドレスと認証コードは必須です")
	}
	if !emailPattern.MatchString(email) {
		return nil, model.NewValidationError("メールアドレスの形式が正しくありません")
	}

	pending, err := s.pendingRepo.ConsumeByEmailAndCode(ctx, email, code)
	if err != nil {
		return nil, fmt.Errorf("failed to consume pending verification: %w", err)
	}
	if pending == nil {
		// コード誤りとメールアドレス未知をひとつのエラーに束ねる（列挙対策）
		s.recordVerifyFailure(model.ErrCodeOTPInvalid)
		return nil, model.NewOTPInvalidError()
	}

	if pending.IsExpired(time.Now()) {
		// レコードは消費済み。リトライ経路はなく、サインアップからやり直し。
		s.recordVerifyFailure(model.ErrCodeOTPExpired)
		return nil, model.NewOTPExpiredError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user != nil {
		// 別の検証や再送信が先に完了した競合ケース
		s.recordVerifyFailure(model.ErrCodeAlreadyVerified)
		return nil, model.NewAlreadyVerifiedError()
	}

	if pending.Candidate == nil {
		s.recordVerifyFailure(model.ErrCodeSignupDataMissing)
		return nil, model.NewSignupDataMissingError()
	}

	now := time.Now()
	newUser := &model.User{
		ID:           uuid.New().String(),
		Email:        pending.Candidate.Email,
		Name:         pending.Candidate.Name,
		PasswordHash: pending.Candidate.PasswordHash,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.recordVerifyFailure(model.ErrCodeAlreadyVerified)
			return nil, model.NewAlreadyVerifiedError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokenStr, err := s.tokens.Issue(newUser.ID, newUser.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	// ウェルカムメールはベストエフォート。失敗はログのみ。
	if err := s.notifier.DeliverWelcome(ctx, newUser.Email, newUser.Name); err != nil {
		slog.Error("failed to deliver welcome email",
			slog.String("email", newUser.Email),
			slog.String("error", err.Error()),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordUserVerified()
	}

	slog.Info("new user verified",
		slog.String("user_id", newUser.ID),
		slog.String("email", newUser.Email),
	)

	return &AuthResult{Token: tokenStr, User: newUser}, nil
}

// ResendOTP は進行中のサインアップに新しいOTPを発行して再送信する。
// 候補データは再生成せず保持する。開始されていないフローを再送信で
// 復活させることはできない。
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	if email == "" {
		return model.NewValidationError("メールアドレスは必須です")
	}
	if !emailPattern.MatchString(email) {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user != nil {
		return model.NewAlreadyVerifiedError()
	}

	code, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	// 単一のUPDATE ... RETURNINGで既存レコードだけを書き換える。
	// 並行するBeginSignupのupsertとの更新消失を防ぐ。
	pending, err := s.pendingRepo.UpdateCode(ctx, email, code, OTPExpiryFor(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to update pending verification: %w", err)
	}
	if pending == nil || pending.Candidate == nil {
		return model.NewNoSignupInProgressError()
	}

	if err := s.notifier.DeliverOTP(ctx, email, pending.Candidate.Name, code); err != nil {
		return fmt.Errorf("failed to deliver otp email: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOTPResent()
	}

	slog.Info("otp resent",
		slog.String("email", email),
	)

	return nil
}

// Login はメールアドレスとパスワードを照合し、トークンを発行する。
// ユーザー不在とパスワード不一致は同一のエラーを返す（列挙対策）。
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, model.NewValidationError("メールアドレスとパスワードは必須です")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !security.ComparePassword(user.PasswordHash, password) {
		if s.metrics != nil {
			s.metrics.RecordLoginFailure()
		}
		return nil, model.NewInvalidCredentialsError()
	}

	tokenStr, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &AuthResult{Token: tokenStr, User: user}, nil
}

// GetCurrentUser はユーザーIDから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

func (s *Service) recordVerifyFailure(code string) {
	if s.metrics != nil {
		s.metrics.RecordVerifyFailure(code)
	}
}

// Package mailer はSMTP経由の通知メール配信とテンプレート描画を提供する。
package mailer

import (
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/gomail.v2"
)

// Config はSMTP接続とメール本文の設定。
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	LogoURL  string // メールに埋め込むロゴ画像のURL
}

// DeliveryRecorder はメール配信結果のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type DeliveryRecorder interface {
	RecordEmailSent(kind string)
	RecordEmailFailure()
}

// Mailer はSMTP経由でメールを配信する。
type Mailer struct {
	config   Config
	dialer   *gomail.Dialer
	policy   *bluemonday.Policy
	recorder DeliveryRecorder
}

// NewMailer はMailerを生成する。recorderはnilを許容する。
// ユーザー入力由来の名前はテンプレート描画前にStrictPolicyでタグを除去する。
func NewMailer(cfg Config, recorder DeliveryRecorder) *Mailer {
	return &Mailer{
		config:   cfg,
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		policy:   bluemonday.StrictPolicy(),
		recorder: recorder,
	}
}

// Deliver は単一のHTMLメールを送信する。
// SMTPダイヤルと送信はブロッキングで、呼び出し側はレスポンス前に完了を待つ。
func (m *Mailer) Deliver(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before email delivery: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// DeliverOTP は認証コードメールを配信する。
func (m *Mailer) DeliverOTP(ctx context.Context, to, name, code string) error {
	body, err := RenderOTPEmail(m.policy.Sanitize(name), code, m.config.LogoURL)
	if err != nil {
		return fmt.Errorf("failed to render otp email: %w", err)
	}
	return m.deliverWithRecord(ctx, to, "認証コードのお知らせ", body, "otp")
}

// DeliverWelcome は登録完了メールを配信する。
func (m *Mailer) DeliverWelcome(ctx context.Context, to, name string) error {
	body, err := RenderWelcomeEmail(m.policy.Sanitize(name), m.config.LogoURL)
	if err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}
	return m.deliverWithRecord(ctx, to, "登録が完了しました", body, "welcome")
}

// deliverWithRecord は配信結果をメトリクスに記録しつつDeliverへ委譲する。
func (m *Mailer) deliverWithRecord(ctx context.Context, to, subject, body, kind string) error {
	err := m.Deliver(ctx, to, subject, body)
	if m.recorder != nil {
		if err != nil {
			m.recorder.RecordEmailFailure()
		} else {
			m.recorder.RecordEmailSent(kind)
		}
	}
	return err
}

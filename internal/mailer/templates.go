package mailer

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// otpEmailTemplate は認証コードメールのHTMLテンプレート。
var otpEmailTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
  <body style="background:#f4f4f7;font-family:Arial,sans-serif;">
    <div style="background:#fff;margin:40px auto;padding:32px;max-width:480px;border-radius:8px;box-shadow:0 2px 8px rgba(0,0,0,0.05);">
      <img src="{{.LogoURL}}" alt="Logo" width="200" height="60" style="display:block;margin:0 auto 24px;" />
      <p style="font-size:20px;font-weight:bold;margin-bottom:16px;">{{.Name}} さん、こんにちは。</p>
      <p style="font-size:16px;margin-bottom:16px;">メールアドレス確認用のワンタイムパスワード（OTP）です:</p>
      <p style="font-size:32px;font-weight:bold;color:#2563eb;letter-spacing:4px;margin-bottom:24px;">{{.Code}}</p>
      <p style="font-size:14px;color:#555;">
        このコードの有効期限は10分です。<br />
        心当たりがない場合は、このメールを無視してください。
      </p>
    </div>
  </body>
</html>
`))

// welcomeEmailTemplate は登録完了メールのHTMLテンプレート。
var welcomeEmailTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
  <body style="background:#f4f4f7;font-family:Arial,sans-serif;">
    <div style="background:#fff;margin:40px auto;padding:32px;max-width:480px;border-radius:8px;box-shadow:0 2px 8px rgba(0,0,0,0.05);">
      <img src="{{.LogoURL}}" alt="Logo" width="200" height="60" style="display:block;margin:0 auto 24px;" />
      <p style="font-size:24px;font-weight:bold;margin-bottom:16px;color:#2563eb;">{{.Name}} さん、ようこそ！</p>
      <p style="font-size:16px;margin-bottom:16px;">アカウントの認証が完了しました。</p>
      <p style="font-size:16px;margin-bottom:24px;">ログインしてサービスの利用を開始できます。</p>
      <p style="font-size:14px;color:#555;">ご不明な点があれば、このメールに返信してお問い合わせください。</p>
      <p style="font-size:14px;color:#aaa;margin-top:32px;text-align:center;">&copy; {{.Year}} All rights reserved.</p>
    </div>
  </body>
</html>
`))

// RenderOTPEmail は認証コードメールのHTML本文を描画する。
func RenderOTPEmail(name, code, logoURL string) (string, error) {
	var b strings.Builder
	err := otpEmailTemplate.Execute(&b, struct {
		Name    string
		Code    string
		LogoURL string
	}{Name: name, Code: code, LogoURL: logoURL})
	if err != nil {
		return "", fmt.Errorf("failed to execute otp template: %w", err)
	}
	return b.String(), nil
}

// RenderWelcomeEmail は登録完了メールのHTML本文を描画する。
func RenderWelcomeEmail(name, logoURL string) (string, error) {
	var b strings.Builder
	err := welcomeEmailTemplate.Execute(&b, struct {
		Name    string
		LogoURL string
		Year    int
	}{Name: name, LogoURL: logoURL, Year: time.Now().Year()})
	if err != nil {
		return "", fmt.Errorf("failed to execute welcome template: %w", err)
	}
	return b.String(), nil
}

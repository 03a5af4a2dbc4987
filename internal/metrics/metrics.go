// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は認証フローのPrometheusメトリクスを収集する実装。
// auth.MetricsCollectorインターフェースを満たす。
type Collector struct {
	signupStarted prometheus.Counter
	otpResent     prometheus.Counter
	userVerified  prometheus.Counter
	verifyFail    *prometheus.CounterVec
	loginSuccess  prometheus.Counter
	loginFail     prometheus.Counter
	emailSent     *prometheus.CounterVec
	emailFail     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signupStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailauth_signup_started_total",
			Help: "開始されたサインアップの合計数",
		}),
		otpResent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailauth_otp_resent_total",
			Help: "再送信されたOTPの合計数",
		}),
		userVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailauth_user_verified_total",
			Help: "検証が完了しコミットされたユーザーの合計数",
		}),
		verifyFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailauth_verify_fail_total",
			Help: "OTP検証失敗のエラーコード別合計数",
		}, []string{"code"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailauth_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailauth_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		emailSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailauth_email_sent_total",
			Help: "送信されたメールの種類別合計数",
		}, []string{"kind"}),
		emailFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailauth_email_fail_total",
			Help: "メール送信失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.signupStarted,
		c.otpResent,
		c.userVerified,
		c.verifyFail,
		c.loginSuccess,
		c.loginFail,
		c.emailSent,
		c.emailFail,
	)

	return c
}

// RecordSignupStarted はサインアップ開始を記録する。
func (c *Collector) RecordSignupStarted() {
	c.signupStarted.Inc()
}

// RecordOTPResent はOTP再送信を記録する。
func (c *Collector) RecordOTPResent() {
	c.otpResent.Inc()
}

// RecordUserVerified はユーザー検証完了を記録する。
func (c *Collector) RecordUserVerified() {
	c.userVerified.Inc()
}

// RecordVerifyFailure はOTP検証失敗をエラーコード別に記録する。
func (c *Collector) RecordVerifyFailure(code string) {
	c.verifyFail.WithLabelValues(code).Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordEmailSent は送信メールを種類別に記録する。
func (c *Collector) RecordEmailSent(kind string) {
	c.emailSent.WithLabelValues(kind).Inc()
}

// RecordEmailFailure はメール送信失敗を記録する。
func (c *Collector) RecordEmailFailure() {
	c.emailFail.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターの/metricsにマウントする。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

// TestRecordSignupStarted_IncrementsCounter はサインアップ開始カウンタが増加することを検証する。
func TestRecordSignupStarted_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignupStarted()
	c.RecordSignupStarted()

	if val := counterValue(t, reg, "mailauth_signup_started_total"); val != 2 {
		t.Errorf("signup_started_total = %v, want 2", val)
	}
}

// TestRecordVerifyFailure_LabelsByCode はOTP検証失敗がエラーコード別に記録されることを検証する。
func TestRecordVerifyFailure_LabelsByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordVerifyFailure("OTP_INVALID")
	c.RecordVerifyFailure("OTP_INVALID")
	c.RecordVerifyFailure("OTP_EXPIRED")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "mailauth_verify_fail_total" {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 2 {
			t.Fatalf("expected 2 labeled series, got %d", len(mf.GetMetric()))
		}
		for _, m := range mf.GetMetric() {
			code := m.GetLabel()[0].GetValue()
			val := m.GetCounter().GetValue()
			switch code {
			case "OTP_INVALID":
				if val != 2 {
					t.Errorf("verify_fail_total{code=OTP_INVALID} = %v, want 2", val)
				}
			case "OTP_EXPIRED":
				if val != 1 {
					t.Errorf("verify_fail_total{code=OTP_EXPIRED} = %v, want 1", val)
				}
			default:
				t.Errorf("unexpected label %q", code)
			}
		}
	}
	if !found {
		t.Error("mailauth_verify_fail_total metric not found")
	}
}

// TestRecordLoginCounters はログイン成功・失敗カウンタが独立して増加することを検証する。
func TestRecordLoginCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginSuccess()
	c.RecordLoginFailure()
	c.RecordLoginFailure()

	if val := counterValue(t, reg, "mailauth_login_success_total"); val != 1 {
		t.Errorf("login_success_total = %v, want 1", val)
	}
	if val := counterValue(t, reg, "mailauth_login_fail_total"); val != 2 {
		t.Errorf("login_fail_total = %v, want 2", val)
	}
}

// TestRecordEmailSent_LabelsByKind はメール送信カウンタが種類別に増加することを検証する。
func TestRecordEmailSent_LabelsByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordEmailSent("otp")
	c.RecordEmailSent("otp")
	c.RecordEmailSent("welcome")
	c.RecordEmailFailure()

	if val := counterValue(t, reg, "mailauth_email_sent_total"); val != 3 {
		t.Errorf("email_sent_total = %v, want 3", val)
	}
	if val := counterValue(t, reg, "mailauth_email_fail_total"); val != 1 {
		t.Errorf("email_fail_total = %v, want 1", val)
	}
}

// TestRecordUserVerifiedAndOTPResent は検証完了・再送信カウンタを検証する。
func TestRecordUserVerifiedAndOTPResent(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUserVerified()
	c.RecordOTPResent()
	c.RecordOTPResent()
	c.RecordOTPResent()

	if val := counterValue(t, reg, "mailauth_user_verified_total"); val != 1 {
		t.Errorf("user_verified_total = %v, want 1", val)
	}
	if val := counterValue(t, reg, "mailauth_otp_resent_total"); val != 3 {
		t.Errorf("otp_resent_total = %v, want 3", val)
	}
}

// TestHandler_ServesPrometheusFormat は/metricsがPrometheus形式で応答することを検証する。
func TestHandler_ServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordSignupStarted()

	handler := Handler(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "mailauth_signup_started_total 1") {
		t.Errorf("metrics output should contain signup counter, got: %s", body)
	}
}

package mailer

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestBuildResetEmail(t *testing.T) {
	e := BuildResetEmail(ResetEmailData{SiteName: "CivicKey", Code: "042917", ExpiresIn: "30 minutes"})

	if !strings.Contains(e.Subject, "CivicKey") {
		t.Errorf("subject = %q", e.Subject)
	}
	for _, body := range []string{e.TextBody, e.HTMLBody} {
		if !strings.Contains(body, "042917") || !strings.Contains(body, "30 minutes") {
			t.Errorf("body missing code or expiry: %q", body)
		}
	}
	if e.To != "" {
		t.Errorf("To = %q, want caller to set it", e.To)
	}
}

func TestSMTPSender_BuildMultipart(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{From: "noreply@civickey.ca", FromName: "CivicKey"})
	msg, err := s.build(Email{To: "clerk@hudson.ca", Subject: "Réinitialisation", TextBody: "plain", HTMLBody: "<p>html</p>"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := string(msg)
	for _, want := range []string{
		"To: clerk@hudson.ca\r\n",
		"multipart/alternative",
		"text/plain; charset=UTF-8",
		"text/html; charset=UTF-8",
		"=?utf-8?q?",
		"<p>html</p>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestLogSender(t *testing.T) {
	if err := (LogSender{Log: zap.NewNop()}).Send(context.Background(), Email{To: "a@b.ca"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

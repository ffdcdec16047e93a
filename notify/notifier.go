// Package notify sends subscription lifecycle emails. Sending is always best
// effort: a failed or skipped notification never changes a payment outcome.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v3"
	"github.com/rs/zerolog/log"
)

// Sender delivers subscription notifications. Services depend on this
// interface, not on the Resend implementation.
type Sender interface {
	SendSubscriptionActive(ctx context.Context, toEmail, subscriptionID string, periodEnd time.Time) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
}

// NewResendSender creates a Sender backed by the Resend API.
func NewResendSender(apiKey, fromEmail string) Sender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}
}

func (s *resendSender) SendSubscriptionActive(ctx context.Context, toEmail, subscriptionID string, periodEnd time.Time) error {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;font-family:Arial,Helvetica,sans-serif;background-color:#faf5ff;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#1f2937;font-size:24px;margin:0 0 8px 0;">Tablemate</h1>
              <h2 style="color:#1f2937;font-size:18px;margin:0 0 24px 0;">Your subscription is active</h2>
              <p style="color:#4b5563;font-size:15px;line-height:1.6;margin:0 0 16px 0;">
                Payment successful! Thank you. You can now join dinners and meet new people every week.
              </p>
              <p style="color:#6b7280;font-size:13px;margin:0;">
                Subscription %s &middot; renews %s
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, subscriptionID, periodEnd.Format("2 Jan 2006"))

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{toEmail},
		Subject: "Your Tablemate subscription is active",
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send subscription email: %w", err)
	}
	return nil
}

type noopSender struct{}

// NewNoopSender returns a Sender that only logs. Used when no API key is
// configured.
func NewNoopSender() Sender {
	return noopSender{}
}

func (noopSender) SendSubscriptionActive(_ context.Context, toEmail, subscriptionID string, _ time.Time) error {
	log.Debug().Str("to", toEmail).Str("subscription_id", subscriptionID).Msg("email sending disabled, skipping subscription notification")
	return nil
}

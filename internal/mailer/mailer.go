// Package mailer delivers password-reset emails through Twilio Verify.
package mailer

import (
	"context"
	"os"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

// ResetMailer sends a password-reset email to an address. Delivery detail
// is the vendor's; callers only learn sent vs failed.
type ResetMailer interface {
	SendReset(ctx context.Context, email string) error
}

// TwilioVerify starts an email-channel verification through a Twilio
// Verify service configured with an email template.
type TwilioVerify struct {
	client     *twilio.RestClient
	serviceSID string
}

func NewTwilioVerify() *TwilioVerify {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: os.Getenv("TWILIO_ACCOUNT_SID"),
		Password: os.Getenv("TWILIO_AUTH_TOKEN"),
	})
	return &TwilioVerify{
		client:     client,
		serviceSID: os.Getenv("TWILIO_VERIFY_SERVICE_SID"),
	}
}

func (m *TwilioVerify) SendReset(_ context.Context, email string) error {
	params := &verify.CreateVerificationParams{}
	params.SetTo(email)
	params.SetChannel("email")

	_, err := m.client.VerifyV2.CreateVerification(m.serviceSID, params)
	return err
}

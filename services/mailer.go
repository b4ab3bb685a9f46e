package services

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

var mailLog = zerolog.New(os.Stderr).With().Timestamp().Str("component", "mailer").Logger()

func SendEmail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")

	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 587
	}

	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "noreply@mayspace.app"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, port, user, pass)

	if err := d.DialAndSend(m); err != nil {
		mailLog.Warn().Err(err).Str("to", to).Msg("could not send email")
		return err
	}

	return nil
}

// SendPasswordResetOTP delivers the reset code. Delivery failures are logged
// by SendEmail; the caller decides whether they matter.
func SendPasswordResetOTP(to, code string) error {
	body := `<h1>Password Reset Request</h1>
		<p>Your May Space password reset code is:</p>
		<h2>` + code + `</h2>
		<p>The code expires in 10 minutes and can be used once.
		If you did not request this, please ignore this email.</p>`

	return SendEmail(to, "Your May Space password reset code", body)
}

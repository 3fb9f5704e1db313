package services

import (
	"fmt"
	"townsquare-api/config"

	"gopkg.in/gomail.v2"
)

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &EmailService{
		config: cfg,
		dialer: dialer,
	}
}

// SendRequestAcceptedEmail notifies a user that their friend request was
// accepted. Best-effort: callers log failures and move on.
func (es *EmailService) SendRequestAcceptedEmail(toEmail, toName, friendName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "TownSquare - Friend Request Accepted")

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Friend Request Accepted</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #2e7d32; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🏘️ TownSquare</h1>
            <p>You have a new friend</p>
        </div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p><strong>%s</strong> accepted your friend request on TownSquare.</p>
            <p>You can now see each other's posts and send messages.</p>
            <p><strong>The TownSquare Team</strong></p>
        </div>
        <div class="footer">
            <p>© 2026 TownSquare. All rights reserved.</p>
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, toName, friendName)

	m.SetBody("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

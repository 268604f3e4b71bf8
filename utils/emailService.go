package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"irac/config"
)

// SendEmail sends an HTML email through the configured SMTP account
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: IRAC <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// getEmailTemplate wraps body content in the platform layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A3C34; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A3C34; line-height: 1.6; }
			.content h2 { color: #1A3C34; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #C9A227; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>IRAC</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 IRAC. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendWelcomeEmail greets a freshly registered user
func SendWelcomeEmail(email, name string) {
	subject := "Welcome to IRAC"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your account has been created. Browse our courses and workshops, top up your wallet, and invite friends with your referral code to earn bonuses.</p>
	`, name)

	SendEmail([]string{email}, subject, getEmailTemplate("Welcome aboard", body))
}

// SendEnrollmentEmail confirms a successful course enrollment
func SendEnrollmentEmail(email, name, courseTitle string, amountPaid uint) {
	subject := "Enrollment Confirmation - " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have been enrolled in <strong>%s</strong>.</p>
		<div class="info-box">Amount paid: %d IRR</div>
		<p>You can track your progress from your dashboard.</p>
	`, name, courseTitle, amountPaid)

	SendEmail([]string{email}, subject, getEmailTemplate("Enrollment confirmed", body))
}

// SendDepositReceiptEmail confirms a verified wallet deposit
func SendDepositReceiptEmail(email, name string, amount, newBalance uint, refID string) {
	subject := "Wallet Deposit Receipt"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your wallet deposit has been verified.</p>
		<div class="info-box">
			Amount: %d IRR<br>
			New balance: %d IRR<br>
			Gateway reference: %s
		</div>
	`, name, amount, newBalance, refID)

	SendEmail([]string{email}, subject, getEmailTemplate("Deposit verified", body))
}

// SendCertificateEmail notifies a user their certificate has been issued
func SendCertificateEmail(email, name, courseTitle, certificateNumber string) {
	subject := "Your Certificate - " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>!</p>
		<div class="info-box">Certificate number: %s</div>
		<p>You can download your certificate from your dashboard.</p>
	`, name, courseTitle, certificateNumber)

	SendEmail([]string{email}, subject, getEmailTemplate("Certificate issued", body))
}

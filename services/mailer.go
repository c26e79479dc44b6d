package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strconv"

	"main/model"
	"main/utils"
)

// Mailer sends the transactional notification for new contact enquiries.
// Sending is best-effort: a failed notice never blocks the enquiry save.
type Mailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
	Enabled  bool
}

func NewMailer() *Mailer {
	return &Mailer{
		Host:     utils.GetEnvAsString("SMTP_HOST", "localhost"),
		Port:     utils.GetEnvAsInt("SMTP_PORT", 587),
		User:     utils.GetEnvAsString("SMTP_USER", ""),
		Password: utils.GetEnvAsString("SMTP_PASSWORD", ""),
		From:     utils.GetEnvAsString("SMTP_FROM", "noreply@atelier.studio"),
		To:       utils.GetEnvAsString("ENQUIRY_NOTIFY_TO", ""),
		Enabled:  utils.GetEnvAsBool("SMTP_ENABLED", false),
	}
}

// SendEnquiryNotice emails the studio inbox about a new enquiry.
func (m *Mailer) SendEnquiryNotice(enquiry *model.Enquiry) error {
	if !m.Enabled || m.To == "" {
		return nil // Silently skip if email is disabled
	}
	if enquiry == nil {
		return fmt.Errorf("enquiry cannot be nil")
	}

	subject := fmt.Sprintf("New enquiry from %s", enquiry.Name)
	body := fmt.Sprintf("Name: %s\r\nEmail: %s\r\nPhone: %s\r\n\r\n%s\r\n",
		enquiry.Name, enquiry.Email, enquiry.Phone, enquiry.Message)
	message := fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s",
		m.To, m.From, subject, body)

	var auth smtp.Auth
	if m.User != "" && m.Password != "" {
		auth = smtp.PlainAuth("", m.User, m.Password, m.Host)
	}

	addr := m.Host + ":" + strconv.Itoa(m.Port)
	if err := smtp.SendMail(addr, auth, m.From, []string{m.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send enquiry notice: %w", err)
	}

	return nil
}

// NotifyEnquiry runs SendEnquiryNotice and swallows the failure.
func (m *Mailer) NotifyEnquiry(enquiry *model.Enquiry) {
	if err := m.SendEnquiryNotice(enquiry); err != nil {
		utils.TrackError("email", "enquiry_notice_failed")
		log.Printf("Warning: Failed to send enquiry notice: %v", err)
	}
}

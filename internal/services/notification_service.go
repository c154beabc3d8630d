// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/config"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

// NotificationService is the best-effort status-changed sink. It runs
// outside the approval transaction; failures are logged and recorded on the
// notification row, never propagated to the caller.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

const statusChangedTemplate = `
<html>
<body>
<p>Hello {{.Name}},</p>
<p>Your {{.FormName}} {{.DocumentID}} is now <strong>{{.NewStatus}}</strong>.</p>
<p><a href="{{.DocumentURL}}">View the document</a></p>
<p>— {{.PlatformName}}</p>
</body>
</html>
`

// NotifyStatusChanged persists the status-changed event and emails the
// document creator when email delivery is enabled.
func (s *NotificationService) NotifyStatusChanged(formName string, documentID uuid.UUID, newStatus models.DocumentStatus, creatorID uuid.UUID) {
	notification := &models.StatusNotification{
		FormName:   formName,
		DocumentID: documentID,
		NewStatus:  newStatus,
		Message:    fmt.Sprintf("%s %s is now %s", formName, documentID, newStatus),
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"form":        formName,
			"document_id": documentID,
		}).Error("Failed to persist status notification")
		return
	}

	if !s.config.Approval.NotifyByEmail || s.config.Email.SMTPUsername == "" {
		return
	}

	if err := s.emailCreator(notification, creatorID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"form":        formName,
			"document_id": documentID,
		}).Error("Failed to email status notification")
		s.db.Model(notification).Update("email_error", err.Error())
		return
	}

	now := time.Now()
	s.db.Model(notification).Update("emailed_at", now)
}

func (s *NotificationService) emailCreator(notification *models.StatusNotification, creatorID uuid.UUID) error {
	var creator models.Person
	if err := s.db.First(&creator, "id = ?", creatorID).Error; err != nil {
		return fmt.Errorf("creator not found: %w", err)
	}

	data := map[string]interface{}{
		"Name":         creator.FirstName,
		"FormName":     notification.FormName,
		"DocumentID":   notification.DocumentID,
		"NewStatus":    notification.NewStatus,
		"DocumentURL":  fmt.Sprintf("%s/documents/%s/%s", s.config.Frontend.BaseURL, notification.FormName, notification.DocumentID),
		"PlatformName": "Fleet Monkeys",
	}

	subject := fmt.Sprintf("%s approved - Fleet Monkeys", notification.FormName)
	body, err := s.renderTemplate(statusChangedTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(creator.Email, subject, body)
}

func (s *NotificationService) renderTemplate(templateStr string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body)

	addr := s.config.Email.SMTPHost + ":" + s.config.Email.SMTPPort
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, []byte(msg))
}

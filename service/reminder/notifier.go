package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Amoako-T/Medlink-server/cmd/models"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// Notifier delivers reminders over push and email and records each attempt
// in the notification history. Either channel succeeding counts as
// delivered; only a total miss is an error.
type Notifier struct {
	db         *gorm.DB
	expoClient *expo.PushClient
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{
		db:         db,
		expoClient: expo.NewPushClient(nil),
	}
}

func (n *Notifier) Dispatch(ctx context.Context, reminder Reminder) error {
	userID := fmt.Sprintf("%d", reminder.PatientID)

	pushErr := n.sendPush(userID, reminder)
	emailErr := n.sendEmail(reminder)

	status := "sent"
	if pushErr != nil && emailErr != nil {
		status = "failed"
	}

	data, _ := json.Marshal(map[string]string{
		"reference":      reminder.Reference,
		"appointment_id": fmt.Sprintf("%d", reminder.AppointmentID),
	})
	history := models.NotificationHistory{
		UserID: userID,
		Title:  reminder.Title,
		Body:   reminder.Body,
		Data:   string(data),
		Status: status,
		SentAt: time.Now(),
	}
	if err := n.db.Create(&history).Error; err != nil {
		// Log this error but don't fail the dispatch
		log.Printf("Error creating notification history: %v", err)
	}

	if status == "failed" {
		return fmt.Errorf("push: %v; email: %v", pushErr, emailErr)
	}
	return nil
}

func (n *Notifier) sendPush(userID string, reminder Reminder) error {
	var devices []models.Device
	if err := n.db.Where("user_id = ?", userID).Find(&devices).Error; err != nil {
		return fmt.Errorf("retrieving devices: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("no devices registered for user %s", userID)
	}

	var validTokens []expo.ExponentPushToken
	for _, device := range devices {
		pushToken, err := expo.NewExponentPushToken(device.Token)
		if err != nil {
			log.Printf("Invalid push token format %s: %v", device.Token, err)
			continue
		}
		validTokens = append(validTokens, pushToken)
	}
	if len(validTokens) == 0 {
		return fmt.Errorf("no valid push tokens found")
	}

	pushMessage := &expo.PushMessage{
		To:       validTokens,
		Title:    reminder.Title,
		Body:     reminder.Body,
		Sound:    "default",
		Priority: expo.DefaultPriority,
		Data: map[string]string{
			"reference":      reminder.Reference,
			"appointment_id": fmt.Sprintf("%d", reminder.AppointmentID),
		},
	}

	response, err := n.expoClient.Publish(pushMessage)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %v", err)
	}
	if validationErr := response.ValidateResponse(); validationErr != nil {
		return fmt.Errorf("notification validation failed: %v", validationErr)
	}
	return nil
}

func (n *Notifier) sendEmail(reminder Reminder) error {
	var patient models.User
	if err := n.db.First(&patient, reminder.PatientID).Error; err != nil {
		return fmt.Errorf("retrieving patient: %w", err)
	}

	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", patient.Email)
	m.SetHeader("Subject", reminder.Title)
	m.SetBody("text/plain", reminder.Body)

	d := gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)
	return d.DialAndSend(m)
}

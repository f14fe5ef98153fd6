package service

import (
	"context"
	"fmt"

	"medilink/internal/domain/entity"
	"medilink/internal/domain/repository"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PushSender is the part of the FCM client used here.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type NotificationService struct {
	log      *logrus.Logger
	userRepo repository.UserRepository
	sender   PushSender
}

// NewNotificationService accepts a nil sender, in which case pushes are skipped.
func NewNotificationService(log *logrus.Logger, userRepo repository.UserRepository, sender PushSender) *NotificationService {
	return &NotificationService{log: log, userRepo: userRepo, sender: sender}
}

func statusMessage(status entity.AppointmentStatus, target string) (string, string) {
	if target == "" {
		target = "your provider"
	}
	switch status {
	case entity.AppointmentStatusApproved:
		return "Appointment approved", fmt.Sprintf("Your appointment with %s was approved.", target)
	case entity.AppointmentStatusRejected:
		return "Appointment rejected", fmt.Sprintf("Your appointment with %s was rejected.", target)
	case entity.AppointmentStatusCancelled:
		return "Appointment cancelled", fmt.Sprintf("Your appointment with %s was cancelled.", target)
	case entity.AppointmentStatusCompleted:
		return "Appointment completed", fmt.Sprintf("Your appointment with %s is complete.", target)
	default:
		return "Appointment updated", fmt.Sprintf("Your appointment with %s is now %s.", target, status)
	}
}

// NotifyAppointmentStatus pushes the new status to the user's registered device.
// Users without a device token are skipped silently.
func (s *NotificationService) NotifyAppointmentStatus(ctx context.Context, userID, appointmentID uuid.UUID, status entity.AppointmentStatus, target string) error {
	if s.sender == nil {
		s.log.Debugf("Push disabled, skipping notification for appointment %s", appointmentID)
		return nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.log.Warnf("Failed to load user %s for notification: %+v", userID, err)
		return err
	}
	if user == nil || user.DeviceToken == "" {
		return nil
	}

	title, body := statusMessage(status, target)
	_, err = s.sender.Send(ctx, &messaging.Message{
		Token: user.DeviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"appointment_id": appointmentID.String(),
			"status":         string(status),
		},
	})
	if err != nil {
		s.log.Warnf("Failed to push notification for appointment %s: %+v", appointmentID, err)
		return err
	}

	s.log.Infof("Notification sent: appointment=%s status=%s", appointmentID, status)
	return nil
}

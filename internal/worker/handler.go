package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"medilink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

type StatusNotifier interface {
	NotifyAppointmentStatus(ctx context.Context, userID, appointmentID uuid.UUID, status entity.AppointmentStatus, target string) error
}

func NewServeMux(notifier StatusNotifier, log *logrus.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAppointmentStatusChanged, handleAppointmentStatus(notifier, log))
	return mux
}

func handleAppointmentStatus(notifier StatusNotifier, log *logrus.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p AppointmentStatusPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Warnf("Invalid %s payload: %+v", TypeAppointmentStatusChanged, err)
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}

		if err := notifier.NotifyAppointmentStatus(ctx, p.UserID, p.AppointmentID, p.Status, p.Target); err != nil {
			return err
		}
		return nil
	}
}

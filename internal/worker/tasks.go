// Package worker runs background jobs on asynq.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medilink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeAppointmentStatusChanged = "appointment:status_changed"

type AppointmentStatusPayload struct {
	AppointmentID uuid.UUID                `json:"appointment_id"`
	UserID        uuid.UUID                `json:"user_id"`
	Status        entity.AppointmentStatus `json:"status"`
	Target        string                   `json:"target,omitempty"`
}

func NewAppointmentStatusTask(payload AppointmentStatusPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAppointmentStatusChanged, b, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// Dispatcher enqueues jobs for the worker server.
type Dispatcher struct {
	client *asynq.Client
}

func NewDispatcher(client *asynq.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) DispatchStatusChanged(ctx context.Context, payload AppointmentStatusPayload) error {
	task, err := NewAppointmentStatusTask(payload)
	if err != nil {
		return err
	}
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeAppointmentStatusChanged, err)
	}
	return nil
}

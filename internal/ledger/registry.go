// Package ledger mirrors new directory records into the on-chain registry contract.
package ledger

import (
	"context"
	"errors"

	"medilink/config"

	"github.com/sirupsen/logrus"
)

var ErrLedgerUnavailable = errors.New("ledger registry unavailable")

type HospitalRecord struct {
	Name          string
	LicenseID     string
	Location      string
	ContactNumber string
	Email         string
	Beds          int
	Departments   string
}

type DoctorRecord struct {
	Name           string
	LicenseNo      string
	Specialization string
	Experience     int
	Phone          string
	Email          string
	Hospital       string
}

// Registry submits a record and returns once the transaction is mined.
type Registry interface {
	RegisterHospital(ctx context.Context, record HospitalRecord) (string, error)
	RegisterDoctor(ctx context.Context, record DoctorRecord) (string, error)
}

// New returns the contract-backed registry when enabled and a no-op one otherwise.
func New(ctx context.Context, cfg config.LedgerConfig, log *logrus.Logger) (Registry, error) {
	if !cfg.Enabled {
		log.Info("Ledger registry disabled")
		return NoopRegistry{}, nil
	}
	return newContractRegistry(ctx, cfg, log)
}

// NoopRegistry accepts every record without side effects.
type NoopRegistry struct{}

func (NoopRegistry) RegisterHospital(ctx context.Context, record HospitalRecord) (string, error) {
	return "", nil
}

func (NoopRegistry) RegisterDoctor(ctx context.Context, record DoctorRecord) (string, error) {
	return "", nil
}

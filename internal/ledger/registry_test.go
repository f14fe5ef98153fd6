package ledger

import (
	"context"
	"io"
	"testing"

	"medilink/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	reg, err := New(context.Background(), config.LedgerConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, NoopRegistry{}, reg)

	hash, err := reg.RegisterHospital(context.Background(), HospitalRecord{Name: "City"})
	assert.NoError(t, err)
	assert.Empty(t, hash)
}

func TestNewRejectsBadAddress(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	_, err := New(context.Background(), config.LedgerConfig{Enabled: true, ContractAddress: "nope"}, log)
	assert.Error(t, err)
}

func TestTuplesPackAgainstRegistryABI(t *testing.T) {
	parsed, err := parseRegistryABI()
	require.NoError(t, err)

	data, err := parsed.Pack("addHospital", toHospitalTuple(HospitalRecord{
		Name:          "City Hospital",
		LicenseID:     "LIC-1",
		Location:      "Lahore",
		ContactNumber: "042-111",
		Email:         "city@example.com",
		Beds:          120,
		Departments:   "Cardiology",
	}))
	require.NoError(t, err)
	assert.Equal(t, parsed.Methods["addHospital"].ID, data[:4])

	data, err = parsed.Pack("addDoctor", toDoctorTuple(DoctorRecord{
		Name:           "Dr. Sana",
		LicenseNo:      "PMDC-9",
		Specialization: "Hematology",
		Experience:     8,
	}))
	require.NoError(t, err)
	assert.Equal(t, parsed.Methods["addDoctor"].ID, data[:4])
}

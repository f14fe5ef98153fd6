package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type donorForm struct {
	Name       string `json:"name" validate:"required"`
	CNIC       string `json:"cnic" validate:"required,cnic"`
	BloodGroup string `json:"blood_group" validate:"required,bloodgroup"`
	Age        int    `json:"age" validate:"gte=18,lte=100"`
}

func TestIsBloodGroup(t *testing.T) {
	for _, ok := range []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"} {
		assert.True(t, IsBloodGroup(ok), ok)
	}
	for _, bad := range []string{"", "C+", "o+", "AB", "O+ ", "ABO+"} {
		assert.False(t, IsBloodGroup(bad), bad)
	}
}

func TestIsCNIC(t *testing.T) {
	assert.True(t, IsCNIC("35202-1234567-1"))
	assert.False(t, IsCNIC("3520212345671"))
	assert.False(t, IsCNIC("35202-123456-1"))
}

func TestValidateAndFormat(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&donorForm{Name: "Ali", CNIC: "35202-1234567-1", BloodGroup: "O+", Age: 30})
	require.NoError(t, err)

	err = v.Validate(&donorForm{CNIC: "bad", BloodGroup: "Z", Age: 12})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, "Name is required", fields["Name"])
	assert.Contains(t, fields["CNIC"], "12345-1234567-1")
	assert.Contains(t, fields["BloodGroup"], "blood group")
	assert.Contains(t, fields["Age"], "greater than or equal to 18")
}

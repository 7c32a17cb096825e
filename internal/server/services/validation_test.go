package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegistration(t *testing.T) {
	assert.NoError(t, ValidateRegistration(reg("a", "a@x", "p", "p")))

	err := ValidateRegistration(reg("a", "a@x", "p", "P"))
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, common.PasswordMismatch, ve.Kind)
}

func TestValidateTaskInput(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)

	v, err := ValidateTaskInput(TaskInput{Title: "\tT\n", Description: " keep spaces ", DueDate: " 2025-06-02T08:15 "}, now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "T", v.Title)
	assert.Equal(t, " keep spaces ", v.Description)
	require.NotNil(t, v.DueDate)
	assert.Equal(t, time.Date(2025, 6, 2, 8, 15, 0, 0, time.UTC), *v.DueDate)

	// 12:00 is strictly before 12:00:30
	_, err = ValidateTaskInput(TaskInput{Title: "T", DueDate: "2025-06-01T12:00"}, now, time.UTC)
	require.ErrorIs(t, err, common.NewValidationError(common.PastDueDate))

	_, err = ValidateTaskInput(TaskInput{Title: "T", DueDate: "2025-06-01 12:00"}, now, time.UTC)
	require.ErrorIs(t, err, common.NewValidationError(common.InvalidDueDate))
}

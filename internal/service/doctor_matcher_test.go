package service_test

import (
	"testing"

	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestSpecialtyMatches(t *testing.T) {
	assert.True(t, service.SpecialtyMatches("Cardiology", "cardiology"))
	assert.True(t, service.SpecialtyMatches("Cardiologist", "cardio"))
	assert.True(t, service.SpecialtyMatches("Heart Surgeon", "Cardiology"))
	assert.True(t, service.SpecialtyMatches("Skin & Hair", "dermatology"))
	assert.True(t, service.SpecialtyMatches("Neuro", "neurology"))
	assert.False(t, service.SpecialtyMatches("Pediatrics", "cardiology"))
	assert.False(t, service.SpecialtyMatches("", "cardiology"))
}

func TestFilterBySpecialty(t *testing.T) {
	doctors := []entity.DoctorProfile{
		{Name: "A", Specialization: "Cardiologist"},
		{Name: "B", Specialization: "Dermatology"},
		{Name: "C", Specialization: "Cardiac Surgery"},
	}

	got := service.FilterBySpecialty(doctors, "Cardiology")
	assert.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "C", got[1].Name)

	assert.Len(t, service.FilterBySpecialty(doctors, ""), 3)
}

package service

import (
	"strings"

	"pulsebridge-consult/internal/domain/entity"
)

var specialtyVariations = map[string][]string{
	"cardiology":  {"cardiologist", "cardiac", "heart"},
	"neurology":   {"neurologist", "neuro", "brain"},
	"dermatology": {"dermatologist", "derm", "skin"},
}

// SpecialtyMatches compares specializations case-insensitively by exact
// match, substring in either direction, or a known variation of requested.
func SpecialtyMatches(doctorSpec, requested string) bool {
	doc := strings.ToLower(strings.TrimSpace(doctorSpec))
	req := strings.ToLower(strings.TrimSpace(requested))
	if req == "" {
		return true
	}
	if doc == "" {
		return false
	}

	if doc == req || strings.Contains(doc, req) || strings.Contains(req, doc) {
		return true
	}

	for _, v := range specialtyVariations[req] {
		if strings.Contains(doc, v) {
			return true
		}
	}
	return false
}

// FilterBySpecialty keeps doctors whose specialization matches requested.
func FilterBySpecialty(doctors []entity.DoctorProfile, requested string) []entity.DoctorProfile {
	if strings.TrimSpace(requested) == "" {
		return doctors
	}
	matched := make([]entity.DoctorProfile, 0, len(doctors))
	for _, d := range doctors {
		if SpecialtyMatches(d.Specialization, requested) {
			matched = append(matched, d)
		}
	}
	return matched
}

package domain

import (
	"fmt"
	"strconv"
)

// ============================================================
// Perfil do cidadão (UserProfile)
// ============================================================

// Gender is the self-declared gender on the profile form.
type Gender string

const (
	GenderMale           Gender = "Male"
	GenderFemale         Gender = "Female"
	GenderOther          Gender = "Other"
	GenderPreferNotToSay Gender = "Prefer not to say"
)

// Genders lists the selectable options in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay}

// Valid reports whether g is a known option.
func (g Gender) Valid() bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}

// EmploymentStatus is the occupation picked on step 2 of the wizard.
type EmploymentStatus string

const (
	OccupationStudent      EmploymentStatus = "Student"
	OccupationUnemployed   EmploymentStatus = "Unemployed"
	OccupationEmployed     EmploymentStatus = "Employed"
	OccupationSelfEmployed EmploymentStatus = "Self-Employed"
	OccupationRetired      EmploymentStatus = "Retired"
	OccupationFarmer       EmploymentStatus = "Farmer"
)

// Occupations lists the selectable options in display order.
var Occupations = []EmploymentStatus{
	OccupationStudent,
	OccupationUnemployed,
	OccupationEmployed,
	OccupationSelfEmployed,
	OccupationRetired,
	OccupationFarmer,
}

// Valid reports whether o is a known option.
func (o EmploymentStatus) Valid() bool {
	for _, v := range Occupations {
		if o == v {
			return true
		}
	}
	return false
}

// Input bounds enforced by the form controls.
const (
	MinAge = 0
	MaxAge = 120
)

// UserProfile is the demographic/economic input used for scheme matching.
// It is replaced wholesale on every submission, never patched in place.
type UserProfile struct {
	Name         string           `json:"name"`
	Age          int              `json:"age"`
	Gender       Gender           `json:"gender"`
	Location     string           `json:"location"` // state or city
	Occupation   EmploymentStatus `json:"occupation"`
	AnnualIncome float64          `json:"annualIncome"`
	Category     string           `json:"category,omitempty"` // e.g. General, SC, ST, OBC
	Disability   bool             `json:"disability"`
}

// DefaultProfile returns the blank profile shown on a fresh wizard.
func DefaultProfile() UserProfile {
	return UserProfile{
		Gender:     GenderPreferNotToSay,
		Occupation: OccupationUnemployed,
	}
}

// CategoryOrDefault returns the social category, falling back to "General".
func (p UserProfile) CategoryOrDefault() string {
	if p.Category == "" {
		return "General"
	}
	return p.Category
}

// Summary serialises the profile into the free-text context block that is
// injected into the chat system instruction.
func (p UserProfile) Summary() string {
	return fmt.Sprintf("User Name: %s, Age: %d, Location: %s, Occupation: %s, Income: %s",
		p.Name, p.Age, p.Location, p.Occupation, formatIncome(p.AnnualIncome))
}

func formatIncome(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

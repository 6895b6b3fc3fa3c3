package domain_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
)

func validScheme(id string) domain.Scheme {
	return domain.Scheme{
		ID:                  id,
		Name:                "PM Scholarship",
		Provider:            "Central Gov",
		Description:         "Scholarship for students",
		Benefits:            []string{"Rs 10,000 per year"},
		EligibilityCriteria: []string{"Enrolled student"},
		MatchScore:          80,
		ApplicationMethod:   domain.ApplicationOnline,
		Category:            domain.CategoryEducation,
		OfficialLink:        "https://scholarships.gov.in/",
	}
}

func TestScheme_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Scheme)
		field  string
	}{
		{"valid", func(*domain.Scheme) {}, ""},
		{"score lower bound", func(s *domain.Scheme) { s.MatchScore = 0 }, ""},
		{"score upper bound", func(s *domain.Scheme) { s.MatchScore = 100 }, ""},
		{"score above range", func(s *domain.Scheme) { s.MatchScore = 101 }, "matchScore"},
		{"negative score", func(s *domain.Scheme) { s.MatchScore = -1 }, "matchScore"},
		{"blank id", func(s *domain.Scheme) { s.ID = " " }, "id"},
		{"no benefits", func(s *domain.Scheme) { s.Benefits = nil }, "benefits"},
		{"no eligibility", func(s *domain.Scheme) { s.EligibilityCriteria = nil }, "eligibilityCriteria"},
		{"unknown method", func(s *domain.Scheme) { s.ApplicationMethod = "Email" }, "applicationMethod"},
		{"unknown category", func(s *domain.Scheme) { s.Category = "Transport" }, "category"},
		{"relative link", func(s *domain.Scheme) { s.OfficialLink = "/apply" }, "officialLink"},
		{"ftp link", func(s *domain.Scheme) { s.OfficialLink = "ftp://gov.in/file" }, "officialLink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScheme("1")
			tt.mutate(&s)
			err := s.Validate()

			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var ve *domain.ErrValidation
			if !errors.As(err, &ve) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}
}

func TestValidateBatch_DuplicateIDs(t *testing.T) {
	batch := []domain.Scheme{validScheme("1"), validScheme("2"), validScheme("1")}
	if err := domain.ValidateBatch(batch); err == nil {
		t.Fatal("expected duplicate id to reject the batch")
	}
	if err := domain.ValidateBatch(batch[:2]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOfficialHost(t *testing.T) {
	host, err := domain.OfficialHost("https://www.india.gov.in/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "www.india.gov.in" {
		t.Errorf("expected www.india.gov.in, got %s", host)
	}
}

func TestUserProfile_Summary(t *testing.T) {
	p := domain.UserProfile{
		Name:         "Ravi",
		Age:          45,
		Location:     "Punjab",
		Occupation:   domain.OccupationFarmer,
		AnnualIncome: 80000,
	}

	want := "User Name: Ravi, Age: 45, Location: Punjab, Occupation: Farmer, Income: 80000"
	if got := p.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
	if p.CategoryOrDefault() != "General" {
		t.Errorf("expected General, got %s", p.CategoryOrDefault())
	}
}

func TestDefaultProfile(t *testing.T) {
	p := domain.DefaultProfile()
	if p.Gender != domain.GenderPreferNotToSay || p.Occupation != domain.OccupationUnemployed {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if !p.Gender.Valid() || !p.Occupation.Valid() {
		t.Error("defaults must be valid options")
	}
}

package results_test

import (
	"testing"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/results"
)

func scheme(id string, cat domain.SchemeCategory, benefits ...string) domain.Scheme {
	return domain.Scheme{
		ID:                  id,
		Name:                "Scheme " + id,
		Provider:            "State Gov",
		Benefits:            benefits,
		EligibilityCriteria: []string{"Resident"},
		MatchScore:          87,
		ApplicationMethod:   domain.ApplicationHybrid,
		Category:            cat,
		OfficialLink:        "https://www.india.gov.in/",
	}
}

func TestBuild_Loading(t *testing.T) {
	v := results.Build([]domain.Scheme{scheme("a", domain.CategoryHealth, "x")}, true, true)

	if v.State != results.StateLoading {
		t.Fatalf("expected loading, got %s", v.State)
	}
	if v.Placeholders != 3 {
		t.Errorf("expected 3 placeholders, got %d", v.Placeholders)
	}
	if len(v.Cards) != 0 {
		t.Errorf("no real cards while loading, got %d", len(v.Cards))
	}
}

func TestBuild_Empty(t *testing.T) {
	v := results.Build(nil, false, false)

	if v.State != results.StateEmpty {
		t.Fatalf("expected empty, got %s", v.State)
	}
	if v.Message != "No schemes found. Try adjusting your profile details." {
		t.Errorf("unexpected message %q", v.Message)
	}
	if len(v.Actions) != 1 || v.Actions[0].ID != results.ActionEditProfile {
		t.Errorf("expected only edit_profile, got %+v", v.Actions)
	}

	v = results.Build([]domain.Scheme{}, false, true)
	if len(v.Actions) != 2 || v.Actions[1].ID != results.ActionRetry || v.Actions[1].Label != "Try Again" {
		t.Errorf("expected retry action, got %+v", v.Actions)
	}
}

func TestBuild_Populated(t *testing.T) {
	schemes := []domain.Scheme{
		scheme("z", domain.CategoryBusiness, "b1", "b2", "b3", "b4", "b5"),
		scheme("a", domain.CategorySocialWelfare, "only"),
	}

	v := results.Build(schemes, false, true)

	if v.State != results.StatePopulated {
		t.Fatalf("expected populated, got %s", v.State)
	}
	if v.Title != "Recommended For You" {
		t.Errorf("unexpected title %q", v.Title)
	}
	if v.Subtitle != "Based on your profile, we found 2 schemes with high eligibility match." {
		t.Errorf("unexpected subtitle %q", v.Subtitle)
	}
	if len(v.Cards) != 2 || v.Cards[0].SchemeID != "z" || v.Cards[1].SchemeID != "a" {
		t.Fatalf("cards must keep returned order: %+v", v.Cards)
	}

	first := v.Cards[0]
	if len(first.Benefits) != 3 || first.MoreBenefits != "+2 more benefits" {
		t.Errorf("unexpected benefit truncation: %v %q", first.Benefits, first.MoreBenefits)
	}
	if first.MatchLabel != "87% Match" {
		t.Errorf("unexpected match label %q", first.MatchLabel)
	}
	if first.CategoryColor != "amber" || v.Cards[1].CategoryColor != "indigo" {
		t.Errorf("unexpected colours: %s %s", first.CategoryColor, v.Cards[1].CategoryColor)
	}
	if v.Cards[1].MoreBenefits != "" {
		t.Errorf("no summary expected for a single benefit")
	}
}

func TestCategoryColor(t *testing.T) {
	want := map[domain.SchemeCategory]string{
		domain.CategoryEducation:   "blue",
		domain.CategoryHealth:      "red",
		domain.CategoryAgriculture: "green",
		domain.CategoryBusiness:    "amber",
		domain.CategoryHousing:     "indigo",
	}
	for cat, color := range want {
		if got := results.CategoryColor(cat); got != color {
			t.Errorf("%s: expected %s, got %s", cat, color, got)
		}
	}
}

package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// ============================================================
// Scheme: programa governamental retornado pelo modelo
// ============================================================

// ApplicationMethod is how a citizen applies to a scheme.
type ApplicationMethod string

const (
	ApplicationOnline  ApplicationMethod = "Online"
	ApplicationOffline ApplicationMethod = "Offline"
	ApplicationHybrid  ApplicationMethod = "Hybrid"
)

// ApplicationMethods lists every allowed method.
var ApplicationMethods = []ApplicationMethod{ApplicationOnline, ApplicationOffline, ApplicationHybrid}

// SchemeCategory is the benefit area of a scheme.
type SchemeCategory string

const (
	CategoryEducation     SchemeCategory = "Education"
	CategoryHealth        SchemeCategory = "Health"
	CategoryAgriculture   SchemeCategory = "Agriculture"
	CategoryBusiness      SchemeCategory = "Business"
	CategoryHousing       SchemeCategory = "Housing"
	CategorySocialWelfare SchemeCategory = "Social Welfare"
)

// SchemeCategories lists every allowed category.
var SchemeCategories = []SchemeCategory{
	CategoryEducation,
	CategoryHealth,
	CategoryAgriculture,
	CategoryBusiness,
	CategoryHousing,
	CategorySocialWelfare,
}

// Match score bounds.
const (
	MinMatchScore = 0
	MaxMatchScore = 100
)

// Scheme is a government benefit program suggested for a profile.
// A batch of schemes is always replaced as a whole.
type Scheme struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Provider            string            `json:"provider"` // "Central Gov", "State Gov", ...
	Description         string            `json:"description"`
	Benefits            []string          `json:"benefits"`
	EligibilityCriteria []string          `json:"eligibilityCriteria"`
	MatchScore          int               `json:"matchScore"`
	ApplicationMethod   ApplicationMethod `json:"applicationMethod"`
	Category            SchemeCategory    `json:"category"`
	OfficialLink        string            `json:"officialLink"`
}

// Validate checks the intake contract of a single scheme.
func (s Scheme) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return &ErrValidation{Field: "id", Message: "must not be empty"}
	}
	if strings.TrimSpace(s.Name) == "" {
		return &ErrValidation{Field: "name", Message: "must not be empty"}
	}
	if len(s.Benefits) == 0 {
		return &ErrValidation{Field: "benefits", Message: "must not be empty"}
	}
	if len(s.EligibilityCriteria) == 0 {
		return &ErrValidation{Field: "eligibilityCriteria", Message: "must not be empty"}
	}
	if s.MatchScore < MinMatchScore || s.MatchScore > MaxMatchScore {
		return &ErrValidation{Field: "matchScore", Message: fmt.Sprintf("must be within [%d,%d], got %d", MinMatchScore, MaxMatchScore, s.MatchScore)}
	}
	if !containsMethod(s.ApplicationMethod) {
		return &ErrValidation{Field: "applicationMethod", Message: fmt.Sprintf("unknown value %q", s.ApplicationMethod)}
	}
	if !containsCategory(s.Category) {
		return &ErrValidation{Field: "category", Message: fmt.Sprintf("unknown value %q", s.Category)}
	}
	if _, err := OfficialHost(s.OfficialLink); err != nil {
		return err
	}
	return nil
}

// ValidateBatch validates every scheme and the uniqueness of IDs.
// The first failure rejects the whole batch.
func ValidateBatch(schemes []Scheme) error {
	seen := make(map[string]struct{}, len(schemes))
	for i, s := range schemes {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("scheme[%d]: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("scheme[%d]: %w", i, &ErrValidation{Field: "id", Message: "duplicate id " + s.ID})
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// OfficialHost parses an officialLink and returns its hostname.
// The link must be an absolute http(s) URL.
func OfficialHost(link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", &ErrValidation{Field: "officialLink", Message: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", &ErrValidation{Field: "officialLink", Message: fmt.Sprintf("not an absolute http(s) url: %q", link)}
	}
	return u.Hostname(), nil
}

func containsMethod(m ApplicationMethod) bool {
	for _, v := range ApplicationMethods {
		if v == m {
			return true
		}
	}
	return false
}

func containsCategory(c SchemeCategory) bool {
	for _, v := range SchemeCategories {
		if v == c {
			return true
		}
	}
	return false
}

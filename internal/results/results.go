// Package results builds the render model of the recommendations screen.
package results

import (
	"fmt"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
)

// State is the mutually exclusive display state of the results area.
type State string

const (
	StateLoading   State = "loading"
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

const (
	// PlaceholderCount is how many skeleton cards show while loading.
	PlaceholderCount = 3
	// VisibleBenefits is how many benefits a card lists before summarising.
	VisibleBenefits = 3

	emptyMessage = "No schemes found. Try adjusting your profile details."
	headerTitle  = "Recommended For You"
)

// Action identifiers the client sends back.
const (
	ActionEditProfile = "edit_profile"
	ActionRetry       = "retry"
	ActionApply       = "apply"
)

// Action is a button on the results screen.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Card is one scheme tile.
type Card struct {
	SchemeID          string                   `json:"schemeId"`
	Name              string                   `json:"name"`
	Provider          string                   `json:"provider"`
	Description       string                   `json:"description"`
	Category          domain.SchemeCategory    `json:"category"`
	CategoryColor     string                   `json:"categoryColor"`
	MatchScore        int                      `json:"matchScore"`
	MatchLabel        string                   `json:"matchLabel"`
	Benefits          []string                 `json:"benefits"`
	MoreBenefits      string                   `json:"moreBenefits,omitempty"`
	ApplicationMethod domain.ApplicationMethod `json:"applicationMethod"`
	Action            Action                   `json:"action"`
}

// View is the results area.
type View struct {
	State        State    `json:"state"`
	Title        string   `json:"title,omitempty"`
	Subtitle     string   `json:"subtitle,omitempty"`
	Placeholders int      `json:"placeholders,omitempty"`
	Cards        []Card   `json:"cards"`
	Message      string   `json:"message,omitempty"`
	Actions      []Action `json:"actions,omitempty"`
}

// Build derives the view from the current schemes. Cards keep the order
// the schemes were returned in. canRetry adds the retry action to the empty
// state and should be true when a previous profile can be resubmitted.
func Build(schemes []domain.Scheme, loading, canRetry bool) View {
	switch {
	case loading:
		return View{State: StateLoading, Placeholders: PlaceholderCount, Cards: []Card{}}
	case len(schemes) == 0:
		v := View{
			State:   StateEmpty,
			Cards:   []Card{},
			Message: emptyMessage,
			Actions: []Action{{ID: ActionEditProfile, Label: "Edit Profile"}},
		}
		if canRetry {
			v.Actions = append(v.Actions, Action{ID: ActionRetry, Label: "Try Again"})
		}
		return v
	}

	cards := make([]Card, len(schemes))
	for i, s := range schemes {
		cards[i] = cardFor(s)
	}
	return View{
		State:    StatePopulated,
		Title:    headerTitle,
		Subtitle: fmt.Sprintf("Based on your profile, we found %d schemes with high eligibility match.", len(schemes)),
		Cards:    cards,
	}
}

func cardFor(s domain.Scheme) Card {
	c := Card{
		SchemeID:          s.ID,
		Name:              s.Name,
		Provider:          s.Provider,
		Description:       s.Description,
		Category:          s.Category,
		CategoryColor:     CategoryColor(s.Category),
		MatchScore:        s.MatchScore,
		MatchLabel:        fmt.Sprintf("%d%% Match", s.MatchScore),
		Benefits:          s.Benefits,
		ApplicationMethod: s.ApplicationMethod,
		Action:            Action{ID: ActionApply, Label: "Details & Apply"},
	}
	if n := len(s.Benefits); n > VisibleBenefits {
		c.Benefits = s.Benefits[:VisibleBenefits]
		c.MoreBenefits = fmt.Sprintf("+%d more benefits", n-VisibleBenefits)
	}
	return c
}

// CategoryColor maps a category to its badge colour token.
func CategoryColor(c domain.SchemeCategory) string {
	switch c {
	case domain.CategoryEducation:
		return "blue"
	case domain.CategoryHealth:
		return "red"
	case domain.CategoryAgriculture:
		return "green"
	case domain.CategoryBusiness:
		return "amber"
	default:
		return "indigo"
	}
}

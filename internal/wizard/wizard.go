// Package wizard implements the three-step profile collection flow.
//
// A Wizard is not safe for concurrent use; the owning session serialises
// access to it.
package wizard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
)

// Steps is the number of form steps.
const Steps = 3

// Field names accepted by Set, matching the profile's JSON wire names.
const (
	FieldName         = "name"
	FieldAge          = "age"
	FieldGender       = "gender"
	FieldLocation     = "location"
	FieldOccupation   = "occupation"
	FieldAnnualIncome = "annualIncome"
	FieldCategory     = "category"
	FieldDisability   = "disability"
)

// Wizard holds the current step and the in-progress profile.
type Wizard struct {
	step      int
	submitted bool
	profile   domain.UserProfile
}

// New starts a wizard on step 1, pre-populated from initial when given.
func New(initial *domain.UserProfile) *Wizard {
	p := domain.DefaultProfile()
	if initial != nil {
		p = *initial
	}
	return &Wizard{step: 1, profile: p}
}

// Step returns the current step, 1-based.
func (w *Wizard) Step() int { return w.step }

// Submitted reports whether Submit succeeded at least once.
func (w *Wizard) Submitted() bool { return w.submitted }

// Profile returns a copy of the in-progress profile.
func (w *Wizard) Profile() domain.UserProfile { return w.profile }

// Next advances one step. It reports false when already on the last step.
func (w *Wizard) Next() bool {
	if w.step >= Steps {
		return false
	}
	w.step++
	return true
}

// Back retreats one step. It reports false when already on the first step.
func (w *Wizard) Back() bool {
	if w.step <= 1 {
		return false
	}
	w.step--
	return true
}

// Submit finalises the profile. Only allowed on the last step.
func (w *Wizard) Submit() (domain.UserProfile, error) {
	if w.step != Steps {
		return domain.UserProfile{}, &domain.ErrValidation{
			Field:   "step",
			Message: fmt.Sprintf("submit is only available on step %d, current step is %d", Steps, w.step),
		}
	}
	w.submitted = true
	return w.profile, nil
}

// Apply sets several fields. The patch is all or nothing: on the first
// error the profile is restored to what it was before the call.
func (w *Wizard) Apply(patch map[string]any) error {
	before := w.profile
	for field, value := range patch {
		if err := w.Set(field, value); err != nil {
			w.profile = before
			return err
		}
	}
	return nil
}

// Set changes one field of the in-progress profile. Any field can be set
// at any step. Numbers may arrive as JSON numbers or numeric strings;
// unparsable numbers become 0 like an emptied number input.
func (w *Wizard) Set(field string, value any) error {
	switch field {
	case FieldName:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		w.profile.Name = s
	case FieldLocation:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		w.profile.Location = s
	case FieldCategory:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		w.profile.Category = s
	case FieldAge:
		// clamp before converting, out-of-range float to int is undefined
		n := math.Max(domain.MinAge, math.Min(domain.MaxAge, asNumber(value)))
		w.profile.Age = int(math.Trunc(n))
	case FieldAnnualIncome:
		w.profile.AnnualIncome = math.Max(0, asNumber(value))
	case FieldGender:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		g := domain.Gender(s)
		if !g.Valid() {
			return &domain.ErrValidation{Field: field, Message: fmt.Sprintf("unknown option %q", s)}
		}
		w.profile.Gender = g
	case FieldOccupation:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		o := domain.EmploymentStatus(s)
		if !o.Valid() {
			return &domain.ErrValidation{Field: field, Message: fmt.Sprintf("unknown option %q", s)}
		}
		w.profile.Occupation = o
	case FieldDisability:
		b, ok := value.(bool)
		if !ok {
			return &domain.ErrValidation{Field: field, Message: "must be a boolean"}
		}
		w.profile.Disability = b
	default:
		return &domain.ErrValidation{Field: field, Message: "unknown field"}
	}
	return nil
}

func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &domain.ErrValidation{Field: field, Message: "must be a string"}
	}
	return s, nil
}

func asNumber(v any) float64 {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

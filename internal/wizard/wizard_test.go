package wizard_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsAndPrefill(t *testing.T) {
	w := wizard.New(nil)
	assert.Equal(t, 1, w.Step())
	assert.Equal(t, domain.DefaultProfile(), w.Profile())

	prior := domain.UserProfile{Name: "Meera", Age: 30, Gender: domain.GenderFemale, Occupation: domain.OccupationEmployed}
	w = wizard.New(&prior)
	assert.Equal(t, 1, w.Step())
	assert.Equal(t, prior, w.Profile())
}

func TestNavigation_Bounds(t *testing.T) {
	w := wizard.New(nil)

	assert.False(t, w.Back(), "back on step 1 is a no-op")
	assert.Equal(t, 1, w.Step())

	assert.True(t, w.Next())
	assert.True(t, w.Next())
	assert.False(t, w.Next(), "next on step 3 is a no-op")
	assert.Equal(t, 3, w.Step())

	assert.True(t, w.Back())
	assert.Equal(t, 2, w.Step())
}

func TestSubmit_OnlyOnLastStep(t *testing.T) {
	w := wizard.New(nil)

	_, err := w.Submit()
	var ve *domain.ErrValidation
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "step", ve.Field)
	assert.False(t, w.Submitted())

	w.Next()
	w.Next()
	require.NoError(t, w.Set(wizard.FieldName, "Meera"))
	p, err := w.Submit()
	require.NoError(t, err)
	assert.Equal(t, "Meera", p.Name)
	assert.True(t, w.Submitted())
	assert.Equal(t, 3, w.Step(), "wizard does not reset itself")
}

func TestSet_Coercion(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		check func(t *testing.T, p domain.UserProfile)
	}{
		{"age number", wizard.FieldAge, float64(34), func(t *testing.T, p domain.UserProfile) { assert.Equal(t, 34, p.Age) }},
		{"age string", wizard.FieldAge, "27", func(t *testing.T, p domain.UserProfile) { assert.Equal(t, 27, p.Age) }},
		{"age unparsable", wizard.FieldAge, "abc", func(t *testing.T, p domain.UserProfile) { assert.Equal(t, 0, p.Age) }},
		{"age clamped high", wizard.FieldAge, float64(150), func(t *testing.T, p domain.UserProfile) { assert.Equal(t, 120, p.Age) }},
		{"age huge string", wizard.FieldAge, "1e30", func(t *testing.T, p domain.UserProfile) { assert.Equal(t, 120, p.Age) }},
		{"age huge negative", wizard.FieldAge, float64(-1e30), func(t *testing.T, p domain.UserProfile) { assert.Equal(t, 0, p.Age) }},
		{"age clamped low", wizard.FieldAge, float64(-3), func(t *testing.T, p domain.UserProfile) { assert.Equal(t, 0, p.Age) }},
		{"income string", wizard.FieldAnnualIncome, "500000", func(t *testing.T, p domain.UserProfile) { assert.Equal(t, 500000.0, p.AnnualIncome) }},
		{"income negative", wizard.FieldAnnualIncome, float64(-10), func(t *testing.T, p domain.UserProfile) { assert.Equal(t, 0.0, p.AnnualIncome) }},
		{"occupation", wizard.FieldOccupation, "Self-Employed", func(t *testing.T, p domain.UserProfile) {
			assert.Equal(t, domain.OccupationSelfEmployed, p.Occupation)
		}},
		{"gender", wizard.FieldGender, "Female", func(t *testing.T, p domain.UserProfile) { assert.Equal(t, domain.GenderFemale, p.Gender) }},
		{"disability", wizard.FieldDisability, true, func(t *testing.T, p domain.UserProfile) { assert.True(t, p.Disability) }},
		{"category", wizard.FieldCategory, "OBC", func(t *testing.T, p domain.UserProfile) { assert.Equal(t, "OBC", p.Category) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wizard.New(nil)
			require.NoError(t, w.Set(tt.field, tt.value))
			tt.check(t, w.Profile())
		})
	}
}

func TestSet_AnyFieldAtAnyStep(t *testing.T) {
	w := wizard.New(nil)
	require.NoError(t, w.Set(wizard.FieldDisability, true), "step 3 field on step 1")
	assert.True(t, w.Profile().Disability)
}

func TestSet_Rejects(t *testing.T) {
	w := wizard.New(nil)

	assert.Error(t, w.Set(wizard.FieldOccupation, "Astronaut"))
	assert.Equal(t, domain.OccupationUnemployed, w.Profile().Occupation, "prior selection kept on error")
	assert.Error(t, w.Set(wizard.FieldGender, 3))
	assert.Error(t, w.Set(wizard.FieldDisability, "yes"))
	assert.Error(t, w.Set("salary", 10))
}

func TestApply(t *testing.T) {
	w := wizard.New(nil)
	err := w.Apply(map[string]any{
		"name":       "Ravi",
		"age":        float64(45),
		"location":   "Punjab",
		"occupation": "Farmer",
	})
	require.NoError(t, err)

	p := w.Profile()
	assert.Equal(t, "Ravi", p.Name)
	assert.Equal(t, 45, p.Age)
	assert.Equal(t, domain.OccupationFarmer, p.Occupation)
}

func TestApply_RejectedPatchLeavesProfileUntouched(t *testing.T) {
	// map order is random, run enough times to hit every ordering
	for i := 0; i < 50; i++ {
		w := wizard.New(nil)
		err := w.Apply(map[string]any{
			"name":     "Asha",
			"location": "Pune",
			"gender":   "Alien",
		})

		var ve *domain.ErrValidation
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, domain.DefaultProfile(), w.Profile())
	}
}

func TestView(t *testing.T) {
	w := wizard.New(nil)

	v := w.View(false)
	assert.Equal(t, "Let's start with the basics", v.Title)
	assert.Equal(t, 33, v.Progress)
	assert.False(t, v.CanBack)
	assert.True(t, v.CanNext)
	assert.False(t, v.CanSubmit)
	require.Len(t, v.Fields, 4)
	assert.Equal(t, []string{"Male", "Female", "Other", "Prefer not to say"}, v.Fields[2].Options)

	w.Next()
	v = w.View(false)
	assert.Equal(t, "Tell us about your work", v.Title)
	assert.Len(t, v.Fields[0].Options, 6)

	w.Next()
	v = w.View(false)
	assert.Equal(t, "Almost there! Final details", v.Title)
	assert.Equal(t, 100, v.Progress)
	assert.True(t, v.CanSubmit)
	assert.False(t, w.View(true).CanSubmit, "submit disabled while loading")
}

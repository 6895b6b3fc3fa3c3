package wizard

import "github.com/boddenberg/schemexpert-bfa-go/internal/domain"

var stepTitles = [Steps]string{
	"Let's start with the basics",
	"Tell us about your work",
	"Almost there! Final details",
}

// Field describes one form control.
type Field struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Kind        string   `json:"kind"` // text, number, choice, toggle
	Placeholder string   `json:"placeholder,omitempty"`
	Hint        string   `json:"hint,omitempty"`
	Optional    bool     `json:"optional,omitempty"`
	Options     []string `json:"options,omitempty"`
	Min         *int     `json:"min,omitempty"`
	Max         *int     `json:"max,omitempty"`
}

// View is the render model of the wizard.
type View struct {
	Step      int                `json:"step"`
	Steps     int                `json:"steps"`
	Title     string             `json:"title"`
	Progress  int                `json:"progress"`
	Fields    []Field            `json:"fields"`
	Profile   domain.UserProfile `json:"profile"`
	CanBack   bool               `json:"canBack"`
	CanNext   bool               `json:"canNext"`
	CanSubmit bool               `json:"canSubmit"`
	Loading   bool               `json:"loading"`
	Submitted bool               `json:"submitted"`
}

// View renders the current step. While loading the submit control is disabled.
func (w *Wizard) View(loading bool) View {
	return View{
		Step:      w.step,
		Steps:     Steps,
		Title:     stepTitles[w.step-1],
		Progress:  w.step * 100 / Steps,
		Fields:    stepFields(w.step),
		Profile:   w.profile,
		CanBack:   w.step > 1,
		CanNext:   w.step < Steps,
		CanSubmit: w.step == Steps && !loading,
		Loading:   loading,
		Submitted: w.submitted,
	}
}

func stepFields(step int) []Field {
	minAge, maxAge, zero := domain.MinAge, domain.MaxAge, 0
	switch step {
	case 1:
		return []Field{
			{Name: FieldName, Label: "Full Name", Kind: "text", Placeholder: "John Doe"},
			{Name: FieldAge, Label: "Age", Kind: "number", Placeholder: "e.g. 25", Min: &minAge, Max: &maxAge},
			{Name: FieldGender, Label: "Gender", Kind: "choice", Options: genderOptions()},
			{Name: FieldLocation, Label: "Location (City/State)", Kind: "text", Placeholder: "e.g. Mumbai, California, London"},
		}
	case 2:
		return []Field{
			{Name: FieldOccupation, Label: "Current Occupation", Kind: "choice", Options: occupationOptions()},
			{Name: FieldAnnualIncome, Label: "Annual Household Income", Kind: "number", Placeholder: "e.g. 500000", Min: &zero},
		}
	default:
		return []Field{
			{
				Name: FieldCategory, Label: "Social Category (Optional)", Kind: "text", Optional: true,
				Placeholder: "e.g. General, Veteran, Minority, etc.",
				Hint:        "Helps find category-specific reservations or schemes.",
			},
			{
				Name: FieldDisability, Label: "Person with Disability?", Kind: "toggle",
				Hint: "Enable this to see special disability benefits",
			},
		}
	}
}

func genderOptions() []string {
	out := make([]string, len(domain.Genders))
	for i, g := range domain.Genders {
		out[i] = string(g)
	}
	return out
}

func occupationOptions() []string {
	out := make([]string, len(domain.Occupations))
	for i, o := range domain.Occupations {
		out[i] = string(o)
	}
	return out
}

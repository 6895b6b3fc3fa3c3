package gateway

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
)

const personaInstruction = `You are SchemeXpert, an intelligent and empathetic government scheme advisor.
Your goal is to assist users in finding, understanding, and applying for government benefits, subsidies, and programs.
Keep your answers concise, encouraging, and easy to understand for a general audience.`

// SchemePrompt renders the recommendation prompt for a profile.
func SchemePrompt(p domain.UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following user profile, suggest 6 highly relevant government schemes (focusing on the user's likely region based on location: %s).\n\n", p.Location)
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %d\n", p.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "- Occupation: %s\n", p.Occupation)
	fmt.Fprintf(&b, "- Income: %s\n", strconv.FormatFloat(p.AnnualIncome, 'f', -1, 64))
	fmt.Fprintf(&b, "- Category: %s\n", p.CategoryOrDefault())
	fmt.Fprintf(&b, "- Disability: %t\n\n", p.Disability)
	b.WriteString("Provide schemes that differ in category (Health, Education, Business, etc.) if applicable.\n")
	b.WriteString(`Calculate a hypothetical "matchScore" (0-100) based on how well they fit the profile.` + "\n")
	b.WriteString("Provide a valid-looking official URL (it can be a generic government portal link if specific one isn't known, e.g., https://www.india.gov.in/ or state portal).\n")
	return b.String()
}

// SystemInstruction returns the chat persona, personalised with userContext
// when it is not blank.
func SystemInstruction(userContext string) string {
	if strings.TrimSpace(userContext) == "" {
		return personaInstruction
	}
	return personaInstruction + "\n\nHere is the context about the current user you are talking to:\n" +
		userContext + "\nUse this information to personalize your advice."
}

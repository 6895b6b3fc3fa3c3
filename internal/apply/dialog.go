// Package apply implements the application assistant dialog shown before
// the user is sent to a scheme's official portal.
package apply

import (
	"fmt"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
)

// Checklist is the static list of documents to prepare.
var Checklist = []string{
	"Identity Proof (Aadhaar/Voter ID)",
	"Income Certificate",
	"Residence Proof",
}

const (
	title      = "Application Gateway"
	disclaimer = "Ensure you have a stable internet connection before proceeding. The application process may take 10-15 minutes on the government portal."
	proceed    = "Proceed to Official Website"

	// TargetBlank asks the client to open the link in a new tab.
	TargetBlank = "_blank"
)

// Navigation is the outbound redirect the client performs on confirm.
type Navigation struct {
	URL    string `json:"url"`
	Target string `json:"target"`
}

// View is the render model of the dialog. Closed dialogs only carry Open.
type View struct {
	Open          bool     `json:"open"`
	SchemeID      string   `json:"schemeId,omitempty"`
	Title         string   `json:"title,omitempty"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Notice        string   `json:"notice,omitempty"`
	Checklist     []string `json:"checklist,omitempty"`
	Disclaimer    string   `json:"disclaimer,omitempty"`
	ProceedLabel  string   `json:"proceedLabel,omitempty"`
	Hostname      string   `json:"hostname,omitempty"`
	NewTabCaption string   `json:"newTabCaption,omitempty"`
}

// Dialog holds the open flag and the scheme being applied to.
type Dialog struct {
	open   bool
	scheme domain.Scheme
	host   string
}

// IsOpen reports whether the dialog is showing.
func (d *Dialog) IsOpen() bool { return d.open }

// Open shows the dialog for s. The scheme's officialLink must be an absolute
// http(s) URL; otherwise the dialog stays closed.
func (d *Dialog) Open(s domain.Scheme) error {
	host, err := domain.OfficialHost(s.OfficialLink)
	if err != nil {
		return err
	}
	d.open = true
	d.scheme = s
	d.host = host
	return nil
}

// Confirm closes the dialog and returns where the client should navigate.
func (d *Dialog) Confirm() (Navigation, error) {
	if !d.open {
		return Navigation{}, &domain.ErrConflict{Message: "no application dialog is open"}
	}
	nav := Navigation{URL: d.scheme.OfficialLink, Target: TargetBlank}
	d.Close()
	return nav, nil
}

// Close dismisses the dialog without navigating.
func (d *Dialog) Close() {
	d.open = false
	d.scheme = domain.Scheme{}
	d.host = ""
}

// View renders the dialog.
func (d *Dialog) View() View {
	if !d.open {
		return View{}
	}
	return View{
		Open:          true,
		SchemeID:      d.scheme.ID,
		Title:         title,
		Subtitle:      "Ready to apply for " + d.scheme.Name,
		Notice:        fmt.Sprintf("You are about to visit the official %s portal. SchemeXpert does not collect your documents directly.", d.scheme.Provider),
		Checklist:     Checklist,
		Disclaimer:    disclaimer,
		ProceedLabel:  proceed,
		Hostname:      d.host,
		NewTabCaption: "Opens in a new tab • " + d.host,
	}
}

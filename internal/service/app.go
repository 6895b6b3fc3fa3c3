package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/boddenberg/schemexpert-bfa-go/internal/apply"
	chatservice "github.com/boddenberg/schemexpert-bfa-go/internal/chat/service"
	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/port"
	"github.com/boddenberg/schemexpert-bfa-go/internal/results"
	"github.com/boddenberg/schemexpert-bfa-go/internal/wizard"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("service/app")

// Stage is the top-level screen the user is on.
type Stage string

const (
	StageHero    Stage = "hero"
	StageProfile Stage = "profile"
	StageResults Stage = "results"
)

// AppView aggregates everything the client renders.
type AppView struct {
	Stage      Stage               `json:"stage"`
	Loading    bool                `json:"loading"`
	BackLabel  string              `json:"backLabel,omitempty"`
	Heading    string              `json:"heading,omitempty"`
	Subheading string              `json:"subheading,omitempty"`
	Profile    *domain.UserProfile `json:"profile"`
	Wizard     *wizard.View        `json:"wizard,omitempty"`
	Results    *results.View       `json:"results,omitempty"`
	Dialog     apply.View          `json:"dialog"`
}

// App is the application controller of one browser session. It is the only
// writer of the user profile and owns the wizard, the scheme batch, the
// application dialog and the chat assistant. Safe for concurrent use; model
// calls run without holding the lock so views stay readable while loading.
type App struct {
	advisor port.SchemeAdvisor
	logger  *zap.Logger
	chat    *chatservice.Assistant
	flight  singleflight.Group

	mu        sync.Mutex
	started   bool
	loading   bool
	showEmpty bool // the last submit returned nothing
	profile   *domain.UserProfile
	schemes   []domain.Scheme
	wizard    *wizard.Wizard
	dialog    apply.Dialog
	inflight  string // singleflight key of the outstanding submit
	gen       uint64 // bumped on every submit and reset
}

// NewApp creates a controller on the hero screen with a fresh chat.
func NewApp(advisor port.SchemeAdvisor, logger *zap.Logger) *App {
	a := &App{
		advisor: advisor,
		logger:  logger,
		wizard:  wizard.New(nil),
		schemes: []domain.Scheme{},
	}
	a.chat = chatservice.NewAssistant(advisor, a, logger)
	return a
}

// Chat returns the session's chat assistant.
func (a *App) Chat() *chatservice.Assistant { return a.chat }

// Profile returns a copy of the submitted profile, or nil.
func (a *App) Profile() *domain.UserProfile {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.profile == nil {
		return nil
	}
	p := *a.profile
	return &p
}

// Schemes returns the current batch in returned order.
func (a *App) Schemes() []domain.Scheme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Scheme{}, a.schemes...)
}

// Loading reports whether a scheme request is outstanding.
func (a *App) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// ============================================================
// Navegação
// ============================================================

// Start leaves the hero screen.
func (a *App) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = true
}

// Back goes from results to the profile form, pre-filled with the current
// profile, or from the form to the hero screen.
func (a *App) Back() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stage() == StageResults && !a.loading {
		a.schemes = []domain.Scheme{}
		a.showEmpty = false
		a.wizard = wizard.New(a.profile)
		return
	}
	if !a.loading {
		a.started = false
	}
}

// Reset returns to the hero screen and forgets the profile and schemes.
// A scheme request still in flight is discarded when it completes.
func (a *App) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.gen++
	a.started = false
	a.loading = false
	a.showEmpty = false
	a.inflight = ""
	a.profile = nil
	a.schemes = []domain.Scheme{}
	a.wizard = wizard.New(nil)
	a.dialog.Close()
}

// ============================================================
// Wizard
// ============================================================

// UpdateProfile applies field changes to the in-progress profile.
func (a *App) UpdateProfile(patch map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireStage(StageProfile); err != nil {
		return err
	}
	return a.wizard.Apply(patch)
}

// WizardNext advances the form.
func (a *App) WizardNext() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireStage(StageProfile); err != nil {
		return err
	}
	a.wizard.Next()
	return nil
}

// WizardBack retreats the form.
func (a *App) WizardBack() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireStage(StageProfile); err != nil {
		return err
	}
	a.wizard.Back()
	return nil
}

// WizardView renders the form.
func (a *App) WizardView() wizard.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wizard.View(a.loading)
}

// ============================================================
// Submit / Retry
// ============================================================

// Submit finalises the wizard and fetches schemes for the resulting profile.
// Only one request may be outstanding; an identical duplicate (a client
// retrying the same submit) joins it instead of failing.
func (a *App) Submit(ctx context.Context) ([]domain.Scheme, error) {
	a.mu.Lock()
	if a.loading {
		key := flightKey(a.gen, a.wizard.Profile())
		if key != a.inflight {
			a.mu.Unlock()
			return nil, &domain.ErrConflict{Message: "recommendations are still loading"}
		}
		gen, profile := a.gen, *a.profile
		a.mu.Unlock()
		return a.await(ctx, key, gen, profile)
	}
	if err := a.requireStage(StageProfile); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	profile, err := a.wizard.Submit()
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	key, gen := a.begin(profile)
	a.mu.Unlock()

	return a.await(ctx, key, gen, profile)
}

// Retry resubmits the stored profile. It backs the retry action of the
// empty results state.
func (a *App) Retry(ctx context.Context) ([]domain.Scheme, error) {
	a.mu.Lock()
	if a.loading {
		a.mu.Unlock()
		return nil, &domain.ErrConflict{Message: "recommendations are still loading"}
	}
	if a.profile == nil {
		a.mu.Unlock()
		return nil, &domain.ErrConflict{Message: "no profile to retry, submit the form first"}
	}
	profile := *a.profile
	key, gen := a.begin(profile)
	a.mu.Unlock()

	return a.await(ctx, key, gen, profile)
}

// begin replaces the profile and enters the loading state. Called with a.mu held.
func (a *App) begin(profile domain.UserProfile) (string, uint64) {
	a.gen++
	p := profile
	a.profile = &p
	a.loading = true
	a.showEmpty = false
	a.schemes = []domain.Scheme{}
	a.inflight = flightKey(a.gen, profile)
	a.started = true
	return a.inflight, a.gen
}

func (a *App) await(ctx context.Context, key string, gen uint64, profile domain.UserProfile) ([]domain.Scheme, error) {
	ctx, span := tracer.Start(ctx, "App.Submit")
	defer span.End()

	// a client disconnecting must not cancel a call other requests may share
	callCtx := context.WithoutCancel(ctx)

	v, _, shared := a.flight.Do(key, func() (any, error) {
		a.mu.Lock()
		if a.gen != gen || !a.loading {
			current := append([]domain.Scheme{}, a.schemes...)
			a.mu.Unlock()
			return current, nil
		}
		a.mu.Unlock()

		start := time.Now()
		schemes := a.advisor.GenerateSchemes(callCtx, profile)

		a.mu.Lock()
		defer a.mu.Unlock()
		if a.gen != gen {
			a.logger.Info("discarding stale scheme batch", zap.Int("count", len(schemes)))
			return append([]domain.Scheme{}, a.schemes...), nil
		}
		a.schemes = schemes
		a.loading = false
		a.showEmpty = len(schemes) == 0
		a.inflight = ""

		a.logger.Info("scheme request completed",
			zap.Int("count", len(schemes)),
			zap.Duration("duration", time.Since(start)),
		)
		return append([]domain.Scheme{}, schemes...), nil
	})
	span.SetAttributes(attribute.Bool("submit.shared", shared))

	return v.([]domain.Scheme), nil
}

// flightKey fingerprints a profile so identical submits collapse. The
// generation keeps a submit made after a reset from joining a call the
// reset already abandoned.
func flightKey(gen uint64, p domain.UserProfile) string {
	b, _ := json.Marshal(p)
	return fmt.Sprintf("submit:%d:%s", gen, b)
}

// ============================================================
// Dialog
// ============================================================

// Select opens the application dialog for a scheme of the current batch.
func (a *App) Select(schemeID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.profile == nil {
		return &domain.ErrConflict{Message: "submit a profile before applying"}
	}
	for _, s := range a.schemes {
		if s.ID == schemeID {
			return a.dialog.Open(s)
		}
	}
	return &domain.ErrNotFound{Resource: "scheme", ID: schemeID}
}

// Confirm closes the dialog and returns the outbound navigation.
func (a *App) Confirm() (apply.Navigation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dialog.Confirm()
}

// CloseDialog dismisses the dialog.
func (a *App) CloseDialog() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dialog.Close()
}

// DialogView renders the dialog.
func (a *App) DialogView() apply.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dialog.View()
}

// ============================================================
// View
// ============================================================

// ResultsView renders the results area.
func (a *App) ResultsView() results.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return results.Build(a.schemes, a.loading, a.profile != nil)
}

// View renders the whole application.
func (a *App) View() AppView {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := AppView{
		Stage:   a.stage(),
		Loading: a.loading,
		Dialog:  a.dialog.View(),
	}
	if a.profile != nil {
		p := *a.profile
		v.Profile = &p
	}

	switch v.Stage {
	case StageProfile:
		wv := a.wizard.View(a.loading)
		v.Wizard = &wv
		v.BackLabel = "Back to Home"
		v.Heading = "Check Your Eligibility"
		v.Subheading = "Fill in the details below to let our AI find the best schemes for you."
	case StageResults:
		rv := results.Build(a.schemes, a.loading, a.profile != nil)
		v.Results = &rv
		v.BackLabel = "Edit Profile"
	}
	return v
}

func (a *App) stage() Stage {
	switch {
	case !a.started:
		return StageHero
	case a.loading || len(a.schemes) > 0 || a.showEmpty:
		return StageResults
	default:
		return StageProfile
	}
}

func (a *App) requireStage(s Stage) error {
	if cur := a.stage(); cur != s {
		return &domain.ErrConflict{Message: "not available on the " + string(cur) + " screen"}
	}
	return nil
}

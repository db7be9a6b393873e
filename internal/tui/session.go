// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"envsync-cli/internal/engine"
)

// Menu values.
const (
	menuGroupPrefix = "group:"
	menuSecurity    = "security"
	menuSave        = "save"
	menuSaveRestart = "save-restart"
	menuExit        = "exit"
	menuBack        = "back"

	menuClientMTLS = "pki-client-mtls"
	menuJWSKeypair = "pki-jws"
	menuSecret     = "secret"

	exitSave    = "save"
	exitDiscard = "discard"
	exitCancel  = "cancel"
)

type (
	// Actions are the operations the editor offers beside editing. A nil
	// action hides its menu entry.
	Actions struct {
		// Restart restarts the services that read the env files.
		Restart func(ctx context.Context) error
		// GenerateClientMTLS runs the PKI tool for client side mTLS artefacts.
		GenerateClientMTLS func(ctx context.Context) error
		// GenerateJWSKeypair runs the PKI tool for a JWS key pair.
		GenerateJWSKeypair func(ctx context.Context) error
		// NewSecret returns a fresh secret for SecretVariable.
		NewSecret func() (string, error)
		// SecretVariable is the env variable NewSecret values are written to.
		SecretVariable string
	}

	// SessionOption configures a Session.
	SessionOption func(*Session)

	// Session is the interactive editor: a main menu over the schema groups
	// that collects edits and hands them to the engine on save.
	Session struct {
		engine   *engine.Engine
		prompter Prompter
		actions  Actions
		edits    engine.Edits
		logger   *log.Logger
	}
)

// WithSessionLogger sets the logger.
func WithSessionLogger(logger *log.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates an editor over a loaded engine. Edits start at the
// engine's stored values.
func NewSession(e *engine.Engine, p Prompter, actions Actions, opts ...SessionOption) *Session {
	s := &Session{
		engine:   e,
		prompter: p,
		actions:  actions,
		edits:    e.Values(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Edits returns a copy of the current candidate values.
func (s *Session) Edits() engine.Edits {
	out := make(engine.Edits, len(s.edits))
	for ref, v := range s.edits {
		out[ref] = v
	}
	return out
}

// HasUnsavedChanges reports whether any edit differs from the stored value.
func (s *Session) HasUnsavedChanges() bool {
	return s.engine.HasUnsavedChanges(s.edits)
}

// Run shows the main menu until the user exits. Aborting the main menu is
// treated as Exit.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		choice, err := s.prompter.Select(s.mainTitle(), s.mainMenu())
		switch {
		case errors.Is(err, ErrCancelled):
			choice = menuExit
		case err != nil:
			return err
		}

		switch {
		case strings.HasPrefix(choice, menuGroupPrefix):
			if err := s.editGroup(strings.TrimPrefix(choice, menuGroupPrefix)); err != nil {
				return err
			}
		case choice == menuSecurity:
			if err := s.securityMenu(ctx); err != nil {
				return err
			}
		case choice == menuSave:
			if _, err := s.save(); err != nil {
				return err
			}
		case choice == menuSaveRestart:
			saved, err := s.save()
			if err != nil {
				return err
			}
			if saved {
				if err := s.restart(ctx); err != nil {
					return err
				}
			}
		case choice == menuExit:
			done, err := s.exit()
			if err != nil || done {
				return err
			}
		}
	}
}

func (s *Session) mainTitle() string {
	if s.HasUnsavedChanges() {
		return "Configuration (unsaved changes)"
	}
	return "Configuration"
}

func (s *Session) mainMenu() []Choice {
	groups := s.engine.Schema().Groups
	choices := make([]Choice, 0, len(groups)+4)
	for _, g := range groups {
		choices = append(choices, Choice{Label: "Edit " + g.Name, Value: menuGroupPrefix + g.ID})
	}
	if s.actions.GenerateClientMTLS != nil || s.actions.GenerateJWSKeypair != nil || s.actions.NewSecret != nil {
		choices = append(choices, Choice{Label: "Security tools", Value: menuSecurity})
	}
	choices = append(choices, Choice{Label: "Save", Value: menuSave})
	if s.actions.Restart != nil {
		choices = append(choices, Choice{Label: "Save and restart services", Value: menuSaveRestart})
	}
	return append(choices, Choice{Label: "Exit", Value: menuExit})
}

// editGroup shows the group form. Aborting it discards the form's changes.
func (s *Session) editGroup(id string) error {
	g, ok := s.engine.Schema().Group(id)
	if !ok {
		return fmt.Errorf("unknown group %q", id)
	}

	fields := make([]Field, len(g.Items))
	for i, it := range g.Items {
		fields[i] = Field{
			Title:       it.Name,
			Description: fmt.Sprintf("%s (%s)", it.EnvVar.Name, it.EnvVar.File),
			Variable:    it.EnvVar.Name,
			Value:       s.edits[engine.ItemRef{GroupID: g.ID, Name: it.Name}],
		}
	}

	edited, err := s.prompter.EditFields(g.Name, g.Description, fields)
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	for i, it := range g.Items {
		ref := engine.ItemRef{GroupID: g.ID, Name: it.Name}
		s.edits[ref] = edited[i].Value.As(it.Kind)
	}
	return nil
}

// save writes the edits. A failed save is reported to the user and returns
// false; only prompter failures are returned as errors.
func (s *Session) save() (bool, error) {
	report, err := s.engine.Save(s.edits)
	if err != nil {
		s.logger.Error("save failed", "err", err)
		return false, s.notify("Save failed", err.Error())
	}

	summary := report.String()
	if summary == "" {
		summary = "No changes to save."
	}
	return true, s.notify("Saved", summary)
}

func (s *Session) restart(ctx context.Context) error {
	if err := s.actions.Restart(ctx); err != nil {
		s.logger.Error("restart failed", "err", err)
		return s.notify("Restart failed", err.Error())
	}
	return s.notify("Services restarted", "All services were restarted.")
}

func (s *Session) securityMenu(ctx context.Context) error {
	var choices []Choice
	if s.actions.GenerateClientMTLS != nil {
		choices = append(choices, Choice{Label: "Generate client side mTLS artefacts", Value: menuClientMTLS})
	}
	if s.actions.GenerateJWSKeypair != nil {
		choices = append(choices, Choice{Label: "Generate JWS key pair", Value: menuJWSKeypair})
	}
	if s.actions.NewSecret != nil {
		choices = append(choices, Choice{Label: "Generate new ILP secret", Value: menuSecret})
	}
	choices = append(choices, Choice{Label: "Back", Value: menuBack})

	choice, err := s.prompter.Select("Security tools", choices)
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	switch choice {
	case menuClientMTLS:
		return s.runTool(ctx, "Client side mTLS artefacts", s.actions.GenerateClientMTLS)
	case menuJWSKeypair:
		return s.runTool(ctx, "JWS key pair", s.actions.GenerateJWSKeypair)
	case menuSecret:
		return s.newSecret()
	}
	return nil
}

func (s *Session) runTool(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		s.logger.Error("pki tool failed", "tool", name, "err", err)
		return s.notify(name+" failed", err.Error())
	}
	return s.notify(name, name+" generated.")
}

// newSecret writes a fresh secret to every line assigning SecretVariable.
// Items bound to that variable follow the new value unless they hold an
// unsaved edit.
func (s *Session) newSecret() error {
	value, err := s.actions.NewSecret()
	if err != nil {
		return s.notify("Secret generation failed", err.Error())
	}

	before := s.engine.Values()
	report, err := s.engine.PatchVariable(s.actions.SecretVariable, value)
	if err != nil {
		s.logger.Error("secret patch failed", "variable", s.actions.SecretVariable, "err", err)
		return s.notify("Secret generation failed", err.Error())
	}

	after := s.engine.Values()
	for ref, v := range s.edits {
		if v.Equal(before[ref]) {
			s.edits[ref] = after[ref]
		}
	}

	if len(report.Files) == 0 {
		return s.notify("New ILP secret", fmt.Sprintf("%s is not assigned in any env file; nothing was written.", s.actions.SecretVariable))
	}
	return s.notify("New ILP secret", "New ILP secret generated and written to disk.")
}

// exit reports whether the editor should close.
func (s *Session) exit() (bool, error) {
	if !s.HasUnsavedChanges() {
		return true, nil
	}

	choice, err := s.prompter.Select("You have unsaved changes", []Choice{
		{Label: "Save and exit", Value: exitSave},
		{Label: "Discard changes and exit", Value: exitDiscard},
		{Label: "Cancel", Value: exitCancel},
	})
	if errors.Is(err, ErrCancelled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch choice {
	case exitSave:
		return s.save()
	case exitDiscard:
		s.logger.Debug("discarding unsaved changes", "items", len(s.engine.Changed(s.edits)))
		return true, nil
	}
	return false, nil
}

func (s *Session) notify(title, body string) error {
	if err := s.prompter.Notify(title, body); err != nil && !errors.Is(err, ErrCancelled) {
		return err
	}
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"envsync-cli/internal/envfile"
	"envsync-cli/internal/schema"
)

type (
	// Choice is one entry of a menu.
	Choice struct {
		Label string
		Value string
	}

	// Field is one editable item of a group form. EditFields returns the
	// fields with Value replaced by what the user entered.
	Field struct {
		Title       string
		Description string
		Variable    string
		Value       schema.Value
	}

	// Prompter asks the user questions. Every method returns ErrCancelled
	// when the user aborts.
	Prompter interface {
		// Select shows a menu and returns the value of the chosen entry.
		Select(title string, choices []Choice) (string, error)
		// EditFields shows one form with an input per field.
		EditFields(title, description string, fields []Field) ([]Field, error)
		// Confirm asks a yes/no question.
		Confirm(title, description string, value bool) (bool, error)
		// Notify shows a message.
		Notify(title, body string) error
	}

	// HuhPrompter implements Prompter with huh forms.
	HuhPrompter struct {
		cfg Config
	}
)

// NewHuhPrompter creates a prompter using cfg.
func NewHuhPrompter(cfg Config) *HuhPrompter {
	return &HuhPrompter{cfg: cfg}
}

// Select implements Prompter.
func (p *HuhPrompter) Select(title string, choices []Choice) (string, error) {
	opts := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		opts[i] = huh.NewOption(c.Label, c.Value)
	}

	var selected string
	sel := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&selected)

	if err := p.run(huh.NewForm(huh.NewGroup(sel))); err != nil {
		return "", err
	}
	return selected, nil
}

// EditFields implements Prompter. String items get an Input, bool items a
// Confirm. Values that would not read back unchanged are rejected.
func (p *HuhPrompter) EditFields(title, description string, fields []Field) ([]Field, error) {
	strs := make([]string, len(fields))
	bools := make([]bool, len(fields))
	huhFields := make([]huh.Field, 0, len(fields))

	for i, f := range fields {
		if f.Value.Kind() == schema.KindBool {
			bools[i] = f.Value.Bool()
			huhFields = append(huhFields, huh.NewConfirm().
				Title(f.Title).
				Description(f.Description).
				Affirmative("True").
				Negative("False").
				Value(&bools[i]))
			continue
		}

		strs[i] = f.Value.String()
		variable := f.Variable
		huhFields = append(huhFields, huh.NewInput().
			Title(f.Title).
			Description(f.Description).
			Value(&strs[i]).
			Validate(func(s string) error {
				return envfile.ValidateValue(variable, s)
			}))
	}

	form := huh.NewForm(huh.NewGroup(huhFields...).Title(title).Description(description))
	if err := p.run(form); err != nil {
		return nil, err
	}

	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f
		if f.Value.Kind() == schema.KindBool {
			out[i].Value = schema.BoolValue(bools[i])
		} else {
			out[i].Value = schema.StringValue(strs[i])
		}
	}
	return out, nil
}

// Confirm implements Prompter.
func (p *HuhPrompter) Confirm(title, description string, value bool) (bool, error) {
	c := huh.NewConfirm().
		Title(title).
		Description(description).
		Value(&value)
	if err := p.run(huh.NewForm(huh.NewGroup(c))); err != nil {
		return false, err
	}
	return value, nil
}

// Notify implements Prompter.
func (p *HuhPrompter) Notify(title, body string) error {
	n := huh.NewNote().
		Title(title).
		Description(body).
		Next(true).
		NextLabel("OK")
	return p.run(huh.NewForm(huh.NewGroup(n)))
}

func (p *HuhPrompter) run(form *huh.Form) error {
	form = form.
		WithTheme(getHuhTheme(p.cfg.Theme)).
		WithAccessible(p.cfg.Accessible)
	if p.cfg.Width > 0 {
		form = form.WithWidth(p.cfg.Width)
	}
	if p.cfg.Output != nil {
		form = form.WithOutput(p.cfg.Output)
	}
	if p.cfg.Input != nil {
		form = form.WithInput(p.cfg.Input)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}
		return fmt.Errorf("form: %w", err)
	}
	return nil
}

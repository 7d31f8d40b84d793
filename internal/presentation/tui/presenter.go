// Package tui runs a questionnaire session in the terminal: survey prompts
// for field input, glamour for intro and analysis rendering.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/alpha-nc/intake"
	"github.com/alpha-nc/intake/pkg/schema"
)

// ErrQuit is returned when the user leaves the session from the menu.
var ErrQuit = errors.New("session quit")

// Presenter drives an interactive terminal session over an intake engine.
type Presenter struct {
	engine   *intake.Engine
	output   *termenv.Output
	markdown *glamour.TermRenderer
}

// New creates a Presenter for the given engine.
func New(engine *intake.Engine) (*Presenter, error) {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init markdown renderer: %w", err)
	}
	return &Presenter{
		engine:   engine,
		output:   termenv.DefaultOutput(),
		markdown: md,
	}, nil
}

// Run loops the session until submission succeeds or the user quits.
func (p *Presenter) Run(ctx context.Context, query url.Values) error {
	if err := p.engine.Start(ctx, query); err != nil {
		return err
	}
	defer p.engine.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.renderHeader()
		step := p.engine.CurrentStep()

		switch step.Type {
		case schema.StepIntro:
			if err := p.runIntro(ctx, step); err != nil {
				return p.mapQuit(err)
			}
		case schema.StepConfirm:
			p.renderConfirm()
			return nil
		case schema.StepForm:
			if err := p.runForm(ctx, step); err != nil {
				return p.mapQuit(err)
			}
		}
	}
}

func (p *Presenter) mapQuit(err error) error {
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

func (p *Presenter) renderHeader() {
	nav := p.engine.NavState()
	title := p.engine.CurrentStep().Title

	fmt.Println()
	fmt.Println(p.output.String(title).Bold())
	fmt.Println(p.output.String(fmt.Sprintf("%s (%d%%)", nav.ProgressText, nav.ProgressPct)).Faint())
	if nav.Banner != "" {
		fmt.Println(p.output.String(nav.Banner).Foreground(termenv.ANSIRed))
	}
}

func (p *Presenter) runIntro(ctx context.Context, step *schema.Step) error {
	var md strings.Builder
	if step.Subtitle != "" {
		md.WriteString(step.Subtitle + "\n\n")
	}
	for _, b := range step.Bullets {
		md.WriteString("- " + b + "\n")
	}
	if out, err := p.markdown.Render(md.String()); err == nil {
		fmt.Print(out)
	}

	start := false
	prompt := &survey.Confirm{Message: p.engine.NavState().NextLabel + "?", Default: true}
	if err := survey.AskOne(prompt, &start); err != nil {
		return err
	}
	if !start {
		return ErrQuit
	}
	_, err := p.engine.Next(ctx)
	return err
}

func (p *Presenter) renderConfirm() {
	fmt.Println()
	fmt.Println(p.output.String("Submission ID: " + p.engine.SubmissionID()).Bold())
	if analysis := p.engine.Analysis(); analysis != "" {
		if out, err := p.markdown.Render(analysis); err == nil {
			fmt.Print(out)
		} else {
			fmt.Println(analysis)
		}
	}
}

func (p *Presenter) runForm(ctx context.Context, step *schema.Step) error {
	for _, f := range p.engine.VisibleFields() {
		if err := p.askField(ctx, f); err != nil {
			return err
		}
	}

	result, err := p.engine.Next(ctx)
	if err != nil {
		return err
	}
	if !result.OK {
		for id, msg := range result.FieldErrors {
			fmt.Println(p.output.String(fmt.Sprintf("%s: %s", id, msg)).Foreground(termenv.ANSIRed))
		}
		return p.menu(ctx)
	}
	return nil
}

// menu lets the user choose how to continue after a validation failure.
func (p *Presenter) menu(ctx context.Context) error {
	choice := ""
	prompt := &survey.Select{
		Message: "Continue?",
		Options: []string{"Fix answers", "Previous step", "Restart", "Quit"},
		Default: "Fix answers",
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return err
	}
	switch choice {
	case "Previous step":
		p.engine.Prev(ctx)
	case "Restart":
		return p.engine.Restart(ctx, url.Values{})
	case "Quit":
		return ErrQuit
	}
	return nil
}

func (p *Presenter) askField(ctx context.Context, f *schema.Field) error {
	label := f.Label
	if label == "" {
		label = f.ID
	}
	if f.Unit != "" {
		label = fmt.Sprintf("%s (%s)", label, f.Unit)
	}

	switch f.Type {
	case schema.FieldSelect, schema.FieldRadio:
		answer := ""
		prompt := &survey.Select{Message: label, Options: f.Options}
		if current, ok := p.engine.Answer(f.ID); ok {
			if s, isStr := current.(string); isStr {
				prompt.Default = s
			}
		}
		if err := survey.AskOne(prompt, &answer); err != nil {
			return err
		}
		return p.engine.Edit(ctx, f.ID, answer)

	case schema.FieldCheckboxes:
		var selected []string
		prompt := &survey.MultiSelect{Message: label, Options: f.Options}
		if current, ok := p.engine.Answer(f.ID); ok {
			if list, isList := current.([]string); isList {
				prompt.Default = list
			}
		}
		if err := survey.AskOne(prompt, &selected); err != nil {
			return err
		}
		return p.engine.Edit(ctx, f.ID, selected)

	case schema.FieldCheckbox, schema.FieldCheckboxLink:
		checked := false
		message := label
		if f.Type == schema.FieldCheckboxLink && f.LinkURL != "" {
			message = fmt.Sprintf("%s (%s)", label, f.LinkURL)
		}
		prompt := &survey.Confirm{Message: message, Default: p.boolAnswer(f.ID)}
		if err := survey.AskOne(prompt, &checked); err != nil {
			return err
		}
		return p.engine.Edit(ctx, f.ID, checked)

	case schema.FieldHidden:
		return nil

	default:
		answer := ""
		prompt := &survey.Input{Message: label}
		if current, ok := p.engine.Answer(f.ID); ok {
			prompt.Default = fmt.Sprintf("%v", current)
		}
		if err := survey.AskOne(prompt, &answer); err != nil {
			return err
		}
		return p.engine.Edit(ctx, f.ID, answer)
	}
}

func (p *Presenter) boolAnswer(fieldID string) bool {
	v, _ := p.engine.Answer(fieldID)
	b, _ := v.(bool)
	return b
}

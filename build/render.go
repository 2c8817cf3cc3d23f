package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/skekre98/cfgstack/config"
	"github.com/skekre98/cfgstack/config/source"
)

// Result is a rendered build that has not necessarily been written yet.
type Result struct {
	Plan     Plan
	Document config.Table
	Text     string
}

// Status is the line printed after a successful write.
func (r *Result) Status() string {
	return fmt.Sprintf("Wrote %s using profile: %s", r.Plan.OutputName, r.Plan.ProfileFile())
}

// Render folds the plan's documents and renders the merged result without
// touching the output file.
//
// Returns a *MissingProfileError if the profile file does not exist and a
// wrapped *config.ParseError if any present document is malformed.
func Render(ctx context.Context, plan Plan) (*Result, error) {
	if err := plan.checkProfile(); err != nil {
		return nil, err
	}

	doc, err := config.Fold(ctx, plan.Sources()...)
	if err != nil {
		return nil, err
	}
	return plan.render(doc)
}

// Run renders the plan and replaces the output file. Nothing is written
// unless every document parsed.
func Run(ctx context.Context, plan Plan) (*Result, error) {
	res, err := Render(ctx, plan)
	if err != nil {
		return nil, err
	}
	if err := Write(res); err != nil {
		return nil, err
	}
	return res, nil
}

// Write atomically replaces the output file with the rendered text: readers
// see either the previous file or the new one, never a partial write.
func Write(res *Result) error {
	out := res.Plan.Output
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := renameio.WriteFile(out, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

// Check renders the plan and compares it with the current output file. It
// returns a unified diff, empty when the file is up to date. A missing output
// file counts as empty.
func Check(ctx context.Context, plan Plan) (*Result, string, error) {
	res, err := Render(ctx, plan)
	if err != nil {
		return nil, "", err
	}

	current, err := os.ReadFile(plan.Output)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("read %s: %w", plan.Output, err)
	}
	return res, Diff(plan.OutputName, string(current), res.Text), nil
}

// Encode renders doc in the given format, "toml" unless "yaml" is asked for.
func Encode(doc config.Table, format string) (string, error) {
	if format == "yaml" {
		return config.EmitYAML(doc)
	}
	return config.Emit(doc)
}

func (p Plan) render(doc config.Table) (*Result, error) {
	text, err := Encode(doc, p.Format)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", p.OutputName, err)
	}
	return &Result{Plan: p, Document: doc, Text: text}, nil
}

func (p Plan) checkProfile() error {
	ok, err := (&source.FileSource{Path: p.ProfilePath}).Exists()
	if err != nil {
		return fmt.Errorf("stat profile %s: %w", p.ProfilePath, err)
	}
	if ok {
		return nil
	}
	available, _ := ListProfiles(p.ProfilesDir)
	return &MissingProfileError{
		Profile:   p.Profile,
		Path:      p.ProfilePath,
		Available: available,
	}
}

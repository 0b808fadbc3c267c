// Package review runs the per-photo decision pipeline: estimate the subject's
// age, derive a probable capture date, compare it with the recorded one and,
// after confirmation, rewrite the metadata.
package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/quidome/photo-dater/pkg/agedate"
	"github.com/quidome/photo-dater/pkg/capturedate"
	"github.com/quidome/photo-dater/pkg/estimate"
	"github.com/quidome/photo-dater/pkg/retag"
	"github.com/quidome/photo-dater/pkg/scan"
)

// ErrAborted is returned by Run when a rewrite is declined. No further
// photos are processed.
var ErrAborted = errors.New("aborted: rewrite declined")

// Action describes what happened to a photo.
type Action string

const (
	ActionInRange        Action = "in_range"
	ActionRewritten      Action = "rewritten"
	ActionWouldRewrite   Action = "would_rewrite"
	ActionDeclined       Action = "declined"
	ActionSkippedMissing Action = "skipped_missing_capture_date"
	ActionSkippedInvalid Action = "skipped_unreadable_metadata"
)

// Outcome records the decision made for a single photo.
type Outcome struct {
	Path string

	EstimatedAge         int
	EstimatedCaptureDate time.Time
	RecordedCaptureDate  time.Time // zero when skipped
	DaysApart            int

	Action Action

	// ReadError explains a skip. WriteErrors holds suppressed write failures;
	// the photo may be partially rewritten when it is non-empty.
	ReadError   error
	WriteErrors []error
}

// Confirmer asks whether a photo's metadata should be rewritten. Returning
// false cancels the whole run.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(question string) (bool, error)

func (f ConfirmFunc) Confirm(question string) (bool, error) { return f(question) }

// Options tune the pipeline.
type Options struct {
	BirthDate     time.Time
	ThresholdDays int

	// DryRun reports would-be rewrites without prompting or writing.
	DryRun bool
}

// Reviewer wires the pipeline stages together.
type Reviewer struct {
	estimator estimate.Estimator
	reader    capturedate.Reader
	writer    retag.Writer
	confirmer Confirmer
	log       *zap.Logger
	opts      Options
}

// New builds a Reviewer. writer and confirmer may be nil in dry-run mode.
func New(e estimate.Estimator, r capturedate.Reader, w retag.Writer, c Confirmer, log *zap.Logger, opts Options) (*Reviewer, error) {
	if e == nil || r == nil {
		return nil, errors.New("review: estimator and reader are required")
	}
	if !opts.DryRun && (w == nil || c == nil) {
		return nil, errors.New("review: writer and confirmer are required unless dry-run")
	}
	if opts.ThresholdDays < 0 {
		return nil, fmt.Errorf("review: negative threshold %d", opts.ThresholdDays)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Reviewer{estimator: e, reader: r, writer: w, confirmer: c, log: log, opts: opts}, nil
}

// Photos lists the photos in dir that Run would process, in name order.
func Photos(dir string) ([]string, error) {
	rel, err := scan.Scan(os.DirFS(dir), ".", scan.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	paths := make([]string, 0, len(rel))
	for _, r := range rel {
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(r)))
	}
	return paths, nil
}

// Run reviews every photo in dir. It returns the outcomes gathered so far
// together with ErrAborted when a rewrite is declined, ctx.Err() when
// cancelled, or the first fatal estimation error.
func (rv *Reviewer) Run(ctx context.Context, dir string) ([]Outcome, error) {
	paths, err := Photos(dir)
	if err != nil {
		return nil, err
	}
	rv.log.Info("reviewing folder", zap.String("folder", dir), zap.Int("photos", len(paths)))

	outcomes := make([]Outcome, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		out, err := rv.Review(ctx, path)
		if errors.Is(err, ErrAborted) {
			outcomes = append(outcomes, out)
			return outcomes, err
		}
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// Review runs the pipeline for one photo.
func (rv *Reviewer) Review(ctx context.Context, path string) (Outcome, error) {
	out := Outcome{Path: path}
	log := rv.log.With(zap.String("file", path))

	age, err := rv.estimator.EstimateAge(ctx, path)
	if err != nil {
		return out, fmt.Errorf("estimate age of %s: %w", path, err)
	}
	out.EstimatedAge = age
	log.Info("estimated age", zap.Int("estimated_age", age))

	out.EstimatedCaptureDate = agedate.CaptureDate(age, rv.opts.BirthDate)
	log.Info("probable capture date", zap.String("estimated_capture_date", out.EstimatedCaptureDate.Format(agedate.DateLayout)))

	res := rv.reader.CaptureDate(path)
	switch res.Status {
	case capturedate.StatusFound:
	case capturedate.StatusMissingTag:
		out.Action, out.ReadError = ActionSkippedMissing, res.Err
		log.Warn("no recorded capture date, skipping", zap.Error(res.Err))
		return out, nil
	default:
		out.Action, out.ReadError = ActionSkippedInvalid, res.Err
		log.Warn("capture metadata unreadable, skipping", zap.Error(res.Err))
		return out, nil
	}
	out.RecordedCaptureDate = res.CapturedAt
	out.DaysApart = agedate.DaysApart(out.EstimatedCaptureDate, out.RecordedCaptureDate)
	log.Info("recorded capture date",
		zap.String("date_time_original", capturedate.Format(res.CapturedAt)),
		zap.Int("days_apart", out.DaysApart))

	if !agedate.Exceeds(out.EstimatedCaptureDate, out.RecordedCaptureDate, rv.opts.ThresholdDays) {
		out.Action = ActionInRange
		return out, nil
	}

	if rv.opts.DryRun {
		out.Action = ActionWouldRewrite
		log.Info("capture date out of range, dry run leaves it unchanged")
		return out, nil
	}

	ok, err := rv.confirmer.Confirm(Question(path))
	if err != nil {
		return out, fmt.Errorf("confirm rewrite of %s: %w", path, err)
	}
	if !ok {
		out.Action = ActionDeclined
		log.Info("rewrite declined, stopping")
		return out, ErrAborted
	}

	rv.rewrite(log, &out)
	out.Action = ActionRewritten
	return out, nil
}

// rewrite performs both writes independently. Failures are logged and kept on
// the outcome but never stop the run.
func (rv *Reviewer) rewrite(log *zap.Logger, out *Outcome) {
	if err := rv.writer.SetCaptureDate(out.Path, out.EstimatedCaptureDate); err != nil {
		log.Error("updating capture date failed", zap.Error(err))
		out.WriteErrors = append(out.WriteErrors, err)
	}

	desc := agedate.Description(rv.opts.BirthDate, out.EstimatedCaptureDate)
	if err := rv.writer.SetDescription(out.Path, desc); err != nil {
		log.Error("adding description failed", zap.Error(err))
		out.WriteErrors = append(out.WriteErrors, err)
	}
}

// Question is the confirmation text shown for a photo.
func Question(path string) string {
	return fmt.Sprintf("The estimated date of the photo %s differs significantly from the EXIF date. Do you want to update the EXIF date?", filepath.Base(path))
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/quidome/photo-dater/pkg/agedate"
	"github.com/quidome/photo-dater/pkg/capturedate"
	"github.com/quidome/photo-dater/pkg/config"
	"github.com/quidome/photo-dater/pkg/estimate"
	"github.com/quidome/photo-dater/pkg/logging"
	"github.com/quidome/photo-dater/pkg/prompt"
	"github.com/quidome/photo-dater/pkg/retag"
	"github.com/quidome/photo-dater/pkg/review"
	"github.com/quidome/photo-dater/pkg/scan"
)

const version = "0.1.0"

// metadataStore reads and writes capture metadata; retag.Store in production.
type metadataStore interface {
	retag.Writer
	capturedate.Reader
	Close() error
}

// deps are the external collaborators, replaced in tests.
type deps struct {
	newEstimator func(ctx context.Context, cfg *config.Config, log *zap.Logger) (estimate.Estimator, error)
	newStore     func(log *zap.Logger) (metadataStore, error)
}

func defaultDeps() deps {
	return deps{
		newEstimator: newEstimator,
		newStore: func(log *zap.Logger) (metadataStore, error) {
			s, err := retag.New(log)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(defaultDeps()).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(d deps) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "photo-dater",
		Short: "Correct photo capture dates from the subject's estimated age",
		Long: "photo-dater estimates the age of the person in each photo of a folder, derives a probable capture date " +
			"from their year of birth and offers to rewrite the EXIF capture date when it is more than the threshold off.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runReview(cmd, d, configFile)
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	config.RegisterFlags(rootCmd.Flags())

	rootCmd.AddCommand(newScanCmd(d))

	return rootCmd
}

func runReview(cmd *cobra.Command, d deps, configFile string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	v := viper.New()
	if err := config.Bind(v, flags); err != nil {
		return err
	}
	if err := config.ReadFile(v, configFile); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	// Prompts go to stderr so --json output stays clean.
	p := prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr())
	if !config.IsSet(v, flags, config.KeyFolderPath) {
		if cfg.FolderPath, err = p.String("Folder path", cfg.FolderPath); err != nil {
			return err
		}
	}
	if cfg.YearOfBirth == 0 {
		if cfg.YearOfBirth, err = p.Int("Year of birth"); err != nil {
			return err
		}
		if err := config.ValidateYear(cfg.YearOfBirth); err != nil {
			return err
		}
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	est, err := d.newEstimator(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("set up %s estimator: %w", cfg.Estimator.Backend, err)
	}

	var (
		reader    capturedate.Reader = capturedate.ExifReader{}
		writer    retag.Writer
		confirmer review.Confirmer
	)
	store, err := d.newStore(log)
	switch {
	case err == nil:
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("closing exiftool failed", zap.Error(err))
			}
		}()
		reader = capturedate.Chain(capturedate.ExifReader{}, store)
		writer = store
	case cfg.DryRun:
		log.Debug("exiftool unavailable, reading JPEG metadata only", zap.Error(err))
	default:
		return err
	}
	if !cfg.DryRun {
		confirmer = p
	}

	rv, err := review.New(est, reader, writer, confirmer, log, review.Options{
		BirthDate:     cfg.BirthDate(),
		ThresholdDays: cfg.ThresholdDays,
		DryRun:        cfg.DryRun,
	})
	if err != nil {
		return err
	}

	outcomes, runErr := rv.Run(ctx, cfg.FolderPath)

	if cfg.JSON {
		if err := writeJSON(cmd.OutOrStdout(), outcomes); err != nil {
			return err
		}
	} else {
		for _, o := range outcomes {
			cmd.Println(describe(o))
		}
	}

	if errors.Is(runErr, review.ErrAborted) {
		cmd.SilenceErrors = true
		cmd.PrintErrln("Aborted!")
	}
	return runErr
}

func newEstimator(ctx context.Context, cfg *config.Config, log *zap.Logger) (estimate.Estimator, error) {
	switch cfg.Estimator.Backend {
	case config.EstimatorRekognition:
		return estimate.NewRekognitionFromConfig(ctx, cfg.Estimator.AWSRegion, log)
	default:
		return estimate.NewDeepFace(cfg.Estimator.DeepFaceURL,
			estimate.WithHTTPClient(&http.Client{Timeout: cfg.Estimator.DeepFaceTimeout}),
			estimate.WithLogger(log),
		), nil
	}
}

func describe(o review.Outcome) string {
	name := filepath.Base(o.Path)
	switch o.Action {
	case review.ActionSkippedMissing, review.ActionSkippedInvalid:
		return fmt.Sprintf("%s: %s (%v)", name, o.Action, o.ReadError)
	case review.ActionDeclined:
		return fmt.Sprintf("%s: %s", name, o.Action)
	}

	line := fmt.Sprintf("%s: %s (age %d, estimated %s, recorded %s, %d days apart)",
		name, o.Action, o.EstimatedAge,
		o.EstimatedCaptureDate.Format(agedate.DateLayout),
		o.RecordedCaptureDate.Format(agedate.DateLayout),
		o.DaysApart)
	if len(o.WriteErrors) > 0 {
		line += fmt.Sprintf(" [%d write errors]", len(o.WriteErrors))
	}
	return line
}

type jsonOutcome struct {
	Path                 string     `json:"path"`
	Action               string     `json:"action"`
	EstimatedAge         int        `json:"estimated_age"`
	EstimatedCaptureDate time.Time  `json:"estimated_capture_date"`
	RecordedCaptureDate  *time.Time `json:"recorded_capture_date,omitempty"`
	DaysApart            int        `json:"days_apart"`
	ReadError            string     `json:"read_error,omitempty"`
	WriteErrors          []string   `json:"write_errors,omitempty"`
}

func writeJSON(w io.Writer, outcomes []review.Outcome) error {
	out := make([]jsonOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		j := jsonOutcome{
			Path:                 o.Path,
			Action:               string(o.Action),
			EstimatedAge:         o.EstimatedAge,
			EstimatedCaptureDate: o.EstimatedCaptureDate,
			DaysApart:            o.DaysApart,
		}
		if !o.RecordedCaptureDate.IsZero() {
			rec := o.RecordedCaptureDate
			j.RecordedCaptureDate = &rec
		}
		if o.ReadError != nil {
			j.ReadError = o.ReadError.Error()
		}
		for _, err := range o.WriteErrors {
			j.WriteErrors = append(j.WriteErrors, err.Error())
		}
		out = append(out, j)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newScanCmd(d deps) *cobra.Command {
	var asJSON bool

	scanCmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "List the photos a review would process",
		Long:  "Scan a directory and print each photo the review would process together with its recorded capture date.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			records, err := scan.ScanRecords(os.DirFS(dir), ".", scan.DefaultOptions())
			if err != nil {
				return err
			}

			// exiftool is optional here; without it PNGs report unreadable.
			var reader capturedate.Reader = capturedate.ExifReader{}
			if store, err := d.newStore(zap.NewNop()); err == nil {
				defer func() { _ = store.Close() }()
				reader = capturedate.Chain(capturedate.ExifReader{}, store)
			}

			type entry struct {
				scan.Record
				CaptureStatus string     `json:"capture_status"`
				CapturedAt    *time.Time `json:"captured_at,omitempty"`
			}

			entries := make([]entry, 0, len(records))
			for _, r := range records {
				res := reader.CaptureDate(filepath.Join(dir, filepath.FromSlash(r.Path)))
				e := entry{Record: r, CaptureStatus: string(res.Status)}
				if res.Found() {
					at := res.CapturedAt
					e.CapturedAt = &at
				}
				entries = append(entries, e)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			for _, e := range entries {
				if e.CapturedAt != nil {
					cmd.Printf("%s\t%s\n", e.Path, capturedate.Format(*e.CapturedAt))
					continue
				}
				cmd.Printf("%s\t%s\n", e.Path, e.CaptureStatus)
			}
			return nil
		},
	}

	scanCmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return scanCmd
}

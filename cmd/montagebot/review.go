package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"montagebot/internal/model"
	"montagebot/internal/service"
)

var reviewDays int

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List entries flagged for review",
	Args:  cobra.NoArgs,
	RunE:  runReview,
}

var (
	resolveHalf    string
	resolveLabel   string
	resolveOutside bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve date",
	Short: "Confirm the location of a flagged entry by hand",
	Long: `Confirm the location of the attempted check-ins of a date (or only
--half). The location is accepted and labelled with --label, which defaults
to the reference area label.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	reviewCmd.Flags().IntVar(&reviewDays, "days", 30, "How many days back to look")
	resolveCmd.Flags().StringVar(&resolveHalf, "half", "", "Only resolve morning or evening")
	resolveCmd.Flags().StringVar(&resolveLabel, "label", "", "Location label (default reference label)")
	resolveCmd.Flags().BoolVar(&resolveOutside, "outside", false, "Keep the check-in outside the reference area")
	reviewCmd.AddCommand(resolveCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	if reviewDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	to := a.today()
	entries, err := a.entries.NeedingReview(cmd.Context(), to.AddDays(-(reviewDays - 1)), to)
	if err != nil {
		return err
	}
	printReviewList(cmd.OutOrStdout(), entries)
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	date, err := model.ParseDate(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	settings, err := a.settings(cmd.Context())
	if err != nil {
		return err
	}
	recorder := service.NewCheckInRecorder(a.entries, settings, time.Now, a.log)

	entry, err := a.entries.GetByDate(cmd.Context(), date)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("no entry for %s", date)
	}
	halves, err := resolveHalves(entry, resolveHalf)
	if err != nil {
		return err
	}

	label := resolveLabel
	if label == "" {
		label = settings.Current().ReferenceLabel
	}
	entry, err = recorder.ResolveReview(cmd.Context(), date, halves, label, !resolveOutside)
	if err != nil {
		return err
	}
	printEntry(cmd.OutOrStdout(), entry, a.loc)
	return nil
}

// resolveHalves picks the halves to resolve: the named one, or every
// attempted half.
func resolveHalves(e *model.WorkEntry, raw string) ([]model.Half, error) {
	if raw != "" {
		h, err := model.ParseHalf(raw)
		if err != nil {
			return nil, err
		}
		return []model.Half{h}, nil
	}
	var halves []model.Half
	for _, h := range model.Halves {
		if e.Half(h).Attempted() {
			halves = append(halves, h)
		}
	}
	if len(halves) == 0 {
		return nil, fmt.Errorf("no check-in recorded on %s", e.Date)
	}
	return halves, nil
}

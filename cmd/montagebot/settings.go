package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"montagebot/internal/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the reminder settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var (
	setMorning        string
	setEvening        string
	setMorningEnabled bool
	setEveningEnabled bool
	setCenter         string
	setRadius         float64
	setAccuracy       float64
	setLabel          string
	setInterval       time.Duration
)

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change reminder settings",
	Long: `Change reminder settings. Only the given flags are applied. A running
serve process picks the change up on its next clock watch tick.`,
	Args: cobra.NoArgs,
	RunE: runSettingsSet,
}

func init() {
	f := settingsSetCmd.Flags()
	f.StringVar(&setMorning, "morning", "", "Morning window HH:MM-HH:MM")
	f.StringVar(&setEvening, "evening", "", "Evening window HH:MM-HH:MM")
	f.BoolVar(&setMorningEnabled, "morning-enabled", true, "Enable morning reminders")
	f.BoolVar(&setEveningEnabled, "evening-enabled", true, "Enable evening reminders")
	f.StringVar(&setCenter, "center", "", "Reference center as lat,lon")
	f.Float64Var(&setRadius, "radius", 0, "Reference radius in meters")
	f.Float64Var(&setAccuracy, "accuracy", 0, "Minimum accuracy in meters")
	f.StringVar(&setLabel, "label", "", "Reference area label")
	f.DurationVar(&setInterval, "interval", 0, "Periodic check interval (at least 15m)")
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	settings, err := a.settings(cmd.Context())
	if err != nil {
		return err
	}
	printSettings(cmd.OutOrStdout(), settings.Current())
	return nil
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	apply, err := settingsPatchFromFlags(cmd)
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
	next, err := settings.Update(cmd.Context(), func(s *model.ReminderSettings) error {
		for _, fn := range apply {
			if err := fn(s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	printSettings(cmd.OutOrStdout(), next)
	return nil
}

func settingsPatchFromFlags(cmd *cobra.Command) ([]func(*model.ReminderSettings) error, error) {
	flags := cmd.Flags()
	var apply []func(*model.ReminderSettings) error

	windows := []struct {
		half    model.Half
		rng     string
		enabled bool
		rngFlag string
		onFlag  string
	}{
		{model.HalfMorning, setMorning, setMorningEnabled, "morning", "morning-enabled"},
		{model.HalfEvening, setEvening, setEveningEnabled, "evening", "evening-enabled"},
	}
	for _, w := range windows {
		if flags.Changed(w.rngFlag) {
			start, end, err := parseWindowRange(w.rng)
			if err != nil {
				return nil, err
			}
			apply = append(apply, func(s *model.ReminderSettings) error {
				win := s.Window(w.half)
				win.Start, win.End = start, end
				s.SetWindow(w.half, win)
				return nil
			})
		}
		if flags.Changed(w.onFlag) {
			apply = append(apply, func(s *model.ReminderSettings) error {
				win := s.Window(w.half)
				win.Enabled = w.enabled
				s.SetWindow(w.half, win)
				return nil
			})
		}
	}

	if flags.Changed("center") {
		lat, lon, err := parseCenter(setCenter)
		if err != nil {
			return nil, err
		}
		apply = append(apply, func(s *model.ReminderSettings) error {
			s.CenterLat, s.CenterLon = lat, lon
			return nil
		})
	}
	if flags.Changed("radius") {
		apply = append(apply, func(s *model.ReminderSettings) error {
			s.RadiusMeters = setRadius
			return nil
		})
	}
	if flags.Changed("accuracy") {
		apply = append(apply, func(s *model.ReminderSettings) error {
			s.MinAccuracyMeters = setAccuracy
			return nil
		})
	}
	if flags.Changed("label") {
		apply = append(apply, func(s *model.ReminderSettings) error {
			s.ReferenceLabel = setLabel
			return nil
		})
	}
	if flags.Changed("interval") {
		apply = append(apply, func(s *model.ReminderSettings) error {
			s.CheckIntervalMinutes = int(setInterval / time.Minute)
			return nil
		})
	}

	if len(apply) == 0 {
		return nil, fmt.Errorf("nothing to change, see --help")
	}
	return apply, nil
}

// parseCenter reads "lat,lon".
func parseCenter(raw string) (float64, float64, error) {
	rawLat, rawLon, ok := strings.Cut(raw, ",")
	if !ok {
		return 0, 0, fmt.Errorf("center %q: want lat,lon", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("center latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(rawLon), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("center longitude: %w", err)
	}
	return lat, lon, nil
}

package main

import (
	"time"

	"github.com/spf13/cobra"

	"montagebot/internal/location"
	"montagebot/internal/model"
	"montagebot/internal/service"
)

var (
	checkinDate     string
	checkinLat      float64
	checkinLon      float64
	checkinAccuracy float64
	checkinLabel    string
)

var checkinCmd = &cobra.Command{
	Use:   "checkin morning|evening",
	Short: "Record a morning or evening check-in",
	Long: `Record a check-in for today (or --date) at the current time.
Without --lat/--lon the check-in is stored without a location and flagged
for review.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckIn,
}

func init() {
	checkinCmd.Flags().StringVar(&checkinDate, "date", "", "Date as YYYY-MM-DD (default today)")
	checkinCmd.Flags().Float64Var(&checkinLat, "lat", 0, "Latitude in degrees")
	checkinCmd.Flags().Float64Var(&checkinLon, "lon", 0, "Longitude in degrees")
	checkinCmd.Flags().Float64Var(&checkinAccuracy, "accuracy", 0, "Horizontal accuracy in meters")
	checkinCmd.Flags().StringVar(&checkinLabel, "label", "", "Location label")
	checkinCmd.MarkFlagsRequiredTogether("lat", "lon")
}

func runCheckIn(cmd *cobra.Command, args []string) error {
	half, err := model.ParseHalf(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := a.dateFlag(checkinDate)
	if err != nil {
		return err
	}
	recorder, err := a.recorder(cmd.Context())
	if err != nil {
		return err
	}

	var provider location.FixedProvider
	if cmd.Flags().Changed("lat") {
		provider.Reading = &location.Reading{Lat: checkinLat, Lon: checkinLon, AccuracyMeters: checkinAccuracy}
	}
	reading := provider.RequestFix(cmd.Context(), a.cfg.LocationTimeout)

	entry, err := recorder.RecordCheckIn(cmd.Context(), half, date, time.Now(), reading, service.WithLabel(checkinLabel))
	if err != nil {
		return err
	}
	printEntry(cmd.OutOrStdout(), entry, a.loc)
	return nil
}

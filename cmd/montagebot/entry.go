package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"montagebot/internal/model"
	"montagebot/internal/service"
)

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the entry for a date (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

var dayTypeCmd = &cobra.Command{
	Use:   "day-type work|off [date]",
	Short: "Mark a date as a work day or a day off",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDayType,
}

var (
	travelStart      string
	travelArrive     string
	travelLabelStart string
	travelLabelEnd   string
	travelClear      bool
)

var travelCmd = &cobra.Command{
	Use:   "travel [date]",
	Short: "Set or clear the commute of a date",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTravel,
}

var (
	editWorkStart  string
	editWorkEnd    string
	editBreak      int
	editNote       string
	editClearTimes bool
	editClearNote  bool
)

var editCmd = &cobra.Command{
	Use:   "edit date",
	Short: "Correct the work times, break or note of an existing entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete date",
	Short: "Delete the entry for a date",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	travelCmd.Flags().StringVar(&travelStart, "start", "", "Departure time HH:MM")
	travelCmd.Flags().StringVar(&travelArrive, "arrive", "", "Arrival time HH:MM")
	travelCmd.Flags().StringVar(&travelLabelStart, "from", "", "Departure place")
	travelCmd.Flags().StringVar(&travelLabelEnd, "to", "", "Arrival place")
	travelCmd.Flags().BoolVar(&travelClear, "clear", false, "Remove all travel fields")
	travelCmd.MarkFlagsMutuallyExclusive("clear", "start")
	travelCmd.MarkFlagsMutuallyExclusive("clear", "arrive")

	editCmd.Flags().StringVar(&editWorkStart, "start", "", "Work start HH:MM")
	editCmd.Flags().StringVar(&editWorkEnd, "end", "", "Work end HH:MM")
	editCmd.Flags().IntVar(&editBreak, "break", 0, "Break in minutes")
	editCmd.Flags().StringVar(&editNote, "note", "", "Free text note")
	editCmd.Flags().BoolVar(&editClearTimes, "clear-times", false, "Reset work start and end first")
	editCmd.Flags().BoolVar(&editClearNote, "clear-note", false, "Remove the note")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := a.dateFlag(optionalArg(args, 0))
	if err != nil {
		return err
	}
	entry, err := a.entries.GetByDate(cmd.Context(), date)
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No entry for %s.\n", date)
		return nil
	}
	printEntry(cmd.OutOrStdout(), entry, a.loc)
	return nil
}

func runDayType(cmd *cobra.Command, args []string) error {
	dayType, err := model.ParseDayType(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := a.dateFlag(optionalArg(args, 1))
	if err != nil {
		return err
	}
	recorder, err := a.recorder(cmd.Context())
	if err != nil {
		return err
	}
	entry, err := recorder.SetDayType(cmd.Context(), date, dayType)
	if err != nil {
		return err
	}
	printEntry(cmd.OutOrStdout(), entry, a.loc)
	return nil
}

func runTravel(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := a.dateFlag(optionalArg(args, 0))
	if err != nil {
		return err
	}
	recorder, err := a.recorder(cmd.Context())
	if err != nil {
		return err
	}

	var entry *model.WorkEntry
	if travelClear {
		entry, err = recorder.ClearTravelEvents(cmd.Context(), date)
	} else {
		var ev service.TravelEvent
		ev, err = travelEventFromFlags(cmd, date, a)
		if err != nil {
			return err
		}
		entry, err = recorder.SetTravelEvent(cmd.Context(), date, ev)
	}
	if err != nil {
		return err
	}
	printEntry(cmd.OutOrStdout(), entry, a.loc)
	return nil
}

func travelEventFromFlags(cmd *cobra.Command, date model.Date, a *app) (service.TravelEvent, error) {
	var ev service.TravelEvent
	flags := cmd.Flags()
	if flags.Changed("start") {
		at, err := parseClockOn(travelStart, date, a.loc)
		if err != nil {
			return ev, err
		}
		ev.StartAt = at
	}
	if flags.Changed("arrive") {
		at, err := parseClockOn(travelArrive, date, a.loc)
		if err != nil {
			return ev, err
		}
		ev.ArriveAt = at
	}
	if flags.Changed("from") {
		ev.LabelStart = &travelLabelStart
	}
	if flags.Changed("to") {
		ev.LabelEnd = &travelLabelEnd
	}
	if ev == (service.TravelEvent{}) {
		return ev, fmt.Errorf("nothing to set: use --start, --arrive, --from, --to or --clear")
	}
	return ev, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	date, err := model.ParseDate(args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	patch := service.EntryPatch{ClearWorkTimes: editClearTimes, ClearNote: editClearNote}
	if flags.Changed("start") {
		t, err := model.ParseTimeOfDay(editWorkStart)
		if err != nil {
			return err
		}
		patch.WorkStart = &t
	}
	if flags.Changed("end") {
		t, err := model.ParseTimeOfDay(editWorkEnd)
		if err != nil {
			return err
		}
		patch.WorkEnd = &t
	}
	if flags.Changed("break") {
		patch.BreakMinutes = &editBreak
	}
	if flags.Changed("note") {
		patch.Note = &editNote
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	recorder, err := a.recorder(cmd.Context())
	if err != nil {
		return err
	}
	entry, err := recorder.UpdateEntry(cmd.Context(), date, patch)
	if err != nil {
		return err
	}
	printEntry(cmd.OutOrStdout(), entry, a.loc)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	date, err := model.ParseDate(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	recorder, err := a.recorder(cmd.Context())
	if err != nil {
		return err
	}
	entry, err := recorder.DeleteEntry(cmd.Context(), date)
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No entry for %s.\n", date)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry for %s.\n", date)
	return nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

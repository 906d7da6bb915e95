package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"montagebot/internal/service"
)

const defaultExportDays = 31

var (
	exportFrom string
	exportTo   string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries as semicolon separated CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First date YYYY-MM-DD (default 30 days before --to)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last date YYYY-MM-DD (default today)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, _ []string) (err error) {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	to, err := a.dateFlag(exportTo)
	if err != nil {
		return err
	}
	from := to.AddDays(-(defaultExportDays - 1))
	if exportFrom != "" {
		if from, err = a.dateFlag(exportFrom); err != nil {
			return err
		}
	}
	if to < from {
		return fmt.Errorf("--to %s is before --from %s", to, from)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, ferr := os.Create(exportOut)
		if ferr != nil {
			return fmt.Errorf("create %s: %w", exportOut, ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	n, err := service.NewExporter(a.entries, a.loc).Export(cmd.Context(), from, to, w)
	if err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries (%s to %s) to %s.\n", n, from, to, exportOut)
	}
	return nil
}

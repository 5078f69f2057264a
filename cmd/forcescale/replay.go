package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/CK6170/forcescale-go/internal/replay"
)

func NewReplayCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Replay a recorded input session and summarize the readings",
		Long: `Replay a recorded input session through a fresh scale.

FILE is CSV with one event per row: "force,1.4", "down,1.2", "move,1.3", "up",
"tare", or a bare number for a force sample. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			var in io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return pkgerrors.Wrap(err, "open recording")
				}
				defer f.Close()
				in = f
			}

			events, err := replay.Parse(in)
			if err != nil {
				return pkgerrors.Wrapf(err, "parse %s", args[0])
			}
			rep, err := replay.Run(events)
			if err != nil {
				return err
			}
			logrus.WithField("events", len(events)).Debug("Replay finished")

			out := cmd.OutOrStdout()
			if !quiet {
				printSteps(out, rep)
			}
			printSummary(out, rep.Summary)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary")
	return cmd
}

func printSteps(out io.Writer, rep *replay.Report) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tEVENT\tFORCE\tDISPLAY\tACTIVE\tTARE\tOFFSET")
	for i, st := range rep.Steps {
		display := st.Display
		if !st.Result.Handled {
			display = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\t%v\t%s\t%.1f\n",
			i+1, st.Event.Kind, st.Event.Force, display, st.Result.State.Active, st.Result.Tare, st.Offset)
	}
	_ = tw.Flush()
	fmt.Fprintln(out)
}

func printSummary(out io.Writer, s replay.Summary) {
	fmt.Fprintf(out, "events %d, display updates %d, active %d, over capacity %d, tares %d\n",
		s.Events, s.Updates, s.Active, s.Saturated, s.Tares)
	fmt.Fprintf(out, "mass mean %.1f g, stddev %.1f g, max %.0f g\n", s.MeanMass, s.StdDevMass, s.MaxMass)
}

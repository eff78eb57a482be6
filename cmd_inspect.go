package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pivolan/dashboardr/domain/models"
	"github.com/pivolan/dashboardr/pipeline"
	"github.com/pivolan/dashboardr/plot"
)

type inspectFlags struct {
	data          dataFlags
	chartType     string
	x, y, yEnd    string
	group, weight string
	mode          string
	bins          int
	breaks        []float64
	binLabels     []string
	order         []string
	groupOrder    []string
	includeNA     bool
	naLabel       string
	percentWithin string
	decimals      int
	format        string
	style         string
}

func (f *inspectFlags) request() pipeline.Request {
	req := pipeline.Request{
		Type:           models.ChartType(f.chartType),
		XVar:           f.x,
		YVar:           f.y,
		YEndVar:        f.yEnd,
		GroupVar:       f.group,
		WeightVar:      f.weight,
		IncludeMissing: f.includeNA,
		MissingLabel:   f.naLabel,
		Order:          f.order,
		GroupOrder:     f.groupOrder,
		Mode:           models.AggregationMode(f.mode),
		PercentWithin:  pipeline.PercentBase(f.percentWithin),
		Backend:        string(models.BackendTable),
		Display: models.DisplayOptions{
			Table: models.TableOptions{Format: f.format, Style: f.style},
		},
	}
	if f.bins > 0 || len(f.breaks) > 0 {
		req.Bins = &models.BinSpec{Count: f.bins, Breaks: f.breaks, Labels: f.binLabels}
	}
	if f.decimals >= 0 {
		d := f.decimals
		req.Display.Decimals = &d
	}
	return req
}

// NewInspectCommand один график через пайплайн, результат таблицей в консоль
func NewInspectCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	f := &inspectFlags{}
	inspectCommand := &cobra.Command{
		Use:   "inspect",
		Short: "run one chart through the pipeline and print the aggregated table",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := f.data.handleFile()
			if err != nil {
				return err
			}
			obj, err := pipeline.Run(t, f.request(), pipeline.NewIDCounter("inspect"), plot.NewRegistry())
			if err != nil {
				return err
			}
			if err := obj.Render(stdout); err != nil {
				return err
			}
			fmt.Fprintf(stderr, "%d rows, columns: %v\n", t.Len(), t.ColumnNames())
			return nil
		},
	}
	flags := inspectCommand.Flags()
	f.data.register(flags)
	flags.StringVar(&f.chartType, "type", string(models.ChartBar), "Chart type.")
	flags.StringVar(&f.x, "x", "", "Category or numeric column for the x axis.")
	flags.StringVar(&f.y, "y", "", "Value column.")
	flags.StringVar(&f.yEnd, "y-end", "", "Second value column for dumbbell charts.")
	flags.StringVar(&f.group, "group", "", "Grouping column.")
	flags.StringVar(&f.weight, "weight", "", "Weight column.")
	flags.StringVar(&f.mode, "mode", "", "Aggregation mode, depends on chart type by default.")
	flags.IntVar(&f.bins, "bins", 0, "Number of equal-width bins for a numeric x.")
	flags.Float64SliceVar(&f.breaks, "breaks", nil, "Explicit bin breaks.")
	flags.StringSliceVar(&f.binLabels, "bin-labels", nil, "Labels for the bins.")
	flags.StringSliceVar(&f.order, "order", nil, "Desired order of x categories.")
	flags.StringSliceVar(&f.groupOrder, "group-order", nil, "Desired order of groups.")
	flags.BoolVar(&f.includeNA, "include-na", false, "Keep missing values as their own category.")
	flags.StringVar(&f.naLabel, "na-label", "", "Label for missing values.")
	flags.StringVar(&f.percentWithin, "percent-within", "", "Percent base for grouped charts: x or group.")
	flags.IntVar(&f.decimals, "decimals", -1, "Decimal places, 1 by default.")
	flags.StringVar(&f.format, "format", "text", "Output format: text, markdown, csv, html.")
	flags.StringVar(&f.style, "style", "", "Table style for text output.")
	return inspectCommand
}

func init() {
	subcommandFns["inspect"] = NewInspectCommand
}

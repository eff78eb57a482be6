package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pivolan/dashboardr/pipeline"
)

// NewDescribeCommand квантили, IQR и выбросы по числовым колонкам файла
func NewDescribeCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		data    dataFlags
		columns []string
	)
	describeCommand := &cobra.Command{
		Use:   "describe",
		Short: "numeric summary of data file columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := data.handleFile()
			if err != nil {
				return err
			}
			names := columns
			if len(names) == 0 {
				names = t.ColumnNames()
			}
			stats := make(map[string]*pipeline.NumberStats, len(names))
			for _, name := range names {
				col, ok := t.Column(name)
				if !ok {
					return &pipeline.MissingColumnError{Param: "column", Column: name, Available: t.ColumnNames()}
				}
				s := pipeline.DescribeColumn(col)
				if s == nil && len(columns) == 0 {
					continue
				}
				stats[name] = s
			}
			fmt.Fprint(stdout, GenerateTable(stats))
			return nil
		},
	}
	flags := describeCommand.Flags()
	data.register(flags)
	flags.StringSliceVar(&columns, "column", nil, "Columns to describe, every numeric column by default.")
	return describeCommand
}

func init() {
	subcommandFns["describe"] = NewDescribeCommand
}

package main

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"

	"github.com/pivolan/dashboardr/dashboard"
)

// BuildMain обёрнут NewBuildCommand, экспортирован для тестов
var BuildMain *dashboard.Main

// NewBuildCommand команда build, флаги из полей dashboard.Main
func NewBuildCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	BuildMain = dashboard.NewMain()
	BuildMain.Logger = log.New(stderr, "dashboardr: ", log.LstdFlags)
	buildCommand := &cobra.Command{
		Use:   "build",
		Short: "build changed dashboard pages into the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			res, err := BuildMain.Run()
			if err != nil {
				return err
			}
			fmt.Fprint(stdout, FormatResult(res))
			fmt.Fprintf(stdout, "Done: %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	if err := commandeer.Flags(buildCommand.Flags(), BuildMain); err != nil {
		panic(err)
	}
	return buildCommand
}

func init() {
	subcommandFns["build"] = NewBuildCommand
}

package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(stagesCmd)
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Prints the configured stages and where each one writes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		infos, err := cfg.DescribeStages()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Stage", "Kind", "Target"})
		for _, info := range infos {
			t.AppendRow(table.Row{info.Name, info.Kind, info.Target})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

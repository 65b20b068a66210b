package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/wbclimate-cli/internal/run"
	"github.com/KaramelBytes/wbclimate-cli/internal/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the artifacts recorded by the last run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := ""
		if len(args) == 1 {
			start = args[0]
		} else if c, err := currentConfig(); err == nil {
			start = c.OutputDir
		}
		root, err := utils.FindRunRoot(start)
		if err != nil {
			return err
		}
		m, err := run.Load(root)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run:     %s\n", m.ID)
		fmt.Fprintf(out, "source:  %s\n", m.Source)
		fmt.Fprintf(out, "created: %s\n", m.CreatedAt.Format("2006-01-02 15:04:05"))
		if len(m.Years) > 0 {
			fmt.Fprintf(out, "years:   %s..%s\n", m.Years[0], m.Years[len(m.Years)-1])
		}
		if len(m.Artifacts) == 0 {
			fmt.Fprintln(out, "(no artifacts)")
			return nil
		}
		missing := map[string]bool{}
		for _, a := range m.Missing() {
			missing[a.Path] = true
		}
		tw := tablewriter.NewWriter(out)
		tw.SetHeader([]string{"Kind", "Path", "Status"})
		tw.SetAutoFormatHeaders(false)
		for _, a := range m.Artifacts {
			status := "ok"
			if missing[a.Path] {
				status = "missing"
			}
			tw.Append([]string{a.Kind, filepath.FromSlash(a.Path), status})
		}
		tw.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// newFacilitiesCmd lists the configured facilities.
func newFacilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facilities",
		Short: "Lists configured facilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"ID", "Name", "Portal", "Feed"})
			for _, site := range appInstance.Facilities() {
				feed := ""
				if site.HasFeed() {
					feed = site.PublicFeedURL()
				}
				t.AppendRow(table.Row{site.ID, site.Name, site.PortalURL(), feed})
			}
			t.Render()
			return nil
		},
	}
}

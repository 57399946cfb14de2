package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/menufetcher/internal/menu"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
)

type fetchOptions struct {
	date   string
	all    bool
	output string
}

// newFetchCmd creates and configures the 'fetch' subcommand.
func newFetchCmd() *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch [facility...]",
		Short: "Fetches the menu of one or more facilities for a date",
		Long: `Resolves and prints the menu each named facility serves on the given date.
Facilities are resolved concurrently; the result is printed in argument order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetchCommand(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.date, "date", "", "menu date as YYYY-MM-DD (default today in the configured time zone)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "fetch every configured facility")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func runFetchCommand(cmd *cobra.Command, args []string, opts *fetchOptions) error {
	if opts.output != outputTable && opts.output != outputJSON {
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	var day time.Time
	if opts.date != "" {
		day, err = time.Parse(time.DateOnly, opts.date)
		if err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}
	} else {
		day = appInstance.Today()
	}

	ids, err := facilityIDs(appInstance, args, opts.all)
	if err != nil {
		return err
	}

	menus := make([]menu.Menu, len(ids))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(appInstance.Concurrency())
	for i, id := range ids {
		g.Go(func() error {
			m, err := appInstance.Menu(ctx, id, day)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", id, err)
			}
			menus[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	appInstance.GetLogger().Debug("fetch finished",
		zap.String("date", day.Format(time.DateOnly)),
		zap.Int("facilities", len(menus)))

	if opts.output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), day, menus)
	}
	writeTables(cmd.OutOrStdout(), day, menus)
	return nil
}

func facilityIDs(appInstance App, args []string, all bool) ([]string, error) {
	if all {
		if len(args) > 0 {
			return nil, errors.New("--all cannot be combined with facility arguments")
		}
		sites := appInstance.Facilities()
		ids := make([]string, 0, len(sites))
		for _, site := range sites {
			ids = append(ids, site.ID)
		}
		if len(ids) == 0 {
			return nil, errors.New("no facilities configured")
		}
		return ids, nil
	}
	if len(args) == 0 {
		return nil, errors.New("name at least one facility or pass --all")
	}
	return args, nil
}

type fetchResult struct {
	Date  string      `json:"date"`
	Menus []menu.Menu `json:"menus"`
}

func writeJSON(w io.Writer, day time.Time, menus []menu.Menu) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fetchResult{Date: day.Format(time.DateOnly), Menus: menus}); err != nil {
		return fmt.Errorf("encode menus: %w", err)
	}
	return nil
}

func writeTables(w io.Writer, day time.Time, menus []menu.Menu) {
	for _, m := range menus {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.SetTitle(fmt.Sprintf("%s | %s", m.Name, day.Format("Monday, January 2, 2006")))
		t.AppendHeader(table.Row{"Meal", "Station", "Item", "Tags"})
		if m.Empty() {
			t.AppendRow(table.Row{"", "", "no menu available", ""})
		}
		for _, meal := range m.Meals {
			for _, station := range meal.Stations {
				for _, item := range station.Items {
					t.AppendRow(table.Row{meal.Name, station.Name, item.Name, strings.Join(item.Tags, ", ")})
				}
			}
		}
		t.AppendFooter(table.Row{"Source", m.SourceURL})
		t.Render()
	}
}

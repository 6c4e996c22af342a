package app

import (
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/products"
	"github.com/robert-malhotra/go-swath/swath"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Report is what resolve prints.
type Report struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	DateTime    time.Time      `json:"datetime"`
	Files       []string       `json:"files"`
	Choices     []ChoiceRow    `json:"choices"`
	Aggregates  []AggregateRow `json:"aggregates"`
	Fetches     []FetchRow     `json:"fetches,omitempty"`
}

// ChoiceRow describes one band.
type ChoiceRow struct {
	Name       string  `json:"name"`
	Group      string  `json:"group,omitempty"`
	Kind       string  `json:"kind"`
	Wavelength float64 `json:"wavelength,omitempty"`
	Resolution float64 `json:"resolution,omitempty"`
	Selection  string  `json:"selection"`
}

// AggregateRow describes one band group.
type AggregateRow struct {
	Group       string   `json:"group"`
	Bands       []string `json:"bands"`
	Geolocation bool     `json:"geolocation"`
}

// FetchRow summarizes one fetched band.
type FetchRow struct {
	Name    string        `json:"name"`
	Shape   []int         `json:"shape"`
	Units   string        `json:"units"`
	Summary swath.Summary `json:"summary"`
	Shared  bool          `json:"geolocation_shared"`
	Error   string        `json:"error,omitempty"`
}

func newResolveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <files...>",
		Short: "Resolve files to a source and list its bands",
		Long: `Resolve files to a source and list its bands. With --fetch, the named
bands are read with their default selection and summarized; bands fetched
after the first one in a group reuse its geolocation.

Example: diagnose resolve VNP02MOD.A2024015.0300.002.*.nc VNP03MOD.A2024015.0300.002.*.nc --fetch M05,M15`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ds, err := loadDescriptors(v)
			if err != nil {
				return err
			}
			reg, err := products.NewRegistry(
				products.WithDescriptors(ds),
				products.WithLogger(logger),
				products.WithContext(cmd.Context()),
			)
			if err != nil {
				return err
			}
			src, err := reg.Resolve(args)
			if err != nil {
				return err
			}
			defer src.Close()

			r := buildReport(src, v.GetStringSlice("fetch"), logger)
			if v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			return writeTables(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().Int("stride", 0, "Override every default stride")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	cmd.Flags().StringSlice("fetch", nil, "Bands to fetch and summarize")
	bindFlags(v, cmd, "stride", "json", "fetch")
	return cmd
}

func buildReport(src swath.Source, fetch []string, logger *zap.Logger) *Report {
	r := &Report{
		ID:          src.ID().String(),
		Description: src.Description(),
		DateTime:    src.DateTime(),
		Files:       src.Files(),
	}
	for _, c := range src.Choices() {
		row := ChoiceRow{
			Name:       c.Name(),
			Group:      c.Group().Name(),
			Kind:       string(c.Info().Kind),
			Wavelength: c.Info().Wavelength,
			Selection:  c.Selection().String(),
		}
		if res, err := src.DefaultResolution(c); err == nil {
			row.Resolution = res
		}
		r.Choices = append(r.Choices, row)
	}

	for _, name := range fetch {
		row := FetchRow{Name: name}
		c := src.Choice(name)
		if c == nil {
			row.Error = "no such band"
			r.Fetches = append(r.Fetches, row)
			continue
		}
		var before *swath.Geolocation
		for _, view := range src.Aggregates() {
			if view.Contains(c) {
				before = view.Geolocation()
			}
		}
		d, err := src.Fetch(c, nil)
		if err != nil {
			logger.Warn("fetch failed", zap.String("band", name), zap.Error(err))
			row.Error = err.Error()
			r.Fetches = append(r.Fetches, row)
			continue
		}
		row.Shape, row.Units = d.Shape, d.Units
		row.Shared = before != nil && d.Geo == before
		if row.Summary, err = d.Summary(); err != nil {
			row.Error = err.Error()
		}
		r.Fetches = append(r.Fetches, row)
	}

	for _, view := range src.Aggregates() {
		row := AggregateRow{Group: view.Group().Name(), Geolocation: view.Geolocation() != nil}
		for _, c := range view.Bands() {
			row.Bands = append(row.Bands, c.Name())
		}
		r.Aggregates = append(r.Aggregates, row)
	}
	return r
}

func writeJSON(w io.Writer, r *Report) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeTables(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "%s  %s  %s\n", r.Description, r.DateTime.Format(time.RFC3339), r.ID)
	for _, f := range r.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprintln(w)

	choices := tablewriter.NewWriter(w)
	choices.Header("Band", "Group", "Kind", "Wavelength", "Resolution", "Default selection")
	for _, c := range r.Choices {
		if err := choices.Append(c.Name, c.Group, c.Kind, optional(c.Wavelength, "%.3f"), optional(c.Resolution, "%.0f"), c.Selection); err != nil {
			return err
		}
	}
	if err := choices.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	groups := tablewriter.NewWriter(w)
	groups.Header("Group", "Bands", "Geolocation")
	for _, a := range r.Aggregates {
		if err := groups.Append(a.Group, fmt.Sprint(a.Bands), fmt.Sprint(a.Geolocation)); err != nil {
			return err
		}
	}
	if err := groups.Render(); err != nil {
		return err
	}

	if len(r.Fetches) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	fetches := tablewriter.NewWriter(w)
	fetches.Header("Band", "Shape", "Units", "Valid", "NaN", "Min", "Max", "Mean", "P2", "P98", "Geo shared", "Error")
	for _, f := range r.Fetches {
		s := f.Summary
		if err := fetches.Append(
			f.Name, fmt.Sprint(f.Shape), f.Units,
			fmt.Sprint(s.Count), fmt.Sprint(s.NaN),
			fmt.Sprintf("%.4g", s.Min), fmt.Sprintf("%.4g", s.Max), fmt.Sprintf("%.4g", s.Mean),
			fmt.Sprintf("%.4g", s.P2), fmt.Sprintf("%.4g", s.P98),
			fmt.Sprint(f.Shared), f.Error,
		); err != nil {
			return err
		}
	}
	return fetches.Render()
}

func optional(v float64, format string) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf(format, v)
}

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/internal/hdf5"
	"github.com/robert-malhotra/go-swath/products"
	"github.com/robert-malhotra/go-swath/swath"
)

func newExportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <files...>",
		Short: "Write calibrated bands and their geolocation to HDF5",
		Long: `Write calibrated bands and their geolocation to HDF5. Each band named by
--band is fetched with its default selection and stored as /<band>/values;
swath products also get /<band>/longitude and /<band>/latitude.

Example: diagnose export SVM05_npp_*.h5 SVM15_npp_*.h5 --band M05,M15 --output scene.h5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			out := v.GetString("output")
			if out == "" {
				return errors.New("--output is required")
			}
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

			bands := v.GetStringSlice("band")
			if len(bands) == 0 {
				for _, c := range src.Choices() {
					bands = append(bands, c.Name())
				}
			}
			if err := exportBands(src, bands, out); err != nil {
				return err
			}
			logger.Info("export written", zap.String("path", out), zap.Strings("bands", bands))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bands\n", out, len(bands))
			return nil
		},
	}
	cmd.Flags().StringSlice("band", nil, "Bands to export (default all)")
	cmd.Flags().String("output", "", "HDF5 file to create")
	bindFlags(v, cmd, "band", "output")
	return cmd
}

// exportBands fetches each band and writes it to a new HDF5 file at path.
func exportBands(src swath.Source, bands []string, path string) (err error) {
	f, err := hdf5.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	for _, name := range bands {
		c := src.Choice(name)
		if c == nil {
			return fmt.Errorf("%s: no such band", name)
		}
		d, err := src.Fetch(c, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := writeBand(f.Root(), src, name, d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func writeBand(root *hdf5.Group, src swath.Source, name string, d *swath.Data) error {
	g, err := root.CreateGroup(name)
	if err != nil {
		return err
	}
	shape := make([]uint64, len(d.Shape))
	for i, n := range d.Shape {
		shape[i] = uint64(n)
	}
	_, err = g.CreateDataset("values", d.Values,
		hdf5.WithShape(shape...),
		hdf5.WithAttribute("units", d.Units),
		hdf5.WithAttribute("dimensions", d.Dims),
		hdf5.WithAttribute("source", src.Description()),
		hdf5.WithAttribute("datetime", src.DateTime().UTC().Format(time.RFC3339)),
	)
	if err != nil {
		return err
	}

	if d.Geo == nil {
		return nil
	}
	nav, ok := d.Geo.CoordSys.(*products.SwathNavigation)
	if !ok {
		return nil
	}
	geoShape := []uint64{uint64(nav.Shape[0]), uint64(nav.Shape[1])}
	if _, err := g.CreateDataset("longitude", nav.Lon, hdf5.WithShape(geoShape...),
		hdf5.WithAttribute("units", "degrees_east")); err != nil {
		return err
	}
	_, err = g.CreateDataset("latitude", nav.Lat, hdf5.WithShape(geoShape...),
		hdf5.WithAttribute("units", "degrees_north"))
	return err
}

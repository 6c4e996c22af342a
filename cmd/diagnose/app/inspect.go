package app

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robert-malhotra/go-swath/internal/h5read"
	"github.com/robert-malhotra/go-swath/internal/ncread"
)

func newInspectCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Walk the variables of one NetCDF or HDF5 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ext := strings.ToLower(filepath.Ext(args[0])); ext == ".h5" || ext == ".hdf5" {
				r, err := h5read.Open(args[0])
				if err != nil {
					return err
				}
				defer r.Close()
				return walkH5(cmd.OutOrStdout(), r)
			}
			f, err := ncread.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return walk(cmd.OutOrStdout(), f, v.GetBool("attrs"))
		},
	}
	cmd.Flags().Bool("attrs", false, "Print the attribute names of each variable")
	bindFlags(v, cmd, "attrs")
	return cmd
}

func walk(w io.Writer, f *ncread.File, attrs bool) error {
	fmt.Fprintf(w, "=== %s ===\n", f.Path())
	if keys, _ := f.AttrNames("/"); len(keys) > 0 {
		sort.Strings(keys)
		fmt.Fprintf(w, "Global attrs: %v\n", keys)
	}
	return ncread.Walk(f.Root(), func(p string, dims []string, err error) error {
		if err != nil {
			fmt.Fprintf(w, "%s: ERROR opening group: %v\n", p, err)
			return nil
		}
		_, shape, err := f.Dims(p)
		if err != nil {
			fmt.Fprintf(w, "%s %v: ERROR: %v\n", p, dims, err)
			return nil
		}
		fmt.Fprintf(w, "%s %v %v\n", p, dims, shape)
		if attrs {
			if names, err := f.AttrNames(p); err == nil {
				sort.Strings(names)
				fmt.Fprintf(w, "  attrs: %v\n", names)
			}
		}
		return nil
	})
}

// walkH5 lists the datasets of an HDF5 file. Dimensions are unnamed there.
func walkH5(w io.Writer, r *h5read.Reader) error {
	fmt.Fprintf(w, "=== %s ===\n", r.Path())
	names, err := r.Variables()
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, p := range names {
		_, shape, err := r.Dims(p)
		if err != nil {
			fmt.Fprintf(w, "%s: ERROR: %v\n", p, err)
			continue
		}
		fmt.Fprintf(w, "%s %v\n", p, shape)
	}
	return nil
}

package app

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robert-malhotra/go-swath/products"
)

// loadDescriptors returns the extra tables named by --descriptors followed
// by the built-in table. Names must be unique across all of them. A
// positive stride replaces every default stride.
func loadDescriptors(v *viper.Viper) ([]products.Descriptor, error) {
	var tables [][]products.Descriptor
	for _, path := range v.GetStringSlice("descriptors") {
		extra, err := products.LoadDescriptorFile(path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, extra)
	}
	builtin, err := products.Builtin()
	if err != nil {
		return nil, err
	}
	ds, err := products.Concat(append(tables, builtin)...)
	if err != nil {
		return nil, err
	}

	if stride := v.GetInt("stride"); stride > 0 {
		for i := range ds {
			ds[i].DefaultStride = stride
		}
	}
	return ds, nil
}

func newDescriptorsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "descriptors",
		Short: "List the product descriptors in resolution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := loadDescriptors(v)
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Name", "Description", "Layout", "Patterns", "Bands", "Stride")
			for _, d := range ds {
				if err := table.Append(
					d.Name,
					d.Description,
					d.Layout,
					strings.Join(d.Patterns, " "),
					fmt.Sprint(len(d.Bands)),
					fmt.Sprint(d.DefaultStride),
				); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

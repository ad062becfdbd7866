package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/inamate/designer/internal/document"
)

type sampleOpts struct {
	output string
	name   string
	blank  bool
	width  float64
	height float64
	dpi    float64
}

func newSampleCmd() *cobra.Command {
	var opts sampleOpts

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a sample business-card document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc *document.Document
			if opts.blank {
				doc = document.CreateDocument(document.DocumentOptions{
					Name:   opts.name,
					Width:  opts.width,
					Height: opts.height,
					DPI:    opts.dpi,
				})
			} else {
				doc = document.NewSampleDocument(opts.name)
			}

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if opts.output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("wrote document", "file", opts.output, "layers", len(doc.LayersByID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.name, "name", "Business Card", "document name")
	cmd.Flags().BoolVar(&opts.blank, "blank", false, "write an empty card instead of the sample design")
	cmd.Flags().Float64Var(&opts.width, "width", 1050, "blank card width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", 600, "blank card height in pixels")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", 300, "blank card resolution")

	return cmd
}

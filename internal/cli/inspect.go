package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inamate/designer/internal/document"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check documents for structural problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			failed := 0
			for _, path := range args {
				doc, err := readDocument(path)
				if err == nil {
					err = document.Validate(doc)
				}
				if err != nil {
					failed++
					for _, line := range strings.Split(err.Error(), "\n") {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, line)
					}
					continue
				}
				logger.Debug("valid", "file", path, "layers", len(doc.LayersByID))
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents invalid", failed, len(args))
			}
			return nil
		},
	}
}

func newTreeCmd() *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Print the layer hierarchy, top of the stack first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), doc, showIDs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "include layer ids")
	return cmd
}

func printTree(w io.Writer, doc *document.Document, showIDs bool) {
	line := func(depth int, l document.Layer) {
		b := l.Base()
		fmt.Fprintf(w, "%s%s %q", strings.Repeat("  ", depth), b.Type, b.Name)
		if showIDs {
			fmt.Fprintf(w, " [%s]", b.ID)
		}
		if !b.Visible {
			fmt.Fprint(w, " (hidden)")
		}
		if b.Locked {
			fmt.Fprint(w, " (locked)")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s (%s)\n", doc.Name, doc.ToolID)
	line(0, doc.Root())
	for _, id := range document.GetLayerOrder(doc, "") {
		l := doc.LayersByID[id]
		line(len(document.Ancestors(doc, id)), l)
	}
}

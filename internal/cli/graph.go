package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/render"
)

// Graph output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string  // output file path (stdout if empty)
	format   string  // dot, svg, pdf or png; inferred from output when empty
	detailed bool    // show scope and depth in node labels
	scale    float64 // PNG scale factor
}

// graphFormat returns the explicit format or the one implied by the output
// file extension, defaulting to DOT.
func (o graphOpts) graphFormat() (string, error) {
	f := o.format
	if f == "" {
		f = strings.TrimPrefix(filepath.Ext(o.output), ".")
	}
	switch f {
	case "", formatDOT, "gv":
		return formatDOT, nil
	case formatSVG, formatPDF, formatPNG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown graph format %q (want dot, svg, pdf or png)", f)
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		opts  resolveOpts
		gopts = graphOpts{scale: 2}
	)
	cmd := &cobra.Command{
		Use:   "graph [notation[=scope]...]",
		Short: "Draw the resolved dependency tree",
		Long: `Graph resolves the given roots without downloading artifacts and draws
the winning tree as Graphviz DOT, SVG, PDF or PNG. PDF and PNG need
rsvg-convert from librsvg.`,
		Example: `  mavenresolve graph org.apache.kafka:kafka-clients:3.7.0 -o kafka.svg
  mavenresolve graph -f pom.xml --format dot | dot -Tpng > deps.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := gopts.graphFormat()
			if err != nil {
				return err
			}
			res, err := c.runResolve(cmd.Context(), opts, args, false)
			if err != nil {
				return err
			}

			dot := render.ToDOT(res.result, render.Options{Detailed: gopts.detailed})
			var data []byte
			switch format {
			case formatDOT:
				data = []byte(dot)
			default:
				svg, err := render.RenderSVG(dot)
				if err != nil {
					return err
				}
				switch format {
				case formatSVG:
					data = svg
				case formatPDF:
					data, err = render.ToPDF(cmd.Context(), svg)
				case formatPNG:
					data, err = render.ToPNG(cmd.Context(), svg, gopts.scale)
				}
				if err != nil {
					return err
				}
			}

			if gopts.output == "" || gopts.output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(gopts.output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "write %s", gopts.output)
			}
			printSuccess("Rendered %d artifacts", len(res.result.Artifacts))
			printFile(gopts.output)
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&gopts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&gopts.format, "format", "", "dot, svg, pdf or png (default from output extension)")
	cmd.Flags().BoolVar(&gopts.detailed, "detailed", false, "show scope and depth in node labels")
	cmd.Flags().Float64Var(&gopts.scale, "scale", gopts.scale, "PNG scale factor")
	return cmd
}

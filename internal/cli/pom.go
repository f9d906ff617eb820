package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/pom"
)

// pomCommand creates the pom command.
func (c *CLI) pomCommand() *cobra.Command {
	var (
		opts    resolveOpts
		project string
		output  string
		direct  bool
	)
	cmd := &cobra.Command{
		Use:   "pom [notation[=scope]...]",
		Short: "Write a project descriptor listing resolved dependencies",
		Long: `Pom resolves the given roots and writes a POM 4.0.0 document with the
project coordinate and one dependency element per resolved artifact. With
--direct only the roots are written and nothing is resolved.`,
		Example: `  mavenresolve pom -p com.acme:app:1.0 -o pom.xml org.slf4j:slf4j-api:2.0.9
  mavenresolve pom -f deps.yaml -o pom.xml --direct`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var deps []coord.Dependency
			var projectCoord coord.Coordinate

			if direct {
				m, err := c.newManager(ctx)
				if err != nil {
					return err
				}
				defer m.Close()
				roots, mf, err := c.roots(ctx, m, opts.file, args)
				if err != nil {
					return err
				}
				deps = roots
				if mf != nil {
					projectCoord = mf.Project
				}
			} else {
				res, err := c.runResolve(ctx, opts, args, false)
				if err != nil {
					return err
				}
				deps = res.result.Dependencies()
				if res.manifest != nil {
					projectCoord = res.manifest.Project
				}
			}

			if project != "" {
				p, err := coord.Parse(project)
				if err != nil {
					return err
				}
				projectCoord = p
			}
			if projectCoord.GroupID == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no project coordinate: pass --project or declare one in the manifest")
			}

			if output == "" || output == "-" {
				data, err := pom.Marshal(projectCoord, deps)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := pom.Write(projectCoord, deps, output); err != nil {
				return err
			}
			printSuccess("Wrote descriptor for %s (%d dependencies)", StyleHighlight.Render(projectCoord.String()), len(deps))
			printFile(output)
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&project, "project", "p", "", "project coordinate (default from manifest)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&direct, "direct", false, "write the roots only, without resolving")
	return cmd
}

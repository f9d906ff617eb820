package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/transfer"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var pomPath string
	cmd := &cobra.Command{
		Use:   "install <notation> <file>",
		Short: "Install a file into the local repository",
		Long: `Install copies a file into the local repository under the path derived
from its coordinate, together with checksums, a descriptor and updated
maven-metadata-local.xml. Without --pom a minimal descriptor is generated.`,
		Example: `  mavenresolve install com.acme:core:1.0 target/core-1.0.jar --pom pom.xml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			target, err := coord.Parse(args[0])
			if err != nil {
				return err
			}
			m, err := c.newManager(ctx)
			if err != nil {
				return err
			}
			defer m.Close()

			got, err := transfer.NewInstaller(m).Install(ctx, target, args[1], pomPath)
			if err != nil {
				return err
			}
			printSuccess("Installed %s", StyleHighlight.Render(target.String()))
			printFile(got.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&pomPath, "pom", "", "descriptor to install alongside the file")
	return cmd
}

package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenresolve/pkg/config"
	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/repository"
	"github.com/matzehuels/mavenresolve/pkg/transfer"
)

// Environment variables read when the matching flag is empty.
const (
	envPassword   = "MAVENRESOLVE_PASSWORD"
	envPassphrase = "MAVENRESOLVE_PASSPHRASE"
)

// deployOpts holds the command-line flags for the deploy command.
type deployOpts struct {
	url        string // remote repository URL
	repository string // configured remote repository ID
	pomPath    string // descriptor to upload
	username   string
	password   string
	publicKey  string // path of the public key; the private key sits next to it
	passphrase string
}

// target returns the URL and credentials to deploy to. Flags win over a
// configured repository.
func (o deployOpts) target(cfg config.Config) (string, repository.Auth, error) {
	remote := config.Remote{
		URL:        o.url,
		Username:   o.username,
		Password:   envOr(o.password, envPassword),
		PublicKey:  o.publicKey,
		Passphrase: envOr(o.passphrase, envPassphrase),
	}
	if o.repository != "" {
		found := false
		for _, r := range cfg.RemoteRepositories {
			if r.ID == o.repository {
				found = true
				if remote.URL == "" {
					remote.URL = r.URL
				}
				if remote.Username == "" && remote.PublicKey == "" {
					remote.Username, remote.Password = r.Username, r.Password
					remote.PublicKey, remote.Passphrase = r.PublicKey, r.Passphrase
				}
			}
		}
		if !found {
			return "", nil, errors.New(errors.ErrCodeInvalidInput, "no configured repository with id %q", o.repository)
		}
	}
	if remote.URL == "" {
		return "", nil, errors.New(errors.ErrCodeInvalidInput, "deploy needs --url or --repository")
	}
	return remote.URL, remote.Auth(), nil
}

// deployCommand creates the deploy command.
func (c *CLI) deployCommand() *cobra.Command {
	var opts deployOpts
	cmd := &cobra.Command{
		Use:   "deploy <notation> <file>",
		Short: "Upload a file to a remote repository",
		Long: `Deploy uploads a file, its descriptor and updated maven-metadata.xml to a
remote repository. Snapshot versions are stored under timestamped names.

Credentials are either --username/--password (basic auth) or --public-key
with an optional --passphrase (uploads are signed with the private key that
sits next to the public key). The password and passphrase can also come
from MAVENRESOLVE_PASSWORD and MAVENRESOLVE_PASSPHRASE.`,
		Example: `  mavenresolve deploy com.acme:core:1.0 core-1.0.jar --url https://maven.acme.com/releases --username ci
  mavenresolve deploy com.acme:core:1.1-SNAPSHOT core.jar --repository snapshots --pom pom.xml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := coord.Parse(args[0])
			if err != nil {
				return err
			}
			url, auth, err := opts.target(c.cfg)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			logger.Debug("deploying", "coordinate", target, "url", url, "auth", auth)

			d := transfer.NewDeployer(transfer.DeployOptions{
				Transport: repository.TransportOptions{Timeout: c.cfg.Timeout.Duration},
				Logger:    logger,
			})
			receipt, err := d.Deploy(cmd.Context(), transfer.Request{
				Coordinate: target,
				FilePath:   args[1],
				RemoteURL:  url,
				PomPath:    opts.pomPath,
				Auth:       auth,
			})
			var partial *errors.PartialDeployError
			if errors.As(err, &partial) {
				printError("Deployment of %s is incomplete", target)
				for _, p := range partial.Uploaded {
					printDetail("uploaded  %s", p)
				}
				for _, p := range partial.Failed {
					printDetail("missing   %s", p)
				}
			}
			if err != nil {
				return err
			}
			printSuccess("Deployed %s to %s", StyleHighlight.Render(target.String()), StyleLink.Render(url))
			if receipt.FileVersion != target.Version {
				printKeyValue("version", receipt.FileVersion)
			}
			printKeyValue("files", strconv.Itoa(len(receipt.Uploaded)))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", "", "remote repository URL")
	cmd.Flags().StringVar(&opts.repository, "repository", "", "ID of a configured remote repository")
	cmd.Flags().StringVar(&opts.pomPath, "pom", "", "descriptor to upload (generated when omitted)")
	cmd.Flags().StringVar(&opts.username, "username", "", "basic auth user")
	cmd.Flags().StringVar(&opts.password, "password", "", "basic auth password (or "+envPassword+")")
	cmd.Flags().StringVar(&opts.publicKey, "public-key", "", "SSH public key used to sign uploads")
	cmd.Flags().StringVar(&opts.passphrase, "passphrase", "", "passphrase of the private key (or "+envPassphrase+")")
	cmd.MarkFlagsMutuallyExclusive("username", "public-key")
	return cmd
}

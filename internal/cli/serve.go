package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenresolve/pkg/observability"
	"github.com/matzehuels/mavenresolve/pkg/repository"
	"github.com/matzehuels/mavenresolve/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr           string
	root           string // repository to serve (default: the local repository)
	username       string
	password       string
	authorizedKeys string // authorized_keys file for signed uploads
	readOnly       bool
	protectReads   bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a repository over HTTP",
		Long: `Serve exposes a repository directory (by default the local repository) as
a Maven remote repository. Other machines can resolve from it and deploy to
it. Prometheus metrics are served on /metrics and a liveness probe on
/healthz.`,
		Example: `  MAVENRESOLVE_PASSWORD=s3cret mavenresolve serve --addr :8080 --username ci
  mavenresolve serve --root /srv/maven --authorized-keys ~/.ssh/authorized_keys`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			root := opts.root
			if root == "" {
				root = c.cfg.LocalRepoPath
			}
			local, err := repository.NewLocal(root)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			hooks := observability.NewPrometheusHooks(reg)
			observability.SetResolveHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetTransferHooks(hooks)
			defer observability.Reset()

			sopts := server.Options{
				Username:     opts.username,
				Password:     envOr(opts.password, envPassword),
				ReadOnly:     opts.readOnly,
				ProtectReads: opts.protectReads,
				Registry:     reg,
				Logger:       logger,
			}
			if opts.authorizedKeys != "" {
				if sopts.AuthorizedKeys, err = server.LoadAuthorizedKeys(opts.authorizedKeys); err != nil {
					return err
				}
				logger.Info("signed uploads enabled", "keys", len(sopts.AuthorizedKeys))
			}
			if sopts.Username == "" && len(sopts.AuthorizedKeys) == 0 && !sopts.ReadOnly {
				printWarning("Uploads are not authenticated")
			}

			printInfo("Serving %s on %s", StyleValue.Render(local.Root()), StyleLink.Render(opts.addr))
			return server.New(local, sopts).ListenAndServe(ctx, opts.addr)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.root, "root", "", "repository directory (default: local repository)")
	cmd.Flags().StringVar(&opts.username, "username", "", "require basic auth for uploads")
	cmd.Flags().StringVar(&opts.password, "password", "", "basic auth password (or "+envPassword+")")
	cmd.Flags().StringVar(&opts.authorizedKeys, "authorized-keys", "", "accept uploads signed by these SSH keys")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "reject all uploads")
	cmd.Flags().BoolVar(&opts.protectReads, "protect-reads", false, "require basic auth for downloads too")
	return cmd
}

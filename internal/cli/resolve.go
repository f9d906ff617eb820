package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/manifest"
	"github.com/matzehuels/mavenresolve/pkg/render"
	"github.com/matzehuels/mavenresolve/pkg/resolve"
)

// Output formats of the resolve command.
const (
	formatTree = "tree"
	formatList = "list"
	formatJSON = "json"
)

// resolveOpts holds the flags shared by every command that resolves.
type resolveOpts struct {
	file     string        // manifest path
	maxDepth int           // maximum expansion depth
	workers  int           // concurrent descriptor fetches
	timeout  time.Duration // bound on the whole resolution
}

func (o *resolveOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "manifest to read roots from (pom.xml or .yaml)")
	cmd.Flags().IntVar(&o.maxDepth, "max-depth", resolve.DefaultMaxDepth, "maximum dependency depth")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "concurrent descriptor fetches (default from config)")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "abort the resolution after this long (0 = no limit)")
}

// resolution is the outcome of runResolve.
type resolution struct {
	result   *resolve.Result
	manifest *manifest.Manifest
}

// runResolve resolves the roots named by args and opts. Artifacts are
// downloaded when download is true.
func (c *CLI) runResolve(ctx context.Context, opts resolveOpts, args []string, download bool) (*resolution, error) {
	logger := loggerFromContext(ctx)
	m, err := c.newManager(ctx)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	roots, mf, err := c.roots(ctx, m, opts.file, args)
	if err != nil {
		return nil, err
	}

	ropts := c.cfg.ResolveOptions(logger)
	ropts.MaxDepth = opts.maxDepth
	ropts.Timeout = opts.timeout
	if opts.workers > 0 {
		ropts.Workers = opts.workers
	}
	if mf != nil {
		ropts.Managed = mf.Managed
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %d dependencies...", len(roots)))
	spinner.Start()
	result, err := resolve.New(m, ropts).Resolve(ctx, roots, download)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Resolved %d artifacts", len(result.Artifacts)))
	return &resolution{result: result, manifest: mf}, nil
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		opts       resolveOpts
		format     string
		noDownload bool
	)
	cmd := &cobra.Command{
		Use:   "resolve [notation[=scope]...]",
		Short: "Resolve the transitive dependencies of one or more artifacts",
		Long: `Resolve computes the transitive closure of the given root dependencies.

Roots are notations (groupId:artifactId[:type[:classifier]]:version),
optionally followed by =scope, and/or the dependencies of a manifest file.
Unless --no-download is set every resolved artifact is fetched into the
local repository.`,
		Example: `  mavenresolve resolve com.google.guava:guava:33.0.0-jre
  mavenresolve resolve junit:junit:4.13.2=test --format list
  mavenresolve resolve -f pom.xml --no-download`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatTree, formatList, formatJSON:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want tree, list or json)", format)
			}
			download := c.cfg.DownloadArtifacts && !noDownload
			res, err := c.runResolve(cmd.Context(), opts, args, download)
			if err != nil {
				return err
			}
			if err := writeResult(cmd.OutOrStdout(), res.result, format); err != nil {
				return err
			}
			if format != formatJSON {
				printStats(res.result.Stats)
			}
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&format, "format", formatTree, "output format: tree, list or json")
	cmd.Flags().BoolVar(&noDownload, "no-download", false, "only read descriptors, do not fetch artifacts")
	return cmd
}

// jsonArtifact is the JSON form of one resolved artifact.
type jsonArtifact struct {
	Coordinate string `json:"coordinate"`
	Scope      string `json:"scope"`
	Depth      int    `json:"depth"`
	Parent     string `json:"parent,omitempty"`
	Path       string `json:"path,omitempty"`
	Repository string `json:"repository,omitempty"`
}

func writeResult(w io.Writer, res *resolve.Result, format string) error {
	switch format {
	case formatList:
		_, err := io.WriteString(w, render.Flat(res))
		return err
	case formatJSON:
		out := make([]jsonArtifact, len(res.Artifacts))
		for i, a := range res.Artifacts {
			out[i] = jsonArtifact{
				Coordinate: a.Coordinate.String(),
				Scope:      a.Scope.String(),
				Depth:      a.Depth,
				Path:       a.Path,
				Repository: a.Repository,
			}
			if a.Parent >= 0 {
				out[i].Parent = res.Artifacts[a.Parent].Coordinate.String()
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return render.WriteTree(w, res)
	}
}

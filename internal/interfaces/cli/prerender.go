package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaratCompare/internal/application/prerender"
	"github.com/turtacn/CaratCompare/internal/bootstrap"
	"github.com/turtacn/CaratCompare/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

type prerenderOptions struct {
	out     string
	publish bool
	request bool
	reason  string
}

func newPrerenderCmd() *cobra.Command {
	opts := &prerenderOptions{}
	cmd := &cobra.Command{
		Use:   "prerender",
		Short: "Render every page of the site",
		Long: "prerender renders the home page, shape and carat hubs, every comparison page\n" +
			"and the sitemap into a directory. --publish uploads them to object storage,\n" +
			"warms the page cache and announces the run; --request asks the workers to\n" +
			"publish instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if opts.publish && opts.request {
				return errors.New(errors.ErrCodeValidation, "--publish and --request are mutually exclusive")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()
			return runPrerender(ctx, cmd, cliCtx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "", "output directory (default: prerender.output_dir)")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "upload to object storage instead of a directory")
	cmd.Flags().BoolVar(&opts.request, "request", false, "enqueue a prerender request for the workers")
	cmd.Flags().StringVar(&opts.reason, "reason", "manual", "reason recorded on the request")
	return cmd
}

func runPrerender(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, opts *prerenderOptions) error {
	infra, err := bootstrap.New(cliCtx.Config, cliCtx.Logger)
	if err != nil {
		return err
	}
	if opts.publish || opts.request {
		infra.Connect()
	}
	defer infra.Close()

	if opts.request {
		if infra.Producer == nil {
			return errors.New(errors.ErrCodeServiceUnavailable, "kafka is not configured")
		}
		env, err := prerender.Request(ctx, infra.Producer, cliCtx.Config.Kafka.RequestTopic, "caratctl",
			kafka.PrerenderRequestedPayload{Reason: opts.reason, BaseURL: cliCtx.Config.Site.BaseURL})
		if err != nil {
			return err
		}
		PrintSuccess(cmd, "prerender requested, event "+env.EventID)
		return nil
	}

	pipeline := infra.Pipeline()
	var res *prerender.Result
	if opts.publish {
		sink, err := infra.PublishSink()
		if err != nil {
			return err
		}
		res, err = pipeline.Publish(ctx, sink)
		if err != nil && !errors.IsCode(err, errors.ErrCodePublishFailed) {
			return err
		}
		if err != nil {
			cliCtx.Logger.Warn("Site uploaded but publish event failed", logging.Err(err))
		}
	} else {
		dir := opts.out
		if dir == "" {
			dir = cliCtx.Config.Prerender.OutputDir
		}
		res, err = pipeline.Run(ctx, prerender.DirSink{Root: dir}, "dir")
		if err != nil {
			return err
		}
	}
	return PrintResult(cmd, RunSummary{
		RunID:      res.RunID,
		Pages:      res.Pages,
		SitemapKey: res.SitemapKey,
		Duration:   res.Duration.String(),
	})
}

// RunSummary is the output of "prerender".
type RunSummary struct {
	RunID      string `json:"run_id"`
	Pages      int    `json:"pages"`
	SitemapKey string `json:"sitemap_key"`
	Duration   string `json:"duration"`
}

func (r RunSummary) String() string {
	return fmt.Sprintf("run %s: %d pages in %s", r.RunID, r.Pages, r.Duration)
}

func (r RunSummary) TableHeaders() []string {
	return []string{"Run", "Pages", "Sitemap", "Duration"}
}

func (r RunSummary) TableRows() [][]string {
	return [][]string{{r.RunID, strconv.Itoa(r.Pages), r.SitemapKey, r.Duration}}
}

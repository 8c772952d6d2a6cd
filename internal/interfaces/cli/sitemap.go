package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaratCompare/internal/application/sitemap"
	"github.com/turtacn/CaratCompare/internal/bootstrap"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

func newSitemapCmd() *cobra.Command {
	var out, baseURL string
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Write the sitemap XML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			site := bootstrap.Site(cliCtx.Config)
			if baseURL != "" {
				site.BaseURL = baseURL
			}

			body, err := sitemap.NewBuilder(site).XML()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return errors.Wrap(err, errors.ErrCodeStorageError, "write sitemap").WithDetail(out)
			}
			cliCtx.Logger.Info("Sitemap written", logging.String("path", out), logging.Int("bytes", len(body)))
			PrintSuccess(cmd, "sitemap written to "+out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write to FILE instead of stdout")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "override site.base_url")
	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reactiveshots/portfolio/internal/server"
	"github.com/reactiveshots/portfolio/pkg/gallery"
	"github.com/reactiveshots/portfolio/pkg/mailer"
)

// serveCommand creates the serve command that runs the portfolio site.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio web server",
		Long: `Run the portfolio web server.

Serves the site pages, the gallery layout API and the contact endpoint.
Featured photos for the home page are refreshed from the content API in the
background and rotated on a timer. The server shuts down gracefully on
SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), listen, noCache)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides server.listen)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, listen string, noCache bool) error {
	svc, err := c.newServices(ctx, noCache)
	if err != nil {
		return err
	}
	defer svc.Close()
	cfg := svc.cfg

	if listen == "" {
		listen = cfg.Server.Listen
	}

	hooks := server.NewLogHooks(c.Logger)
	hooks.Register()

	sender, err := mailer.NewClient(cfg.Mailer.Endpoint)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	rotator := gallery.NewRotator(svc.content, cfg.RotatorOptions(c.Logger))
	rotator.Start(ctx)
	defer rotator.Stop()

	srv, err := server.New(server.Options{
		Logger:          c.Logger,
		Layouts:         svc.runner,
		Albums:          svc.content,
		Featured:        rotator,
		Mailer:          sender,
		Limiter:         mailer.NewLimiter(cfg.Mailer.RateEvery.Duration, cfg.Mailer.RateBurst),
		Hooks:           hooks,
		RequestTimeout:  cfg.Server.RequestTimeout.Duration,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
	})
	if err != nil {
		return err
	}

	printSuccess("Serving %s", StyleLink.Render(displayURL(listen)))
	printDetail("Content: %s", cfg.Content.BaseURL)
	printDetail("Cache: %s", cfg.Cache.Backend)

	if err := srv.Run(ctx, listen); err != nil {
		return err
	}
	c.Logger.Info("server stopped")
	return nil
}

// displayURL turns a listen address like ":8080" into a clickable URL.
func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

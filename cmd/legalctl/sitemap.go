package main

import (
	"time"

	"github.com/spf13/cobra"

	"legalpub/internal/site"
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Print sitemap.xml for the published documents",
	RunE:  runSitemap,
}

func runSitemap(cmd *cobra.Command, args []string) error {
	rt, err := openDeps(false, false)
	if err != nil {
		return err
	}
	defer rt.close()

	entries, err := rt.svc.Slugs(cmd.Context())
	if err != nil {
		return err
	}
	body, err := site.Sitemap(cfg.Site.BaseURL, entries, time.Now())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(body)
	return err
}

package main

import (
	"log/slog"
	"sort"

	"github.com/kain88-de/reviewr/internal/config"
	"github.com/kain88-de/reviewr/internal/errlog"
	"github.com/kain88-de/reviewr/internal/gerrit"
	"github.com/kain88-de/reviewr/internal/gitlab"
	"github.com/kain88-de/reviewr/internal/jira"
	"github.com/kain88-de/reviewr/internal/platform"
	"github.com/kain88-de/reviewr/internal/telemetry"
	"github.com/kain88-de/reviewr/internal/tui/browser"
)

// buildRegistry registers an adapter for every service known to the
// config, configured or not, so test-connections can list them all.
func buildRegistry(c *config.Config, errs *errlog.Log, log *slog.Logger) *platform.Registry {
	reg := platform.NewRegistry(errs, log)
	reg.Register(telemetry.WrapPlatform(gerrit.New(c.Platforms.Gerrit, errs, log)))
	reg.Register(telemetry.WrapPlatform(jira.New(c.Platforms.Jira, errs, log)))

	instances := make([]string, 0, len(c.Platforms.GitLab))
	for name := range c.Platforms.GitLab {
		instances = append(instances, name)
	}
	sort.Strings(instances)
	for _, name := range instances {
		reg.Register(telemetry.WrapPlatform(gitlab.New(name, c.Platforms.GitLab[name], errs, log)))
	}
	return reg
}

// platformInfos describes adapters for the browser.
func platformInfos(adapters []platform.Platform) []browser.PlatformInfo {
	infos := make([]browser.PlatformInfo, 0, len(adapters))
	for _, p := range adapters {
		infos = append(infos, browser.PlatformInfo{ID: p.ID(), Name: p.Name(), Icon: p.Icon()})
	}
	return infos
}

// orderedIDs returns the registered ids in the preferred display order.
func orderedIDs(reg *platform.Registry, preferred []string) []string {
	return browser.PlatformOrder(reg.List(), preferred)
}

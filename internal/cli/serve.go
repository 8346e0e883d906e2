package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/morozRed/doxnav/internal/ignore"
	"github.com/morozRed/doxnav/internal/server"
	"github.com/morozRed/doxnav/internal/watch"
	"github.com/spf13/cobra"
)

func RunServe(cmd *cobra.Command, args []string) error {
	s, err := openSite(cmd, nil)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(s.site, s.log)

	if s.cfg.Server.Watch {
		w, err := watch.New(s.cfg.Site.Dir, s.cfg.Server.Debounce, s.log)
		if err != nil {
			return err
		}
		w.SetFilter(watch.NewFilter(s.cfg.Site.Dir, ignore.NewMatcher(s.cfg.Server.WatchIgnore)))
		loader := s.site.Loader()
		go func() {
			err := w.Run(ctx, func(paths []string) {
				next, err := loadSite(s.cfg, s.log, loader)
				if err != nil {
					s.log.WithError(err).Warn("reload failed, keeping previous navigation")
					return
				}
				s.log.WithField("changed", len(paths)).Debug("navigation scripts changed")
				srv.Swap(next)
			})
			if err != nil {
				s.log.WithError(err).Warn("watcher stopped")
			}
		}()
	}

	return srv.ListenAndServe(ctx, s.cfg.Server.Addr)
}

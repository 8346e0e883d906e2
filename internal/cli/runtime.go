package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/morozRed/doxnav/internal/config"
	"github.com/morozRed/doxnav/internal/fragment"
	"github.com/morozRed/doxnav/internal/logging"
	"github.com/morozRed/doxnav/internal/navtree"
	"github.com/morozRed/doxnav/internal/site"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"dir":       "site.dir",
	"base-url":  "site.base_url",
	"log-level": "log.level",
	"addr":      "server.addr",
	"watch":     "server.watch",
}

type session struct {
	cfg  *config.Config
	log  *logrus.Logger
	site *site.Site
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	v, err := config.New(path)
	if err != nil {
		return nil, err
	}
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return config.Load(v)
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *logrus.Logger {
	return logging.New(
		logging.WithOutput(cmd.ErrOrStderr()),
		logging.WithLevel(logging.ParseLevel(cfg.Log.Level)),
		logging.WithFormat(cfg.Log.Format),
	)
}

func newLoader(cfg *config.Config, log logrus.FieldLogger) navtree.FragmentLoader {
	if cfg.Site.BaseURL != "" {
		return fragment.NewHTTPLoader(cfg.Site.BaseURL, cfg.Site.FetchTimeout, log)
	}
	return fragment.NewDirLoader(cfg.Site.Dir, log)
}

func loadSite(cfg *config.Config, log logrus.FieldLogger, loader navtree.FragmentLoader) (*site.Site, error) {
	s, err := site.Load(cfg.Site.Dir, site.WithLoader(loader), site.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to load navigation from %s: %w", cfg.Site.Dir, err)
	}
	return s, nil
}

// openSite resolves configuration and loads the site. wrap, when set,
// decorates the fragment loader.
func openSite(cmd *cobra.Command, wrap func(navtree.FragmentLoader) navtree.FragmentLoader) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := newLogger(cmd, cfg)
	loader := newLoader(cfg, log)
	if wrap != nil {
		loader = wrap(loader)
	}
	s, err := loadSite(cfg, log, loader)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, site: s}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(w)
}

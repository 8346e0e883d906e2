package cli

import (
	"fmt"

	"github.com/morozRed/doxnav/internal/config"
	"github.com/morozRed/doxnav/internal/fileutil"
	"github.com/spf13/cobra"
)

const configTemplate = `# doxnav settings. DOXNAV_* environment variables and flags override these.
site:
  dir: %q
  # base_url fetches fragments only; navtreedata.js stays in dir.
  # base_url: https://example.org/docs/html/
  fetch_timeout: %s
server:
  addr: %q
  watch: false
  debounce: %s
log:
  level: %s
  format: %s
`

func RunInit(cmd *cobra.Command, args []string) error {
	d := config.Defaults()
	dir, err := OptionalStringFlag(cmd, "dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = d.Site.Dir
	}

	content := fmt.Sprintf(configTemplate,
		dir,
		d.Site.FetchTimeout,
		d.Server.Addr,
		d.Server.Debounce,
		d.Log.Level,
		d.Log.Format,
	)
	created, err := fileutil.WriteIfMissing(config.FileName, []byte(content), 0644)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, leaving it unchanged\n", config.FileName)
	}
	return nil
}

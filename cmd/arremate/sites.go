package main

import (
	"fmt"

	"github.com/fcoelho/arremate/sqlite"
)

// SitesCmd groups problem-site subcommands.
type SitesCmd struct {
	List  SitesListCmd  `cmd:"" help:"List domains that have failed."`
	Block SitesBlockCmd `cmd:"" help:"Block a domain from future runs."`
}

// SitesListCmd lists all registered problem sites.
type SitesListCmd struct{}

func (c *SitesListCmd) Run(deps *Dependencies) error {
	db, err := deps.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sites, err := sqlite.NewProblemSiteService(db).FindProblemSites(deps.Ctx)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		fmt.Fprintln(deps.Stdout, "no problem sites recorded")
		return nil
	}

	for _, site := range sites {
		status := "retrying"
		if site.Blocked {
			status = "blocked"
		} else if site.Skippable() {
			status = "skipped"
		}
		fmt.Fprintf(deps.Stdout, "%-30s  attempts=%d  %s\n", site.Domain, site.Attempts, status)
		fmt.Fprintf(deps.Stdout, "    last error: %s\n", site.LastError)
	}
	return nil
}

// SitesBlockCmd sets or clears the manual block flag for a domain.
type SitesBlockCmd struct {
	Domain  string `arg:"" required:"" help:"Domain to block."`
	Unblock bool   `help:"Clear the block instead of setting it."`
}

func (c *SitesBlockCmd) Run(deps *Dependencies) error {
	db, err := deps.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlite.NewProblemSiteService(db).SetBlocked(deps.Ctx, c.Domain, !c.Unblock); err != nil {
		return err
	}

	if c.Unblock {
		fmt.Fprintf(deps.Stdout, "unblocked %s\n", c.Domain)
	} else {
		fmt.Fprintf(deps.Stdout, "blocked %s\n", c.Domain)
	}
	return nil
}

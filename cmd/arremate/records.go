package main

import (
	"fmt"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/sqlite"
)

// RecordsCmd groups record browsing subcommands.
type RecordsCmd struct {
	List RecordsListCmd `cmd:"" help:"List extracted records, newest first."`
}

// RecordsListCmd lists extracted records.
type RecordsListCmd struct {
	Domain string `help:"Filter by source domain."`
	Limit  int    `default:"20" help:"Maximum records to print."`
	Offset int    `help:"Records to skip."`
}

func (c *RecordsListCmd) Run(deps *Dependencies) error {
	db, err := deps.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	filter := arremate.RecordFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Domain != "" {
		filter.SourceDomain = &c.Domain
	}

	records, err := sqlite.NewRecordService(db).FindRecords(deps.Ctx, filter)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "no records found")
		return nil
	}

	for _, r := range records {
		title := r.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(deps.Stdout, "%s  %-30s  %-12s  %s\n",
			r.ExtractedAt.Format("2006-01-02"), r.SourceDomain, r.Price, title)
		fmt.Fprintf(deps.Stdout, "            %s\n", r.URL)
	}
	return nil
}

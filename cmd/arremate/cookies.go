package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/fs"
)

// CookiesCmd groups challenge cookie subcommands.
type CookiesCmd struct {
	Submit CookiesSubmitCmd `cmd:"" help:"Attach cookies to a domain's pending challenge."`
}

// CookiesSubmitCmd completes a pending challenge with cookies the
// operator obtained by clearing it in a real browser. The crawler picks
// the cookies up at the start of its next run.
type CookiesSubmitCmd struct {
	Domain     string `arg:"" required:"" help:"Domain of the pending challenge."`
	File       string `arg:"" required:"" type:"existingfile" help:"JSON file holding the cookie array."`
	CookiesDir string `default:"cookies" help:"Directory for challenge artifacts and cookie files."`
}

func (c *CookiesSubmitCmd) Run(deps *Dependencies) error {
	cookies, err := readCookieFile(c.File)
	if err != nil {
		return err
	}
	if len(cookies) == 0 {
		return fmt.Errorf("%s contains no cookies", c.File)
	}

	store := fs.NewChallengeStore(c.CookiesDir)
	if err := store.Complete(c.Domain, cookies); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "submitted %d cookies for %s; they take effect on the next crawl\n",
		len(cookies), c.Domain)
	return nil
}

// readCookieFile accepts either a bare cookie array or an object with a
// "cookies" key, matching the formats browser exporters produce.
func readCookieFile(path string) ([]arremate.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cookies []arremate.Cookie
	if err := json.Unmarshal(data, &cookies); err == nil {
		return cookies, nil
	}

	var wrapper struct {
		Cookies []arremate.Cookie `json:"cookies"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return wrapper.Cookies, nil
}

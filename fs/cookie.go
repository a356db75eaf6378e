package fs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fcoelho/arremate"
)

// Ensure CookieStore implements arremate.CookieStore at compile time.
var _ arremate.CookieStore = (*CookieStore)(nil)

// CookieStore persists one cookie file per domain. The files are plain
// JSON cookie arrays so operators can also write them directly with
// browser extensions.
type CookieStore struct {
	dir string
}

// NewCookieStore creates a CookieStore rooted at dir.
func NewCookieStore(dir string) *CookieStore {
	return &CookieStore{dir: dir}
}

func (s *CookieStore) path(domain string) string {
	return filepath.Join(s.dir, safeName(domain)+"_cookies.json")
}

// SaveCookies stores the cookie set for a domain, replacing any previous
// set.
func (s *CookieStore) SaveCookies(domain string, cookies []arremate.Cookie) error {
	if domain == "" {
		return arremate.Errorf(arremate.EINVALID, "domain required")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	return writeJSON(s.path(domain), cookies)
}

// LoadCookies returns the stored cookie set for a domain. The bool
// result is false when no cookies are stored.
func (s *CookieStore) LoadCookies(domain string) ([]arremate.Cookie, bool, error) {
	data, err := os.ReadFile(s.path(domain))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cookies []arremate.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, false, arremate.Errorf(arremate.EINTERNAL, "corrupt cookie file for %s: %v", domain, err)
	}
	return cookies, true, nil
}

// Package fs implements file-based stores for the challenge handshake.
// An operator resolves challenges by editing JSON files in the store
// directory, so everything here is written to be inspectable by hand.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fcoelho/arremate"
)

// timestampLayout names artifact files. It sorts lexicographically and
// contains no characters that need escaping in a filename.
const timestampLayout = "20060102_150405"

// Ensure ChallengeStore implements arremate.ChallengeStore at compile time.
var _ arremate.ChallengeStore = (*ChallengeStore)(nil)

// ChallengeStore persists challenge artifacts as request/response JSON
// file pairs under a single directory. The request file describes the
// challenge for the operator; the response file starts as pending and is
// filled in by the operator with cookies and a completed status.
type ChallengeStore struct {
	dir string
}

// NewChallengeStore creates a ChallengeStore rooted at dir.
func NewChallengeStore(dir string) *ChallengeStore {
	return &ChallengeStore{dir: dir}
}

type requestFile struct {
	URL        string `json:"url"`
	Domain     string `json:"domain"`
	Timestamp  string `json:"timestamp"`
	Screenshot string `json:"screenshot_path,omitempty"`
}

type responseFile struct {
	Status    arremate.ChallengeStatus `json:"status"`
	URL       string                   `json:"url"`
	Domain    string                   `json:"domain,omitempty"`
	Timestamp string                   `json:"timestamp"`
	Cookies   []arremate.Cookie        `json:"cookies,omitempty"`
}

// safeName converts a domain to a filename stem: dots become underscores.
func safeName(domain string) string {
	return strings.ReplaceAll(domain, ".", "_")
}

func (s *ChallengeStore) requestPath(domain string, ts time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_request.json", safeName(domain), ts.Format(timestampLayout)))
}

func (s *ChallengeStore) responsePath(domain string, ts time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_response.json", safeName(domain), ts.Format(timestampLayout)))
}

// Put persists a newly detected challenge: a request file describing it
// and a pending response file for the operator to fill in.
func (s *ChallengeStore) Put(ctx context.Context, artifact *arremate.ChallengeArtifact) error {
	if err := artifact.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	ts := artifact.Timestamp
	if ts.IsZero() {
		ts = time.Now()
		artifact.Timestamp = ts
	}

	req := requestFile{
		URL:        artifact.URL,
		Domain:     artifact.Domain,
		Timestamp:  ts.Format(timestampLayout),
		Screenshot: artifact.Screenshot,
	}
	if err := writeJSON(s.requestPath(artifact.Domain, ts), req); err != nil {
		return err
	}

	resp := responseFile{
		Status:    arremate.ChallengePending,
		URL:       artifact.URL,
		Domain:    artifact.Domain,
		Timestamp: ts.Format(timestampLayout),
	}
	if err := writeJSON(s.responsePath(artifact.Domain, ts), resp); err != nil {
		return err
	}

	artifact.Status = arremate.ChallengePending
	return nil
}

// PollCompleted scans response files for artifacts an operator has
// completed but the controller has not yet processed. Pending, skipped,
// and processed artifacts are left alone, as are files that do not parse.
func (s *ChallengeStore) PollCompleted(ctx context.Context) ([]*arremate.ChallengeArtifact, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*_response.json"))
	if err != nil {
		return nil, err
	}

	var artifacts []*arremate.ChallengeArtifact
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var resp responseFile
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		if resp.Status != arremate.ChallengeCompleted {
			continue
		}

		ts, err := time.ParseInLocation(timestampLayout, resp.Timestamp, time.Local)
		if err != nil {
			continue
		}
		domain := resp.Domain
		if domain == "" {
			domain = domainFromResponsePath(path, resp.Timestamp)
		}
		artifacts = append(artifacts, &arremate.ChallengeArtifact{
			Domain:    domain,
			Timestamp: ts,
			URL:       resp.URL,
			Status:    resp.Status,
			Cookies:   resp.Cookies,
		})
	}
	return artifacts, nil
}

// MarkProcessed flips a completed response file to processed, keeping
// its cookies in place for diagnostics.
func (s *ChallengeStore) MarkProcessed(ctx context.Context, domain string, timestamp time.Time) error {
	path := s.responsePath(domain, timestamp)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return arremate.Errorf(arremate.ENOTFOUND, "no challenge artifact for %s at %s", domain, timestamp.Format(timestampLayout))
		}
		return err
	}

	var resp responseFile
	if err := json.Unmarshal(data, &resp); err != nil {
		return arremate.Errorf(arremate.EINTERNAL, "corrupt challenge artifact %s: %v", path, err)
	}

	resp.Status = arremate.ChallengeProcessed
	return writeJSON(path, resp)
}

// Complete fills in the newest pending response file for a domain with
// the operator's cookies and flips it to completed. This is the
// operator-side half of the handshake; the crawler picks the cookies up
// on its next run. Returns ENOTFOUND when the domain has no pending
// artifact.
func (s *ChallengeStore) Complete(domain string, cookies []arremate.Cookie) error {
	paths, err := filepath.Glob(filepath.Join(s.dir, safeName(domain)+"_*_response.json"))
	if err != nil {
		return err
	}

	// Timestamps sort lexicographically, so the last path is the newest.
	for i := len(paths) - 1; i >= 0; i-- {
		data, err := os.ReadFile(paths[i])
		if err != nil {
			continue
		}
		var resp responseFile
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		if resp.Status != arremate.ChallengePending {
			continue
		}

		resp.Status = arremate.ChallengeCompleted
		resp.Cookies = cookies
		return writeJSON(paths[i], resp)
	}
	return arremate.Errorf(arremate.ENOTFOUND, "no pending challenge for %s", domain)
}

// domainFromResponsePath recovers the underscored domain from a response
// filename like www_example_com_20250311_124720_response.json. It is a
// fallback for hand-written files missing the domain key and mangles
// domains containing a literal underscore.
func domainFromResponsePath(path, timestamp string) string {
	base := strings.TrimSuffix(filepath.Base(path), "_response.json")
	base = strings.TrimSuffix(base, "_"+timestamp)
	return strings.ReplaceAll(base, "_", ".")
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

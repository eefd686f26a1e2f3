// Package selfupdate checks GitHub releases and replaces the running binary.
package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultBaseURL         = "https://api.github.com"
	defaultDownloadBaseURL = "https://github.com"
	defaultOwner           = "abhisek"
	defaultRepo            = "lingo"
	binaryName             = "lingo"
)

// Checker talks to the release API for one repository.
type Checker struct {
	client          *http.Client
	baseURL         string
	downloadBaseURL string
	owner           string
	repo            string
	execPath        func() (string, error)
	goos, goarch    string
}

// Option configures a Checker.
type Option func(*Checker)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option { return func(c *Checker) { c.baseURL = u } }

// WithDownloadBaseURL overrides the release asset base URL.
func WithDownloadBaseURL(u string) Option { return func(c *Checker) { c.downloadBaseURL = u } }

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option { return func(c *Checker) { c.client.Timeout = d } }

// WithRepository overrides the GitHub owner and repository.
func WithRepository(owner, repo string) Option {
	return func(c *Checker) { c.owner, c.repo = owner, repo }
}

func withExecPath(fn func() (string, error)) Option { return func(c *Checker) { c.execPath = fn } }

func withPlatform(goos, goarch string) Option {
	return func(c *Checker) { c.goos, c.goarch = goos, goarch }
}

// NewChecker creates a Checker for the lingo release feed.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:          &http.Client{Timeout: 10 * time.Second},
		baseURL:         defaultBaseURL,
		downloadBaseURL: defaultDownloadBaseURL,
		owner:           defaultOwner,
		repo:            defaultRepo,
		execPath:        os.Executable,
		goos:            runtime.GOOS,
		goarch:          runtime.GOARCH,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type CheckInput struct {
	Version string
}

type CheckResult struct {
	CurrentVersion  string
	LatestVersion   string
	ReleaseURL      string
	UpdateAvailable bool
}

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Check fetches the latest release and compares it with input.Version.
// Development builds and unparsable versions never report an update.
func (c *Checker) Check(ctx context.Context, input *CheckInput) (*CheckResult, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimRight(c.baseURL, "/"), c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	return &CheckResult{
		CurrentVersion:  input.Version,
		LatestVersion:   rel.TagName,
		ReleaseURL:      rel.HTMLURL,
		UpdateAvailable: newer(rel.TagName, input.Version),
	}, nil
}

// newer reports whether latest is a higher semantic version than current.
func newer(latest, current string) bool {
	l, c := canonical(latest), canonical(current)
	if l == "" || c == "" {
		return false
	}
	return semver.Compare(l, c) > 0
}

func canonical(v string) string {
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// Package fragment fetches the lazily loaded subtrees of a Doxygen
// navigation tree. A fragment named by sentinel S lives in S.js and declares
// `var S = [...]` using the same record shape as navtreedata.js.
package fragment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/morozRed/doxnav/internal/navjs"
	"github.com/morozRed/doxnav/internal/navtree"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when no fragment exists for a sentinel.
var ErrNotFound = errors.New("fragment not found")

// ErrTooLarge is returned when a fetched fragment exceeds maxFragmentBytes.
var ErrTooLarge = errors.New("fragment too large")

var sentinelPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// maxFragmentBytes bounds a single fragment download.
var maxFragmentBytes int64 = 32 << 20

// ValidSentinel reports whether s can name a fragment file and variable.
func ValidSentinel(s string) bool {
	return sentinelPattern.MatchString(s)
}

// Decode parses fragment source and returns its records.
func Decode(sentinel string, content []byte) ([]navtree.Spec, error) {
	f, err := navjs.Parse(sentinel+".js", content)
	if err != nil {
		return nil, err
	}
	v, ok := f.Var(sentinel)
	if !ok {
		return nil, fmt.Errorf("%s.js does not declare %s", sentinel, sentinel)
	}
	return navjs.Records(v)
}

// DirLoader reads fragments from a directory on disk.
type DirLoader struct {
	Dir string
	Log logrus.FieldLogger
}

func NewDirLoader(dir string, log logrus.FieldLogger) *DirLoader {
	return &DirLoader{Dir: dir, Log: log}
}

func (l *DirLoader) Load(ctx context.Context, sentinel string) ([]navtree.Spec, error) {
	if !ValidSentinel(sentinel) {
		return nil, fmt.Errorf("invalid sentinel %q", sentinel)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.Dir, sentinel+".js")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read fragment: %w", err)
	}

	specs, err := Decode(sentinel, content)
	if err != nil {
		return nil, err
	}
	if l.Log != nil {
		l.Log.WithFields(logrus.Fields{"sentinel": sentinel, "records": len(specs)}).Debug("fragment loaded from disk")
	}
	return specs, nil
}

// HTTPLoader fetches fragments relative to a published site.
type HTTPLoader struct {
	BaseURL string
	Client  *http.Client
	Log     logrus.FieldLogger
}

func NewHTTPLoader(baseURL string, timeout time.Duration, log logrus.FieldLogger) *HTTPLoader {
	return &HTTPLoader{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		Log:     log,
	}
}

func (l *HTTPLoader) Load(ctx context.Context, sentinel string) ([]navtree.Spec, error) {
	if !ValidSentinel(sentinel) {
		return nil, fmt.Errorf("invalid sentinel %q", sentinel)
	}

	target, err := url.JoinPath(strings.TrimRight(l.BaseURL, "/"), sentinel+".js")
	if err != nil {
		return nil, fmt.Errorf("build fragment url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build fragment request: %w", err)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch fragment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch fragment %s: status %d", target, resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxFragmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read fragment body: %w", err)
	}
	if int64(len(content)) > maxFragmentBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, target, maxFragmentBytes)
	}
	specs, err := Decode(sentinel, content)
	if err != nil {
		return nil, err
	}
	if l.Log != nil {
		l.Log.WithFields(logrus.Fields{"sentinel": sentinel, "url": target, "records": len(specs)}).Debug("fragment fetched")
	}
	return specs, nil
}

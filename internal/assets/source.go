package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Part names one of the per-model JSON arrays.
type Part string

const (
	PartPositions Part = "V"
	PartIndices   Part = "F"
	PartColors    Part = "VC"
	PartPRT1      Part = "prt1"
	PartPRT2      Part = "prt2"
	PartPRT3      Part = "prt3"
)

// Parts lists every array a model is made of, in load order.
var Parts = []Part{PartPositions, PartIndices, PartColors, PartPRT1, PartPRT2, PartPRT3}

// FileName returns "<model>_<part>.json".
func FileName(modelID string, p Part) string {
	return modelID + "_" + string(p) + ".json"
}

// ErrNotFound is returned by a Source that does not have the requested file.
var ErrNotFound = errors.New("assets: not found")

// Source fetches raw array payloads.
type Source interface {
	Fetch(ctx context.Context, modelID string, part Part) ([]byte, error)
}

// DirSource reads payloads from a local directory.
type DirSource struct {
	Root string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Root: dir}
}

// Fetch reads <Root>/<model>_<part>.json.
func (s *DirSource) Fetch(ctx context.Context, modelID string, part Part) ([]byte, error) {
	if err := checkModelID(modelID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.Root, FileName(modelID, part))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *DirSource) String() string {
	return "dir:" + s.Root
}

// HTTPSource fetches payloads from <BaseURL>/<model>_<part>.json.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource creates a source with its own client and timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch issues one GET request. 404 maps to ErrNotFound.
func (s *HTTPSource) Fetch(ctx context.Context, modelID string, part Part) ([]byte, error) {
	if err := checkModelID(modelID); err != nil {
		return nil, err
	}
	u := s.BaseURL + "/" + url.PathEscape(FileName(modelID, part))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", u, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: unexpected status %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (s *HTTPSource) String() string {
	return "http:" + s.BaseURL
}

// checkModelID rejects ids that could escape the source root.
func checkModelID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("invalid model id %q", id)
	}
	return nil
}

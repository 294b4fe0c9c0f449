package resources

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

//go:embed icons/*.svg
var iconFS embed.FS

// Fetcher loads the bytes of a named asset.
type Fetcher interface {
	Fetch(name string) ([]byte, error)
}

type fsFetcher struct {
	fsys   fs.FS
	prefix string
	label  string
}

// DirFetcher reads assets from a directory on disk, such as a user icon theme.
func DirFetcher(dir string) Fetcher {
	return fsFetcher{fsys: os.DirFS(dir), label: dir}
}

// EmbeddedFetcher reads the icons compiled into the binary.
func EmbeddedFetcher() Fetcher {
	return fsFetcher{fsys: iconFS, prefix: "icons", label: "embedded"}
}

func (fetcher fsFetcher) Fetch(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("fetch %s: %w", name, fs.ErrInvalid)
	}
	data, err := fs.ReadFile(fetcher.fsys, path.Join(fetcher.prefix, name))
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", name, fetcher.label, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch %s from %s: empty asset", name, fetcher.label)
	}
	return data, nil
}

// fetchFirst tries each fetcher in order and returns the first success.
func fetchFirst(fetchers []Fetcher, name string) ([]byte, error) {
	var errs []error
	for _, fetcher := range fetchers {
		data, err := fetcher.Fetch(name)
		if err == nil {
			return data, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("fetch %s: no fetchers configured", name)
	}
	return nil, errors.Join(errs...)
}

// Package fetcher loads raw inventory tables from CSV and XLSX files,
// read locally or downloaded over HTTP/FTP.
package fetcher

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Table is a raw in-memory table: one header row plus data rows.
// Cells stay untyped — file sources produce strings, XLSX numeric cells
// produce float64, and API callers may pass whatever JSON decoded to.
// The normalizer owns all coercion.
type Table struct {
	Headers []string
	Rows    [][]any
}

// LoadOptions bundles per-format and per-transport options for Load.
type LoadOptions struct {
	CSV     CSVOptions
	XLSX    XLSXOptions
	HTTP    HTTPOptions
	FTP     FTPOptions
	TempDir string // scratch dir for downloads, "" = os default
}

// Load reads a table from a local path or an http(s)/ftp URL,
// dispatching on URL scheme and file extension.
func Load(ctx context.Context, source string, opts LoadOptions) (Table, error) {
	path := source

	if u, err := url.Parse(source); err == nil && isRemote(u.Scheme) {
		local, err := downloadTemp(ctx, u, source, opts)
		if err != nil {
			return Table{}, err
		}
		defer os.Remove(local)
		path = local
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return ReadXLSX(path, opts.XLSX)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return Table{}, eris.Wrap(err, "fetcher: open csv")
		}
		defer f.Close()
		return ReadCSV(f, opts.CSV)
	default:
		return Table{}, eris.Errorf("fetcher: unsupported file type %q", filepath.Ext(path))
	}
}

func isRemote(scheme string) bool {
	switch scheme {
	case "http", "https", "ftp":
		return true
	}
	return false
}

// downloadTemp fetches a remote source into a temp file and returns its
// path. The caller removes the file when done.
func downloadTemp(ctx context.Context, u *url.URL, source string, opts LoadOptions) (string, error) {
	tmp, err := os.CreateTemp(opts.TempDir, "compare-*"+filepath.Ext(u.Path))
	if err != nil {
		return "", eris.Wrap(err, "fetcher: create temp file")
	}
	tmp.Close()

	var n int64
	switch u.Scheme {
	case "ftp":
		n, err = NewFTPFetcher(opts.FTP).DownloadToFile(ctx, source, tmp.Name())
	default:
		n, err = NewHTTPFetcher(opts.HTTP).DownloadToFile(ctx, source, tmp.Name())
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	zap.L().Debug("fetcher: downloaded source",
		zap.String("source", source),
		zap.Int64("bytes", n),
	)
	return tmp.Name(), nil
}

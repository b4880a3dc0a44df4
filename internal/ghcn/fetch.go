package ghcn

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// DefaultURL is NOAA's quality-controlled adjusted GHCN-M v3 archive.
const DefaultURL = "https://www1.ncdc.noaa.gov/pub/data/ghcn/v3/ghcnm.tavg.latest.qca.tar.gz"

// Fetcher downloads and unpacks GHCN-M archives into an input directory.
type Fetcher struct {
	client   *resty.Client
	inputDir string
}

// NewFetcher creates a fetcher that stores archives under inputDir.
func NewFetcher(inputDir string) *Fetcher {
	client := resty.New()
	client.SetTimeout(5 * time.Minute)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(2 * time.Second)

	return &Fetcher{
		client:   client,
		inputDir: inputDir,
	}
}

// Fetch ensures a GHCN-M .dat file is available locally and returns its
// path. The archive is downloaded only when not already present, then
// unpacked; the freshly extracted (or previously extracted) .dat file is
// located by glob.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(f.inputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create input directory %s: %w", f.inputDir, err)
	}

	archive := filepath.Join(f.inputDir, filepath.Base(url))
	present, err := archivePresent(archive)
	if err != nil {
		return "", err
	}
	if present {
		logrus.WithField("archive", archive).Info("archive already present, skipping download")
	} else if err := f.download(ctx, url, archive); err != nil {
		return "", err
	}

	if err := f.unpack(archive); err != nil {
		return "", err
	}

	return f.locateDat()
}

// archivePresent reports whether the archive already exists. A stat
// failure other than not-exist is an error in its own right, not a cue
// to treat the archive as present.
func archivePresent(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat archive %s: %w", path, err)
	}
}

// download streams the archive to disk, writing to a temp file first so
// an interrupted transfer never leaves a plausible-looking archive.
func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	logrus.WithField("url", url).Info("downloading GHCN-M archive")

	tmp := dest + ".partial"
	resp, err := f.client.R().
		SetContext(ctx).
		SetOutput(tmp).
		Get(url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		os.Remove(tmp)
		return fmt.Errorf("GHCN archive download returned status %d", resp.StatusCode())
	}

	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to move downloaded archive into place: %w", err)
	}
	logrus.WithField("archive", dest).Info("download complete")
	return nil
}

// unpack extracts the tar.gz archive into the input directory, refusing
// member names that would escape it.
func (f *Fetcher) unpack(archive string) error {
	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archive, err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to read gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		dest, err := f.safePath(hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dest, err)
			}
		case tar.TypeReg:
			if _, err := os.Stat(dest); err == nil {
				continue // already extracted
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", dest, err)
			}
			out, err := os.Create(dest)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", dest, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("failed to extract %s: %w", dest, err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("failed to finalize %s: %w", dest, err)
			}
		}
	}
	return nil
}

// safePath joins a tar member name onto the input directory and rejects
// any name that resolves outside of it.
func (f *Fetcher) safePath(name string) (string, error) {
	dest := filepath.Join(f.inputDir, name)
	base, err := filepath.Abs(f.inputDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", err
	}
	if abs != base && !strings.HasPrefix(abs, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive member %q escapes the input directory", name)
	}
	return dest, nil
}

// locateDat finds the extracted ghcnm .dat file under the input
// directory.
func (f *Fetcher) locateDat() (string, error) {
	matches, err := filepath.Glob(filepath.Join(f.inputDir, "ghcnm.v3.*", "ghcnm*.dat"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		// Older archives unpack without the version directory.
		matches, err = filepath.Glob(filepath.Join(f.inputDir, "ghcnm*.dat"))
		if err != nil {
			return "", err
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no ghcnm .dat file found under %s", f.inputDir)
	}
	return matches[0], nil
}

package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"vkprofiler/pkg/logger"
	"vkprofiler/pkg/vk"
)

// NoPhoto fills the url column of posts without a leading photo
const NoPhoto = "pass"

// Header is the first CSV record
var Header = []string{"body", "url"}

// API is the subset of the VK client the exporter needs
type API interface {
	Execute(ctx context.Context, method string, params url.Values) (json.RawMessage, error)
}

// Row is one exported post
type Row struct {
	Body string
	URL  string
}

// Rows converts wall posts to CSV rows. The body is the post's own text as
// served; the url is the largest size of a leading photo, or NoPhoto.
func Rows(posts []vk.WallPost) []Row {
	rows := make([]Row, 0, len(posts))
	for _, post := range posts {
		photo := post.PhotoURL()
		if photo == "" {
			photo = NoPhoto
		}
		rows = append(rows, Row{Body: post.Text, URL: photo})
	}
	return rows
}

// WriteCSV writes the header followed by rows
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Body, row.URL}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes rows to path through a temporary file, so readers never see
// a half-written export.
func SaveCSV(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	err = WriteCSV(out, rows)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save export: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// Exporter dumps the first page of a wall to CSV
type Exporter struct {
	api    API
	logger logger.Logger
}

// New creates an Exporter
func New(api API, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Exporter{api: api, logger: log.WithField("component", "export")}
}

// Fetch returns the first page of posts on the wall of domain
func (e *Exporter) Fetch(ctx context.Context, domain string) ([]vk.WallPost, error) {
	raw, err := e.api.Execute(ctx, vk.MethodWallGet, vk.WallGetByDomainParams(domain))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wall of %s: %w", domain, err)
	}

	var page vk.WallPage
	if err := vk.Decode(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode wall of %s: %w", domain, err)
	}
	return page.Items, nil
}

// Export fetches the wall of domain and saves it to path. It returns the
// number of rows written.
func (e *Exporter) Export(ctx context.Context, domain, path string) (int, error) {
	posts, err := e.Fetch(ctx, domain)
	if err != nil {
		return 0, err
	}

	rows := Rows(posts)
	if err := SaveCSV(path, rows); err != nil {
		return 0, err
	}

	e.logger.InfoWithFields("Wall exported", map[string]interface{}{
		"domain": domain,
		"rows":   len(rows),
		"path":   path,
	})
	return len(rows), nil
}

// package formatter renders discovery results to files (CSV, Markdown, plain text and JSON)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

// Format names an output format accepted by [Write].
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// ParseFormat accepts json, csv, markdown (or md) and txt (or text).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

func moodName(result *models.DiscoverResult) string {
	return result.Playlist().Name
}

// ToCSV renders the tracks with columns: ID, Title, Artist, Album, Duration, Preview, Link
func ToCSV(result *models.DiscoverResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"ID", "Title", "Artist", "Album", "Duration", "Preview", "Link"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range result.Tracks {
		record := []string{t.ID, t.Title, t.Artist, t.Album, strconv.Itoa(t.Duration), t.PreviewURL, t.Link}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ToMarkdown renders the result as a Markdown document with an optional cover image.
func ToMarkdown(result *models.DiscoverResult, imageFilename string) []byte {
	var buf bytes.Buffer
	meta := result.Metadata

	fmt.Fprintf(&buf, "# %s\n\n", moodName(result))
	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	energy := meta.Energy
	if energy == "" {
		energy = models.EnergyMedium
	}
	fmt.Fprintf(&buf, "**Energy**: %s\n", energy)
	if len(meta.Genres) > 0 {
		fmt.Fprintf(&buf, "**Genres**: %s\n", strings.Join(meta.Genres, ", "))
	}
	if meta.SearchQuery != "" {
		fmt.Fprintf(&buf, "**Search**: `%s`\n", meta.SearchQuery)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(result.Tracks))

	buf.WriteString("## Tracks\n\n")
	for i, t := range result.Tracks {
		label := fmt.Sprintf("%s - %s", t.Artist, t.Title)
		if t.Link != "" {
			label = fmt.Sprintf("[%s](%s)", label, t.Link)
		}
		album := ""
		if t.Album != "" {
			album = fmt.Sprintf(" (%s)", t.Album)
		}
		fmt.Fprintf(&buf, "%d. %s%s [%s]", i+1, label, album, shared.FormatDuration(float64(t.Duration)))
		if !t.HasPreview() {
			buf.WriteString(" _no preview_")
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ToText renders the result as a numbered plain text list.
func ToText(result *models.DiscoverResult) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Mood: %s\n", moodName(result))
	if len(result.Metadata.Genres) > 0 {
		fmt.Fprintf(&buf, "Genres: %s\n", strings.Join(result.Metadata.Genres, ", "))
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(result.Tracks))

	for i, t := range result.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, t.Artist, t.Title)
	}
	return buf.Bytes()
}

// DownloadImage fetches the raw bytes at url.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty image URL", shared.ErrInvalidInput)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// CSVFiles contains the paths created by [WriteCSV].
type CSVFiles struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSV creates {base}_tracks.csv and {base}_metadata.json.
func WriteCSV(result *models.DiscoverResult, base string) (*CSVFiles, error) {
	if base == "" {
		base = shared.Slugify(moodName(result))
	}

	data, err := ToCSV(result)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := base + "_tracks.csv"
	if err := os.WriteFile(tracksFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	meta, err := shared.MarshalJSON(result.Metadata, true)
	if err != nil {
		return nil, err
	}

	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, meta, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}
	return &CSVFiles{TracksFile: tracksFile, MetadataFile: metadataFile}, nil
}

// MarkdownFiles describes the directory written by [WriteMarkdown].
type MarkdownFiles struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdown writes {dir}/README.md and, when the first track has cover art
// and a client is given, {dir}/cover.jpg. A failed cover download is logged and skipped.
func WriteMarkdown(ctx context.Context, client *http.Client, result *models.DiscoverResult, dir string) (*MarkdownFiles, error) {
	if dir == "" {
		dir = shared.Slugify(moodName(result))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	out := &MarkdownFiles{Directory: dir}

	var cover string
	if client != nil && len(result.Tracks) > 0 && result.Tracks[0].CoverImage != "" {
		if data, err := DownloadImage(ctx, client, result.Tracks[0].CoverImage); err != nil {
			log.Warn("cover image skipped", "error", err)
		} else {
			path := filepath.Join(dir, "cover.jpg")
			if err := os.WriteFile(path, data, 0644); err != nil {
				log.Warn("cover image not saved", "error", err)
			} else {
				cover = "cover.jpg"
				out.CoverImage = path
				out.Files = append(out.Files, path)
			}
		}
	}

	md := filepath.Join(dir, "README.md")
	if err := os.WriteFile(md, ToMarkdown(result, cover), 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	out.Files = append(out.Files, md)
	return out, nil
}

// WriteText writes the plain text rendering to path, defaulting to {mood}_tracks.txt.
func WriteText(result *models.DiscoverResult, path string) (string, error) {
	if path == "" {
		path = shared.Slugify(moodName(result)) + "_tracks.txt"
	}
	if err := os.WriteFile(path, ToText(result), 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

// Write renders result into dir using format, naming files after name, and returns the paths written.
func Write(ctx context.Context, client *http.Client, result *models.DiscoverResult, format Format, dir, name string) ([]string, error) {
	if name == "" {
		name = shared.Slugify(moodName(result))
	}

	switch format {
	case CSV:
		files, err := WriteCSV(result, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{files.TracksFile, files.MetadataFile}, nil
	case Markdown:
		files, err := WriteMarkdown(ctx, client, result, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return files.Files, nil
	case Text:
		path, err := WriteText(result, filepath.Join(dir, name+"_tracks.txt"))
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{path}, nil
	default:
		path := filepath.Join(dir, name+".json")
		if err := WriteJSON(result, path); err != nil {
			return nil, fmt.Errorf("JSON export failed: %w", err)
		}
		return []string{path}, nil
	}
}

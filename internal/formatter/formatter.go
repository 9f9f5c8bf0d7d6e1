// package formatter provides functions to export movie lists to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

const maxImageSize = 10 << 20

// Export formats accepted by [WriteExport].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// MovieExport is a titled list of movies, such as a user's wishlist or a fetched listing.
type MovieExport struct {
	Name        string
	Description string
	Owner       string
	Movies      []models.Movie
	ExportedAt  time.Time
}

// ExportMetadata describes an export without its movies.
type ExportMetadata struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	MovieCount  int       `json:"movie_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Slug returns a filesystem friendly version of the export name.
func (e *MovieExport) Slug() string {
	var b strings.Builder
	for _, r := range strings.ToLower(e.Name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '@', r == '.':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "movies"
	}
	return b.String()
}

// genreLabel joins the known genre names of m.
func genreLabel(m models.Movie) string {
	names := make([]string, 0, len(m.GenreIDs))
	for _, id := range m.GenreIDs {
		names = append(names, models.GenreName(id))
	}
	return strings.Join(names, "/")
}

// ExportToCSV converts a MovieExport to CSV format with columns: ID, Title, Original Title, Release Date, Rating, Votes, Language, Genres, Poster
func ExportToCSV(export *MovieExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Original Title", "Release Date", "Rating", "Votes", "Language", "Genres", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range export.Movies {
		record := []string{
			strconv.FormatInt(movie.ID, 10),
			movie.Title,
			movie.OriginalTitle,
			movie.ReleaseDate,
			movie.Rating(),
			strconv.Itoa(movie.VoteCount),
			movie.OriginalLanguage,
			genreLabel(movie),
			movie.PosterPath,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a MovieExport to Markdown format with optional cover image
func ExportToMarkdown(export *MovieExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if export.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Description)
	}
	if export.Owner != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", export.Owner)
	}
	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(export.Movies))

	buf.WriteString("## Movies\n\n")
	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, MovieLine(movie))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a MovieExport to plain text format
func ExportToText(export *MovieExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "List: %s\n", export.Name)
	if export.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Description)
	}
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(export.Movies))

	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, MovieLine(movie))
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the movies as a JSON array, keeping every field the API returned.
func ExportToJSON(export *MovieExport) ([]byte, error) {
	movies := export.Movies
	if movies == nil {
		movies = []models.Movie{}
	}
	return shared.MarshalJSON(movies, true)
}

// MovieLine renders a movie as "Title (Year) ★ 7.5".
func MovieLine(m models.Movie) string {
	title := m.Title
	if y := m.Year(); y != "" {
		title = fmt.Sprintf("%s (%s)", title, y)
	}
	return fmt.Sprintf("%s ★ %s", title, m.Rating())
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of export metadata (without movies)
func ToMetadataJSON(export *MovieExport) ([]byte, error) {
	exportedAt := export.ExportedAt
	if exportedAt.IsZero() {
		exportedAt = time.Now().UTC()
	}
	return shared.MarshalJSON(ExportMetadata{
		Name:        export.Name,
		Description: export.Description,
		Owner:       export.Owner,
		MovieCount:  len(export.Movies),
		ExportedAt:  exportedAt,
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MoviesFile   string
	MetadataFile string
}

// WriteCSVExport exports a movie list to CSV format with accompanying metadata JSON file.
//
// Defaults to the export slug as the base filename & creates {base}_movies.csv and {base}_metadata.json
func WriteCSVExport(export *MovieExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Slug()
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	moviesFile := baseFilepath + "_movies.csv"
	if err := os.WriteFile(moviesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		MoviesFile:   moviesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a movie list to Markdown format in a dedicated directory.
//
// Directory name defaults to the export slug.
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *MovieExport, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.Slug()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a movie list to plain text format.
//
// Defaults to {slug}_movies.txt as the filename.
func WriteTextExport(export *MovieExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_movies.txt", export.Slug())
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the movies as a JSON array.
//
// Defaults to {slug}_movies.json as the filename.
func WriteJSONExport(export *MovieExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_movies.json", export.Slug())
	}

	data, err := ExportToJSON(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// WriteExport dispatches to the writer for format and returns the files it created.
//
// For markdown, path is the output directory and imageURL an optional cover image.
func WriteExport(export *MovieExport, format, path, imageURL string) ([]string, error) {
	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(export, path)
		if err != nil {
			return nil, err
		}
		return []string{res.MoviesFile, res.MetadataFile}, nil
	case FormatMarkdown, "md":
		res, err := WriteMarkdownExport(export, path, imageURL)
		if err != nil {
			return nil, err
		}
		return res.Files, nil
	case FormatText, "text":
		file, err := WriteTextExport(export, path)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case FormatJSON:
		file, err := WriteJSONExport(export, path)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (use csv, markdown, txt or json)", shared.ErrInvalidFlag, format)
	}
}

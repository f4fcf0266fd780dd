package constants

import "strings"

// DocumentFormat identifies the source format of an ingested document.
type DocumentFormat string

const (
	PDF  DocumentFormat = "PDF"
	CSV  DocumentFormat = "CSV"
	XLSX DocumentFormat = "XLSX"
)

// AllowedExtensions holds the default allowed file extensions for sample ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"csv":  {},
	"xlsx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its document format.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) DocumentFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "csv":
		return CSV
	case "xlsx":
		return XLSX
	default:
		return ""
	}
}

package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// UploadValidator checks a file before any network traffic is spent on it.
type UploadValidator struct {
	logger logger.Logger
	config *Config
}

// Config bounds what the validator accepts.
type Config struct {
	MaxFileSize  int64               // bytes
	AllowedTypes map[string][]string // extension -> allowed MIME types
	MaxPageCount int                 // PDF only
}

// ValidationResult is the full verdict on one file.
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	FileInfo FileInfo          `json:"fileInfo"`
}

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// FileInfo describes the inspected file.
type FileInfo struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	Extension string `json:"extension"`
	Hash      string `json:"hash"`
	PageCount int    `json:"pageCount,omitempty"`
}

// NewUploadValidator applies the service's upload rules by default: PDFs
// only, 50MB, 1000 pages.
func NewUploadValidator(log logger.Logger, config *Config) *UploadValidator {
	if config == nil {
		config = &Config{
			MaxFileSize: 50 * 1024 * 1024,
			AllowedTypes: map[string][]string{
				".pdf": {"application/pdf"},
			},
			MaxPageCount: 1000,
		}
	}
	return &UploadValidator{
		logger: log,
		config: config,
	}
}

// ValidateFile inspects the file at path: size and extension bounds, MIME
// sniffing against the extension's allow-list, a content hash, and for PDFs
// a structural parse with page counting.
func (v *UploadValidator) ValidateFile(path string) (*ValidationResult, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]ValidationError, 0),
		FileInfo: FileInfo{
			Filename:  filepath.Base(path),
			Size:      stat.Size(),
			Extension: strings.ToLower(filepath.Ext(path)),
		},
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	hash, err := v.calculateHash(f)
	if err != nil {
		return nil, fmt.Errorf("calculate hash: %w", err)
	}
	result.FileInfo.Hash = hash

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("reset file pointer: %w", err)
	}

	if errs := v.performBasicValidation(result.FileInfo); len(errs) > 0 {
		result.IsValid = false
		result.Errors = append(result.Errors, errs...)
	}

	mimeType, err := v.detectMimeType(f)
	if err != nil {
		return nil, fmt.Errorf("detect mime type: %w", err)
	}
	result.FileInfo.MimeType = mimeType

	if errs := v.validateMimeType(result.FileInfo); len(errs) > 0 {
		result.IsValid = false
		result.Errors = append(result.Errors, errs...)
	}

	if result.FileInfo.Extension == ".pdf" {
		if errs := v.validatePDF(path, &result.FileInfo); len(errs) > 0 {
			result.IsValid = false
			result.Errors = append(result.Errors, errs...)
		}
	}

	if !result.IsValid {
		v.logger.Warn("upload rejected by validation",
			logger.String("filename", result.FileInfo.Filename),
			logger.Int("errors", len(result.Errors)),
		)
	}

	return result, nil
}

func (v *UploadValidator) performBasicValidation(info FileInfo) []ValidationError {
	var errs []ValidationError

	if info.Size > v.config.MaxFileSize {
		errs = append(errs, ValidationError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("file size exceeds maximum limit of %d bytes", v.config.MaxFileSize),
			Field:   "size",
		})
	}

	if _, ok := v.config.AllowedTypes[info.Extension]; !ok {
		errs = append(errs, ValidationError{
			Code:    "INVALID_FILE_TYPE",
			Message: fmt.Sprintf("file type %s is not allowed", info.Extension),
			Field:   "extension",
		})
	}

	return errs
}

func (v *UploadValidator) validateMimeType(info FileInfo) []ValidationError {
	allowedMimes, ok := v.config.AllowedTypes[info.Extension]
	if !ok {
		return nil // already rejected on extension
	}

	for _, mime := range allowedMimes {
		if mime == info.MimeType {
			return nil
		}
	}

	return []ValidationError{{
		Code:    "INVALID_MIME_TYPE",
		Message: fmt.Sprintf("invalid MIME type %s for extension %s", info.MimeType, info.Extension),
		Field:   "mimeType",
	}}
}

// validatePDF parses the document structure and counts pages. A file that
// does not parse as a PDF gets rejected here even when its header sniffed
// correctly.
func (v *UploadValidator) validatePDF(path string, info *FileInfo) []ValidationError {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return []ValidationError{{
			Code:    "MALFORMED_PDF",
			Message: "file is not a readable PDF document",
			Field:   "content",
		}}
	}
	defer f.Close()

	pages := reader.NumPage()
	info.PageCount = pages

	if v.config.MaxPageCount > 0 && pages > v.config.MaxPageCount {
		return []ValidationError{{
			Code:    "TOO_MANY_PAGES",
			Message: fmt.Sprintf("PDF has %d pages, maximum is %d", pages, v.config.MaxPageCount),
			Field:   "pageCount",
		}}
	}

	return nil
}

func (v *UploadValidator) detectMimeType(f *os.File) (string, error) {
	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buffer[:n]), nil
}

func (v *UploadValidator) calculateHash(f *os.File) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

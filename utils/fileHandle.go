package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArchiveUpload copies an uploaded file into destDir under a timestamped,
// collision-free name and returns the stored path.
func ArchiveUpload(file *multipart.FileHeader, destDir, prefix string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%s-%s-%s%s", prefix, time.Now().UTC().Format("20060102150405"), uuid.NewString()[:8], ext)
	filePath := filepath.Join(destDir, name)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", filePath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write %s: %w", filePath, err)
	}
	return filePath, nil
}

package utils

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AllowedImageTypes defines the allowed image file extensions
var AllowedImageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ValidateImageFile checks extension and size against the configured ceiling
func ValidateImageFile(file *multipart.FileHeader, maxSize int64) error {
	if file.Size > maxSize {
		return fmt.Errorf("file size exceeds %dMB limit", maxSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !AllowedImageTypes[ext] {
		return fmt.Errorf("invalid file type. Allowed types: jpg, jpeg, png, gif")
	}

	return nil
}

// SaveUploadedFile saves an uploaded image under uploadDir with a uuid
// filename. A file that fails validation after being written is removed
// before the error is returned.
func SaveUploadedFile(file *multipart.FileHeader, uploadDir string, maxSize int64) (string, error) {
	if err := ValidateImageFile(file, maxSize); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := uuid.New().String() + ext
	dstPath := filepath.Join(uploadDir, filename)

	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %v", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %v", err)
	}
	defer dst.Close()

	written, err := dst.ReadFrom(src)
	if err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file: %v", err)
	}
	if written > maxSize {
		os.Remove(dstPath)
		return "", fmt.Errorf("file size exceeds %dMB limit", maxSize/(1024*1024))
	}

	return "/uploads/" + filename, nil
}

// DeleteFile deletes a file from the filesystem
func DeleteFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

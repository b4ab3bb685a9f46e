package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Uploaded images live on local disk under UPLOAD_DIR and are served
// statically by path. Stored paths are relative ("/uploads/<file>").

var uploadDir = "./uploads"

var uploadLog = zerolog.New(os.Stderr).With().Timestamp().Str("component", "uploads").Logger()

func InitializeUploads() {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		uploadDir = dir
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		uploadLog.Error().Err(err).Str("dir", uploadDir).Msg("failed to create upload directory")
	}
}

// UploadDir returns the directory images are written to.
func UploadDir() string {
	return uploadDir
}

// SaveBase64Image decodes a base64 (optionally data-URI) payload and writes it
// under the upload dir. Returns the public path, or "" on failure.
func SaveBase64Image(base64ImageSrc string, name string) string {
	if base64ImageSrc == "" {
		return ""
	}

	payload := base64ImageSrc
	if i := strings.Index(payload, ","); i != -1 {
		payload = payload[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		uploadLog.Warn().Err(err).Str("name", name).Msg("invalid base64 image payload")
		return ""
	}

	fileName := fmt.Sprintf("%s.jpg", name)
	if err := os.WriteFile(filepath.Join(uploadDir, fileName), data, 0o644); err != nil {
		uploadLog.Error().Err(err).Str("file", fileName).Msg("failed to write image")
		return ""
	}

	return "/uploads/" + fileName
}

// DeleteImageFile removes a stored image by its public path. Best effort:
// failures are logged and never surface to the caller.
func DeleteImageFile(publicPath string) bool {
	name := strings.TrimPrefix(publicPath, "/uploads/")
	if name == "" || strings.Contains(name, "..") {
		uploadLog.Warn().Str("path", publicPath).Msg("refusing to delete image outside upload dir")
		return false
	}

	if err := os.Remove(filepath.Join(uploadDir, name)); err != nil {
		if !os.IsNotExist(err) {
			uploadLog.Warn().Err(err).Str("path", publicPath).Msg("failed to delete image file")
		}
		return false
	}
	return true
}

// WriteExportFile persists an admin export under the upload dir and returns
// its public path.
func WriteExportFile(name string, data []byte) (string, error) {
	dir := filepath.Join(uploadDir, "exports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return "/uploads/exports/" + name, nil
}

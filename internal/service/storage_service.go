package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/suneung/mocktrack-backend/internal/config"
	"github.com/suneung/mocktrack-backend/internal/model"
)

// Sentinel errors for attachment storage.
var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidBlobPath = errors.New("invalid blob path")
)

// StorageService stores schedule attachments as blobs under the upload
// directory. Blobs are named by UUID; the original filename lives only in
// the metadata row.
type StorageService struct {
	cfg *config.Config
}

// NewStorageService creates a new StorageService.
func NewStorageService(cfg *config.Config) *StorageService {
	return &StorageService{cfg: cfg}
}

// SaveUpload writes one uploaded attachment to disk and returns its
// metadata (schedule id unset; the caller assigns it when recording the
// row). Any content type is accepted; only the configured size cap
// applies.
func (s *StorageService) SaveUpload(file multipart.File, header *multipart.FileHeader) (model.ScheduleFile, error) {
	var meta model.ScheduleFile

	if header.Size > s.cfg.MaxUploadBytes {
		return meta, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return meta, fmt.Errorf("create upload dir: %w", err)
	}

	blobName := uuid.New().String() + sanitizeExt(header.Filename)
	destPath := filepath.Join(s.cfg.UploadDir, blobName)

	dst, err := os.Create(destPath)
	if err != nil {
		return meta, fmt.Errorf("create blob: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(destPath)
		return meta, fmt.Errorf("write blob: %w", err)
	}

	meta = model.ScheduleFile{
		Name:        filepath.Base(header.Filename),
		Path:        blobName,
		Size:        written,
		ContentType: header.Header.Get("Content-Type"),
	}
	return meta, nil
}

// Delete removes a blob. A blob that is already gone is not an error:
// schedule deletion must tolerate partial prior cleanup.
func (s *StorageService) Delete(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// resolve maps a stored blob path to an absolute location, rejecting
// anything that would escape the upload directory.
func (s *StorageService) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	if clean == "." || clean == ".." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBlobPath, path)
	}
	return filepath.Join(s.cfg.UploadDir, clean), nil
}

// sanitizeExt keeps a short, safe file extension for the blob name.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}

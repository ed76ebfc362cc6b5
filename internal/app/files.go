package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"snapfeed/internal/preview"
	"snapfeed/internal/storage"
	"snapfeed/internal/util"
	"snapfeed/pkg/domain"
)

// Upload is the inbound file payload of a post workflow.
type Upload struct {
	Name        string
	Reader      io.Reader
	Size        int64
	ContentType string
}

// UploadFile stores the payload under a fresh identifier and returns the
// file handle.
func (a *App) UploadFile(ctx context.Context, up Upload) (domain.UploadedFile, error) {
	if up.Reader == nil {
		return domain.UploadedFile{}, fmt.Errorf("%w: file payload required", ErrInvalidArgument)
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	file := domain.UploadedFile{ID: util.NewID(), Name: up.Name, ContentType: contentType, SizeBytes: up.Size}
	if err := a.objects.Put(ctx, fileKey(file.ID), up.Reader, up.Size, contentType); err != nil {
		return domain.UploadedFile{}, fmt.Errorf("store file: %w", err)
	}
	return file, nil
}

// FilePreviewURL derives the bounded preview URL for a stored file. The
// file must exist; the parameters mirror what the preview endpoint applies.
func (a *App) FilePreviewURL(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", fmt.Errorf("%w: file id required", ErrInvalidArgument)
	}
	if _, err := a.objects.Stat(ctx, fileKey(fileID)); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", fmt.Errorf("%w: file %s", ErrNotFound, fileID)
		}
		return "", fmt.Errorf("stat file: %w", err)
	}
	o := preview.DefaultOptions
	return fmt.Sprintf("%s/v1/files/%s/preview?width=%d&height=%d&gravity=%s&quality=%d",
		a.baseURL, fileID, o.Width, o.Height, o.Gravity, o.Quality), nil
}

// DeleteFile removes a stored file. Deleting a file that does not exist is
// not an error.
func (a *App) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w: file id required", ErrInvalidArgument)
	}
	if err := a.objects.Delete(ctx, fileKey(fileID)); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// stagedImage is an uploaded post image whose owning document has not been
// written yet. Release deletes the object; workflows call it on any failure
// path after the upload so no orphan files remain. Release failures are
// logged and swallowed so the original error is the one reported.
type stagedImage struct {
	file    domain.UploadedFile
	url     string
	release func()
}

// stageImage uploads the payload and derives its preview URL. If the
// derivation fails the upload is deleted before returning.
func (a *App) stageImage(ctx context.Context, up Upload) (stagedImage, error) {
	file, err := a.UploadFile(ctx, up)
	if err != nil {
		return stagedImage{}, err
	}
	release := func() {
		if err := a.DeleteFile(ctx, file.ID); err != nil {
			util.LoggerFromContext(ctx).Error("release staged image",
				slog.String("file_id", file.ID), slog.String("error", err.Error()))
		}
	}
	url, err := a.FilePreviewURL(ctx, file.ID)
	if err != nil {
		release()
		return stagedImage{}, err
	}
	return stagedImage{file: file, url: url, release: release}, nil
}

// OpenFile opens a stored file for streaming.
func (a *App) OpenFile(ctx context.Context, fileID string) (io.ReadCloser, storage.ObjectInfo, error) {
	if fileID == "" {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: file id required", ErrInvalidArgument)
	}
	rc, info, err := a.objects.Get(ctx, fileKey(fileID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, fmt.Errorf("%w: file %s", ErrNotFound, fileID)
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("open file: %w", err)
	}
	return rc, info, nil
}

// OpenAvatar opens an account's stored avatar for streaming.
func (a *App) OpenAvatar(ctx context.Context, accountID string) (io.ReadCloser, storage.ObjectInfo, error) {
	if accountID == "" {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: account id required", ErrInvalidArgument)
	}
	rc, info, err := a.objects.Get(ctx, avatarKey(accountID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, fmt.Errorf("%w: avatar for %s", ErrNotFound, accountID)
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("open avatar: %w", err)
	}
	return rc, info, nil
}

package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"blop-post/pkg/logger"
	"blop-post/services/post/internal/entity"
)

type MediaUseCase interface {
	Upload(ctx context.Context, category string, file *multipart.FileHeader) (string, error)
}

type mediaUseCase struct {
	storage  MediaStorage
	maxBytes int64
	logger   *logger.Logger
	now      func() time.Time
}

func NewMediaUseCase(storage MediaStorage, maxBytes int64, logger *logger.Logger) MediaUseCase {
	return &mediaUseCase{
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}
}

// Upload stores the file under <category>/<unixMillis>-<random><ext> and
// returns its public URL.
func (uc *mediaUseCase) Upload(ctx context.Context, category string, file *multipart.FileHeader) (string, error) {
	mediaCategory, err := entity.ParseMediaCategory(category)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", entity.ErrNoUploadFile
	}
	if uc.maxBytes > 0 && file.Size > uc.maxBytes {
		return "", entity.ErrUploadTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	key := uc.objectKey(mediaCategory, file.Filename)
	url, err := uc.storage.Save(ctx, key, src, file.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to store %s image: %w", mediaCategory, err)
	}

	uc.logger.Info("Stored %s image %s (%d bytes)", mediaCategory, key, file.Size)
	return url, nil
}

func (uc *mediaUseCase) objectKey(category entity.MediaCategory, filename string) string {
	return fmt.Sprintf("%s/%d-%d%s",
		category,
		uc.now().UnixMilli(),
		rand.Int63n(1_000_000_001),
		safeExt(filename),
	)
}

// safeExt keeps only ASCII letters, digits and dots from the filename's
// extension so the key is usable verbatim in a URL path.
func safeExt(filename string) string {
	ext := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			return r
		}
		return -1
	}, filepath.Ext(filename))
	if strings.Trim(ext, ".") == "" {
		return ""
	}
	return ext
}

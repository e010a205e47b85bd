package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"brainscore-quiz-service/internal/domain"
)

// FSUploader keeps uploads on local disk for development; files are served under /media/.
type FSUploader struct {
	base      string
	publicURL string
}

func NewFSUploader(base, publicURL string) (*FSUploader, error) {
	if base == "" {
		base = "./data/media"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSUploader{base: base, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir is the directory files are written to.
func (s *FSUploader) Dir() string { return s.base }

func (s *FSUploader) Upload(ctx context.Context, f File, progress ProgressFunc) (string, error) {
	key := uuid.NewString() + strings.ToLower(filepath.Ext(f.Name))
	dst := filepath.Join(s.base, key)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	body := newProgressReader(f.Body, f.Size, progress)
	_, copyErr := io.Copy(out, readerWithContext(ctx, body))
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(dst)
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, copyErr)
	}
	body.done()
	return s.publicURL + "/media/" + key, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

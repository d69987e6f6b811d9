package pdf

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ErrInvalidFormID は保存先の名前に使えないフォーム ID の場合に返されます。
var ErrInvalidFormID = errors.New("pdf: invalid form id")

// ArtifactPathPrefix は生成物を公開する HTTP パスの接頭辞です。
const ArtifactPathPrefix = "/artifacts/"

// FileStore は生成した PDF をディレクトリに保存する review.ArtifactStore 実装です。
type FileStore struct {
	dir     string
	baseURL string
	logger  *zap.Logger
}

// NewFileStore は保存先ディレクトリを作成し FileStore を返します。
// baseURL は公開 URL の起点で、末尾のスラッシュは取り除きます。
func NewFileStore(dir, baseURL string, logger *zap.Logger) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("pdf: output dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Dir は保存先ディレクトリを返します。
func (s *FileStore) Dir() string {
	return s.dir
}

// Save は内容を i9-<formID>-<ULID>.pdf として保存し、公開 URL を返します。
func (s *FileStore) Save(ctx context.Context, formID string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if formID == "" || strings.ContainsAny(formID, `/\.`) {
		return "", ErrInvalidFormID
	}

	name := fmt.Sprintf("i9-%s-%s.pdf", formID, ulid.Make().String())
	tmp, err := os.CreateTemp(s.dir, ".tmp-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("rename artifact: %w", err)
	}

	s.logger.Info("artifact stored", zap.String("form_id", formID), zap.String("name", name), zap.Int("bytes", len(content)))
	return s.baseURL + ArtifactPathPrefix + url.PathEscape(name), nil
}

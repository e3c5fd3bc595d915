package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"zone-api/internal/logger"
)

// FileRepository：单文件仓库，适合随部署分发的静态区域配置
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository { return &FileRepository{path: path} }

func (f *FileRepository) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read zones file %q: %w", f.path, err)
	}
	logger.L().Debug("zones_file_loaded", "path", f.path, "bytes", len(b))
	return b, nil
}

// Save：先写临时文件再重命名，读方不会看到写了一半的文件
func (f *FileRepository) Save(ctx context.Context, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create zones dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".zones-*.json")
	if err != nil {
		return fmt.Errorf("create temp zones file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp zones file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace zones file: %w", err)
	}
	logger.L().Info("zones_file_saved", "path", f.path, "bytes", len(raw))
	return nil
}

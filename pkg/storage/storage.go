package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound blob 不存在
	ErrNotFound = errors.New("文件内容不存在")
	// ErrTooLarge 超过允许的最大字节数
	ErrTooLarge = errors.New("文件超过大小限制")
	// ErrInvalidKey key 非法（越出存储根目录）
	ErrInvalidKey = errors.New("存储 key 非法")
)

// BlobStore 文件内容存储接口；元数据由数据库保存，内容以 key 寻址
type BlobStore interface {
	Put(ctx context.Context, r io.Reader, maxSize int64) (key string, size int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// LocalStore 本地文件系统实现，key 形如 "ab/abcdef..."（按前两位分桶）
type LocalStore struct {
	root   string
	logger *zap.Logger
}

// NewLocalStore 创建本地存储，根目录不存在时自动创建
func NewLocalStore(root string, logger *zap.Logger) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("解析存储根目录失败: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("创建存储根目录失败: %w", err)
	}
	logger.Info("文件存储已就绪", zap.String("root", abs))
	return &LocalStore{root: abs, logger: logger}, nil
}

// Put 写入内容；先写临时文件，完整写入后再原子重命名
func (s *LocalStore) Put(ctx context.Context, r io.Reader, maxSize int64) (string, int64, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	key := id[:2] + "/" + id
	path, err := s.path(key)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", 0, fmt.Errorf("创建存储目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())

	src := io.Reader(contextReader{ctx: ctx, r: r})
	if maxSize > 0 {
		src = io.LimitReader(src, maxSize+1)
	}
	size, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", 0, fmt.Errorf("写入文件失败: %w", err)
	}
	if maxSize > 0 && size > maxSize {
		return "", 0, ErrTooLarge
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("保存文件失败: %w", err)
	}
	return key, size, nil
}

func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete 删除内容；不存在视为成功
func (s *LocalStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || filepath.IsAbs(key) {
		return "", ErrInvalidKey
	}
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return p, nil
}

// contextReader 读取前检查 ctx，客户端断开时中止上传
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

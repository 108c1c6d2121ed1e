package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/pkg/storage"
)

// ── 内存 BlobStore ──

type memBlobStore struct {
	seq   int
	blobs map[string][]byte
}

func newMemBlobStore() *memBlobStore { return &memBlobStore{blobs: map[string][]byte{}} }

func (s *memBlobStore) Put(_ context.Context, r io.Reader, maxSize int64) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", 0, storage.ErrTooLarge
	}
	s.seq++
	key := fmt.Sprintf("blob/%04d", s.seq)
	s.blobs[key] = data
	return key, int64(len(data)), nil
}

func (s *memBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memBlobStore) Delete(_ context.Context, key string) error {
	delete(s.blobs, key)
	return nil
}

type fileFixture struct {
	svc   FileService
	st    *memStore
	blobs *memBlobStore
}

func setupTestFileService() *fileFixture {
	repo, st := newMockRepository()
	blobs := newMemBlobStore()
	return &fileFixture{svc: NewFileService(repo, blobs, 16, zap.NewNop()), st: st, blobs: blobs}
}

func (f *fileFixture) mkdir(t *testing.T, name string, parentID *string) *dto.FolderResponse {
	t.Helper()
	folder, err := f.svc.CreateFolder(context.Background(), &dto.CreateFolderRequest{Name: name, ParentID: parentID}, "admin-001")
	if err != nil {
		t.Fatalf("CreateFolder(%s) 应成功: %v", name, err)
	}
	return folder
}

// ── 目录测试 ──

func TestFileService_UpdateFolder_RejectsCycle(t *testing.T) {
	f := setupTestFileService()
	ctx := context.Background()
	root := f.mkdir(t, "Obras", nil)
	child := f.mkdir(t, "2025", &root.ID)
	grandchild := f.mkdir(t, "Enero", &child.ID)

	tests := []struct {
		name   string
		target string
	}{
		{"移动到自身", root.ID},
		{"移动到子目录", child.ID},
		{"移动到孙目录", grandchild.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.target
			_, err := f.svc.UpdateFolder(ctx, root.ID, &dto.UpdateFolderRequest{ParentID: &target}, "admin-001")
			if !errors.Is(err, ErrFolderCycle) {
				t.Errorf("期望 ErrFolderCycle，实际: %v", err)
			}
		})
	}

	// 移回根目录
	empty := ""
	moved, err := f.svc.UpdateFolder(ctx, grandchild.ID, &dto.UpdateFolderRequest{ParentID: &empty}, "admin-001")
	if err != nil {
		t.Fatalf("移动到根目录应成功: %v", err)
	}
	if moved.ParentID != nil {
		t.Error("移动到根目录后 parent_id 应为空")
	}
}

func TestFileService_CreateFolder_Validation(t *testing.T) {
	f := setupTestFileService()
	ctx := context.Background()
	missing := "00000000-0000-4000-8000-999999999999"

	if _, err := f.svc.CreateFolder(ctx, &dto.CreateFolderRequest{Name: "a/b"}, "admin-001"); !errors.Is(err, ErrInvalidFileName) {
		t.Errorf("期望 ErrInvalidFileName，实际: %v", err)
	}
	if _, err := f.svc.CreateFolder(ctx, &dto.CreateFolderRequest{Name: "Docs", ParentID: &missing}, "admin-001"); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("期望 ErrFolderNotFound，实际: %v", err)
	}
	if _, err := f.svc.CreateFolder(ctx, &dto.CreateFolderRequest{Name: "Docs", ProjectID: &missing}, "admin-001"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("期望 ErrProjectNotFound，实际: %v", err)
	}
}

// ── 文件测试 ──

func TestFileService_UploadDownloadDelete(t *testing.T) {
	f := setupTestFileService()
	ctx := context.Background()
	folder := f.mkdir(t, "Facturas", nil)

	up, err := f.svc.Upload(ctx, &folder.ID, `C:\tmp\factura.pdf`, "", strings.NewReader("%PDF-1.4"), "admin-001")
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}
	if up.Name != "factura.pdf" {
		t.Errorf("应只保留文件名，实际 %s", up.Name)
	}
	if up.ContentType != "application/octet-stream" || up.Size != 8 {
		t.Errorf("期望默认类型与大小 8，实际 %s %d", up.ContentType, up.Size)
	}

	meta, rc, err := f.svc.Download(ctx, up.ID)
	if err != nil {
		t.Fatalf("Download 应成功: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "%PDF-1.4" || meta.ID != up.ID {
		t.Errorf("下载内容不符: %q", data)
	}

	contents, err := f.svc.GetFolder(ctx, folder.ID)
	if err != nil {
		t.Fatalf("GetFolder 应成功: %v", err)
	}
	if len(contents.Files) != 1 || contents.Folder == nil {
		t.Errorf("目录应包含 1 个文件，实际 %d", len(contents.Files))
	}

	if err := f.svc.DeleteFile(ctx, up.ID); err != nil {
		t.Fatalf("DeleteFile 应成功: %v", err)
	}
	if len(f.blobs.blobs) != 0 {
		t.Error("删除文件应同时删除内容")
	}
	if _, _, err := f.svc.Download(ctx, up.ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("期望 ErrFileNotFound，实际: %v", err)
	}
}

func TestFileService_Upload_TooLarge(t *testing.T) {
	f := setupTestFileService()

	_, err := f.svc.Upload(context.Background(), nil, "plano.dwg", "application/acad", strings.NewReader(strings.Repeat("x", 17)), "admin-001")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("期望 ErrFileTooLarge，实际: %v", err)
	}
	if len(f.st.files) != 0 || len(f.blobs.blobs) != 0 {
		t.Error("超限上传不应留下元数据或内容")
	}
}

func TestFileService_Download_MissingBlob(t *testing.T) {
	f := setupTestFileService()
	ctx := context.Background()
	up, err := f.svc.Upload(ctx, nil, "nota.txt", "text/plain", strings.NewReader("hola"), "admin-001")
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}
	f.blobs.blobs = map[string][]byte{}

	if _, _, err := f.svc.Download(ctx, up.ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("内容缺失时期望 ErrFileNotFound，实际: %v", err)
	}
}

func TestFileService_DeleteFolder_Recursive(t *testing.T) {
	f := setupTestFileService()
	ctx := context.Background()
	root := f.mkdir(t, "Obras", nil)
	child := f.mkdir(t, "Fotos", &root.ID)
	keep := f.mkdir(t, "Otros", nil)

	for _, folderID := range []string{root.ID, child.ID, keep.ID} {
		id := folderID
		if _, err := f.svc.Upload(ctx, &id, "img.jpg", "image/jpeg", strings.NewReader("jpg"), "admin-001"); err != nil {
			t.Fatalf("Upload 应成功: %v", err)
		}
	}

	if err := f.svc.DeleteFolder(ctx, root.ID); err != nil {
		t.Fatalf("DeleteFolder 应成功: %v", err)
	}
	if len(f.st.folders) != 1 || len(f.st.files) != 1 || len(f.blobs.blobs) != 1 {
		t.Errorf("应只保留无关目录，实际 folders=%d files=%d blobs=%d",
			len(f.st.folders), len(f.st.files), len(f.blobs.blobs))
	}

	root2, err := f.svc.ListRoot(ctx)
	if err != nil {
		t.Fatalf("ListRoot 应成功: %v", err)
	}
	if len(root2.Folders) != 1 || root2.Folders[0].Name != "Otros" {
		t.Errorf("根目录应只剩 Otros，实际 %+v", root2.Folders)
	}
}

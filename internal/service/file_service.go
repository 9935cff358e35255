package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/mfportal/internal/db"
	"github.com/mfportal/internal/storage"
	"gorm.io/gorm"
)

var (
	// ErrFileNotFound 在文件记录或文件内容不存在时返回
	ErrFileNotFound = errors.New("file not found")
	// ErrFileInvalidInput 在上传参数不完整时返回
	ErrFileInvalidInput = errors.New("invalid file input")
)

// 按扩展名确定 MIME 类型，不做内容嗅探
var fileTypeByExtension = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xlsm": "application/vnd.ms-excel.sheet.macroEnabled.12",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".rtf":  "application/rtf",
	".zip":  "application/zip",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".vcf":  VCardMIMEType,
}

// MimeTypeForName maps a file name's extension to a MIME type, falling back to
// application/octet-stream.
func MimeTypeForName(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return "application/octet-stream"
	}
	if known, ok := fileTypeByExtension[ext]; ok {
		return known
	}
	if guessed := mime.TypeByExtension(ext); guessed != "" {
		return guessed
	}
	return "application/octet-stream"
}

// FileDownload is an open underwriting file ready to stream.
type FileDownload struct {
	Content  storage.Object
	Size     int64
	MIMEType string
	FileName string
}

// FileService 负责物业尽调文件的下载与登记
type FileService struct {
	db    *gorm.DB
	store storage.Storage
}

// NewFileService 构造 FileService
func NewFileService(gdb *gorm.DB, store storage.Storage) *FileService {
	return &FileService{db: gdb, store: store}
}

// Download 查找同时匹配物业与文件 ID 的记录，并打开对应的存储对象
// 记录缺失、对象缺失或长度为 0 均视为 ErrFileNotFound
func (s *FileService) Download(ctx context.Context, propertyID, fileID uuid.UUID) (*FileDownload, error) {
	var record db.UnderwritingProspectFile
	err := s.db.WithContext(ctx).
		Where("id = ? AND property_id = ?", fileID.String(), propertyID.String()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("find underwriting file: %w", err)
	}

	obj, err := s.store.Open(record.StoragePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open underwriting file: %w", err)
	}

	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat underwriting file: %w", err)
	}
	if info.IsDir() || info.Size() == 0 {
		obj.Close()
		return nil, ErrFileNotFound
	}

	return &FileDownload{
		Content:  obj,
		Size:     info.Size(),
		MIMEType: MimeTypeForName(record.Name),
		FileName: record.Name,
	}, nil
}

// Register 保存文件内容并登记元数据，存储失败时不写入记录
func (s *FileService) Register(ctx context.Context, propertyID uuid.UUID, name, description string, r io.Reader) (*db.UnderwritingProspectFile, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.ContainsAny(trimmed, "/\\") {
		return nil, fmt.Errorf("%w: file name is required", ErrFileInvalidInput)
	}

	record := db.UnderwritingProspectFile{
		ID:          uuid.NewString(),
		PropertyID:  propertyID.String(),
		Name:        trimmed,
		Description: strings.TrimSpace(description),
		Type:        strings.TrimPrefix(strings.ToLower(path.Ext(trimmed)), "."),
	}

	if _, err := s.store.Put(record.StoragePath(), r); err != nil {
		return nil, fmt.Errorf("store underwriting file: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		_ = s.store.Delete(record.StoragePath())
		return nil, fmt.Errorf("create underwriting file: %w", err)
	}

	return &record, nil
}

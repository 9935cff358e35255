package db

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnderwritingProspectFile 记录物业尽调文件的元数据，文件内容保存在 blob 存储中。
type UnderwritingProspectFile struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	PropertyID  string `gorm:"type:varchar(36);index;not null"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Type        string `gorm:"size:50"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 返回自定义表名
func (UnderwritingProspectFile) TableName() string {
	return "underwriting_prospect_files"
}

// BeforeCreate 在未指定主键时生成 UUID。
func (f *UnderwritingProspectFile) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(f.ID) == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// StoragePath 返回文件在 blob 存储中的相对路径：underwriting/{propertyId}/{fileId}{ext}。
func (f UnderwritingProspectFile) StoragePath() string {
	return path.Join("underwriting", f.PropertyID, f.ID+path.Ext(f.Name))
}

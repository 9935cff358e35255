package db

import (
	"time"

	"gorm.io/gorm"
)

// InvestorProspect 保存投资意向表单，只追加不修改。
type InvestorProspect struct {
	gorm.Model
	FirstName       string  `gorm:"size:100"`
	LastName        string  `gorm:"size:100"`
	Email           string  `gorm:"size:255;index;not null"`
	Phone           string  `gorm:"size:50"`
	Timezone        string  `gorm:"size:80"`
	LookingToInvest float64 `gorm:"not null"`
	Comments        string  `gorm:"type:text"`
	Contacted       bool
}

// TableName 返回自定义表名
func (InvestorProspect) TableName() string {
	return "investor_prospects"
}

// Subscriber 是邮件订阅者，Email 唯一。
type Subscriber struct {
	gorm.Model
	Email            string `gorm:"size:255;uniqueIndex;not null"`
	IPAddress        string `gorm:"column:ip_address;size:64"`
	City             string `gorm:"size:120"`
	Region           string `gorm:"size:120"`
	Country          string `gorm:"size:120"`
	Continent        string `gorm:"size:60"`
	ConfirmationCode string `gorm:"size:64;uniqueIndex;not null"`
	IsActive         bool   `gorm:"not null;default:false"`
	ConfirmedAt      *time.Time
}

// TableName 返回自定义表名
func (Subscriber) TableName() string {
	return "subscribers"
}

package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PDF 导出状态。
const (
	PdfStatusPending   = "pending"
	PdfStatusCompleted = "completed"
	PdfStatusFailed    = "failed"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username           string   `gorm:"uniqueIndex;size:64"`
	PasswordHash       string   `gorm:"size:255"`
	MustChangePassword bool     `gorm:"default:false"`
	Resumes            []Resume `gorm:"constraint:OnDelete:CASCADE"`
}

// Resume 表示用户创建的简历，区块与样式分表存储。
type Resume struct {
	gorm.Model
	Title            string    `gorm:"size:255"`
	TemplateName     string    `gorm:"size:32;default:classic"`
	ShareSlug        *string   `gorm:"uniqueIndex;size:64"`
	UserID           uint      `gorm:"index"`
	User             User      `gorm:"constraint:OnDelete:CASCADE"`
	PdfObjectKey     string    `gorm:"size:512"`
	PdfStatus        string    `gorm:"size:32"`
	PreviewObjectKey string    `gorm:"size:512"`
	Sections         []Section `gorm:"constraint:OnDelete:CASCADE"`
	Style            *Style    `gorm:"constraint:OnDelete:CASCADE"`
}

// Section 是简历中的一个区块，Content 按类型存放不同结构的 JSON。
type Section struct {
	gorm.Model
	ResumeID uint           `gorm:"index"`
	Type     string         `gorm:"size:32;index"`
	Order    int            `gorm:"column:order_index;default:0"`
	Content  datatypes.JSON `gorm:"type:jsonb"`
}

// Style 是简历级的全局样式，每份简历一条。
type Style struct {
	gorm.Model
	ResumeID     uint   `gorm:"uniqueIndex"`
	PrimaryColor string `gorm:"size:32;default:#000000"`
	FontFamily   string `gorm:"size:64;default:Inter"`
	FontSize     int    `gorm:"default:10"`
}

// AutoMigrate 创建或更新全部表结构。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Resume{}, &Section{}, &Style{})
}

package storage

import (
	"fmt"

	"github.com/google/uuid"
)

// ResumePrefix 是某份简历全部导出产物的对象前缀。
func ResumePrefix(userID, resumeID uint) string {
	return fmt.Sprintf("resumes/%d/%d/", userID, resumeID)
}

// PDFObjectKey 为一次 PDF 导出生成新的对象键，每次导出都不同以绕开 CDN 缓存。
func PDFObjectKey(userID, resumeID uint) string {
	return ResumePrefix(userID, resumeID) + uuid.NewString() + ".pdf"
}

// PreviewObjectKey 为 PDF 首页缩略图生成对象键。
func PreviewObjectKey(userID, resumeID uint) string {
	return ResumePrefix(userID, resumeID) + "preview-" + uuid.NewString() + ".jpg"
}

// ContentDisposition 返回触发浏览器下载的 Content-Disposition 值。
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

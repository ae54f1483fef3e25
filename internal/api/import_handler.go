package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/editor"
	"resumeforge/internal/importer"
)

// multipart 头部与边界的余量。
const multipartOverhead = 1 << 20

// ImportHandler 负责简历文件的解析预览与导入。
type ImportHandler struct {
	importer *importer.Importer
	editor   *editor.Service
}

func NewImportHandler(imp *importer.Importer, svc *editor.Service) *ImportHandler {
	return &ImportHandler{importer: imp, editor: svc}
}

// Parse 接收 multipart 字段 file，返回解析出的结构供用户确认，不写库。
func (h *ImportHandler) Parse(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	maxBytes := h.importer.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(c, http.StatusRequestEntityTooLarge, h.importer.Message(importer.ErrTooLarge))
			return
		}
		BadRequest(c, "file is required")
		return
	}
	if header.Size > maxBytes {
		Error(c, http.StatusRequestEntityTooLarge, h.importer.Message(importer.ErrTooLarge))
		return
	}

	file, err := header.Open()
	if err != nil {
		BadRequest(c, "failed to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		BadRequest(c, "failed to read file")
		return
	}

	result, err := h.importer.ParseFile(c.Request.Context(), header.Filename, data)
	if err != nil {
		h.writeImportError(c, err, header.Filename)
		return
	}

	requestLogger(c).Info("resume file parsed",
		slog.String("filename", header.Filename),
		slog.String("source", string(result.Source)),
	)
	c.JSON(http.StatusOK, result)
}

// Apply 把确认后的解析结果逐个写成区块，部分失败返回 207。
func (h *ImportHandler) Apply(c *gin.Context) {
	var parsed importer.Parsed
	if err := c.ShouldBindJSON(&parsed); err != nil {
		BadRequest(c, err.Error())
		return
	}
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}

	items := importer.ToSections(parsed)
	if len(items) == 0 {
		BadRequest(c, "nothing to import")
		return
	}

	result, err := h.editor.AddSections(c.Request.Context(), userID, resumeID, items)
	if err != nil {
		writeEditorError(c, err, "import sections")
		return
	}
	writeBatchResult(c, result)
}

func (h *ImportHandler) writeImportError(c *gin.Context, err error, filename string) {
	log := requestLogger(c).With(slog.String("filename", filename))
	switch {
	case errors.Is(err, importer.ErrTooLarge):
		Error(c, http.StatusRequestEntityTooLarge, h.importer.Message(err))
	case errors.Is(err, importer.ErrInfected):
		log.Warn("infected upload rejected", slog.Any("error", err))
		Error(c, http.StatusUnprocessableEntity, h.importer.Message(err))
	case importer.IsClientError(err):
		Error(c, http.StatusUnprocessableEntity, h.importer.Message(err))
	default:
		log.Error("parse upload failed", slog.Any("error", err))
		Internal(c, h.importer.Message(err))
	}
}

package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxBytes 是上传文件的默认大小上限。
const DefaultMaxBytes = 5 * 1024 * 1024

// ErrTooLarge 表示上传文件超过大小上限。
var ErrTooLarge = errors.New("file too large")

// ParseObserver 接收每次解析使用的解析器，用于指标统计。
type ParseObserver func(source Source)

// Importer 负责上传文件的扫描、文本提取与解析。
// AI 解析失败时一律回退到规则解析，失败原因只写日志。
type Importer struct {
	ai        AIParser
	aiTimeout time.Duration
	scanner   Scanner
	maxBytes  int64
	logger    *slog.Logger
	observe   ParseObserver
}

// Option 配置 Importer。
type Option func(*Importer)

func WithAI(p AIParser) Option {
	return func(i *Importer) { i.ai = p }
}

// WithAITimeout 限制单次 AI 调用耗时，超时同样回退到规则解析。
func WithAITimeout(d time.Duration) Option {
	return func(i *Importer) { i.aiTimeout = d }
}

func WithScanner(s Scanner) Option {
	return func(i *Importer) {
		if s != nil {
			i.scanner = s
		}
	}
}

func WithMaxBytes(n int64) Option {
	return func(i *Importer) {
		if n > 0 {
			i.maxBytes = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

func WithObserver(fn ParseObserver) Option {
	return func(i *Importer) { i.observe = fn }
}

func New(opts ...Option) *Importer {
	i := &Importer{maxBytes: DefaultMaxBytes, logger: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// MaxBytes 返回上传大小上限。
func (i *Importer) MaxBytes() int64 {
	return i.maxBytes
}

// ParseFile 校验、扫描并解析一个上传文件。
func (i *Importer) ParseFile(ctx context.Context, filename string, data []byte) (Result, error) {
	if int64(len(data)) > i.maxBytes {
		return Result{}, ErrTooLarge
	}
	if i.scanner != nil {
		if err := i.scanner.Scan(ctx, data); err != nil {
			return Result{}, err
		}
	}
	text, err := ExtractText(filename, data)
	if err != nil {
		return Result{}, err
	}
	return i.ParseText(ctx, text), nil
}

// ParseText 优先使用 AI 解析，任何失败都回退到规则解析。
func (i *Importer) ParseText(ctx context.Context, text string) Result {
	if i.ai != nil {
		aiCtx := ctx
		if i.aiTimeout > 0 {
			var cancel context.CancelFunc
			aiCtx, cancel = context.WithTimeout(ctx, i.aiTimeout)
			defer cancel()
		}
		parsed, err := i.ai.Parse(aiCtx, text)
		if err == nil {
			i.record(SourceAI)
			return Result{Data: parsed, Source: SourceAI}
		}
		i.logger.Warn("ai resume parsing failed, falling back to heuristic parser",
			slog.String("error", err.Error()),
		)
	}
	i.record(SourceHeuristic)
	return Result{Data: ParseHeuristic(text), Source: SourceHeuristic}
}

func (i *Importer) record(source Source) {
	if i.observe != nil {
		i.observe(source)
	}
}

// IsClientError 判断错误是否由上传内容本身导致。
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedFile) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrNoText) ||
		errors.Is(err, ErrUnreadable) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrInfected)
}

// Message 返回适合直接展示给用户的错误信息。
func (i *Importer) Message(err error) string {
	switch {
	case errors.Is(err, ErrTooLarge):
		return fmt.Sprintf("file exceeds the %d MB limit", i.maxBytes/(1024*1024))
	case errors.Is(err, ErrUnsupportedFile):
		return "unsupported file type, upload a TXT, PDF or DOCX file"
	case errors.Is(err, ErrInfected):
		return "malicious file detected"
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrNoText), errors.Is(err, ErrUnreadable):
		return "no text could be read from the file"
	default:
		return "failed to parse file"
	}
}

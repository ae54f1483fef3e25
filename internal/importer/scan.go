package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dutchcoders/go-clamd"
)

// ErrInfected 表示上传文件未通过病毒扫描。
var ErrInfected = errors.New("malicious file detected")

// Scanner 在解析前检查上传内容。
type Scanner interface {
	Scan(ctx context.Context, data []byte) error
}

// ClamdScanner 通过 clamd 的 INSTREAM 命令扫描内存中的文件。
type ClamdScanner struct {
	client *clamd.Clamd
}

// NewClamdScanner 返回扫描器；addr 为空时返回 nil，表示跳过扫描。
func NewClamdScanner(addr string) Scanner {
	if addr == "" {
		return nil
	}
	return &ClamdScanner{client: clamd.NewClamd(addr)}
}

func (s *ClamdScanner) Scan(ctx context.Context, data []byte) error {
	abort := make(chan bool, 1)
	results, err := s.client.ScanStream(bytes.NewReader(data), abort)
	if err != nil {
		return fmt.Errorf("scan file: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			abort <- true
			return ctx.Err()
		case result, ok := <-results:
			if !ok {
				return nil
			}
			switch result.Status {
			case clamd.RES_OK:
			case clamd.RES_FOUND:
				return fmt.Errorf("%w: %s", ErrInfected, result.Description)
			default:
				return fmt.Errorf("scan file: %s %s", result.Status, result.Description)
			}
		}
	}
}

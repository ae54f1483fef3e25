package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// A4 纸张尺寸（英寸）。
const (
	PaperWidthInches  = 8.27
	PaperHeightInches = 11.69
)

// PreviewQuality 是缩略图 JPEG 质量。
const PreviewQuality = 80

// rootSelector 是渲染文档的页面根节点，缩略图只截取该区域。
const rootSelector = "#resume-root"

// Output 是一次打印的产物。Preview 截图失败时为空，不影响 PDF。
type Output struct {
	PDF     []byte
	Preview []byte
}

// Printer 把完整 HTML 文档打印为 PDF。
type Printer interface {
	Print(ctx context.Context, html string) (Output, error)
}

// RodPrinter 使用 go-rod 驱动无头 Chromium，每次打印使用独立浏览器进程。
type RodPrinter struct {
	logger  *slog.Logger
	timeout time.Duration
	bin     string
}

var _ Printer = (*RodPrinter)(nil)

// NewRodPrinter 创建打印器；timeout 为单次打印的总时限。
func NewRodPrinter(logger *slog.Logger, timeout time.Duration) *RodPrinter {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	p := &RodPrinter{logger: logger, timeout: timeout}
	if path, ok := launcher.LookPath(); ok {
		p.bin = path
	}
	return p
}

// Print 渲染 HTML 并输出 A4 PDF（保留背景色），同时截取首页 JPEG 缩略图。
func (p *RodPrinter) Print(ctx context.Context, html string) (out Output, err error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	launch := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)
	if p.bin != "" {
		launch = launch.Bin(p.bin)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return out, fmt.Errorf("launch chromium: %w", err)
	}
	defer launch.Cleanup()

	browser := rod.New().Context(ctx).ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return out, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return out, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	if err := page.SetDocumentContent(html); err != nil {
		return out, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return out, fmt.Errorf("wait load: %w", err)
	}
	p.waitFonts(page)

	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		return out, fmt.Errorf("set emulated media to print: %w", err)
	}

	out.PDF, err = exportPDF(page)
	if err != nil {
		return out, err
	}

	preview, err := captureScreenshot(page, PreviewQuality)
	if err != nil {
		p.logger.Warn("capture preview screenshot failed", slog.Any("error", err))
	} else {
		out.Preview = preview
	}
	return out, nil
}

// waitFonts 等待 WebFont 就绪，避免回退字体度量导致排版差异。最多等 3 秒。
func (p *RodPrinter) waitFonts(page *rod.Page) {
	_, err := page.Timeout(5 * time.Second).Eval(`() => {
	  if (document && document.fonts && document.fonts.ready) {
	    return Promise.race([
	      document.fonts.ready.then(() => true),
	      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
	    ]);
	  }
	  return true;
	}`)
	if err != nil {
		p.logger.Warn("document.fonts.ready wait failed, continue", slog.Any("error", err))
	}
}

// PrintOptions 返回 A4、零边距、打印背景的 PDF 参数。
func PrintOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PrintBackground:   true,
		PaperWidth:        float64Ptr(PaperWidthInches),
		PaperHeight:       float64Ptr(PaperHeightInches),
		MarginTop:         float64Ptr(0),
		MarginBottom:      float64Ptr(0),
		MarginLeft:        float64Ptr(0),
		MarginRight:       float64Ptr(0),
		PreferCSSPageSize: true,
	}
}

func exportPDF(page *rod.Page) ([]byte, error) {
	reader, err := page.PDF(PrintOptions())
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}

func captureScreenshot(page *rod.Page, quality int) ([]byte, error) {
	element, err := page.Timeout(5 * time.Second).Element(rootSelector)
	if err == nil {
		if data, shotErr := element.Screenshot(proto.PageCaptureScreenshotFormatJpeg, quality); shotErr == nil {
			return data, nil
		}
	}

	req := &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: intPtr(quality),
	}
	data, err := page.Screenshot(false, req)
	if err != nil {
		return nil, fmt.Errorf("page screenshot: %w", err)
	}
	return data, nil
}

func float64Ptr(value float64) *float64 {
	return &value
}

func intPtr(value int) *int {
	return &value
}

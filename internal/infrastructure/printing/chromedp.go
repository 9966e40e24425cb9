package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// Paper is a page size with a uniform margin, in millimetres
type Paper struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
}

var (
	// ReceiptPaper is a thermal receipt roll
	ReceiptPaper = Paper{WidthMM: 80, HeightMM: 3000, MarginMM: 4}
	// A4Landscape is used for tabular reports
	A4Landscape = Paper{WidthMM: 297, HeightMM: 210, MarginMM: 10}
)

// PDFRenderer converts an HTML document to PDF
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string, paper Paper) ([]byte, error)
}

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	Timeout time.Duration
	// RemoteURL is the devtools URL of a running Chrome. Empty launches a local browser.
	RemoteURL string
	// NoSandbox is required when running as root in containers
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromedpRenderer renders HTML to PDF using Chrome DevTools Protocol
type ChromedpRenderer struct {
	config      ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a chromedp-based PDF renderer. The browser is
// started lazily on the first render.
func NewChromedpRenderer(config ChromedpConfig) *ChromedpRenderer {
	if config.Timeout <= 0 {
		config.Timeout = defaultChromeTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{config: config, logger: logger}
	if config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), config.RemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// RenderPDF prints html on the given paper
func (r *ChromedpRenderer) RenderPDF(ctx context.Context, html string, paper Paper) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// stop the tab when the request context ends
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(mmToInches(paper.WidthMM)).
				WithPaperHeight(mmToInches(paper.HeightMM)).
				WithMarginTop(mmToInches(paper.MarginMM)).
				WithMarginBottom(mmToInches(paper.MarginMM)).
				WithMarginLeft(mmToInches(paper.MarginMM)).
				WithMarginRight(mmToInches(paper.MarginMM)).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", r.config.Timeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	r.logger.Info("PDF rendered",
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(startTime)))
	return pdfData, nil
}

// Close releases the browser
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)

package favicon

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MarinaBrowser/marina/shell/internal/domain/overlay"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// Tabs is the slice of the organization store the provider needs
type Tabs interface {
	Get(tabID string) (*types.Tab, bool)
	ApplyTabUpdate(tabID string, upd types.TabUpdate) (*types.Tab, error)
}

// Recorder counts fetch outcomes; nil disables counting
type Recorder interface {
	RecordFaviconFetch(status string)
}

// Options tunes the worker pool
type Options struct {
	Workers   int
	QueueSize int
	CacheSize int
	Timeout   time.Duration
}

type job struct {
	tabID   string
	pageURL string
	iconURL string // explicit candidate from a surface event, may be empty
}

// Provider resolves favicons off the hot path. Jobs are dropped rather than
// queued unboundedly; a dropped favicon is invisible next to a dropped frame.
type Provider struct {
	fetcher *Fetcher
	tabs    Tabs
	cache   *cache
	log     *logging.Logger
	rec     Recorder
	timeout time.Duration
	workers int

	jobs chan job
	wg   sync.WaitGroup
}

// New creates a provider; Start must be called before Enqueue has any effect
func New(fetcher *Fetcher, tabs Tabs, log *logging.Logger, rec Recorder, opts Options) *Provider {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if log == nil {
		log = logging.NewNop()
	}

	return &Provider{
		fetcher: fetcher,
		tabs:    tabs,
		cache:   newCache(opts.CacheSize),
		log:     log.Named("favicon"),
		rec:     rec,
		timeout: opts.Timeout,
		workers: opts.Workers,
		jobs:    make(chan job, opts.QueueSize),
	}
}

// Start launches the worker pool; workers exit when ctx is cancelled
func (p *Provider) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j := <-p.jobs:
					p.process(ctx, j)
				}
			}
		}()
	}
}

// Wait blocks until all workers have exited
func (p *Provider) Wait() {
	p.wg.Wait()
}

// Enqueue schedules a resolution; never blocks, drops when the queue is full
func (p *Provider) Enqueue(tabID, pageURL, iconURL string) {
	select {
	case p.jobs <- job{tabID: tabID, pageURL: pageURL, iconURL: iconURL}:
	default:
		p.log.Debug("favicon queue full, dropping job", zap.String("tab_id", tabID))
		p.record("dropped")
	}
}

func (p *Provider) process(ctx context.Context, j job) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tab, ok := p.tabs.Get(j.tabID)
	if !ok {
		return // tab closed while the job sat in the queue
	}

	pageURL := j.pageURL
	if pageURL == "" {
		pageURL = tab.URL
	}
	if pageURL == "" || overlay.IsInternal(pageURL) {
		return // internal pages render built-in glyphs
	}

	// Explicit candidate from the surface: verify and apply, no page fetch
	if j.iconURL != "" {
		if _, err := p.fetcher.VerifyIcon(ctx, j.iconURL); err != nil {
			p.log.Debug("favicon candidate rejected",
				zap.String("tab_id", j.tabID),
				zap.String("icon_url", j.iconURL),
				zap.Error(err),
			)
			p.record("failed")
			return
		}
		p.cache.put(hostOf(pageURL), j.iconURL)
		p.apply(j.tabID, j.iconURL, "")
		p.record("fetched")
		return
	}

	if iconURL, ok := p.cache.get(hostOf(pageURL)); ok {
		p.apply(j.tabID, iconURL, "")
		p.record("cached")
		return
	}

	meta, err := p.fetcher.Resolve(ctx, pageURL)
	if err != nil {
		p.log.Debug("favicon resolution failed",
			zap.String("tab_id", j.tabID),
			zap.String("page_url", pageURL),
			zap.Error(err),
		)
		p.record("failed")
		return
	}

	p.cache.put(hostOf(pageURL), meta.IconURL)

	// Title fallback only when the surface never reported one
	title := ""
	if meta.Title != "" && placeholderTitle(tab) {
		title = meta.Title
	}
	p.apply(j.tabID, meta.IconURL, title)
	p.record("fetched")
}

func (p *Provider) apply(tabID, iconURL, title string) {
	upd := types.TabUpdate{Favicon: &iconURL}
	if title != "" {
		upd.Title = &title
	}
	if _, err := p.tabs.ApplyTabUpdate(tabID, upd); err != nil {
		p.log.Debug("favicon apply skipped", zap.String("tab_id", tabID), zap.Error(err))
	}
}

func (p *Provider) record(status string) {
	if p.rec != nil {
		p.rec.RecordFaviconFetch(status)
	}
}

// CacheLen reports how many hosts currently have a cached icon
func (p *Provider) CacheLen() int {
	return p.cache.len()
}

// placeholderTitle reports whether the tab still shows a stand-in title
// rather than one a page reported
func placeholderTitle(tab *types.Tab) bool {
	return tab.Title == "" || tab.Title == types.DefaultTabTitle || tab.Title == tab.URL
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}

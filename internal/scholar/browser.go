// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// resultsSelector is the container the provider renders results into.
// Navigation is not complete until it appears.
const resultsSelector = "#gs_res_ccl_mid"

// browserBackend drives a shared headless Chrome through rod. The
// browser process launches lazily on first use and lives until close;
// each call opens and closes its own page against it.
type browserBackend struct {
	cfg types.ScholarConfig

	mu      sync.RWMutex
	browser *rod.Browser
}

func newBrowserBackend(cfg types.ScholarConfig) *browserBackend {
	return &browserBackend{cfg: cfg}
}

func (b *browserBackend) name() string { return types.MethodBrowser }

func (b *browserBackend) fetchPapers(ctx context.Context, pageURL string, max int) ([]types.Paper, error) {
	if err := b.ensureStarted(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	browser := b.browser
	b.mu.RUnlock()
	if browser == nil {
		return nil, fmt.Errorf("browser closed")
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(b.cfg.NavigationTimeout)
	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if _, err := page.Element(resultsSelector); err != nil {
		return nil, fmt.Errorf("results container: %w", err)
	}
	rendered, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	papers, err := parseResultsHTML(rendered, max)
	if err != nil {
		return nil, err
	}
	for i := range papers {
		papers[i].SearchMethod = types.MethodBrowser
	}
	return papers, nil
}

// ensureStarted launches and connects the shared browser once. The
// browser is not bound to any call context; canceling one call must not
// tear it down.
func (b *browserBackend) ensureStarted() error {
	b.mu.RLock()
	if b.browser != nil {
		b.mu.RUnlock()
		return nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return nil
	}

	controlURL, err := launcher.New().Headless(true).NoSandbox(true).Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	b.browser = browser
	return nil
}

func (b *browserBackend) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}

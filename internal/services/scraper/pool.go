package scraper

import (
	"context"
	"sync"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// FetchAll fetches urls through a bounded worker pool and returns the
// successful pages in input order. Failed and unusable pages are dropped.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []*models.FetchedPage {
	if len(urls) == 0 {
		return nil
	}

	workers := f.workers
	if workers > len(urls) {
		workers = len(urls)
	}

	results := make([]*models.FetchedPage, len(urls))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				page, err := f.Fetch(ctx, urls[i])
				if err != nil {
					f.logger.Warn().
						Str("url", urls[i]).
						Err(err).
						Msg("Page fetch failed")
					continue
				}
				if !page.Success {
					continue
				}
				results[i] = page
			}
		}()
	}

dispatch:
	for i := range urls {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	pages := make([]*models.FetchedPage, 0, len(urls))
	for _, p := range results {
		if p != nil {
			pages = append(pages, p)
		}
	}
	return pages
}

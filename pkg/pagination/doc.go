// Package pagination walks page-numbered marketplace listings.
//
// The marketplace does not report a total page count, so the walker requests
// pages one after another, starting at page 0, and stops at the first page
// that comes back empty:
//
//	walker := pagination.NewWalker(fetchPage, pagination.DefaultConfig())
//	stats, err := walker.Walk(ctx, func(page int, items []Teacher) error {
//		// consume items
//		return nil
//	})
//
// Pages are fetched sequentially on the caller's goroutine. The first error
// from the fetch function or the visitor stops the walk.
package pagination

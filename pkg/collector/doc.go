// Package collector turns VK screen names into UserRecords.
//
// Listings are walked page by page at increasing offsets until VK serves an
// empty page, an API error occurs, or (for subscriptions) the offset ceiling
// is passed. A courtesy delay follows every processed page. Errors never
// abort a run: a failed listing yields what was gathered before it, a failed
// group batch is skipped, and an unresolvable user is left out.
package collector

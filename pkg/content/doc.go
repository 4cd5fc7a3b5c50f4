// Package content fetches photo album metadata from the content API.
//
// The content API serves one album per gallery category and a combined
// "category albums" payload used for featured photos. Responses are decoded
// into wire types, validated at the boundary, and returned as [Album] and
// [Photo] values that the rest of the service can trust:
//
//   - photos without an image URL are dropped
//   - a missing compressed URL falls back to the original image
//   - blur placeholders are normalized to data URLs
//
// # Caching
//
// [Client] stores validated albums in a [cache.Cache] for [cache.TTLAlbum].
// Pass refresh=true to bypass the cache and refetch.
//
// # Errors
//
// A 404 from the API wraps [cache.ErrNotFound]; transport failures and 5xx
// responses wrap [cache.ErrNetwork] and are retried with backoff. Unknown
// category slugs and malformed payloads return coded errors from
// [github.com/reactiveshots/portfolio/pkg/errors].
package content

// Package acl adapts external services to the ports the application uses.
//
// Adapters keep wire details (paths, query parameters, redirects, status
// codes) out of the domain. Failures come back as domain errors:
//
//   - 404 → [domain.ErrNotFound]
//   - 401/403 → [domain.ErrUnauthorized]
//   - 409 → [domain.ErrConflict]
//   - 429, 5xx, network, open circuit → [domain.ErrUnavailable]
//   - other 4xx → [domain.ErrValidation]
//
// [PicsumSource] implements [ports.ImageSource] against picsum.photos.
package acl

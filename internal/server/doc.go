// Package server serves the document API that backs the remote tier of the store.
//
// # Routing
//
// [BasicRouter] wraps [http.ServeMux] method patterns. [Middleware] registered with Use runs in
// the order added; [Recoverer] and [RequestLogger] wrap every route.
//
// A [Handler] groups several patterns behind one http.Handler and dispatches on the matched
// pattern, so route definitions stay inside the implementation.
//
// # Routes
//
//	GET    /healthz
//	POST   /v1/auth/anonymous
//	GET    /v1/collections/{collection}/documents?owner=&order=desc&limit=
//	GET    /v1/collections/{collection}/documents/{id}
//	PUT    /v1/collections/{collection}/documents/{id}
//	DELETE /v1/collections/{collection}/documents/{id}
//	POST   /v1/batch/delete-owned
//
// Document routes need a bearer JWT issued by /v1/auth/anonymous. Errors are JSON objects with a
// single "detail" field.
package server

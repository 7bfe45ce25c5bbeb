// Package http provides the HTTP surface for the filevault service.
//
// The API is token-session based: callers exchange Basic credentials for an
// opaque token at GET /connect and present it in the X-Token header on every
// protected route.
//
// # Routes
//
// Open routes:
//
//   - GET  /status  - cache and database liveness
//   - GET  /stats   - user and file counts
//   - POST /users   - register an account
//   - GET  /connect - exchange Basic credentials for a session token
//
// Session-protected routes (X-Token required):
//
//   - GET /disconnect               - end the session
//   - GET /users/me                 - the authenticated user
//   - POST /files                   - create a folder, file, or image
//   - GET  /files                   - list one page of nodes under a parent
//   - GET  /files/{id}              - fetch a node
//   - PUT  /files/{id}/publish      - make a node public
//   - PUT  /files/{id}/unpublish    - make a node private
//
// # Authentication
//
// SessionMiddleware resolves the X-Token header through the SessionService;
// a missing, unknown, or expired token is rejected with 401 before the
// handler runs. The resolved user identifier is available to handlers via
// UserIDFromContext.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{CORS: corsCfg}
//	handler := http.NewHandler(&handlerCfg, sessionManager, fileService)
//	http.ListenAndServe(":5708", handler.Router())
//
// # Errors
//
// All errors are JSON bodies of the form {"error": code, "message": text}.
// HandleError maps the service error taxonomy onto status codes; raw store
// and driver errors never reach the client.
package http

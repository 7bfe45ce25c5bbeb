// Package filevault provides a session-authenticated file and folder
// metadata service with pluggable metadata backends and local blob storage.
//
// Clients register, exchange credentials for an opaque session token, then
// create folders, upload file or image blobs, fetch metadata, list files
// page by page, and toggle public visibility.
//
// # Key Components
//
//   - SessionManager: issues, resolves, and ends session tokens backed by an
//     expiring key-value cache
//   - FileService: validates node creation, enforces the parent-folder
//     invariant, and orchestrates the metadata-write + blob-write two-step
//   - UserRepo / FileRepo: interfaces for metadata persistence (PostgreSQL,
//     SQLite)
//   - SessionCache: interface for the TTL-governed token store (Badger)
//   - BlobStore: interface for physical blob storage (filesystem)
//
// # Consistency Contract
//
// Node creation inserts metadata before writing the blob. A failed insert
// aborts before any blob write; a failed blob write after a committed insert
// surfaces a BlobWriteError carrying the committed identifier instead of
// rolling the record back.
//
// See the http package for the REST adapter and the database and
// sessioncache packages for backend implementations.
package filevault

// Package handlers implements the HTTP API layer for the transfer-agent.
//
// Handlers delegate to the services layer and focus on request validation,
// response formatting and HTTP semantics.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request validation                                           │
//	│  - Pagination                                                   │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion                                      │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│          TransferService            │       Scheduler           │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Handler Structure
//
//	type Handler struct {
//	    transferSrv *services.TransferService
//	    scheduler   *scheduler.Scheduler
//	}
//
// The Handler implements v1.ServerInterface and is registered with:
//
//	v1.RegisterHandlers(router, handler)
//
// # API Endpoints
//
// Import Endpoints (imports.go):
//
//	┌────────┬────────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint       │ Description                              │
//	├────────┼────────────────┼──────────────────────────────────────────┤
//	│ POST   │ /imports       │ Start pulling the forms of a source      │
//	│ GET    │ /imports       │ List the most recent imports             │
//	│ GET    │ /imports/{id}  │ Get the progress of an import            │
//	│ DELETE │ /imports/{id}  │ Cancel a running import                  │
//	└────────┴────────────────┴──────────────────────────────────────────┘
//
// Form Endpoints (forms.go):
//
//	┌────────┬─────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint    │ Description                              │
//	├────────┼─────────────┼──────────────────────────────────────────┤
//	│ GET    │ /forms      │ List pulled forms with pagination        │
//	└────────┴─────────────┴──────────────────────────────────────────┘
//
// Scheduler Endpoints (scheduler.go):
//
//	┌────────┬─────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint    │ Description                              │
//	├────────┼─────────────┼──────────────────────────────────────────┤
//	│ GET    │ /scheduler  │ Worker pool usage                        │
//	└────────┴─────────────┴──────────────────────────────────────────┘
//
// # Import Handler
//
// POST /imports - Starts an import:
//
// Request:
//
//	{
//	    "source": "/sdcard/odk/forms",
//	    "formId": "household"          // optional
//	}
//
// Response: 202 Accepted with { "id": "<transfer id>" }
//
// Errors:
//   - 400 Bad Request: Missing source or unreadable source directory
//   - 404 Not Found: formId not present in the source
//   - 409 Conflict: An import of the same source is still running
//
// GET /imports/{id} - Returns the progress of an import:
//
//	{
//	    "id": "...",
//	    "source": "/sdcard/odk/forms",
//	    "state": "running",     // running|canceling|canceled|completed
//	    "total": 3,
//	    "succeeded": 1,
//	    "failed": 0,
//	    "errors": [],
//	    "startedAt": "...",
//	    "completedAt": null
//	}
//
// DELETE /imports/{id} - Requests cancellation. Jobs stop at their next
// cancellation check, so the import reports "canceling" until the last job
// returned. Response: 202 Accepted with the import progress.
//
// # Form Handler
//
// GET /forms - Query parameters:
//
//	source=<dir>     Only forms pulled from this source
//	page=<n>         Page number (default 1)
//	pageSize=<n>     Items per page (default 20, max 100)
package handlers

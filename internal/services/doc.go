// Package services implements the bulk operations of the transfer-agent on
// top of the job engine.
//
// # Service Dependency Graph
//
//	Handlers (HTTP endpoints) / CLI
//	    │
//	    ▼
//	Services Layer
//	    ├── TransferService ──► Store, Scheduler, Publisher
//	    └── ExportService ────► Store, Scheduler
//
// # TransferService
//
// Import pulls the forms of an ODK Collect forms directory (<id>.xml plus an
// optional <id>-media folder) into <storage>/forms/<id>. Every form is one job:
//
//	Supply(copy form, retried with exponential backoff)
//	    └── ThenAccept(publish PullSuccess/PullFailure, upsert form metadata)
//
// The jobs are launched together with job.LaunchAsyncAll; the OnComplete
// callback stores the outcome of the transfer and publishes PullComplete.
//
// Transfer states:
//
//	┌─────────┐  Cancel   ┌───────────┐  last job  ┌──────────┐
//	│ Running │──────────►│ Canceling │───────────►│ Canceled │
//	└────┬────┘           └───────────┘            └──────────┘
//	     │ last job
//	     ▼
//	┌───────────┐
//	│ Completed │
//	└───────────┘
//
// Key behaviors:
//   - Only one import per source runs at a time (TransferInProgressError)
//   - Cancelling is cooperative: a form copy stops between two files, and a
//     cancelled form is neither reported as failed nor recorded as pulled
//   - A failing form does not stop the others; its error is kept in the
//     transfer's Errors
//
// # ExportService
//
// Export measures the stored copy of every known form with
// job.LaunchSyncAll, keeping the store order, and writes an xlsx report.
package services

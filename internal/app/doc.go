// Package app composes the laborder components into one Application.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	└── metrics/            # Prometheus collectors
//
// The Application replaces process-wide state: it is constructed once at
// startup from a config.Config, started (cart restored, remote lists
// loaded), driven through its methods and closed at exit.
//
// # Dependency Direction
//
//	cmd/laborder/
//	      │
//	      ▼
//	internal/app/ (composition)
//	      │
//	      ├──► internal/order, internal/admin
//	      │           │
//	      │           └──► internal/cart, internal/catalog
//	      │                         │
//	      │                         └──► internal/remote
//	      │
//	      └──► internal/view, internal/export (pure)
package app

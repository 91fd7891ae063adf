// Package gascontrol is a command-line client for the GasControl
// gasometer readings backend.
//
// # Architecture
//
// The client is structured into several key packages:
//   - api: REST client for the /gasometros/ and /leituras/ collections
//   - config: YAML file, defaults and GASCONTROL_* environment overrides
//   - session: login gate backed by a token file
//   - query: filtering, date aggregation and pagination
//   - views: the dashboard and the two paged list views
//   - report: XLSX and PDF export of the dashboard
//   - scheduler: periodic dashboard refresh for watch mode
//   - grpc: health service and interceptors for watch mode
//
// Key Features
//
//   - Dashboard:
//     Trailing 7, 15, 30 or 90 day statistics and a per-date consumption
//     chart over an optional date range.
//
//   - Lists:
//     Searchable lists of gasometers and readings, nine per page, with
//     create, edit and delete. Every change is followed by a full re-fetch.
//
//   - Watch mode:
//     Refreshes the dashboard on a cron schedule and publishes the result
//     as Prometheus gauges and a gRPC health status.
//
// Example Usage
//
//	gascontrol login -u admin -p 1234
//	gascontrol dashboard -window 30 -from 2024-01-01 -to 2024-01-31
//	gascontrol readings list -periodicity MENSAL -page 2
//	gascontrol export -format xlsx -out report.xlsx
//
// For more information about specific packages, see their respective
// documentation.
package gascontrol

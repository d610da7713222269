// Package api serves the relay over HTTP.
//
// Routes:
//
//	GET /api/health        liveness check
//	GET /api/participants  tracked connection ids and the current leader
//	GET /api/metrics       relay counters
//	GET /ws                websocket upgrade into the relay hub
//
// Every route gets a request id, panic recovery, permissive CORS for
// browser clients and a zap access log line.
package api

// Package auth provides API key authentication middleware for the PumpSight
// HTTP API. With mode "none" or an empty key the middleware is pass-through.
package auth

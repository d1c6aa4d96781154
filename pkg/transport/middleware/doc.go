// Package middleware provides the HTTP middleware chain for the Ganymede
// server: panic recovery, request logging, request ID propagation, and CORS.
//
// Middleware are composed outermost-first by the server:
//
//	handler = RecoveryMiddleware(
//	    LoggingMiddleware(
//	        RequestIDMiddleware(
//	            CORSMiddleware(cfg)(mux))))
package middleware

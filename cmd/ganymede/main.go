// Ganymede is a streaming chat relay.
//
// It accepts chat requests over HTTP, relays them to an upstream
// chat-completions endpoint with streaming enabled, and pushes the model's
// output back to the client as discrete, naturally-bounded text segments
// (mixed CJK/Latin sentence boundaries) the moment each one completes.
//
// Usage:
//
//	# Start the relay with the default configuration file
//	ganymede run
//
//	# Start with a custom configuration file
//	ganymede run --config /path/to/config.yaml
//
//	# Check a configuration file without starting
//	ganymede validate --config /path/to/config.yaml
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}

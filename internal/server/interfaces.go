package server

// Server is implemented by the orchestrator returned from [NewServer] and by
// the HTTP and gRPC transports it drives.
type Server interface {
	// RunServer blocks. For the orchestrator that lasts until SIGTERM,
	// SIGINT or SIGQUIT, after which the workers and transports are stopped.
	RunServer()

	// Shutdown stops accepting calls and waits for in-flight ones. The HTTP
	// transport waits at most shutdownTimeout.
	Shutdown()
}

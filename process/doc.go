// Package process runs subprocesses with context cancellation that escalates
// from SIGTERM to SIGKILL across the whole process group.
//
// Adapter exposes a configured binary as a provider.RequestResponse so that
// command-line backends such as whisper.cpp plug into the same registry and
// middleware as HTTP providers.
package process

// Package logging configures structured logging for sigmaindex.
// Logs are written to stderr so stdout stays reserved for the usage line and
// the completion message.
package logging

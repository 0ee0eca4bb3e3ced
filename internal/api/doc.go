// Package api handles incoming HTTP requests: request decoding and
// validation, calls into the application services, and response formatting.
// Errors are mapped to status codes and safe client messages in errors.go;
// full error details only reach the logs, after redaction.
package api

// Package clock implements the gRPC transport for the alarm clock.
//
// The service descriptor is written by hand and every payload is a protobuf
// well-known type (structpb.Struct or emptypb.Empty), so no generated code is
// needed. The package adapts clock entries to and from those messages, maps
// domain errors to status codes and back, and exposes a server that calls into
// a provided registry interface plus a thin client stub.
package clock

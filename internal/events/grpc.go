package events

import (
	"time"

	"google.golang.org/grpc/codes"
)

// GRPCClientStart is emitted before a resolver's outgoing gRPC call.
// Context carries the resolver context and its request id. Call pairs the
// event with its GRPCClientFinish.
type GRPCClientStart struct {
	Call    uint64
	Service string
	Method  string
	Target  string
}

// GRPCClientFinish is emitted after the call returns.
type GRPCClientFinish struct {
	Call     uint64
	Service  string
	Method   string
	Target   string
	Code     codes.Code
	Err      error
	Duration time.Duration
}

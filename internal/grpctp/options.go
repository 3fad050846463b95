package grpctp

import (
	"time"

	"google.golang.org/grpc"
)

const (
	defaultConnsPerEndpoint = 2
	defaultRPCTimeout       = 3 * time.Second
)

// Options configures a Transport. Zero values select the defaults: two
// pooled connections per endpoint, a 3s deadline for calls whose context
// has none, and insecure credentials.
type Options struct {
	Provider EndpointProvider

	MaxConnsPerEndpoint int
	RPCTimeout          time.Duration

	DialOptions []grpc.DialOption
}

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		MaxConnsPerEndpoint: defaultConnsPerEndpoint,
		RPCTimeout:          defaultRPCTimeout,
	}
}

func WithProvider(p EndpointProvider) Option { return func(o *Options) { o.Provider = p } }

// WithEndpoints is WithProvider over a StaticEndpoints built from m.
func WithEndpoints(m map[string][]string) Option {
	return WithProvider(NewStaticEndpoints(m))
}

// WithMaxConnsPerEndpoint bounds the idle connections kept per endpoint.
// Values below one keep the default.
func WithMaxConnsPerEndpoint(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxConnsPerEndpoint = n
		}
	}
}

// WithRPCTimeout sets the deadline applied to calls without one. Zero
// disables it.
func WithRPCTimeout(d time.Duration) Option { return func(o *Options) { o.RPCTimeout = d } }

// WithDialOptions replaces the default dial options.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *Options) { o.DialOptions = opts }
}

package starwars

import (
	"context"

	grpctp "github.com/hanpama/gqlcore/internal/grpctp"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// FleetService is the gRPC service serving starships. Requests and replies
// are google.protobuf.Struct messages: {"id"} in, {"id", "name", "length"}
// out.
const FleetService = "starwars.Fleet"

const getStarshipMethod = "/" + FleetService + "/GetStarship"

type fleetServer interface {
	Starship(ctx context.Context, id string) (*Starship, error)
}

var fleetServiceDesc = grpc.ServiceDesc{
	ServiceName: FleetService,
	HandlerType: (*fleetServer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "GetStarship",
		Handler:    getStarshipHandler,
	}},
}

func getStarshipHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handle := func(ctx context.Context, req any) (any, error) {
		ss, err := srv.(fleetServer).Starship(ctx, stringField(req.(*structpb.Struct), "id"))
		if err != nil {
			return nil, err
		}
		return starshipMessage(ss), nil
	}
	if interceptor == nil {
		return handle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getStarshipMethod}
	return interceptor(ctx, in, info, handle)
}

// RegisterFleetServer serves store's starships on s.
func RegisterFleetServer(s grpc.ServiceRegistrar, store *Store) {
	s.RegisterService(&fleetServiceDesc, store)
}

// NewFleetServer returns a gRPC server serving store's starships.
func NewFleetServer(store *Store, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	RegisterFleetServer(s, store)
	return s
}

// FleetClient looks starships up on a remote fleet service.
type FleetClient struct {
	transport *grpctp.Transport
}

func NewFleetClient(t *grpctp.Transport) *FleetClient {
	return &FleetClient{transport: t}
}

// Starship returns the gRPC status of the fleet service on failure.
func (c *FleetClient) Starship(ctx context.Context, id string) (*Starship, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{"id": structpb.NewStringValue(id)}}
	out := new(structpb.Struct)
	if err := c.transport.Call(ctx, getStarshipMethod, req, out); err != nil {
		return nil, err
	}
	return &Starship{
		ID:     stringField(out, "id"),
		Name:   stringField(out, "name"),
		Length: out.GetFields()["length"].GetNumberValue(),
	}, nil
}

func starshipMessage(ss *Starship) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":     structpb.NewStringValue(ss.ID),
		"name":   structpb.NewStringValue(ss.Name),
		"length": structpb.NewNumberValue(ss.Length),
	}}
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

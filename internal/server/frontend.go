package server

import (
	"context"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/foundation/lox"
	"github.com/msto63/lox/internal/store"
	coregrpc "github.com/msto63/lox/pkg/core/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName = "lox.v1.Frontend"

	// ProcessMethod is the full method name of Process
	ProcessMethod = "/" + ServiceName + "/Process"
)

// FrontendServer is the server API of lox.v1.Frontend
type FrontendServer interface {
	Process(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// FrontendServiceDesc describes lox.v1.Frontend for grpc.Server.RegisterService
var FrontendServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FrontendServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Process",
			Handler:    processHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lox/v1/frontend.proto",
}

func processHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrontendServer).Process(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ProcessMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrontendServer).Process(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Frontend implements FrontendServer on top of an engine
type Frontend struct {
	engine *lox.Engine
	store  store.RunStore
	logger *mdwlog.Logger

	// MaxSourceBytes > 0 rejects larger sources with InvalidArgument
	MaxSourceBytes int
}

// NewFrontend creates the service. st may be nil.
func NewFrontend(engine *lox.Engine, st store.RunStore, logger *mdwlog.Logger) *Frontend {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	return &Frontend{engine: engine, store: st, logger: logger.WithComponent("lox-server")}
}

// Process scans and parses req.source. Lexical and parse errors are data:
// they come back in an OK response with the error flags set. Only a bad
// request or an allocation failure yields a non-OK status.
func (f *Frontend) Process(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in Request
	if err := FromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if _, ok := req.GetFields()["source"]; !ok {
		return nil, status.Error(codes.InvalidArgument, "source is required")
	}

	payload, err := f.process(ctx, store.OriginGRPC, in)
	if err != nil {
		return nil, coregrpc.ToStatus(err)
	}
	return ToStruct(payload)
}

// process runs one request and records it
func (f *Frontend) process(ctx context.Context, origin store.Origin, in Request) (*Payload, error) {
	if f.MaxSourceBytes > 0 && len(in.Source) > f.MaxSourceBytes {
		return nil, mdwerror.Newf("source exceeds %d bytes", f.MaxSourceBytes).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("server.Process")
	}

	source := []byte(in.Source)
	res := f.engine.Process(source)
	defer res.Release()

	if f.store != nil {
		run := store.NewRun(origin, in.Name, source, res)
		run.SessionID = coregrpc.GetRequestID(ctx)
		if err := f.store.Record(ctx, run); err != nil {
			f.logger.WarnWithErr("failed to record run", err)
		}
	}

	if res.Err != nil && !res.LexError && !res.ParseError {
		return nil, res.Err
	}
	return NewPayload(res), nil
}

// Client calls lox.v1.Frontend over an existing connection
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Process sends source and decodes the result
func (c *Client) Process(ctx context.Context, name, source string) (*Payload, error) {
	req, err := ToStruct(Request{Source: source, Name: name})
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, ProcessMethod, req, resp); err != nil {
		return nil, err
	}
	var p Payload
	if err := FromStruct(resp, &p); err != nil {
		return nil, mdwerror.Wrap(err, "invalid response").
			WithCode(mdwerror.CodeInternal).
			WithOperation("server.Client.Process")
	}
	return &p, nil
}

// Local processes sources in-process through the frontend, recording runs
// under a fixed origin. It has the same Process signature as Client.
type Local struct {
	frontend *Frontend
	origin   store.Origin
}

// Local returns an in-process evaluator for origin
func (f *Frontend) Local(origin store.Origin) *Local {
	return &Local{frontend: f, origin: origin}
}

// Process runs source and returns its payload
func (l *Local) Process(ctx context.Context, name, source string) (*Payload, error) {
	return l.frontend.process(ctx, l.origin, Request{Source: source, Name: name})
}

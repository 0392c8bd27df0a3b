package grpc

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"social-service/internal/logger"
	"social-service/internal/observability"
)

const (
	ServiceName      = "social.FriendshipInternal"
	AreFriendsMethod = "/" + ServiceName + "/AreFriends"
)

// FriendshipChecker is the friendship predicate exposed to other services.
type FriendshipChecker interface {
	AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error)
}

// FriendshipInternalServer is the server API for social.FriendshipInternal.
// Requests are a Struct with string fields user_id and friend_id.
type FriendshipInternalServer interface {
	AreFriends(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error)
}

var friendshipInternalServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FriendshipInternalServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AreFriends",
			Handler:    areFriendsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "social/friendship_internal.proto",
}

func areFriendsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FriendshipInternalServer).AreFriends(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AreFriendsMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FriendshipInternalServer).AreFriends(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func RegisterFriendshipInternalServer(s grpc.ServiceRegistrar, srv FriendshipInternalServer) {
	s.RegisterService(&friendshipInternalServiceDesc, srv)
}

// FriendshipServer answers AreFriends from the friendship service.
type FriendshipServer struct {
	checker FriendshipChecker
}

func NewFriendshipServer(checker FriendshipChecker) *FriendshipServer {
	return &FriendshipServer{checker: checker}
}

func (s *FriendshipServer) AreFriends(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	userID, err := uuidField(req, "user_id")
	if err != nil {
		return nil, err
	}
	friendID, err := uuidField(req, "friend_id")
	if err != nil {
		return nil, err
	}

	ok, err := s.checker.AreFriends(ctx, userID, friendID)
	if err != nil {
		logger.Error("grpc are friends failed", "user_id", userID, "friend_id", friendID, "error", err)
		return nil, status.Error(codes.Internal, "failed to check friendship")
	}
	return wrapperspb.Bool(ok), nil
}

func uuidField(req *structpb.Struct, name string) (uuid.UUID, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	id, err := uuid.Parse(v.GetStringValue())
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s", name)
	}
	return id, nil
}

// NewServer builds a gRPC server with tracing and metrics, serving checker.
func NewServer(checker FriendshipChecker) *grpc.Server {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
	)
	RegisterFriendshipInternalServer(server, NewFriendshipServer(checker))
	return server
}

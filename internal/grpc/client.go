package grpc

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FriendshipClient calls social.FriendshipInternal on a remote instance.
type FriendshipClient struct {
	conn grpc.ClientConnInterface
}

// NewFriendshipClient constructs the wrapper.
func NewFriendshipClient(conn grpc.ClientConnInterface) *FriendshipClient {
	return &FriendshipClient{conn: conn}
}

// Dial opens a plaintext traced connection to addr.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)
	return grpc.NewClient(addr, opts...)
}

// AreFriends verifies friendship between two users.
func (c *FriendshipClient) AreFriends(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"user_id":   userID.String(),
		"friend_id": friendID.String(),
	})
	if err != nil {
		return false, err
	}

	resp := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(ctx, AreFriendsMethod, req, resp); err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}

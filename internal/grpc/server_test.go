package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"social-service/internal/mocks"
)

func startServer(t *testing.T, checker FriendshipChecker) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	server := NewServer(checker)
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	conn, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestAreFriendsRoundTrip(t *testing.T) {
	checker := new(mocks.FriendshipServiceMock)
	a, b := uuid.New(), uuid.New()
	checker.On("AreFriends", mock.Anything, a, b).Return(true, nil).Once()

	client := NewFriendshipClient(startServer(t, checker))
	ok, err := client.AreFriends(context.Background(), a, b)

	require.NoError(t, err)
	assert.True(t, ok)
	checker.AssertExpectations(t)
}

func TestAreFriendsCheckerFailure(t *testing.T) {
	checker := new(mocks.FriendshipServiceMock)
	a, b := uuid.New(), uuid.New()
	checker.On("AreFriends", mock.Anything, a, b).Return(false, errors.New("db down")).Once()

	client := NewFriendshipClient(startServer(t, checker))
	_, err := client.AreFriends(context.Background(), a, b)

	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestAreFriendsInvalidArgument(t *testing.T) {
	checker := new(mocks.FriendshipServiceMock)
	conn := startServer(t, checker)

	tests := []map[string]interface{}{
		{"friend_id": uuid.NewString()},
		{"user_id": "42", "friend_id": uuid.NewString()},
		{"user_id": uuid.NewString(), "friend_id": 7},
	}
	for _, fields := range tests {
		req, err := structpb.NewStruct(fields)
		require.NoError(t, err)

		err = conn.Invoke(context.Background(), AreFriendsMethod, req, new(wrapperspb.BoolValue))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "%v", fields)
	}
	checker.AssertNotCalled(t, "AreFriends", mock.Anything, mock.Anything, mock.Anything)
}

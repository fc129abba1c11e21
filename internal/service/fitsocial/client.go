package fitsocial

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Client is a typed SocialService client. Every call uses the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// WithToken attaches a session token to outgoing calls made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, AuthorizationHeader, "Bearer "+token)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "SignUp", in, opts)
}

func (c *Client) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "SignIn", in, opts)
}

func (c *Client) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, "GetProfile", in, opts)
}

func (c *Client) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, "UpdateProfile", in, opts)
}

func (c *Client) UpdateProfilePicture(ctx context.Context, in *UpdateProfilePictureRequest, opts ...grpc.CallOption) (*UpdateProfilePictureResponse, error) {
	return invoke[UpdateProfilePictureResponse](ctx, c.cc, "UpdateProfilePicture", in, opts)
}

func (c *Client) Follow(ctx context.Context, in *TargetRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "Follow", in, opts)
}

func (c *Client) Unfollow(ctx context.Context, in *TargetRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "Unfollow", in, opts)
}

func (c *Client) CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*PostView, error) {
	return invoke[PostView](ctx, c.cc, "CreatePost", in, opts)
}

func (c *Client) DeletePost(ctx context.Context, in *PostRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "DeletePost", in, opts)
}

func (c *Client) ReactToPost(ctx context.Context, in *PostRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "ReactToPost", in, opts)
}

func (c *Client) RemoveReactionFromPost(ctx context.Context, in *PostRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "RemoveReactionFromPost", in, opts)
}

func (c *Client) CountPostReactions(ctx context.Context, in *PostRequest, opts ...grpc.CallOption) (*CountResponse, error) {
	return invoke[CountResponse](ctx, c.cc, "CountPostReactions", in, opts)
}

func (c *Client) AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*CommentView, error) {
	return invoke[CommentView](ctx, c.cc, "AddComment", in, opts)
}

func (c *Client) DeleteComment(ctx context.Context, in *CommentRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "DeleteComment", in, opts)
}

func (c *Client) ListComments(ctx context.Context, in *PostRequest, opts ...grpc.CallOption) (*ListCommentsResponse, error) {
	return invoke[ListCommentsResponse](ctx, c.cc, "ListComments", in, opts)
}

func (c *Client) ReactToComment(ctx context.Context, in *CommentRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "ReactToComment", in, opts)
}

func (c *Client) RemoveReactionFromComment(ctx context.Context, in *CommentRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "RemoveReactionFromComment", in, opts)
}

func (c *Client) GetFeed(ctx context.Context, in *GetFeedRequest, opts ...grpc.CallOption) (*GetFeedResponse, error) {
	return invoke[GetFeedResponse](ctx, c.cc, "GetFeed", in, opts)
}

func (c *Client) CreateWorkout(ctx context.Context, in *CreateWorkoutRequest, opts ...grpc.CallOption) (*WorkoutView, error) {
	return invoke[WorkoutView](ctx, c.cc, "CreateWorkout", in, opts)
}

func (c *Client) FinishWorkout(ctx context.Context, in *FinishWorkoutRequest, opts ...grpc.CallOption) (*FinishWorkoutResponse, error) {
	return invoke[FinishWorkoutResponse](ctx, c.cc, "FinishWorkout", in, opts)
}

func (c *Client) ListWorkouts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListWorkoutsResponse, error) {
	return invoke[ListWorkoutsResponse](ctx, c.cc, "ListWorkouts", in, opts)
}

func (c *Client) DeleteWorkout(ctx context.Context, in *WorkoutRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "DeleteWorkout", in, opts)
}

func (c *Client) ConsumeLevelUpFlag(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*LevelUpFlagResponse, error) {
	return invoke[LevelUpFlagResponse](ctx, c.cc, "ConsumeLevelUpFlag", in, opts)
}

func (c *Client) DeleteAccount(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*CascadeReportResponse, error) {
	return invoke[CascadeReportResponse](ctx, c.cc, "DeleteAccount", in, opts)
}

func (c *Client) RepairAccountDeletion(ctx context.Context, in *RepairAccountDeletionRequest, opts ...grpc.CallOption) (*CascadeReportResponse, error) {
	return invoke[CascadeReportResponse](ctx, c.cc, "RepairAccountDeletion", in, opts)
}

// WatchDocumentClient receives document changes.
type WatchDocumentClient interface {
	Recv() (*DocumentChange, error)
	grpc.ClientStream
}

type watchDocumentClient struct {
	grpc.ClientStream
}

func (x *watchDocumentClient) Recv() (*DocumentChange, error) {
	m := new(DocumentChange)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Client) WatchDocument(ctx context.Context, in *WatchDocumentRequest, opts ...grpc.CallOption) (WatchDocumentClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], fullMethod("WatchDocument"), opts...)
	if err != nil {
		return nil, err
	}
	x := &watchDocumentClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

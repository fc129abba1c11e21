package fitsocial

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "fitsocial.v1.SocialService"

// SocialServer is the server API for SocialService.
type SocialServer interface {
	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error)
	UpdateProfilePicture(context.Context, *UpdateProfilePictureRequest) (*UpdateProfilePictureResponse, error)

	Follow(context.Context, *TargetRequest) (*emptypb.Empty, error)
	Unfollow(context.Context, *TargetRequest) (*emptypb.Empty, error)

	CreatePost(context.Context, *CreatePostRequest) (*PostView, error)
	DeletePost(context.Context, *PostRequest) (*emptypb.Empty, error)
	ReactToPost(context.Context, *PostRequest) (*emptypb.Empty, error)
	RemoveReactionFromPost(context.Context, *PostRequest) (*emptypb.Empty, error)
	CountPostReactions(context.Context, *PostRequest) (*CountResponse, error)

	AddComment(context.Context, *AddCommentRequest) (*CommentView, error)
	DeleteComment(context.Context, *CommentRequest) (*emptypb.Empty, error)
	ListComments(context.Context, *PostRequest) (*ListCommentsResponse, error)
	ReactToComment(context.Context, *CommentRequest) (*emptypb.Empty, error)
	RemoveReactionFromComment(context.Context, *CommentRequest) (*emptypb.Empty, error)

	GetFeed(context.Context, *GetFeedRequest) (*GetFeedResponse, error)

	CreateWorkout(context.Context, *CreateWorkoutRequest) (*WorkoutView, error)
	FinishWorkout(context.Context, *FinishWorkoutRequest) (*FinishWorkoutResponse, error)
	ListWorkouts(context.Context, *emptypb.Empty) (*ListWorkoutsResponse, error)
	DeleteWorkout(context.Context, *WorkoutRequest) (*emptypb.Empty, error)
	ConsumeLevelUpFlag(context.Context, *emptypb.Empty) (*LevelUpFlagResponse, error)

	DeleteAccount(context.Context, *emptypb.Empty) (*CascadeReportResponse, error)
	RepairAccountDeletion(context.Context, *RepairAccountDeletionRequest) (*CascadeReportResponse, error)

	WatchDocument(*WatchDocumentRequest, WatchDocumentServer) error
}

// WatchDocumentServer is the server side of the WatchDocument stream.
type WatchDocumentServer interface {
	Send(*DocumentChange) error
	grpc.ServerStream
}

type watchDocumentServer struct {
	grpc.ServerStream
}

func (x *watchDocumentServer) Send(m *DocumentChange) error {
	return x.ServerStream.SendMsg(m)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary builds a method descriptor from a SocialServer method expression.
func unary[Req, Resp any](name string, call func(SocialServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SocialServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SocialServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchDocumentHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchDocumentRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SocialServer).WatchDocument(in, &watchDocumentServer{stream})
}

// ServiceDesc describes SocialService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SocialServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignUp", SocialServer.SignUp),
		unary("SignIn", SocialServer.SignIn),
		unary("GetProfile", SocialServer.GetProfile),
		unary("UpdateProfile", SocialServer.UpdateProfile),
		unary("UpdateProfilePicture", SocialServer.UpdateProfilePicture),
		unary("Follow", SocialServer.Follow),
		unary("Unfollow", SocialServer.Unfollow),
		unary("CreatePost", SocialServer.CreatePost),
		unary("DeletePost", SocialServer.DeletePost),
		unary("ReactToPost", SocialServer.ReactToPost),
		unary("RemoveReactionFromPost", SocialServer.RemoveReactionFromPost),
		unary("CountPostReactions", SocialServer.CountPostReactions),
		unary("AddComment", SocialServer.AddComment),
		unary("DeleteComment", SocialServer.DeleteComment),
		unary("ListComments", SocialServer.ListComments),
		unary("ReactToComment", SocialServer.ReactToComment),
		unary("RemoveReactionFromComment", SocialServer.RemoveReactionFromComment),
		unary("GetFeed", SocialServer.GetFeed),
		unary("CreateWorkout", SocialServer.CreateWorkout),
		unary("FinishWorkout", SocialServer.FinishWorkout),
		unary("ListWorkouts", SocialServer.ListWorkouts),
		unary("DeleteWorkout", SocialServer.DeleteWorkout),
		unary("ConsumeLevelUpFlag", SocialServer.ConsumeLevelUpFlag),
		unary("DeleteAccount", SocialServer.DeleteAccount),
		unary("RepairAccountDeletion", SocialServer.RepairAccountDeletion),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchDocument",
			Handler:       watchDocumentHandler,
			ServerStreams: true,
		},
	},
}

// RegisterSocialServer attaches srv to s.
func RegisterSocialServer(s grpc.ServiceRegistrar, srv SocialServer) {
	s.RegisterService(&ServiceDesc, srv)
}

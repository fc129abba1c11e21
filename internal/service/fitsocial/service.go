package fitsocial

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oggyb/fitsocial/internal/account"
	"github.com/oggyb/fitsocial/internal/app"
	"github.com/oggyb/fitsocial/internal/engagement"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/feed"
	"github.com/oggyb/fitsocial/internal/session"
	"github.com/oggyb/fitsocial/internal/social"
)

const dateLayout = "2006-01-02"

// Service implements the SocialService gRPC API.
// It translates wire messages into calls on the domain services and maps
// their typed errors onto gRPC status codes.
type Service struct {
	appCtx     *app.AppContext
	log        *slog.Logger
	accounts   *account.Service
	social     *social.Service
	engagement *engagement.Service
	feed       *feed.Service
}

// NewSocialService creates the service with dependencies from AppContext.
func NewSocialService(appCtx *app.AppContext) *Service {
	eng := engagement.NewService(appCtx)
	return &Service{
		appCtx:     appCtx,
		log:        appCtx.Logger.With("component", "grpc"),
		accounts:   account.NewService(appCtx),
		social:     social.NewService(appCtx, eng),
		engagement: eng,
		feed:       feed.NewService(appCtx),
	}
}

// caller is the Session the auth interceptor attached; the zero Session
// when there is none, which the domain services reject.
func caller(ctx context.Context) session.Session {
	s, _ := session.From(ctx)
	return s
}

func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, svcErr.InvalidArgument(field + " must be YYYY-MM-DD")
	}
	return t, nil
}

// SignUp creates an account and returns a session token.
func (s *Service) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
	s.log.Debug("SignUp called", "username", req.Username)

	birth, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	acc, _, token, err := s.accounts.SignUp(ctx, account.SignUpInput{
		FirstName: req.FirstName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: birth,
		Country:   req.Country,
		Language:  req.Language,
		Gender:    req.Gender,
	})
	if err != nil {
		s.log.Debug("SignUp rejected", "username", req.Username, "err", err)
		return nil, svcErr.Map(err)
	}
	return &AuthResponse{AccountID: acc.ID, Username: acc.Username, Token: token}, nil
}

// SignIn exchanges credentials for a session token.
func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (*AuthResponse, error) {
	sess, token, err := s.appCtx.Sessions.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &AuthResponse{AccountID: sess.AccountID, Username: sess.Username, Token: token}, nil
}

// GetProfile returns a profile; the caller's own when AccountID is empty.
func (s *Service) GetProfile(ctx context.Context, req *GetProfileRequest) (*ProfileResponse, error) {
	sess := caller(ctx)
	id := req.AccountID
	if id == "" {
		id = sess.AccountID
	}
	p, err := s.accounts.GetProfile(ctx, id)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &ProfileResponse{Account: toAccountView(ctx, s.appCtx.Blobs, &p.Account, p.Age, id == sess.AccountID)}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*ProfileResponse, error) {
	sess := caller(ctx)
	up := account.ProfileUpdate{
		FirstName: req.FirstName,
		Country:   req.Country,
		Language:  req.Language,
		Gender:    req.Gender,
	}
	if req.BirthDate != nil {
		birth, err := parseDate("birth_date", *req.BirthDate)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		up.BirthDate = &birth
	}
	p, err := s.accounts.UpdateProfile(ctx, sess, up)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &ProfileResponse{Account: toAccountView(ctx, s.appCtx.Blobs, &p.Account, p.Age, true)}, nil
}

func (s *Service) UpdateProfilePicture(ctx context.Context, req *UpdateProfilePictureRequest) (*UpdateProfilePictureResponse, error) {
	report, err := s.accounts.UpdateProfilePicture(ctx, caller(ctx), req.Image)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	url, err := s.appCtx.Blobs.ResolveDownloadURL(ctx, report.Locator)
	if err != nil {
		s.log.Warn("failed to resolve picture url", "locator", report.Locator, "err", err)
	}
	return &UpdateProfilePictureResponse{
		Locator:          report.Locator,
		URL:              url,
		PostsUpdated:     report.PostsUpdated,
		CommentsUpdated:  report.CommentsUpdated,
		SnapshotFailures: report.SnapshotFailures,
	}, nil
}

// Follow maps AlreadyRelated onto codes.AlreadyExists.
func (s *Service) Follow(ctx context.Context, req *TargetRequest) (*emptypb.Empty, error) {
	if err := s.social.Follow(ctx, caller(ctx), req.TargetID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

// Unfollow maps NotRelated onto codes.FailedPrecondition.
func (s *Service) Unfollow(ctx context.Context, req *TargetRequest) (*emptypb.Empty, error) {
	if err := s.social.Unfollow(ctx, caller(ctx), req.TargetID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) CreatePost(ctx context.Context, req *CreatePostRequest) (*PostView, error) {
	sess := caller(ctx)
	p, err := s.social.CreatePost(ctx, sess, req.Text, req.Photo)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	v := toPostView(p, sess.AccountID)
	return &v, nil
}

func (s *Service) DeletePost(ctx context.Context, req *PostRequest) (*emptypb.Empty, error) {
	if err := s.social.DeletePost(ctx, caller(ctx), req.PostID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) ReactToPost(ctx context.Context, req *PostRequest) (*emptypb.Empty, error) {
	if err := s.social.ReactToPost(ctx, caller(ctx), req.PostID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) RemoveReactionFromPost(ctx context.Context, req *PostRequest) (*emptypb.Empty, error) {
	if err := s.social.RemoveReactionFromPost(ctx, caller(ctx), req.PostID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) CountPostReactions(ctx context.Context, req *PostRequest) (*CountResponse, error) {
	n, err := s.social.CountPostReactions(ctx, req.PostID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &CountResponse{Count: n}, nil
}

func (s *Service) AddComment(ctx context.Context, req *AddCommentRequest) (*CommentView, error) {
	c, err := s.social.AddComment(ctx, caller(ctx), req.PostID, req.Text)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	v := toCommentView(c)
	return &v, nil
}

func (s *Service) DeleteComment(ctx context.Context, req *CommentRequest) (*emptypb.Empty, error) {
	if err := s.social.DeleteComment(ctx, caller(ctx), req.CommentID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) ListComments(ctx context.Context, req *PostRequest) (*ListCommentsResponse, error) {
	comments, err := s.social.ListComments(ctx, req.PostID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &ListCommentsResponse{Comments: make([]CommentView, 0, len(comments))}
	for i := range comments {
		resp.Comments = append(resp.Comments, toCommentView(&comments[i]))
	}
	return resp, nil
}

func (s *Service) ReactToComment(ctx context.Context, req *CommentRequest) (*emptypb.Empty, error) {
	if err := s.social.ReactToComment(ctx, caller(ctx), req.CommentID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) RemoveReactionFromComment(ctx context.Context, req *CommentRequest) (*emptypb.Empty, error) {
	if err := s.social.RemoveReactionFromComment(ctx, caller(ctx), req.CommentID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

// GetFeed returns one page of the caller's feed.
//
// Example:
//
//	svc.GetFeed(ctx, &GetFeedRequest{Limit: 20})
func (s *Service) GetFeed(ctx context.Context, req *GetFeedRequest) (*GetFeedResponse, error) {
	s.log.Debug("GetFeed called", "token", req.PageToken, "limit", req.Limit)

	f, err := s.feed.GetFeed(ctx, caller(ctx), req.PageToken, req.Limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &GetFeedResponse{
		Posts:         make([]PostView, 0, len(f.Items)),
		NextPageToken: f.NextPageToken,
		NoPosts:       f.NoPosts,
	}
	for _, it := range f.Items {
		resp.Posts = append(resp.Posts, toFeedView(it))
	}
	return resp, nil
}

func (s *Service) CreateWorkout(ctx context.Context, req *CreateWorkoutRequest) (*WorkoutView, error) {
	w, err := s.engagement.CreateWorkout(ctx, caller(ctx), engagement.WorkoutPlan{
		Type:            req.Type,
		Date:            req.Date,
		SeriesPlanned:   req.SeriesPlanned,
		WorkTimeSeconds: req.WorkTimeSeconds,
		RestTimeSeconds: req.RestTimeSeconds,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	v := toWorkoutView(w)
	return &v, nil
}

// FinishWorkout maps an already finished workout onto FailedPrecondition.
func (s *Service) FinishWorkout(ctx context.Context, req *FinishWorkoutRequest) (*FinishWorkoutResponse, error) {
	w, out, err := s.engagement.FinishWorkout(ctx, caller(ctx), req.WorkoutID, engagement.WorkoutResult{
		CompletedDurationSeconds: req.CompletedDurationSeconds,
		CompletedSeries:          req.CompletedSeries,
		Calories:                 req.Calories,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &FinishWorkoutResponse{
		Workout:           toWorkoutView(w),
		CompletedWorkouts: out.CompletedWorkouts,
		LeveledUp:         out.LeveledUp,
		Level:             out.Level,
		MedalGranted:      out.MedalGranted,
	}, nil
}

func (s *Service) ListWorkouts(ctx context.Context, _ *emptypb.Empty) (*ListWorkoutsResponse, error) {
	workouts, err := s.engagement.ListWorkouts(ctx, caller(ctx))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &ListWorkoutsResponse{Workouts: make([]WorkoutView, 0, len(workouts))}
	for i := range workouts {
		resp.Workouts = append(resp.Workouts, toWorkoutView(&workouts[i]))
	}
	return resp, nil
}

func (s *Service) DeleteWorkout(ctx context.Context, req *WorkoutRequest) (*emptypb.Empty, error) {
	if err := s.engagement.DeleteWorkout(ctx, caller(ctx), req.WorkoutID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) ConsumeLevelUpFlag(ctx context.Context, _ *emptypb.Empty) (*LevelUpFlagResponse, error) {
	pending, err := s.engagement.ConsumeLevelUpFlag(ctx, caller(ctx))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &LevelUpFlagResponse{Pending: pending}, nil
}

// DeleteAccount removes the caller's account. Failed cascade steps are
// reported in the response, not as an error.
func (s *Service) DeleteAccount(ctx context.Context, _ *emptypb.Empty) (*CascadeReportResponse, error) {
	report, err := s.social.DeleteAccount(ctx, caller(ctx))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toCascadeResponse(report), nil
}

func (s *Service) RepairAccountDeletion(ctx context.Context, req *RepairAccountDeletionRequest) (*CascadeReportResponse, error) {
	report, err := s.social.RepairAccountDeletion(ctx, caller(ctx), req.AccountID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toCascadeResponse(report), nil
}

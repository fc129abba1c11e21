package fitsocial

import "time"

// Views

type AccountView struct {
	ID                    string    `json:"id"`
	FirstName             string    `json:"first_name"`
	Username              string    `json:"username"`
	Email                 string    `json:"email,omitempty"`
	BirthDate             time.Time `json:"birth_date"`
	Age                   int       `json:"age"`
	Country               string    `json:"country,omitempty"`
	Language              string    `json:"language,omitempty"`
	Gender                string    `json:"gender,omitempty"`
	ProfilePictureRef     string    `json:"profile_picture_ref,omitempty"`
	ProfilePictureURL     string    `json:"profile_picture_url,omitempty"`
	FollowedIDs           []string  `json:"followed_ids"`
	ReactedPostIDs        []string  `json:"reacted_post_ids"`
	CommentedPostIDs      []string  `json:"commented_post_ids"`
	ReactedCommentIDs     []string  `json:"reacted_comment_ids"`
	CompletedWorkoutCount int       `json:"completed_workout_count"`
	Level                 int       `json:"level"`
	Medals                []string  `json:"medals"`
}

type PostView struct {
	ID                      string    `json:"id"`
	AuthorID                string    `json:"author_id"`
	AuthorFirstName         string    `json:"author_first_name"`
	AuthorUsername          string    `json:"author_username"`
	AuthorProfilePictureRef string    `json:"author_profile_picture_ref,omitempty"`
	Text                    string    `json:"text"`
	PhotoRef                string    `json:"photo_ref,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	ReactingAccountIDs      []string  `json:"reacting_account_ids"`
	CommentingAccountIDs    []string  `json:"commenting_account_ids"`
	ReactionCount           int       `json:"reaction_count"`
	CommentCount            int       `json:"comment_count"`
	ViewerReacted           bool      `json:"viewer_reacted"`
}

type CommentView struct {
	ID                      string    `json:"id"`
	PostID                  string    `json:"post_id"`
	AuthorID                string    `json:"author_id"`
	AuthorFirstName         string    `json:"author_first_name"`
	AuthorUsername          string    `json:"author_username"`
	AuthorProfilePictureRef string    `json:"author_profile_picture_ref,omitempty"`
	Text                    string    `json:"text"`
	CreatedAt               time.Time `json:"created_at"`
	ReactingAccountIDs      []string  `json:"reacting_account_ids"`
}

type WorkoutView struct {
	ID                       string    `json:"id"`
	AccountID                string    `json:"account_id"`
	Type                     string    `json:"type"`
	Date                     time.Time `json:"date"`
	IsFinished               bool      `json:"is_finished"`
	Calories                 float64   `json:"calories"`
	SeriesPlanned            int       `json:"series_planned"`
	WorkTimeSeconds          int       `json:"work_time_seconds"`
	RestTimeSeconds          int       `json:"rest_time_seconds"`
	CompletedDurationSeconds int       `json:"completed_duration_seconds"`
	CompletedSeries          int       `json:"completed_series"`
}

// Accounts and sessions

type SignUpRequest struct {
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	// BirthDate is YYYY-MM-DD.
	BirthDate string `json:"birth_date"`
	Country   string `json:"country,omitempty"`
	Language  string `json:"language,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Token     string `json:"token"`
}

// GetProfileRequest with an empty AccountID reads the caller's profile.
type GetProfileRequest struct {
	AccountID string `json:"account_id,omitempty"`
}

type ProfileResponse struct {
	Account AccountView `json:"account"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	Country   *string `json:"country,omitempty"`
	Language  *string `json:"language,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
}

type UpdateProfilePictureRequest struct {
	Image []byte `json:"image"`
}

type UpdateProfilePictureResponse struct {
	Locator          string `json:"locator"`
	URL              string `json:"url"`
	PostsUpdated     int    `json:"posts_updated"`
	CommentsUpdated  int    `json:"comments_updated"`
	SnapshotFailures int    `json:"snapshot_failures"`
}

// Graph, posts, comments

type TargetRequest struct {
	TargetID string `json:"target_id"`
}

type CreatePostRequest struct {
	Text  string `json:"text"`
	Photo []byte `json:"photo,omitempty"`
}

type PostRequest struct {
	PostID string `json:"post_id"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type AddCommentRequest struct {
	PostID string `json:"post_id"`
	Text   string `json:"text"`
}

type CommentRequest struct {
	CommentID string `json:"comment_id"`
}

type ListCommentsResponse struct {
	Comments []CommentView `json:"comments"`
}

type GetFeedRequest struct {
	PageToken string `json:"page_token,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type GetFeedResponse struct {
	Posts         []PostView `json:"posts"`
	NextPageToken string     `json:"next_page_token,omitempty"`
	NoPosts       bool       `json:"no_posts"`
}

// Workouts and gamification

type CreateWorkoutRequest struct {
	Type            string    `json:"type"`
	Date            time.Time `json:"date"`
	SeriesPlanned   int       `json:"series_planned"`
	WorkTimeSeconds int       `json:"work_time_seconds"`
	RestTimeSeconds int       `json:"rest_time_seconds"`
}

type FinishWorkoutRequest struct {
	WorkoutID                string  `json:"workout_id"`
	CompletedDurationSeconds int     `json:"completed_duration_seconds"`
	CompletedSeries          int     `json:"completed_series"`
	Calories                 float64 `json:"calories"`
}

type FinishWorkoutResponse struct {
	Workout           WorkoutView `json:"workout"`
	CompletedWorkouts int         `json:"completed_workouts"`
	LeveledUp         bool        `json:"leveled_up"`
	Level             int         `json:"level"`
	MedalGranted      string      `json:"medal_granted,omitempty"`
}

type WorkoutRequest struct {
	WorkoutID string `json:"workout_id"`
}

type ListWorkoutsResponse struct {
	Workouts []WorkoutView `json:"workouts"`
}

type LevelUpFlagResponse struct {
	Pending bool `json:"pending"`
}

// Account removal

type RepairAccountDeletionRequest struct {
	AccountID string `json:"account_id"`
}

type CascadeStep struct {
	Name     string `json:"name"`
	Affected int    `json:"affected"`
	Error    string `json:"error,omitempty"`
}

type CascadeReportResponse struct {
	AccountID string        `json:"account_id"`
	OK        bool          `json:"ok"`
	Steps     []CascadeStep `json:"steps"`
}

// Live documents

// WatchDocumentRequest names a document in collection users, posts or
// comments. Accounts can only watch their own users document.
type WatchDocumentRequest struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// DocumentChange is one stream message. The first one has kind "snapshot".
type DocumentChange struct {
	Kind    string       `json:"kind"`
	ID      string       `json:"id"`
	Account *AccountView `json:"account,omitempty"`
	Post    *PostView    `json:"post,omitempty"`
	Comment *CommentView `json:"comment,omitempty"`
}

package fitsocial

import (
	"context"

	"github.com/oggyb/fitsocial/internal/blobstore"
	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/feed"
	"github.com/oggyb/fitsocial/internal/social"
)

func strs(s db.IDSet) []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}

// toAccountView hides the email unless the viewer owns the account.
func toAccountView(ctx context.Context, blobs blobstore.Store, a *db.Account, age int, self bool) AccountView {
	v := AccountView{
		ID:                    a.ID,
		FirstName:             a.FirstName,
		Username:              a.Username,
		BirthDate:             a.BirthDate,
		Age:                   age,
		Country:               a.Country,
		Language:              a.Language,
		Gender:                a.Gender,
		ProfilePictureRef:     a.ProfilePictureRef,
		FollowedIDs:           strs(a.FollowedIDs),
		ReactedPostIDs:        strs(a.ReactedPostIDs),
		CommentedPostIDs:      strs(a.CommentedPostIDs),
		ReactedCommentIDs:     strs(a.ReactedCommentIDs),
		CompletedWorkoutCount: a.CompletedWorkoutCount,
		Level:                 a.Level,
		Medals:                strs(a.Medals),
	}
	if self {
		v.Email = a.Email
	}
	if a.ProfilePictureRef != "" {
		v.ProfilePictureURL, _ = blobs.ResolveDownloadURL(ctx, a.ProfilePictureRef)
	}
	return v
}

func toPostView(p *db.Post, viewerID string) PostView {
	return PostView{
		ID:                      p.ID,
		AuthorID:                p.AuthorID,
		AuthorFirstName:         p.AuthorFirstName,
		AuthorUsername:          p.AuthorUsername,
		AuthorProfilePictureRef: p.AuthorProfilePictureRef,
		Text:                    p.Text,
		PhotoRef:                p.PhotoRef,
		CreatedAt:               p.CreatedAt,
		ReactingAccountIDs:      strs(p.ReactingAccountIDs),
		CommentingAccountIDs:    strs(p.CommentingAccountIDs),
		ReactionCount:           len(p.ReactingAccountIDs),
		CommentCount:            len(p.CommentingAccountIDs),
		ViewerReacted:           db.HasID(p.ReactingAccountIDs, viewerID),
	}
}

func toFeedView(it feed.Item) PostView {
	v := toPostView(&it.Post, "")
	v.ViewerReacted = it.ViewerReacted
	v.ReactionCount = it.ReactionCount
	v.CommentCount = it.CommentCount
	return v
}

func toCommentView(c *db.Comment) CommentView {
	return CommentView{
		ID:                      c.ID,
		PostID:                  c.PostID,
		AuthorID:                c.AuthorID,
		AuthorFirstName:         c.AuthorFirstName,
		AuthorUsername:          c.AuthorUsername,
		AuthorProfilePictureRef: c.AuthorProfilePictureRef,
		Text:                    c.Text,
		CreatedAt:               c.CreatedAt,
		ReactingAccountIDs:      strs(c.ReactingAccountIDs),
	}
}

func toWorkoutView(w *db.Workout) WorkoutView {
	return WorkoutView{
		ID:                       w.ID,
		AccountID:                w.AccountID,
		Type:                     w.Type,
		Date:                     w.Date,
		IsFinished:               w.IsFinished,
		Calories:                 w.Calories,
		SeriesPlanned:            w.SeriesPlanned,
		WorkTimeSeconds:          w.WorkTimeSeconds,
		RestTimeSeconds:          w.RestTimeSeconds,
		CompletedDurationSeconds: w.CompletedDurationSeconds,
		CompletedSeries:          w.CompletedSeries,
	}
}

func toCascadeResponse(r *social.CascadeReport) *CascadeReportResponse {
	resp := &CascadeReportResponse{AccountID: r.AccountID, OK: r.OK(), Steps: []CascadeStep{}}
	for _, st := range r.Steps {
		step := CascadeStep{Name: st.Name, Affected: st.Affected}
		if st.Err != nil {
			step.Error = st.Err.Error()
		}
		resp.Steps = append(resp.Steps, step)
	}
	return resp
}

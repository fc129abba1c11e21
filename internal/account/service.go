// Package account manages sign-up and profiles.
package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/oggyb/fitsocial/internal/app"
	"github.com/oggyb/fitsocial/internal/blobstore"
	"github.com/oggyb/fitsocial/internal/db"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
	"github.com/oggyb/fitsocial/internal/repository"
	"github.com/oggyb/fitsocial/internal/session"
)

// InitialLevel mirrors the gamification starting level.
const InitialLevel = 1

type Service struct {
	accounts   *repository.AccountRepository
	posts      *repository.PostRepository
	comments   *repository.CommentRepository
	blobs      blobstore.Store
	identities session.IdentityProvider
	sessions   *session.Facade
	log        *slog.Logger
	now        func() time.Time
}

// NewService creates the account service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		accounts:   appCtx.Repos.Accounts,
		posts:      appCtx.Repos.Posts,
		comments:   appCtx.Repos.Comments,
		blobs:      appCtx.Blobs,
		identities: appCtx.Identities,
		sessions:   appCtx.Sessions,
		log:        appCtx.Logger.With("component", "account"),
		now:        time.Now,
	}
}

// SignUpInput is everything needed to open an account.
type SignUpInput struct {
	FirstName string
	Username  string
	Email     string
	Password  string
	BirthDate time.Time
	Country   string
	Language  string
	Gender    string
}

func (in SignUpInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required, validation.RuneLength(1, 64)),
		validation.Field(&in.Username, validation.Required, validation.RuneLength(3, 32), is.Alphanumeric),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&in.BirthDate, validation.Required),
		validation.Field(&in.Gender, validation.In("", "female", "male", "other")),
	)
}

// Profile is an account as shown to others, with the derived age.
type Profile struct {
	Account db.Account
	Age     int
}

// SignUp creates the account and its identity and opens a session.
//
// Behavior:
//   - Username and email are unique case-insensitively: checked by query
//     first, and enforced by the unique indexes if two sign-ups race.
//   - The account is created first; if registering the identity fails the
//     account is removed again.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*db.Account, session.Session, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return nil, session.Session{}, "", svcErr.FromValidation(err)
	}
	if in.BirthDate.After(s.now()) {
		return nil, session.Session{}, "", svcErr.ValidationFailed("BirthDate", "birth date is in the future")
	}

	usernameKey, emailKey := session.NormalizeKey(in.Username), session.NormalizeKey(in.Email)
	existing, err := s.accounts.FindByKeys(ctx, usernameKey, emailKey)
	if err != nil {
		return nil, session.Session{}, "", err
	}
	for _, a := range existing {
		if a.UsernameKey == usernameKey {
			return nil, session.Session{}, "", svcErr.AlreadyExists("account", "username")
		}
	}
	if len(existing) > 0 {
		return nil, session.Session{}, "", svcErr.AlreadyExists("account", "email")
	}

	acc := &db.Account{
		ID:                uuid.NewString(),
		FirstName:         strings.TrimSpace(in.FirstName),
		Username:          in.Username,
		UsernameKey:       usernameKey,
		Email:             in.Email,
		EmailKey:          emailKey,
		BirthDate:         in.BirthDate.UTC(),
		Country:           in.Country,
		Language:          in.Language,
		Gender:            in.Gender,
		FollowedIDs:       db.IDSet{},
		ReactedPostIDs:    db.IDSet{},
		CommentedPostIDs:  db.IDSet{},
		ReactedCommentIDs: db.IDSet{},
		Medals:            db.IDSet{},
		Level:             InitialLevel,
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, session.Session{}, "", err
	}

	if err := s.identities.Register(ctx, acc.ID, in.Email, in.Password); err != nil {
		s.log.Warn("identity registration failed, removing account", "account_id", acc.ID, "err", err)
		if delErr := s.accounts.Delete(ctx, acc.ID); delErr != nil {
			s.log.Error("failed to remove account after sign-up failure", "account_id", acc.ID, "err", delErr)
		}
		return nil, session.Session{}, "", err
	}

	sess, token, err := s.sessions.Open(acc.ID, acc.Username)
	if err != nil {
		return nil, session.Session{}, "", err
	}
	s.log.Info("account created", "account_id", acc.ID, "username", acc.Username)
	return acc, sess, token, nil
}

// GetProfile returns an account with its age computed now.
func (s *Service) GetProfile(ctx context.Context, accountID string) (*Profile, error) {
	acc, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Profile{Account: *acc, Age: acc.Age(s.now())}, nil
}

// ProfileUpdate holds optional changes; nil fields are left alone.
type ProfileUpdate struct {
	FirstName *string
	Country   *string
	Language  *string
	Gender    *string
	BirthDate *time.Time
}

// UpdateProfile changes the session account's editable fields. Existing
// post and comment snapshots keep the values they were written with.
func (s *Service) UpdateProfile(ctx context.Context, sess session.Session, up ProfileUpdate) (*Profile, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	var errs validation.Errors = map[string]error{}
	if up.FirstName != nil {
		v := strings.TrimSpace(*up.FirstName)
		errs["FirstName"] = validation.Validate(v, validation.Required, validation.RuneLength(1, 64))
		fields["first_name"] = v
	}
	if up.Gender != nil {
		errs["Gender"] = validation.Validate(*up.Gender, validation.In("", "female", "male", "other"))
		fields["gender"] = *up.Gender
	}
	if up.Country != nil {
		fields["country"] = *up.Country
	}
	if up.Language != nil {
		fields["language"] = *up.Language
	}
	if up.BirthDate != nil {
		if up.BirthDate.IsZero() || up.BirthDate.After(s.now()) {
			errs["BirthDate"] = errors.New("must be a past date")
		}
		fields["birth_date"] = up.BirthDate.UTC()
	}
	if err := errs.Filter(); err != nil {
		return nil, svcErr.FromValidation(err)
	}

	if len(fields) > 0 {
		if err := s.accounts.Update(ctx, sess.AccountID, fields); err != nil {
			return nil, err
		}
	}
	return s.GetProfile(ctx, sess.AccountID)
}

// PictureReport tells how far a new profile picture propagated.
type PictureReport struct {
	Locator          string
	PostsUpdated     int
	CommentsUpdated  int
	SnapshotFailures int
}

// UpdateProfilePicture stores a new picture and points the account at it.
//
// Behavior:
//   - The old picture is deleted after the account is updated.
//   - Snapshots on the account's posts and comments are refreshed
//     best-effort; failures are counted, logged and not returned.
func (s *Service) UpdateProfilePicture(ctx context.Context, sess session.Session, image []byte) (*PictureReport, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, svcErr.ValidationFailed("image", "image is required")
	}
	acc, err := s.accounts.Get(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}

	locator, err := s.blobs.Put(ctx, acc.ID, image)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Update(ctx, acc.ID, map[string]any{"profile_picture_ref": locator}); err != nil {
		_ = s.blobs.Delete(ctx, locator)
		return nil, err
	}
	if acc.ProfilePictureRef != "" {
		if err := s.blobs.Delete(ctx, acc.ProfilePictureRef); err != nil {
			s.log.Warn("failed to delete old profile picture", "locator", acc.ProfilePictureRef, "err", err)
		}
	}

	report := &PictureReport{Locator: locator}
	snapshot := map[string]any{"author_profile_picture_ref": locator}

	if posts, err := s.posts.ListByAuthor(ctx, acc.ID); err != nil {
		report.SnapshotFailures++
		s.log.Warn("failed to list posts for snapshot refresh", "account_id", acc.ID, "err", err)
	} else {
		for _, p := range posts {
			if err := s.posts.Update(ctx, p.ID, snapshot); err != nil {
				report.SnapshotFailures++
				continue
			}
			report.PostsUpdated++
		}
	}

	if comments, err := s.comments.ListByAuthor(ctx, acc.ID); err != nil {
		report.SnapshotFailures++
		s.log.Warn("failed to list comments for snapshot refresh", "account_id", acc.ID, "err", err)
	} else {
		for _, c := range comments {
			if err := s.comments.Update(ctx, c.ID, snapshot); err != nil {
				report.SnapshotFailures++
				continue
			}
			report.CommentsUpdated++
		}
	}

	if report.SnapshotFailures > 0 {
		s.log.Warn("profile picture snapshots partly refreshed", "account_id", acc.ID, "failures", report.SnapshotFailures)
	}
	return report, nil
}

// ResolvePictureURL returns a download URL for the account's picture, or
// "" when there is none.
func (s *Service) ResolvePictureURL(ctx context.Context, acc *db.Account) (string, error) {
	if acc.ProfilePictureRef == "" {
		return "", nil
	}
	return s.blobs.ResolveDownloadURL(ctx, acc.ProfilePictureRef)
}

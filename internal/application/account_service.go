package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	repo "github.com/oksasatya/prison-staff-admin/internal/domain/repository"
	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
	"github.com/oksasatya/prison-staff-admin/pkg/validation"
)

// PageSize is the number of accounts per listing page.
const PageSize = 5

const (
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldUsername      = "username"
	FieldEmail         = "email"
	FieldBirthdate     = "birthdate"
	FieldPersonalPhone = "personal_phone"
	FieldHomePhone     = "home_phone"
	FieldAddress       = "address"
)

var createRules = validation.Rules{
	FieldFirstName:     "required,min=3,max=35",
	FieldLastName:      "required,min=3,max=35",
	FieldUsername:      "required,min=5,max=20",
	FieldEmail:         "required,email,max=255",
	FieldBirthdate:     "required,dmy,minage=18,maxage=70",
	FieldPersonalPhone: "required,digits=10",
	FieldHomePhone:     "required,digits=9",
	FieldAddress:       "required,min=5,max=50",
}

var updateRules = func() validation.Rules {
	r := validation.Rules{}
	for k, v := range createRules {
		r[k] = v
	}
	r[FieldBirthdate] = "omitempty,dmy,minage=18,maxage=70"
	return r
}()

// Page is one slice of a role-scoped listing.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
	LastPage int `json:"last_page"`
}

// AccountService runs the lifecycle of director and ward accounts.
type AccountService struct {
	Users         repo.UserRepository
	Roles         repo.RoleRepository
	Avatars       AvatarStore
	Notifier      Notifier
	Index         UserIndexer
	Sessions      SessionRevoker
	Validator     *validation.Validator
	Logger        *logrus.Logger
	AvatarBaseURL string

	// Passwords generates plaintext credentials; defaults to helpers.GeneratePassword.
	Passwords func() (string, error)
}

func NewAccountService(users repo.UserRepository, roles repo.RoleRepository, avatars AvatarStore, notifier Notifier, index UserIndexer, v *validation.Validator, logger *logrus.Logger, avatarBaseURL string) *AccountService {
	if v == nil {
		v = validation.New(nil)
	}
	return &AccountService{
		Users:         users,
		Roles:         roles,
		Avatars:       avatars,
		Notifier:      notifier,
		Index:         index,
		Validator:     v,
		Logger:        logger,
		AvatarBaseURL: avatarBaseURL,
		Passwords:     helpers.GeneratePassword,
	}
}

// StatusMessage renders the outcome line shown to the operator, e.g. "Director created successfully".
func StatusMessage(role, verb string) string {
	if role == "" {
		return verb + " successfully"
	}
	return strings.ToUpper(role[:1]) + role[1:] + " " + verb + " successfully"
}

// Create registers a new active account of roleName and emails its generated password.
func (s *AccountService) Create(ctx context.Context, actor entity.Actor, roleName string, fields map[string]string) (*entity.User, string, error) {
	role, err := s.authorize(ctx, actor, roleName)
	if err != nil {
		return nil, "", err
	}
	fields = trimFields(fields)
	if err := s.Validator.Check(ctx, fields, createRules, s.uniqueRules("")...); err != nil {
		return nil, "", err
	}

	birthdate, err := helpers.NormalizeDate(fields[FieldBirthdate])
	if err != nil {
		return nil, "", err
	}
	plain, hash, err := s.newCredential()
	if err != nil {
		return nil, "", err
	}

	u := &entity.User{
		ID:            uuid.NewString(),
		RoleID:        role.ID,
		RoleName:      role.Name,
		FirstName:     fields[FieldFirstName],
		LastName:      fields[FieldLastName],
		Username:      fields[FieldUsername],
		Email:         fields[FieldEmail],
		Birthdate:     birthdate,
		PersonalPhone: fields[FieldPersonalPhone],
		HomePhone:     fields[FieldHomePhone],
		Address:       fields[FieldAddress],
		Password:      hash,
		State:         true,
	}
	if u.AvatarURL, err = s.saveAvatar(ctx, u); err != nil {
		return nil, "", err
	}
	if err := s.Users.Create(ctx, u); err != nil {
		s.dropAvatar(ctx, u.AvatarURL)
		return nil, "", s.writeError("create user", u, err)
	}
	accountStats.Add(statCreated, 1)

	s.index(ctx, u)
	s.notify(ctx, NotifyRegistered, u, plain)
	return u, StatusMessage(role.Name, "created"), nil
}

// Update overwrites the editable fields of an active member. When the email changes a new
// password is generated and sent to the new address.
func (s *AccountService) Update(ctx context.Context, actor entity.Actor, roleName, id string, fields map[string]string) (*entity.User, string, error) {
	role, err := s.authorize(ctx, actor, roleName)
	if err != nil {
		return nil, "", err
	}
	u, err := s.member(ctx, role, id)
	if err != nil {
		return nil, "", err
	}
	if !u.State {
		return nil, "", ErrUserInactive
	}
	fields = trimFields(fields)
	if err := s.Validator.Check(ctx, fields, updateRules, s.uniqueRules(u.ID)...); err != nil {
		return nil, "", err
	}

	oldEmail := u.Email
	oldAvatar := u.AvatarURL

	u.FirstName = fields[FieldFirstName]
	u.LastName = fields[FieldLastName]
	u.Username = fields[FieldUsername]
	u.Email = fields[FieldEmail]
	u.PersonalPhone = fields[FieldPersonalPhone]
	u.HomePhone = fields[FieldHomePhone]
	u.Address = fields[FieldAddress]
	if raw := fields[FieldBirthdate]; raw != "" {
		if u.Birthdate, err = helpers.NormalizeDate(raw); err != nil {
			return nil, "", err
		}
	}

	var plain string
	rotate := u.Email != oldEmail
	if rotate {
		if plain, u.Password, err = s.newCredential(); err != nil {
			return nil, "", err
		}
	}

	if u.AvatarURL, err = s.saveAvatar(ctx, u); err != nil {
		return nil, "", err
	}
	if err := s.Users.Update(ctx, u); err != nil {
		if u.AvatarURL != oldAvatar {
			s.dropAvatar(ctx, u.AvatarURL)
		}
		return nil, "", s.writeError("update user", u, err)
	}
	if u.AvatarURL != oldAvatar {
		s.dropAvatar(ctx, oldAvatar)
	}
	accountStats.Add(statUpdated, 1)

	s.index(ctx, u)
	if rotate {
		accountStats.Add(statRotated, 1)
		s.notify(ctx, NotifyCredentialsChanged, u, plain)
	}
	return u, StatusMessage(role.Name, "updated"), nil
}

// ToggleStatus flips the active flag of a member. Inactivated members lose their session.
func (s *AccountService) ToggleStatus(ctx context.Context, actor entity.Actor, roleName, id string) (*entity.User, string, error) {
	role, err := s.authorize(ctx, actor, roleName)
	if err != nil {
		return nil, "", err
	}
	u, err := s.member(ctx, role, id)
	if err != nil {
		return nil, "", err
	}

	next := !u.State
	if err := s.Users.SetState(ctx, u.ID, next); err != nil {
		return nil, "", s.writeError("set state", u, err)
	}
	u.State = next
	s.index(ctx, u)

	if next {
		accountStats.Add(statActivated, 1)
		return u, StatusMessage(role.Name, "activated"), nil
	}
	accountStats.Add(statInactivated, 1)
	if s.Sessions != nil {
		if rErr := s.Sessions.Revoke(ctx, u.ID); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("user_id", u.ID).Warn("revoke session failed")
		}
	}
	return u, StatusMessage(role.Name, "inactivated"), nil
}

// ResetCredentials issues a new password for an active member and emails it.
func (s *AccountService) ResetCredentials(ctx context.Context, actor entity.Actor, roleName, id string) (*entity.User, string, error) {
	role, err := s.authorize(ctx, actor, roleName)
	if err != nil {
		return nil, "", err
	}
	u, err := s.member(ctx, role, id)
	if err != nil {
		return nil, "", err
	}
	if !u.State {
		return nil, "", ErrUserInactive
	}

	plain, hash, err := s.newCredential()
	if err != nil {
		return nil, "", err
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return nil, "", s.writeError("update password", u, err)
	}
	u.Password = hash
	accountStats.Add(statRotated, 1)

	s.notify(ctx, NotifyCredentialsChanged, u, plain)
	return u, StatusMessage(role.Name, "credentials reset"), nil
}

// Get returns one member of roleName.
func (s *AccountService) Get(ctx context.Context, actor entity.Actor, roleName, id string) (*entity.User, error) {
	role, err := s.authorize(ctx, actor, roleName)
	if err != nil {
		return nil, err
	}
	return s.member(ctx, role, id)
}

// List returns the members of roleName whose username contains search, ordered by first
// and last name, PageSize per page.
func (s *AccountService) List(ctx context.Context, actor entity.Actor, roleName, search string, page int) (Page[entity.User], error) {
	role, err := s.authorize(ctx, actor, roleName)
	if err != nil {
		return Page[entity.User]{}, err
	}
	if page < 1 {
		page = 1
	}
	items, total, err := s.Users.ListByRole(ctx, repo.ListQuery{
		RoleID: role.ID,
		Search: strings.TrimSpace(search),
		Limit:  PageSize,
		Offset: (page - 1) * PageSize,
	})
	if err != nil {
		return Page[entity.User]{}, fmt.Errorf("list %s: %w", role.Name, err)
	}
	if items == nil {
		items = []entity.User{}
	}
	last := (total + PageSize - 1) / PageSize
	if last < 1 {
		last = 1
	}
	return Page[entity.User]{Items: items, Page: page, PerPage: PageSize, Total: total, LastPage: last}, nil
}

// Search looks members of roleName up in the users index. Without an index it returns nothing.
func (s *AccountService) Search(ctx context.Context, actor entity.Actor, roleName, q string, size int) ([]map[string]any, error) {
	role, err := s.authorize(ctx, actor, roleName)
	if err != nil {
		return nil, err
	}
	if s.Index == nil || strings.TrimSpace(q) == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Index.Search(ctx, role.Name, strings.TrimSpace(q), size)
}

func (s *AccountService) authorize(ctx context.Context, actor entity.Actor, roleName string) (*entity.Role, error) {
	if !actor.CanManage(roleName) {
		return nil, ErrForbidden
	}
	role, err := s.Roles.GetByName(ctx, roleName)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load role %s: %w", roleName, err)
	}
	return role, nil
}

// member loads id and hides users of any other role.
func (s *AccountService) member(ctx context.Context, role *entity.Role, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u.RoleID != role.ID {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AccountService) uniqueRules(excludeID string) []validation.UniqueRule {
	return []validation.UniqueRule{
		{Field: FieldUsername, Checker: s.Users, ExcludeID: excludeID},
		{Field: FieldEmail, Checker: s.Users, ExcludeID: excludeID},
	}
}

func (s *AccountService) newCredential() (plain, hash string, err error) {
	gen := s.Passwords
	if gen == nil {
		gen = helpers.GeneratePassword
	}
	if plain, err = gen(); err != nil {
		return "", "", fmt.Errorf("generate password: %w", err)
	}
	if hash, err = helpers.HashPassword(plain); err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	return plain, hash, nil
}

func (s *AccountService) saveAvatar(ctx context.Context, u *entity.User) (string, error) {
	src := AvatarURL(s.AvatarBaseURL, u.FirstName, u.LastName)
	if s.Avatars == nil {
		return src, nil
	}
	url, err := s.Avatars.Save(ctx, u.ID, src)
	if err != nil {
		return "", fmt.Errorf("save avatar: %w", err)
	}
	return url, nil
}

func (s *AccountService) dropAvatar(ctx context.Context, url string) {
	if s.Avatars == nil || url == "" {
		return
	}
	if err := s.Avatars.Delete(ctx, url); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("avatar", url).Warn("delete avatar failed")
	}
}

func (s *AccountService) index(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, u); err != nil {
		accountStats.Add(statIndexFailed, 1)
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index user failed")
		}
	}
}

// notify never fails the operation: the write is already committed.
func (s *AccountService) notify(ctx context.Context, kind NotificationKind, u *entity.User, plain string) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.Notify(ctx, Notification{
		Kind:     kind,
		To:       u.Email,
		FullName: u.FullName(),
		Username: u.Username,
		RoleName: u.RoleName,
		Password: plain,
	})
	if err != nil {
		accountStats.Add(statNotifyFailed, 1)
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"user_id": u.ID,
				"role":    u.RoleName,
				"kind":    kind,
			}).Error("notification failed")
		}
	}
}

func (s *AccountService) writeError(op string, u *entity.User, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	if s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "role": u.RoleName}).Error(op + " failed")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func trimFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = strings.TrimSpace(v)
	}
	return out
}

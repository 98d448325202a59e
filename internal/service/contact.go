package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/deppfellow/go-crud/internal/crud"
	"github.com/deppfellow/go-crud/internal/errs"
	"github.com/deppfellow/go-crud/internal/lib/cache"
	"github.com/deppfellow/go-crud/internal/model"
	"github.com/deppfellow/go-crud/internal/sqlerr"
	"github.com/deppfellow/go-crud/internal/validation"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Contact permissions carried by the caller's organization membership.
const (
	PermissionContactsEdit   = "org:contacts:edit"
	PermissionContactsView   = "org:contacts:view"
	PermissionContactsDelete = "org:contacts:delete"

	// RoleAdmin bypasses the per-permission checks.
	RoleAdmin = "org:admin"
)

// MaxAvatarSize is the largest accepted avatar upload, in bytes.
const MaxAvatarSize = 2 << 20

// AvatarField is the multipart field carrying the avatar on save.
const AvatarField = "avatar"

// ContactStore is the persistence needed by ContactService.
type ContactStore interface {
	GetByID(ctx context.Context, id int64) (model.Contact, error)
	FindByEmail(ctx context.Context, email string) (model.Contact, bool, error)
	Search(filter model.ContactFilter) crud.Query[model.Contact]
	Autocomplete(ctx context.Context, term, createdBy string) ([]map[string]any, error)
	Create(ctx context.Context, c *model.Contact) error
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// ObjectStore keeps uploaded files.
type ObjectStore interface {
	PutObject(ctx context.Context, objectKey string, reader io.Reader, sizeBytes int64, contentType string) error
	RemoveObject(ctx context.Context, objectKey string) error
}

// WelcomeEnqueuer schedules the welcome email of new contacts.
type WelcomeEnqueuer interface {
	EnqueueContactWelcome(ctx context.Context, contactID int64, to, name string) error
}

// ContactService implements crud.Service for contacts.
//
// Storage and jobs are optional: without storage avatar uploads are rejected,
// without jobs no welcome email is scheduled.
type ContactService struct {
	store   ContactStore
	cache   *cache.EntityCache[model.Contact]
	storage ObjectStore
	jobs    WelcomeEnqueuer
	logger  *zerolog.Logger
}

var _ crud.Service[model.Contact] = (*ContactService)(nil)

func NewContactService(
	store ContactStore,
	entityCache *cache.EntityCache[model.Contact],
	storage ObjectStore,
	jobs WelcomeEnqueuer,
	logger *zerolog.Logger,
) *ContactService {
	return &ContactService{
		store:   store,
		cache:   entityCache,
		storage: storage,
		jobs:    jobs,
		logger:  logger,
	}
}

func (s *ContactService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

// GetRootEntityData serves reads from the cache when possible.
func (s *ContactService) GetRootEntityData(ctx context.Context, id int64) (model.Contact, error) {
	contact, found, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log(ctx).Warn().Err(err).Int64("contact_id", id).Msg("contact cache read failed")
	}

	if !found {
		contact, err = s.store.GetByID(ctx, id)
		if err != nil {
			return model.Contact{}, err
		}

		if err := s.cache.Set(ctx, id, contact); err != nil {
			s.log(ctx).Warn().Err(err).Int64("contact_id", id).Msg("contact cache write failed")
		}
	}

	if !s.CheckUserViewPermission(ctx, contact) {
		return model.Contact{}, errs.NewForbiddenError("You are not allowed to view this contact", true)
	}

	return contact, nil
}

// SearchQuery reads "search", "sort" and "order" from dto. Callers without the
// view permission only see their own contacts.
func (s *ContactService) SearchQuery(ctx context.Context, dto *crud.DTO) (crud.Query[model.Contact], error) {
	owner, err := searchOwner(ctx)
	if err != nil {
		return nil, err
	}

	filter := contactFilter(dto)
	filter.CreatedBy = owner

	return s.store.Search(filter), nil
}

// OwnSearchQuery lists the caller's own contacts regardless of permissions.
func (s *ContactService) OwnSearchQuery(ctx context.Context, dto *crud.DTO) (crud.Query[model.Contact], error) {
	principal, ok := crud.PrincipalFromContext(ctx)
	if !ok || principal.UserID == "" {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}

	filter := contactFilter(dto)
	filter.CreatedBy = principal.UserID

	return s.store.Search(filter), nil
}

// searchOwner is the owner every listing of the caller is restricted to.
// An empty owner means the caller may see all contacts.
func searchOwner(ctx context.Context) (string, error) {
	principal, ok := crud.PrincipalFromContext(ctx)
	if !ok || principal.UserID == "" {
		return "", errs.NewUnauthorizedError("Unauthorized", false)
	}

	if canAll(principal, PermissionContactsView) {
		return "", nil
	}
	return principal.UserID, nil
}

func contactFilter(dto *crud.DTO) model.ContactFilter {
	return model.ContactFilter{
		Term: dto.String("search", ""),
		Sort: dto.String("sort", ""),
		Desc: strings.EqualFold(dto.String("order", ""), "desc"),
	}
}

// Save creates the contact when the input has no id and updates it otherwise.
func (s *ContactService) Save(ctx context.Context, dto *crud.DTO) (int64, error) {
	principal, ok := crud.PrincipalFromContext(ctx)
	if !ok || principal.UserID == "" {
		return 0, errs.NewUnauthorizedError("Unauthorized", false)
	}

	var in model.ContactInput
	if err := dto.Decode(&in); err != nil {
		return 0, crud.NewEntityError("Invalid contact data", err)
	}
	in.Normalize()

	if err := validation.Struct(&in); err != nil {
		msg, fields := validation.FieldErrors(err)
		return 0, crud.NewValidationError(msg, fields)
	}

	contact := model.Contact{CreatedBy: principal.UserID}
	if in.ID != 0 {
		existing, err := s.store.GetByID(ctx, in.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, crud.NewVerificationError(fmt.Sprintf("Contact %d does not exist", in.ID))
		}
		if err != nil {
			return 0, err
		}
		if !s.CheckUserEditPermission(ctx, existing) {
			return 0, crud.NewVerificationError("You are not allowed to edit this contact")
		}
		contact = existing
	}

	other, taken, err := s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		return 0, err
	}
	if taken && other.ID != contact.ID {
		return 0, crud.NewUniqueError("A Contact with this Email already exists")
	}

	contact.Name = in.Name
	contact.Email = in.Email
	contact.Phone = in.Phone
	contact.Notes = in.Notes

	previousAvatar := contact.AvatarKey
	uploadedAvatar, err := s.uploadAvatar(ctx, dto)
	if err != nil {
		return 0, err
	}
	if uploadedAvatar != nil {
		contact.AvatarKey = uploadedAvatar
	}

	created := contact.ID == 0
	if created {
		err = s.store.Create(ctx, &contact)
	} else {
		err = s.store.Update(ctx, &contact)
	}
	if err != nil {
		if uploadedAvatar != nil {
			s.removeAvatar(ctx, *uploadedAvatar)
		}
		return 0, saveError(err)
	}

	if uploadedAvatar != nil && previousAvatar != nil {
		s.removeAvatar(ctx, *previousAvatar)
	}

	if err := s.cache.Delete(ctx, contact.ID); err != nil {
		s.log(ctx).Warn().Err(err).Int64("contact_id", contact.ID).Msg("contact cache invalidation failed")
	}

	if created && s.jobs != nil {
		if err := s.jobs.EnqueueContactWelcome(ctx, contact.ID, contact.Email, contact.Name); err != nil {
			s.log(ctx).Error().Err(err).Int64("contact_id", contact.ID).Msg("failed to enqueue contact welcome email")
		}
	}

	s.log(ctx).Info().
		Int64("contact_id", contact.ID).
		Bool("created", created).
		Msg("contact saved")

	return contact.ID, nil
}

// saveError turns a racing unique violation into the crud unique kind.
func saveError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
		return crud.NewUniqueError(sqlerr.UniqueViolationMessage(sqlerr.ConvertPgError(pgErr)))
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return crud.NewVerificationError("Contact no longer exists")
	}
	return err
}

func (s *ContactService) uploadAvatar(ctx context.Context, dto *crud.DTO) (*string, error) {
	fh, ok := dto.File(AvatarField)
	if !ok {
		return nil, nil
	}

	if s.storage == nil {
		return nil, crud.NewUploadError("File uploads are not enabled", nil)
	}

	if fh.Size > MaxAvatarSize {
		return nil, crud.NewUploadError(fmt.Sprintf("Avatar must not exceed %d bytes", MaxAvatarSize), nil)
	}

	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, crud.NewUploadError("Avatar must be an image", nil)
	}

	key := avatarKey(fh)

	f, err := fh.Open()
	if err != nil {
		return nil, crud.NewUploadError("Could not read the uploaded avatar", err)
	}
	defer f.Close()

	if err := s.storage.PutObject(ctx, key, f, fh.Size, contentType); err != nil {
		return nil, crud.NewUploadError("Could not store the uploaded avatar", err)
	}

	return &key, nil
}

func avatarKey(fh *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	return "contacts/avatars/" + uuid.NewString() + ext
}

func (s *ContactService) removeAvatar(ctx context.Context, key string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.RemoveObject(ctx, key); err != nil {
		s.log(ctx).Warn().Err(err).Str("object_key", key).Msg("failed to remove avatar object")
	}
}

// RemoveEntity returns false when the contact does not exist.
func (s *ContactService) RemoveEntity(ctx context.Context, id int64) (bool, error) {
	contact, err := s.store.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !s.CheckUserDeletePermission(ctx, contact) {
		return false, errs.NewForbiddenError("You are not allowed to delete this contact", true)
	}

	removed, err := s.store.Delete(ctx, id)
	if err != nil || !removed {
		return removed, err
	}

	if contact.AvatarKey != nil {
		s.removeAvatar(ctx, *contact.AvatarKey)
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		s.log(ctx).Warn().Err(err).Int64("contact_id", id).Msg("contact cache invalidation failed")
	}

	return true, nil
}

// AutocompleteSearch matches the "term" parameter against name and email,
// within the same contacts SearchQuery would list.
func (s *ContactService) AutocompleteSearch(ctx context.Context, dto *crud.DTO) ([]map[string]any, error) {
	owner, err := searchOwner(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.TrimSpace(dto.String("term", ""))
	if term == "" {
		return nil, nil
	}
	return s.store.Autocomplete(ctx, term, owner)
}

func (s *ContactService) CheckUserEditPermission(ctx context.Context, c model.Contact) bool {
	return allowed(ctx, c, PermissionContactsEdit)
}

func (s *ContactService) CheckUserViewPermission(ctx context.Context, c model.Contact) bool {
	return allowed(ctx, c, PermissionContactsView)
}

func (s *ContactService) CheckUserDeletePermission(ctx context.Context, c model.Contact) bool {
	return allowed(ctx, c, PermissionContactsDelete)
}

// allowed grants owners every action on their contacts.
func allowed(ctx context.Context, c model.Contact, permission string) bool {
	principal, ok := crud.PrincipalFromContext(ctx)
	if !ok || principal.UserID == "" {
		return false
	}
	return principal.UserID == c.CreatedBy || canAll(principal, permission)
}

func canAll(p crud.Principal, permission string) bool {
	return p.Role == RoleAdmin || p.Has(permission)
}

package service

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// memRepo is an in-memory SoftDeleteRepository. Scopes are ignored.
type memRepo[T any] struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*T
	seq  []uuid.UUID
}

func newMemRepo[T any]() *memRepo[T] {
	return &memRepo[T]{rows: make(map[uuid.UUID]*T)}
}

func idOf(v interface{}) *uuid.UUID {
	return reflect.ValueOf(v).Elem().FieldByName("ID").Addr().Interface().(*uuid.UUID)
}

func softDeleteOf(v interface{}) *model.SoftDelete {
	return reflect.ValueOf(v).Elem().FieldByName("SoftDelete").Addr().Interface().(*model.SoftDelete)
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func (r *memRepo[T]) put(v *T) *T {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := idOf(v)
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if _, ok := r.rows[*id]; !ok {
		r.seq = append(r.seq, *id)
	}
	r.rows[*id] = clone(v)
	return v
}

func (r *memRepo[T]) List(_ context.Context, opts repository.ListOptions, _ ...repository.Scope) ([]T, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]T, 0)
	for _, id := range r.seq {
		row := r.rows[id]
		if !opts.IncludeDeleted && softDeleteOf(row).IsDeleted() {
			continue
		}
		items = append(items, *row)
	}
	return items, int64(len(items)), nil
}

func (r *memRepo[T]) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || (!includeDeleted && softDeleteOf(row).IsDeleted()) {
		return nil, gorm.ErrRecordNotFound
	}
	return clone(row), nil
}

func (r *memRepo[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := r.FindByID(ctx, id, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memRepo[T]) Create(_ context.Context, entity *T) error {
	r.put(entity)
	return nil
}

func (r *memRepo[T]) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || softDeleteOf(row).IsDeleted() {
		return gorm.ErrRecordNotFound
	}
	applyColumns(row, fields)
	return nil
}

func (r *memRepo[T]) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sd := softDeleteOf(row)
	if sd.IsDeleted() {
		return repository.ErrAlreadyDeleted
	}
	by := deletedBy
	sd.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	sd.DeletedBy = &by
	return nil
}

func (r *memRepo[T]) Restore(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sd := softDeleteOf(row)
	if !sd.IsDeleted() {
		return repository.ErrNotDeleted
	}
	sd.DeletedAt = gorm.DeletedAt{}
	sd.DeletedBy = nil
	return nil
}

// applyColumns sets struct fields from a column map using GORM's default naming.
func applyColumns(dst interface{}, fields map[string]interface{}) {
	v := reflect.ValueOf(dst).Elem()
	for column, value := range fields {
		if f, ok := fieldByColumn(v, column); ok {
			assign(f, value)
		}
	}
}

func fieldByColumn(v reflect.Value, column string) (reflect.Value, bool) {
	naming := schema.NamingStrategy{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if f, ok := fieldByColumn(v.Field(i), column); ok {
				return f, true
			}
			continue
		}
		name := naming.ColumnName("", sf.Name)
		if tag := sf.Tag.Get("gorm"); strings.Contains(tag, "column:") {
			name = strings.SplitN(strings.SplitN(tag, "column:", 2)[1], ";", 2)[0]
		}
		if name == column {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func assign(f reflect.Value, value interface{}) {
	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Type().AssignableTo(f.Type()):
		f.Set(rv)
	case f.Kind() == reflect.Ptr && rv.Type().AssignableTo(f.Type().Elem()):
		p := reflect.New(f.Type().Elem())
		p.Elem().Set(rv)
		f.Set(p)
	case rv.Kind() == reflect.Ptr && rv.IsNil():
		f.Set(reflect.Zero(f.Type()))
	case rv.Kind() == reflect.Ptr && rv.Elem().Type().AssignableTo(f.Type()):
		f.Set(rv.Elem())
	}
}

type fakeTx struct{ calls int }

func (t *fakeTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []model.ActivityLog
}

func (a *fakeActivity) Log(_ context.Context, entry *model.ActivityLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, *entry)
	return nil
}

func (a *fakeActivity) List(_ context.Context, _ repository.ActivityFilter, offset, limit int) ([]model.ActivityLog, int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.ActivityLog, 0)
	for i := offset; i < len(a.entries) && len(out) < limit; i++ {
		out = append(out, a.entries[i])
	}
	return out, int64(len(a.entries)), nil
}

func (a *fakeActivity) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeUsers struct {
	*memRepo[model.User]
	roles *fakeRoles
}

func (u *fakeUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	items, _, _ := u.List(ctx, repository.ListOptions{})
	for _, item := range items {
		if item.Email == email {
			user := item
			if u.roles != nil {
				if role, err := u.roles.FindByID(ctx, user.RoleID, false); err == nil {
					user.Role = role
				}
			}
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *fakeUsers) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return u.Update(ctx, id, map[string]interface{}{"password_hash": hash})
}

func (u *fakeUsers) CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	items, _, _ := u.List(ctx, repository.ListOptions{})
	var n int64
	for _, item := range items {
		if item.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

type fakeRoles struct {
	*memRepo[model.Role]
	perms map[uuid.UUID][]uuid.UUID
	known map[uuid.UUID]string
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{memRepo: newMemRepo[model.Role](), perms: map[uuid.UUID][]uuid.UUID{}, known: map[uuid.UUID]string{}}
}

func (r *fakeRoles) FindByName(ctx context.Context, name string) (*model.Role, error) {
	items, _, _ := r.List(ctx, repository.ListOptions{})
	for _, item := range items {
		if item.Name == name {
			role := item
			return &role, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRoles) ReplacePermissions(_ context.Context, roleID uuid.UUID, ids []uuid.UUID) error {
	r.perms[roleID] = append([]uuid.UUID(nil), ids...)
	return nil
}

func (r *fakeRoles) GetPermissionNamesByRoleID(_ context.Context, roleID uuid.UUID) ([]string, error) {
	names := make([]string, 0)
	for _, id := range r.perms[roleID] {
		names = append(names, r.known[id])
	}
	sort.Strings(names)
	return names, nil
}

func (r *fakeRoles) CountPermissions(_ context.Context, ids []uuid.UUID) (int64, error) {
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if _, ok := r.known[id]; ok {
			seen[id] = true
		}
	}
	return int64(len(seen)), nil
}

type fakeFindings struct {
	*memRepo[model.Finding]
}

func (f *fakeFindings) Transition(_ context.Context, id uuid.UUID, from, to string, fields map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.IsDeleted() || row.Status != from {
		return false, nil
	}
	applyColumns(row, fields)
	row.Status = to
	return true, nil
}

type fakeAttachments struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Attachment
}

func newFakeAttachments() *fakeAttachments {
	return &fakeAttachments{rows: map[uuid.UUID]model.Attachment{}}
}

func (a *fakeAttachments) Create(_ context.Context, att *model.Attachment) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if att.ID == uuid.Nil {
		att.ID = uuid.New()
	}
	a.rows[att.ID] = *att
	return nil
}

func (a *fakeAttachments) FindByID(_ context.Context, id uuid.UUID) (*model.Attachment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	att, ok := a.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &att, nil
}

func (a *fakeAttachments) ListByOwner(_ context.Context, entityType string, entityID uuid.UUID) ([]model.Attachment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Attachment, 0)
	for _, att := range a.rows {
		if att.EntityType == entityType && att.EntityID == entityID {
			out = append(out, att)
		}
	}
	return out, nil
}

func (a *fakeAttachments) Delete(_ context.Context, id uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(a.rows, id)
	return nil
}

type fakeSettings struct {
	settings model.Settings
}

func (s *fakeSettings) Get(context.Context) (*model.Settings, error) {
	c := s.settings
	return &c, nil
}

func (s *fakeSettings) Save(_ context.Context, settings *model.Settings) error {
	s.settings = *settings
	return nil
}

type fakeFiles struct {
	saved     map[string]string
	removed   []string
	removeErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{saved: map[string]string{}}
}

func (f *fakeFiles) Save(dir, name string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	rel := dir + "/" + uuid.NewString() + "-" + name
	f.saved[rel] = string(data)
	return rel, int64(len(data)), nil
}

func (f *fakeFiles) Remove(rel string) error {
	f.removed = append(f.removed, rel)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.saved, rel)
	return nil
}

type recordedEvent struct {
	name string
	data interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, data: data})
}

func (p *fakePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.name)
	}
	return out
}

type fakeRevoker struct {
	revoked map[string]time.Time
}

func (r *fakeRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	if r.revoked == nil {
		r.revoked = map[string]time.Time{}
	}
	r.revoked[jti] = until
	return nil
}

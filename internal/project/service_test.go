package project

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/designer/internal/db"
	"github.com/inamate/designer/internal/document"
)

type fakeStore struct {
	projects  map[string]db.Project
	members   map[[2]string]db.ProjectRole
	users     map[string]db.User
	snapshots map[string][]db.Snapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:  map[string]db.Project{},
		members:   map[[2]string]db.ProjectRole{},
		users:     map[string]db.User{},
		snapshots: map[string][]db.Snapshot{},
	}
}

func (f *fakeStore) CreateProject(_ context.Context, arg db.CreateProjectParams) (db.Project, error) {
	now := time.Now()
	p := db.Project{
		ID: arg.ID, Name: arg.Name, OwnerID: arg.OwnerID, ToolID: arg.ToolID,
		Width: arg.Width, Height: arg.Height, DPI: arg.DPI, CreatedAt: now, UpdatedAt: now,
	}
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeStore) GetProject(_ context.Context, id string) (db.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return p, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) ListProjectsForUser(_ context.Context, userID string) ([]db.Project, error) {
	var out []db.Project
	for k := range f.members {
		if k[1] == userID {
			out = append(out, f.projects[k[0]])
		}
	}
	return out, nil
}

func (f *fakeStore) TouchProject(_ context.Context, id string) error {
	p := f.projects[id]
	p.UpdatedAt = time.Now()
	f.projects[id] = p
	return nil
}

func (f *fakeStore) DeleteProject(_ context.Context, id string) error {
	delete(f.projects, id)
	return nil
}

func (f *fakeStore) AddProjectMember(_ context.Context, arg db.AddProjectMemberParams) error {
	f.members[[2]string{arg.ProjectID, arg.UserID}] = arg.Role
	return nil
}

func (f *fakeStore) GetProjectMember(_ context.Context, arg db.GetProjectMemberParams) (db.ProjectMember, error) {
	role, ok := f.members[[2]string{arg.ProjectID, arg.UserID}]
	if !ok {
		return db.ProjectMember{}, pgx.ErrNoRows
	}
	return db.ProjectMember{ProjectID: arg.ProjectID, UserID: arg.UserID, Role: role}, nil
}

func (f *fakeStore) ListProjectMembers(_ context.Context, projectID string) ([]db.ProjectMemberRow, error) {
	var out []db.ProjectMemberRow
	for k, role := range f.members {
		if k[0] == projectID {
			u := f.users[k[1]]
			out = append(out, db.ProjectMemberRow{UserID: k[1], Role: role, DisplayName: u.DisplayName, Email: u.Email})
		}
	}
	return out, nil
}

func (f *fakeStore) RemoveProjectMember(_ context.Context, arg db.RemoveProjectMemberParams) error {
	delete(f.members, [2]string{arg.ProjectID, arg.UserID})
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (db.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return db.User{}, pgx.ErrNoRows
}

func (f *fakeStore) CreateSnapshot(_ context.Context, arg db.CreateSnapshotParams) (db.Snapshot, error) {
	s := db.Snapshot{ID: arg.ID, ProjectID: arg.ProjectID, Version: arg.Version, Document: arg.Document, CreatedAt: time.Now()}
	f.snapshots[arg.ProjectID] = append(f.snapshots[arg.ProjectID], s)
	return s, nil
}

func (f *fakeStore) GetLatestSnapshot(_ context.Context, projectID string) (db.Snapshot, error) {
	snaps := f.snapshots[projectID]
	if len(snaps) == 0 {
		return db.Snapshot{}, pgx.ErrNoRows
	}
	return snaps[len(snaps)-1], nil
}

func TestCreateSeedsBusinessCard(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 0)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateParams{Name: "Cards"}, "user_owner")
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultWidth), p.Width)
	assert.Equal(t, float64(DefaultHeight), p.Height)
	assert.Equal(t, float64(DefaultDPI), p.DPI)

	doc, err := svc.LatestDocument(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cards", doc.Name)
	assert.Equal(t, 1050.0, doc.Root().Transform.Size.Width)
	assert.NoError(t, document.Validate(doc))

	assert.NoError(t, svc.CheckMember(ctx, p.ID, "user_owner"))
	assert.ErrorIs(t, svc.CheckMember(ctx, p.ID, "user_other"), ErrNotMember)
}

func TestSaveDocumentIncrementsVersion(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 0)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateParams{Name: "Cards", Width: 600, Height: 600, DPI: 150}, "user_owner")
	require.NoError(t, err)

	doc, err := svc.LatestDocument(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SaveDocument(ctx, p.ID, document.Rename(doc, "Second")))

	snaps := store.snapshots[p.ID]
	require.Len(t, snaps, 2)
	assert.Equal(t, int32(2), snaps[1].Version)

	latest, err := svc.LatestDocument(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", latest.Name)
	assert.Equal(t, 150.0, latest.Meta.DPI)
}

func TestSaveSnapshotChecksRoleAndDocument(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 0)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateParams{Name: "Cards"}, "user_owner")
	require.NoError(t, err)
	store.members[[2]string{p.ID, "user_viewer"}] = db.ProjectRoleViewer

	raw, err := svc.GetLatestSnapshot(ctx, p.ID, "user_owner")
	require.NoError(t, err)

	_, err = svc.SaveSnapshot(ctx, p.ID, "user_viewer", raw)
	assert.ErrorIs(t, err, ErrForbidden)

	canEdit, err := svc.CanEdit(ctx, p.ID, "user_viewer")
	require.NoError(t, err)
	assert.False(t, canEdit)
	canEdit, err = svc.CanEdit(ctx, p.ID, "user_owner")
	require.NoError(t, err)
	assert.True(t, canEdit)
	_, err = svc.CanEdit(ctx, p.ID, "user_stranger")
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = svc.SaveSnapshot(ctx, p.ID, "user_stranger", raw)
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = svc.SaveSnapshot(ctx, p.ID, "user_owner", []byte(`{"rootFrameId":"missing"}`))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	version, err := svc.SaveSnapshot(ctx, p.ID, "user_owner", raw)
	require.NoError(t, err)
	assert.Equal(t, int32(2), version)
}

func TestOwnerOnlyOperations(t *testing.T) {
	store := newFakeStore()
	store.users["user_bob"] = db.User{ID: "user_bob", Email: "bob@example.com", DisplayName: "Bob"}
	svc := NewService(store, 0)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateParams{Name: "Cards"}, "user_owner")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.InviteByEmail(ctx, p.ID, "user_bob", "bob@example.com"), ErrForbidden)
	assert.ErrorIs(t, svc.InviteByEmail(ctx, p.ID, "user_owner", "nobody@example.com"), ErrUserNotFound)
	require.NoError(t, svc.InviteByEmail(ctx, p.ID, "user_owner", "bob@example.com"))

	members, err := svc.ListMembers(ctx, p.ID, "user_bob")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	assert.ErrorIs(t, svc.RemoveMember(ctx, p.ID, "user_owner", "user_owner"), ErrCannotRemoveOwner)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID, "user_bob"), ErrForbidden)
	require.NoError(t, svc.RemoveMember(ctx, p.ID, "user_owner", "user_bob"))
	require.NoError(t, svc.Delete(ctx, p.ID, "user_owner"))

	_, err = svc.Get(ctx, p.ID, "user_owner")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandleServiceErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotMember, http.StatusForbidden},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrCannotRemoveOwner, http.StatusBadRequest},
		{ErrInvalidDocument, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handleServiceError(rec, tt.err)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}
}

func TestCreateHandlerValidates(t *testing.T) {
	h := NewHandler(NewService(newFakeStore(), 0))
	r := mux.NewRouter()
	r.HandleFunc("/projects", h.Create).Methods("POST")

	for body, code := range map[string]int{
		`{`:                          http.StatusBadRequest,
		`{"name":""}`:                http.StatusBadRequest,
		`{"name":"A","width":-1}`:    http.StatusBadRequest,
		`{"name":"A","toolId":"bc"}`: http.StatusCreated,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("POST", "/projects", strings.NewReader(body)))
		assert.Equal(t, code, rec.Code, body)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/projects", strings.NewReader(`{"name":"Made"}`)))
	var p Project
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "Made", p.Name)
}

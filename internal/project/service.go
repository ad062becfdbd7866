package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/designer/internal/db"
	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/typeid"
)

var (
	ErrNotFound          = errors.New("project not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNotMember         = errors.New("not a project member")
	ErrUserNotFound      = errors.New("user not found")
	ErrCannotRemoveOwner = errors.New("cannot remove project owner")
	ErrInvalidDocument   = errors.New("invalid document")
)

// Business card at 300 dpi: 3.5in x 2in.
const (
	DefaultWidth  = 1050
	DefaultHeight = 600
	DefaultDPI    = 300
)

// Store is the subset of db.Queries the service needs.
type Store interface {
	CreateProject(ctx context.Context, arg db.CreateProjectParams) (db.Project, error)
	GetProject(ctx context.Context, id string) (db.Project, error)
	ListProjectsForUser(ctx context.Context, userID string) ([]db.Project, error)
	TouchProject(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error
	AddProjectMember(ctx context.Context, arg db.AddProjectMemberParams) error
	GetProjectMember(ctx context.Context, arg db.GetProjectMemberParams) (db.ProjectMember, error)
	ListProjectMembers(ctx context.Context, projectID string) ([]db.ProjectMemberRow, error)
	RemoveProjectMember(ctx context.Context, arg db.RemoveProjectMemberParams) error
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	CreateSnapshot(ctx context.Context, arg db.CreateSnapshotParams) (db.Snapshot, error)
	GetLatestSnapshot(ctx context.Context, projectID string) (db.Snapshot, error)
}

type Service struct {
	queries    Store
	defaultDPI float64
}

// NewService creates a project service. defaultDPI applies to projects
// created without one; zero means 300.
func NewService(queries Store, defaultDPI float64) *Service {
	if defaultDPI <= 0 {
		defaultDPI = DefaultDPI
	}
	return &Service{queries: queries, defaultDPI: defaultDPI}
}

type Project struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	OwnerID   string  `json:"ownerId"`
	ToolID    string  `json:"toolId"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	DPI       float64 `json:"dpi"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// CreateParams describes a new project. Zero sizes fall back to a
// business card.
type CreateParams struct {
	Name   string
	ToolID string
	Width  float64
	Height float64
	DPI    float64
}

func (s *Service) Create(ctx context.Context, params CreateParams, ownerID string) (*Project, error) {
	if params.Width <= 0 || params.Height <= 0 {
		params.Width, params.Height = DefaultWidth, DefaultHeight
	}
	if params.DPI <= 0 {
		params.DPI = s.defaultDPI
	}
	projectID := typeid.NewProjectID()

	dbProj, err := s.queries.CreateProject(ctx, db.CreateProjectParams{
		ID:      projectID,
		Name:    params.Name,
		OwnerID: ownerID,
		ToolID:  params.ToolID,
		Width:   params.Width,
		Height:  params.Height,
		DPI:     params.DPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	// Add owner as member
	err = s.queries.AddProjectMember(ctx, db.AddProjectMemberParams{
		ProjectID: projectID,
		UserID:    ownerID,
		Role:      db.ProjectRoleOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	// Seed the blank design
	doc := document.CreateDocument(document.DocumentOptions{
		ToolID: params.ToolID,
		Name:   params.Name,
		Width:  params.Width,
		Height: params.Height,
		DPI:    params.DPI,
	})
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal empty document: %w", err)
	}

	_, err = s.queries.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   1,
		Document:  docJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return dbProjectToProject(dbProj), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	if _, err := s.membership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	dbProj, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return dbProjectToProject(dbProj), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	dbProjects, err := s.queries.ListProjectsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(dbProjects))
	for i, p := range dbProjects {
		projects[i] = *dbProjectToProject(p)
	}

	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	dbProj, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if dbProj.OwnerID != userID {
		return ErrForbidden
	}

	return s.queries.DeleteProject(ctx, projectID)
}

func (s *Service) InviteByEmail(ctx context.Context, projectID, ownerID, inviteeEmail string) error {
	// Verify the requester is the owner
	dbProj, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if dbProj.OwnerID != ownerID {
		return ErrForbidden
	}

	invitee, err := s.queries.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	return s.queries.AddProjectMember(ctx, db.AddProjectMemberParams{
		ProjectID: projectID,
		UserID:    invitee.ID,
		Role:      db.ProjectRoleEditor,
	})
}

func (s *Service) ListMembers(ctx context.Context, projectID, userID string) ([]Member, error) {
	if _, err := s.membership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	dbMembers, err := s.queries.ListProjectMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(dbMembers))
	for i, m := range dbMembers {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}

	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, projectID, ownerID, targetUserID string) error {
	dbProj, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if dbProj.OwnerID != ownerID {
		return ErrForbidden
	}

	if targetUserID == ownerID {
		return ErrCannotRemoveOwner
	}

	return s.queries.RemoveProjectMember(ctx, db.RemoveProjectMemberParams{
		ProjectID: projectID,
		UserID:    targetUserID,
	})
}

// CanEdit reports whether userID may change the project's document.
// Non-members get ErrNotMember.
func (s *Service) CanEdit(ctx context.Context, projectID, userID string) (bool, error) {
	member, err := s.membership(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	return member.Role != db.ProjectRoleViewer, nil
}

// CheckMember reports ErrNotMember unless userID belongs to the project.
func (s *Service) CheckMember(ctx context.Context, projectID, userID string) error {
	_, err := s.membership(ctx, projectID, userID)
	return err
}

func (s *Service) GetLatestSnapshot(ctx context.Context, projectID, userID string) (json.RawMessage, error) {
	if _, err := s.membership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	snap, err := s.latest(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return snap.Document, nil
}

// SaveSnapshot stores a client-supplied document as the next version.
// Viewers cannot save.
func (s *Service) SaveSnapshot(ctx context.Context, projectID, userID string, raw []byte) (int32, error) {
	member, err := s.membership(ctx, projectID, userID)
	if err != nil {
		return 0, err
	}
	if member.Role == db.ProjectRoleViewer {
		return 0, ErrForbidden
	}

	doc, err := document.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := document.Validate(doc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return s.saveDocument(ctx, projectID, doc)
}

// LatestDocument loads the newest stored document of a project without a
// membership check. Callers authorize first.
func (s *Service) LatestDocument(ctx context.Context, projectID string) (*document.Document, error) {
	snap, err := s.latest(ctx, projectID)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	return doc, nil
}

// SaveDocument stores doc as the next snapshot version without a
// membership check. The collaboration hub saves through it.
func (s *Service) SaveDocument(ctx context.Context, projectID string, doc *document.Document) error {
	_, err := s.saveDocument(ctx, projectID, doc)
	return err
}

func (s *Service) saveDocument(ctx context.Context, projectID string, doc *document.Document) (int32, error) {
	stamped := *doc
	stamped.Meta.UpdatedAt = time.Now().UTC()
	docJSON, err := json.Marshal(&stamped)
	if err != nil {
		return 0, fmt.Errorf("marshal document: %w", err)
	}

	// Get current version to increment
	nextVersion := int32(1)
	current, err := s.queries.GetLatestSnapshot(ctx, projectID)
	switch {
	case err == nil:
		nextVersion = current.Version + 1
	case !errors.Is(err, pgx.ErrNoRows):
		return 0, fmt.Errorf("get snapshot: %w", err)
	}

	snap, err := s.queries.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   nextVersion,
		Document:  docJSON,
	})
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	if err := s.queries.TouchProject(ctx, projectID); err != nil {
		return 0, fmt.Errorf("touch project: %w", err)
	}
	return snap.Version, nil
}

func (s *Service) getProject(ctx context.Context, projectID string) (db.Project, error) {
	p, err := s.queries.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Project{}, ErrNotFound
		}
		return db.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Service) latest(ctx context.Context, projectID string) (db.Snapshot, error) {
	snap, err := s.queries.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Snapshot{}, ErrNotFound
		}
		return db.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

func (s *Service) membership(ctx context.Context, projectID, userID string) (db.ProjectMember, error) {
	m, err := s.queries.GetProjectMember(ctx, db.GetProjectMemberParams{
		ProjectID: projectID,
		UserID:    userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return m, ErrNotMember
		}
		return m, fmt.Errorf("check membership: %w", err)
	}
	return m, nil
}

func dbProjectToProject(p db.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		ToolID:    p.ToolID,
		Width:     p.Width,
		Height:    p.Height,
		DPI:       p.DPI,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

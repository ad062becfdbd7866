package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

const createUser = `INSERT INTO users (id, email, password, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password, display_name, created_at`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, createUser, arg.ID, arg.Email, arg.Password, arg.DisplayName).
		Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByEmail, email).
		Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const getUserByID = `SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByID, id).
		Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

type CreateProjectParams struct {
	ID      string
	Name    string
	OwnerID string
	ToolID  string
	Width   float64
	Height  float64
	DPI     float64
}

const projectColumns = `id, name, owner_id, tool_id, width, height, dpi, created_at, updated_at`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &p.ToolID, &p.Width, &p.Height, &p.DPI, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const createProject = `INSERT INTO projects (id, name, owner_id, tool_id, width, height, dpi)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + projectColumns

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	return scanProject(q.db.QueryRow(ctx, createProject,
		arg.ID, arg.Name, arg.OwnerID, arg.ToolID, arg.Width, arg.Height, arg.DPI))
}

const getProject = `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	return scanProject(q.db.QueryRow(ctx, getProject, id))
}

const listProjectsForUser = `SELECT p.id, p.name, p.owner_id, p.tool_id, p.width, p.height, p.dpi, p.created_at, p.updated_at
FROM projects p
JOIN project_members m ON m.project_id = p.id
WHERE m.user_id = $1
ORDER BY p.updated_at DESC`

func (q *Queries) ListProjectsForUser(ctx context.Context, userID string) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjectsForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const touchProject = `UPDATE projects SET updated_at = now() WHERE id = $1`

func (q *Queries) TouchProject(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, touchProject, id)
	return err
}

const deleteProject = `DELETE FROM projects WHERE id = $1`

func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteProject, id)
	return err
}

type AddProjectMemberParams struct {
	ProjectID string
	UserID    string
	Role      ProjectRole
}

const addProjectMember = `INSERT INTO project_members (project_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role`

func (q *Queries) AddProjectMember(ctx context.Context, arg AddProjectMemberParams) error {
	_, err := q.db.Exec(ctx, addProjectMember, arg.ProjectID, arg.UserID, string(arg.Role))
	return err
}

type GetProjectMemberParams struct {
	ProjectID string
	UserID    string
}

const getProjectMember = `SELECT project_id, user_id, role FROM project_members WHERE project_id = $1 AND user_id = $2`

func (q *Queries) GetProjectMember(ctx context.Context, arg GetProjectMemberParams) (ProjectMember, error) {
	var m ProjectMember
	var role string
	err := q.db.QueryRow(ctx, getProjectMember, arg.ProjectID, arg.UserID).Scan(&m.ProjectID, &m.UserID, &role)
	m.Role = ProjectRole(role)
	return m, err
}

const listProjectMembers = `SELECT m.user_id, m.role, u.display_name, u.email
FROM project_members m
JOIN users u ON u.id = m.user_id
WHERE m.project_id = $1
ORDER BY u.display_name`

func (q *Queries) ListProjectMembers(ctx context.Context, projectID string) ([]ProjectMemberRow, error) {
	rows, err := q.db.Query(ctx, listProjectMembers, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProjectMemberRow
	for rows.Next() {
		var m ProjectMemberRow
		var role string
		if err := rows.Scan(&m.UserID, &role, &m.DisplayName, &m.Email); err != nil {
			return nil, err
		}
		m.Role = ProjectRole(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

type RemoveProjectMemberParams struct {
	ProjectID string
	UserID    string
}

const removeProjectMember = `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`

func (q *Queries) RemoveProjectMember(ctx context.Context, arg RemoveProjectMemberParams) error {
	_, err := q.db.Exec(ctx, removeProjectMember, arg.ProjectID, arg.UserID)
	return err
}

type CreateSnapshotParams struct {
	ID        string
	ProjectID string
	Version   int32
	Document  []byte
}

const createSnapshot = `INSERT INTO snapshots (id, project_id, version, document)
VALUES ($1, $2, $3, $4)
RETURNING id, project_id, version, document, created_at`

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (Snapshot, error) {
	var s Snapshot
	err := q.db.QueryRow(ctx, createSnapshot, arg.ID, arg.ProjectID, arg.Version, arg.Document).
		Scan(&s.ID, &s.ProjectID, &s.Version, &s.Document, &s.CreatedAt)
	return s, err
}

const getLatestSnapshot = `SELECT id, project_id, version, document, created_at
FROM snapshots WHERE project_id = $1
ORDER BY version DESC LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context, projectID string) (Snapshot, error) {
	var s Snapshot
	err := q.db.QueryRow(ctx, getLatestSnapshot, projectID).
		Scan(&s.ID, &s.ProjectID, &s.Version, &s.Document, &s.CreatedAt)
	return s, err
}

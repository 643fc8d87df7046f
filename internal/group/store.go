// Package group persists chat-group metadata used for template selection.
package group

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/database"
	"github.com/promptarena/promptarena/internal/models"
)

const groupColumns = `id, external_id, name, type, description, member_count,
	 extra_data, custom_prompt_template, is_active, created_at, updated_at`

type Store struct {
	db database.Querier
}

func NewStore(db database.Querier) *Store {
	return &Store{db: db}
}

type CreateRequest struct {
	ExternalID           string           `json:"external_id"`
	Name                 string           `json:"name"`
	Type                 models.GroupType `json:"type"`
	Description          string           `json:"description"`
	MemberCount          int              `json:"member_count"`
	ExtraData            map[string]any   `json:"extra_data,omitempty"`
	CustomPromptTemplate string           `json:"custom_prompt_template"`
}

func (s *Store) Create(ctx context.Context, req CreateRequest) (*models.Group, error) {
	if req.ExternalID == "" {
		return nil, apperr.Validationf("external_id is required")
	}
	if req.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if req.Type == "" {
		req.Type = models.GroupCustom
	}
	if !models.ValidGroupType(req.Type) {
		return nil, apperr.Validationf("unknown group type %q", req.Type)
	}

	extraJSON, _ := json.Marshal(req.ExtraData)

	g, err := scanGroup(s.db.QueryRow(ctx,
		`INSERT INTO groups
		 (external_id, name, type, description, member_count, extra_data, custom_prompt_template)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+groupColumns,
		req.ExternalID, req.Name, req.Type, req.Description, req.MemberCount,
		extraJSON, req.CustomPromptTemplate,
	))
	if database.IsUniqueViolation(err) {
		return nil, apperr.Validationf("group with external_id %q already exists", req.ExternalID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	g, err := scanGroup(s.db.QueryRow(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("group %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*models.Group, error) {
	g, err := scanGroup(s.db.QueryRow(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE external_id = $1`, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("group %q not found", externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

type ListFilter struct {
	Type       models.GroupType
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.Group, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR external_id ILIKE $%d)", len(args), len(args)))
	}
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}

	query := `SELECT ` + groupColumns + ` FROM groups`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

type UpdateRequest struct {
	Name                 *string           `json:"name,omitempty"`
	Type                 *models.GroupType `json:"type,omitempty"`
	Description          *string           `json:"description,omitempty"`
	MemberCount          *int              `json:"member_count,omitempty"`
	ExtraData            map[string]any    `json:"extra_data,omitempty"`
	CustomPromptTemplate *string           `json:"custom_prompt_template,omitempty"`
	IsActive             *bool             `json:"is_active,omitempty"`
}

func (s *Store) Update(ctx context.Context, id int64, req UpdateRequest) (*models.Group, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Type != nil {
		if !models.ValidGroupType(*req.Type) {
			return nil, apperr.Validationf("unknown group type %q", *req.Type)
		}
		set("type", *req.Type)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.MemberCount != nil {
		set("member_count", *req.MemberCount)
	}
	if req.ExtraData != nil {
		extraJSON, _ := json.Marshal(req.ExtraData)
		set("extra_data", extraJSON)
	}
	if req.CustomPromptTemplate != nil {
		set("custom_prompt_template", *req.CustomPromptTemplate)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	if len(sets) == 0 {
		return nil, apperr.Validationf("no fields to update")
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE groups SET %s, updated_at = now() WHERE id = $%d RETURNING `+groupColumns,
		strings.Join(sets, ", "), len(args))

	g, err := scanGroup(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("group %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return g, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE groups SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("group %d not found", id)
	}
	return nil
}

func scanGroup(row pgx.Row) (*models.Group, error) {
	var (
		g         models.Group
		extraJSON []byte
	)
	err := row.Scan(
		&g.ID, &g.ExternalID, &g.Name, &g.Type, &g.Description, &g.MemberCount,
		&extraJSON, &g.CustomPromptTemplate, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(extraJSON) > 0 {
		if err := json.Unmarshal(extraJSON, &g.ExtraData); err != nil {
			return nil, fmt.Errorf("decode extra_data: %w", err)
		}
	}
	return &g, nil
}

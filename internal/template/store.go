package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/cache"
	"github.com/promptarena/promptarena/internal/database"
	"github.com/promptarena/promptarena/internal/models"
)

const templateColumns = `id, name, description, group_type, time_granularity, style,
	 system_prompt, user_prompt_template, required_variables, optional_variables,
	 is_active, is_default, version, created_at, updated_at`

const templateCacheTTL = 5 * time.Minute

// Cacher is the read-through cache in front of template lookups. The Redis
// cache satisfies it in production; tests use an in-memory fake.
type Cacher interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

var _ Cacher = (*cache.Cache)(nil)

// Store persists prompt templates.
type Store struct {
	db    database.Querier
	cache Cacher
}

func NewStore(db database.Querier) *Store {
	return &Store{db: db}
}

// WithCache enables read-through caching of template lookups. Edits and
// deletes invalidate the cached entry.
func (s *Store) WithCache(c Cacher) *Store {
	s.cache = c
	return s
}

func templateCacheKey(id int64) string {
	return fmt.Sprintf("template:%d", id)
}

func (s *Store) cacheSet(ctx context.Context, t *models.PromptTemplate) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, templateCacheKey(t.ID), t, templateCacheTTL); err != nil {
		slog.Warn("template cache set failed", "template_id", t.ID, "error", err)
	}
}

func (s *Store) cacheInvalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, templateCacheKey(id)); err != nil {
		slog.Warn("template cache invalidation failed", "template_id", id, "error", err)
	}
}

type CreateRequest struct {
	Name               string                 `json:"name"`
	Description        string                 `json:"description"`
	GroupType          models.GroupType       `json:"group_type"`
	TimeGranularity    models.TimeGranularity `json:"time_granularity"`
	Style              models.PromptStyle     `json:"style"`
	SystemPrompt       string                 `json:"system_prompt"`
	UserPromptTemplate string                 `json:"user_prompt_template"`
	IsDefault          bool                   `json:"is_default"`
}

func (r CreateRequest) validate() error {
	if r.Name == "" {
		return apperr.Validationf("name is required")
	}
	if r.UserPromptTemplate == "" {
		return apperr.Validationf("user_prompt_template is required")
	}
	if !models.ValidGroupType(r.GroupType) {
		return apperr.Validationf("unknown group_type %q", r.GroupType)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, req CreateRequest) (*models.PromptTemplate, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.Style == "" {
		req.Style = models.StyleAnalytical
	}
	if req.SystemPrompt == "" {
		req.SystemPrompt = DefaultSystemPrompt
	}

	// Variables are derived from the template text, not caller-supplied.
	required, optional := classifyVariables(req.UserPromptTemplate)
	requiredJSON, _ := json.Marshal(required)
	optionalJSON, _ := json.Marshal(optional)

	row := s.db.QueryRow(ctx,
		`INSERT INTO prompt_templates
		 (name, description, group_type, time_granularity, style, system_prompt,
		  user_prompt_template, required_variables, optional_variables, is_default)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+templateColumns,
		req.Name, req.Description, req.GroupType, req.TimeGranularity, req.Style,
		req.SystemPrompt, req.UserPromptTemplate, requiredJSON, optionalJSON, req.IsDefault,
	)

	t, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.PromptTemplate, error) {
	if s.cache != nil {
		var cached models.PromptTemplate
		if err := s.cache.Get(ctx, templateCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	row := s.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM prompt_templates WHERE id = $1`, id)

	t, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("template %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	s.cacheSet(ctx, t)
	return t, nil
}

// ListFilter narrows List. Zero values mean no constraint.
type ListFilter struct {
	GroupType       models.GroupType
	TimeGranularity models.TimeGranularity
	Style           models.PromptStyle
	ActiveOnly      bool
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]models.PromptTemplate, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.GroupType != "" {
		add("group_type = $%d", f.GroupType)
	}
	if f.TimeGranularity != "" {
		add("time_granularity = $%d", f.TimeGranularity)
	}
	if f.Style != "" {
		add("style = $%d", f.Style)
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active")
	}

	query := `SELECT ` + templateColumns + ` FROM prompt_templates`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []models.PromptTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

type UpdateRequest struct {
	Name               *string `json:"name,omitempty"`
	Description        *string `json:"description,omitempty"`
	SystemPrompt       *string `json:"system_prompt,omitempty"`
	UserPromptTemplate *string `json:"user_prompt_template,omitempty"`
	IsActive           *bool   `json:"is_active,omitempty"`
	IsDefault          *bool   `json:"is_default,omitempty"`
}

// Update applies the non-nil fields. Content edits (name, description,
// prompts) bump the template version; flag toggles do not. Editing the user
// prompt re-derives the variable lists.
func (s *Store) Update(ctx context.Context, id int64, req UpdateRequest) (*models.PromptTemplate, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	contentEdit := false
	if req.Name != nil {
		set("name", *req.Name)
		contentEdit = true
	}
	if req.Description != nil {
		set("description", *req.Description)
		contentEdit = true
	}
	if req.SystemPrompt != nil {
		set("system_prompt", *req.SystemPrompt)
		contentEdit = true
	}
	if req.UserPromptTemplate != nil {
		set("user_prompt_template", *req.UserPromptTemplate)
		required, optional := classifyVariables(*req.UserPromptTemplate)
		requiredJSON, _ := json.Marshal(required)
		optionalJSON, _ := json.Marshal(optional)
		set("required_variables", requiredJSON)
		set("optional_variables", optionalJSON)
		contentEdit = true
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}
	if req.IsDefault != nil {
		set("is_default", *req.IsDefault)
	}

	if len(sets) == 0 {
		return nil, apperr.Validationf("no fields to update")
	}
	if contentEdit {
		sets = append(sets, "version = version + 1")
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE prompt_templates SET %s, updated_at = now()
		 WHERE id = $%d RETURNING `+templateColumns,
		strings.Join(sets, ", "), len(args))

	t, err := scanTemplate(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("template %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	s.cacheInvalidate(ctx, id)
	return t, nil
}

// Delete deactivates a template. Rows are kept so past executions stay
// attributable.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE prompt_templates SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("template %d not found", id)
	}

	s.cacheInvalidate(ctx, id)
	return nil
}

// classifyVariables splits a template's placeholders into required (the
// recognized analysis variables) and optional (everything else).
func classifyVariables(tmpl string) (required, optional []string) {
	recognized := map[string]bool{
		VarChatContent:      true,
		VarStartDate:        true,
		VarEndDate:          true,
		VarMemberFilterText: true,
	}
	required = []string{}
	optional = []string{}
	for _, name := range ExtractVariables(tmpl) {
		if recognized[name] {
			required = append(required, name)
		} else {
			optional = append(optional, name)
		}
	}
	return required, optional
}

func scanTemplate(row pgx.Row) (*models.PromptTemplate, error) {
	var (
		t                          models.PromptTemplate
		requiredJSON, optionalJSON []byte
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.GroupType, &t.TimeGranularity, &t.Style,
		&t.SystemPrompt, &t.UserPromptTemplate, &requiredJSON, &optionalJSON,
		&t.IsActive, &t.IsDefault, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(requiredJSON, &t.RequiredVariables); err != nil {
		return nil, fmt.Errorf("decode required_variables: %w", err)
	}
	if err := json.Unmarshal(optionalJSON, &t.OptionalVariables); err != nil {
		return nil, fmt.Errorf("decode optional_variables: %w", err)
	}
	return &t, nil
}

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mindgarden/backend/internal/models"
)

type CreateCaseParams struct {
	SubjectUserID   string
	SourceType      models.SourceType
	Severity        models.Severity
	Description     string
	TriggerEvidence models.TriggerEvidence
	Priority        int
}

// CreateCase persists a new escalation. The database assigns the id and
// timestamps; status always starts open.
func (s *Store) CreateCase(ctx context.Context, p CreateCaseParams) (models.EscalationCase, error) {
	if strings.TrimSpace(p.SubjectUserID) == "" {
		return models.EscalationCase{}, validationErr("subject_user_id is required")
	}
	if !p.SourceType.Valid() {
		return models.EscalationCase{}, validationErr("invalid source_type %q", p.SourceType)
	}
	if !p.Severity.Valid() {
		return models.EscalationCase{}, validationErr("invalid severity %q", p.Severity)
	}
	if strings.TrimSpace(p.Description) == "" {
		return models.EscalationCase{}, validationErr("description is required")
	}
	priority := p.Priority
	if priority == 0 {
		priority = 3
	}
	if priority < 1 || priority > 5 {
		return models.EscalationCase{}, validationErr("priority must be between 1 and 5")
	}

	evidence, err := json.Marshal(p.TriggerEvidence)
	if err != nil {
		return models.EscalationCase{}, err
	}

	c := models.EscalationCase{
		SubjectUserID:   p.SubjectUserID,
		SourceType:      p.SourceType,
		Severity:        p.Severity,
		TriggerEvidence: p.TriggerEvidence,
		Description:     p.Description,
		Status:          models.StatusOpen,
		Priority:        priority,
	}
	err = s.Pool.QueryRow(ctx, `
		INSERT INTO escalations (subject_user_id, source_type, severity, trigger_evidence, description, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.SubjectUserID, p.SourceType, p.Severity, evidence, p.Description, models.StatusOpen, priority).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.EscalationCase{}, err
	}
	return c, nil
}

const caseColumns = `id, subject_user_id, source_type, severity, trigger_evidence, description, status,
	assigned_to, priority, follow_up_required, follow_up_date,
	resolution_outcome, resolution_notes, resolved_by, resolved_at,
	created_at, updated_at`

func (s *Store) GetCase(ctx context.Context, id string) (models.EscalationCase, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM escalations WHERE id = $1`, id)
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.EscalationCase{}, ErrNotFound
		}
		return models.EscalationCase{}, err
	}

	actions, err := s.listActions(ctx, id)
	if err != nil {
		return models.EscalationCase{}, err
	}
	c.Actions = actions
	return c, nil
}

func (s *Store) listActions(ctx context.Context, caseID string) ([]models.Action, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT action_type, description, performed_by, performed_at, notes
		FROM escalation_actions WHERE escalation_id = $1 ORDER BY id ASC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Action
	for rows.Next() {
		var a models.Action
		if err := rows.Scan(&a.Type, &a.Description, &a.PerformedBy, &a.PerformedAt, &a.Notes); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type ListFilter struct {
	Status     models.Status
	Severity   models.Severity
	AssignedTo string
}

// ListCases returns a page of cases ordered by created_at descending, plus
// the total count for the filter. Action logs are not loaded in list view.
func (s *Store) ListCases(ctx context.Context, f ListFilter, page, pageSize int) ([]models.EscalationCase, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var args []any
	var wheres []string
	if f.Status != "" {
		args = append(args, f.Status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Severity != "" {
		args = append(args, f.Severity)
		wheres = append(wheres, fmt.Sprintf("severity = $%d", len(args)))
	}
	if f.AssignedTo != "" {
		args = append(args, f.AssignedTo)
		wheres = append(wheres, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	where := ""
	if len(wheres) > 0 {
		where = " WHERE " + strings.Join(wheres, " AND ")
	}

	var total int
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM escalations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + caseColumns + ` FROM escalations` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.EscalationCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// CaseMutation describes a single triage update. Scalar fields are
// last-writer-wins; the action append is an insert into the append-only log
// and can never be lost to a concurrent update.
type CaseMutation struct {
	Status           *models.Status
	AssignedTo       *string
	ClearAssignee    bool
	Priority         *int
	FollowUpRequired *bool
	FollowUpDate     *time.Time
	Resolution       *models.Resolution
	AppendAction     *models.Action
}

func (s *Store) UpdateCase(ctx context.Context, id string, m CaseMutation) (models.EscalationCase, error) {
	if m.Status != nil && !m.Status.Valid() {
		return models.EscalationCase{}, validationErr("invalid status %q", *m.Status)
	}
	if m.Priority != nil && (*m.Priority < 1 || *m.Priority > 5) {
		return models.EscalationCase{}, validationErr("priority must be between 1 and 5")
	}
	if m.AppendAction != nil && !m.AppendAction.Type.Valid() {
		return models.EscalationCase{}, validationErr("invalid action type %q", m.AppendAction.Type)
	}

	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		sets := []string{"updated_at = now()"}
		var args []any
		add := func(expr string, v any) {
			args = append(args, v)
			sets = append(sets, fmt.Sprintf(expr, len(args)))
		}
		if m.Status != nil {
			add("status = $%d", *m.Status)
		}
		if m.AssignedTo != nil {
			add("assigned_to = $%d", *m.AssignedTo)
		} else if m.ClearAssignee {
			sets = append(sets, "assigned_to = NULL")
		}
		if m.Priority != nil {
			add("priority = $%d", *m.Priority)
		}
		if m.FollowUpRequired != nil {
			add("follow_up_required = $%d", *m.FollowUpRequired)
		}
		if m.FollowUpDate != nil {
			add("follow_up_date = $%d", *m.FollowUpDate)
		}
		if m.Resolution != nil {
			add("resolution_outcome = $%d", m.Resolution.Outcome)
			add("resolution_notes = $%d", m.Resolution.Notes)
			add("resolved_by = $%d", m.Resolution.ResolvedBy)
			add("resolved_at = $%d", m.Resolution.ResolvedAt)
		}

		args = append(args, id)
		query := fmt.Sprintf("UPDATE escalations SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if m.AppendAction != nil {
			a := m.AppendAction
			performedAt := a.PerformedAt
			if performedAt.IsZero() {
				performedAt = time.Now().UTC()
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO escalation_actions (escalation_id, action_type, description, performed_by, performed_at, notes)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, id, a.Type, a.Description, a.PerformedBy, performedAt, a.Notes)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.EscalationCase{}, err
	}

	return s.GetCase(ctx, id)
}

func (s *Store) CountsByStatus(ctx context.Context) (map[string]int, error) {
	return s.countsBy(ctx, "status")
}

func (s *Store) CountsBySeverity(ctx context.Context) (map[string]int, error) {
	return s.countsBy(ctx, "severity")
}

func (s *Store) countsBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.Pool.Query(ctx, fmt.Sprintf(`SELECT %s, count(*) FROM escalations GROUP BY %s`, column, column))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

func scanCase(row pgx.Row) (models.EscalationCase, error) {
	var (
		c                 models.EscalationCase
		evidence          []byte
		resolutionOutcome *string
		resolutionNotes   *string
		resolvedBy        *string
		resolvedAt        *time.Time
	)
	err := row.Scan(
		&c.ID, &c.SubjectUserID, &c.SourceType, &c.Severity, &evidence, &c.Description, &c.Status,
		&c.AssignedTo, &c.Priority, &c.FollowUpRequired, &c.FollowUpDate,
		&resolutionOutcome, &resolutionNotes, &resolvedBy, &resolvedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return models.EscalationCase{}, err
	}
	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &c.TriggerEvidence); err != nil {
			return models.EscalationCase{}, err
		}
	}
	if resolutionOutcome != nil && resolvedAt != nil {
		c.Resolution = &models.Resolution{
			Outcome:    *resolutionOutcome,
			ResolvedAt: *resolvedAt,
		}
		if resolutionNotes != nil {
			c.Resolution.Notes = *resolutionNotes
		}
		if resolvedBy != nil {
			c.Resolution.ResolvedBy = *resolvedBy
		}
	}
	return c, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"health-record-sharing/internal/domain/accessrequests"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgtype"
)

type AccessRequestsRepo struct {
	db    *sql.DB
	types *pgtype.Map
}

func NewAccessRequestsRepo(db *sql.DB) *AccessRequestsRepo {
	return &AccessRequestsRepo{db: db, types: pgtype.NewMap()}
}

const accessRequestColumns = `
	id, doctor_id, patient_id, patient_health_card,
	reasons, status, created_at,
	decision_at, access_type, permissions, duration_hours`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AccessRequestsRepo) Create(ctx context.Context, ar accessrequests.AccessRequest) error {
	perms, err := permissionsToJSON(ar.Permissions)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO access_requests (`+accessRequestColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		ar.ID,
		ar.DoctorID,
		ar.PatientID,
		ar.PatientHealthCard,
		reasonsToTextArray(ar.Reasons),
		string(ar.Status),
		ar.CreatedAt,
		toNullTime(ar.DecisionAt),
		accessTypeToNull(ar.AccessType),
		perms,
		intToNull(ar.DurationHours),
	)
	return err
}

// Decide: el UPDATE condicionado a status='pending' hace atómica la transición.
func (r *AccessRequestsRepo) Decide(ctx context.Context, ar accessrequests.AccessRequest) error {
	perms, err := permissionsToJSON(ar.Permissions)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE access_requests
		SET
			status = $2,
			decision_at = $3,
			access_type = $4,
			permissions = $5,
			duration_hours = $6
		WHERE id = $1 AND status = 'pending'
	`,
		ar.ID,
		string(ar.Status),
		toNullTime(ar.DecisionAt),
		accessTypeToNull(ar.AccessType),
		perms,
		intToNull(ar.DurationHours),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 1 {
		return nil
	}

	// no existe o ya estaba decidido
	if _, err := r.GetByID(ctx, ar.ID); err != nil {
		return err
	}
	return accessrequests.ErrAlreadyDecided
}

func (r *AccessRequestsRepo) GetByID(ctx context.Context, id string) (accessrequests.AccessRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+accessRequestColumns+`
		FROM access_requests
		WHERE id = $1
	`, id)

	ar, err := r.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
		}
		return accessrequests.AccessRequest{}, err
	}
	return ar, nil
}

func (r *AccessRequestsRepo) ListByPatient(ctx context.Context, patientID string) ([]accessrequests.AccessRequest, error) {
	return r.list(ctx, "patient_id", patientID)
}

func (r *AccessRequestsRepo) ListByDoctor(ctx context.Context, doctorID string) ([]accessrequests.AccessRequest, error) {
	return r.list(ctx, "doctor_id", doctorID)
}

// column nunca viene del request; solo patient_id o doctor_id.
func (r *AccessRequestsRepo) list(ctx context.Context, column, value string) ([]accessrequests.AccessRequest, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accessRequestColumns+`
		FROM access_requests
		WHERE `+column+` = $1
		ORDER BY seq ASC
	`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]accessrequests.AccessRequest, 0)
	for rows.Next() {
		ar, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ar)
	}

	return out, rows.Err()
}

func (r *AccessRequestsRepo) scan(s rowScanner) (accessrequests.AccessRequest, error) {
	var (
		ar         accessrequests.AccessRequest
		reasons    []string
		status     string
		decisionAt sql.NullTime
		accessType sql.NullString
		perms      []byte
		duration   sql.NullInt64
	)

	if err := s.Scan(
		&ar.ID,
		&ar.DoctorID,
		&ar.PatientID,
		&ar.PatientHealthCard,
		r.types.SQLScanner(&reasons),
		&status,
		&ar.CreatedAt,
		&decisionAt,
		&accessType,
		&perms,
		&duration,
	); err != nil {
		return accessrequests.AccessRequest{}, err
	}

	ar.Reasons = reasonsFromTextArray(reasons)
	ar.Status = accessrequests.Status(status)
	ar.DecisionAt = fromNullTime(decisionAt)
	if accessType.Valid {
		t := accessrequests.AccessType(accessType.String)
		ar.AccessType = &t
	}
	if len(perms) > 0 {
		var p accessrequests.Permissions
		if err := json.Unmarshal(perms, &p); err != nil {
			return accessrequests.AccessRequest{}, fmt.Errorf("decode permissions: %w", err)
		}
		ar.Permissions = &p
	}
	if duration.Valid {
		h := int(duration.Int64)
		ar.DurationHours = &h
	}

	return ar, nil
}

// helpers
func reasonsToTextArray(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	return in
}

func reasonsFromTextArray(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	return in
}

func permissionsToJSON(p *accessrequests.Permissions) (any, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode permissions: %w", err)
	}
	return string(b), nil
}

func accessTypeToNull(t *accessrequests.AccessType) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*t), Valid: true}
}

func intToNull(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

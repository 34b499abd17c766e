package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"vms/internal/volunteering/models"
	"vms/pkg/platform/sentinel"
	"vms/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists the volunteering graph in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Organizations

const orgColumns = `id, name, url, description, contact_email, connector_endpoint,
	privacy_policy_url, member_of_dataspace, certificate_thumbprint, is_governance_authority, metadata`

func scanOrganization(row interface{ Scan(...any) error }) (*models.Organization, error) {
	var (
		o        models.Organization
		metadata []byte
	)
	err := row.Scan(&o.ID, &o.Name, &o.URL, &o.Description, &o.ContactEmail, &o.ConnectorEndpoint,
		&o.PrivacyPolicyURL, &o.MemberOfDataspace, &o.CertificateThumbprint, &o.IsGovernanceAuthority, &metadata)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &o.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal organization metadata: %w", err)
		}
	}
	return &o, nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal organization metadata: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) CreateOrganization(ctx context.Context, org *models.Organization) error {
	metadata, err := marshalMetadata(org.Metadata)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO organizations (name, url, description, contact_email, connector_endpoint,
			privacy_policy_url, member_of_dataspace, certificate_thumbprint, is_governance_authority, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = tx.Exec(ctx, s.db).QueryRowContext(ctx, query,
		org.Name, org.URL, org.Description, org.ContactEmail, org.ConnectorEndpoint,
		org.PrivacyPolicyURL, org.MemberOfDataspace, org.CertificateThumbprint, org.IsGovernanceAuthority, metadata,
	).Scan(&org.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateOrganization(ctx context.Context, org *models.Organization) error {
	metadata, err := marshalMetadata(org.Metadata)
	if err != nil {
		return err
	}
	query := `
		UPDATE organizations SET name = $2, url = $3, description = $4, contact_email = $5,
			connector_endpoint = $6, privacy_policy_url = $7, member_of_dataspace = $8,
			certificate_thumbprint = $9, is_governance_authority = $10, metadata = $11
		WHERE id = $1
	`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		org.ID, org.Name, org.URL, org.Description, org.ContactEmail, org.ConnectorEndpoint,
		org.PrivacyPolicyURL, org.MemberOfDataspace, org.CertificateThumbprint, org.IsGovernanceAuthority, metadata,
	)
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	return requireAffected(res, "update organization")
}

func (s *PostgresStore) FindOrganizationByID(ctx context.Context, id int64) (*models.Organization, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)
	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find organization by id: %w", err)
	}
	return org, nil
}

func (s *PostgresStore) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE name = $1`, name)
	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find organization by name: %w", err)
	}
	return org, nil
}

func (s *PostgresStore) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, `SELECT `+orgColumns+` FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()
	var out []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

// Skills

func (s *PostgresStore) FindOrCreateSkill(ctx context.Context, name, escoURI string) (*models.Skill, error) {
	query := `
		INSERT INTO skills (name, esco_uri) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
			SET esco_uri = CASE WHEN skills.esco_uri = '' THEN EXCLUDED.esco_uri ELSE skills.esco_uri END
		RETURNING id, name, esco_uri
	`
	var sk models.Skill
	if err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query, name, escoURI).Scan(&sk.ID, &sk.Name, &sk.EscoURI); err != nil {
		return nil, fmt.Errorf("find or create skill: %w", err)
	}
	return &sk, nil
}

func (s *PostgresStore) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, `SELECT id, name, esco_uri FROM skills ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()
	var out []*models.Skill
	for rows.Next() {
		var sk models.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.EscoURI); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		out = append(out, &sk)
	}
	return out, rows.Err()
}

// Volunteers

func (s *PostgresStore) CreateVolunteer(ctx context.Context, v *models.Volunteer) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		query := `
			INSERT INTO volunteers (name, password_hash, location, organization_id, is_manager)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query,
			v.Name, v.PasswordHash, v.Location, nullableID(v.OrganizationID), v.IsManager,
		).Scan(&v.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("create volunteer: %w", err)
		}
		return s.replaceSkills(ctx, "volunteer_skills", "volunteer_id", v.ID, v.Skills)
	})
}

func (s *PostgresStore) UpdateVolunteer(ctx context.Context, v *models.Volunteer) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		query := `
			UPDATE volunteers SET name = $2, password_hash = $3, location = $4, organization_id = $5, is_manager = $6
			WHERE id = $1
		`
		res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
			v.ID, v.Name, v.PasswordHash, v.Location, nullableID(v.OrganizationID), v.IsManager,
		)
		if err != nil {
			return fmt.Errorf("update volunteer: %w", err)
		}
		if err := requireAffected(res, "update volunteer"); err != nil {
			return err
		}
		return s.replaceSkills(ctx, "volunteer_skills", "volunteer_id", v.ID, v.Skills)
	})
}

func (s *PostgresStore) FindVolunteerByID(ctx context.Context, id int64) (*models.Volunteer, error) {
	return s.findVolunteer(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindVolunteerByName(ctx context.Context, name string) (*models.Volunteer, error) {
	return s.findVolunteer(ctx, `WHERE name = $1`, name)
}

func (s *PostgresStore) findVolunteer(ctx context.Context, where string, arg any) (*models.Volunteer, error) {
	var (
		v     models.Volunteer
		orgID sql.NullInt64
	)
	query := `SELECT id, name, password_hash, location, organization_id, is_manager FROM volunteers ` + where
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query, arg).Scan(&v.ID, &v.Name, &v.PasswordHash, &v.Location, &orgID, &v.IsManager)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find volunteer: %w", err)
	}
	v.OrganizationID = orgID.Int64
	skills, err := s.loadSkills(ctx, "volunteer_skills", "volunteer_id", []int64{v.ID})
	if err != nil {
		return nil, err
	}
	v.Skills = skills[v.ID]
	return &v, nil
}

// Events

const eventColumns = `id, name, description, location, duration_hours, organization_id,
	is_finished, is_shared, prioritize_local, image_url, created_at,
	shared_since, endpoint, asset_id, contract_id`

func (s *PostgresStore) CreateEvent(ctx context.Context, e *models.Event) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		query := `
			INSERT INTO events (name, description, location, duration_hours, organization_id,
				is_finished, is_shared, prioritize_local, image_url, created_at,
				shared_since, endpoint, asset_id, contract_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id
		`
		err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query,
			e.Name, e.Description, e.Location, e.DurationHours, e.OrganizationID,
			e.IsFinished, e.IsShared, e.PrioritizeLocal, e.ImageURL, e.CreatedAt,
			nullableTime(e.SharedSince), e.Endpoint, e.AssetID, e.ContractID,
		).Scan(&e.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("create event: %w", err)
		}
		return s.replaceSkills(ctx, "event_skills", "event_id", e.ID, e.Skills)
	})
}

func (s *PostgresStore) UpdateEvent(ctx context.Context, e *models.Event) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		query := `
			UPDATE events SET name = $2, description = $3, location = $4, duration_hours = $5,
				is_finished = $6, is_shared = $7, prioritize_local = $8, image_url = $9,
				shared_since = $10, endpoint = $11, asset_id = $12, contract_id = $13
			WHERE id = $1
		`
		res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
			e.ID, e.Name, e.Description, e.Location, e.DurationHours,
			e.IsFinished, e.IsShared, e.PrioritizeLocal, e.ImageURL,
			nullableTime(e.SharedSince), e.Endpoint, e.AssetID, e.ContractID,
		)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if err := requireAffected(res, "update event"); err != nil {
			return err
		}
		return s.replaceSkills(ctx, "event_skills", "event_id", e.ID, e.Skills)
	})
}

func (s *PostgresStore) FindEventByID(ctx context.Context, id int64) (*models.Event, error) {
	events, err := s.queryEvents(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return events[0], nil
}

func (s *PostgresStore) ListEventsByOrganization(ctx context.Context, orgID int64) ([]*models.Event, error) {
	return s.queryEvents(ctx, `WHERE organization_id = $1 ORDER BY id`, orgID)
}

func (s *PostgresStore) ListSharedEvents(ctx context.Context) ([]*models.Event, error) {
	return s.queryEvents(ctx, `WHERE is_shared ORDER BY id`)
}

func (s *PostgresStore) ListEventsByIDs(ctx context.Context, ids []int64) ([]*models.Event, error) {
	return s.queryEvents(ctx, `WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
}

func (s *PostgresStore) queryEvents(ctx context.Context, where string, args ...any) ([]*models.Event, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, `SELECT `+eventColumns+` FROM events `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var (
		out []*models.Event
		ids []int64
	)
	for rows.Next() {
		var (
			e           models.Event
			sharedSince sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.DurationHours, &e.OrganizationID,
			&e.IsFinished, &e.IsShared, &e.PrioritizeLocal, &e.ImageURL, &e.CreatedAt,
			&sharedSince, &e.Endpoint, &e.AssetID, &e.ContractID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if sharedSince.Valid {
			t := sharedSince.Time
			e.SharedSince = &t
		}
		out = append(out, &e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}
	skills, err := s.loadSkills(ctx, "event_skills", "event_id", ids)
	if err != nil {
		return nil, err
	}
	for _, e := range out {
		e.Skills = skills[e.ID]
	}
	return out, nil
}

// Registrations

func (s *PostgresStore) AddRegistration(ctx context.Context, volunteerID, eventID int64) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`INSERT INTO registrations (volunteer_id, event_id) VALUES ($1, $2)`, volunteerID, eventID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("add registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveRegistration(ctx context.Context, volunteerID, eventID int64) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM registrations WHERE volunteer_id = $1 AND event_id = $2`, volunteerID, eventID)
	if err != nil {
		return fmt.Errorf("remove registration: %w", err)
	}
	return requireAffected(res, "remove registration")
}

func (s *PostgresStore) ListRegisteredEventIDs(ctx context.Context, volunteerID int64) ([]int64, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT event_id FROM registrations WHERE volunteer_id = $1 ORDER BY event_id`, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Certificates

func (s *PostgresStore) CreateCertificate(ctx context.Context, c *models.Certificate) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("marshal certificate items: %w", err)
	}
	query := `
		INSERT INTO certificates (volunteer_id, issuer_org_id, items, total_hours, proof_hash, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		err := tx.Exec(ctx, s.db).QueryRowContext(ctx, query,
			c.VolunteerID, nullableID(c.IssuerOrgID), items, c.TotalHours, c.ProofHash, c.IssuedAt,
		).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("create certificate: %w", err)
		}
		return s.replaceSkills(ctx, "certificate_skills", "certificate_id", c.ID, c.Skills)
	})
}

func (s *PostgresStore) ListCertificatesByVolunteer(ctx context.Context, volunteerID int64) ([]*models.Certificate, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT id, volunteer_id, issuer_org_id, items, total_hours, proof_hash, issued_at
		FROM certificates WHERE volunteer_id = $1 ORDER BY id`, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()
	var (
		out []*models.Certificate
		ids []int64
	)
	for rows.Next() {
		var (
			c      models.Certificate
			issuer sql.NullInt64
			items  []byte
		)
		if err := rows.Scan(&c.ID, &c.VolunteerID, &issuer, &items, &c.TotalHours, &c.ProofHash, &c.IssuedAt); err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		c.IssuerOrgID = issuer.Int64
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return nil, fmt.Errorf("unmarshal certificate items: %w", err)
		}
		out = append(out, &c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}
	skills, err := s.loadSkills(ctx, "certificate_skills", "certificate_id", ids)
	if err != nil {
		return nil, err
	}
	for _, c := range out {
		c.Skills = skills[c.ID]
	}
	return out, nil
}

// skill association helpers; table and column names are package constants only.

func (s *PostgresStore) replaceSkills(ctx context.Context, table, ownerColumn string, ownerID int64, skills []models.Skill) error {
	exec := tx.Exec(ctx, s.db)
	if _, err := exec.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+ownerColumn+` = $1`, ownerID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for i, sk := range skills {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO `+table+` (`+ownerColumn+`, skill_id, position) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			ownerID, sk.ID, i)
		if err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func (s *PostgresStore) loadSkills(ctx context.Context, table, ownerColumn string, ownerIDs []int64) (map[int64][]models.Skill, error) {
	query := `
		SELECT t.` + ownerColumn + `, s.id, s.name, s.esco_uri
		FROM ` + table + ` t JOIN skills s ON s.id = t.skill_id
		WHERE t.` + ownerColumn + ` = ANY($1)
		ORDER BY t.` + ownerColumn + `, t.position
	`
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, pq.Array(ownerIDs))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()
	out := make(map[int64][]models.Skill, len(ownerIDs))
	for rows.Next() {
		var (
			owner int64
			sk    models.Skill
		)
		if err := rows.Scan(&owner, &sk.ID, &sk.Name, &sk.EscoURI); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out[owner] = append(out[owner], sk)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

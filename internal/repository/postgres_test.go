package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/proofpost-systems/proofpost/internal/models"
)

// setupTestDatabase creates a PostgreSQL testcontainer and runs migrations.
func setupTestDatabase(t *testing.T) (*PostgresRepository, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("proofpost_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := runMigrations(connStr); err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	repo, err := NewPostgresRepository(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create repository: %v", err)
	}

	cleanup := func() {
		repo.pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return repo, cleanup
}

func runMigrations(connStr string) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	migrationPath := filepath.Join("..", "..", "migrations", "001_init.up.sql")
	migrationSQL, err := os.ReadFile(migrationPath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	if _, err := db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	return nil
}

func TestPostgresDeliveryRoundtrip(t *testing.T) {
	repo, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	d := &models.Delivery{
		ID:          "DD-PGTEST-000001",
		DocumentRef: "doc-1",
		Sender:      "ops@example.com",
		Recipient:   "Alice",
		Method:      models.MethodEmail,
		Address:     "alice@example.com",
		Proof:       models.Proof{Pillar: "proof_of_delivery", Score: 21},
		CreatedAt:   now,
	}
	d.AppendStatus(models.StatusPending, now, "tester")
	d.AppendStatus(models.StatusSent, now, "tester")

	if err := repo.SaveDelivery(ctx, d); err != nil {
		t.Fatalf("SaveDelivery: %v", err)
	}

	got, err := repo.GetDelivery(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDelivery: %v", err)
	}
	if got.Status != models.StatusSent {
		t.Errorf("status = %s, want SENT", got.Status)
	}
	if len(got.StatusHistory) != 2 {
		t.Errorf("history length = %d, want 2", len(got.StatusHistory))
	}
	if got.Proof.Score != 21 {
		t.Errorf("score = %d, want 21", got.Proof.Score)
	}

	// Upsert replaces the stored snapshot.
	d.AppendStatus(models.StatusDelivered, time.Now().UTC(), "gateway")
	if err := repo.SaveDelivery(ctx, d); err != nil {
		t.Fatalf("SaveDelivery upsert: %v", err)
	}
	got, _ = repo.GetDelivery(ctx, d.ID)
	if got.Status != models.StatusDelivered {
		t.Errorf("status after upsert = %s, want DELIVERED", got.Status)
	}

	if _, err := repo.GetDelivery(ctx, "DD-MISSING"); !errors.Is(err, ErrDeliveryNotFound) {
		t.Errorf("error = %v, want ErrDeliveryNotFound", err)
	}
}

func TestPostgresReceiptRoundtrip(t *testing.T) {
	repo, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	rec := &models.Receipt{
		ID:         "DR-PGTEST-000001",
		DeliveryID: "DD-PGTEST-000001",
		Signer:     "alice@example.com",
		Method:     models.ReceiptDigital,
		Timestamp:  time.Now().UTC(),
		Signature: &models.SignatureBlock{
			Algorithm:     models.SignatureAlgorithm,
			Value:         "c2ln",
			PublicKey:     "a2V5",
			SignedPayload: "cGF5bG9hZA",
			Valid:         true,
		},
		Status:    models.ReceiptStatusValid,
		Proof:     models.ReceiptProof{Pillar: "proof_of_receipt", Admissibility: 90, Technical: 95, Arguable: 85},
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.SaveReceipt(ctx, rec); err != nil {
		t.Fatalf("SaveReceipt: %v", err)
	}

	got, err := repo.GetReceipt(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetReceipt: %v", err)
	}
	if got.Signature == nil || got.Signature.Value != "c2ln" {
		t.Errorf("signature block did not survive the roundtrip: %+v", got.Signature)
	}

	if _, err := repo.GetReceipt(ctx, "DR-MISSING"); !errors.Is(err, ErrReceiptNotFound) {
		t.Errorf("error = %v, want ErrReceiptNotFound", err)
	}
}

func TestPostgresServiceCaseAndAffidavit(t *testing.T) {
	repo, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now().UTC()
	c := &models.ServiceCase{
		ID:          "DS-PGTEST-000001",
		DocumentRef: "doc-1",
		Respondent:  "John Doe",
		ServiceType: models.ServicePersonal,
		MaxAttempts: 3,
		CreatedAt:   now,
	}
	c.AppendStatus(models.ServiceInitiated, now, "clerk")

	if err := repo.SaveServiceCase(ctx, c); err != nil {
		t.Fatalf("SaveServiceCase: %v", err)
	}
	got, err := repo.GetServiceCase(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetServiceCase: %v", err)
	}
	if got.ServiceType != models.ServicePersonal {
		t.Errorf("serviceType = %s, want personal", got.ServiceType)
	}

	aff := &models.Affidavit{
		ID:            "DA-PGTEST-000001",
		ServiceCaseID: c.ID,
		ProcessServer: "server-7",
		ServiceType:   models.ServicePersonal,
		ServedPerson:  "John Doe",
		Scores:        models.AffidavitScores{Admissibility: 95, Technical: 90, Arguable: 92},
		Status:        models.AffidavitStatusFiled,
		FiledAt:       now,
	}
	if err := repo.SaveAffidavit(ctx, aff); err != nil {
		t.Fatalf("SaveAffidavit: %v", err)
	}

	gotAff, err := repo.GetAffidavitByCase(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetAffidavitByCase: %v", err)
	}
	if gotAff.Scores.Admissibility != 95 {
		t.Errorf("admissibility = %d, want 95", gotAff.Scores.Admissibility)
	}

	if _, err := repo.GetAffidavitByCase(ctx, "DS-MISSING"); !errors.Is(err, ErrAffidavitNotFound) {
		t.Errorf("error = %v, want ErrAffidavitNotFound", err)
	}
}

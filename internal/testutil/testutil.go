package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"livepoll/internal/domain/poll"
	"livepoll/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB creates a fresh in-memory database with the full schema.
// A single connection keeps sqlite from returning busy errors under the
// concurrency tests; goroutines still interleave between queries, so the
// application-level races stay exercisable.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get generic database object: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&poll.Poll{}, &poll.Option{}, &poll.VoteRecord{}); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// NewTestLogger returns a logger that discards everything
func NewTestLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// CreateTestPoll persists a poll with the given option texts and returns it
func CreateTestPoll(t *testing.T, db *gorm.DB, question string, optionTexts ...string) poll.Poll {
	t.Helper()

	p := poll.Poll{
		ID:        uuid.New(),
		Question:  question,
		CreatedAt: time.Now(),
	}
	for i, text := range optionTexts {
		p.Options = append(p.Options, poll.Option{
			ID:       uuid.New(),
			PollID:   p.ID,
			Text:     text,
			Position: i,
		})
	}

	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return p
}

// CreateTestVote inserts a ledger entry directly, bypassing admission
func CreateTestVote(t *testing.T, db *gorm.DB, pollID, optionID uuid.UUID, originFingerprint, clientToken string) poll.VoteRecord {
	t.Helper()

	v := poll.VoteRecord{
		ID:                uuid.New(),
		PollID:            pollID,
		OptionID:          optionID,
		OriginFingerprint: originFingerprint,
		ClientToken:       clientToken,
		CreatedAt:         time.Now(),
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
	return v
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// DecodeJSON decodes the response body into the provided struct
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

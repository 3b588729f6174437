// Package testing provides test utilities and database setup for testing the conflict engine
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password every fixture user is created with.
const TestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active user with a bcrypt-hashed password
func (tf *TestFixtures) CreateTestUser() (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        fmt.Sprintf("creator.%d@example.com", rand.Intn(100000000)),
		PasswordHash: string(hashedPassword),
		DisplayName:  "Test Creator",
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestBrand creates a brand owned by the given user
func (tf *TestFixtures) CreateTestBrand(userID uint) (*models.Brand, error) {
	brand := &models.Brand{
		UserID: userID,
		Name:   fmt.Sprintf("Brand %d", rand.Intn(100000)),
	}

	if err := tf.DB.DB.Create(brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create test brand: %w", err)
	}

	return brand, nil
}

// CreateTestDeal creates a deal in the given status, with a fresh brand when brandID is zero
func (tf *TestFixtures) CreateTestDeal(userID uint, brandID uint, status models.DealStatus) (*models.Deal, error) {
	if brandID == 0 {
		brand, err := tf.CreateTestBrand(userID)
		if err != nil {
			return nil, err
		}
		brandID = brand.ID
	}

	deal := &models.Deal{
		UserID:   userID,
		BrandID:  brandID,
		Title:    fmt.Sprintf("Deal %d", rand.Intn(100000)),
		Amount:   decimal.NewFromInt(int64(rand.Intn(9000) + 1000)),
		Currency: "USD",
		Status:   status,
	}

	if err := tf.DB.DB.Create(deal).Error; err != nil {
		return nil, fmt.Errorf("failed to create test deal: %w", err)
	}

	return deal, nil
}

// CreateTestRule attaches an exclusivity rule to a deal. Dates are stored at
// day granularity the way the rule editor writes them.
func (tf *TestFixtures) CreateTestRule(dealID uint, categoryPath string, scope models.RuleScope, start, end time.Time) (*models.ExclusivityRule, error) {
	rule := &models.ExclusivityRule{
		DealID:       dealID,
		CategoryPath: categoryPath,
		Scope:        scope,
		StartDate:    start.UTC().Truncate(24 * time.Hour),
		EndDate:      end.UTC().Truncate(24 * time.Hour),
		Platforms:    []string{models.PlatformInstagram, models.PlatformYouTube},
		Regions:      []string{models.RegionGlobal},
	}

	if err := tf.DB.DB.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test rule: %w", err)
	}

	return rule, nil
}

// CreateTestDeliverable creates a planned deliverable on the given deal
func (tf *TestFixtures) CreateTestDeliverable(dealID uint, category *string, scheduledAt *time.Time) (*models.Deliverable, error) {
	deliverable := &models.Deliverable{
		DealID:      dealID,
		Title:       fmt.Sprintf("Deliverable %d", rand.Intn(100000)),
		Category:    category,
		Platform:    models.PlatformInstagram,
		ScheduledAt: scheduledAt,
		Status:      models.DeliverableStatusPlanned,
	}

	if err := tf.DB.DB.Create(deliverable).Error; err != nil {
		return nil, fmt.Errorf("failed to create test deliverable: %w", err)
	}

	return deliverable, nil
}

// CreateTestConflict creates an active exclusivity conflict tied to a deal and rule
func (tf *TestFixtures) CreateTestConflict(dealID uint, ruleID *uint, severity models.ConflictSeverity) (*models.Conflict, error) {
	now := utils.UTCNow()
	var overlapRuleID uint
	if ruleID != nil {
		overlapRuleID = *ruleID
	}
	conflict := &models.Conflict{
		Type:     models.ConflictTypeExclusivity,
		Severity: severity,
		Overlap: models.ConflictOverlap{
			Version:           models.ConflictOverlapVersion,
			RuleID:            overlapRuleID,
			RulePath:          "Food & Beverage/Energy Drinks",
			CandidateCategory: "Food & Beverage/Energy Drinks",
			CategoryRelation:  models.CategoryRelationExact,
			Platform:          models.PlatformInstagram,
			WindowStart:       now.AddDate(0, 0, -7),
			WindowEnd:         now.AddDate(0, 0, 7),
			ScheduledAt:       now,
			DetectedAt:        now,
		},
		SuggestedResolutions: []string{"reschedule", "change_category"},
		ConflictingRuleID:    ruleID,
		DeliverableUUID:      uuid.New(),
		DealID:               dealID,
		DetectedAt:           now,
	}

	if err := tf.DB.DB.Create(conflict).Error; err != nil {
		return nil, fmt.Errorf("failed to create test conflict: %w", err)
	}

	return conflict, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(userID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}

package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/openunited/platform/internal/fee/domain"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName       = "Main"
	defaultOrgCountry    = "US"
	defaultFeePercentage = 10
)

// EnsureMainOrg seeds the default organisation for startup bootstrap.
func EnsureMainOrg(db *gorm.DB, feePercent int64) error {
	return ensureMainOrg(db, 0, feePercent)
}

// EnsureMainOrgWithID seeds the default organisation with a fixed ID so
// self-hosted installs keep stable references across re-deploys.
func EnsureMainOrgWithID(db *gorm.DB, orgID int64, feePercent int64) error {
	return ensureMainOrg(db, snowflake.ID(orgID), feePercent)
}

func ensureMainOrg(db *gorm.DB, orgID snowflake.ID, feePercent int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node, orgID)
		if err != nil {
			return err
		}
		if err := ensurePointAccountTx(ctx, tx, node, org.ID); err != nil {
			return err
		}
		return ensureFeeConfigurationTx(ctx, tx, node, feePercent)
	})
}

func ensureMainOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) (*orgdomain.Organisation, error) {
	var org orgdomain.Organisation
	err := tx.WithContext(ctx).Where("name = ?", defaultOrgName).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if orgID == 0 {
		orgID = node.Generate()
	}
	now := time.Now().UTC()
	org = orgdomain.Organisation{
		ID:        orgID,
		Name:      defaultOrgName,
		Country:   defaultOrgCountry,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensurePointAccountTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	var account ledgerdomain.OrganisationPointAccount
	err := tx.WithContext(ctx).Where("organisation_id = ?", orgID).First(&account).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	account = ledgerdomain.OrganisationPointAccount{
		ID:             node.Generate(),
		OrganisationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return tx.WithContext(ctx).Create(&account).Error
}

func ensureFeeConfigurationTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, feePercent int64) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&feedomain.PlatformFeeConfiguration{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if feePercent < 1 || feePercent > 100 {
		feePercent = defaultFeePercentage
	}
	now := time.Now().UTC()
	cfg := feedomain.PlatformFeeConfiguration{
		ID:          node.Generate(),
		Percentage:  feePercent,
		AppliesFrom: now,
		CreatedAt:   now,
	}
	return tx.WithContext(ctx).Create(&cfg).Error
}

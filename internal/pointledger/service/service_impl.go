package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/openunited/platform/internal/audit/domain"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     ledgerdomain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     ledgerdomain.Repository
	auditSvc auditdomain.Service
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("pointledger.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

// inTx runs fn inside tx when provided, otherwise inside a fresh transaction.
func (s *Service) inTx(ctx context.Context, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *Service) EnsureOrgAccount(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*ledgerdomain.OrganisationPointAccount, error) {
	if orgID == 0 {
		return nil, ledgerdomain.ErrInvalidOrganisation
	}
	account, err := s.repo.FindOrgAccount(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	now := time.Now().UTC()
	account = &ledgerdomain.OrganisationPointAccount{
		ID:             s.genID.Generate(),
		OrganisationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateOrgAccount(ctx, tx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) EnsureProductAccount(ctx context.Context, tx *gorm.DB, productID snowflake.ID) (*ledgerdomain.ProductPointAccount, error) {
	if productID == 0 {
		return nil, ledgerdomain.ErrInvalidProduct
	}
	account, err := s.repo.FindProductAccount(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	now := time.Now().UTC()
	account = &ledgerdomain.ProductPointAccount{
		ID:        s.genID.Generate(),
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateProductAccount(ctx, tx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) AddOrgPoints(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, amount int64, txType ledgerdomain.TransactionType, description string) error {
	if amount <= 0 {
		return ledgerdomain.ErrInvalidAmount
	}
	return s.inTx(ctx, tx, func(tx *gorm.DB) error {
		account, err := s.EnsureOrgAccount(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateOrgBalance(ctx, tx, account.ID, account.Balance+amount); err != nil {
			return err
		}
		return s.appendTransaction(ctx, tx, &ledgerdomain.PointTransaction{
			OrgAccountID: &account.ID,
			Amount:       amount,
			Type:         txType,
			Description:  description,
		})
	})
}

func (s *Service) AddProductPoints(ctx context.Context, tx *gorm.DB, productID snowflake.ID, amount int64, txType ledgerdomain.TransactionType, description string) error {
	if amount <= 0 {
		return ledgerdomain.ErrInvalidAmount
	}
	return s.inTx(ctx, tx, func(tx *gorm.DB) error {
		account, err := s.EnsureProductAccount(ctx, tx, productID)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateProductBalance(ctx, tx, account.ID, account.Balance+amount); err != nil {
			return err
		}
		return s.appendTransaction(ctx, tx, &ledgerdomain.PointTransaction{
			ProductAccountID: &account.ID,
			Amount:           amount,
			Type:             txType,
			Description:      description,
		})
	})
}

func (s *Service) UseOrgPoints(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, amount int64, description string) (bool, error) {
	if amount <= 0 {
		return false, ledgerdomain.ErrInvalidAmount
	}

	used := false
	err := s.inTx(ctx, tx, func(tx *gorm.DB) error {
		account, err := s.EnsureOrgAccount(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if account.Balance < amount {
			return nil
		}
		if err := s.repo.UpdateOrgBalance(ctx, tx, account.ID, account.Balance-amount); err != nil {
			return err
		}
		if err := s.appendTransaction(ctx, tx, &ledgerdomain.PointTransaction{
			OrgAccountID: &account.ID,
			Amount:       amount,
			Type:         ledgerdomain.TransactionUse,
			Description:  description,
		}); err != nil {
			return err
		}
		used = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return used, nil
}

func (s *Service) UseProductPoints(ctx context.Context, tx *gorm.DB, productID snowflake.ID, amount int64, description string) (bool, error) {
	if amount <= 0 {
		return false, ledgerdomain.ErrInvalidAmount
	}

	used := false
	err := s.inTx(ctx, tx, func(tx *gorm.DB) error {
		account, err := s.EnsureProductAccount(ctx, tx, productID)
		if err != nil {
			return err
		}
		if account.Balance < amount {
			return nil
		}
		if err := s.repo.UpdateProductBalance(ctx, tx, account.ID, account.Balance-amount); err != nil {
			return err
		}
		if err := s.appendTransaction(ctx, tx, &ledgerdomain.PointTransaction{
			ProductAccountID: &account.ID,
			Amount:           amount,
			Type:             ledgerdomain.TransactionUse,
			Description:      description,
		}); err != nil {
			return err
		}
		used = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return used, nil
}

func (s *Service) TransferToProduct(ctx context.Context, tx *gorm.DB, orgID, productID snowflake.ID, amount int64, description string) (bool, error) {
	if amount <= 0 {
		return false, ledgerdomain.ErrInvalidAmount
	}

	transferred := false
	err := s.inTx(ctx, tx, func(tx *gorm.DB) error {
		orgAccount, err := s.EnsureOrgAccount(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if orgAccount.Balance < amount {
			return nil
		}
		productAccount, err := s.EnsureProductAccount(ctx, tx, productID)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateOrgBalance(ctx, tx, orgAccount.ID, orgAccount.Balance-amount); err != nil {
			return err
		}
		if err := s.repo.UpdateProductBalance(ctx, tx, productAccount.ID, productAccount.Balance+amount); err != nil {
			return err
		}
		if err := s.appendTransaction(ctx, tx, &ledgerdomain.PointTransaction{
			OrgAccountID: &orgAccount.ID,
			Amount:       amount,
			Type:         ledgerdomain.TransactionUse,
			Description:  description,
		}); err != nil {
			return err
		}
		if err := s.appendTransaction(ctx, tx, &ledgerdomain.PointTransaction{
			ProductAccountID: &productAccount.ID,
			Amount:           amount,
			Type:             ledgerdomain.TransactionTransfer,
			Description:      description,
		}); err != nil {
			return err
		}
		transferred = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if transferred {
		s.audit(ctx, orgID, "pointledger.transfer", "product", productID.String(), map[string]any{
			"amount": amount,
		})
	}
	return transferred, nil
}

func (s *Service) RefundTransfer(ctx context.Context, tx *gorm.DB, orgID, productID snowflake.ID, amount int64, description string) (bool, error) {
	if amount <= 0 {
		return false, ledgerdomain.ErrInvalidAmount
	}

	refunded := false
	err := s.inTx(ctx, tx, func(tx *gorm.DB) error {
		productAccount, err := s.EnsureProductAccount(ctx, tx, productID)
		if err != nil {
			return err
		}
		if productAccount.Balance < amount {
			return nil
		}
		orgAccount, err := s.EnsureOrgAccount(ctx, tx, orgID)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateProductBalance(ctx, tx, productAccount.ID, productAccount.Balance-amount); err != nil {
			return err
		}
		if err := s.repo.UpdateOrgBalance(ctx, tx, orgAccount.ID, orgAccount.Balance+amount); err != nil {
			return err
		}
		if err := s.appendTransaction(ctx, tx, &ledgerdomain.PointTransaction{
			ProductAccountID: &productAccount.ID,
			Amount:           amount,
			Type:             ledgerdomain.TransactionRefund,
			Description:      description,
		}); err != nil {
			return err
		}
		if err := s.appendTransaction(ctx, tx, &ledgerdomain.PointTransaction{
			OrgAccountID: &orgAccount.ID,
			Amount:       amount,
			Type:         ledgerdomain.TransactionRefund,
			Description:  description,
		}); err != nil {
			return err
		}
		refunded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if refunded {
		s.audit(ctx, orgID, "pointledger.refund_transfer", "product", productID.String(), map[string]any{
			"amount": amount,
		})
	}
	return refunded, nil
}

func (s *Service) Grant(ctx context.Context, orgID snowflake.ID, amount int64, grantedBy snowflake.ID, rationale string) (*ledgerdomain.OrganisationPointGrant, error) {
	if amount <= 0 {
		return nil, ledgerdomain.ErrInvalidAmount
	}
	if orgID == 0 {
		return nil, ledgerdomain.ErrInvalidOrganisation
	}

	grant := &ledgerdomain.OrganisationPointGrant{
		ID:             s.genID.Generate(),
		OrganisationID: orgID,
		Amount:         amount,
		GrantedByID:    grantedBy,
		Rationale:      rationale,
		CreatedAt:      time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateGrant(ctx, tx, grant); err != nil {
			return err
		}
		return s.AddOrgPoints(ctx, tx, orgID, amount, ledgerdomain.TransactionGrant, fmt.Sprintf("Grant: %s", rationale))
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, orgID, "pointledger.grant", "organisation", orgID.String(), map[string]any{
		"amount":     amount,
		"granted_by": grantedBy.String(),
	})
	return grant, nil
}

func (s *Service) OrgBalance(ctx context.Context, orgID snowflake.ID) (int64, error) {
	account, err := s.repo.FindOrgAccount(ctx, nil, orgID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, nil
	}
	return account.Balance, nil
}

func (s *Service) ProductBalance(ctx context.Context, productID snowflake.ID) (int64, error) {
	account, err := s.repo.FindProductAccount(ctx, nil, productID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, nil
	}
	return account.Balance, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter ledgerdomain.TransactionFilter) ([]ledgerdomain.PointTransaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) appendTransaction(ctx context.Context, tx *gorm.DB, row *ledgerdomain.PointTransaction) error {
	row.ID = s.genID.Generate()
	row.CreatedAt = time.Now().UTC()
	if err := row.Validate(); err != nil {
		return err
	}
	return s.repo.CreateTransaction(ctx, tx, row)
}

// audit is best effort: a failed audit write never fails the ledger mutation.
func (s *Service) audit(ctx context.Context, orgID snowflake.ID, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, &orgID, action, targetType, &targetID, metadata); err != nil {
		s.log.Warn("failed to write ledger audit log", zap.Error(err))
	}
}

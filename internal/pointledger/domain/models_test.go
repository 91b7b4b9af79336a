package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestPointTransactionValidate(t *testing.T) {
	orgAccount := snowflake.ID(1)
	productAccount := snowflake.ID(2)

	tests := []struct {
		name    string
		row     PointTransaction
		wantErr error
	}{
		{
			name:    "valid org row",
			row:     PointTransaction{OrgAccountID: &orgAccount, Amount: 10, Type: TransactionGrant},
			wantErr: nil,
		},
		{
			name:    "valid product row",
			row:     PointTransaction{ProductAccountID: &productAccount, Amount: 10, Type: TransactionTransfer},
			wantErr: nil,
		},
		{
			name:    "zero amount",
			row:     PointTransaction{OrgAccountID: &orgAccount, Amount: 0, Type: TransactionUse},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			row:     PointTransaction{OrgAccountID: &orgAccount, Amount: -5, Type: TransactionUse},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown type",
			row:     PointTransaction{OrgAccountID: &orgAccount, Amount: 10, Type: "BONUS"},
			wantErr: ErrInvalidTransactionType,
		},
		{
			name:    "both accounts set",
			row:     PointTransaction{OrgAccountID: &orgAccount, ProductAccountID: &productAccount, Amount: 10, Type: TransactionUse},
			wantErr: ErrAmbiguousAccount,
		},
		{
			name:    "no account set",
			row:     PointTransaction{Amount: 10, Type: TransactionUse},
			wantErr: ErrAmbiguousAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.row.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

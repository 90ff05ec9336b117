package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_Validate(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "Asset category should pass",
			category: Category{Name: "Cash (easy access)", Type: CategoryTypeAsset},
			wantErr:  false,
		},
		{
			name:     "Empty name should fail",
			category: Category{Name: "  ", Type: CategoryTypeAsset},
			wantErr:  true,
			errMsg:   "category name cannot be empty",
		},
		{
			name:     "Unknown type should fail",
			category: Category{Name: "Stocks", Type: "equity"},
			wantErr:  true,
			errMsg:   "category type must be asset or liability",
		},
		{
			name:     "Option liability should fail",
			category: Category{Name: "Options", Type: CategoryTypeLiability, IsOption: true},
			wantErr:  true,
			errMsg:   "option category must be an asset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubcategory_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sub     Subcategory
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Valid subcategory should pass",
			sub:     Subcategory{Name: "Current account", CategoryID: 1, Opacity: 0.5},
			wantErr: false,
		},
		{
			name:    "Missing category should fail",
			sub:     Subcategory{Name: "Current account"},
			wantErr: true,
			errMsg:  "subcategory must reference a category",
		},
		{
			name:    "Opacity above one should fail",
			sub:     Subcategory{Name: "ISA", CategoryID: 2, Opacity: 1.5},
			wantErr: true,
			errMsg:  "subcategory opacity must be between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		name         string
		categoryName string
		categoryType CategoryType
		isOption     bool
		want         AggregateBucket
	}{
		{"easy access cash", "Cash (easy access)", CategoryTypeAsset, false, AggregateCashEasyAccess},
		{"other cash", "Cash (other)", CategoryTypeAsset, false, AggregateCashOther},
		{"stocks", "Stocks", CategoryTypeAsset, false, AggregateStocks},
		{"pension", "Pension", CategoryTypeAsset, false, AggregatePension},
		{"house", "House", CategoryTypeAsset, false, AggregateRealEstate},
		{"property", "Rental property", CategoryTypeAsset, false, AggregateRealEstate},
		{"mortgage", "Mortgage", CategoryTypeLiability, false, AggregateMortgage},
		{"other liability", "Credit cards", CategoryTypeLiability, false, AggregateNone},
		{"cash-named liability is not cash", "Cash advance", CategoryTypeLiability, false, AggregateNone},
		{"options win over name", "Cash options", CategoryTypeAsset, true, AggregateOptions},
		{"case and whitespace", "  STOCKS & shares ", CategoryTypeAsset, false, AggregateStocks},
		{"unknown asset", "Car", CategoryTypeAsset, false, AggregateNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCategory(tt.categoryName, tt.categoryType, tt.isOption))
		})
	}
}

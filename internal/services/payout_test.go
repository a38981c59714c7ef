package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/denmor86/ya-minerpool/internal/client"
	"github.com/denmor86/ya-minerpool/internal/config"
	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/denmor86/ya-minerpool/internal/services/mocks"
	"github.com/denmor86/ya-minerpool/internal/validators"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func TestPayout_Request(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockAPI := mocks.NewMockPoolAPI(ctrl)

	config := config.DefaultConfig()
	if err := logger.Initialize(config.LogLevel); err != nil {
		logger.Panic(err)
	}

	payout := NewPayout(mockAPI)

	testCases := []struct {
		Name            string
		Amount          string
		SetupMocks      func()
		ExpectedPayouts models.Payouts
		ExpectedError   error
	}{
		{
			Name:          "Error. Negative amount is not sent #1",
			Amount:        "-5",
			SetupMocks:    func() {},
			ExpectedError: validators.ErrInvalidAmount,
		},
		{
			Name:          "Error. Garbage amount is not sent #2",
			Amount:        "abc",
			SetupMocks:    func() {},
			ExpectedError: validators.ErrInvalidAmount,
		},
		{
			Name:   "Success #3",
			Amount: "10",
			SetupMocks: func() {
				mockAPI.EXPECT().Payout(gomock.Any(), decimal.NewFromInt(10)).Return(models.Payouts{
					"u1": decimal.NewFromInt(4),
					"u2": decimal.NewFromInt(6),
				}, nil)
			},
			ExpectedPayouts: models.Payouts{
				"u1": decimal.NewFromInt(4),
				"u2": decimal.NewFromInt(6),
			},
		},
		{
			Name:   "Error. Server rejects #4",
			Amount: "10",
			SetupMocks: func() {
				mockAPI.EXPECT().Payout(gomock.Any(), gomock.Any()).Return(nil, &client.ServerError{Status: 400, Reason: "no shares to pay out"})
			},
			ExpectedError: &client.ServerError{Status: 400, Reason: "no shares to pay out"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			tc.SetupMocks()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			payouts, err := payout.Request(ctx, tc.Amount)
			if tc.ExpectedError != nil {
				if err == nil {
					t.Fatalf("Expected error '%v', got none", tc.ExpectedError)
				}
				if !errors.Is(err, tc.ExpectedError) && err.Error() != tc.ExpectedError.Error() {
					t.Errorf("Expected error '%v', got: '%v'", tc.ExpectedError, err)
				}
			} else if err != nil {
				t.Fatalf("Expected no error, got: '%v'", err)
			}
			if diff := cmp.Diff(tc.ExpectedPayouts, payouts); len(diff) != 0 {
				t.Errorf("payouts mismatch:\n %s", diff)
			}
		})
	}
}

package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/denmor86/ya-minerpool/internal/client/mocks"
	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Body:          io.NopCloser(bytes.NewBufferString(body)),
		ContentLength: int64(len(body)),
		Header:        make(http.Header),
	}
}

func TestClient_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)

	testCases := []struct {
		Name             string
		SetupMocks       func()
		ExpectedIdentity models.Identity
		ExpectedError    error
	}{
		{
			Name: "Success. Logged in #1",
			SetupMocks: func() {
				mockHTTPClient.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
					if req.Method != http.MethodGet || req.URL.Path != "/api/me" {
						t.Errorf("unexpected request %s %s", req.Method, req.URL.Path)
					}
					return response(http.StatusOK, `{"logged_in":true,"user":{"id":1,"username":"mda"},"wallet":{"address":"SIM-1","balance":1.5}}`), nil
				})
			},
			ExpectedIdentity: models.Identity{
				Authenticated: true,
				Username:      "mda",
				WalletAddress: "SIM-1",
				Balance:       decimal.RequireFromString("1.5"),
			},
		},
		{
			Name: "Success. Not logged in #2",
			SetupMocks: func() {
				mockHTTPClient.EXPECT().Do(gomock.Any()).Return(response(http.StatusOK, `{"logged_in":false}`), nil)
			},
			ExpectedIdentity: models.Anonymous(),
		},
		{
			Name: "Error. Server unavailable #3",
			SetupMocks: func() {
				mockHTTPClient.EXPECT().Do(gomock.Any()).Return(response(http.StatusBadGateway, ""), nil)
			},
			ExpectedError: ErrServiceUnavailable,
		},
		{
			Name: "Error. Broken body #4",
			SetupMocks: func() {
				mockHTTPClient.EXPECT().Do(gomock.Any()).Return(response(http.StatusOK, `{"logged_in":`), nil)
			},
			ExpectedError: ErrInvalidResponse,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			tc.SetupMocks()
			c := NewClient("http://pool", mockHTTPClient)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			me, err := c.Me(ctx)
			if tc.ExpectedError != nil {
				if !errors.Is(err, tc.ExpectedError) {
					t.Fatalf("Expected error '%v', got: '%v'", tc.ExpectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: '%v'", err)
			}
			diff := cmp.Diff(tc.ExpectedIdentity, me.Identity())
			if len(diff) != 0 {
				t.Errorf("identity mismatch:\n %s", diff)
			}
		})
	}
}

func TestClient_LoginServerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)

	mockHTTPClient.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		if string(body) != `{"username":"mda","password":"secret"}` {
			t.Errorf("unexpected body %s", body)
		}
		if req.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type")
		}
		return response(http.StatusUnauthorized, `{"error":"invalid credentials"}`), nil
	})

	c := NewClient("http://pool", mockHTTPClient)
	err := c.Login(context.Background(), models.Credentials{Username: "mda", Password: "secret"})

	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("Expected ServerError, got: '%v'", err)
	}
	if serverErr.Reason != "invalid credentials" || serverErr.Status != http.StatusUnauthorized {
		t.Errorf("unexpected server error %+v", serverErr)
	}
}

func TestClient_Payout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)

	testCases := []struct {
		Name            string
		Body            string
		Status          int
		ExpectedPayouts string
		ExpectedReason  string
	}{
		{
			Name:            "Success. Mapping #1",
			Status:          http.StatusOK,
			Body:            `{"payouts":{"u1":4,"u2":6}}`,
			ExpectedPayouts: `{"u1":4,"u2":6}`,
		},
		{
			Name:            "Success. List #2",
			Status:          http.StatusOK,
			Body:            `{"payouts":[{"user_id":2,"amount":6.5},{"user_id":1,"amount":3.5}]}`,
			ExpectedPayouts: `{"1":3.5,"2":6.5}`,
		},
		{
			Name:           "Error. No shares #3",
			Status:         http.StatusBadRequest,
			Body:           `{"error":"no shares to pay out"}`,
			ExpectedReason: "no shares to pay out",
		},
		{
			Name:           "Error. Error with status 200 #4",
			Status:         http.StatusOK,
			Body:           `{"error":"invalid total_reward"}`,
			ExpectedReason: "invalid total_reward",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			mockHTTPClient.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
				body, _ := io.ReadAll(req.Body)
				if string(body) != `{"total_reward":10}` {
					t.Errorf("unexpected body %s", body)
				}
				return response(tc.Status, tc.Body), nil
			})

			c := NewClient("", mockHTTPClient)
			payouts, err := c.Payout(context.Background(), decimal.NewFromInt(10))
			if tc.ExpectedReason != "" {
				var serverErr *ServerError
				if !errors.As(err, &serverErr) || serverErr.Reason != tc.ExpectedReason {
					t.Fatalf("Expected server error '%s', got: '%v'", tc.ExpectedReason, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: '%v'", err)
			}
			if payouts.String() != tc.ExpectedPayouts {
				t.Errorf("Expected payouts '%s', got: '%s'", tc.ExpectedPayouts, payouts.String())
			}
		})
	}
}

func TestHandleErrorResponse_RateLimit(t *testing.T) {
	resp := response(http.StatusTooManyRequests, "No more than N requests per minute allowed")
	resp.Header.Set("Retry-After", "120")

	err := HandleErrorResponse(resp)

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Expected RateLimitError, got: '%v'", err)
	}
	if rateErr.RetryAfter != 120*time.Second {
		t.Errorf("Expected retry after 120s, got %v", rateErr.RetryAfter)
	}
}

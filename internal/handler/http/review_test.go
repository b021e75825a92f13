package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
)

func TestSubmitReview_Success(t *testing.T) {
	m := newRouterMocks()
	router := newTestRouter(m)

	m.products.On("GetByID", mock.Anything, testProductID).Return(sampleProduct(), nil)
	m.reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	body, _ := json.Marshal(SubmitReviewRequest{Rating: 5, Comment: "Best fudge cake in town."})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+testProductID+"/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(router, authed(req, "customer-token"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)

	var review domain.Review
	raw, _ := json.Marshal(resp.Data)
	require.NoError(t, json.Unmarshal(raw, &review))
	assert.Equal(t, domain.ReviewStatusPending, review.Status)
	assert.Equal(t, testCustomerID, review.UserID)
}

func TestSubmitReview_NoToken(t *testing.T) {
	m := newRouterMocks()
	router := newTestRouter(m)

	body, _ := json.Marshal(SubmitReviewRequest{Rating: 5})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+testProductID+"/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(router, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	m.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitReview_RatingOutOfRange(t *testing.T) {
	m := newRouterMocks()
	router := newTestRouter(m)

	body, _ := json.Marshal(SubmitReviewRequest{Rating: 6})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+testProductID+"/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(router, authed(req, "customer-token"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestListProductReviews_PublicApprovedOnly(t *testing.T) {
	m := newRouterMocks()
	router := newTestRouter(m)

	m.reviews.On("ListByProduct", mock.Anything, testProductID, domain.ReviewStatusApproved, 1, 20).
		Return([]domain.Review{{ID: "review-001", ProductID: testProductID, Status: domain.ReviewStatusApproved}}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+testProductID+"/reviews", nil)

	rec := serve(router, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.reviews.AssertExpectations(t)
}

func TestModerateReview_ApproveAsAdmin(t *testing.T) {
	m := newRouterMocks()
	router := newTestRouter(m)

	pending := &domain.Review{
		ID:        "review-001",
		ProductID: testProductID,
		UserID:    testCustomerID,
		Rating:    4,
		Status:    domain.ReviewStatusPending,
	}
	m.reviews.On("GetByID", mock.Anything, "review-001").Return(pending, nil)
	m.reviews.On("UpdateStatus", mock.Anything, "review-001", domain.ReviewStatusApproved).Return(nil)
	m.reviews.On("RatingSummary", mock.Anything, testProductID).Return(4.0, 1, nil)
	m.products.On("UpdateRating", mock.Anything, testProductID, 4.0, 1).Return(nil)

	body, _ := json.Marshal(ModerateReviewRequest{Status: domain.ReviewStatusApproved})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reviews/review-001/moderate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(router, authed(req, "admin-token"))

	assert.Equal(t, http.StatusOK, rec.Code)
	m.reviews.AssertExpectations(t)
	m.products.AssertExpectations(t)
}

func TestModerateReview_CustomerForbidden(t *testing.T) {
	m := newRouterMocks()
	router := newTestRouter(m)

	body, _ := json.Marshal(ModerateReviewRequest{Status: domain.ReviewStatusApproved})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reviews/review-001/moderate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(router, authed(req, "customer-token"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	m.reviews.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestListModerationQueue_Admin(t *testing.T) {
	m := newRouterMocks()
	router := newTestRouter(m)

	m.reviews.On("ListByStatus", mock.Anything, domain.ReviewStatusPending, 1, 20).
		Return([]domain.Review{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reviews", nil)

	rec := serve(router, authed(req, "admin-token"))

	assert.Equal(t, http.StatusOK, rec.Code)
	m.reviews.AssertExpectations(t)
}

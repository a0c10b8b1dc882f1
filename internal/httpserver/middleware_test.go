package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialshop/internal/auth"
	"socialshop/internal/checkout"
	"socialshop/internal/domain"
	"socialshop/internal/service/order"

	"github.com/gin-gonic/gin"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range cases {
		if got := bearerToken(header); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestAuthMiddleware_AttributesRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv()
	router := gin.New()
	router.Use(authMiddleware(env.accounts, env.guests))
	router.GET("/who", func(c *gin.Context) {
		key, _ := auth.SessionKey(c.Request.Context())
		guest, _ := auth.GuestID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"session": key, "guest": guest})
	})

	cases := []struct {
		name       string
		bearer     string
		guestToken string
		wantCode   int
		wantBody   string
	}{
		{"anonymous", "", "", http.StatusOK, `{"guest":"","session":""}`},
		{"guest bearer", "guest-token", "", http.StatusOK, `{"guest":"g1","session":"guest:g1"}`},
		{"profile bearer", "profile-token", "", http.StatusOK, `{"guest":"","session":"profile:p1"}`},
		{"profile with guest header", "profile-token", "guest-token", http.StatusOK, `{"guest":"g1","session":"profile:p1"}`},
		{"unknown guest header ignored", "", "nope", http.StatusOK, `{"guest":"","session":""}`},
		{"unknown bearer", "nope", "", http.StatusUnauthorized, `{"error":"invalid token"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			if tc.guestToken != "" {
				req.Header.Set(guestTokenHeader, tc.guestToken)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.wantCode || rec.Body.String() != tc.wantBody {
				t.Fatalf("got %d %s, want %d %s", rec.Code, rec.Body.String(), tc.wantCode, tc.wantBody)
			}
		})
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		want int
	}{
		{&checkout.ValidationError{Step: checkout.StepShipping, Fields: []string{"city"}}, http.StatusUnprocessableEntity},
		{order.ErrNotAuthenticated, http.StatusUnauthorized},
		{checkout.ErrSubmissionInFlight, http.StatusConflict},
		{domain.ErrNotFound, http.StatusNotFound},
		{order.ErrOrderLinesWriteFailed, http.StatusBadGateway},
		{order.ErrEmptyCart, http.StatusUnprocessableEntity},
		{order.ErrMissingSubmissionID, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		writeError(c, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestBuildItemList_Pages(t *testing.T) {
	items := []domain.ShopItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	list := buildItemList(items, 2, 1)
	if list.Total != 3 || list.Count != 2 || list.Results[0].ID != "b" {
		t.Fatalf("unexpected page %+v", list)
	}
	empty := buildItemList(items, 0, 10)
	if empty.Limit != 20 || empty.Count != 0 || empty.Results == nil {
		t.Fatalf("unexpected empty page %+v", empty)
	}
}

func TestDiscountPercent(t *testing.T) {
	orig := int64(2000)
	if got := discountPercent(1500, &orig); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := discountPercent(2500, &orig); got != 0 {
		t.Fatalf("price above original should not be a discount, got %d", got)
	}
	if got := discountPercent(1500, nil); got != 0 {
		t.Fatalf("expected 0 without original price, got %d", got)
	}
}

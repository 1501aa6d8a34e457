package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"shiftswap/internal/swap"
)

func TestObserveDecision(t *testing.T) {
	m := New(nil)

	m.ObserveDecision(swap.ActionApprove, nil)
	m.ObserveDecision(swap.ActionApprove, nil)
	m.ObserveDecision(swap.ActionDecline, swap.ErrUnauthorized)
	m.ObserveDecision(swap.ActionDecline, errors.New("boom"))

	if got := testutil.ToFloat64(m.decisions.WithLabelValues("approve", "ok")); got != 2 {
		t.Errorf("approve/ok 期望 2，实际 %v", got)
	}
	if got := testutil.ToFloat64(m.decisions.WithLabelValues("decline", "unauthorized")); got != 1 {
		t.Errorf("decline/unauthorized 期望 1，实际 %v", got)
	}
	if got := testutil.ToFloat64(m.decisions.WithLabelValues("decline", "other")); got != 1 {
		t.Errorf("decline/other 期望 1，实际 %v", got)
	}
}

func TestStoreCollector(t *testing.T) {
	store := swap.NewStore()
	c := &StoreCollector{store: store}

	// 空集合也输出三个状态
	if n := testutil.CollectAndCount(c); n != 3 {
		t.Errorf("期望 3 个序列，实际 %d", n)
	}

	expected := `
# HELP shiftswap_swap_requests Current swap requests held in memory by status
# TYPE shiftswap_swap_requests gauge
shiftswap_swap_requests{status="approved"} 0
shiftswap_swap_requests{status="declined"} 0
shiftswap_swap_requests{status="pending"} 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Errorf("指标输出不符: %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(nil)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/1", nil))

	if n := testutil.CollectAndCount(m.requests); n != 1 {
		t.Errorf("期望 1 个序列，实际 %d", n)
	}
}

package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stylehub/storefront/internal/models"
	"github.com/stylehub/storefront/internal/service/token"
	"github.com/stylehub/storefront/internal/storage"
)

func TestGetStats(t *testing.T) {
	v := newEnv(t)
	h := &AdminHandler{Store: v.store}

	v.seedUser(t, "admin", "secret1", true)
	v.seedUser(t, "alice", "secret1", false)
	v.seedUser(t, "bob", "secret1", false)
	v.seedProduct(t, "watch", 10)

	base := time.Now()
	for i, total := range []float64{10, 20, 30} {
		_, err := v.store.CreateOrder(t.Context(), models.Order{
			UserID:    2,
			Total:     total,
			Status:    "processing",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}, nil)
		require.NoError(t, err)
	}

	c, rec := v.request(http.MethodGet, "/api/admin/stats", "", 1, token.RoleAdmin)
	require.NoError(t, h.GetStats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats storage.AdminStats
	decodeBody(t, rec, &stats)
	require.Equal(t, 60.0, stats.TotalSales)
	require.Equal(t, 3, stats.TotalOrders)
	require.Equal(t, 1, stats.TotalProducts)
	require.Equal(t, 2, stats.TotalCustomers)
	require.Len(t, stats.RecentOrders, 3)
	require.Equal(t, 30.0, stats.RecentOrders[0].Total)
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdashboarddomain "github.com/smallbiznis/billdesk/internal/billingdashboard/domain"
)

type dashboardView struct {
	billingdashboarddomain.Snapshot
	MonthlyRevenueDisplay string `json:"monthlyRevenueDisplay"`
	TotalRevenueDisplay   string `json:"totalRevenueDisplay"`
	CurrencySymbol        string `json:"currencySymbol"`
}

func (s *Server) GetDashboard(c *gin.Context) {
	snapshot, err := s.dashboardSvc.Snapshot(c.Request.Context())
	if err != nil {
		abortOperation(c, err, "Error al cargar datos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboardView{
		Snapshot:              snapshot,
		MonthlyRevenueDisplay: billingdashboarddomain.FormatMoney(snapshot.MonthlyRevenue),
		TotalRevenueDisplay:   billingdashboarddomain.FormatMoney(snapshot.TotalRevenue),
		CurrencySymbol:        s.dashboard.Get().CurrencySymbol,
	}})
}

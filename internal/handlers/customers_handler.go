package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-rental-billing/internal/customers"
)

const maxSearchLimit = 100

// CustomerDetail is the body of GET /customers/:id.
type CustomerDetail struct {
	customers.Customer
	Orders []customers.OrderSummary `json:"orders"`
}

// RegisterCustomersRoutes registers customer lookup routes.
func RegisterCustomersRoutes(r gin.IRouter, cfg HandlerConfig) {
	r.GET("/customers", func(c *gin.Context) {
		limit := 0
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > maxSearchLimit {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit", "message": "limit must be between 1 and 100"})
				return
			}
			limit = n
		}

		found, err := cfg.Customers.Search(c.Request.Context(), c.Query("q"), limit)
		if err != nil {
			writeError(c, cfg.logger(), err)
			return
		}
		if found == nil {
			found = []customers.Customer{}
		}
		c.JSON(http.StatusOK, gin.H{"customers": found})
	})

	r.GET("/customers/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()

		cust, err := cfg.Customers.Get(ctx, id)
		if err != nil {
			writeError(c, cfg.logger(), err)
			return
		}
		history, err := cfg.Customers.Orders(ctx, id)
		if err != nil {
			writeError(c, cfg.logger(), err)
			return
		}
		if history == nil {
			history = []customers.OrderSummary{}
		}
		c.JSON(http.StatusOK, CustomerDetail{Customer: *cust, Orders: history})
	})
}

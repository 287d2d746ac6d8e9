package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-rental-billing/internal/idempotency"
	"github.com/imrishuroy/go-rental-billing/internal/invoice"
	"github.com/imrishuroy/go-rental-billing/internal/orders"
	"github.com/imrishuroy/go-rental-billing/internal/validation"
)

// HeaderIdempotencyKey lets clients retry POST /orders safely.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// CreateOrderResponse is the 201 body of POST /orders.
type CreateOrderResponse struct {
	CustomerID int64  `json:"customer_id"`
	OrderID    int64  `json:"order_id"`
	InvoiceNo  string `json:"invoice_no"`
	OrderDate  string `json:"order_date"`
	Total      string `json:"total"`
}

// RegisterOrdersRoutes registers routes for order API.
func RegisterOrdersRoutes(r gin.IRouter, cfg HandlerConfig) {
	h := &ordersHandler{cfg: cfg, v: validation.New()}
	r.POST("/orders", h.create)
	r.GET("/orders/:id", h.get)
	r.GET("/orders/:id/invoice", h.invoice)
}

type ordersHandler struct {
	cfg HandlerConfig
	v   *validatorv10.Validate
}

func (h *ordersHandler) create(c *gin.Context) {
	ctx := c.Request.Context()
	logger := h.cfg.logger()

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "message": err.Error()})
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var payload validation.CreateOrderRequest
	if err := validation.BindAndValidate(c, &payload, h.v); err != nil {
		// BindAndValidate already wrote a 400
		return
	}
	req, err := payload.ToOrderRequest()
	if err != nil {
		writeError(c, logger, err)
		return
	}

	key := c.GetHeader(HeaderIdempotencyKey)
	claimed := false
	if key != "" && h.cfg.Idempotency != nil {
		sum := sha256.Sum256(raw)
		hash := hex.EncodeToString(sum[:])

		claim, err := h.cfg.Idempotency.Claim(ctx, key, hash)
		if err != nil {
			logger.Error("idempotency claim failed", "idempotency_key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "message": err.Error()})
			return
		}
		if !claim.Claimed {
			replay(c, claim.Existing, hash)
			return
		}
		claimed = true
	}

	res, err := h.cfg.Orders.CreateOrder(ctx, req)
	if err != nil {
		if claimed {
			if mErr := h.cfg.Idempotency.MarkFailed(ctx, key, err.Error()); mErr != nil {
				logger.Warn("idempotency mark failed", "idempotency_key", key, "error", mErr)
			}
		}
		writeError(c, logger, err)
		return
	}

	body, err := json.Marshal(CreateOrderResponse{
		CustomerID: res.CustomerID,
		OrderID:    res.OrderID,
		InvoiceNo:  res.InvoiceNo,
		OrderDate:  res.OrderDate,
		Total:      res.Total.StringFixed(2),
	})
	if err != nil {
		writeError(c, logger, err)
		return
	}

	if claimed {
		// The order is committed either way. Without the DONE marker the key
		// stays IN_PROGRESS, so retries get 409 until the record expires.
		// It is never reclaimed, since that could create the order twice.
		if err := h.cfg.Idempotency.MarkDone(ctx, key, res.OrderID, string(body), http.StatusCreated); err != nil {
			logger.Error("idempotency mark done failed; key blocked until expiry",
				"idempotency_key", key, "order_id", res.OrderID, "error", err)
		}
	}

	c.Header("Location", fmt.Sprintf("/orders/%d", res.OrderID))
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

func replay(c *gin.Context, rec *idempotency.Record, hash string) {
	if rec.RequestHash != "" && rec.RequestHash != hash {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "idempotency_key_reused",
			"message": "idempotency key was used with a different request body",
		})
		return
	}
	switch rec.Status {
	case idempotency.StatusDone:
		c.Header(HeaderReplayed, "true")
		if rec.OrderID != 0 {
			c.Header("Location", fmt.Sprintf("/orders/%d", rec.OrderID))
		}
		c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	case idempotency.StatusInProgress:
		c.JSON(http.StatusConflict, gin.H{"error": "request_in_progress", "message": "a request with this idempotency key is still being processed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status", "message": rec.Status})
	}
}

func (h *ordersHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	snap, err := h.cfg.OrderReader.Snapshot(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.cfg.logger(), err)
		return
	}
	if snap.Items == nil {
		snap.Items = []orders.RawItem{}
	}
	c.JSON(http.StatusOK, snap)
}

func (h *ordersHandler) invoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	logger := h.cfg.logger()

	// Prepare before touching headers so a miss is a clean 404.
	doc, err := h.cfg.Invoices.Prepare(ctx, id)
	if err != nil {
		writeError(c, logger, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="invoice-%s.pdf"`, doc.InvoiceNo()))
	c.Status(http.StatusOK)

	sum, err := doc.Write(c.Writer)
	if err != nil {
		// headers are gone; the client sees a truncated document
		logger.Error("invoice write failed", "order_id", id, "error", err)
		return
	}
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.Incr(ctx, invoice.MetricInvoicesRendered)
	}
	logger.Info("invoice rendered",
		"order_id", id,
		"invoice_no", sum.InvoiceNo,
		"rows", sum.Rows,
		"pages", sum.Pages,
		"bytes", sum.Bytes,
	)
}

package listing

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/truthlens/truthlens-api/pkg/common"
	"github.com/truthlens/truthlens-api/pkg/middleware"
)

// Handler handles HTTP requests for listing analysis
type Handler struct {
	service *Service
}

// NewHandler creates a new listing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CheckText proxies text to the AI detector and returns its verdict verbatim
func (h *Handler) CheckText(c *gin.Context) {
	var req CheckTextRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	verdict, err := h.service.CheckText(c.Request.Context(), *req.Text)
	if err != nil {
		h.respondError(c, err, "API error")
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// AnalyzeProduct scores a product listing
func (h *Handler) AnalyzeProduct(c *gin.Context) {
	var req AnalyzeProductRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	listing := req.Listing()
	result, err := h.service.Analyze(c.Request.Context(), listing)
	if err != nil {
		captureError(c, err)
		h.respondError(c, err, "Analysis error")
		return
	}

	c.JSON(http.StatusOK, AnalyzeProductResponse{
		Success:  true,
		Analysis: result,
		ProductInfo: ProductInfo{
			Title: listing.Title,
			URL:   listing.URL,
		},
	})
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback+": "+err.Error())
}

// captureError reports err to Sentry when the sentrygin middleware is installed.
func captureError(c *gin.Context, err error) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("route", c.FullPath())
			hub.CaptureException(err)
		})
	}
}

// RegisterRoutes registers listing routes at the root, where the browser
// extension calls them, and under /api/v1
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/check-text", h.CheckText)
	r.POST("/analyze-product", h.AnalyzeProduct)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/check-text", h.CheckText)
		v1.POST("/analyze-product", h.AnalyzeProduct)
	}
}

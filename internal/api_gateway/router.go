package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/garage-sale-marketplace/internal/api_gateway/handler"
	"github.com/garage-sale-marketplace/internal/api_gateway/middleware"
	"github.com/garage-sale-marketplace/internal/platform/identity"
	"github.com/gin-gonic/gin"
)

// handlers groups the HTTP handlers mounted by setupRouter
type handlers struct {
	payment  *handler.PaymentHandler
	checkout *handler.CheckoutHandler
	user     *handler.UserHandler
	geo      *handler.GeoHandler
	listing  *handler.ListingHandler
}

// setupRouter configures API routes and middleware for the application.
// CORS runs before authentication so preflight requests never need a token.
func setupRouter(logger *slog.Logger, r *gin.Engine, verifier identity.Verifier, h handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	api := r.Group("/", middleware.Auth(logger, verifier))
	{
		payment := api.Group("/payment")
		{
			payment.POST("/createPaymentIntent", h.payment.CreatePaymentIntent)
			payment.POST("/recordSale", h.payment.RecordSale)
			payment.POST("/recordTapToPaySale", h.payment.RecordTapToPaySale)
			payment.GET("/stats/:sellerId", h.payment.GetStats)
			payment.GET("/sales/:sellerId", h.payment.GetSales)
		}

		checkout := api.Group("/checkout")
		{
			checkout.POST("/create", h.checkout.Create)
			checkout.POST("/verify", h.checkout.Verify)
		}

		users := api.Group("/users")
		{
			users.POST("/delete", h.user.Delete)
			users.POST("/profile", h.user.UpsertProfile)
		}

		api.GET("/geo/coordinates", h.geo.Coordinates)

		listings := api.Group("/listings")
		{
			listings.POST("", h.listing.Create)
			listings.GET("/search", h.listing.Search)
			listings.GET("/clusters", h.listing.Clusters)
			listings.POST("/saved", h.listing.Save)
		}

		api.POST("/admin/listings/approve", h.listing.Approve)
	}
}

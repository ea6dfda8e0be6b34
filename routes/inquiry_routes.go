package routes

import (
	"gbtravel/internal/handlers"

	"github.com/gin-gonic/gin"
)

func SetupInquiryRoutes(r *gin.RouterGroup, inquiryHandler *handlers.InquiryHandler, authRequired, adminOnly gin.HandlerFunc) {
	inquiries := r.Group("/inquiries")
	inquiries.POST("", inquiryHandler.Submit)

	admin := inquiries.Group("", authRequired, adminOnly)
	{
		admin.GET("", inquiryHandler.ListInquiries)
		admin.GET("/:id", inquiryHandler.GetInquiry)
		admin.PATCH("/:id", inquiryHandler.UpdateInquiry)
		admin.DELETE("/:id", inquiryHandler.DeleteInquiry)
	}
}

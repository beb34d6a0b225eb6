package http

import "github.com/gin-gonic/gin"

func RegisterBookingRoutes(r *gin.Engine, handler *BookingHandler) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("/", handler.CreateBooking)
		bookings.GET("/", handler.ListMyBookings)
		bookings.PUT("/:id/cancel", handler.CancelBooking)
	}

	// Vista del organizador sobre las reservas de su evento.
	r.GET("/events/:id/bookings", handler.ListEventBookings)
}

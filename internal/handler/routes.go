package handler

import (
	"github.com/jatrackr/jatrackr-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rateLimiter *middleware.RateLimiter, userHandler *UserHandler, jobDataHandler *JobDataHandler, attachmentHandler *AttachmentHandler) {
	api := e.Group("/api")
	api.Use(rateLimiter.Middleware())

	// User routes. The static /users/user segment is registered alongside the
	// :id param route; echo dispatches static segments first.
	users := api.Group("/users")
	users.GET("", userHandler.GetUsers)
	users.POST("", userHandler.CreateUser)
	users.GET("/user", userHandler.GetUserByQuery)
	users.DELETE("/user", userHandler.DeleteUserByQuery)
	users.GET("/:id", userHandler.GetUserByID)
	users.GET("/:key/details", userHandler.GetUserDetails)
	users.GET("/:username/jobapps", jobDataHandler.GetJobsForUser)
	users.PUT("/:idOrName", userHandler.ReplaceUser)
	users.PATCH("/:idOrName", userHandler.PatchUser)
	users.DELETE("/:idOrName", userHandler.DeleteUser)

	// Job application routes
	jobdata := api.Group("/jobdata")
	jobdata.GET("/jobs/all", jobDataHandler.GetJobs)
	jobdata.POST("", jobDataHandler.CreateJob)
	jobdata.GET("/:id", jobDataHandler.GetJob)
	jobdata.PUT("/:id", jobDataHandler.UpdateJob)
	jobdata.DELETE("/:id", jobDataHandler.DeleteJob)

	// Attachment routes
	jobdata.POST("/:id/attachments", attachmentHandler.UploadAttachment)
	jobdata.GET("/:id/attachments", attachmentHandler.ListAttachments)
	jobdata.GET("/:id/attachments/:attachmentId/url", attachmentHandler.GetAttachmentURL)
	jobdata.DELETE("/:id/attachments/:attachmentId", attachmentHandler.DeleteAttachment)
}

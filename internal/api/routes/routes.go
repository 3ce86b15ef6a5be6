package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/talentpool/internal/api/handlers"
	"github.com/yoockh/talentpool/internal/api/middleware"
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/services"
)

type Deps struct {
	Profiles     services.ProfileService
	Roles        *handlers.RoleHandler
	Jobs         *handlers.JobHandler
	Applications *handlers.ApplicationHandler
	Candidates   *handlers.CandidateHandler
	ResumeStatus *handlers.ResumeStatusHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public job board
	r.GET("/jobs", d.Jobs.List)
	r.GET("/jobs/:job_id", d.Jobs.Get)

	// Protected routes (JWT + stored profile)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(), middleware.LoadProfile(d.Profiles))

	auth.GET("/me/role", d.Roles.Me)
	auth.POST("/me/role", d.Roles.Select)

	selected := auth.Group("/")
	selected.Use(middleware.RequireRoleSelected())

	recruiters := selected.Group("/")
	recruiters.Use(middleware.RequireRole(models.RoleRecruiter, models.RoleAdmin))

	recruiters.POST("/jobs", d.Jobs.Create)
	recruiters.PUT("/jobs/:job_id", d.Jobs.Update)
	recruiters.DELETE("/jobs/:job_id", d.Jobs.Delete)
	recruiters.GET("/jobs/:job_id/applications/ranked", d.Applications.Ranked)
	recruiters.GET("/jobs/:job_id/applications/export", d.Applications.Export)

	recruiters.GET("/recruiter/jobs", d.Jobs.Mine)
	recruiters.GET("/recruiter/applications", d.Applications.ListForRecruiter)

	recruiters.GET("/applications/:application_id", d.Applications.Get)
	recruiters.PUT("/applications/:application_id/status", d.Applications.UpdateStatus)
	recruiters.GET("/applications/:application_id/history", d.Applications.History)
	recruiters.POST("/applications/:application_id/review", d.Applications.Review)

	recruiters.GET("/candidates/:candidate_id", d.Candidates.Detail)

	candidates := selected.Group("/")
	candidates.Use(middleware.RequireRole(models.RoleCandidate))

	candidates.POST("/jobs/:job_id/apply", d.Applications.Apply)
	candidates.GET("/candidates/me", d.Candidates.Me)
	candidates.PUT("/candidates/me", d.Candidates.UpdateLinks)
	candidates.POST("/candidates/me/resumes", d.Candidates.UploadResume)
	candidates.GET("/candidates/me/resumes/:resume_id/status", d.ResumeStatus.Watch) // websocket
}
